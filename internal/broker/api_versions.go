/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package broker

import (
	"context"

	"flykafka/internal/protocol"
)

// ApiVersionsHandler advertises the supported api keys and version ranges.
type ApiVersionsHandler struct {
	versions []protocol.ApiVersion
}

// NewApiVersionsHandler creates a handler advertising protocol.SupportedVersions.
func NewApiVersionsHandler() *ApiVersionsHandler {
	return &ApiVersionsHandler{versions: protocol.SupportedApiVersions()}
}

// Handle answers an ApiVersions request. A version outside the supported
// range gets UNSUPPORTED_VERSION and an empty key list.
func (h *ApiVersionsHandler) Handle(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	if _, ok := req.Body.(*protocol.ApiVersionsRequest); !ok {
		return nil, handlerErr(req, ErrUnexpectedBody)
	}

	body := &protocol.ApiVersionsResponse{}
	vr, _ := protocol.ApiVersionsKey.Versions()
	if !vr.Contains(req.ApiVersion()) {
		body.ErrorCode = protocol.ErrorUnsupportedVersion
		return respond(req, body), nil
	}

	items := make([]protocol.ApiVersion, len(h.versions))
	copy(items, h.versions)
	body.ApiKeys = protocol.ApiVersionArray{Items: items}
	return respond(req, body), nil
}
