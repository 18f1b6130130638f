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
	"errors"
	"fmt"

	"flykafka/internal/protocol"
)

// ErrTopicCountUnsupported is returned for a DescribeTopicPartitions
// request that does not name exactly one topic.
var ErrTopicCountUnsupported = errors.New("exactly one topic per request is supported")

// ErrUnexpectedBody is returned when a request body does not match its api key.
var ErrUnexpectedBody = errors.New("request body does not match api key")

// Handler answers requests for one api key.
type Handler interface {
	Handle(ctx context.Context, req *protocol.Request) (*protocol.Response, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

// Handle calls f(ctx, req).
func (f HandlerFunc) Handle(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	return f(ctx, req)
}

// HandlerError reports a request the broker could not answer. The
// connection that carried it must be closed.
type HandlerError struct {
	ApiKey        protocol.ApiKey
	CorrelationID int32
	Err           error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s request (correlation id %d): %v", e.ApiKey, e.CorrelationID, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

func handlerErr(req *protocol.Request, err error) error {
	return &HandlerError{ApiKey: req.ApiKey(), CorrelationID: req.CorrelationID(), Err: err}
}

// respond wraps body in the response header used by the request's api key.
func respond(req *protocol.Request, body protocol.ResponseBody) *protocol.Response {
	return protocol.NewResponse(protocol.ResponseHeaderFor(req.ApiKey(), req.CorrelationID()), body)
}

// ErrorCodeOf returns the error code a response reports: the top-level code
// for ApiVersions, the first non-zero topic code for DescribeTopicPartitions.
func ErrorCodeOf(resp *protocol.Response) protocol.ErrorCode {
	switch body := resp.Body.(type) {
	case *protocol.ApiVersionsResponse:
		return body.ErrorCode
	case *protocol.DescribeTopicPartitionsResponse:
		for _, t := range body.Topics.Items {
			if t.ErrorCode != protocol.ErrorNone {
				return t.ErrorCode
			}
		}
	}
	return protocol.ErrorNone
}
