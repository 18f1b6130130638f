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

package protocol

import (
	"flykafka/internal/wire"
)

// ApiVersionsRequest is the body of an ApiVersions request. Clients older
// than v3 send an empty body, which decodes to the zero value.
type ApiVersionsRequest struct {
	ClientSoftwareName    wire.CompactString
	ClientSoftwareVersion wire.CompactString
	Tags                  wire.TagBuffer
}

func (b *ApiVersionsRequest) fields() []wire.Field {
	return []wire.Field{&b.ClientSoftwareName, &b.ClientSoftwareVersion, &b.Tags}
}

func (b ApiVersionsRequest) WireLen() int          { return wire.SumWireLen(b.fields()...) }
func (b ApiVersionsRequest) Encode(w *wire.Writer) { wire.EncodeAll(w, b.fields()...) }

func (b *ApiVersionsRequest) Decode(r *wire.Reader) error {
	if r.Remaining() == 0 {
		*b = ApiVersionsRequest{}
		return nil
	}
	return wire.DecodeAll(r, b.fields()...)
}

func (ApiVersionsRequest) requestBody() {}

// ApiVersion advertises the supported version range of one API.
type ApiVersion struct {
	ApiKey     ApiKey
	MinVersion wire.Int16
	MaxVersion wire.Int16
	Tags       wire.TagBuffer
}

func (v *ApiVersion) fields() []wire.Field {
	return []wire.Field{&v.ApiKey, &v.MinVersion, &v.MaxVersion, &v.Tags}
}

func (v ApiVersion) WireLen() int                { return wire.SumWireLen(v.fields()...) }
func (v ApiVersion) Encode(w *wire.Writer)       { wire.EncodeAll(w, v.fields()...) }
func (v *ApiVersion) Decode(r *wire.Reader) error { return wire.DecodeAll(r, v.fields()...) }

// ApiVersionArray is a compact array of ApiVersion.
type ApiVersionArray = wire.CompactArray[ApiVersion, *ApiVersion]

// ApiVersionsResponse is the body of an ApiVersions response.
type ApiVersionsResponse struct {
	ErrorCode      ErrorCode
	ApiKeys        ApiVersionArray
	ThrottleTimeMs wire.Int32
	Tags           wire.TagBuffer
}

func (b *ApiVersionsResponse) fields() []wire.Field {
	return []wire.Field{&b.ErrorCode, &b.ApiKeys, &b.ThrottleTimeMs, &b.Tags}
}

func (b ApiVersionsResponse) WireLen() int                { return wire.SumWireLen(b.fields()...) }
func (b ApiVersionsResponse) Encode(w *wire.Writer)       { wire.EncodeAll(w, b.fields()...) }
func (b *ApiVersionsResponse) Decode(r *wire.Reader) error { return wire.DecodeAll(r, b.fields()...) }

func (ApiVersionsResponse) responseBody() {}

// SupportedApiVersions returns the advertised version table.
func SupportedApiVersions() []ApiVersion {
	out := make([]ApiVersion, 0, len(SupportedVersions))
	for _, s := range SupportedVersions {
		out = append(out, ApiVersion{
			ApiKey:     s.Key,
			MinVersion: wire.Int16(s.Min),
			MaxVersion: wire.Int16(s.Max),
		})
	}
	return out
}
