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

// RequestHeaderV2 is the header of every supported request.
type RequestHeaderV2 struct {
	ApiKey        ApiKey
	ApiVersion    wire.Int16
	CorrelationID wire.Int32
	ClientID      wire.NullableString
	Tags          wire.TagBuffer
}

func (h *RequestHeaderV2) fields() []wire.Field {
	return []wire.Field{&h.ApiKey, &h.ApiVersion, &h.CorrelationID, &h.ClientID, &h.Tags}
}

func (h RequestHeaderV2) WireLen() int              { return wire.SumWireLen(h.fields()...) }
func (h RequestHeaderV2) Encode(w *wire.Writer)     { wire.EncodeAll(w, h.fields()...) }
func (h *RequestHeaderV2) Decode(r *wire.Reader) error { return wire.DecodeAll(r, h.fields()...) }

// ResponseHeader is implemented by ResponseHeaderV0 and ResponseHeaderV1.
type ResponseHeader interface {
	wire.Encoder
	Correlation() int32
	responseHeader()
}

// ResponseHeaderV0 carries only the correlation id. ApiVersions responses use
// it so that clients which do not yet know the server's versions can parse them.
type ResponseHeaderV0 struct {
	CorrelationID wire.Int32
}

func (h ResponseHeaderV0) Correlation() int32 { return int32(h.CorrelationID) }
func (ResponseHeaderV0) responseHeader()      {}

func (h ResponseHeaderV0) WireLen() int              { return h.CorrelationID.WireLen() }
func (h ResponseHeaderV0) Encode(w *wire.Writer)     { h.CorrelationID.Encode(w) }
func (h *ResponseHeaderV0) Decode(r *wire.Reader) error { return h.CorrelationID.Decode(r) }

// ResponseHeaderV1 is the flexible response header.
type ResponseHeaderV1 struct {
	CorrelationID wire.Int32
	Tags          wire.TagBuffer
}

func (h ResponseHeaderV1) Correlation() int32 { return int32(h.CorrelationID) }
func (ResponseHeaderV1) responseHeader()      {}

func (h *ResponseHeaderV1) fields() []wire.Field {
	return []wire.Field{&h.CorrelationID, &h.Tags}
}

func (h ResponseHeaderV1) WireLen() int              { return wire.SumWireLen(h.fields()...) }
func (h ResponseHeaderV1) Encode(w *wire.Writer)     { wire.EncodeAll(w, h.fields()...) }
func (h *ResponseHeaderV1) Decode(r *wire.Reader) error { return wire.DecodeAll(r, h.fields()...) }

// ResponseHeaderFor returns the header version used for responses to k.
func ResponseHeaderFor(k ApiKey, correlationID int32) ResponseHeader {
	if k == ApiVersionsKey {
		return ResponseHeaderV0{CorrelationID: wire.Int32(correlationID)}
	}
	return ResponseHeaderV1{CorrelationID: wire.Int32(correlationID)}
}
