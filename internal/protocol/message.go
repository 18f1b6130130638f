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
	"fmt"

	"flykafka/internal/wire"
)

// RequestBody is implemented by *ApiVersionsRequest and
// *DescribeTopicPartitionsRequest only.
type RequestBody interface {
	wire.Encoder
	requestBody()
}

// ResponseBody is implemented by *ApiVersionsResponse and
// *DescribeTopicPartitionsResponse only.
type ResponseBody interface {
	wire.Encoder
	responseBody()
}

// Request is one decoded request frame.
type Request struct {
	MessageSize int32
	Header      RequestHeaderV2
	Body        RequestBody
}

// ApiKey returns the API the request is addressed to.
func (r *Request) ApiKey() ApiKey { return r.Header.ApiKey }

// ApiVersion returns the requested API version.
func (r *Request) ApiVersion() int16 { return int16(r.Header.ApiVersion) }

// CorrelationID returns the id the response must echo.
func (r *Request) CorrelationID() int32 { return int32(r.Header.CorrelationID) }

// ClientID returns the client id, or "" when it was null.
func (r *Request) ClientID() string { return r.Header.ClientID.Value }

// NewRequest builds a request with MessageSize computed from header and body.
func NewRequest(header RequestHeaderV2, body RequestBody) *Request {
	return &Request{
		MessageSize: int32(header.WireLen() + body.WireLen()),
		Header:      header,
		Body:        body,
	}
}

// Response is one response frame.
type Response struct {
	MessageSize int32
	Header      ResponseHeader
	Body        ResponseBody
}

// NewResponse builds a response with MessageSize computed from the same
// WireLen values the encoder writes.
func NewResponse(header ResponseHeader, body ResponseBody) *Response {
	return &Response{
		MessageSize: int32(header.WireLen() + body.WireLen()),
		Header:      header,
		Body:        body,
	}
}

// CorrelationID returns the correlation id carried by the header.
func (r *Response) CorrelationID() int32 { return r.Header.Correlation() }

// newRequestBody returns an empty body for k, ready to be decoded into.
func newRequestBody(k ApiKey) (interface {
	RequestBody
	wire.Decoder
}, error) {
	switch k {
	case ApiVersionsKey:
		return &ApiVersionsRequest{}, nil
	case DescribeTopicPartitionsKey:
		return &DescribeTopicPartitionsRequest{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedAPIKey, int16(k))
	}
}

// newResponseBody returns an empty response body for k.
func newResponseBody(k ApiKey) (interface {
	ResponseBody
	wire.Decoder
}, error) {
	switch k {
	case ApiVersionsKey:
		return &ApiVersionsResponse{}, nil
	case DescribeTopicPartitionsKey:
		return &DescribeTopicPartitionsResponse{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedAPIKey, int16(k))
	}
}

// newResponseHeader returns an empty response header of the version used by k.
func newResponseHeader(k ApiKey) interface {
	ResponseHeader
	wire.Decoder
} {
	if k == ApiVersionsKey {
		return &ResponseHeaderV0{}
	}
	return &ResponseHeaderV1{}
}
