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
	"errors"
	"fmt"
	"io"

	"flykafka/internal/wire"
)

// errMissingPart is returned when a message has no header or body to encode.
var errMissingPart = errors.New("message has no header or body")

// FrameDecoder reassembles request frames from a byte stream.
//
// DECODING CONTRACT:
// ==================
// Decode looks only at the front of buf and never modifies it.
//
//   - Fewer than 4+message_size bytes: ErrNeedMoreData, consumed = 0.
//     Calling again with the same bytes gives the same answer.
//   - Negative or oversized message_size: *FrameError (fatal).
//   - A whole frame: the header and body are parsed in one pass and
//     consumed = 4+message_size. The body must use every byte of the frame.
//   - An api_key outside the supported set: *UnsupportedAPIKeyError, raised
//     after the header and before the body is looked at.
type FrameDecoder struct {
	// MaxMessageSize bounds message_size. Zero means DefaultMaxMessageSize.
	MaxMessageSize int
}

// NewFrameDecoder returns a decoder accepting frames up to maxMessageSize.
func NewFrameDecoder(maxMessageSize int) *FrameDecoder {
	return &FrameDecoder{MaxMessageSize: maxMessageSize}
}

func (d *FrameDecoder) max() int {
	if d == nil || d.MaxMessageSize <= 0 {
		return DefaultMaxMessageSize
	}
	return d.MaxMessageSize
}

// Decode decodes the first request in buf.
func (d *FrameDecoder) Decode(buf []byte) (*Request, int, error) {
	size, err := frameSize(buf, d.max())
	if err != nil {
		return nil, 0, err
	}

	r := wire.NewReader(buf[LengthPrefixSize : LengthPrefixSize+size])
	req := &Request{MessageSize: int32(size)}
	if err := req.Header.Decode(r); err != nil {
		return nil, 0, &DecodeError{Err: err}
	}

	key := req.Header.ApiKey
	if !key.Valid() {
		return nil, 0, &UnsupportedAPIKeyError{ApiKey: key, CorrelationID: req.CorrelationID()}
	}

	body, err := newRequestBody(key)
	if err != nil {
		return nil, 0, err
	}
	if key == ApiVersionsKey && !apiVersionsBodyReadable(req.ApiVersion()) {
		// Versions newer than we know may change the body layout; the
		// handler answers UNSUPPORTED_VERSION without looking at it.
		req.Body = body
		return req, LengthPrefixSize + size, nil
	}
	if err := body.Decode(r); err != nil {
		return nil, 0, &DecodeError{ApiKey: key, CorrelationID: req.CorrelationID(), Err: err}
	}
	if r.Remaining() != 0 {
		return nil, 0, &DecodeError{
			ApiKey:        key,
			CorrelationID: req.CorrelationID(),
			Err:           fmt.Errorf("%w: %d trailing bytes", ErrBodySizeMismatch, r.Remaining()),
		}
	}
	req.Body = body
	return req, LengthPrefixSize + size, nil
}

func apiVersionsBodyReadable(version int16) bool {
	vr, _ := ApiVersionsKey.Versions()
	return vr.Contains(version)
}

// frameSize validates the length prefix at the front of buf and returns
// message_size once the whole frame is buffered.
func frameSize(buf []byte, max int) (int, error) {
	if len(buf) < LengthPrefixSize {
		return 0, ErrNeedMoreData
	}
	size, err := wire.NewReader(buf).Int32()
	if err != nil {
		return 0, ErrNeedMoreData
	}
	if size < 0 {
		return 0, &FrameError{Size: size, Max: max, Err: ErrNegativeMessageSize}
	}
	if int64(size) > int64(max) {
		return 0, &FrameError{Size: size, Max: max, Err: ErrMessageTooLarge}
	}
	if len(buf)-LengthPrefixSize < int(size) {
		return 0, ErrNeedMoreData
	}
	return int(size), nil
}

// FrameEncoder serializes responses.
type FrameEncoder struct {
	// MaxMessageSize bounds message_size. Zero means DefaultMaxMessageSize.
	MaxMessageSize int
}

// NewFrameEncoder returns an encoder producing frames up to maxMessageSize.
func NewFrameEncoder(maxMessageSize int) *FrameEncoder {
	return &FrameEncoder{MaxMessageSize: maxMessageSize}
}

func (e *FrameEncoder) max() int {
	if e == nil || e.MaxMessageSize <= 0 {
		return DefaultMaxMessageSize
	}
	return e.MaxMessageSize
}

// Encode returns the wire bytes of resp. It fails with ErrMessageSizeMismatch
// if resp.MessageSize disagrees with the header and body.
func (e *FrameEncoder) Encode(resp *Response) ([]byte, error) {
	if resp == nil || resp.Header == nil || resp.Body == nil {
		return nil, errMissingPart
	}
	return encodeFrame(resp.MessageSize, e.max(), resp.Header, resp.Body)
}

// EncodeTo encodes resp and writes it to w in a single Write call.
// Nothing is written if encoding fails.
func (e *FrameEncoder) EncodeTo(w io.Writer, resp *Response) (int, error) {
	data, err := e.Encode(resp)
	if err != nil {
		return 0, err
	}
	return w.Write(data)
}

// EncodeRequest returns the wire bytes of req.
func EncodeRequest(req *Request) ([]byte, error) {
	if req == nil || req.Body == nil {
		return nil, errMissingPart
	}
	return encodeFrame(req.MessageSize, DefaultMaxMessageSize, req.Header, req.Body)
}

func encodeFrame(size int32, max int, parts ...wire.Encoder) ([]byte, error) {
	want := wire.SumWireLen(parts...)
	if int(size) != want {
		return nil, fmt.Errorf("%w: declared %d, header and body %d", ErrMessageSizeMismatch, size, want)
	}
	if want > max {
		return nil, &FrameError{Size: size, Max: max, Err: ErrMessageTooLarge}
	}

	w := wire.NewWriter(LengthPrefixSize + want)
	w.PutInt32(size)
	wire.EncodeAll(w, parts...)
	if err := w.Err(); err != nil {
		return nil, err
	}
	if w.Len() != LengthPrefixSize+want {
		return nil, &wire.LenMismatchError{Declared: LengthPrefixSize + want, Actual: w.Len()}
	}
	return w.Bytes(), nil
}

// ResponseDecoder is the client-side counterpart of FrameDecoder. The
// response header carries no api key, so the caller names the API it expects.
type ResponseDecoder struct {
	// MaxMessageSize bounds message_size. Zero means DefaultMaxMessageSize.
	MaxMessageSize int
}

func (d *ResponseDecoder) max() int {
	if d == nil || d.MaxMessageSize <= 0 {
		return DefaultMaxMessageSize
	}
	return d.MaxMessageSize
}

// Decode decodes the first response in buf as a response to an api request.
func (d *ResponseDecoder) Decode(buf []byte, api ApiKey) (*Response, int, error) {
	size, err := frameSize(buf, d.max())
	if err != nil {
		return nil, 0, err
	}

	r := wire.NewReader(buf[LengthPrefixSize : LengthPrefixSize+size])
	header := newResponseHeader(api)
	if err := header.Decode(r); err != nil {
		return nil, 0, &DecodeError{ApiKey: api, Err: err}
	}
	body, err := newResponseBody(api)
	if err != nil {
		return nil, 0, err
	}
	if err := body.Decode(r); err != nil {
		return nil, 0, &DecodeError{ApiKey: api, CorrelationID: header.Correlation(), Err: err}
	}
	if r.Remaining() != 0 {
		return nil, 0, &DecodeError{
			ApiKey:        api,
			CorrelationID: header.Correlation(),
			Err:           fmt.Errorf("%w: %d trailing bytes", ErrBodySizeMismatch, r.Remaining()),
		}
	}

	return &Response{MessageSize: int32(size), Header: derefHeader(header), Body: body}, LengthPrefixSize + size, nil
}

// derefHeader stores headers by value so callers can switch on
// ResponseHeaderV0 / ResponseHeaderV1.
func derefHeader(h ResponseHeader) ResponseHeader {
	switch h := h.(type) {
	case *ResponseHeaderV0:
		return *h
	case *ResponseHeaderV1:
		return *h
	default:
		return h
	}
}
