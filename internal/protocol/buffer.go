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
	"io"
)

// minReadSize is the smallest free space Fill offers to a Read call.
const minReadSize = 4096

// ErrBufferFull indicates Fill had no room left below the growth limit.
// Draining complete frames before each Fill makes this unreachable.
var ErrBufferFull = errors.New("connection buffer full")

// ConnectionBuffer holds the unconsumed bytes of one connection. Bytes are
// only discarded after a frame decoded successfully, so a short read never
// loses data.
type ConnectionBuffer struct {
	buf   []byte
	start int
	limit int
}

// NewConnectionBuffer returns a buffer whose reads never grow it beyond one
// maximal frame (maxMessageSize plus the length prefix).
func NewConnectionBuffer(maxMessageSize int) *ConnectionBuffer {
	if maxMessageSize <= 0 {
		maxMessageSize = DefaultMaxMessageSize
	}
	limit := maxMessageSize + LengthPrefixSize
	return &ConnectionBuffer{
		buf:   make([]byte, 0, min(minReadSize, limit)),
		limit: limit,
	}
}

// Len returns the number of unconsumed bytes.
func (b *ConnectionBuffer) Len() int { return len(b.buf) - b.start }

// Bytes returns the unconsumed bytes. The slice is only valid until the next
// call that modifies the buffer.
func (b *ConnectionBuffer) Bytes() []byte { return b.buf[b.start:] }

// Append adds p to the end of the buffer.
func (b *ConnectionBuffer) Append(p []byte) {
	b.compact()
	b.buf = append(b.buf, p...)
}

// Fill performs a single Read from r into the buffer's free space and
// returns the number of bytes added.
func (b *ConnectionBuffer) Fill(r io.Reader) (int, error) {
	b.compact()
	if cap(b.buf)-len(b.buf) < minReadSize && cap(b.buf) < b.limit {
		grown := make([]byte, len(b.buf), min(max(2*cap(b.buf), len(b.buf)+minReadSize), b.limit))
		copy(grown, b.buf)
		b.buf = grown
	}
	if len(b.buf) == cap(b.buf) {
		return 0, ErrBufferFull
	}
	n, err := r.Read(b.buf[len(b.buf):cap(b.buf)])
	b.buf = b.buf[:len(b.buf)+n]
	return n, err
}

// Next decodes the next request. On success exactly the frame's bytes are
// discarded; on any error the buffer is left unchanged.
func (b *ConnectionBuffer) Next(d *FrameDecoder) (*Request, error) {
	req, n, err := d.Decode(b.Bytes())
	if err != nil {
		return nil, err
	}
	b.discard(n)
	return req, nil
}

// NextResponse decodes the next response as a response to api.
func (b *ConnectionBuffer) NextResponse(d *ResponseDecoder, api ApiKey) (*Response, error) {
	resp, n, err := d.Decode(b.Bytes(), api)
	if err != nil {
		return nil, err
	}
	b.discard(n)
	return resp, nil
}

func (b *ConnectionBuffer) discard(n int) {
	b.start += n
	if b.start == len(b.buf) {
		b.buf = b.buf[:0]
		b.start = 0
	}
}

// compact moves the unconsumed bytes to the front of the buffer.
func (b *ConnectionBuffer) compact() {
	if b.start == 0 {
		return
	}
	n := copy(b.buf, b.buf[b.start:])
	b.buf = b.buf[:n]
	b.start = 0
}
