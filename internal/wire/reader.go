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

package wire

import (
	"encoding/binary"
)

// Reader is a cursor over a byte slice. Getters never advance the cursor
// when they fail, so a failed read can be retried or reported without
// losing position.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader positioned at the start of buf.
// The Reader does not copy buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

// Mark returns the current position for a later Reset.
func (r *Reader) Mark() int { return r.off }

// Reset moves the cursor back to a position returned by Mark.
func (r *Reader) Reset(mark int) {
	if mark < 0 || mark > len(r.buf) {
		panic("wire: Reset to invalid mark")
	}
	r.off = mark
}

// Transaction runs fn and rolls the cursor back if fn fails.
func (r *Reader) Transaction(fn func() error) error {
	mark := r.Mark()
	if err := fn(); err != nil {
		r.Reset(mark)
		return err
	}
	return nil
}

// Peek returns the next n bytes without consuming them.
func (r *Reader) Peek(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrMalformedField
	}
	if r.Remaining() < n {
		return nil, ErrUnexpectedEOF
	}
	return r.buf[r.off : r.off+n], nil
}

// Bytes consumes the next n bytes. The returned slice aliases the input.
func (r *Reader) Bytes(n int) ([]byte, error) {
	b, err := r.Peek(n)
	if err != nil {
		return nil, err
	}
	r.off += n
	return b, nil
}

// Int8 reads a signed byte.
func (r *Reader) Int8() (int8, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// Uint8 reads an unsigned byte.
func (r *Reader) Uint8() (uint8, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Int16 reads a big-endian int16.
func (r *Reader) Int16() (int16, error) {
	v, err := r.Uint16()
	return int16(v), err
}

// Uint16 reads a big-endian uint16.
func (r *Reader) Uint16() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// Int32 reads a big-endian int32.
func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

// Uint32 reads a big-endian uint32.
func (r *Reader) Uint32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Int64 reads a big-endian int64.
func (r *Reader) Int64() (int64, error) {
	b, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// Uvarint reads an unsigned varint of at most 32 bits.
func (r *Reader) Uvarint() (uint32, error) {
	v, n, err := ReadUvarint(r.buf[r.off:])
	if err != nil {
		return 0, err
	}
	r.off += n
	return v, nil
}
