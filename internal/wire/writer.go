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

// Writer is an append-only encode buffer. Encode methods cannot fail
// individually; the first error is recorded and reported by Err, and all
// writes after it are dropped.
type Writer struct {
	buf []byte
	err error
}

// NewWriter returns a Writer with room for capacity bytes.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Len returns the number of bytes written.
func (w *Writer) Len() int { return len(w.buf) }

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte { return w.buf }

// Err returns the first error recorded during encoding.
func (w *Writer) Err() error { return w.err }

// SetErr records err unless an earlier error is already recorded.
func (w *Writer) SetErr(err error) {
	if w.err == nil {
		w.err = err
	}
}

// PutInt8 appends a signed byte.
func (w *Writer) PutInt8(v int8) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, byte(v))
}

// PutInt16 appends a big-endian int16.
func (w *Writer) PutInt16(v int16) {
	if w.err != nil {
		return
	}
	w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(v))
}

// PutInt32 appends a big-endian int32.
func (w *Writer) PutInt32(v int32) {
	if w.err != nil {
		return
	}
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v))
}

// PutInt64 appends a big-endian int64.
func (w *Writer) PutInt64(v int64) {
	if w.err != nil {
		return
	}
	w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(v))
}

// PutUvarint appends an unsigned varint.
func (w *Writer) PutUvarint(v uint32) {
	if w.err != nil {
		return
	}
	w.buf = AppendUvarint(w.buf, v)
}

// PutBytes appends raw bytes.
func (w *Writer) PutBytes(p []byte) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, p...)
}

// PutString appends the raw bytes of s.
func (w *Writer) PutString(s string) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, s...)
}
