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
	"github.com/google/uuid"
)

// Int8 is an INT8.
type Int8 int8

func (Int8) WireLen() int        { return 1 }
func (v Int8) Encode(w *Writer) { w.PutInt8(int8(v)) }

func (v *Int8) Decode(r *Reader) error {
	x, err := r.Int8()
	if err != nil {
		return fieldErr("int8", err)
	}
	*v = Int8(x)
	return nil
}

// Int16 is a big-endian INT16.
type Int16 int16

func (Int16) WireLen() int        { return 2 }
func (v Int16) Encode(w *Writer) { w.PutInt16(int16(v)) }

func (v *Int16) Decode(r *Reader) error {
	x, err := r.Int16()
	if err != nil {
		return fieldErr("int16", err)
	}
	*v = Int16(x)
	return nil
}

// Int32 is a big-endian INT32.
type Int32 int32

func (Int32) WireLen() int        { return 4 }
func (v Int32) Encode(w *Writer) { w.PutInt32(int32(v)) }

func (v *Int32) Decode(r *Reader) error {
	x, err := r.Int32()
	if err != nil {
		return fieldErr("int32", err)
	}
	*v = Int32(x)
	return nil
}

// Int64 is a big-endian INT64.
type Int64 int64

func (Int64) WireLen() int        { return 8 }
func (v Int64) Encode(w *Writer) { w.PutInt64(int64(v)) }

func (v *Int64) Decode(r *Reader) error {
	x, err := r.Int64()
	if err != nil {
		return fieldErr("int64", err)
	}
	*v = Int64(x)
	return nil
}

// Bool is a BOOLEAN: 0x00 is false, 0x01 is true, anything else is rejected.
type Bool bool

func (Bool) WireLen() int { return 1 }

func (v Bool) Encode(w *Writer) {
	if v {
		w.PutInt8(1)
		return
	}
	w.PutInt8(0)
}

func (v *Bool) Decode(r *Reader) error {
	b, err := r.Peek(1)
	if err != nil {
		return fieldErr("bool", err)
	}
	switch b[0] {
	case 0:
		*v = false
	case 1:
		*v = true
	default:
		return fieldErr("bool", ErrMalformedField)
	}
	r.off++
	return nil
}

// UUID is a 16-byte UUID, encoded as its raw bytes.
type UUID uuid.UUID

// NilUUID is the all-zero UUID.
var NilUUID = UUID(uuid.Nil)

// ParseUUID parses the canonical textual form of a UUID.
func ParseUUID(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return NilUUID, err
	}
	return UUID(id), nil
}

// NewUUID returns a random (version 4) UUID.
func NewUUID() UUID {
	return UUID(uuid.New())
}

// IsNil reports whether u is the all-zero UUID.
func (u UUID) IsNil() bool { return uuid.UUID(u) == uuid.Nil }

func (u UUID) String() string { return uuid.UUID(u).String() }

func (UUID) WireLen() int        { return 16 }
func (u UUID) Encode(w *Writer) { w.PutBytes(u[:]) }

func (u *UUID) Decode(r *Reader) error {
	b, err := r.Bytes(16)
	if err != nil {
		return fieldErr("uuid", err)
	}
	copy(u[:], b)
	return nil
}
