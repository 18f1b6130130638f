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

/*
Package wire implements the primitive value encodings of the Kafka wire protocol.

OVERVIEW:
=========
Every value that crosses the wire is one of a small set of primitive types,
or an aggregate composed of them. Each type provides three capabilities:

	WireLen() int          exact number of bytes Encode will produce
	Encode(w *Writer)      append the encoded value to w
	Decode(r *Reader) error read the value from r (pointer receiver)

PRIMITIVE TYPES:
================

	Int8, Int16, Int32, Int64   big-endian fixed width
	Bool                        one byte, 0x00 or 0x01
	UVarint                     unsigned LEB128, 1-5 bytes, at most 32 bits
	CompactString               UVarint(len+1) + UTF-8 bytes
	CompactNullableString       as CompactString, UVarint(0) = null
	NullableString              int16 length + UTF-8 bytes, -1 = null, 0 rejected
	CompactArray[T]             UVarint(n+1) + n elements, empty = single 0x00
	TagBuffer                   tagged fields; only the empty form (0x00) is supported
	UUID                        16 raw bytes

AGGREGATES:
===========
Aggregate types list their fields once and derive all three capabilities
from that list, so length and encoding can never disagree on field order:

	func (v *ApiVersion) fields() []wire.Field {
	    return []wire.Field{&v.ApiKey, &v.MinVersion, &v.MaxVersion, &v.Tags}
	}

	func (v ApiVersion) WireLen() int           { return wire.SumWireLen(v.fields()...) }
	func (v ApiVersion) Encode(w *wire.Writer)  { wire.EncodeAll(w, v.fields()...) }
	func (v *ApiVersion) Decode(r *wire.Reader) error { return wire.DecodeAll(r, v.fields()...) }

ERRORS:
=======
Decoding never panics on hostile input. Running out of bytes yields
ErrUnexpectedEOF; every other failure is a malformed-field error (see
errors.go). Errors are wrapped in *FieldError naming the field that failed.
*/
package wire

// Encoder is implemented by every wire type.
type Encoder interface {
	// WireLen returns the exact number of bytes Encode appends.
	WireLen() int
	// Encode appends the encoded value to w.
	Encode(w *Writer)
}

// Decoder is implemented by pointers to wire types.
type Decoder interface {
	// Decode reads one value from r. On failure the cursor of r is left
	// where it was before the call.
	Decode(r *Reader) error
}

// Field is a pointer to a wire value: it can be measured, encoded and decoded.
type Field interface {
	Encoder
	Decoder
}

// SumWireLen returns the total encoded length of fields.
func SumWireLen[F Encoder](fields ...F) int {
	n := 0
	for _, f := range fields {
		n += f.WireLen()
	}
	return n
}

// EncodeAll encodes fields into w in order.
func EncodeAll[F Encoder](w *Writer, fields ...F) {
	for _, f := range fields {
		f.Encode(w)
	}
}

// DecodeAll decodes fields from r in order. It is transactional: if any
// field fails, the cursor is rolled back to where it was before the call.
func DecodeAll[F Decoder](r *Reader, fields ...F) error {
	return r.Transaction(func() error {
		for _, f := range fields {
			if err := f.Decode(r); err != nil {
				return err
			}
		}
		return nil
	})
}

// Marshal encodes e into a new byte slice and verifies that the number of
// bytes produced equals e.WireLen().
func Marshal(e Encoder) ([]byte, error) {
	want := e.WireLen()
	w := NewWriter(want)
	e.Encode(w)
	if err := w.Err(); err != nil {
		return nil, err
	}
	if w.Len() != want {
		return nil, &LenMismatchError{Declared: want, Actual: w.Len()}
	}
	return w.Bytes(), nil
}

// Unmarshal decodes data into d and requires every byte to be consumed.
func Unmarshal(data []byte, d Decoder) error {
	r := NewReader(data)
	if err := d.Decode(r); err != nil {
		return err
	}
	if r.Remaining() != 0 {
		return &TrailingBytesError{Count: r.Remaining()}
	}
	return nil
}
