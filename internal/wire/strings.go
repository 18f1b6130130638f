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
	"math"
	"unicode/utf8"
)

// maxCompactStringLen is the longest string whose length+1 fits a 32-bit varint.
const maxCompactStringLen = math.MaxUint32 - 1

// CompactString is a COMPACT_STRING: UVarint(len+1) followed by UTF-8 bytes.
// A zero length prefix (null) decodes to the empty string.
type CompactString string

func (s CompactString) WireLen() int {
	return UvarintLen(uint32(len(s))+1) + len(s)
}

func (s CompactString) Encode(w *Writer) {
	if uint64(len(s)) > maxCompactStringLen {
		w.SetErr(fieldErr("compact_string", ErrStringTooLong))
		return
	}
	w.PutUvarint(uint32(len(s)) + 1)
	w.PutString(string(s))
}

func (s *CompactString) Decode(r *Reader) error {
	v, _, err := readCompactString(r)
	if err != nil {
		return fieldErr("compact_string", err)
	}
	*s = CompactString(v)
	return nil
}

// CompactNullableString is a COMPACT_NULLABLE_STRING. A zero length prefix
// means null; a present empty string encodes as UVarint(1).
type CompactNullableString struct {
	Value string
	Valid bool
}

// NewCompactNullableString returns a present string.
func NewCompactNullableString(s string) CompactNullableString {
	return CompactNullableString{Value: s, Valid: true}
}

func (s CompactNullableString) WireLen() int {
	if !s.Valid {
		return 1
	}
	return CompactString(s.Value).WireLen()
}

func (s CompactNullableString) Encode(w *Writer) {
	if !s.Valid {
		w.PutUvarint(0)
		return
	}
	CompactString(s.Value).Encode(w)
}

func (s *CompactNullableString) Decode(r *Reader) error {
	v, null, err := readCompactString(r)
	if err != nil {
		return fieldErr("compact_nullable_string", err)
	}
	*s = CompactNullableString{Value: v, Valid: !null}
	return nil
}

// readCompactString reads a compact string and reports whether it was null.
func readCompactString(r *Reader) (string, bool, error) {
	var (
		s    string
		null bool
	)
	err := r.Transaction(func() error {
		n, err := r.Uvarint()
		if err != nil {
			return err
		}
		if n == 0 {
			null = true
			return nil
		}
		b, err := r.Bytes(int(n - 1))
		if err != nil {
			return err
		}
		if !utf8.Valid(b) {
			return ErrInvalidUTF8
		}
		s = string(b)
		return nil
	})
	return s, null, err
}

// NullableString is a NULLABLE_STRING: int16 length followed by UTF-8 bytes.
// Length -1 is null. Length 0 is rejected on decode, so a valid empty
// string is encoded as null.
type NullableString struct {
	Value string
	Valid bool
}

// NewNullableString returns a present string, or null for "".
func NewNullableString(s string) NullableString {
	return NullableString{Value: s, Valid: s != ""}
}

func (s NullableString) isNull() bool { return !s.Valid || s.Value == "" }

func (s NullableString) WireLen() int {
	if s.isNull() {
		return 2
	}
	return 2 + len(s.Value)
}

func (s NullableString) Encode(w *Writer) {
	if s.isNull() {
		w.PutInt16(-1)
		return
	}
	if len(s.Value) > math.MaxInt16 {
		w.SetErr(fieldErr("nullable_string", ErrStringTooLong))
		return
	}
	w.PutInt16(int16(len(s.Value)))
	w.PutString(s.Value)
}

func (s *NullableString) Decode(r *Reader) error {
	err := r.Transaction(func() error {
		n, err := r.Int16()
		if err != nil {
			return err
		}
		switch {
		case n == -1:
			*s = NullableString{}
			return nil
		case n == 0:
			return ErrZeroLengthNullableString
		case n < 0:
			return ErrMalformedField
		}
		b, err := r.Bytes(int(n))
		if err != nil {
			return err
		}
		if !utf8.Valid(b) {
			return ErrInvalidUTF8
		}
		*s = NullableString{Value: string(b), Valid: true}
		return nil
	})
	return fieldErr("nullable_string", err)
}
