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
	"errors"
	"fmt"
)

// Decode errors. Everything except ErrUnexpectedEOF describes a value that
// can never become valid by waiting for more bytes.
var (
	// ErrUnexpectedEOF indicates the input ended before a value was complete.
	ErrUnexpectedEOF = errors.New("unexpected end of input")

	// ErrVarintOverflow indicates an unsigned varint carrying more than 32 bits.
	ErrVarintOverflow = errors.New("uvarint overflows 32 bits")

	// ErrInvalidUTF8 indicates a string payload that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("string is not valid UTF-8")

	// ErrZeroLengthNullableString indicates a NULLABLE_STRING with length 0.
	// Null is -1; an empty string has no encoding in this format.
	ErrZeroLengthNullableString = errors.New("nullable string with length 0")

	// ErrUnsupportedTaggedFields indicates a tag buffer with a non-zero
	// field count. Only the empty tag buffer is understood.
	ErrUnsupportedTaggedFields = errors.New("tagged fields are not supported")

	// ErrMalformedField is the generic malformed-value error (bad boolean,
	// negative length, element count larger than the input, ...).
	ErrMalformedField = errors.New("malformed field")
)

// Encode errors.
var (
	// ErrStringTooLong indicates a string that does not fit its length prefix.
	ErrStringTooLong = errors.New("string too long for length prefix")

	// ErrWireLenMismatch indicates that Encode produced a different number of
	// bytes than WireLen declared. This is always a programming error.
	ErrWireLenMismatch = errors.New("encoded length does not match wire length")
)

// FieldError records which field failed to decode or encode.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// fieldErr wraps err with the field name unless err is nil.
func fieldErr(field string, err error) error {
	if err == nil {
		return nil
	}
	return &FieldError{Field: field, Err: err}
}

// LenMismatchError is returned by Marshal when WireLen and Encode disagree.
type LenMismatchError struct {
	Declared int
	Actual   int
}

func (e *LenMismatchError) Error() string {
	return fmt.Sprintf("%v: declared %d, wrote %d", ErrWireLenMismatch, e.Declared, e.Actual)
}

func (e *LenMismatchError) Unwrap() error {
	return ErrWireLenMismatch
}

// TrailingBytesError is returned when a value did not consume all of its input.
type TrailingBytesError struct {
	Count int
}

func (e *TrailingBytesError) Error() string {
	return fmt.Sprintf("%v: %d trailing bytes", ErrMalformedField, e.Count)
}

func (e *TrailingBytesError) Unwrap() error {
	return ErrMalformedField
}

// IsMalformed reports whether err is a decode failure that more input
// cannot fix.
func IsMalformed(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrVarintOverflow) ||
		errors.Is(err, ErrInvalidUTF8) ||
		errors.Is(err, ErrZeroLengthNullableString) ||
		errors.Is(err, ErrUnsupportedTaggedFields) ||
		errors.Is(err, ErrMalformedField)
}
