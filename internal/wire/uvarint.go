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

// MaxUvarintLen is the longest encoding of a 32-bit unsigned varint.
const MaxUvarintLen = 5

const (
	uvarintContinue = 0x80
	uvarintPayload  = 0x7F
)

// UVarint is an UNSIGNED_VARINT: base-128, least significant group first,
// bit 7 set on every byte but the last.
type UVarint uint32

// UvarintLen returns the encoded length of v without encoding it.
func UvarintLen(v uint32) int {
	switch {
	case v <= 0x7F:
		return 1
	case v <= 0x3FFF:
		return 2
	case v <= 0x1FFFFF:
		return 3
	case v <= 0xFFFFFFF:
		return 4
	default:
		return 5
	}
}

// AppendUvarint appends the encoding of v to dst.
func AppendUvarint(dst []byte, v uint32) []byte {
	for v >= uvarintContinue {
		dst = append(dst, byte(v)|uvarintContinue)
		v >>= 7
	}
	return append(dst, byte(v))
}

// ReadUvarint decodes an unsigned varint from the front of buf and returns
// the value and the number of bytes consumed.
//
// It fails with ErrUnexpectedEOF when buf ends before a byte with bit 7
// clear, and with ErrVarintOverflow when the encoding needs more than 32
// bits. The two are distinct: the first may succeed given more input, the
// second never will.
func ReadUvarint(buf []byte) (uint32, int, error) {
	var result uint32
	for i := 0; i < MaxUvarintLen; i++ {
		if i >= len(buf) {
			return 0, 0, ErrUnexpectedEOF
		}
		b := buf[i]
		if i == MaxUvarintLen-1 && b > 0x0F {
			// The fifth byte holds bits 28-31; anything above is overflow,
			// including a continuation bit.
			return 0, 0, ErrVarintOverflow
		}
		result |= uint32(b&uvarintPayload) << (7 * i)
		if b&uvarintContinue == 0 {
			return result, i + 1, nil
		}
	}
	return 0, 0, ErrVarintOverflow
}

func (v UVarint) WireLen() int { return UvarintLen(uint32(v)) }

func (v UVarint) Encode(w *Writer) { w.PutUvarint(uint32(v)) }

func (v *UVarint) Decode(r *Reader) error {
	x, err := r.Uvarint()
	if err != nil {
		return fieldErr("uvarint", err)
	}
	*v = UVarint(x)
	return nil
}
