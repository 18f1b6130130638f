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

// TagBuffer is the TAG_BUFFER that ends every flexible-version structure.
// It is a compact array of tagged fields; only the empty buffer (a single
// 0x00) is supported.
type TagBuffer struct{}

func (TagBuffer) WireLen() int { return 1 }

func (TagBuffer) Encode(w *Writer) { w.PutUvarint(0) }

func (*TagBuffer) Decode(r *Reader) error {
	return r.Transaction(func() error {
		n, err := r.Uvarint()
		if err != nil {
			return fieldErr("tag_buffer", err)
		}
		if n != 0 {
			return fieldErr("tag_buffer", ErrUnsupportedTaggedFields)
		}
		return nil
	})
}
