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

// CompactArray is a COMPACT_ARRAY of T: UVarint(n+1) followed by n elements.
// An empty array is written as a single 0x00 byte; on decode both 0 (null)
// and 1 yield an empty array.
//
// PT is the pointer type of T, which carries the Decode method:
//
//	type ApiVersionArray = wire.CompactArray[ApiVersion, *ApiVersion]
type CompactArray[T any, PT interface {
	*T
	Field
}] struct {
	Items []T
}

// NewCompactArray returns an array holding items.
func NewCompactArray[T any, PT interface {
	*T
	Field
}](items ...T) CompactArray[T, PT] {
	return CompactArray[T, PT]{Items: items}
}

// Len returns the number of elements.
func (a CompactArray[T, PT]) Len() int { return len(a.Items) }

func (a CompactArray[T, PT]) WireLen() int {
	if len(a.Items) == 0 {
		return 1
	}
	n := UvarintLen(uint32(len(a.Items)) + 1)
	for i := range a.Items {
		n += PT(&a.Items[i]).WireLen()
	}
	return n
}

func (a CompactArray[T, PT]) Encode(w *Writer) {
	if len(a.Items) == 0 {
		w.PutUvarint(0)
		return
	}
	w.PutUvarint(uint32(len(a.Items)) + 1)
	for i := range a.Items {
		PT(&a.Items[i]).Encode(w)
	}
}

func (a *CompactArray[T, PT]) Decode(r *Reader) error {
	return r.Transaction(func() error {
		n, err := r.Uvarint()
		if err != nil {
			return fieldErr("compact_array", err)
		}
		if n <= 1 {
			a.Items = nil
			return nil
		}
		count := int(n - 1)
		// Every element takes at least one byte; a larger count is a lie
		// and must not drive the allocation below.
		if count > r.Remaining() {
			return fieldErr("compact_array", ErrMalformedField)
		}
		items := make([]T, count)
		for i := range items {
			if err := PT(&items[i]).Decode(r); err != nil {
				return err
			}
		}
		a.Items = items
		return nil
	})
}
