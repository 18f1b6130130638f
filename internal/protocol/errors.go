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
	"fmt"
)

// Framing errors.
var (
	// ErrNeedMoreData indicates the buffer does not yet hold a complete frame.
	// It is not a failure: nothing was consumed and the caller should read more.
	ErrNeedMoreData = errors.New("need more data")

	// ErrNegativeMessageSize indicates a message_size below zero.
	ErrNegativeMessageSize = errors.New("negative message size")

	// ErrMessageTooLarge indicates a message_size above the configured maximum.
	// This protects against memory exhaustion attacks.
	ErrMessageTooLarge = errors.New("message too large")

	// ErrUnsupportedAPIKey is matched by every *UnsupportedAPIKeyError.
	ErrUnsupportedAPIKey = errors.New("unsupported api key")

	// ErrMessageSizeMismatch indicates a response whose declared message_size
	// differs from the encoded length of its header and body. Nothing is written.
	ErrMessageSizeMismatch = errors.New("message size does not match header and body")

	// ErrBodySizeMismatch indicates a body that did not consume exactly the
	// bytes left in its frame.
	ErrBodySizeMismatch = errors.New("body size does not match frame")
)

// FrameError is a fatal framing error: the length prefix itself is unusable,
// so the stream cannot be resynchronized.
type FrameError struct {
	Size int32
	Max  int
	Err  error
}

func (e *FrameError) Error() string {
	if errors.Is(e.Err, ErrMessageTooLarge) {
		return fmt.Sprintf("frame: %v: %d > %d", e.Err, e.Size, e.Max)
	}
	return fmt.Sprintf("frame: %v: %d", e.Err, e.Size)
}

func (e *FrameError) Unwrap() error { return e.Err }

// UnsupportedAPIKeyError is returned when a request names an API outside the
// supported set. The header decoded cleanly, so the correlation id is known.
type UnsupportedAPIKeyError struct {
	ApiKey        ApiKey
	CorrelationID int32
}

func (e *UnsupportedAPIKeyError) Error() string {
	return fmt.Sprintf("unsupported api key %d (correlation id %d)", int16(e.ApiKey), e.CorrelationID)
}

func (e *UnsupportedAPIKeyError) Is(target error) bool {
	return target == ErrUnsupportedAPIKey
}

// DecodeError wraps a malformed header or body. ApiKey and CorrelationID are
// zero when the header itself failed to decode.
type DecodeError struct {
	ApiKey        ApiKey
	CorrelationID int32
	Err           error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s (correlation id %d): %v", e.ApiKey, e.CorrelationID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsFatal reports whether err must terminate the connection. Everything
// except ErrNeedMoreData is fatal.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrNeedMoreData)
}
