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
Package protocol defines the subset of the Kafka broker protocol spoken by FlyKafka.

PROTOCOL OVERVIEW:
==================
Every request and response is a length-prefixed frame over TCP. The length
counts everything after the 4-byte prefix:

	+-------+-------+-------+-------+----------------------------------+
	| message_size (int32, big-endian) | header | body                  |
	+-------+-------+-------+-------+----------------------------------+

REQUEST HEADER (v2):
====================

	api_key         int16
	api_version     int16
	correlation_id  int32
	client_id       NULLABLE_STRING
	tagged_fields   TAG_BUFFER

RESPONSE HEADERS:
=================

	v0: correlation_id int32                (ApiVersions)
	v1: correlation_id int32, TAG_BUFFER    (every other API)

SUPPORTED APIS:
===============

	ApiVersions              (18)  versions 0-4
	DescribeTopicPartitions  (75)  version 0

Any other api_key is rejected with *UnsupportedAPIKeyError once the header has
been parsed, and the connection is closed.

EXAMPLE: APIVERSIONS v4 REQUEST
===============================

	00 00 00 23                 message_size: 35
	00 12                       api_key: 18
	00 04                       api_version: 4
	6F 7F C6 61                 correlation_id
	00 09 6B 61 66 6B 61 2D ... client_id: "kafka-cli"
	00                          header tagged fields
	0A 6B 61 66 6B 61 2D 63 ... client_software_name: "kafka-cli"
	04 30 2E 31                 client_software_version: "0.1"
	00                          body tagged fields

FRAMING:
========
FrameDecoder turns an arbitrarily chunked byte stream into requests, one per
call, without consuming anything until a whole frame is buffered (see
frame.go). FrameEncoder writes responses after checking that the declared
message_size matches the encoded header and body.
*/
package protocol

import (
	"strconv"

	"github.com/segmentio/kafka-go"
	kafkaprotocol "github.com/segmentio/kafka-go/protocol"

	"flykafka/internal/wire"
)

const (
	// DefaultMaxMessageSize bounds message_size unless a decoder is configured
	// otherwise. It also bounds how far a connection buffer may grow.
	DefaultMaxMessageSize = 1024 * 1024 // 1MB

	// LengthPrefixSize is the size of the message_size field.
	LengthPrefixSize = 4
)

// ApiKey identifies the API a request is addressed to.
type ApiKey int16

// Supported APIs.
const (
	ApiVersionsKey             ApiKey = 18
	DescribeTopicPartitionsKey ApiKey = 75
)

// VersionRange is an inclusive range of supported versions for one API.
type VersionRange struct {
	Min int16
	Max int16
}

// Contains reports whether v is inside the range.
func (r VersionRange) Contains(v int16) bool {
	return v >= r.Min && v <= r.Max
}

// SupportedVersions lists every API the server answers, in advertised order.
var SupportedVersions = []struct {
	Key ApiKey
	VersionRange
}{
	{ApiVersionsKey, VersionRange{Min: 0, Max: 4}},
	{DescribeTopicPartitionsKey, VersionRange{Min: 0, Max: 0}},
}

// Versions returns the supported range for k.
func (k ApiKey) Versions() (VersionRange, bool) {
	for _, s := range SupportedVersions {
		if s.Key == k {
			return s.VersionRange, true
		}
	}
	return VersionRange{}, false
}

// Valid reports whether k is one of the supported APIs.
func (k ApiKey) Valid() bool {
	_, ok := k.Versions()
	return ok
}

func (k ApiKey) String() string {
	switch k {
	case ApiVersionsKey:
		return "ApiVersions"
	case DescribeTopicPartitionsKey:
		return "DescribeTopicPartitions"
	}
	if s := kafkaprotocol.ApiKey(k).String(); s != "" && s != strconv.Itoa(int(k)) {
		return s
	}
	return "ApiKey(" + strconv.Itoa(int(k)) + ")"
}

func (ApiKey) WireLen() int { return 2 }

func (k ApiKey) Encode(w *wire.Writer) { w.PutInt16(int16(k)) }

func (k *ApiKey) Decode(r *wire.Reader) error {
	var v wire.Int16
	if err := v.Decode(r); err != nil {
		return &wire.FieldError{Field: "api_key", Err: err}
	}
	*k = ApiKey(v)
	return nil
}

// ErrorCode is a Kafka protocol error code carried in response bodies.
type ErrorCode int16

// Error codes produced by the handlers.
const (
	ErrorNone                    ErrorCode = 0
	ErrorUnknownTopicOrPartition ErrorCode = 3
	ErrorUnsupportedVersion      ErrorCode = 35
	ErrorInvalidRequest          ErrorCode = 42
)

// Title returns the human readable name of the code.
func (c ErrorCode) Title() string {
	if c == ErrorNone {
		return "None"
	}
	if t := kafka.Error(c).Title(); t != "" {
		return t
	}
	return "Error(" + strconv.Itoa(int(c)) + ")"
}

// Description returns the broker's explanation of the code.
func (c ErrorCode) Description() string {
	if c == ErrorNone {
		return "no error"
	}
	return kafka.Error(c).Description()
}

func (c ErrorCode) String() string { return c.Title() }

func (ErrorCode) WireLen() int { return 2 }

func (c ErrorCode) Encode(w *wire.Writer) { w.PutInt16(int16(c)) }

func (c *ErrorCode) Decode(r *wire.Reader) error {
	var v wire.Int16
	if err := v.Decode(r); err != nil {
		return &wire.FieldError{Field: "error_code", Err: err}
	}
	*c = ErrorCode(v)
	return nil
}
