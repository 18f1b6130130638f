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
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"flykafka/internal/wire"
)

// rawRequest builds a request frame byte by byte, independently of the
// encoders under test.
func rawRequest(apiKey, version int16, correlationID int32, clientID string, body []byte) []byte {
	var payload []byte
	payload = binary.BigEndian.AppendUint16(payload, uint16(apiKey))
	payload = binary.BigEndian.AppendUint16(payload, uint16(version))
	payload = binary.BigEndian.AppendUint32(payload, uint32(correlationID))
	if clientID == "" {
		payload = append(payload, 0xFF, 0xFF)
	} else {
		payload = binary.BigEndian.AppendUint16(payload, uint16(len(clientID)))
		payload = append(payload, clientID...)
	}
	payload = append(payload, 0x00)
	payload = append(payload, body...)

	frame := binary.BigEndian.AppendUint32(nil, uint32(len(payload)))
	return append(frame, payload...)
}

var apiVersionsV4Body = []byte{
	0x0A, 'k', 'a', 'f', 'k', 'a', '-', 'c', 'l', 'i',
	0x04, '0', '.', '1',
	0x00,
}

var describeFooBody = []byte{
	0x02, 0x04, 'f', 'o', 'o', 0x00, // topics: ["foo"]
	0x00, 0x00, 0x00, 0x64, // response_partition_limit: 100
	0xFF, // cursor: null
	0x00, // tagged fields
}

func TestApiKeyString(t *testing.T) {
	tests := []struct {
		key  ApiKey
		want string
	}{
		{ApiVersionsKey, "ApiVersions"},
		{DescribeTopicPartitionsKey, "DescribeTopicPartitions"},
		{ApiKey(0), "Produce"},
		{ApiKey(3), "Metadata"},
		{ApiKey(-5), "ApiKey(-5)"},
	}

	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("ApiKey(%d).String() = %q, expected %q", int16(tt.key), got, tt.want)
		}
	}
}

func TestApiKeyValid(t *testing.T) {
	if !ApiVersionsKey.Valid() || !DescribeTopicPartitionsKey.Valid() {
		t.Error("Expected supported keys to be valid")
	}
	if ApiKey(0).Valid() || ApiKey(19).Valid() {
		t.Error("Expected unsupported keys to be invalid")
	}

	vr, ok := ApiVersionsKey.Versions()
	if !ok || vr.Min != 0 || vr.Max != 4 {
		t.Errorf("Expected ApiVersions range 0-4, got %+v", vr)
	}
	if vr.Contains(5) || vr.Contains(-1) || !vr.Contains(4) {
		t.Error("VersionRange.Contains reported the wrong result")
	}
}

func TestErrorCodeTitle(t *testing.T) {
	if ErrorNone.Title() != "None" {
		t.Errorf("Expected None, got %q", ErrorNone.Title())
	}
	if !strings.Contains(ErrorUnknownTopicOrPartition.Title(), "Unknown Topic") {
		t.Errorf("Unexpected title %q", ErrorUnknownTopicOrPartition.Title())
	}
	if !strings.Contains(ErrorUnsupportedVersion.Title(), "Unsupported Version") {
		t.Errorf("Unexpected title %q", ErrorUnsupportedVersion.Title())
	}
	if ErrorUnknownTopicOrPartition.Description() == "" {
		t.Error("Expected a description for UNKNOWN_TOPIC_OR_PARTITION")
	}
}

func TestFrameDecoderNeedsMoreData(t *testing.T) {
	frame := rawRequest(18, 4, 1, "kafka-cli", apiVersionsV4Body)
	dec := NewFrameDecoder(0)

	for n := 0; n < len(frame); n++ {
		buf := append([]byte(nil), frame[:n]...)
		snapshot := append([]byte(nil), buf...)

		req, consumed, err := dec.Decode(buf)
		if !errors.Is(err, ErrNeedMoreData) {
			t.Fatalf("prefix %d: expected ErrNeedMoreData, got %v", n, err)
		}
		if req != nil || consumed != 0 {
			t.Fatalf("prefix %d: expected nothing consumed, got %d", n, consumed)
		}
		if !bytes.Equal(buf, snapshot) {
			t.Fatalf("prefix %d: buffer was modified", n)
		}

		// A second call with the same bytes gives the same answer.
		if _, consumed, err := dec.Decode(buf); !errors.Is(err, ErrNeedMoreData) || consumed != 0 {
			t.Fatalf("prefix %d: repeat decode returned (%d, %v)", n, consumed, err)
		}
	}
}

func TestFrameDecoderApiVersions(t *testing.T) {
	frame := rawRequest(18, 4, 0x6F7FC661, "kafka-cli", apiVersionsV4Body)
	if len(frame) != 39 {
		t.Fatalf("Expected a 39-byte frame, got %d", len(frame))
	}

	req, consumed, err := NewFrameDecoder(0).Decode(frame)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if consumed != len(frame) {
		t.Errorf("Expected %d bytes consumed, got %d", len(frame), consumed)
	}
	if req.MessageSize != 35 {
		t.Errorf("Expected message size 35, got %d", req.MessageSize)
	}
	if req.ApiKey() != ApiVersionsKey || req.ApiVersion() != 4 {
		t.Errorf("Unexpected api %s v%d", req.ApiKey(), req.ApiVersion())
	}
	if req.CorrelationID() != 0x6F7FC661 {
		t.Errorf("Expected correlation id 0x6F7FC661, got %#x", req.CorrelationID())
	}
	if req.ClientID() != "kafka-cli" {
		t.Errorf("Expected client id kafka-cli, got %q", req.ClientID())
	}

	body, ok := req.Body.(*ApiVersionsRequest)
	if !ok {
		t.Fatalf("Expected *ApiVersionsRequest, got %T", req.Body)
	}
	if body.ClientSoftwareName != "kafka-cli" || body.ClientSoftwareVersion != "0.1" {
		t.Errorf("Unexpected body %+v", body)
	}
	if int(req.MessageSize) != req.Header.WireLen()+req.Body.WireLen() {
		t.Errorf("WireLen mismatch: %d != %d + %d", req.MessageSize, req.Header.WireLen(), req.Body.WireLen())
	}
}

func TestFrameDecoderApiVersionsEmptyBody(t *testing.T) {
	frame := rawRequest(18, 0, 5, "", nil)
	req, consumed, err := NewFrameDecoder(0).Decode(frame)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if consumed != len(frame) {
		t.Errorf("Expected %d bytes consumed, got %d", len(frame), consumed)
	}
	if req.Header.ClientID.Valid {
		t.Error("Expected null client id")
	}
	if body := req.Body.(*ApiVersionsRequest); *body != (ApiVersionsRequest{}) {
		t.Errorf("Expected zero body, got %+v", body)
	}
}

func TestFrameDecoderApiVersionsUnknownVersion(t *testing.T) {
	// The body of an unknown version is not parsed.
	frame := rawRequest(18, 100, 3, "kafka-cli", []byte{0xDE, 0xAD, 0xBE, 0xEF})
	req, consumed, err := NewFrameDecoder(0).Decode(frame)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if consumed != len(frame) || req.ApiVersion() != 100 {
		t.Errorf("Unexpected result: consumed %d, version %d", consumed, req.ApiVersion())
	}
}

func TestFrameDecoderDescribeTopicPartitions(t *testing.T) {
	frame := rawRequest(75, 0, 42, "adminclient-1", describeFooBody)
	req, consumed, err := NewFrameDecoder(0).Decode(frame)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if consumed != len(frame) {
		t.Errorf("Expected %d bytes consumed, got %d", len(frame), consumed)
	}

	body, ok := req.Body.(*DescribeTopicPartitionsRequest)
	if !ok {
		t.Fatalf("Expected *DescribeTopicPartitionsRequest, got %T", req.Body)
	}
	names := body.TopicNames()
	if len(names) != 1 || names[0] != "foo" {
		t.Errorf("Expected [foo], got %v", names)
	}
	if body.ResponsePartitionLimit != 100 {
		t.Errorf("Expected partition limit 100, got %d", body.ResponsePartitionLimit)
	}
	if body.Cursor.Value != nil {
		t.Errorf("Expected null cursor, got %+v", body.Cursor.Value)
	}
}

func TestFrameDecoderDescribeTopicPartitionsWithCursor(t *testing.T) {
	body := []byte{
		0x02, 0x04, 'f', 'o', 'o', 0x00,
		0x00, 0x00, 0x00, 0x0A,
		0x01, 0x04, 'f', 'o', 'o', 0x00, 0x00, 0x00, 0x02, 0x00, // cursor foo/2
		0x00,
	}
	req, _, err := NewFrameDecoder(0).Decode(rawRequest(75, 0, 1, "c", body))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	cur := req.Body.(*DescribeTopicPartitionsRequest).Cursor.Value
	if cur == nil || cur.TopicName != "foo" || cur.PartitionIndex != 2 {
		t.Errorf("Unexpected cursor %+v", cur)
	}
}

func TestFrameDecoderErrors(t *testing.T) {
	tooLarge := binary.BigEndian.AppendUint32(nil, DefaultMaxMessageSize+1)
	negative := []byte{0xFF, 0xFF, 0xFF, 0xFF}

	truncatedHeader := []byte{0x00, 0x00, 0x00, 0x03, 0x00, 0x12, 0x00}

	trailing := rawRequest(75, 0, 7, "c", append(append([]byte(nil), describeFooBody...), 0x00))

	badCursor := append([]byte(nil), describeFooBody...)
	badCursor[10] = 0x05

	taggedHeader := rawRequest(18, 4, 1, "c", apiVersionsV4Body)
	taggedHeader[4+2+2+4+2+1] = 0x01

	tests := []struct {
		name    string
		input   []byte
		wantErr error
	}{
		{"negative size", negative, ErrNegativeMessageSize},
		{"oversized", tooLarge, ErrMessageTooLarge},
		{"unsupported api key", rawRequest(0, 9, 77, "c", []byte{1, 2, 3}), ErrUnsupportedAPIKey},
		{"header shorter than frame", truncatedHeader, wire.ErrUnexpectedEOF},
		{"trailing body bytes", trailing, ErrBodySizeMismatch},
		{"bad cursor marker", rawRequest(75, 0, 1, "c", badCursor), wire.ErrMalformedField},
		{"tagged fields in header", taggedHeader, wire.ErrUnsupportedTaggedFields},
		{"zero length client id", []byte{0, 0, 0, 11, 0, 18, 0, 4, 0, 0, 0, 1, 0, 0, 0}, wire.ErrZeroLengthNullableString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, consumed, err := NewFrameDecoder(0).Decode(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			if req != nil || consumed != 0 {
				t.Errorf("Expected nothing consumed, got (%v, %d)", req, consumed)
			}
			if !IsFatal(err) {
				t.Errorf("Expected %v to be fatal", err)
			}
		})
	}
}

func TestFrameDecoderErrorTypes(t *testing.T) {
	_, _, err := NewFrameDecoder(0).Decode([]byte{0xFF, 0xFF, 0xFF, 0xFE})
	var frameErr *FrameError
	if !errors.As(err, &frameErr) || frameErr.Size != -2 {
		t.Errorf("Expected *FrameError with size -2, got %v", err)
	}

	_, _, err = NewFrameDecoder(0).Decode(rawRequest(1, 0, 77, "c", nil))
	var apiErr *UnsupportedAPIKeyError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *UnsupportedAPIKeyError, got %v", err)
	}
	if apiErr.ApiKey != 1 || apiErr.CorrelationID != 77 {
		t.Errorf("Unexpected error fields %+v", apiErr)
	}

	_, _, err = NewFrameDecoder(0).Decode(rawRequest(75, 0, 31, "c", []byte{0x02}))
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("Expected *DecodeError, got %v", err)
	}
	if decErr.ApiKey != DescribeTopicPartitionsKey || decErr.CorrelationID != 31 {
		t.Errorf("Unexpected error fields %+v", decErr)
	}
}

func TestFrameDecoderCustomLimit(t *testing.T) {
	frame := rawRequest(18, 4, 1, "kafka-cli", apiVersionsV4Body)
	_, _, err := NewFrameDecoder(16).Decode(frame)
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("Expected ErrMessageTooLarge, got %v", err)
	}
}

func TestFrameDecoderConsumesOneFrame(t *testing.T) {
	first := rawRequest(18, 4, 1, "a", apiVersionsV4Body)
	second := rawRequest(75, 0, 2, "b", describeFooBody)
	buf := append(append([]byte(nil), first...), second...)

	req, consumed, err := NewFrameDecoder(0).Decode(buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if consumed != len(first) || req.CorrelationID() != 1 {
		t.Errorf("Expected first frame only, got consumed %d correlation %d", consumed, req.CorrelationID())
	}

	req, consumed, err = NewFrameDecoder(0).Decode(buf[consumed:])
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if consumed != len(second) || req.CorrelationID() != 2 {
		t.Errorf("Expected second frame, got consumed %d correlation %d", consumed, req.CorrelationID())
	}
}

func apiVersionsResponse(correlationID int32) *Response {
	body := &ApiVersionsResponse{
		ErrorCode: ErrorNone,
		ApiKeys:   ApiVersionArray{Items: SupportedApiVersions()},
	}
	return NewResponse(ResponseHeaderFor(ApiVersionsKey, correlationID), body)
}

func TestFrameEncoderApiVersions(t *testing.T) {
	data, err := NewFrameEncoder(0).Encode(apiVersionsResponse(7))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := []byte{
		0x00, 0x00, 0x00, 0x1A, // message_size: 26
		0x00, 0x00, 0x00, 0x07, // correlation_id
		0x00, 0x00, // error_code
		0x03,                                     // api_keys: 2 entries
		0x00, 0x12, 0x00, 0x00, 0x00, 0x04, 0x00, // ApiVersions 0-4
		0x00, 0x4B, 0x00, 0x00, 0x00, 0x00, 0x00, // DescribeTopicPartitions 0-0
		0x00, 0x00, 0x00, 0x00, // throttle_time_ms
		0x00, // tagged fields
	}
	if !bytes.Equal(data, want) {
		t.Errorf("Expected\n% x\ngot\n% x", want, data)
	}
}

func TestFrameEncoderUnsupportedVersion(t *testing.T) {
	resp := NewResponse(ResponseHeaderFor(ApiVersionsKey, 1), &ApiVersionsResponse{ErrorCode: ErrorUnsupportedVersion})
	data, err := NewFrameEncoder(0).Encode(resp)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := []byte{0, 0, 0, 12, 0, 0, 0, 1, 0x00, 0x23, 0x00, 0, 0, 0, 0, 0x00}
	if !bytes.Equal(data, want) {
		t.Errorf("Expected % x, got % x", want, data)
	}
}

func TestFrameEncoderUnknownTopic(t *testing.T) {
	body := &DescribeTopicPartitionsResponse{
		Topics: TopicResponseArray{Items: []TopicResponse{UnknownTopic("foo")}},
	}
	data, err := NewFrameEncoder(0).Encode(NewResponse(ResponseHeaderFor(DescribeTopicPartitionsKey, 9), body))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(data) != 45 {
		t.Fatalf("Expected 45 bytes, got %d", len(data))
	}
	if binary.BigEndian.Uint32(data) != 41 {
		t.Errorf("Expected message size 41, got %d", binary.BigEndian.Uint32(data))
	}
	// header v1 ends with a tag buffer
	if data[8] != 0x00 {
		t.Errorf("Expected header tag buffer, got %#x", data[8])
	}
	topic := data[14:]
	if topic[0] != 0x00 || topic[1] != 0x03 {
		t.Errorf("Expected error code 3, got % x", topic[:2])
	}
	if !bytes.Equal(topic[2:6], []byte{0x04, 'f', 'o', 'o'}) {
		t.Errorf("Expected topic name foo, got % x", topic[2:6])
	}
	if !bytes.Equal(topic[6:22], make([]byte, 16)) {
		t.Errorf("Expected nil topic id, got % x", topic[6:22])
	}
	if !bytes.Equal(topic[22:28], []byte{0x00, 0x00, 0x00, 0x00, 0x0d, 0xf8}) {
		t.Errorf("Expected is_internal, partitions and authorized operations, got % x", topic[22:28])
	}
	if !bytes.Equal(data[len(data)-3:], []byte{0x00, 0xFF, 0x00}) {
		t.Errorf("Expected topic tags, null cursor and tags, got % x", data[len(data)-3:])
	}
}

func TestFrameEncoderSizeMismatch(t *testing.T) {
	resp := apiVersionsResponse(1)
	resp.MessageSize++

	var out bytes.Buffer
	n, err := NewFrameEncoder(0).EncodeTo(&out, resp)
	if !errors.Is(err, ErrMessageSizeMismatch) {
		t.Fatalf("Expected ErrMessageSizeMismatch, got %v", err)
	}
	if n != 0 || out.Len() != 0 {
		t.Errorf("Expected nothing written, got %d bytes", out.Len())
	}

	if _, err := NewFrameEncoder(0).Encode(&Response{}); err == nil {
		t.Error("Expected error for empty response")
	}
}

func TestFrameEncoderTooLarge(t *testing.T) {
	_, err := NewFrameEncoder(8).Encode(apiVersionsResponse(1))
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("Expected ErrMessageTooLarge, got %v", err)
	}
}

func TestEncodeRequestMatchesRawBytes(t *testing.T) {
	header := RequestHeaderV2{
		ApiKey:        DescribeTopicPartitionsKey,
		CorrelationID: 42,
		ClientID:      wire.NewNullableString("adminclient-1"),
	}
	body := &DescribeTopicPartitionsRequest{
		Topics:                 TopicRequestArray{Items: []TopicRequest{{Name: "foo"}}},
		ResponsePartitionLimit: 100,
	}
	data, err := EncodeRequest(NewRequest(header, body))
	if err != nil {
		t.Fatalf("EncodeRequest failed: %v", err)
	}
	want := rawRequest(75, 0, 42, "adminclient-1", describeFooBody)
	if !bytes.Equal(data, want) {
		t.Errorf("Expected\n% x\ngot\n% x", want, data)
	}
}

func TestResponseDecoderRoundTrip(t *testing.T) {
	data, err := NewFrameEncoder(0).Encode(apiVersionsResponse(11))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var dec ResponseDecoder
	resp, consumed, err := dec.Decode(data, ApiVersionsKey)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if consumed != len(data) || resp.CorrelationID() != 11 {
		t.Errorf("Unexpected result: consumed %d, correlation %d", consumed, resp.CorrelationID())
	}
	if _, ok := resp.Header.(ResponseHeaderV0); !ok {
		t.Errorf("Expected ResponseHeaderV0, got %T", resp.Header)
	}
	body := resp.Body.(*ApiVersionsResponse)
	if body.ErrorCode != ErrorNone || body.ApiKeys.Len() != 2 {
		t.Errorf("Unexpected body %+v", body)
	}

	if _, _, err := dec.Decode(data[:len(data)-1], ApiVersionsKey); !errors.Is(err, ErrNeedMoreData) {
		t.Errorf("Expected ErrNeedMoreData, got %v", err)
	}

	// Parsing with the wrong header version leaves bytes over.
	if _, _, err := dec.Decode(data, DescribeTopicPartitionsKey); err == nil {
		t.Error("Expected error decoding as the wrong api")
	}
}

func TestConnectionBufferByteAtATime(t *testing.T) {
	stream := append(rawRequest(18, 4, 1, "a", apiVersionsV4Body), rawRequest(75, 0, 2, "b", describeFooBody)...)
	buf := NewConnectionBuffer(0)
	dec := NewFrameDecoder(0)

	var got []int32
	for _, b := range stream {
		buf.Append([]byte{b})
		for {
			req, err := buf.Next(dec)
			if errors.Is(err, ErrNeedMoreData) {
				break
			}
			if err != nil {
				t.Fatalf("Next failed: %v", err)
			}
			got = append(got, req.CorrelationID())
		}
	}

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Expected correlation ids [1 2], got %v", got)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected empty buffer, got %d bytes", buf.Len())
	}
}

func TestConnectionBufferFill(t *testing.T) {
	stream := append(rawRequest(18, 4, 1, "a", apiVersionsV4Body), rawRequest(18, 3, 2, "b", apiVersionsV4Body)...)
	r := iotest.OneByteReader(bytes.NewReader(stream))
	buf := NewConnectionBuffer(0)
	dec := NewFrameDecoder(0)

	var got []int32
	for len(got) < 2 {
		n, err := buf.Fill(r)
		if err != nil {
			t.Fatalf("Fill failed after %d requests: %v", len(got), err)
		}
		if n != 1 {
			t.Fatalf("Expected one byte per read, got %d", n)
		}
		for {
			req, err := buf.Next(dec)
			if err != nil {
				break
			}
			got = append(got, req.CorrelationID())
		}
	}
	if got[0] != 1 || got[1] != 2 {
		t.Errorf("Expected correlation ids [1 2], got %v", got)
	}
}

func TestConnectionBufferKeepsBytesOnError(t *testing.T) {
	buf := NewConnectionBuffer(0)
	buf.Append([]byte{0x00, 0x00, 0x00})
	if _, err := buf.Next(NewFrameDecoder(0)); !errors.Is(err, ErrNeedMoreData) {
		t.Fatalf("Expected ErrNeedMoreData, got %v", err)
	}
	if buf.Len() != 3 {
		t.Errorf("Expected 3 buffered bytes, got %d", buf.Len())
	}
}

func TestConnectionBufferBoundedGrowth(t *testing.T) {
	buf := NewConnectionBuffer(64)
	r := bytes.NewReader(make([]byte, 1024))
	total := 0
	for {
		n, err := buf.Fill(r)
		total += n
		if errors.Is(err, ErrBufferFull) {
			break
		}
		if err != nil {
			t.Fatalf("Fill failed: %v", err)
		}
	}
	if total != 68 || buf.Len() != 68 {
		t.Errorf("Expected growth to stop at 68 bytes, got %d", total)
	}
}

func FuzzFrameDecoder(f *testing.F) {
	f.Add(rawRequest(18, 4, 1, "kafka-cli", apiVersionsV4Body))
	f.Add(rawRequest(75, 0, 2, "c", describeFooBody))
	f.Add([]byte{0x00, 0x00, 0x00, 0x02, 0x00})
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	f.Fuzz(func(t *testing.T, data []byte) {
		snapshot := append([]byte(nil), data...)
		req, consumed, err := NewFrameDecoder(0).Decode(data)
		if !bytes.Equal(data, snapshot) {
			t.Fatal("decoder modified its input")
		}
		if err != nil {
			if consumed != 0 || req != nil {
				t.Fatalf("error %v with consumed %d", err, consumed)
			}
			return
		}
		if consumed != LengthPrefixSize+int(req.MessageSize) || consumed > len(data) {
			t.Fatalf("consumed %d for message size %d", consumed, req.MessageSize)
		}
	})
}

func BenchmarkFrameDecoder(b *testing.B) {
	frame := rawRequest(75, 0, 2, "adminclient-1", describeFooBody)
	dec := NewFrameDecoder(0)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := dec.Decode(frame); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFrameEncoder(b *testing.B) {
	resp := apiVersionsResponse(1)
	enc := NewFrameEncoder(0)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := enc.Encode(resp); err != nil {
			b.Fatal(err)
		}
	}
}
