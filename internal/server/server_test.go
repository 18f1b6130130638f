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

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"
	"time"

	"flykafka/internal/broker"
	"flykafka/internal/config"
	"flykafka/internal/metrics"
	"flykafka/internal/protocol"
	"flykafka/internal/wire"
)

// MockDispatcher answers every request with fn.
type MockDispatcher struct {
	fn func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)
}

func (d *MockDispatcher) Dispatch(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	return d.fn(ctx, req)
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.BindAddr = "127.0.0.1:0"
	return cfg
}

// startServer starts a server backed by a real broker dispatcher with an
// empty catalog.
func startServer(t *testing.T) *Server {
	t.Helper()
	cfg := testConfig()
	return startServerWith(t, cfg, broker.NewDispatcher(broker.EmptyCatalog{}))
}

func startServerWith(t *testing.T, cfg *config.Config, d Dispatcher) *Server {
	t.Helper()
	s := NewServer(cfg, d)
	s.metrics = &metrics.Metrics{}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { s.Stop() })
	return s
}

// testConn is a client connection that reassembles responses.
type testConn struct {
	t    *testing.T
	conn net.Conn
	buf  *protocol.ConnectionBuffer
}

func dial(t *testing.T, s *Server) *testConn {
	t.Helper()
	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &testConn{t: t, conn: conn, buf: protocol.NewConnectionBuffer(0)}
}

func (c *testConn) write(data []byte) {
	c.t.Helper()
	if _, err := c.conn.Write(data); err != nil {
		c.t.Fatalf("Write failed: %v", err)
	}
}

func (c *testConn) read(api protocol.ApiKey) *protocol.Response {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		resp, err := c.buf.NextResponse(&protocol.ResponseDecoder{}, api)
		if err == nil {
			return resp
		}
		if !errors.Is(err, protocol.ErrNeedMoreData) {
			c.t.Fatalf("Decode response failed: %v", err)
		}
		if _, err := c.buf.Fill(c.conn); err != nil {
			c.t.Fatalf("Read failed: %v", err)
		}
	}
}

// expectClosed waits for the server to close the connection.
func (c *testConn) expectClosed() {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var b [64]byte
	for {
		_, err := c.conn.Read(b[:])
		if err == nil {
			continue
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			c.t.Fatal("Expected server to close the connection")
		}
		return
	}
}

func encodeRequest(t *testing.T, key protocol.ApiKey, version int16, correlationID int32, body protocol.RequestBody) []byte {
	t.Helper()
	data, err := protocol.EncodeRequest(protocol.NewRequest(protocol.RequestHeaderV2{
		ApiKey:        key,
		ApiVersion:    wire.Int16(version),
		CorrelationID: wire.Int32(correlationID),
		ClientID:      wire.NewNullableString("kafka-cli"),
	}, body))
	if err != nil {
		t.Fatalf("EncodeRequest failed: %v", err)
	}
	return data
}

func apiVersionsRequest(t *testing.T, version int16, correlationID int32) []byte {
	return encodeRequest(t, protocol.ApiVersionsKey, version, correlationID, &protocol.ApiVersionsRequest{
		ClientSoftwareName:    "kafka-cli",
		ClientSoftwareVersion: "0.1",
	})
}

func describeRequest(t *testing.T, correlationID int32, names ...string) []byte {
	topics := make([]protocol.TopicRequest, 0, len(names))
	for _, n := range names {
		topics = append(topics, protocol.TopicRequest{Name: wire.CompactString(n)})
	}
	return encodeRequest(t, protocol.DescribeTopicPartitionsKey, 0, correlationID, &protocol.DescribeTopicPartitionsRequest{
		Topics:                 protocol.TopicRequestArray{Items: topics},
		ResponsePartitionLimit: 100,
	})
}

func waitForFailure(t *testing.T, s *Server, class string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if s.metrics.Failures(class) > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Errorf("Expected a %s failure to be recorded", class)
}

func TestNewServer(t *testing.T) {
	cfg := testConfig()
	d := broker.NewDispatcher(nil)

	server := NewServer(cfg, d)
	if server == nil {
		t.Fatal("NewServer returned nil")
	}
	if server.config != cfg {
		t.Error("Server config not set correctly")
	}
	if server.dispatcher != d {
		t.Error("Server dispatcher not set correctly")
	}
	if server.decoder.MaxMessageSize != cfg.MaxMessageSize {
		t.Errorf("Expected decoder limit %d, got %d", cfg.MaxMessageSize, server.decoder.MaxMessageSize)
	}
	if server.Addr() != nil {
		t.Error("Expected nil Addr before Start")
	}
}

func TestServerStartStop(t *testing.T) {
	server := NewServer(testConfig(), broker.NewDispatcher(nil))

	if err := server.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !server.Running() {
		t.Error("Server not marked as running")
	}
	if server.Addr() == nil {
		t.Error("Expected listening address")
	}
	if err := server.Start(); err == nil {
		t.Error("Expected second Start to fail")
	}

	if err := server.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if server.Running() {
		t.Error("Server still marked as running after stop")
	}

	// Second stop should be safe
	if err := server.Stop(); err != nil {
		t.Fatalf("Second Stop failed: %v", err)
	}
}

func TestServerApiVersions(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	c.write(apiVersionsRequest(t, 4, 1234))
	resp := c.read(protocol.ApiVersionsKey)

	if resp.CorrelationID() != 1234 {
		t.Errorf("Expected correlation id 1234, got %d", resp.CorrelationID())
	}
	body := resp.Body.(*protocol.ApiVersionsResponse)
	if body.ErrorCode != protocol.ErrorNone {
		t.Errorf("Expected error code 0, got %d", body.ErrorCode)
	}
	if body.ApiKeys.Len() == 0 {
		t.Error("Expected a non-empty api key list")
	}
	if body.ThrottleTimeMs != 0 {
		t.Errorf("Expected throttle 0, got %d", body.ThrottleTimeMs)
	}
}

func TestServerUnsupportedVersion(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	c.write(apiVersionsRequest(t, 100, 5))
	body := c.read(protocol.ApiVersionsKey).Body.(*protocol.ApiVersionsResponse)

	if body.ErrorCode != protocol.ErrorUnsupportedVersion {
		t.Errorf("Expected error code 35, got %d", body.ErrorCode)
	}
	if body.ApiKeys.Len() != 0 {
		t.Errorf("Expected empty api key list, got %d", body.ApiKeys.Len())
	}

	// The connection stays usable.
	c.write(apiVersionsRequest(t, 4, 6))
	if resp := c.read(protocol.ApiVersionsKey); resp.CorrelationID() != 6 {
		t.Errorf("Expected correlation id 6, got %d", resp.CorrelationID())
	}
}

func TestServerDescribeUnknownTopic(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	c.write(describeRequest(t, 77, "foo"))
	resp := c.read(protocol.DescribeTopicPartitionsKey)

	if _, ok := resp.Header.(protocol.ResponseHeaderV1); !ok {
		t.Errorf("Expected response header v1, got %T", resp.Header)
	}
	topic := resp.Body.(*protocol.DescribeTopicPartitionsResponse).Topics.Items[0]
	if topic.ErrorCode != protocol.ErrorUnknownTopicOrPartition {
		t.Errorf("Expected error code 3, got %d", topic.ErrorCode)
	}
	if topic.Name.Value != "foo" || !topic.TopicID.IsNil() || topic.Partitions.Len() != 0 {
		t.Errorf("Unexpected topic entry %+v", topic)
	}
}

func TestServerPipelinedRequests(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	var batch []byte
	for i := int32(1); i <= 3; i++ {
		batch = append(batch, apiVersionsRequest(t, 4, i)...)
	}
	c.write(batch)

	for i := int32(1); i <= 3; i++ {
		if resp := c.read(protocol.ApiVersionsKey); resp.CorrelationID() != i {
			t.Errorf("Expected correlation id %d, got %d", i, resp.CorrelationID())
		}
	}
}

func TestServerByteAtATime(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	for _, b := range apiVersionsRequest(t, 4, 9) {
		c.write([]byte{b})
		time.Sleep(time.Millisecond)
	}
	if resp := c.read(protocol.ApiVersionsKey); resp.CorrelationID() != 9 {
		t.Errorf("Expected correlation id 9, got %d", resp.CorrelationID())
	}
}

func TestServerClosesOnBadInput(t *testing.T) {
	malformed := describeRequest(t, 1, "foo")
	malformed[len(malformed)-1] = 0x01 // non-empty tagged fields

	tests := []struct {
		name  string
		input []byte
		class string
	}{
		{"negative size", []byte{0xFF, 0xFF, 0xFF, 0xFF}, ClassFraming},
		{"too large", []byte{0x7F, 0xFF, 0xFF, 0xFF}, ClassFraming},
		{"unknown api key", encodeRequest(t, protocol.ApiKey(1), 0, 1, &protocol.ApiVersionsRequest{}), ClassUnsupportedAPIKey},
		{"malformed body", malformed, ClassMalformed},
		{"two topics", describeRequest(t, 1, "a", "b"), ClassHandler},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := startServer(t)
			c := dial(t, s)
			c.write(tt.input)
			c.expectClosed()
			waitForFailure(t, s, tt.class)
		})
	}
}

func TestServerEncodeFailure(t *testing.T) {
	d := &MockDispatcher{fn: func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
		resp := protocol.NewResponse(protocol.ResponseHeaderFor(req.ApiKey(), req.CorrelationID()), &protocol.ApiVersionsResponse{})
		resp.MessageSize++
		return resp, nil
	}}
	s := startServerWith(t, testConfig(), d)
	c := dial(t, s)

	c.write(apiVersionsRequest(t, 4, 1))
	c.expectClosed()
	waitForFailure(t, s, ClassEncode)
}

func TestServerStopClosesConnections(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	c.write(apiVersionsRequest(t, 4, 1))
	c.read(protocol.ApiVersionsKey)

	done := make(chan error, 1)
	go func() { done <- s.Stop() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Stop failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return with an idle connection open")
	}
	c.expectClosed()
}

func TestServerReadTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.ReadTimeoutMs = 50
	s := startServerWith(t, cfg, broker.NewDispatcher(nil))
	c := dial(t, s)

	c.expectClosed()
	waitForFailure(t, s, ClassIO)
}

func TestServerMetrics(t *testing.T) {
	s := startServer(t)
	c := dial(t, s)

	req := apiVersionsRequest(t, 4, 1)
	c.write(req)
	c.read(protocol.ApiVersionsKey)

	if got := s.metrics.BytesRead.Load(); got != uint64(len(req)) {
		t.Errorf("Expected %d bytes read, got %d", len(req), got)
	}
	if s.metrics.BytesWritten.Load() == 0 {
		t.Error("Expected bytes written to be recorded")
	}
	if s.metrics.TotalConnections.Load() != 1 {
		t.Errorf("Expected 1 connection, got %d", s.metrics.TotalConnections.Load())
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&protocol.FrameError{Size: -1, Err: protocol.ErrNegativeMessageSize}, ClassFraming},
		{protocol.ErrBufferFull, ClassFraming},
		{&protocol.UnsupportedAPIKeyError{ApiKey: 1}, ClassUnsupportedAPIKey},
		{&protocol.DecodeError{ApiKey: 75, Err: wire.ErrUnsupportedTaggedFields}, ClassMalformed},
		{fmt.Errorf("x: %w", wire.ErrVarintOverflow), ClassMalformed},
		{&broker.HandlerError{ApiKey: 75, Err: broker.ErrTopicCountUnsupported}, ClassHandler},
		{&encodeError{Err: protocol.ErrMessageSizeMismatch}, ClassEncode},
		{&encodeError{Err: &protocol.FrameError{Err: protocol.ErrMessageTooLarge}}, ClassEncode},
		{io.ErrUnexpectedEOF, ClassIO},
		{fmt.Errorf("write response: %w", net.ErrClosed), ClassIO},
	}

	for _, tt := range tests {
		if got := classify(tt.err); got != tt.want {
			t.Errorf("classify(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
