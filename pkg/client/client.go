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
Package client provides a minimal Go client for the FlyKafka broker.

QUICK START:
============

	c, err := client.Dial(ctx, "localhost:9092", client.DefaultClientOptions())
	if err != nil {
	    return err
	}
	defer c.Close()

	versions, err := c.ApiVersions(ctx, 4)
	topics, err := c.DescribeTopicPartitions(ctx, "orders")

Protocol-level errors (UNSUPPORTED_VERSION, UNKNOWN_TOPIC_OR_PARTITION) are
returned inside the response body, not as Go errors. A Go error means the
exchange itself failed; after a transport or decode failure the connection is
closed and the client must be dialed again.

THREAD SAFETY:
==============
The client is safe for concurrent use by multiple goroutines. Requests are
serialized on the single connection, one in flight at a time.
*/
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"flykafka/internal/protocol"
	"flykafka/internal/wire"
)

// Software identifiers sent in ApiVersions requests.
const (
	SoftwareName    = "flykafka-go"
	SoftwareVersion = "0.4.0"
)

var (
	// ErrClosed is returned for requests on a closed client.
	ErrClosed = errors.New("client closed")

	// ErrCorrelationMismatch is returned when a response does not echo the
	// correlation id of the request it answers.
	ErrCorrelationMismatch = errors.New("correlation id mismatch")
)

// ClientOptions configures the client connection.
type ClientOptions struct {
	// ClientID is sent in every request header. Empty sends null.
	ClientID string

	// ConnectTimeout bounds the TCP dial. Zero means no limit beyond ctx.
	ConnectTimeout time.Duration

	// RequestTimeout bounds one request/response exchange. Zero means no
	// limit beyond ctx.
	RequestTimeout time.Duration

	// MaxMessageSize bounds accepted response frames.
	MaxMessageSize int
}

// DefaultClientOptions returns options suitable for most uses.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		ClientID:       SoftwareName,
		ConnectTimeout: 10 * time.Second,
		RequestTimeout: 30 * time.Second,
		MaxMessageSize: protocol.DefaultMaxMessageSize,
	}
}

// Client is a connection to one broker.
type Client struct {
	addr    string
	opts    ClientOptions
	mu      sync.Mutex
	conn    net.Conn
	buf     *protocol.ConnectionBuffer
	decoder protocol.ResponseDecoder
	nextID  int32
	closed  bool
}

// NewClient connects to addr with default options.
func NewClient(addr string) (*Client, error) {
	return Dial(context.Background(), addr, DefaultClientOptions())
}

// Dial connects to the broker at addr.
func Dial(ctx context.Context, addr string, opts ClientOptions) (*Client, error) {
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = protocol.DefaultMaxMessageSize
	}

	dialer := &net.Dialer{Timeout: opts.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	return &Client{
		addr:    addr,
		opts:    opts,
		conn:    conn,
		buf:     protocol.NewConnectionBuffer(opts.MaxMessageSize),
		decoder: protocol.ResponseDecoder{MaxMessageSize: opts.MaxMessageSize},
		nextID:  1,
	}, nil
}

// Addr returns the broker address the client was dialed with.
func (c *Client) Addr() string { return c.addr }

// Close closes the connection. It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// ApiVersions asks the broker which APIs and versions it supports. A
// version the broker does not support yields a response carrying
// ErrorUnsupportedVersion and an empty list.
func (c *Client) ApiVersions(ctx context.Context, version int16) (*protocol.ApiVersionsResponse, error) {
	body := &protocol.ApiVersionsRequest{
		ClientSoftwareName:    SoftwareName,
		ClientSoftwareVersion: SoftwareVersion,
	}
	resp, err := c.Do(ctx, protocol.ApiVersionsKey, version, body)
	if err != nil {
		return nil, err
	}
	return resp.Body.(*protocol.ApiVersionsResponse), nil
}

// DescribeOptions selects topics and pagination for DescribeTopicPartitions.
type DescribeOptions struct {
	Topics []string

	// Limit caps the partitions returned. Zero or less means no cap.
	Limit int32

	// Cursor resumes a listing from a previous response's NextCursor.
	Cursor *protocol.Cursor
}

// DescribeTopicPartitions describes the named topics.
func (c *Client) DescribeTopicPartitions(ctx context.Context, topics ...string) (*protocol.DescribeTopicPartitionsResponse, error) {
	return c.DescribeTopicPartitionsWithOptions(ctx, DescribeOptions{Topics: topics})
}

// DescribeTopicPartitionsWithOptions describes topics with explicit
// pagination.
func (c *Client) DescribeTopicPartitionsWithOptions(ctx context.Context, opts DescribeOptions) (*protocol.DescribeTopicPartitionsResponse, error) {
	topics := make([]protocol.TopicRequest, 0, len(opts.Topics))
	for _, name := range opts.Topics {
		topics = append(topics, protocol.TopicRequest{Name: wire.CompactString(name)})
	}
	body := &protocol.DescribeTopicPartitionsRequest{
		Topics:                 protocol.TopicRequestArray{Items: topics},
		ResponsePartitionLimit: wire.Int32(opts.Limit),
		Cursor:                 protocol.NullableCursor{Value: opts.Cursor},
	}
	resp, err := c.Do(ctx, protocol.DescribeTopicPartitionsKey, 0, body)
	if err != nil {
		return nil, err
	}
	return resp.Body.(*protocol.DescribeTopicPartitionsResponse), nil
}

// Do sends one request and waits for its response. The client assigns the
// correlation id.
func (c *Client) Do(ctx context.Context, api protocol.ApiKey, version int16, body protocol.RequestBody) (*protocol.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	id := c.nextID
	c.nextID++

	req := protocol.NewRequest(protocol.RequestHeaderV2{
		ApiKey:        api,
		ApiVersion:    wire.Int16(version),
		CorrelationID: wire.Int32(id),
		ClientID:      wire.NewNullableString(c.opts.ClientID),
	}, body)
	data, err := protocol.EncodeRequest(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", api, err)
	}

	resp, err := c.roundTrip(ctx, api, data)
	if err != nil {
		c.fail()
		return nil, err
	}
	if resp.CorrelationID() != id {
		c.fail()
		return nil, fmt.Errorf("%w: sent %d, received %d", ErrCorrelationMismatch, id, resp.CorrelationID())
	}
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, api protocol.ApiKey, data []byte) (*protocol.Response, error) {
	deadline, hasDeadline := ctx.Deadline()
	if c.opts.RequestTimeout > 0 {
		if d := time.Now().Add(c.opts.RequestTimeout); !hasDeadline || d.Before(deadline) {
			deadline, hasDeadline = d, true
		}
	}
	if hasDeadline {
		c.conn.SetDeadline(deadline)
	} else {
		c.conn.SetDeadline(time.Time{})
	}

	// Unblock pending I/O when ctx is cancelled.
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := c.conn.Write(data); err != nil {
		return nil, ctxErr(ctx, fmt.Errorf("write %s request: %w", api, err))
	}

	for {
		resp, err := c.buf.NextResponse(&c.decoder, api)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, protocol.ErrNeedMoreData) {
			return nil, fmt.Errorf("decode %s response: %w", api, err)
		}
		if n, err := c.buf.Fill(c.conn); err != nil && n == 0 {
			return nil, ctxErr(ctx, fmt.Errorf("read %s response: %w", api, err))
		}
	}
}

// ctxErr attributes an I/O failure to ctx when ctx caused it.
func ctxErr(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return fmt.Errorf("%w: %w", cerr, err)
	}
	if d, ok := ctx.Deadline(); ok && !time.Now().Before(d) {
		return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}
	return err
}

// fail closes the connection after an exchange left the stream in an
// unknown state.
func (c *Client) fail() {
	c.closed = true
	c.conn.Close()
}
