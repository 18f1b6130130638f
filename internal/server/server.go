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
Package server implements the FlyKafka TCP server that handles client connections.

ARCHITECTURE OVERVIEW:
======================
The server package is the network-facing component of FlyKafka. It:

1. Accepts incoming client connections
2. Reassembles Kafka protocol frames from the byte stream
3. Routes each decoded request to the broker's Dispatcher
4. Writes the encoded response back, in request order
5. Manages connection lifecycle and graceful shutdown

CONNECTION FLOW:
================
1. Client connects to server
2. Server spawns a goroutine to handle the connection
3. The handler reads whatever bytes are available into a ConnectionBuffer
4. Every complete frame in the buffer is decoded, dispatched and answered
5. Incomplete frames stay buffered until more bytes arrive
6. Loop continues until the client disconnects, an error occurs, or the
   server shuts down

ERROR HANDLING:
===============
A request that cannot be decoded or answered leaves the stream in an
unknown state, so the connection is closed. Errors are logged and counted
under one of these classes:

	framing              unusable message_size
	malformed            a field failed to decode
	unsupported_api_key  api key outside the supported set
	handler              the broker could not answer the request
	encode               the response could not be serialized
	io                   read or write failure, timeout

A clean EOF from the client is not an error.

THREAD SAFETY:
==============
- The server uses sync.RWMutex to protect the running state
- Each connection is handled independently in its own goroutine
- The dispatcher must be safe for concurrent use
*/
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"flykafka/internal/broker"
	"flykafka/internal/config"
	"flykafka/internal/logging"
	"flykafka/internal/metrics"
	"flykafka/internal/protocol"
	"flykafka/internal/tracing"
	"flykafka/internal/wire"
)

// Failure classes used in logs and metrics.
const (
	ClassFraming           = "framing"
	ClassMalformed         = "malformed"
	ClassUnsupportedAPIKey = "unsupported_api_key"
	ClassHandler           = "handler"
	ClassEncode            = "encode"
	ClassIO                = "io"
)

// Dispatcher answers decoded requests. *broker.Dispatcher implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *protocol.Request) (*protocol.Response, error)
}

// Server accepts Kafka protocol connections.
type Server struct {
	config     *config.Config
	dispatcher Dispatcher
	decoder    *protocol.FrameDecoder
	encoder    *protocol.FrameEncoder
	tracer     *tracing.Tracer
	metrics    *metrics.Metrics

	logger      *logging.Logger
	connLogger  *logging.ConnectionLogger
	reqLogger   *logging.RequestLogger
	errorLogger *logging.ErrorLogger

	// ln is the network listener
	ln net.Listener

	// stopCh is closed to signal all goroutines to stop.
	stopCh chan struct{}

	// wg tracks the accept loop and active connection handlers.
	wg sync.WaitGroup

	// mu protects the running state from concurrent access
	mu      sync.RWMutex
	running bool

	// conns holds open connections so Stop can unblock their reads.
	conns sync.Map
}

// NewServer creates a server answering requests with dispatcher.
func NewServer(cfg *config.Config, dispatcher Dispatcher) *Server {
	logger := logging.NewLogger("server")
	return &Server{
		config:      cfg,
		dispatcher:  dispatcher,
		decoder:     protocol.NewFrameDecoder(cfg.MaxMessageSize),
		encoder:     protocol.NewFrameEncoder(cfg.MaxMessageSize),
		tracer:      tracing.NewTracer(&cfg.Observability.Tracing),
		metrics:     metrics.Get(),
		logger:      logger,
		connLogger:  logging.NewConnectionLogger(logger),
		reqLogger:   logging.NewRequestLogger(logger),
		errorLogger: logging.NewErrorLogger(logger),
	}
}

// SetTracer replaces the request tracer. It must be called before Start.
func (s *Server) SetTracer(t *tracing.Tracer) {
	s.tracer = t
}

// Tracer returns the request tracer.
func (s *Server) Tracer() *tracing.Tracer {
	return s.tracer
}

// Start listens on the configured address and begins accepting connections
// in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("server already running")
	}

	ln, err := listen(s.config.BindAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.BindAddr, err)
	}
	s.ln = ln
	s.stopCh = make(chan struct{})
	s.running = true

	s.logger.Info("Server started",
		"addr", ln.Addr().String(),
		"max_message_size", s.decoder.MaxMessageSize,
	)

	s.wg.Add(1)
	go s.acceptLoop(ln, s.stopCh)
	return nil
}

// Addr returns the listening address, or nil if the server is not running.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Stop stops accepting connections, closes open ones and waits for their
// handlers to return. It is safe to call more than once.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	err := s.ln.Close()
	s.mu.Unlock()

	s.conns.Range(func(key, _ interface{}) bool {
		key.(net.Conn).Close()
		return true
	})
	s.wg.Wait()

	if terr := s.tracer.Shutdown(); terr != nil {
		s.logger.Warn("Tracer shutdown failed", "error", terr)
	}

	s.logger.Info("Server stopped")
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// Running reports whether the server is accepting connections.
func (s *Server) Running() bool {
	return !s.stopping()
}

func (s *Server) stopping() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.running
}

// acceptLoop accepts connections until stopCh is closed. wg.Add(1) is
// called before each handler goroutine starts so Stop never misses one.
func (s *Server) acceptLoop(ln net.Listener, stopCh chan struct{}) {
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-stopCh:
				return
			default:
				s.logger.Error("Accept error", "error", err)
				time.Sleep(10 * time.Millisecond)
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// connection is the per-connection state owned by one handler goroutine.
type connection struct {
	id    string
	conn  net.Conn
	buf   *protocol.ConnectionBuffer
	start time.Time
	stats logging.ConnectionStats
}

// handleConn serves one client connection until it closes.
func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	s.conns.Store(conn, struct{}{})
	defer s.conns.Delete(conn)
	if s.stopping() {
		return
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		// Responses are small and latency-bound.
		tcpConn.SetNoDelay(true)
		tcpConn.SetKeepAlive(true)
		tcpConn.SetKeepAlivePeriod(30 * time.Second)
	}

	c := &connection{
		id:    logging.GenerateConnectionID(conn),
		conn:  conn,
		buf:   protocol.NewConnectionBuffer(s.decoder.MaxMessageSize),
		start: time.Now(),
	}

	s.metrics.ConnectionOpened()
	s.connLogger.LogNewConnection(c.id, conn)
	ctx, span := s.tracer.StartSpan(context.Background(), "kafka.connection", tracing.SpanKindServer)
	s.tracer.SetSpanAttribute(span, "net.peer.addr", conn.RemoteAddr().String())
	s.tracer.SetSpanAttribute(span, "connection_id", c.id)

	reason := "client_disconnect"
	defer func() {
		if v := recover(); v != nil {
			reason = "panic"
			s.metrics.RecordFailure(ClassHandler)
			s.errorLogger.LogRecovery(v, string(debug.Stack()), "serve")
		}
		s.metrics.ConnectionClosed()
		s.tracer.EndSpan(span)
		s.connLogger.LogConnectionClosed(c.id, conn, reason, time.Since(c.start), c.stats)
	}()

	err := s.serveConn(ctx, c)
	switch {
	case s.stopping():
		reason = "server_shutdown"
	case err == nil, errors.Is(err, io.EOF):
		if c.buf.Len() > 0 {
			s.logger.Debug("Client closed mid-frame", "connection_id", c.id, "buffered", c.buf.Len())
		}
	default:
		class := classify(err)
		reason = class
		s.metrics.RecordFailure(class)
		s.tracer.SetSpanStatus(span, tracing.StatusError, err.Error())
		s.errorLogger.LogError(err, "serve", class, map[string]interface{}{
			"connection_id": c.id,
			"remote_addr":   conn.RemoteAddr().String(),
		})
	}
}

// serveConn reads from the connection and answers every complete frame.
func (s *Server) serveConn(ctx context.Context, c *connection) error {
	for {
		if err := s.drain(ctx, c); err != nil {
			return err
		}
		if s.stopping() {
			return nil
		}

		if d := s.config.ReadTimeoutMs; d > 0 {
			c.conn.SetReadDeadline(time.Now().Add(time.Duration(d) * time.Millisecond))
		}
		n, err := c.buf.Fill(c.conn)
		c.stats.BytesIn += uint64(n)
		s.metrics.RecordBytesIn(n)
		if err != nil {
			if n > 0 {
				if derr := s.drain(ctx, c); derr != nil {
					return derr
				}
			}
			return err
		}
	}
}

// drain answers every complete frame currently buffered.
func (s *Server) drain(ctx context.Context, c *connection) error {
	for {
		req, err := c.buf.Next(s.decoder)
		if errors.Is(err, protocol.ErrNeedMoreData) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.serve(ctx, c, req); err != nil {
			return err
		}
	}
}

// serve dispatches one request and writes its response.
func (s *Server) serve(ctx context.Context, c *connection, req *protocol.Request) error {
	api := req.ApiKey().String()
	ctx, span := s.tracer.StartSpan(ctx, api, tracing.SpanKindServer)
	defer s.tracer.EndSpan(span)
	s.tracer.SetSpanAttribute(span, "kafka.api_version", strconv.Itoa(int(req.ApiVersion())))
	s.tracer.SetSpanAttribute(span, "kafka.correlation_id", strconv.Itoa(int(req.CorrelationID())))
	s.tracer.SetSpanAttribute(span, "kafka.client_id", req.ClientID())

	start := time.Now()
	resp, err := s.dispatcher.Dispatch(ctx, req)
	if err != nil {
		s.tracer.SetSpanStatus(span, tracing.StatusError, err.Error())
		return err
	}

	data, err := s.encoder.Encode(resp)
	if err != nil {
		s.tracer.SetSpanStatus(span, tracing.StatusError, err.Error())
		return &encodeError{ApiKey: req.ApiKey(), CorrelationID: req.CorrelationID(), Err: err}
	}

	if d := s.config.WriteTimeoutMs; d > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(time.Duration(d) * time.Millisecond))
	}
	n, err := c.conn.Write(data)
	c.stats.BytesOut += uint64(n)
	s.metrics.RecordBytesOut(n)
	if err != nil {
		s.tracer.SetSpanStatus(span, tracing.StatusError, err.Error())
		return fmt.Errorf("write response: %w", err)
	}
	c.stats.Requests++

	info := logging.RequestInfo{
		ConnectionID:  c.id,
		API:           api,
		APIVersion:    req.ApiVersion(),
		CorrelationID: req.CorrelationID(),
		ClientID:      req.ClientID(),
		Latency:       time.Since(start),
		ResponseSize:  n,
	}
	if code := broker.ErrorCodeOf(resp); code != protocol.ErrorNone {
		info.ErrorCode = code.Title()
		s.tracer.SetSpanAttribute(span, "kafka.error_code", strconv.Itoa(int(code)))
	}
	s.reqLogger.LogRequest(info)
	return nil
}

// encodeError wraps a failure to serialize a response.
type encodeError struct {
	ApiKey        protocol.ApiKey
	CorrelationID int32
	Err           error
}

func (e *encodeError) Error() string {
	return fmt.Sprintf("encode %s response (correlation id %d): %v", e.ApiKey, e.CorrelationID, e.Err)
}

func (e *encodeError) Unwrap() error { return e.Err }

// classify maps a connection-closing error to its failure class.
func classify(err error) string {
	var (
		encErr     *encodeError
		frameErr   *protocol.FrameError
		decodeErr  *protocol.DecodeError
		handlerErr *broker.HandlerError
	)
	switch {
	case errors.As(err, &encErr):
		return ClassEncode
	case errors.As(err, &frameErr), errors.Is(err, protocol.ErrBufferFull):
		return ClassFraming
	case errors.Is(err, protocol.ErrUnsupportedAPIKey):
		return ClassUnsupportedAPIKey
	case errors.As(err, &handlerErr):
		return ClassHandler
	case errors.As(err, &decodeErr), wire.IsMalformed(err):
		return ClassMalformed
	default:
		return ClassIO
	}
}
