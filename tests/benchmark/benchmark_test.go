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

package benchmark

import (
	"context"
	"fmt"
	"testing"

	"flykafka/internal/broker"
	"flykafka/internal/config"
	"flykafka/internal/protocol"
	"flykafka/internal/server"
	"flykafka/internal/wire"
	"flykafka/pkg/client"
)

// newTestServer starts a server for benchmarking and returns its address.
func newTestServer(b *testing.B, topics ...config.TopicConfig) string {
	b.Helper()

	cfg := config.DefaultConfig()
	cfg.BindAddr = "127.0.0.1:0"
	cfg.Topics = topics

	br, err := broker.NewBroker(cfg)
	if err != nil {
		b.Fatalf("Failed to create broker: %v", err)
	}

	srv := server.NewServer(cfg, br.Dispatcher())
	if err := srv.Start(); err != nil {
		b.Fatalf("Failed to start server: %v", err)
	}
	b.Cleanup(func() { srv.Stop() })

	return srv.Addr().String()
}

func newClient(b *testing.B, addr string) *client.Client {
	b.Helper()
	c, err := client.Dial(context.Background(), addr, client.DefaultClientOptions())
	if err != nil {
		b.Fatalf("Failed to dial: %v", err)
	}
	b.Cleanup(func() { c.Close() })
	return c
}

func describeRequest(topic string) *protocol.Request {
	return protocol.NewRequest(protocol.RequestHeaderV2{
		ApiKey:        protocol.DescribeTopicPartitionsKey,
		CorrelationID: 1,
		ClientID:      wire.NewNullableString("bench"),
	}, &protocol.DescribeTopicPartitionsRequest{
		Topics:                 protocol.TopicRequestArray{Items: []protocol.TopicRequest{{Name: wire.CompactString(topic)}}},
		ResponsePartitionLimit: 100,
	})
}

// BenchmarkFrameDecode benchmarks decoding one buffered request frame
func BenchmarkFrameDecode(b *testing.B) {
	data, err := protocol.EncodeRequest(describeRequest("orders"))
	if err != nil {
		b.Fatalf("Failed to encode: %v", err)
	}
	decoder := protocol.NewFrameDecoder(protocol.DefaultMaxMessageSize)

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := decoder.Decode(data); err != nil {
			b.Fatalf("Decode failed: %v", err)
		}
	}
}

// BenchmarkFrameEncode benchmarks encoding an ApiVersions response
func BenchmarkFrameEncode(b *testing.B) {
	resp := protocol.NewResponse(protocol.ResponseHeaderFor(protocol.ApiVersionsKey, 1), &protocol.ApiVersionsResponse{
		ApiKeys: protocol.ApiVersionArray{Items: protocol.SupportedApiVersions()},
	})
	encoder := protocol.NewFrameEncoder(protocol.DefaultMaxMessageSize)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := encoder.Encode(resp); err != nil {
			b.Fatalf("Encode failed: %v", err)
		}
	}
}

// BenchmarkDispatch benchmarks the broker without the network
func BenchmarkDispatch(b *testing.B) {
	cfg := config.DefaultConfig()
	cfg.Topics = []config.TopicConfig{{Name: "orders", Partitions: 16}}
	br, err := broker.NewBroker(cfg)
	if err != nil {
		b.Fatalf("Failed to create broker: %v", err)
	}
	req := describeRequest("orders")
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := br.Dispatcher().Dispatch(ctx, req); err != nil {
			b.Fatalf("Dispatch failed: %v", err)
		}
	}
}

// BenchmarkClientApiVersions benchmarks a full ApiVersions round trip
func BenchmarkClientApiVersions(b *testing.B) {
	c := newClient(b, newTestServer(b))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.ApiVersions(ctx, 4); err != nil {
			b.Fatalf("ApiVersions failed: %v", err)
		}
	}
}

// BenchmarkClientDescribeParallel benchmarks many clients describing topics
func BenchmarkClientDescribeParallel(b *testing.B) {
	addr := newTestServer(b, config.TopicConfig{Name: "orders", Partitions: 8})
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		c, err := client.Dial(ctx, addr, client.DefaultClientOptions())
		if err != nil {
			b.Errorf("Failed to dial: %v", err)
			return
		}
		defer c.Close()
		for pb.Next() {
			if _, err := c.DescribeTopicPartitions(ctx, "orders"); err != nil {
				b.Errorf("Describe failed: %v", err)
				return
			}
		}
	})
}

// BenchmarkPartitionCounts benchmarks describe cost against topic width
func BenchmarkPartitionCounts(b *testing.B) {
	for _, partitions := range []int{1, 16, 256, 1024} {
		b.Run(fmt.Sprintf("partitions-%d", partitions), func(b *testing.B) {
			c := newClient(b, newTestServer(b, config.TopicConfig{Name: "wide", Partitions: partitions}))
			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := c.DescribeTopicPartitions(ctx, "wide"); err != nil {
					b.Fatalf("Describe failed: %v", err)
				}
			}
		})
	}
}
