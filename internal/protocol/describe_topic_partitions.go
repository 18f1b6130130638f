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
	"flykafka/internal/wire"
)

// DefaultTopicAuthorizedOperations is the authorized-operations bitfield
// reported for every topic: READ, WRITE, CREATE, DELETE, ALTER, DESCRIBE,
// DESCRIBE_CONFIGS and ALTER_CONFIGS.
const DefaultTopicAuthorizedOperations = 0x00000df8

// Int32Array is a compact array of broker ids.
type Int32Array = wire.CompactArray[wire.Int32, *wire.Int32]

// TopicRequest names one topic in a DescribeTopicPartitions request.
type TopicRequest struct {
	Name wire.CompactString
	Tags wire.TagBuffer
}

func (t *TopicRequest) fields() []wire.Field { return []wire.Field{&t.Name, &t.Tags} }

func (t TopicRequest) WireLen() int                { return wire.SumWireLen(t.fields()...) }
func (t TopicRequest) Encode(w *wire.Writer)       { wire.EncodeAll(w, t.fields()...) }
func (t *TopicRequest) Decode(r *wire.Reader) error { return wire.DecodeAll(r, t.fields()...) }

// TopicRequestArray is a compact array of TopicRequest.
type TopicRequestArray = wire.CompactArray[TopicRequest, *TopicRequest]

// Cursor marks where a paginated DescribeTopicPartitions listing resumes.
type Cursor struct {
	TopicName      wire.CompactString
	PartitionIndex wire.Int32
	Tags           wire.TagBuffer
}

func (c *Cursor) fields() []wire.Field {
	return []wire.Field{&c.TopicName, &c.PartitionIndex, &c.Tags}
}

func (c Cursor) WireLen() int                { return wire.SumWireLen(c.fields()...) }
func (c Cursor) Encode(w *wire.Writer)       { wire.EncodeAll(w, c.fields()...) }
func (c *Cursor) Decode(r *wire.Reader) error { return wire.DecodeAll(r, c.fields()...) }

// NullableCursor is a Cursor preceded by an int8 presence marker:
// -1 for null, 1 for present.
type NullableCursor struct {
	Value *Cursor
}

func (c NullableCursor) WireLen() int {
	if c.Value == nil {
		return 1
	}
	return 1 + c.Value.WireLen()
}

func (c NullableCursor) Encode(w *wire.Writer) {
	if c.Value == nil {
		w.PutInt8(-1)
		return
	}
	w.PutInt8(1)
	c.Value.Encode(w)
}

func (c *NullableCursor) Decode(r *wire.Reader) error {
	return r.Transaction(func() error {
		var marker wire.Int8
		if err := marker.Decode(r); err != nil {
			return &wire.FieldError{Field: "cursor", Err: err}
		}
		switch marker {
		case -1:
			c.Value = nil
			return nil
		case 1:
			var cur Cursor
			if err := cur.Decode(r); err != nil {
				return &wire.FieldError{Field: "cursor", Err: err}
			}
			c.Value = &cur
			return nil
		default:
			return &wire.FieldError{Field: "cursor", Err: wire.ErrMalformedField}
		}
	})
}

// DescribeTopicPartitionsRequest is the body of a DescribeTopicPartitions request.
type DescribeTopicPartitionsRequest struct {
	Topics                 TopicRequestArray
	ResponsePartitionLimit wire.Int32
	Cursor                 NullableCursor
	Tags                   wire.TagBuffer
}

func (b *DescribeTopicPartitionsRequest) fields() []wire.Field {
	return []wire.Field{&b.Topics, &b.ResponsePartitionLimit, &b.Cursor, &b.Tags}
}

func (b DescribeTopicPartitionsRequest) WireLen() int          { return wire.SumWireLen(b.fields()...) }
func (b DescribeTopicPartitionsRequest) Encode(w *wire.Writer) { wire.EncodeAll(w, b.fields()...) }

func (b *DescribeTopicPartitionsRequest) Decode(r *wire.Reader) error {
	return wire.DecodeAll(r, b.fields()...)
}

func (DescribeTopicPartitionsRequest) requestBody() {}

// TopicNames returns the requested topic names in order.
func (b DescribeTopicPartitionsRequest) TopicNames() []string {
	names := make([]string, 0, b.Topics.Len())
	for _, t := range b.Topics.Items {
		names = append(names, string(t.Name))
	}
	return names
}

// Partition describes one partition of a topic.
type Partition struct {
	ErrorCode              ErrorCode
	PartitionIndex         wire.Int32
	LeaderID               wire.Int32
	LeaderEpoch            wire.Int32
	ReplicaNodes           Int32Array
	IsrNodes               Int32Array
	EligibleLeaderReplicas Int32Array
	LastKnownELR           Int32Array
	OfflineReplicas        Int32Array
	Tags                   wire.TagBuffer
}

func (p *Partition) fields() []wire.Field {
	return []wire.Field{
		&p.ErrorCode, &p.PartitionIndex, &p.LeaderID, &p.LeaderEpoch,
		&p.ReplicaNodes, &p.IsrNodes, &p.EligibleLeaderReplicas,
		&p.LastKnownELR, &p.OfflineReplicas, &p.Tags,
	}
}

func (p Partition) WireLen() int                { return wire.SumWireLen(p.fields()...) }
func (p Partition) Encode(w *wire.Writer)       { wire.EncodeAll(w, p.fields()...) }
func (p *Partition) Decode(r *wire.Reader) error { return wire.DecodeAll(r, p.fields()...) }

// PartitionArray is a compact array of Partition.
type PartitionArray = wire.CompactArray[Partition, *Partition]

// TopicResponse describes one topic.
type TopicResponse struct {
	ErrorCode                 ErrorCode
	Name                      wire.CompactNullableString
	TopicID                   wire.UUID
	IsInternal                wire.Bool
	Partitions                PartitionArray
	TopicAuthorizedOperations wire.Int32
	Tags                      wire.TagBuffer
}

func (t *TopicResponse) fields() []wire.Field {
	return []wire.Field{
		&t.ErrorCode, &t.Name, &t.TopicID, &t.IsInternal,
		&t.Partitions, &t.TopicAuthorizedOperations, &t.Tags,
	}
}

func (t TopicResponse) WireLen() int                { return wire.SumWireLen(t.fields()...) }
func (t TopicResponse) Encode(w *wire.Writer)       { wire.EncodeAll(w, t.fields()...) }
func (t *TopicResponse) Decode(r *wire.Reader) error { return wire.DecodeAll(r, t.fields()...) }

// TopicResponseArray is a compact array of TopicResponse.
type TopicResponseArray = wire.CompactArray[TopicResponse, *TopicResponse]

// DescribeTopicPartitionsResponse is the body of a DescribeTopicPartitions response.
type DescribeTopicPartitionsResponse struct {
	ThrottleTimeMs wire.Int32
	Topics         TopicResponseArray
	NextCursor     NullableCursor
	Tags           wire.TagBuffer
}

func (b *DescribeTopicPartitionsResponse) fields() []wire.Field {
	return []wire.Field{&b.ThrottleTimeMs, &b.Topics, &b.NextCursor, &b.Tags}
}

func (b DescribeTopicPartitionsResponse) WireLen() int          { return wire.SumWireLen(b.fields()...) }
func (b DescribeTopicPartitionsResponse) Encode(w *wire.Writer) { wire.EncodeAll(w, b.fields()...) }

func (b *DescribeTopicPartitionsResponse) Decode(r *wire.Reader) error {
	return wire.DecodeAll(r, b.fields()...)
}

func (DescribeTopicPartitionsResponse) responseBody() {}

// UnknownTopic returns the entry reported for a topic the broker does not know.
func UnknownTopic(name string) TopicResponse {
	return TopicResponse{
		ErrorCode:                 ErrorUnknownTopicOrPartition,
		Name:                      wire.NewCompactNullableString(name),
		TopicID:                   wire.NilUUID,
		TopicAuthorizedOperations: DefaultTopicAuthorizedOperations,
	}
}
