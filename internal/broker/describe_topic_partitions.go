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

package broker

import (
	"context"

	"flykafka/internal/protocol"
	"flykafka/internal/wire"
)

// DescribeTopicPartitionsHandler reports topic and partition metadata from
// a TopicCatalog.
type DescribeTopicPartitionsHandler struct {
	catalog TopicCatalog
}

// NewDescribeTopicPartitionsHandler creates a handler over catalog.
func NewDescribeTopicPartitionsHandler(catalog TopicCatalog) *DescribeTopicPartitionsHandler {
	if catalog == nil {
		catalog = EmptyCatalog{}
	}
	return &DescribeTopicPartitionsHandler{catalog: catalog}
}

// Handle answers a DescribeTopicPartitions request naming exactly one topic.
// Unknown topics are reported with UNKNOWN_TOPIC_OR_PARTITION. For known
// topics, ResponsePartitionLimit and Cursor page through the partitions.
func (h *DescribeTopicPartitionsHandler) Handle(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	in, ok := req.Body.(*protocol.DescribeTopicPartitionsRequest)
	if !ok {
		return nil, handlerErr(req, ErrUnexpectedBody)
	}
	names := in.TopicNames()
	if len(names) != 1 {
		return nil, handlerErr(req, ErrTopicCountUnsupported)
	}
	name := names[0]

	body := &protocol.DescribeTopicPartitionsResponse{}
	topic, found := h.catalog.Lookup(name)
	if !found {
		body.Topics = protocol.TopicResponseArray{Items: []protocol.TopicResponse{protocol.UnknownTopic(name)}}
		return respond(req, body), nil
	}

	first := 0
	if c := in.Cursor.Value; c != nil && string(c.TopicName) == name && c.PartitionIndex > 0 {
		first = int(c.PartitionIndex)
	}
	if first > topic.Partitions {
		first = topic.Partitions
	}
	last := topic.Partitions
	if limit := int(in.ResponsePartitionLimit); limit > 0 && last-first > limit {
		last = first + limit
		body.NextCursor = protocol.NullableCursor{Value: &protocol.Cursor{
			TopicName:      wire.CompactString(name),
			PartitionIndex: wire.Int32(last),
		}}
	}

	partitions := make([]protocol.Partition, 0, last-first)
	for i := first; i < last; i++ {
		partitions = append(partitions, leaderPartition(i))
	}
	body.Topics = protocol.TopicResponseArray{Items: []protocol.TopicResponse{{
		ErrorCode:                 protocol.ErrorNone,
		Name:                      wire.NewCompactNullableString(name),
		TopicID:                   wire.UUID(topic.ID),
		IsInternal:                wire.Bool(topic.Internal),
		Partitions:                protocol.PartitionArray{Items: partitions},
		TopicAuthorizedOperations: protocol.DefaultTopicAuthorizedOperations,
	}}}
	return respond(req, body), nil
}

// leaderPartition describes partition i led and fully replicated by broker 0.
func leaderPartition(i int) protocol.Partition {
	return protocol.Partition{
		ErrorCode:      protocol.ErrorNone,
		PartitionIndex: wire.Int32(i),
		LeaderID:       0,
		LeaderEpoch:    0,
		ReplicaNodes:   protocol.Int32Array{Items: []wire.Int32{0}},
		IsrNodes:       protocol.Int32Array{Items: []wire.Int32{0}},
	}
}
