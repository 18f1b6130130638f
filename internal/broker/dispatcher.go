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
	"fmt"
	"time"

	"flykafka/internal/metrics"
	"flykafka/internal/protocol"
)

// Dispatcher routes requests to the handler registered for their api key.
type Dispatcher struct {
	apiVersions             Handler
	describeTopicPartitions Handler
	metrics                 *metrics.Metrics
}

// NewDispatcher creates a dispatcher with the built-in handlers, answering
// DescribeTopicPartitions from catalog.
func NewDispatcher(catalog TopicCatalog) *Dispatcher {
	return &Dispatcher{
		apiVersions:             NewApiVersionsHandler(),
		describeTopicPartitions: NewDescribeTopicPartitionsHandler(catalog),
		metrics:                 metrics.Get(),
	}
}

// Register replaces the handler for k.
func (d *Dispatcher) Register(k protocol.ApiKey, h Handler) error {
	switch k {
	case protocol.ApiVersionsKey:
		d.apiVersions = h
	case protocol.DescribeTopicPartitionsKey:
		d.describeTopicPartitions = h
	default:
		return fmt.Errorf("%w: %d", protocol.ErrUnsupportedAPIKey, int16(k))
	}
	return nil
}

// Dispatch answers req. The response always echoes the request's
// correlation id; a handler that breaks this is reported as an error.
func (d *Dispatcher) Dispatch(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	var h Handler
	switch req.ApiKey() {
	case protocol.ApiVersionsKey:
		h = d.apiVersions
	case protocol.DescribeTopicPartitionsKey:
		h = d.describeTopicPartitions
	default:
		return nil, &protocol.UnsupportedAPIKeyError{ApiKey: req.ApiKey(), CorrelationID: req.CorrelationID()}
	}

	start := time.Now()
	resp, err := h.Handle(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.CorrelationID() != req.CorrelationID() {
		return nil, handlerErr(req, fmt.Errorf("response correlation id %d does not match request", resp.CorrelationID()))
	}

	d.metrics.RecordRequest(req.ApiKey().String(), time.Since(start), ErrorCodeOf(resp) != protocol.ErrorNone)
	return resp, nil
}
