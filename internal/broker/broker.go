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
Package broker implements request handling for FlyKafka.

ARCHITECTURE OVERVIEW:
======================
The broker turns decoded requests into responses. It owns no sockets and
performs no I/O: the server hands it a *protocol.Request and writes back
whatever *protocol.Response it returns.

HIERARCHY:
==========

	Broker
	 ├── Dispatcher (one Handler per ApiKey)
	 │    ├── ApiVersionsHandler
	 │    └── DescribeTopicPartitionsHandler
	 │         └── TopicCatalog
	 └── TopicCatalog (EmptyCatalog or StaticCatalog)

REQUEST FLOW:
=============
1. The server decodes a frame into a *protocol.Request
2. Dispatcher.Dispatch selects the handler for the request's api key
3. The handler builds a response body
4. The dispatcher wraps it in the response header version the api key uses,
   echoing the request's correlation id
5. The server encodes and writes the response

ERROR HANDLING:
===============
Protocol-level problems the client can act on (an unsupported version, an
unknown topic) are answered with an error code inside a normal response.
Requests the broker cannot answer at all return a *HandlerError, and the
server closes the connection.

THREAD SAFETY:
==============
Handlers are stateless apart from the catalog, which is read-only after
construction, so one Broker serves every connection concurrently.
*/
package broker

import (
	"fmt"

	"flykafka/internal/config"
	"flykafka/internal/logging"
	"flykafka/internal/metrics"
)

// Broker is the central component that answers protocol requests.
type Broker struct {
	config     *config.Config
	catalog    TopicCatalog
	dispatcher *Dispatcher
	logger     *logging.Logger
}

// NewBroker creates a broker serving the topics configured in cfg.
// With no configured topics every topic is reported as unknown.
func NewBroker(cfg *config.Config) (*Broker, error) {
	var catalog TopicCatalog = EmptyCatalog{}
	if len(cfg.Topics) > 0 {
		sc, err := NewStaticCatalog(cfg.Topics)
		if err != nil {
			return nil, fmt.Errorf("failed to build topic catalog: %w", err)
		}
		catalog = sc
	}
	return NewBrokerWithCatalog(cfg, catalog), nil
}

// NewBrokerWithCatalog creates a broker over an explicit catalog.
func NewBrokerWithCatalog(cfg *config.Config, catalog TopicCatalog) *Broker {
	b := &Broker{
		config:     cfg,
		catalog:    catalog,
		dispatcher: NewDispatcher(catalog),
		logger:     logging.NewLogger("broker"),
	}

	topics := catalog.Topics()
	partitions := 0
	for _, t := range topics {
		partitions += t.Partitions
	}
	metrics.Get().SetCatalog(len(topics), partitions)

	b.logger.Info("Broker initialized", "topics", len(topics), "partitions", partitions)
	return b
}

// Dispatcher returns the request dispatcher.
func (b *Broker) Dispatcher() *Dispatcher {
	return b.dispatcher
}

// Catalog returns the topic catalog.
func (b *Broker) Catalog() TopicCatalog {
	return b.catalog
}
