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
	"fmt"
	"sort"

	"github.com/google/uuid"

	"flykafka/internal/config"
)

// TopicMetadata describes a topic known to the broker.
type TopicMetadata struct {
	Name       string
	ID         uuid.UUID
	Internal   bool
	Partitions int
}

// TopicCatalog resolves topic names to metadata.
type TopicCatalog interface {
	// Lookup returns the topic named name, if any.
	Lookup(name string) (TopicMetadata, bool)
	// Topics returns every topic, sorted by name.
	Topics() []TopicMetadata
}

// EmptyCatalog knows no topics.
type EmptyCatalog struct{}

func (EmptyCatalog) Lookup(string) (TopicMetadata, bool) { return TopicMetadata{}, false }
func (EmptyCatalog) Topics() []TopicMetadata             { return nil }

// StaticCatalog is a read-only catalog built from configuration.
type StaticCatalog struct {
	topics map[string]TopicMetadata
}

// NewStaticCatalog builds a catalog from configured topics. A topic without
// an explicit id gets a stable id derived from its name; a topic with no
// partition count gets one partition.
func NewStaticCatalog(topics []config.TopicConfig) (*StaticCatalog, error) {
	c := &StaticCatalog{topics: make(map[string]TopicMetadata, len(topics))}
	for _, t := range topics {
		if t.Name == "" {
			return nil, fmt.Errorf("topic name is required")
		}
		if _, dup := c.topics[t.Name]; dup {
			return nil, fmt.Errorf("duplicate topic %q", t.Name)
		}
		id, err := t.TopicID()
		if err != nil {
			return nil, fmt.Errorf("topic %q: invalid id: %w", t.Name, err)
		}
		partitions := t.Partitions
		if partitions <= 0 {
			partitions = 1
		}
		c.topics[t.Name] = TopicMetadata{
			Name:       t.Name,
			ID:         id,
			Internal:   t.Internal,
			Partitions: partitions,
		}
	}
	return c, nil
}

// Lookup returns the topic named name, if any.
func (c *StaticCatalog) Lookup(name string) (TopicMetadata, bool) {
	t, ok := c.topics[name]
	return t, ok
}

// Topics returns every topic, sorted by name.
func (c *StaticCatalog) Topics() []TopicMetadata {
	out := make([]TopicMetadata, 0, len(c.topics))
	for _, t := range c.topics {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
