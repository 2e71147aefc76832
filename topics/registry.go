package topics

import (
	"fmt"
	"sort"

	"github.com/poiesic/docdex/core"
)

// Registry maps each supported topic to the name of the search index that
// owns it. The mapping is loaded once from configuration and is immutable
// afterward; adding a topic is a configuration change, not a code change.
type Registry struct {
	indexes map[core.Topic]string
}

// NewRegistry creates a registry from a topic -> index-name table.
// The table must not be empty and no entry may have an empty index name.
func NewRegistry(table map[string]string) (*Registry, error) {
	if len(table) == 0 {
		return nil, ErrNoTopics
	}

	indexes := make(map[core.Topic]string, len(table))
	for topic, indexName := range table {
		if topic == "" {
			return nil, ErrEmptyTopic
		}
		if indexName == "" {
			return nil, fmt.Errorf("topic %q: %w", topic, ErrEmptyIndexName)
		}
		indexes[core.Topic(topic)] = indexName
	}

	return &Registry{indexes: indexes}, nil
}

// ResolveIndex returns the index name configured for topic.
// Lookup is exact: no partial matches, no case folding. An unknown topic is
// a configuration error and is reported as core.ErrUnknownTopic.
func (r *Registry) ResolveIndex(topic core.Topic) (string, error) {
	indexName, ok := r.indexes[topic]
	if !ok {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownTopic, topic)
	}
	return indexName, nil
}

// Topics returns the supported topics in sorted order.
func (r *Registry) Topics() []core.Topic {
	topics := make([]core.Topic, 0, len(r.indexes))
	for topic := range r.indexes {
		topics = append(topics, topic)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i] < topics[j] })
	return topics
}

// IndexNames returns the distinct index names in sorted order.
func (r *Registry) IndexNames() []string {
	seen := make(map[string]bool, len(r.indexes))
	names := make([]string, 0, len(r.indexes))
	for _, name := range r.indexes {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
