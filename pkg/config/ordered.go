package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Ordered is a YAML mapping that remembers the order its keys were written in.
type Ordered[T any] struct {
	keys   []string
	values map[string]T
}

func (o *Ordered[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*o = Ordered[T]{values: map[string]T{}}

		return nil
	}

	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}

	decoded := Ordered[T]{values: make(map[string]T, len(node.Content)/2)}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value

		var value T
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}

		if _, exists := decoded.values[key]; !exists {
			decoded.keys = append(decoded.keys, key)
		}

		decoded.values[key] = value
	}

	*o = decoded

	return nil
}

// Keys returns the keys in document order.
func (o Ordered[T]) Keys() []string {
	return append([]string(nil), o.keys...)
}

func (o Ordered[T]) Get(key string) (T, bool) {
	value, ok := o.values[key]

	return value, ok
}

func (o Ordered[T]) Len() int {
	return len(o.keys)
}

// Set appends key, or replaces its value in place.
func (o *Ordered[T]) Set(key string, value T) {
	if o.values == nil {
		o.values = map[string]T{}
	}

	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}

	o.values[key] = value
}
