package schema

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var exampleEnvironments = []struct {
	key     string
	name    string
	postfix string
}{
	{"production", "Production Environment", "Prod"},
	{"development", "Development Environment", "Dev"},
}

// Example renders a credentials.yaml snippet declaring credentialType in both
// environments, with one placeholder per schema property in schema order. Property
// descriptions become comments.
func Example(schema []byte, credentialType string) ([]byte, error) {
	fields, err := exampleFields(schema)
	if err != nil {
		return nil, fmt.Errorf("schema for %s: %w", credentialType, err)
	}

	environments := mapping()

	for _, env := range exampleEnvironments {
		credential := mapping(
			scalar("type"), scalar(credentialType),
			scalar("name"), scalar(fmt.Sprintf("Example %s Credential", credentialType)),
			scalar("data"), fields(),
		)

		environments.Content = append(environments.Content,
			scalar(env.key),
			mapping(
				scalar("name"), scalar(env.name),
				scalar("postfix"), scalar(env.postfix),
				scalar("credentials"), mapping(scalar(strings.ToLower(credentialType)), credential),
			),
		)
	}

	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{
		mapping(scalar("environments"), environments),
	}}

	var out bytes.Buffer

	encoder := yaml.NewEncoder(&out)
	encoder.SetIndent(2)

	if err := encoder.Encode(doc); err != nil {
		return nil, err
	}

	if err := encoder.Close(); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// exampleFields returns a constructor for the data mapping so each environment
// gets its own node tree.
func exampleFields(schema []byte) (func() *yaml.Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(schema, &root); err != nil {
		return nil, err
	}

	if len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a JSON object")
	}

	properties := lookup(root.Content[0], "properties")

	return func() *yaml.Node {
		data := mapping()
		if properties == nil || properties.Kind != yaml.MappingNode {
			return data
		}

		for i := 0; i+1 < len(properties.Content); i += 2 {
			field := properties.Content[i].Value
			definition := properties.Content[i+1]

			fieldType := "string"
			if node := lookup(definition, "type"); node != nil && node.Kind == yaml.ScalarNode {
				fieldType = node.Value
			}

			key := scalar(field)
			if node := lookup(definition, "description"); node != nil && node.Value != "" {
				key.HeadComment = node.Value
			}

			data.Content = append(data.Content, key, placeholder(fieldType))
		}

		return data
	}, nil
}

func placeholder(fieldType string) *yaml.Node {
	switch fieldType {
	case "string":
		return scalar("example_string_value")
	case "number", "integer":
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: "0"}
	case "boolean":
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "false"}
	case "array":
		return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
	case "object":
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Style: yaml.FlowStyle}
	default:
		return scalar("example_value")
	}
}

func lookup(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}

	return nil
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func mapping(content ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: content}
}
