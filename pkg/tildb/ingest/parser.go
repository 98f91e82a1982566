package ingest

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// yamlFormat decodes "---" delimited front matter with yaml.v3 so the raw
// node tree (and its resolved tags) is available.
var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// ParseDocument splits content into metadata and body. Content without a
// front matter block yields empty metadata and the whole content as body.
func ParseDocument(path string, content []byte) (RawDocument, error) {
	var root yaml.Node

	body, err := frontmatter.Parse(bytes.NewReader(content), &root, yamlFormat)
	if err != nil {
		return RawDocument{}, &ParseError{Err: err}
	}

	meta, err := decodeMetadata(&root)
	if err != nil {
		return RawDocument{}, &ParseError{Err: err}
	}

	return RawDocument{
		Path:     path,
		Metadata: meta,
		Body:     string(body),
	}, nil
}

func decodeMetadata(root *yaml.Node) (map[string]any, error) {
	node := root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return map[string]any{}, nil
		}
		node = node.Content[0]
	}

	switch node.Kind {
	case 0:
		return map[string]any{}, nil
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return map[string]any{}, nil
		}
	case yaml.MappingNode:
		v, err := decodeNode(node)
		if err != nil {
			return nil, err
		}
		return v.(map[string]any), nil
	}

	return nil, fmt.Errorf("front matter must be a mapping, got %s", node.ShortTag())
}

// decodeNode converts a YAML node into plain Go values. Unquoted
// timestamps become time.Time; yaml.v3 would otherwise hand them back as
// strings when decoding into an interface.
func decodeNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return decodeNode(n.Content[0])

	case yaml.AliasNode:
		return decodeNode(n.Alias)

	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		var merges []*yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].ShortTag() == "!!merge" {
				merges = append(merges, n.Content[i+1])
				continue
			}
			v, err := decodeNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[n.Content[i].Value] = v
		}
		for _, mn := range merges {
			if err := mergeInto(m, mn); err != nil {
				return nil, err
			}
		}
		return m, nil

	case yaml.SequenceNode:
		s := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := decodeNode(c)
			if err != nil {
				return nil, err
			}
			s = append(s, v)
		}
		return s, nil

	case yaml.ScalarNode:
		if n.ShortTag() == "!!timestamp" {
			var t time.Time
			if err := n.Decode(&t); err == nil {
				return t, nil
			}
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}

	return nil, fmt.Errorf("unsupported yaml node kind %d at line %d", n.Kind, n.Line)
}

// mergeInto applies a "<<" merge key. Keys already present in m win, and
// earlier maps in a merge sequence win over later ones.
func mergeInto(m map[string]any, n *yaml.Node) error {
	v, err := decodeNode(n)
	if err != nil {
		return err
	}

	var sources []any
	switch v := v.(type) {
	case map[string]any:
		sources = []any{v}
	case []any:
		sources = v
	default:
		return fmt.Errorf("merge key at line %d requires a map or a sequence of maps", n.Line)
	}

	for _, src := range sources {
		sm, ok := src.(map[string]any)
		if !ok {
			return fmt.Errorf("merge key at line %d requires a map or a sequence of maps", n.Line)
		}
		for k, val := range sm {
			if _, exists := m[k]; !exists {
				m[k] = val
			}
		}
	}
	return nil
}
