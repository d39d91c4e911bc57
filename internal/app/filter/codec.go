package filter

import (
	"fmt"
	"regexp"

	"go.yaml.in/yaml/v3"

	"tailsift/internal/app/errors"
)

// doc is the persisted form of a single node
type doc struct {
	Kind     string `yaml:"kind"`
	Value    string `yaml:"value,omitempty"`
	Enabled  bool   `yaml:"enabled"`
	Color    string `yaml:"color,omitempty"`
	Children []*doc `yaml:"children,omitempty"`
}

// Marshal serializes a filter tree to its YAML persisted form
func Marshal(root *Node) ([]byte, error) {
	if root == nil {
		root = NewTrue()
	}

	return yaml.Marshal(toDoc(root))
}

// Unmarshal parses the YAML persisted form back into a validated filter
// tree. On any invalid node the whole document is rejected and no partial
// tree is returned.
func Unmarshal(data []byte) (*Node, error) {
	var d doc
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrMalformedFilterDoc, err)
	}

	return fromDoc(&d)
}

// toDoc converts a node to its persisted form
func toDoc(n *Node) *doc {
	d := &doc{
		Kind:    n.Kind.String(),
		Value:   n.Value,
		Enabled: n.Enabled,
		Color:   n.HighlightColorKey,
	}

	for _, c := range n.Children {
		if c != nil {
			d.Children = append(d.Children, toDoc(c))
		}
	}

	return d
}

// fromDoc converts a persisted form back into a validated node
func fromDoc(d *doc) (*Node, error) {
	n := &Node{
		Enabled:           d.Enabled,
		Value:             d.Value,
		HighlightColorKey: d.Color,
	}

	switch d.Kind {
	case "true":
		n.Kind = KindTrue
	case "substring":
		if d.Value == "" {
			return nil, errors.ErrEmptyFilterValue
		}

		n.Kind = KindSubstring
	case "regex":
		re, err := regexp.Compile(d.Value)
		if err != nil {
			return nil, errors.ErrInvalidPattern
		}

		n.Kind = KindRegex
		n.re = re
	case "and":
		n.Kind = KindAnd
	case "or":
		n.Kind = KindOr
	case "nor":
		n.Kind = KindNor
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownFilterKind, d.Kind)
	}

	for _, c := range d.Children {
		child, err := fromDoc(c)
		if err != nil {
			return nil, err
		}

		n.Children = append(n.Children, child)
	}

	return n, nil
}
