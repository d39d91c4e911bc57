package filter

import (
	"regexp"
	"strings"

	"tailsift/internal/app/errors"
)

// Kind identifies the variant of a filter node
type Kind int

// Kind values
const (
	KindTrue Kind = iota
	KindSubstring
	KindRegex
	KindAnd
	KindOr
	KindNor
)

// Node is one node of the filter tree. The tree is a closed set of variants
// evaluated by a single recursive descent; composite nodes own their
// children. A disabled node is skipped by its parent as if absent.
type Node struct {
	Kind              Kind
	Value             string
	Enabled           bool
	HighlightColorKey string
	Children          []*Node

	re *regexp.Regexp
}

// NewTrue creates a node matching every line
func NewTrue() *Node {
	return &Node{Kind: KindTrue, Enabled: true}
}

// NewSubstring creates a case-insensitive substring node
func NewSubstring(value string) (*Node, error) {
	if value == "" {
		return nil, errors.ErrEmptyFilterValue
	}

	return &Node{Kind: KindSubstring, Value: value, Enabled: true}, nil
}

// NewRegex creates a regex node, compiling the pattern up front
func NewRegex(pattern string) (*Node, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.ErrInvalidPattern
	}

	return &Node{Kind: KindRegex, Value: pattern, Enabled: true, re: re}, nil
}

// NewAnd creates a conjunction over the given children
func NewAnd(children ...*Node) *Node {
	return &Node{Kind: KindAnd, Enabled: true, Children: children}
}

// NewOr creates a disjunction over the given children
func NewOr(children ...*Node) *Node {
	return &Node{Kind: KindOr, Enabled: true, Children: children}
}

// NewNor creates a negated disjunction over the given children
func NewNor(children ...*Node) *Node {
	return &Node{Kind: KindNor, Enabled: true, Children: children}
}

// Matches reports whether the line matches the tree rooted at n.
// A nil root matches every line.
func (n *Node) Matches(line string) bool {
	if n == nil {
		return true
	}

	switch n.Kind {
	case KindTrue:
		return true
	case KindSubstring:
		return strings.Contains(strings.ToLower(line), strings.ToLower(n.Value))
	case KindRegex:
		if n.re == nil {
			// Only the constructors and the codec compile patterns; a node
			// assembled by hand without one never matches.
			return false
		}

		return n.re.MatchString(line)
	case KindAnd:
		for _, c := range n.enabledChildren() {
			if !c.Matches(line) {
				return false
			}
		}

		return true
	case KindOr:
		for _, c := range n.enabledChildren() {
			if c.Matches(line) {
				return true
			}
		}

		return false
	case KindNor:
		for _, c := range n.enabledChildren() {
			if c.Matches(line) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// Clone returns a deep copy of the tree rooted at n. The pipeline clones the
// root at evaluation points so the editor can keep mutating the live tree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}

	out := &Node{
		Kind:              n.Kind,
		Value:             n.Value,
		Enabled:           n.Enabled,
		HighlightColorKey: n.HighlightColorKey,
		re:                n.re,
	}

	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}

	return out
}

// enabledChildren returns the children considered for evaluation
func (n *Node) enabledChildren() []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c != nil && c.Enabled {
			out = append(out, c)
		}
	}

	return out
}

// String returns the kind name for logging
func (k Kind) String() string {
	switch k {
	case KindTrue:
		return "true"
	case KindSubstring:
		return "substring"
	case KindRegex:
		return "regex"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindNor:
		return "nor"
	default:
		return "unknown"
	}
}
