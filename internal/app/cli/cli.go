package cli

import (
	"os"

	"tailsift/internal/app/filter"
	"tailsift/internal/config"
)

// BuildFilter assembles the filter tree from the persisted filter file and
// the quick match flags. The pieces combine as
// And(file-tree, Or(contains..., regexps...), Nor(excludes...)); absent
// pieces are omitted. With nothing configured the result is nil, which
// matches every line.
func BuildFilter(cfg *config.Config, opts *Options) (*filter.Node, error) {
	var clauses []*filter.Node

	if cfg.Filter.Path != "" {
		data, err := os.ReadFile(cfg.Filter.Path)
		if err != nil {
			return nil, err
		}

		root, err := filter.Unmarshal(data)
		if err != nil {
			return nil, err
		}

		clauses = append(clauses, root)
	}

	include, err := buildInclude(opts)
	if err != nil {
		return nil, err
	}

	if include != nil {
		clauses = append(clauses, include)
	}

	exclude, err := buildExclude(opts)
	if err != nil {
		return nil, err
	}

	if exclude != nil {
		clauses = append(clauses, exclude)
	}

	switch len(clauses) {
	case 0:
		return nil, nil
	case 1:
		return clauses[0], nil
	default:
		return filter.NewAnd(clauses...), nil
	}
}

// buildInclude combines --contains and --regexp terms into one Or
func buildInclude(opts *Options) (*filter.Node, error) {
	var terms []*filter.Node

	for _, value := range opts.Contains {
		n, err := filter.NewSubstring(value)
		if err != nil {
			return nil, err
		}

		terms = append(terms, n)
	}

	for _, pattern := range opts.Regexps {
		n, err := filter.NewRegex(pattern)
		if err != nil {
			return nil, err
		}

		terms = append(terms, n)
	}

	switch len(terms) {
	case 0:
		return nil, nil
	case 1:
		return terms[0], nil
	default:
		return filter.NewOr(terms...), nil
	}
}

// buildExclude combines --exclude terms into one Nor
func buildExclude(opts *Options) (*filter.Node, error) {
	if len(opts.Excludes) == 0 {
		return nil, nil
	}

	terms := make([]*filter.Node, 0, len(opts.Excludes))

	for _, value := range opts.Excludes {
		n, err := filter.NewSubstring(value)
		if err != nil {
			return nil, err
		}

		terms = append(terms, n)
	}

	return filter.NewNor(terms...), nil
}
