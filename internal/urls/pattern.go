package urls

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

type term struct {
	literal  string
	param    string
	optional bool
}

func parseTerm(s string) term {
	switch {
	case strings.HasPrefix(s, "::") && len(s) > 2:
		return term{param: s[2:], optional: true}
	case strings.HasPrefix(s, ":") && len(s) > 1 && s[1] != ':':
		return term{param: s[1:]}
	default:
		return term{literal: s}
	}
}

type assignment struct {
	key   string
	value term
	bare  bool // no '=' in the source
}

// compiled is the parsed form of a pattern string.
type compiled struct {
	rooted   bool
	path     []term
	query    []assignment
	required []string
	optional []string
}

func compile(pattern string) (*compiled, error) {
	pathPart, queryPart, hasQuery := strings.Cut(pattern, "?")
	c := &compiled{rooted: strings.HasPrefix(pathPart, "/")}
	seen := map[string]bool{}
	note := func(t term) error {
		if t.param == "" {
			return nil
		}
		if seen[t.param] {
			return fmt.Errorf("%w: %q in %q", ErrDuplicateParameter, t.param, pattern)
		}
		seen[t.param] = true
		if t.optional {
			c.optional = append(c.optional, t.param)
		} else {
			c.required = append(c.required, t.param)
		}
		return nil
	}
	for _, seg := range strings.Split(pathPart, "/") {
		t := parseTerm(seg)
		if err := note(t); err != nil {
			return nil, err
		}
		c.path = append(c.path, t)
	}
	if hasQuery && queryPart != "" {
		for _, part := range strings.Split(queryPart, "&") {
			key, value, ok := strings.Cut(part, "=")
			a := assignment{key: key, bare: !ok}
			if ok {
				a.value = parseTerm(value)
				if err := note(a.value); err != nil {
					return nil, err
				}
			}
			c.query = append(c.query, a)
		}
	}
	sort.Strings(c.required)
	sort.Strings(c.optional)
	return c, nil
}

func (c *compiled) resolve(name, source string, values map[string]string) (string, error) {
	lookup := func(t term) (string, bool, error) {
		v, ok := values[t.param]
		if t.optional && v == "" {
			return "", false, nil
		}
		if !ok {
			return "", false, fmt.Errorf("%w: %q was not specified for the URL pattern %q (%s)", ErrMissingParameter, t.param, source, name)
		}
		return v, true, nil
	}

	segments := make([]string, 0, len(c.path))
	for _, t := range c.path {
		if t.param == "" {
			segments = append(segments, t.literal)
			continue
		}
		v, present, err := lookup(t)
		if err != nil {
			return "", err
		}
		if present {
			segments = append(segments, v)
		}
	}
	out := strings.Join(segments, "/")
	if out == "" && c.rooted {
		out = "/"
	}

	var query []string
	for _, a := range c.query {
		switch {
		case a.bare:
			query = append(query, a.key)
		case a.value.param == "":
			query = append(query, a.key+"="+a.value.literal)
		default:
			v, present, err := lookup(a.value)
			if err != nil {
				return "", err
			}
			if present {
				query = append(query, a.key+"="+url.QueryEscape(v))
			}
		}
	}
	if len(query) > 0 {
		out += "?" + strings.Join(query, "&")
	}
	return out, nil
}

// Pattern is one registered, named URL pattern.
type Pattern struct {
	name     string
	pattern  string
	compiled *compiled
	view     ViewRef
}

// Name returns the unique registry name.
func (p *Pattern) Name() string { return p.name }

// String returns the pattern source, including any composition prefixes.
func (p *Pattern) String() string { return p.pattern }

// View returns the view reference.
func (p *Pattern) View() ViewRef { return p.view }

// Required returns the sorted required parameter names.
func (p *Pattern) Required() []string { return append([]string(nil), p.compiled.required...) }

// Optional returns the sorted optional parameter names.
func (p *Pattern) Optional() []string { return append([]string(nil), p.compiled.optional...) }
