package view

import (
	"fmt"
	"strings"
)

// Set holds the views of an admin, addressable by path. It is built once
// and read-only afterwards.
type Set struct {
	views []View
	index map[string]int
}

// NewSet checks every view and indexes it by path.
func NewSet(views ...View) (*Set, error) {
	s := &Set{index: make(map[string]int, len(views))}
	for _, v := range views {
		if err := v.Check(); err != nil {
			return nil, err
		}
		if _, dup := s.index[v.Path]; dup {
			return nil, fmt.Errorf("duplicate view path %q", v.Path)
		}
		s.index[v.Path] = len(s.views)
		s.views = append(s.views, v)
	}
	return s, nil
}

// All returns the views in declaration order.
func (s *Set) All() []View {
	out := make([]View, len(s.views))
	copy(out, s.views)
	return out
}

// Get returns the view declared with exactly path.
func (s *Set) Get(path string) (View, bool) {
	i, ok := s.index[path]
	if !ok {
		return View{}, false
	}
	return s.views[i], true
}

// Match finds the view for a concrete admin path such as "users/42" and
// returns the bound route parameters. Literal paths win over patterns, so
// "users/new" is never read as an id.
func (s *Set) Match(path string) (View, map[string]string, bool) {
	path = strings.Trim(path, "/")
	if v, ok := s.Get(path); ok {
		return v, map[string]string{}, true
	}
	segs := strings.Split(path, "/")
	for _, v := range s.views {
		params, ok := matchPattern(v.Path, segs)
		if ok {
			return v, params, true
		}
	}
	return View{}, nil, false
}

func matchPattern(pattern string, segs []string) (map[string]string, bool) {
	parts := strings.Split(strings.Trim(pattern, "/"), "/")
	if len(parts) != len(segs) {
		return nil, false
	}
	params := make(map[string]string)
	for i, part := range parts {
		if name, ok := strings.CutPrefix(part, ":"); ok {
			if segs[i] == "" {
				return nil, false
			}
			params[name] = segs[i]
			continue
		}
		if part != segs[i] {
			return nil, false
		}
	}
	return params, true
}
