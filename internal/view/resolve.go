package view

import (
	"github.com/leapstack-labs/blogadmin/internal/connector"
)

// ResolvedField is a Field with its predicates evaluated.
type ResolvedField struct {
	Name         string `json:"name" yaml:"name"`
	Label        string `json:"label,omitempty" yaml:"label,omitempty"`
	Widget       string `json:"widget,omitempty" yaml:"widget,omitempty"`
	Main         bool   `json:"main,omitempty" yaml:"main,omitempty"`
	Sortable     bool   `json:"sortable,omitempty" yaml:"sortable,omitempty"`
	Sorted       string `json:"sorted,omitempty" yaml:"sorted,omitempty"`
	Hidden       bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	ReadOnly     bool   `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	InitialValue any    `json:"initialValue,omitempty" yaml:"initialValue,omitempty"`
	HelpText     string `json:"helpText,omitempty" yaml:"helpText,omitempty"`
	Options      string `json:"options,omitempty" yaml:"options,omitempty"`
	DerivedFrom  string `json:"derivedFrom,omitempty" yaml:"derivedFrom,omitempty"`
	Validated    bool   `json:"validated,omitempty" yaml:"validated,omitempty"`
}

// ResolvedFieldset is a Fieldset with its predicates evaluated.
type ResolvedFieldset struct {
	Title       string          `json:"title,omitempty" yaml:"title,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Expanded    bool            `json:"expanded,omitempty" yaml:"expanded,omitempty"`
	Hidden      bool            `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Fields      []ResolvedField `json:"fields" yaml:"fields"`
}

// Resolved is a view as a specific session sees a specific record.
type Resolved struct {
	Path      string             `json:"path" yaml:"path"`
	Title     string             `json:"title" yaml:"title"`
	Kind      Kind               `json:"kind" yaml:"kind"`
	Resource  string             `json:"resource" yaml:"resource"`
	Fields    []ResolvedField    `json:"fields,omitempty" yaml:"fields,omitempty"`
	Fieldsets []ResolvedFieldset `json:"fieldsets,omitempty" yaml:"fieldsets,omitempty"`
}

// Resolve evaluates every predicate of v for session s and record r. r may be
// nil for list and add views.
func (v View) Resolve(s connector.Session, r connector.Record) Resolved {
	out := Resolved{
		Path:     v.Path,
		Title:    v.Title,
		Kind:     v.Kind,
		Resource: v.Resource,
	}
	for _, f := range v.Fields {
		out.Fields = append(out.Fields, resolveField(f, s, r))
	}
	for _, fs := range v.Fieldsets {
		rfs := ResolvedFieldset{
			Title:       fs.Title,
			Description: fs.Description,
			Expanded:    fs.Expanded,
			Hidden:      fs.Hidden || (fs.HiddenIf != nil && fs.HiddenIf(s, r)),
			Fields:      make([]ResolvedField, 0, len(fs.Fields)),
		}
		if fs.DescriptionFunc != nil {
			if d := fs.DescriptionFunc(s, r); d != "" {
				rfs.Description = d
			}
		}
		for _, f := range fs.Fields {
			rfs.Fields = append(rfs.Fields, resolveField(f, s, r))
		}
		out.Fieldsets = append(out.Fieldsets, rfs)
	}
	return out
}

func resolveField(f Field, s connector.Session, r connector.Record) ResolvedField {
	rf := ResolvedField{
		Name:         f.Name,
		Label:        f.Label,
		Widget:       f.Widget,
		Main:         f.Main,
		Sortable:     f.Sortable,
		Sorted:       f.Sorted,
		Hidden:       f.Hidden || (f.HiddenIf != nil && f.HiddenIf(s, r)),
		ReadOnly:     f.ReadOnly || (f.ReadOnlyIf != nil && f.ReadOnlyIf(s, r)),
		InitialValue: f.InitialValue,
		HelpText:     f.HelpText,
		Options:      f.Options,
		Validated:    len(f.Rules) > 0,
	}
	if f.Derive != nil {
		rf.DerivedFrom = f.Derive.From
	}
	return rf
}
