// Package view declares admin views as data: which fields a list, change or
// add screen shows, how they are grouped, and which of them are hidden,
// read-only or validated for a given session. Rendering is left to the admin
// front end; this package only evaluates predicates into plain values.
package view

import (
	"fmt"
	"reflect"

	"github.com/leapstack-labs/blogadmin/internal/apierror"
	"github.com/leapstack-labs/blogadmin/internal/connector"
)

// Kind is the screen a view describes.
type Kind string

// View kinds.
const (
	KindList   Kind = "list"
	KindChange Kind = "change"
	KindAdd    Kind = "add"
)

// Predicate decides a dynamic attribute from the current session and record.
type Predicate func(s connector.Session, r connector.Record) bool

// Rule validates one field value against the whole record. It returns a
// message, or "" when the value is acceptable.
type Rule func(value any, all connector.Record) string

// Derive computes a field's initial value from another field.
type Derive struct {
	From string
	Func func(source any) any
}

// Field is one field of a view.
type Field struct {
	Name  string
	Label string
	// Widget names the form control, e.g. "String", "Checkbox", "Select".
	Widget   string
	Main     bool
	Sortable bool
	// Sorted is "ascending" or "descending" for the default list ordering.
	Sorted string

	Hidden     bool
	HiddenIf   Predicate
	ReadOnly   bool
	ReadOnlyIf Predicate

	InitialValue any
	HelpText     string
	// Options names the option connector feeding a select widget.
	Options string
	Derive  *Derive
	Rules   []Rule
}

// Fieldset groups fields of a change or add view.
type Fieldset struct {
	Title       string
	Description string
	// DescriptionFunc replaces Description when it returns non-empty text.
	DescriptionFunc func(s connector.Session, r connector.Record) string
	Expanded        bool
	Hidden          bool
	HiddenIf        Predicate
	Fields          []Field
}

// View is one admin screen bound to a resource.
type View struct {
	// Path is the admin route, e.g. "users", "users/:id", "users/new".
	Path     string
	Title    string
	Kind     Kind
	Resource string

	// Fields is used by list views and by flat change/add views.
	Fields    []Field
	Fieldsets []Fieldset

	// Normalize reshapes each record read from the backend before display.
	Normalize func(connector.Record) connector.Record
	// Denormalize reshapes a record before it is saved.
	Denormalize func(connector.Record) connector.Record
}

// AllFields returns the flat fields followed by every fieldset's fields.
func (v View) AllFields() []Field {
	out := make([]Field, 0, len(v.Fields))
	out = append(out, v.Fields...)
	for _, fs := range v.Fieldsets {
		out = append(out, fs.Fields...)
	}
	return out
}

// Field returns the field called name.
func (v View) Field(name string) (Field, bool) {
	for _, f := range v.AllFields() {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Load applies Normalize to every record. The input is not modified.
func (v View) Load(records []connector.Record) []connector.Record {
	out := make([]connector.Record, len(records))
	for i, r := range records {
		r = r.Clone()
		if v.Normalize != nil {
			r = v.Normalize(r)
		}
		out[i] = r
	}
	return out
}

// Save applies Denormalize to a copy of r.
func (v View) Save(r connector.Record) connector.Record {
	out := r.Clone()
	if out == nil {
		out = connector.Record{}
	}
	if v.Denormalize != nil {
		out = v.Denormalize(out)
	}
	return out
}

// ApplyDefaults fills absent fields of r with their initial value, then
// derives dependent values from fields already present.
func (v View) ApplyDefaults(r connector.Record) connector.Record {
	out := r.Clone()
	if out == nil {
		out = connector.Record{}
	}
	fields := v.AllFields()
	for _, f := range fields {
		if f.InitialValue == nil || !empty(out[f.Name]) {
			continue
		}
		out[f.Name] = f.InitialValue
	}
	for _, f := range fields {
		if f.Derive == nil || !empty(out[f.Name]) {
			continue
		}
		if src, ok := out[f.Derive.From]; ok && !empty(src) {
			out[f.Name] = f.Derive.Func(src)
		}
	}
	return out
}

// Validate runs every field rule against r. All failing fields are reported
// together as one validation error; nil means r is acceptable.
func (v View) Validate(r connector.Record) error {
	fields := make(map[string][]string)
	for _, f := range v.AllFields() {
		for _, rule := range f.Rules {
			if msg := rule(r[f.Name], r); msg != "" {
				fields[f.Name] = append(fields[f.Name], msg)
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &apierror.Error{Kind: apierror.KindValidation, Fields: fields}
}

// Check reports structural mistakes in the view definition.
func (v View) Check() error {
	if v.Path == "" {
		return fmt.Errorf("view %q: missing path", v.Title)
	}
	switch v.Kind {
	case KindList, KindChange, KindAdd:
	default:
		return fmt.Errorf("view %q: unknown kind %q", v.Path, v.Kind)
	}
	seen := make(map[string]bool)
	for _, f := range v.AllFields() {
		if f.Name == "" {
			return fmt.Errorf("view %q: field without name", v.Path)
		}
		if seen[f.Name] {
			return fmt.Errorf("view %q: duplicate field %q", v.Path, f.Name)
		}
		seen[f.Name] = true
		if f.Derive != nil && f.Derive.Func == nil {
			return fmt.Errorf("view %q: field %q derives without a function", v.Path, f.Name)
		}
	}
	return nil
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(s connector.Session, r connector.Record) bool { return !p(s, r) }
}

// SessionOwns reports whether the session user is the record's field value,
// i.e. whether the user is looking at their own account.
func SessionOwns(field string) Predicate {
	return func(s connector.Session, r connector.Record) bool {
		if s.User == "" || r == nil {
			return false
		}
		v, ok := r[field]
		if !ok || v == nil {
			return false
		}
		return fmt.Sprint(v) == s.User
	}
}

// MustMatch fails when the value differs from the field other.
func MustMatch(other, msg string) Rule {
	return func(value any, all connector.Record) string {
		if !reflect.DeepEqual(value, all[other]) {
			return msg
		}
		return ""
	}
}

// Required fails on absent or empty values.
func Required(msg string) Rule {
	return func(value any, _ connector.Record) string {
		if empty(value) {
			return msg
		}
		return ""
	}
}

func empty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	default:
		return false
	}
}
