// Package query builds the GraphQL documents sent for each connector
// operation. Everything here is plain string construction: nothing is checked
// against the backend schema, so a bad field selection only surfaces as an
// envelope error at execution time.
package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Enum is an argument value printed without quotes, e.g. an enum literal.
type Enum string

// Arg is one argument of a list query.
type Arg struct {
	Name  string
	Value any
}

// ArgNameError reports an argument name that is not a GraphQL name.
type ArgNameError struct {
	Name string
}

func (e *ArgNameError) Error() string {
	return fmt.Sprintf("%q is not a valid argument name", e.Name)
}

// ValidName reports whether s matches the GraphQL name rule
// /[_A-Za-z][_0-9A-Za-z]*/.
func ValidName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// PageInfoSelection is requested on every list query so the pagination
// adapter can find the next cursor.
const PageInfoSelection = "pageInfo{hasNextPage, endCursor}"

// BuildList returns a connection query over the root field name, e.g.
//
//	{allTags(first: 20, orderBy: "slug"){pageInfo{hasNextPage, endCursor}, edges{node{id, name}}}}
//
// fields is the comma-joined node selection. Args whose value is empty are
// skipped; later args replace earlier ones with the same name. An arg whose
// name is not a GraphQL name yields an *ArgNameError.
func BuildList(name, fields string, args ...Arg) (string, error) {
	rendered, err := renderArgs(args)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("{")
	b.WriteString(name)
	if rendered != "" {
		b.WriteString("(")
		b.WriteString(rendered)
		b.WriteString(")")
	}
	b.WriteString("{")
	b.WriteString(PageInfoSelection)
	b.WriteString(", edges{node{")
	b.WriteString(fields)
	b.WriteString("}}}}")
	return b.String(), nil
}

func renderArgs(args []Arg) (string, error) {
	order := make([]string, 0, len(args))
	values := make(map[string]string, len(args))
	for _, a := range args {
		if !ValidName(a.Name) {
			return "", &ArgNameError{Name: a.Name}
		}
		v, ok := FormatValue(a.Value)
		if !ok {
			continue
		}
		if _, seen := values[a.Name]; !seen {
			order = append(order, a.Name)
		}
		values[a.Name] = v
	}
	parts := make([]string, 0, len(order))
	for _, name := range order {
		parts = append(parts, name+": "+values[name])
	}
	return strings.Join(parts, ", "), nil
}

// FormatValue renders v as a GraphQL literal. The second result is false for
// values that should be omitted (nil, empty strings, zero page sizes).
func FormatValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		if val == "" {
			return "", false
		}
		return Quote(val), true
	case Enum:
		if val == "" {
			return "", false
		}
		return string(val), true
	case int:
		if val == 0 {
			return "", false
		}
		return strconv.Itoa(val), true
	case int64:
		if val == 0 {
			return "", false
		}
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case fmt.Stringer:
		return FormatValue(val.String())
	default:
		return Quote(fmt.Sprint(val)), true
	}
}

// Quote returns s as a GraphQL string literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
