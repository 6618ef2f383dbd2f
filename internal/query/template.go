package query

import (
	"fmt"
	"strings"
)

// IDPlaceholder marks where the target identity goes in a Template.
const IDPlaceholder = "%id"

// Template is a fixed single-record query or mutation document.
type Template string

// Bind substitutes id for every IDPlaceholder. The placeholder always sits
// inside a string literal, so id is escaped but not quoted.
func (t Template) Bind(id string) string {
	quoted := Quote(id)
	return strings.ReplaceAll(string(t), IDPlaceholder, quoted[1:len(quoted)-1])
}

// NeedsID reports whether the template contains the id placeholder.
func (t Template) NeedsID() bool {
	return strings.Contains(string(t), IDPlaceholder)
}

// Single returns the read template for one entity:
//
//	{tag(id: "%id"){id, name, slug}}
func Single(field, fields string) Template {
	return Template(fmt.Sprintf(`{%s(id: "%s"){%s}}`, field, IDPlaceholder, fields))
}

// Mutation returns a create or change mutation in the backend's convention:
// the payload carries a sibling errors list next to the result object.
//
//	mutation ($input: CreateTagInput!) {
//	    createTag(input: $input) {
//	        errors
//	        tag {id, name, slug}
//	    }
//	}
func Mutation(field, inputType, resultKey, fields string) Template {
	return Template(fmt.Sprintf(`mutation ($input: %s!) {
    %s(input: $input) {
        errors
        %s {%s}
    }
}`, inputType, field, resultKey, fields))
}

// DeleteMutation returns a delete mutation acknowledging with "deleted".
func DeleteMutation(field, inputType string) Template {
	return Template(fmt.Sprintf(`mutation ($input: %s!) {
    %s(input: $input) {
        deleted
    }
}`, inputType, field))
}
