// Package blog declares the blog admin: its resources as connector
// descriptors and its screens as view definitions.
package blog

import (
	"github.com/leapstack-labs/blogadmin/internal/connector"
	"github.com/leapstack-labs/blogadmin/internal/query"
)

// Resource names.
const (
	Users      = "users"
	Sections   = "sections"
	Categories = "categories"
	Tags       = "tags"
	Entries    = "entries"
	Links      = "links"

	SectionsOptions   = "sectionsOptions"
	CategoriesOptions = "categoriesOptions"
	TagsOptions       = "tagsOptions"
)

// listPageSize is the static page size the list queries ask for. A page size
// given by the caller replaces it.
const listPageSize = 20

var firstPage = []query.Arg{{Name: "first", Value: listPageSize}}

const (
	userFields     = "id, originalId, username, firstName, lastName, email, isActive, isStaff, dateJoined"
	userReadFields = "id, originalId, username, firstName, lastName, email, isStaff, isActive, dateJoined"

	sectionListFields = "id, originalId, name, slug, position, counterEntries"
	sectionFields     = "id, name, slug, position"

	categoryListFields = "id, originalId, section{id,name}, name, slug, position, counterEntries"
	categoryFields     = "id, section{id,name}, name, slug, position"

	tagListFields = "id, originalId, name, slug, counterEntries"
	tagFields     = "id, name, slug"

	entryListFields   = "id, originalId, title, status, date, sticky, section{id, name}, category{id, name}, owner{id, originalId, username}, counterLinks, counterTags"
	entryFields       = "id, title, status, date, sticky, section{id, name}, category{id, name}, tags{id, name}, summary, body, owner{id, username}, createdate, updatedate"
	entryCreateFields = "id, title, status, date, sticky, section{id, name}, category{id, name}, summary, body, owner{id, username}, createdate, updatedate"

	linkFields = "id, entry{id}, url, title, description, position"
)

// Descriptors returns the blog's resources.
func Descriptors() []connector.Descriptor {
	return []connector.Descriptor{
		{
			Name:         Users,
			Singular:     "user",
			TypeName:     "User",
			ListRoot:     "allUsers",
			ListFields:   userFields,
			OrderBy:      "username",
			DetailFields: userReadFields,
			CreateFields: userFields,
			UpdateFields: userFields,
		},
		{
			Name:         Sections,
			Singular:     "section",
			TypeName:     "Section",
			ListRoot:     "allSections",
			ListFields:   sectionListFields,
			ListArgs:     firstPage,
			OrderBy:      "slug",
			DetailFields: sectionFields,
		},
		{
			Name:         Categories,
			Singular:     "category",
			TypeName:     "Category",
			ListRoot:     "allCategories",
			ListFields:   categoryListFields,
			ListArgs:     firstPage,
			OrderBy:      "slug",
			DetailFields: categoryFields,
		},
		{
			Name:         Tags,
			Singular:     "tag",
			TypeName:     "Tag",
			ListRoot:     "allTags",
			ListFields:   tagListFields,
			ListArgs:     firstPage,
			OrderBy:      "slug",
			DetailFields: tagFields,
		},
		{
			Name:          Entries,
			Singular:      "entry",
			TypeName:      "Entry",
			ListRoot:      "allEntries",
			ListFields:    entryListFields,
			ListArgs:      firstPage,
			OrderBy:       "-date",
			DetailFields:  entryFields,
			CreateFields:  entryCreateFields,
			CreateRequest: connector.DefaultField("owner", sessionUser),
		},
		{
			Name:         Links,
			Singular:     "link",
			TypeName:     "Entrylink",
			ResultKey:    "entrylink",
			Label:        "entry link",
			ListRoot:     "allLinks",
			ListFields:   linkFields,
			OrderBy:      "position",
			DetailFields: linkFields,
		},
	}
}

// sessionUser is the owner given to entries created without one.
func sessionUser(s connector.Session) any {
	if s.User == "" {
		return nil
	}
	return s.User
}

type optionsConnector struct {
	name, root, fields string
}

var optionsConnectors = []optionsConnector{
	{SectionsOptions, "allSections", "id, name"},
	{CategoriesOptions, "allCategories", "id, name, slug"},
	{TagsOptions, "allTags", "id, name"},
}

// Register adds every blog resource and option connector to reg.
func Register(reg *connector.Registry) error {
	for _, d := range Descriptors() {
		if err := reg.Add(d); err != nil {
			return err
		}
	}
	for _, o := range optionsConnectors {
		if err := reg.AddOptions(o.name, o.root, o.fields, "slug"); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the blog's resources.
func NewRegistry() (*connector.Registry, error) {
	reg := connector.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
