package blog

import (
	"fmt"

	"github.com/leapstack-labs/blogadmin/internal/connector"
	"github.com/leapstack-labs/blogadmin/internal/view"
)

// PasswordMismatch is reported when the password confirmation differs.
const PasswordMismatch = "The passwords do not match."

const (
	activeHelp      = "Designates whether this user should be treated as active. Unselect this instead of deleting accounts."
	staffHelp       = "Designates whether the user can log into crudl."
	passwordHelp    = "Raw passwords are not stored, so there is no way to see this user's password, but you can set a new password."
	lockoutWarning  = "WARNING: If you remove crudl access for the currently logged-in user, you will be logged out and unable to login with this user again."
	slugHelp        = "Slug is automatically generated when saving the %s."
	dateJoinedHelp  = "Date and time the account was created."
	entryOwnerHelp  = "Defaults to the signed-in user."
	entryStatusHelp = "Only online entries are visible on the site."
)

// Views returns every blog admin screen.
func Views() []view.View {
	var out []view.View
	out = append(out, userViews()...)
	out = append(out, sectionViews()...)
	out = append(out, categoryViews()...)
	out = append(out, tagViews()...)
	out = append(out, entryViews()...)
	return out
}

// NewViewSet returns the blog's views indexed by path.
func NewViewSet() (*view.Set, error) {
	return view.NewSet(Views()...)
}

// ownAccount holds while the signed-in user views their own user record.
var ownAccount = view.SessionOwns("originalId")

func userViews() []view.View {
	list := view.View{
		Path:     "users",
		Title:    "Users",
		Kind:     view.KindList,
		Resource: Users,
		Fields: []view.Field{
			{Name: "originalId", Label: "ID"},
			{Name: "username", Label: "Username", Main: true, Sorted: "ascending"},
			{Name: "fullName", Label: "Full name"},
			{Name: "email", Label: "Email address"},
			{Name: "isActive", Label: "Active", Widget: "boolean"},
			{Name: "isStaff", Label: "Staff member", Widget: "boolean"},
		},
		Normalize: NormalizeUser,
	}

	identity := view.Fieldset{Fields: []view.Field{
		{Name: "id", Hidden: true},
		{Name: "originalId", Hidden: true},
		{Name: "username", Label: "Username", Widget: "String"},
	}}
	passwordFields := []view.Field{
		{Name: "password", Label: "Password", Widget: "Password"},
		{Name: "password_confirm", Label: "Password (Confirm)", Widget: "Password",
			Rules: []view.Rule{view.MustMatch("password", PasswordMismatch)}},
	}
	roles := func(warn bool) view.Fieldset {
		fs := view.Fieldset{
			Title:    "Roles",
			Expanded: true,
			Fields: []view.Field{
				{Name: "isActive", Label: "Active", Widget: "Checkbox", InitialValue: true, HelpText: activeHelp},
				{Name: "isStaff", Label: "Staff member", Widget: "Checkbox", HelpText: staffHelp},
			},
		}
		if warn {
			fs.DescriptionFunc = func(s connector.Session, r connector.Record) string {
				if ownAccount(s, r) {
					return lockoutWarning
				}
				return ""
			}
		}
		return fs
	}

	change := view.View{
		Path:     "users/:id",
		Title:    "User",
		Kind:     view.KindChange,
		Resource: Users,
		Fieldsets: []view.Fieldset{
			identity,
			{Fields: []view.Field{
				{Name: "firstName", Label: "First Name", Widget: "String"},
				{Name: "lastName", Label: "Last Name", Widget: "String"},
				{Name: "email", Label: "Email address", Widget: "String", ReadOnlyIf: view.Not(ownAccount)},
			}},
			roles(true),
			{
				Title:       "More...",
				Description: dateJoinedHelp,
				Fields: []view.Field{
					{Name: "dateJoined", Label: "Date joined", Widget: "SplitDateTime", ReadOnly: true},
				},
			},
			{
				Title:       "Password",
				Description: passwordHelp,
				HiddenIf:    view.Not(ownAccount),
				Fields:      passwordFields,
			},
		},
		Denormalize: DenormalizeUser,
	}

	add := view.View{
		Path:     "users/new",
		Title:    "New User",
		Kind:     view.KindAdd,
		Resource: Users,
		Fieldsets: []view.Fieldset{
			identity,
			{Fields: []view.Field{
				{Name: "firstName", Label: "First Name", Widget: "String"},
				{Name: "lastName", Label: "Last Name", Widget: "String"},
				{Name: "email", Label: "Email address", Widget: "String"},
			}},
			roles(false),
			{Title: "Password", Expanded: true, Fields: passwordFields},
		},
		Denormalize: DenormalizeUser,
	}
	return []view.View{list, change, add}
}

// NormalizeUser adds the display-only fullName field.
func NormalizeUser(r connector.Record) connector.Record {
	u, err := Decode[User](r)
	if err != nil {
		return r
	}
	r["fullName"] = u.FullName()
	return r
}

// DenormalizeUser drops the fields the user mutations do not accept.
func DenormalizeUser(r connector.Record) connector.Record {
	delete(r, "dateJoined")
	delete(r, "password_confirm")
	delete(r, "originalId")
	delete(r, "fullName")
	return r
}

func slugField(entity string) view.Field {
	return view.Field{
		Name:     "slug",
		Label:    "Slug",
		Widget:   "String",
		ReadOnly: true,
		Derive:   &view.Derive{From: "name", Func: slugFrom},
		HelpText: fmt.Sprintf(slugHelp, entity),
	}
}

func slugFrom(v any) any {
	s, _ := v.(string)
	return Slugify(s)
}

// crud returns the list, change and add views of a resource whose change and
// add screens share one flat field list.
func crud(resource, title, singular string, list, fields []view.Field) []view.View {
	return []view.View{
		{Path: resource, Title: title, Kind: view.KindList, Resource: resource, Fields: list},
		{Path: resource + "/:id", Title: singular, Kind: view.KindChange, Resource: resource, Fields: fields},
		{Path: resource + "/new", Title: "New " + singular, Kind: view.KindAdd, Resource: resource, Fields: fields},
	}
}

func sectionViews() []view.View {
	return crud(Sections, "Sections", "Section",
		[]view.Field{
			{Name: "originalId", Label: "ID"},
			{Name: "name", Label: "Name", Main: true, Sortable: true, Sorted: "ascending"},
			{Name: "slug", Label: "Slug", Sortable: true},
			{Name: "position", Label: "Position", Sortable: true},
			{Name: "counterEntries", Label: "No. Entries"},
		},
		[]view.Field{
			{Name: "id", Widget: "hidden", Hidden: true},
			{Name: "name", Label: "Name", Widget: "String", Rules: []view.Rule{view.Required("This field is required.")}},
			slugField("Section"),
			{Name: "position", Label: "Position", Widget: "Number", InitialValue: 0},
		},
	)
}

func categoryViews() []view.View {
	return crud(Categories, "Categories", "Category",
		[]view.Field{
			{Name: "originalId", Label: "ID"},
			{Name: "section", Label: "Section", Sortable: true},
			{Name: "name", Label: "Name", Main: true, Sortable: true, Sorted: "ascending"},
			{Name: "slug", Label: "Slug", Sortable: true},
			{Name: "position", Label: "Position"},
			{Name: "counterEntries", Label: "No. Entries"},
		},
		[]view.Field{
			{Name: "id", Widget: "hidden", Hidden: true},
			{Name: "section", Label: "Section", Widget: "Select", Options: SectionsOptions,
				Rules: []view.Rule{view.Required("This field is required.")}},
			{Name: "name", Label: "Name", Widget: "String", Rules: []view.Rule{view.Required("This field is required.")}},
			slugField("Category"),
			{Name: "position", Label: "Position", Widget: "Number", InitialValue: 0},
		},
	)
}

func tagViews() []view.View {
	return crud(Tags, "Tags", "Tag",
		[]view.Field{
			{Name: "originalId", Label: "ID"},
			{Name: "name", Label: "Name", Main: true, Sortable: true, Sorted: "ascending"},
			{Name: "slug", Label: "Slug"},
			{Name: "counterEntries", Label: "No. Entries"},
		},
		[]view.Field{
			{Name: "id", Widget: "hidden", Hidden: true},
			{Name: "name", Label: "Name", Widget: "String"},
			slugField("Tag"),
		},
	)
}

func entryViews() []view.View {
	list := view.View{
		Path:     Entries,
		Title:    "Entries",
		Kind:     view.KindList,
		Resource: Entries,
		Fields: []view.Field{
			{Name: "originalId", Label: "ID"},
			{Name: "title", Label: "Title", Main: true, Sortable: true},
			{Name: "status", Label: "Status", Sortable: true},
			{Name: "section", Label: "Section"},
			{Name: "category", Label: "Category"},
			{Name: "owner", Label: "Owner"},
			{Name: "date", Label: "Date", Sortable: true, Sorted: "descending"},
			{Name: "sticky", Label: "Sticky", Widget: "boolean", Sortable: true},
			{Name: "counterLinks", Label: "No. Links"},
			{Name: "counterTags", Label: "No. Tags"},
		},
	}

	content := view.Fieldset{Fields: []view.Field{
		{Name: "id", Hidden: true},
		{Name: "title", Label: "Title", Widget: "String", Rules: []view.Rule{view.Required("This field is required.")}},
		{Name: "status", Label: "Status", Widget: "Select", InitialValue: "0", HelpText: entryStatusHelp},
		{Name: "date", Label: "Date", Widget: "Date"},
		{Name: "sticky", Label: "Sticky", Widget: "Checkbox"},
		{Name: "section", Label: "Section", Widget: "Select", Options: SectionsOptions,
			Rules: []view.Rule{view.Required("This field is required.")}},
		{Name: "category", Label: "Category", Widget: "Select", Options: CategoriesOptions},
		{Name: "summary", Label: "Summary", Widget: "Textarea"},
		{Name: "body", Label: "Body", Widget: "Textarea"},
	}}
	tags := view.Fieldset{
		Title:    "Tags",
		Expanded: true,
		Fields: []view.Field{
			{Name: "tags", Label: "Tags", Widget: "Autocomplete", Options: TagsOptions},
		},
	}
	internal := view.Fieldset{
		Title: "Internal",
		Fields: []view.Field{
			{Name: "owner", Label: "Owner", ReadOnly: true, HelpText: entryOwnerHelp},
			{Name: "createdate", Label: "Date (Create)", ReadOnly: true},
			{Name: "updatedate", Label: "Date (Update)", ReadOnly: true},
		},
	}

	change := view.View{
		Path:      Entries + "/:id",
		Title:     "Entry",
		Kind:      view.KindChange,
		Resource:  Entries,
		Fieldsets: []view.Fieldset{content, tags, internal},
	}
	add := view.View{
		Path:      Entries + "/new",
		Title:     "New Entry",
		Kind:      view.KindAdd,
		Resource:  Entries,
		Fieldsets: []view.Fieldset{content, tags},
	}
	return []view.View{list, change, add}
}
