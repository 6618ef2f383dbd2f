package view

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/blogadmin/internal/apierror"
	"github.com/leapstack-labs/blogadmin/internal/connector"
)

func accountView() View {
	return View{
		Path:     "accounts/:id",
		Title:    "Account",
		Kind:     KindChange,
		Resource: "accounts",
		Fieldsets: []Fieldset{
			{
				Fields: []Field{
					{Name: "id", Hidden: true},
					{Name: "ownerId", Hidden: true},
					{Name: "email", Label: "Email", ReadOnlyIf: Not(SessionOwns("ownerId"))},
					{Name: "name", Label: "Name", Rules: []Rule{Required("This field is required.")}},
					{Name: "slug", ReadOnly: true, Derive: &Derive{From: "name", Func: func(v any) any {
						return strings.ToLower(v.(string))
					}}},
					{Name: "active", InitialValue: true},
				},
			},
			{
				Title:    "Secret",
				HiddenIf: Not(SessionOwns("ownerId")),
				DescriptionFunc: func(s connector.Session, r connector.Record) string {
					if SessionOwns("ownerId")(s, r) {
						return "careful"
					}
					return ""
				},
				Description: "Set a new secret.",
				Fields: []Field{
					{Name: "secret"},
					{Name: "secret_confirm", Rules: []Rule{MustMatch("secret", "The secrets do not match.")}},
				},
			},
		},
	}
}

func TestResolve_OwnerPredicates(t *testing.T) {
	v := accountView()

	tests := []struct {
		name         string
		session      connector.Session
		record       connector.Record
		wantReadOnly bool
		wantHidden   bool
		wantDesc     string
	}{
		{"own account", connector.Session{User: "42"}, connector.Record{"ownerId": 42}, false, false, "careful"},
		{"someone else", connector.Session{User: "42"}, connector.Record{"ownerId": 7}, true, true, "Set a new secret."},
		{"anonymous", connector.Session{}, connector.Record{"ownerId": 42}, true, true, "Set a new secret."},
		{"no record", connector.Session{User: "42"}, nil, true, true, "Set a new secret."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Resolve(tt.session, tt.record)
			require.Len(t, res.Fieldsets, 2)

			email := res.Fieldsets[0].Fields[2]
			assert.Equal(t, "email", email.Name)
			assert.Equal(t, tt.wantReadOnly, email.ReadOnly)

			assert.Equal(t, tt.wantHidden, res.Fieldsets[1].Hidden)
			assert.Equal(t, tt.wantDesc, res.Fieldsets[1].Description)
		})
	}
}

func TestResolve_StaticAttributes(t *testing.T) {
	res := accountView().Resolve(connector.Session{}, nil)

	assert.Equal(t, "accounts/:id", res.Path)
	assert.Equal(t, KindChange, res.Kind)

	fields := res.Fieldsets[0].Fields
	assert.True(t, fields[0].Hidden)
	assert.True(t, fields[3].Validated)
	assert.True(t, fields[4].ReadOnly)
	assert.Equal(t, "name", fields[4].DerivedFrom)
	assert.Equal(t, true, fields[5].InitialValue)
}

func TestValidate(t *testing.T) {
	v := accountView()

	t.Run("valid", func(t *testing.T) {
		err := v.Validate(connector.Record{"name": "x", "secret": "a", "secret_confirm": "a"})
		assert.NoError(t, err)
	})

	t.Run("both absent match", func(t *testing.T) {
		assert.NoError(t, v.Validate(connector.Record{"name": "x"}))
	})

	t.Run("failures are collected per field", func(t *testing.T) {
		err := v.Validate(connector.Record{"name": "", "secret": "a", "secret_confirm": "b"})
		require.Error(t, err)

		e, ok := apierror.As(err)
		require.True(t, ok)
		assert.Equal(t, apierror.KindValidation, e.Kind)
		assert.Equal(t, []string{"This field is required."}, e.FieldMessages("name"))
		assert.Equal(t, []string{"The secrets do not match."}, e.FieldMessages("secret_confirm"))
	})
}

func TestApplyDefaults(t *testing.T) {
	v := accountView()

	got := v.ApplyDefaults(connector.Record{"name": "Hello"})
	assert.Equal(t, true, got["active"])
	assert.Equal(t, "hello", got["slug"])

	kept := v.ApplyDefaults(connector.Record{"name": "Hello", "slug": "custom", "active": false})
	assert.Equal(t, "custom", kept["slug"])
	assert.Equal(t, false, kept["active"])

	bare := v.ApplyDefaults(nil)
	assert.Equal(t, connector.Record{"active": true}, bare)
}

func TestLoadAndSave(t *testing.T) {
	v := View{
		Path: "things",
		Kind: KindList,
		Normalize: func(r connector.Record) connector.Record {
			r["upper"] = strings.ToUpper(r["name"].(string))
			return r
		},
		Denormalize: func(r connector.Record) connector.Record {
			delete(r, "upper")
			return r
		},
	}

	in := []connector.Record{{"name": "a"}, {"name": "b"}}
	loaded := v.Load(in)
	assert.Equal(t, "A", loaded[0]["upper"])
	assert.Equal(t, "B", loaded[1]["upper"])
	assert.NotContains(t, in[0], "upper", "input must not be mutated")

	saved := v.Save(loaded[0])
	assert.Equal(t, connector.Record{"name": "a"}, saved)
	assert.Contains(t, loaded[0], "upper")
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		view    View
		wantErr string
	}{
		{"ok", accountView(), ""},
		{"no path", View{Kind: KindList}, "missing path"},
		{"bad kind", View{Path: "x", Kind: "grid"}, "unknown kind"},
		{"duplicate field", View{Path: "x", Kind: KindList, Fields: []Field{{Name: "a"}, {Name: "a"}}}, "duplicate field"},
		{"derive without func", View{Path: "x", Kind: KindAdd, Fields: []Field{{Name: "a", Derive: &Derive{From: "b"}}}}, "derives without a function"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.view.Check()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSet_Match(t *testing.T) {
	set, err := NewSet(
		View{Path: "users", Kind: KindList},
		View{Path: "users/new", Kind: KindAdd},
		View{Path: "users/:id", Kind: KindChange},
	)
	require.NoError(t, err)

	tests := []struct {
		path       string
		wantPath   string
		wantParams map[string]string
		wantOK     bool
	}{
		{"users", "users", map[string]string{}, true},
		{"/users/", "users", map[string]string{}, true},
		{"users/new", "users/new", map[string]string{}, true},
		{"users/42", "users/:id", map[string]string{"id": "42"}, true},
		{"users/42/edit", "", nil, false},
		{"tags", "", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			v, params, ok := set.Match(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPath, v.Path)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestNewSet_DuplicatePath(t *testing.T) {
	_, err := NewSet(View{Path: "a", Kind: KindList}, View{Path: "a", Kind: KindList})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate view path")
}
