package connector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/blogadmin/internal/apierror"
	"github.com/leapstack-labs/blogadmin/internal/graphql"
	"github.com/leapstack-labs/blogadmin/internal/pagination"
	"github.com/leapstack-labs/blogadmin/internal/query"
	"github.com/leapstack-labs/blogadmin/internal/testutil"
)

// fakeExecutor records requests and replays canned envelopes in order.
type fakeExecutor struct {
	requests []graphql.Request
	headers  []http.Header
	replies  []*graphql.Envelope
	err      error
}

func (f *fakeExecutor) Do(_ context.Context, req graphql.Request, header http.Header) (*graphql.Envelope, error) {
	f.requests = append(f.requests, req)
	f.headers = append(f.headers, header)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.replies) == 0 {
		return nil, errors.New("no reply queued")
	}
	env := f.replies[0]
	f.replies = f.replies[1:]
	return env, nil
}

func tagDescriptor() Descriptor {
	return Descriptor{
		Name:         "tags",
		Singular:     "tag",
		TypeName:     "Tag",
		ListRoot:     "allTags",
		ListFields:   "id, name, slug",
		OrderBy:      "slug",
		DetailFields: "id, name, slug",
	}
}

func entryDescriptor() Descriptor {
	return Descriptor{
		Name:         "entries",
		Singular:     "entry",
		TypeName:     "Entry",
		ListRoot:     "allEntries",
		ListFields:   "id, title, status, date",
		OrderBy:      "-date",
		DetailFields: "id, title, owner{id, username}",
		CreateRequest: DefaultField("owner", func(s Session) any {
			if s.User == "" {
				return nil
			}
			return s.User
		}),
	}
}

func newTestConnector(t *testing.T, exec Executor) *Connector {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.Add(tagDescriptor()))
	require.NoError(t, reg.Add(entryDescriptor()))
	require.NoError(t, reg.AddOptions("sectionOptions", "allSections", "id, name", "slug"))
	return New(reg, exec, testutil.NewTestLogger(t))
}

func TestConnector_List(t *testing.T) {
	exec := &fakeExecutor{replies: []*graphql.Envelope{{Data: map[string]any{
		"allTags": map[string]any{
			"pageInfo": map[string]any{"hasNextPage": true, "endCursor": "YXJyYXk6MQ=="},
			"edges": []any{
				map[string]any{"node": map[string]any{"id": "1", "name": "a", "slug": "a"}},
				map[string]any{"node": map[string]any{"id": "2", "name": "b", "slug": "b"}},
			},
		},
	}}}}
	c := newTestConnector(t, exec)

	res, err := c.List(context.Background(), Session{Token: "abc"}, "tags", pagination.Page{First: 2})
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "1", res.Records[0].ID())
	assert.Equal(t, "2", res.Records[1].ID())
	assert.Equal(t, "YXJyYXk6MQ==", res.Next)

	require.Len(t, exec.requests, 1)
	assert.Equal(t, `{allTags(orderBy: "slug", first: 2){pageInfo{hasNextPage, endCursor}, edges{node{id, name, slug}}}}`, exec.requests[0].Query)
	assert.Nil(t, exec.requests[0].Variables)
	assert.Equal(t, "Token abc", exec.headers[0].Get("Authorization"))
}

func TestConnector_ListAll(t *testing.T) {
	page := func(next string, ids ...string) *graphql.Envelope {
		edges := make([]any, 0, len(ids))
		for _, id := range ids {
			edges = append(edges, map[string]any{"node": map[string]any{"id": id}})
		}
		return &graphql.Envelope{Data: map[string]any{"allTags": map[string]any{
			"pageInfo": map[string]any{"hasNextPage": next != "", "endCursor": next},
			"edges":    edges,
		}}}
	}
	exec := &fakeExecutor{replies: []*graphql.Envelope{
		page("c1", "1", "2"),
		page("c2", "3", "4"),
		page("", "5"),
	}}
	c := newTestConnector(t, exec)

	req := Request{Page: pagination.Page{First: 2, After: "c0"}, Filters: []query.Arg{{Name: "section", Value: "U2VjdGlvbjox"}}}
	records, err := c.ListAll(context.Background(), Session{}, "tags", req, 0)
	require.NoError(t, err)

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID())
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids)
	require.Len(t, exec.requests, 3)
	assert.Contains(t, exec.requests[0].Query, `after: "c0"`)
	assert.Contains(t, exec.requests[0].Query, `section: "U2VjdGlvbjox"`)
	assert.Contains(t, exec.requests[1].Query, `after: "c1"`)
	assert.Contains(t, exec.requests[2].Query, `section: "U2VjdGlvbjox"`)
	assert.Contains(t, exec.requests[2].Query, `after: "c2"`)
}

func TestConnector_ListBadFilterNameSendsNothing(t *testing.T) {
	exec := &fakeExecutor{}
	c := newTestConnector(t, exec)

	_, err := c.Do(context.Background(), Session{}, "tags", Request{
		Op:      OpList,
		Filters: []query.Arg{{Name: "slug){id} allUsers{email", Value: "x"}},
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
	assert.Empty(t, exec.requests)
}

func TestConnector_ReadNotFound(t *testing.T) {
	exec := &fakeExecutor{replies: []*graphql.Envelope{{Data: map[string]any{"tag": nil}}}}
	c := newTestConnector(t, exec)

	_, err := c.Read(context.Background(), Session{}, "tags", "VGFnOjk5")
	require.Error(t, err)

	e, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindNotFound, e.Kind)
	assert.Equal(t, "The requested tag was not found", e.Message)
	assert.Equal(t, `{tag(id: "VGFnOjk5"){id, name, slug}}`, exec.requests[0].Query)
}

func TestConnector_CreateValidationErrors(t *testing.T) {
	exec := &fakeExecutor{replies: []*graphql.Envelope{{Data: map[string]any{
		"createTag": map[string]any{
			"errors": []any{map[string]any{"field": "name", "messages": []any{"required"}}},
			"tag":    nil,
		},
	}}}}
	c := newTestConnector(t, exec)

	_, err := c.Create(context.Background(), Session{}, "tags", Record{"name": ""})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	e, _ := apierror.As(err)
	assert.Equal(t, []string{"required"}, e.FieldMessages("name"))
	assert.Equal(t, map[string]any{"input": map[string]any{"name": ""}}, exec.requests[0].Variables)
}

func TestConnector_CreateInjectsOwner(t *testing.T) {
	created := func() *graphql.Envelope {
		return &graphql.Envelope{Data: map[string]any{
			"createEntry": map[string]any{"errors": []any{}, "entry": map[string]any{"id": "E1"}},
		}}
	}

	tests := []struct {
		name      string
		session   Session
		data      Record
		wantOwner any
	}{
		{"session user injected", Session{User: "42"}, Record{"title": "Hello"}, "42"},
		{"explicit owner kept", Session{User: "42"}, Record{"title": "Hello", "owner": "7"}, "7"},
		{"nested owner flattened and kept", Session{User: "42"}, Record{"title": "Hello", "owner": map[string]any{"id": "7", "username": "bob"}}, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{replies: []*graphql.Envelope{created()}}
			c := newTestConnector(t, exec)

			rec, err := c.Create(context.Background(), tt.session, "entries", tt.data)
			require.NoError(t, err)
			assert.Equal(t, "E1", rec.ID())

			input, ok := exec.requests[0].Variables["input"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.wantOwner, input["owner"])
		})
	}
}

func TestConnector_UpdateSetsID(t *testing.T) {
	exec := &fakeExecutor{replies: []*graphql.Envelope{{Data: map[string]any{
		"changeTag": map[string]any{"errors": nil, "tag": map[string]any{"id": "T1", "name": "go"}},
	}}}}
	c := newTestConnector(t, exec)

	rec, err := c.Update(context.Background(), Session{}, "tags", "T1", Record{"name": "go"})
	require.NoError(t, err)
	assert.Equal(t, "go", rec["name"])

	assert.Equal(t, map[string]any{"input": map[string]any{"id": "T1", "name": "go"}}, exec.requests[0].Variables)
	assert.Contains(t, exec.requests[0].Query, "changeTag(input: $input)")
}

func TestConnector_UpdateWithoutID(t *testing.T) {
	exec := &fakeExecutor{}
	c := newTestConnector(t, exec)

	_, err := c.Update(context.Background(), Session{}, "tags", "", Record{"name": "go"})
	require.Error(t, err)
	assert.Empty(t, exec.requests, "no call may be made without an id")
}

func TestConnector_DeleteSendsOnlyID(t *testing.T) {
	exec := &fakeExecutor{replies: []*graphql.Envelope{{Data: map[string]any{
		"deleteTag": map[string]any{"deleted": true},
	}}}}
	c := newTestConnector(t, exec)

	_, err := c.Do(context.Background(), Session{}, "tags", Request{
		Op:   OpDelete,
		ID:   "T1",
		Data: Record{"id": "T1", "name": "go", "slug": "go"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"input": map[string]any{"id": "T1"}}, exec.requests[0].Variables)
}

func TestConnector_Options(t *testing.T) {
	exec := &fakeExecutor{replies: []*graphql.Envelope{{Data: map[string]any{
		"allSections": map[string]any{"edges": []any{
			map[string]any{"node": map[string]any{"id": "S1", "name": "News"}},
		}},
	}}}}
	c := newTestConnector(t, exec)

	opts, err := c.Options(context.Background(), Session{}, "sectionOptions")
	require.NoError(t, err)
	assert.Equal(t, []Option{{Value: "S1", Label: "News"}}, opts)
	assert.Contains(t, exec.requests[0].Query, `allSections(orderBy: "slug")`)
}

func TestConnector_EnvelopeErrors(t *testing.T) {
	exec := &fakeExecutor{replies: []*graphql.Envelope{{
		Data:   map[string]any{"tag": nil},
		Errors: []graphql.Error{{Message: "permission denied"}},
	}}}
	c := newTestConnector(t, exec)

	_, err := c.Read(context.Background(), Session{}, "tags", "T1")
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindEnvelope))
}

func TestConnector_TransportErrorPassesThrough(t *testing.T) {
	want := apierror.Transport(http.StatusBadGateway, "bad gateway", nil)
	exec := &fakeExecutor{err: want}
	c := newTestConnector(t, exec)

	_, err := c.List(context.Background(), Session{}, "tags", pagination.Page{})
	require.Error(t, err)
	assert.ErrorIs(t, err, want)
}

func TestConnector_UnknownResource(t *testing.T) {
	c := newTestConnector(t, &fakeExecutor{})

	tests := []struct {
		resource string
		op       Operation
	}{
		{"widgets", OpList},
		{"sectionOptions", OpCreate},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.op, tt.resource), func(t *testing.T) {
			_, err := c.Do(context.Background(), Session{}, tt.resource, Request{Op: tt.op})
			require.Error(t, err)
		})
	}
}

func TestRecord_ID(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{"missing", Record{}, ""},
		{"null", Record{"id": nil}, ""},
		{"relay id", Record{"id": "VGFnOjE="}, "VGFnOjE="},
		{"int", Record{"id": 42}, "42"},
		{"large json number", Record{"id": float64(1000000)}, "1000000"},
		{"fractional json number", Record{"id": 1.5}, "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.ID())
		})
	}
}
