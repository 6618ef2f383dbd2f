package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/blogadmin/internal/auth"
	"github.com/leapstack-labs/blogadmin/internal/blog"
	"github.com/leapstack-labs/blogadmin/internal/connector"
	"github.com/leapstack-labs/blogadmin/internal/graphql"
	"github.com/leapstack-labs/blogadmin/internal/testutil"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

type reply struct {
	contains string
	status   int
	body     string
}

// fakeBackend plays the blog backend: the REST login endpoint and the
// GraphQL endpoint. GraphQL replies are picked by a substring of the query.
type fakeBackend struct {
	mu       sync.Mutex
	replies  []reply
	calls    int
	lastReq  graphql.Request
	lastAuth string
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	data, _ := io.ReadAll(r.Body)

	if r.URL.Path == auth.DefaultLoginPath {
		var creds map[string]string
		_ = json.Unmarshal(data, &creds)
		if creds["username"] == "admin" && creds["password"] == "s3cret" {
			_, _ = w.Write([]byte(`{"token": "abc123", "user": 1, "username": "admin"}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"non_field_errors": ["bad credentials"]}`))
		return
	}

	b.calls++
	b.lastAuth = r.Header.Get("Authorization")
	b.lastReq = graphql.Request{}
	_ = json.Unmarshal(data, &b.lastReq)
	for _, rep := range b.replies {
		if strings.Contains(b.lastReq.Query, rep.contains) {
			if rep.status != 0 {
				w.WriteHeader(rep.status)
			}
			_, _ = w.Write([]byte(rep.body))
			return
		}
	}
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`no reply for query`))
}

func (b *fakeBackend) request() (graphql.Request, string, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastReq, b.lastAuth, b.calls
}

func setupTestServer(t *testing.T, replies ...reply) (http.Handler, *fakeBackend) {
	t.Helper()

	backend := &fakeBackend{replies: replies}
	upstream := httptest.NewServer(backend)
	t.Cleanup(upstream.Close)

	logger := testutil.NewTestLogger(t)

	reg, err := blog.NewRegistry()
	require.NoError(t, err)
	views, err := blog.NewViewSet()
	require.NoError(t, err)

	client := graphql.NewClient(graphql.Config{Endpoint: upstream.URL + "/graphql-api/", Logger: logger})
	srv := NewServer(Config{
		Connector:     connector.New(reg, client, logger),
		Auth:          auth.New(auth.Config{Endpoint: upstream.URL + auth.DefaultLoginPath, Logger: logger}),
		Views:         views,
		BasePath:      "/crudl-graphql/",
		PageSize:      20,
		SessionSecret: "0123456789abcdef0123456789abcdef",
		Logger:        logger,
	})
	h, err := srv.Handler()
	require.NoError(t, err)
	return h, backend
}

func do(t *testing.T, h http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/crudl-graphql"+path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler) []*http.Cookie {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/login", `{"username": "admin", "password": "s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// =============================================================================
// Account
// =============================================================================

func TestLogin(t *testing.T) {
	h, _ := setupTestServer(t)

	rec := do(t, h, http.MethodPost, "/login", `{"username": "admin", "password": "s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, map[string]any{"Authorization": "Token abc123"}, body["requestHeaders"])
	assert.Equal(t, "1", body["user"])
}

func TestLogin_BadCredentials(t *testing.T) {
	h, _ := setupTestServer(t)

	rec := do(t, h, http.MethodPost, "/login", `{"username": "admin", "password": "nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "bad credentials", body["_error"])
	assert.Equal(t, "auth", body["kind"])
}

func TestLogout(t *testing.T) {
	h, backend := setupTestServer(t, reply{contains: "allTags", body: `{"data": {"allTags": {"edges": []}}}`})
	cookies := login(t, h)

	rec := do(t, h, http.MethodPost, "/logout", "", cookies...)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	cleared := rec.Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.Less(t, cleared[0].MaxAge, 0)

	rec = do(t, h, http.MethodGet, "/api/tags", "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, authHeader, _ := backend.request()
	assert.Empty(t, authHeader)
}

// =============================================================================
// Resources
// =============================================================================

func TestListTags(t *testing.T) {
	h, backend := setupTestServer(t, reply{contains: "allTags", body: `{"data": {"allTags": {
		"pageInfo": {"hasNextPage": true, "endCursor": "YXJyYXk6MQ=="},
		"edges": [{"node": {"id": "VGFnOjE=", "name": "go", "slug": "go"}}, {"node": {"id": "VGFnOjI=", "name": "rust", "slug": "rust"}}]
	}}}`})
	cookies := login(t, h)

	rec := do(t, h, http.MethodGet, "/api/tags?first=2&after=YXJyYXk6MA==", "", cookies...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	records := body["records"].([]any)
	require.Len(t, records, 2)
	assert.Equal(t, "VGFnOjE=", records[0].(map[string]any)["id"])
	assert.Equal(t, "YXJyYXk6MQ==", body["next"])
	assert.Equal(t, true, body["hasMore"])

	req, authHeader, _ := backend.request()
	assert.Equal(t, "Token abc123", authHeader)
	assert.Contains(t, req.Query, `allTags(first: 2, orderBy: "slug", after: "YXJyYXk6MA==")`)
}

func TestListUsers_Normalized(t *testing.T) {
	h, _ := setupTestServer(t, reply{contains: "allUsers", body: `{"data": {"allUsers": {"edges": [
		{"node": {"id": "VXNlcjox", "originalId": 1, "username": "ada", "firstName": "Ada", "lastName": "Lovelace"}}
	]}}}`})

	rec := do(t, h, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	records := decode(t, rec)["records"].([]any)
	require.Len(t, records, 1)
	assert.Equal(t, "Lovelace, Ada", records[0].(map[string]any)["fullName"])
}

func TestListFilters(t *testing.T) {
	h, backend := setupTestServer(t, reply{contains: "allCategories", body: `{"data": {"allCategories": {"edges": []}}}`})

	rec := do(t, h, http.MethodGet, "/api/categories?section=U2VjdGlvbjox&orderBy=-name", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []any{}, decode(t, rec)["records"])

	req, _, _ := backend.request()
	assert.Contains(t, req.Query, `allCategories(first: 20, orderBy: "-name", section: "U2VjdGlvbjox")`)
}

func TestList_BadFilterName(t *testing.T) {
	h, backend := setupTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/tags?slug%29%7Bid%7D%20allUsers%7Bemail=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errs, ok := decode(t, rec)["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "filter")

	_, _, calls := backend.request()
	assert.Zero(t, calls)
}

func TestList_IgnoresUnderscoreParams(t *testing.T) {
	h, backend := setupTestServer(t, reply{contains: "allTags", body: `{"data": {"allTags": {"edges": []}}}`})

	rec := do(t, h, http.MethodGet, "/api/tags?_=1700000000", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req, _, _ := backend.request()
	assert.NotContains(t, req.Query, "_:")
}

func TestList_BadPageSize(t *testing.T) {
	h, backend := setupTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/tags?first=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]any{"first": []any{"must be a positive integer"}}, decode(t, rec)["errors"])

	_, _, calls := backend.request()
	assert.Zero(t, calls)
}

func TestReadTag_NotFound(t *testing.T) {
	h, _ := setupTestServer(t, reply{contains: "tag(id:", body: `{"data": {"tag": null}}`})

	rec := do(t, h, http.MethodGet, "/api/tags/VGFnOjk5", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "The requested tag was not found", decode(t, rec)["_error"])
}

func TestCreateTag_ValidationErrors(t *testing.T) {
	h, backend := setupTestServer(t, reply{contains: "createTag", body: `{"data": {"createTag": {
		"errors": [{"field": "name", "messages": ["required"]}], "tag": null
	}}}`})

	rec := do(t, h, http.MethodPost, "/api/tags", `{"name": "", "slug": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, map[string]any{"name": []any{"required"}}, body["errors"])
	assert.Equal(t, "validation", body["kind"])

	req, _, _ := backend.request()
	assert.Equal(t, map[string]any{"input": map[string]any{"name": "", "slug": ""}}, req.Variables)
}

func TestCreateEntry_OwnerFromSession(t *testing.T) {
	h, backend := setupTestServer(t, reply{contains: "createEntry", body: `{"data": {"createEntry": {
		"errors": [], "entry": {"id": "RW50cnk6MQ==", "title": "Hello", "owner": {"id": "VXNlcjox", "username": "admin"}}
	}}}`})
	cookies := login(t, h)

	rec := do(t, h, http.MethodPost, "/api/entries", `{"title": "Hello", "section": {"id": "U2VjdGlvbjox", "name": "News"}}`, cookies...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	record := decode(t, rec)["record"].(map[string]any)
	assert.Equal(t, "RW50cnk6MQ==", record["id"])

	req, _, _ := backend.request()
	input := req.Variables["input"].(map[string]any)
	assert.Equal(t, "1", input["owner"])
	assert.Equal(t, "U2VjdGlvbjox", input["section"])
}

func TestCreateEntry_RequiredTitle(t *testing.T) {
	h, backend := setupTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/entries", `{"title": "", "section": "U2VjdGlvbjox"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["errors"], "title")

	_, _, calls := backend.request()
	assert.Zero(t, calls)
}

func TestUpdateUser(t *testing.T) {
	t.Run("password mismatch never reaches the backend", func(t *testing.T) {
		h, backend := setupTestServer(t)

		rec := do(t, h, http.MethodPut, "/api/users/VXNlcjox", `{"username": "ada", "password": "a", "password_confirm": "b"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, map[string]any{"password_confirm": []any{blog.PasswordMismatch}}, decode(t, rec)["errors"])

		_, _, calls := backend.request()
		assert.Zero(t, calls)
	})

	t.Run("denormalized payload", func(t *testing.T) {
		h, backend := setupTestServer(t, reply{contains: "changeUser", body: `{"data": {"changeUser": {
			"errors": null, "user": {"id": "VXNlcjox", "username": "ada"}
		}}}`})

		rec := do(t, h, http.MethodPut, "/api/users/VXNlcjox", `{
			"id": "VXNlcjox", "originalId": 1, "username": "ada", "dateJoined": "2017-01-01T10:00:00",
			"password": "x", "password_confirm": "x"
		}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		req, _, _ := backend.request()
		assert.Equal(t, map[string]any{"input": map[string]any{
			"id": "VXNlcjox", "username": "ada", "password": "x",
		}}, req.Variables)
	})
}

func TestDeleteTag(t *testing.T) {
	h, backend := setupTestServer(t, reply{contains: "deleteTag", body: `{"data": {"deleteTag": {"deleted": true}}}`})

	rec := do(t, h, http.MethodDelete, "/api/tags/VGFnOjE=", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{"deleteTag": map[string]any{"deleted": true}}, decode(t, rec)["data"])

	req, _, _ := backend.request()
	assert.Equal(t, map[string]any{"input": map[string]any{"id": "VGFnOjE="}}, req.Variables)
}

func TestOptions(t *testing.T) {
	h, _ := setupTestServer(t, reply{contains: "allSections", body: `{"data": {"allSections": {"edges": [
		{"node": {"id": "U2VjdGlvbjox", "name": "News"}}
	]}}}`})

	rec := do(t, h, http.MethodGet, "/api/options/sectionsOptions", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []any{map[string]any{"value": "U2VjdGlvbjox", "label": "News"}}, decode(t, rec)["options"])
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		reply      reply
		wantStatus int
		wantKind   string
	}{
		{"envelope errors", reply{contains: "allTags", body: `{"errors": [{"message": "Cannot query field"}]}`}, http.StatusBadGateway, "envelope"},
		{"backend down", reply{contains: "allTags", status: http.StatusServiceUnavailable, body: `maintenance`}, http.StatusBadGateway, "transport"},
		{"token rejected", reply{contains: "allTags", status: http.StatusUnauthorized, body: `{"detail": "Invalid token."}`}, http.StatusUnauthorized, "auth"},
		{"missing connection", reply{contains: "allTags", body: `{"data": {"allTags": null}}`}, http.StatusInternalServerError, "config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupTestServer(t, tt.reply)

			rec := do(t, h, http.MethodGet, "/api/tags", "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantKind, decode(t, rec)["kind"])
		})
	}
}

func TestUnknownResource(t *testing.T) {
	h, _ := setupTestServer(t)

	for _, path := range []string{"/api/widgets", "/api/options/widgets", "/api/sectionsOptions/1"} {
		rec := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

// =============================================================================
// Views
// =============================================================================

func TestViewsIndex(t *testing.T) {
	h, _ := setupTestServer(t)

	rec := do(t, h, http.MethodGet, "/views", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var views []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	assert.Len(t, views, len(blog.Views()))
	assert.Equal(t, "users", views[0]["path"])
}

func TestViewsShow_UserChange(t *testing.T) {
	h, _ := setupTestServer(t, reply{contains: "user(id:", body: `{"data": {"user": {
		"id": "VXNlcjox", "originalId": 1, "username": "admin", "email": "admin@example.com"
	}}}`})
	cookies := login(t, h)

	rec := do(t, h, http.MethodGet, "/views/users/VXNlcjox", "", cookies...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, map[string]any{"id": "VXNlcjox"}, body["params"])

	view := body["view"].(map[string]any)
	fieldsets := view["fieldsets"].([]any)
	email := fieldsets[1].(map[string]any)["fields"].([]any)[2].(map[string]any)
	assert.Equal(t, "email", email["name"])
	assert.Nil(t, email["readOnly"], "own account keeps email editable")

	password := fieldsets[len(fieldsets)-1].(map[string]any)
	assert.Nil(t, password["hidden"])

	rec = do(t, h, http.MethodGet, "/views/users/VXNlcjox", "")
	require.Equal(t, http.StatusOK, rec.Code)
	fieldsets = decode(t, rec)["view"].(map[string]any)["fieldsets"].([]any)
	email = fieldsets[1].(map[string]any)["fields"].([]any)[2].(map[string]any)
	assert.Equal(t, true, email["readOnly"])
}

func TestViewsShow_AddDefaults(t *testing.T) {
	h, backend := setupTestServer(t)

	rec := do(t, h, http.MethodGet, "/views/users/new", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{"isActive": true}, decode(t, rec)["record"])

	_, _, calls := backend.request()
	assert.Zero(t, calls)
}

func TestViewsShow_Unknown(t *testing.T) {
	h, _ := setupTestServer(t)

	rec := do(t, h, http.MethodGet, "/views/widgets", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Sorry, page not found.", decode(t, rec)["_error"])
}
