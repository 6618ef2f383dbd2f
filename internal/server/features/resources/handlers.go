// Package resources exposes the connector registry as a JSON CRUD API.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/blogadmin/internal/apierror"
	"github.com/leapstack-labs/blogadmin/internal/connector"
	"github.com/leapstack-labs/blogadmin/internal/pagination"
	"github.com/leapstack-labs/blogadmin/internal/query"
	"github.com/leapstack-labs/blogadmin/internal/server/features/common"
	"github.com/leapstack-labs/blogadmin/internal/view"
)

// Backend runs connector requests. *connector.Connector implements it.
type Backend interface {
	Do(ctx context.Context, s connector.Session, resource string, req connector.Request) (*connector.Result, error)
	Registry() *connector.Registry
}

// Handlers provides HTTP handlers for the resources feature.
type Handlers struct {
	backend      Backend
	views        *view.Set
	sessionStore sessions.Store
	pageSize     int
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance. pageSize is the list page
// size used when a request does not ask for one.
func NewHandlers(backend Backend, views *view.Set, sessionStore sessions.Store, pageSize int, logger *slog.Logger) *Handlers {
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}
	return &Handlers{
		backend:      backend,
		views:        views,
		sessionStore: sessionStore,
		pageSize:     pageSize,
		logger:       logger,
	}
}

// ListResponse is one page of records.
type ListResponse struct {
	Records []connector.Record `json:"records"`
	Next    string             `json:"next,omitempty"`
	HasMore bool               `json:"hasMore"`
}

// RecordResponse wraps a single record.
type RecordResponse struct {
	Record connector.Record `json:"record"`
}

// reserved query parameters; every other one becomes a list filter, except
// names starting with "_" which belong to the client (cache busters).
var reserved = map[string]bool{"first": true, "after": true, "orderBy": true}

// List reads one page of a resource.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	if !h.supported(w, resource, connector.OpList) {
		return
	}

	q := r.URL.Query()
	req := connector.Request{
		Op:      connector.OpList,
		Page:    pagination.Page{First: h.pageSize, After: q.Get("after")},
		OrderBy: q.Get("orderBy"),
	}
	if raw := q.Get("first"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			common.BadRequest(w, h.logger, "first", "must be a positive integer")
			return
		}
		req.Page.First = n
	}
	names := make([]string, 0, len(q))
	for name := range q {
		if reserved[name] || strings.HasPrefix(name, "_") {
			continue
		}
		if !query.ValidName(name) {
			common.BadRequest(w, h.logger, connector.FilterField, (&query.ArgNameError{Name: name}).Error())
			return
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		req.Filters = append(req.Filters, query.Arg{Name: name, Value: q.Get(name)})
	}

	res, err := h.backend.Do(r.Context(), h.session(r), resource, req)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	records := res.Records
	if v, ok := h.views.Get(resource); ok && v.Kind == view.KindList {
		records = v.Load(records)
	}
	if records == nil {
		records = []connector.Record{}
	}
	common.WriteJSON(w, http.StatusOK, ListResponse{Records: records, Next: res.Next, HasMore: res.HasMore()})
}

// Read returns one record.
func (h *Handlers) Read(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	if !h.supported(w, resource, connector.OpRead) {
		return
	}
	res, err := h.backend.Do(r.Context(), h.session(r), resource, connector.Request{
		Op: connector.OpRead,
		ID: chi.URLParam(r, "id"),
	})
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, RecordResponse{Record: res.Record})
}

// Create validates the payload against the add view and submits it.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	if !h.supported(w, resource, connector.OpCreate) {
		return
	}
	data, ok := h.payload(w, r, resource+"/new")
	if !ok {
		return
	}
	res, err := h.backend.Do(r.Context(), h.session(r), resource, connector.Request{Op: connector.OpCreate, Data: data})
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, RecordResponse{Record: res.Record})
}

// Update validates the payload against the change view and submits it.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	if !h.supported(w, resource, connector.OpUpdate) {
		return
	}
	data, ok := h.payload(w, r, resource+"/:id")
	if !ok {
		return
	}
	res, err := h.backend.Do(r.Context(), h.session(r), resource, connector.Request{
		Op:   connector.OpUpdate,
		ID:   chi.URLParam(r, "id"),
		Data: data,
	})
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, RecordResponse{Record: res.Record})
}

// Delete removes one record.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	if !h.supported(w, resource, connector.OpDelete) {
		return
	}
	res, err := h.backend.Do(r.Context(), h.session(r), resource, connector.Request{
		Op: connector.OpDelete,
		ID: chi.URLParam(r, "id"),
	})
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]any{"data": res.Data})
}

// Options returns the choices of an option connector.
func (h *Handlers) Options(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !h.supported(w, name, connector.OpList) {
		return
	}
	res, err := h.backend.Do(r.Context(), h.session(r), name, connector.Request{Op: connector.OpList})
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	opts := res.Options
	if opts == nil {
		opts = []connector.Option{}
	}
	common.WriteJSON(w, http.StatusOK, map[string]any{"options": opts})
}

func (h *Handlers) session(r *http.Request) connector.Session {
	s := common.Session(h.sessionStore, r)
	if id := chi.URLParam(r, "id"); id != "" {
		s.Params = map[string]string{"id": id}
	}
	return s
}

func (h *Handlers) supported(w http.ResponseWriter, resource string, op connector.Operation) bool {
	if h.backend.Registry().Supports(resource, op) {
		return true
	}
	common.WriteError(w, h.logger, apierror.NotFound(fmt.Sprintf("resource %q does not support %s", resource, op)))
	return false
}

// payload decodes the request body, runs the view's rules and strips the
// fields the backend does not accept.
func (h *Handlers) payload(w http.ResponseWriter, r *http.Request, viewPath string) (connector.Record, bool) {
	var data connector.Record
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil || data == nil {
		common.BadRequest(w, h.logger, "body", "must be a JSON object")
		return nil, false
	}
	v, ok := h.views.Get(viewPath)
	if !ok {
		return data, true
	}
	if err := v.Validate(data); err != nil {
		common.WriteError(w, h.logger, err)
		return nil, false
	}
	return v.Save(data), true
}
