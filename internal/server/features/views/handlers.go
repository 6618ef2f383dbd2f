// Package views serves the admin's view definitions, resolved for the
// signed-in user.
package views

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/blogadmin/internal/apierror"
	"github.com/leapstack-labs/blogadmin/internal/connector"
	"github.com/leapstack-labs/blogadmin/internal/server/features/common"
	"github.com/leapstack-labs/blogadmin/internal/view"
)

// Reader loads the record a change view is evaluated against.
// *connector.Connector implements it.
type Reader interface {
	Read(ctx context.Context, s connector.Session, resource, id string) (connector.Record, error)
}

// Handlers provides HTTP handlers for the views feature.
type Handlers struct {
	views        *view.Set
	reader       Reader
	sessionStore sessions.Store
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(views *view.Set, reader Reader, sessionStore sessions.Store, logger *slog.Logger) *Handlers {
	return &Handlers{views: views, reader: reader, sessionStore: sessionStore, logger: logger}
}

// Summary describes one view in the index.
type Summary struct {
	Path     string    `json:"path"`
	Title    string    `json:"title"`
	Kind     view.Kind `json:"kind"`
	Resource string    `json:"resource"`
}

// ShowResponse is a resolved view with the record it was resolved against.
type ShowResponse struct {
	View   view.Resolved     `json:"view"`
	Params map[string]string `json:"params,omitempty"`
	Record connector.Record  `json:"record,omitempty"`
}

// Index lists every view.
func (h *Handlers) Index(w http.ResponseWriter, _ *http.Request) {
	all := h.views.All()
	out := make([]Summary, 0, len(all))
	for _, v := range all {
		out = append(out, Summary{Path: v.Path, Title: v.Title, Kind: v.Kind, Resource: v.Resource})
	}
	common.WriteJSON(w, http.StatusOK, out)
}

// Show resolves the view matching the wildcard path. Change views are
// evaluated against the stored record, add views against their defaults.
func (h *Handlers) Show(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	v, params, ok := h.views.Match(path)
	if !ok {
		common.WriteError(w, h.logger, apierror.NotFound("Sorry, page not found."))
		return
	}

	s := common.Session(h.sessionStore, r)
	s.Params = params

	var record connector.Record
	switch v.Kind {
	case view.KindChange:
		id := params["id"]
		if id == "" {
			break
		}
		rec, err := h.reader.Read(r.Context(), s, v.Resource, id)
		if err != nil {
			common.WriteError(w, h.logger, err)
			return
		}
		record = rec
	case view.KindAdd:
		record = v.ApplyDefaults(nil)
	}

	common.WriteJSON(w, http.StatusOK, ShowResponse{
		View:   v.Resolve(s, record),
		Params: params,
		Record: record,
	})
}
