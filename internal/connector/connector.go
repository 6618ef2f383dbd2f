package connector

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/leapstack-labs/blogadmin/internal/graphql"
	"github.com/leapstack-labs/blogadmin/internal/pagination"
)

// Executor sends one GraphQL request. *graphql.Client implements it.
type Executor interface {
	Do(ctx context.Context, req graphql.Request, header http.Header) (*graphql.Envelope, error)
}

// Connector runs CRUD requests against the backend: one outbound call per
// request, no retries, no caching.
type Connector struct {
	registry *Registry
	exec     Executor
	logger   *slog.Logger
}

// New creates a Connector. A nil logger discards.
func New(registry *Registry, exec Executor, logger *slog.Logger) *Connector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Connector{registry: registry, exec: exec, logger: logger}
}

// Registry returns the registry the connector dispatches on.
func (c *Connector) Registry() *Registry { return c.registry }

// Do executes req on resource.
func (c *Connector) Do(ctx context.Context, s Session, resource string, req Request) (*Result, error) {
	h, err := c.registry.Lookup(resource, req.Op)
	if err != nil {
		return nil, err
	}

	gqlReq, err := c.build(s, h, req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Op, resource, err)
	}

	env, err := c.exec.Do(ctx, gqlReq, s.Header())
	if err != nil {
		c.logger.Debug("connector call failed", "resource", resource, "op", req.Op.String(), "error", err)
		return nil, err
	}
	if err := env.Err(); err != nil {
		return nil, err
	}

	res, err := h.Response(s, env)
	if err != nil {
		c.logger.Debug("response transform rejected envelope", "resource", resource, "op", req.Op.String(), "error", err)
		return nil, err
	}
	return res, nil
}

func (c *Connector) build(s Session, h Handler, req Request) (graphql.Request, error) {
	doc, err := h.Query(req)
	if err != nil {
		return graphql.Request{}, err
	}
	out := graphql.Request{Query: doc}

	switch req.Op {
	case OpCreate, OpUpdate, OpDelete:
		data := req.Data.Clone()
		if data == nil {
			data = Record{}
		}
		if req.ID != "" && req.Op != OpCreate {
			data["id"] = req.ID
		}
		if (req.Op == OpUpdate || req.Op == OpDelete) && data.ID() == "" {
			return graphql.Request{}, fmt.Errorf("%s requires an id", req.Op)
		}
		if h.Request != nil {
			data = h.Request(s, data)
		}
		out.Variables = map[string]any{"input": map[string]any(data)}
	}
	return out, nil
}

// List reads one page of resource.
func (c *Connector) List(ctx context.Context, s Session, resource string, page pagination.Page) (*Result, error) {
	return c.Do(ctx, s, resource, Request{Op: OpList, Page: page})
}

// ListAll follows cursors from req.Page.After until the last page or limit
// records. Filters and ordering of req apply to every page.
func (c *Connector) ListAll(ctx context.Context, s Session, resource string, req Request, limit int) ([]Record, error) {
	req.Op = OpList
	start := req.Page.After
	fetch := func(ctx context.Context, after string) ([]Record, string, error) {
		page := req
		page.Page.After = after
		if after == "" {
			page.Page.After = start
		}
		res, err := c.Do(ctx, s, resource, page)
		if err != nil {
			return nil, "", err
		}
		return res.Records, res.Next, nil
	}
	return pagination.Collect(ctx, fetch, limit)
}

// Read fetches one entity by id.
func (c *Connector) Read(ctx context.Context, s Session, resource, id string) (Record, error) {
	res, err := c.Do(ctx, s, resource, Request{Op: OpRead, ID: id})
	if err != nil {
		return nil, err
	}
	return res.Record, nil
}

// Create submits a new entity and returns it as stored.
func (c *Connector) Create(ctx context.Context, s Session, resource string, data Record) (Record, error) {
	res, err := c.Do(ctx, s, resource, Request{Op: OpCreate, Data: data})
	if err != nil {
		return nil, err
	}
	return res.Record, nil
}

// Update changes the entity id.
func (c *Connector) Update(ctx context.Context, s Session, resource, id string, data Record) (Record, error) {
	res, err := c.Do(ctx, s, resource, Request{Op: OpUpdate, ID: id, Data: data})
	if err != nil {
		return nil, err
	}
	return res.Record, nil
}

// Delete removes the entity id and returns the backend acknowledgement.
func (c *Connector) Delete(ctx context.Context, s Session, resource, id string) (map[string]any, error) {
	res, err := c.Do(ctx, s, resource, Request{Op: OpDelete, ID: id})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// Options reads the choices offered by an option connector.
func (c *Connector) Options(ctx context.Context, s Session, name string) ([]Option, error) {
	res, err := c.Do(ctx, s, name, Request{Op: OpList})
	if err != nil {
		return nil, err
	}
	return res.Options, nil
}
