package commands

import (
	"context"

	"github.com/leapstack-labs/blogadmin/internal/cli/config"
	"github.com/leapstack-labs/blogadmin/internal/cli/output"
)

type configKey struct{}

type rendererKey struct{}

// WithConfig returns ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// WithRenderer returns ctx carrying r.
func WithRenderer(ctx context.Context, r *output.Renderer) context.Context {
	return context.WithValue(ctx, rendererKey{}, r)
}

// ConfigFromContext returns the config stored by the root command, or the
// current configuration when none is stored.
func ConfigFromContext(ctx context.Context) *config.Config {
	if ctx != nil {
		if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok && cfg != nil {
			return cfg
		}
	}
	return getConfig()
}

// RendererFromContext returns the renderer stored by the root command.
func RendererFromContext(ctx context.Context) (*output.Renderer, bool) {
	if ctx == nil {
		return nil, false
	}
	r, ok := ctx.Value(rendererKey{}).(*output.Renderer)
	return r, ok && r != nil
}
