package app

import (
	"context"

	"github.com/vk/buildgridgo/internal/ctxlog"
	"github.com/vk/buildgridgo/internal/trigger"
)

// Serve runs the HTTP trigger adapter until the context is cancelled. The
// pipeline definition is checked once at startup so a broken file fails
// loudly; each triggered run re-reads it.
func (a *App) Serve(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	if _, _, err := a.preparePlans(ctx); err != nil {
		return err
	}

	server := trigger.NewServer(a.logger, a.RunOnce)
	return server.ListenAndServe(ctx, a.config.ListenAddr)
}
