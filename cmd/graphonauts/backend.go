package main

import (
	"context"
	"time"

	"github.com/obonovai/graphonauts/internal/graph"
)

const closeTimeout = 10 * time.Second

// newAdapter builds the adapter of a backend. Tests substitute an in-memory adapter.
var newAdapter = graph.New

// connect creates and connects the adapter of the configured backend.
func (a *app) connect(ctx context.Context) (graph.Adapter, error) {
	backend, err := a.cfg.SelectedBackend()
	if err != nil {
		return nil, err
	}
	adapter, err := newAdapter(backend, a.cfg.Settings(), a.logger)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("connecting", "backend", backend)
	if err := adapter.Connect(ctx); err != nil {
		a.close(ctx, adapter)
		return nil, err
	}
	return adapter, nil
}

// withAdapter runs fn against a connected adapter and closes the session on every
// exit path, including cancellation.
func (a *app) withAdapter(ctx context.Context, fn func(adapter graph.Adapter) error) error {
	adapter, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx, adapter)
	return fn(adapter)
}

func (a *app) close(ctx context.Context, adapter graph.Adapter) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	if err := adapter.Close(ctx); err != nil {
		a.logger.Warn("failed to close session", "backend", adapter.Backend(), "error", err)
	}
}
