package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpadapter "github.com/aretw0/progressforms/pkg/adapters/http"
	mcpadapter "github.com/aretw0/progressforms/pkg/adapters/mcp"
	"github.com/aretw0/progressforms/pkg/domain"
	"github.com/aretw0/progressforms/pkg/observability"
)

// ShutdownTimeout bounds graceful shutdown of the servers.
const ShutdownTimeout = 5 * time.Second

// ServeOptions configures the HTTP server.
type ServeOptions struct {
	// Port overrides the configured port when positive.
	Port int
	// Watch reloads the definition when it changes on disk.
	Watch bool
}

// NewHTTPServer wires the HTTP adapter to the configured store, metrics and catalog.
func (e *Env) NewHTTPServer(def *Definition) (*httpadapter.Server, error) {
	mgr, err := e.SessionManager()
	if err != nil {
		return nil, err
	}
	navOpts, err := e.NavigatorOptions()
	if err != nil {
		return nil, err
	}

	opts := []httpadapter.Option{
		httpadapter.WithLogger(e.Logger),
		httpadapter.WithNavigatorOptions(navOpts...),
		httpadapter.WithCatalog(e.Catalog),
	}
	if e.Config.HTTP.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return nil, err
		}
		if err := metrics.RegisterActiveSessions(func() float64 { return float64(mgr.Active()) }); err != nil {
			return nil, err
		}
		opts = append(opts, httpadapter.WithMetrics(metrics, reg))
	}
	return httpadapter.NewServer(def.Form, mgr, opts...)
}

// Serve runs the HTTP API until ctx is done.
func (e *Env) Serve(ctx context.Context, def *Definition, opts ServeOptions) error {
	srv, err := e.NewHTTPServer(def)
	if err != nil {
		return err
	}

	if opts.Watch {
		if err := e.watch(ctx, def, srv.SetForm); err != nil {
			return err
		}
	}

	port := e.Config.HTTP.Port
	if opts.Port > 0 {
		port = opts.Port
	}
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		e.Logger.Info("HTTP server listening", "address", httpServer.Addr, "definition", def.Path)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		e.Logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			e.Logger.Warn("graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			return httpServer.Close()
		}
		return nil
	}
}

// watch reloads the definition on every change signal and hands the new form
// to apply. Invalid revisions are logged and the previous form stays in use.
func (e *Env) watch(ctx context.Context, def *Definition, apply func(*domain.Form) error) error {
	ch, ok, err := def.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", def.Path, err)
	}
	if !ok {
		e.Logger.Warn("definition cannot be watched", "path", def.Path)
		return nil
	}
	loader := def.Loader
	go func() {
		for range ch {
			form, err := loader.LoadForm(ctx)
			if err != nil {
				e.Logger.Error("reload failed", "path", def.Path, "err", err)
				continue
			}
			if err := apply(form); err != nil {
				e.Logger.Error("reloaded definition rejected", "path", def.Path, "err", err)
				continue
			}
			e.Logger.Info("definition reloaded", "path", def.Path, "panels", len(form.Panels))
		}
	}()
	return nil
}

// MCPOptions configures the MCP server.
type MCPOptions struct {
	// SSE serves over HTTP on Port instead of stdio.
	SSE  bool
	Port int
}

// ServeMCP exposes def as MCP tools until ctx is done or stdin closes.
func (e *Env) ServeMCP(ctx context.Context, def *Definition, opts MCPOptions) error {
	mgr, err := e.SessionManager()
	if err != nil {
		return err
	}
	navOpts, err := e.NavigatorOptions()
	if err != nil {
		return err
	}
	srv, err := mcpadapter.NewServer(def.Form, mgr,
		mcpadapter.WithLogger(e.Logger),
		mcpadapter.WithNavigatorOptions(navOpts...),
		mcpadapter.WithLocalizer(e.Localizer()),
		mcpadapter.WithMaxInputSize(e.Config.Input.MaxSize),
	)
	if err != nil {
		return err
	}
	if opts.SSE {
		port := opts.Port
		if port <= 0 {
			port = e.Config.HTTP.Port
		}
		return srv.ServeSSE(ctx, port)
	}
	return srv.ServeStdio()
}
