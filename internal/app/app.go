package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"twopane/internal/api"
	"twopane/internal/broadcast"
	"twopane/internal/config"
	"twopane/internal/htmx"
	"twopane/internal/lookup"
	"twopane/internal/middleware"
	"twopane/internal/session"
	"twopane/internal/ws"
	"twopane/web"
)

// App wires the session store, the transports and the HTTP server.
type App struct {
	cfg    *config.Config
	log    *slog.Logger
	store  *session.Store
	server *http.Server
}

// New builds the application from configuration.
func New(cfg *config.Config, logger *slog.Logger) *App {
	hub := broadcast.NewHub()
	client := lookup.NewClient(cfg.Lookup.BaseURL, cfg.Lookup.Timeout, logger)
	store := session.NewStore(client, hub, cfg.Session.TTL, logger)

	mux := http.NewServeMux()
	htmx.NewHandler(store, hub, cfg.Session.CookieName, logger).RegisterRoutes(mux)
	ws.NewHandler(store, hub, logger).RegisterRoutes(mux)
	api.NewHandler(store, logger).RegisterRoutes(mux)
	mux.Handle("GET /static/", http.FileServerFS(web.Static))

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
	)(mux)

	return &App{
		cfg:   cfg,
		log:   logger,
		store: store,
		server: &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves on the configured address until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully
// and drops every session.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)
	a.server.BaseContext = func(net.Listener) context.Context { return gctx }

	g.Go(func() error {
		a.log.Info("server starting", slog.String("addr", ln.Addr().String()))
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(a.cfg.Session.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.store.Sweep()
			case <-gctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		err := a.server.Shutdown(shutdownCtx)
		a.store.Close()
		return err
	})

	return g.Wait()
}
