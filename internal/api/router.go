// Package api exposes the compliance pipeline over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Veraticus/regulaite/internal/common"
	"github.com/Veraticus/regulaite/internal/engine"
	"github.com/Veraticus/regulaite/internal/rules"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Runner runs the compliance pipeline for one transaction text.
type Runner interface {
	Run(ctx context.Context, text string) engine.Result
}

// Options configures the router.
type Options struct {
	Logger      *slog.Logger
	CORSOrigins []string
}

// NewRouter creates the chi router with all routes mounted.
func NewRouter(runner Runner, table *rules.Table, opts Options) http.Handler {
	logger := common.OrDefault(opts.Logger)
	h := &Handlers{runner: runner, rules: table, logger: logger}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(CORS(opts.CORSOrigins))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/transactions/analyze", h.Analyze)
		r.Post("/check", h.Check)
		r.Get("/rules", h.ListRules)
	})

	return r
}
