package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/regulaite/internal/api"
	"github.com/Veraticus/regulaite/internal/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the compliance checker over HTTP.

Endpoints:
  POST /api/transactions/analyze   transaction form used by the web client
  POST /api/check                  raw text check
  GET  /api/rules                  active rule table
  GET  /health                     liveness`,
		RunE: runServe,
	}

	cmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config, 8000)")
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}
	if err := p.settings.ValidateServer(); err != nil {
		return common.NewUserError("invalid server configuration", err)
	}

	router := api.NewRouter(p.engine, p.rules, api.Options{
		Logger:      slog.Default(),
		CORSOrigins: p.settings.Server.CORSOrigins,
	})

	addr := fmt.Sprintf(":%d", p.settings.Server.Port)
	return api.Serve(ctx, addr, router, slog.Default())
}
