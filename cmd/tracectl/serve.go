package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-traceability/components/traceability/gorouter"
	"github.com/goliatone/go-traceability/components/traceability/httpapi"
	"github.com/goliatone/go-traceability/pkg/config"
)

const shutdownTimeout = 5 * time.Second

type serveCmd struct {
	Address   string `help:"Listen address (overrides server.address)."`
	Transport string `help:"HTTP stack: fiber (go-router) or http (net/http + gorilla/mux)."`
}

func (cmd *serveCmd) Run(ctx context.Context, g *globals) error {
	cfg := *g.cfg
	if cmd.Address != "" {
		cfg.Server.Address = cmd.Address
	}
	if cmd.Transport != "" {
		cfg.Server.Transport = cmd.Transport
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, &cfg, g.logger)
	if err != nil {
		return err
	}
	handlers := httpapi.NewHandlers(a.service, a.controller, a.broadcast, a.telemetry)

	log := g.logger.With(
		zap.String("address", cfg.Server.Address),
		zap.String("transport", cfg.Server.Transport),
		zap.String("base_path", cfg.Server.BasePath),
	)

	var serve func() error
	var shutdown func(context.Context) error
	switch cfg.Server.Transport {
	case config.TransportHTTP:
		serve, shutdown = httpServer(&cfg, handlers)
	default:
		serve, shutdown, err = fiberServer(&cfg, a, handlers)
		if err != nil {
			return err
		}
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("traceability server listening")
		if err := serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("tracectl: serve: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(shutdown(shutdownCtx), a.service.Close(shutdownCtx))
	})
	return group.Wait()
}

func httpServer(cfg *config.Config, handlers *httpapi.Handlers) (func() error, func(context.Context) error) {
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           httpapi.NewRouter(handlers, cfg.Server.BasePath),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server.ListenAndServe, server.Shutdown
}

func fiberServer(cfg *config.Config, a *app, handlers *httpapi.Handlers) (func() error, func(context.Context) error, error) {
	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: a.controller,
		API:        handlers,
		Broadcast:  a.broadcast,
		BasePath:   cfg.Server.BasePath,
	}); err != nil {
		return nil, nil, fmt.Errorf("tracectl: register routes: %w", err)
	}
	serve := func() error { return server.Serve(cfg.Server.Address) }
	return serve, server.Shutdown, nil
}
