package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	traceability "github.com/goliatone/go-traceability/components/traceability"
	"github.com/goliatone/go-traceability/components/traceability/commands"
	"github.com/goliatone/go-traceability/pkg/config"
)

// app holds the wired traceability components shared by serve and render.
type app struct {
	service    *traceability.Service
	controller *traceability.Controller
	broadcast  *traceability.BroadcastHook
	telemetry  *traceability.ZapTelemetry
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	telemetry := traceability.NewZapTelemetry(logger)
	registry, err := loadRegistry(ctx, cfg.Layouts.Manifests, telemetry)
	if err != nil {
		return nil, err
	}
	defaultLayout := traceability.LayoutType(cfg.Layouts.Default)
	if !registry.Has(defaultLayout) {
		return nil, fmt.Errorf("tracectl: layouts.default %q is not registered", cfg.Layouts.Default)
	}

	broadcast := traceability.NewBroadcastHook()
	service := traceability.NewService(traceability.Options{
		Layouts:       registry,
		EventHook:     broadcast,
		Telemetry:     telemetry,
		ScanDelay:     cfg.Scan.Delay,
		DemoCode:      cfg.Scan.DemoCode,
		DefaultLayout: defaultLayout,
		SessionTTL:    cfg.Session.TTL,
		MaxSessions:   cfg.Session.Max,
	})
	if err := traceability.ValidateChain(service.Catalog().Chain); err != nil {
		return nil, fmt.Errorf("tracectl: seed supply chain: %w", err)
	}

	renderer, err := traceability.NewTemplateRenderer()
	if err != nil {
		return nil, fmt.Errorf("tracectl: templates: %w", err)
	}
	chartOpts := []traceability.ChartOption{
		traceability.WithChartCache(traceability.NewFragmentCache(cfg.Render.CacheTTL)),
	}
	if cfg.Charts.Theme != "" {
		chartOpts = append(chartOpts, traceability.WithChartTheme(cfg.Charts.Theme))
	}
	if cfg.Charts.AssetsHost != "" {
		chartOpts = append(chartOpts, traceability.WithChartAssetsHost(cfg.Charts.AssetsHost))
	}
	controller := traceability.NewController(traceability.ControllerOptions{
		Service:  service,
		Renderer: renderer,
		Charts:   traceability.NewChartRenderer(chartOpts...),
		BasePath: cfg.Server.BasePath,
		Title:    cfg.Server.Title,
	})
	return &app{
		service:    service,
		controller: controller,
		broadcast:  broadcast,
		telemetry:  telemetry,
	}, nil
}

func loadRegistry(ctx context.Context, manifests []string, telemetry commands.Telemetry) (*traceability.LayoutRegistry, error) {
	registry := traceability.NewLayoutRegistry()
	if len(manifests) == 0 {
		return registry, nil
	}
	seed := commands.NewSeedLayoutsCommand(registry, telemetry)
	if err := seed.Execute(ctx, commands.SeedLayoutsInput{Manifests: manifests}); err != nil {
		return nil, fmt.Errorf("tracectl: layout manifests: %w", err)
	}
	return registry, nil
}
