package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-traceability/pkg/config"
)

type cli struct {
	Config   string      `type:"path" short:"c" help:"Path to a tracectl.yaml file (defaults to ./tracectl.yaml when present)."`
	LogLevel string      `name:"log-level" help:"Override log.level (debug, info, warn, error)."`
	Serve    serveCmd    `cmd:"" help:"Run the traceability web app."`
	Render   renderCmd   `cmd:"" help:"Render the page a product code opens and print it."`
	Layouts  layoutsCmd  `cmd:"" help:"List registered layouts, including manifest layouts."`
	Scaffold scaffoldCmd `cmd:"" help:"Add a layout entry to a layout manifest."`
}

// globals is bound into every command's Run.
type globals struct {
	cfg    *config.Config
	logger *zap.Logger
	level  zap.AtomicLevel
}

func main() {
	var root cli
	ctx := kong.Parse(&root,
		kong.Name("tracectl"),
		kong.Description("Shrimp product traceability demo server and layout tooling."),
		kong.UsageOnError(),
	)
	g, err := root.globals()
	ctx.FatalIfErrorf(err)
	defer func() { _ = g.logger.Sync() }()

	runCtx := context.Background()
	ctx.BindTo(runCtx, (*context.Context)(nil))
	ctx.Bind(g)
	ctx.FatalIfErrorf(ctx.Run())
}

func (c *cli) globals() (*globals, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	logger, level, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	return &globals{cfg: cfg, logger: logger, level: level}, nil
}

// newLogger builds the process logger. The returned level can be changed at runtime.
func newLogger(cfg config.LogConfig) (*zap.Logger, zap.AtomicLevel, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, level, fmt.Errorf("tracectl: log level: %w", err)
		}
		level.SetLevel(parsed)
	}
	zcfg.Level = level
	zcfg.OutputPaths = []string{"stderr"}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, level, fmt.Errorf("tracectl: build logger: %w", err)
	}
	return logger.Named("tracectl"), level, nil
}

func stdout() *os.File {
	return os.Stdout
}
