package goadmin

import (
	"context"
	"errors"
	"strings"

	traceabilitypkg "github.com/goliatone/go-traceability/pkg/traceability"
)

// MenuBuilder ensures traceability entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures traceability link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires the traceability service + feature flag into an admin shell.
type Config struct {
	EnableTraceability bool
	MenuCode           string
	MenuBuilder        MenuBuilder
	Service            *traceabilitypkg.Service
	BasePath           string
	DefaultMenuItem    MenuItem
	EditorMenuItem     MenuItem
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed traceability menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableTraceability && cfg.Service == nil {
		return nil, errors.New("goadmin: traceability service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "/trace"
	}
	cfg.BasePath = "/" + strings.Trim(cfg.BasePath, "/")
	if cfg.DefaultMenuItem.Label == "" {
		cfg.DefaultMenuItem.Label = "Traceability"
	}
	if cfg.DefaultMenuItem.Route == "" {
		cfg.DefaultMenuItem.Route = cfg.BasePath
	}
	if cfg.DefaultMenuItem.Icon == "" {
		cfg.DefaultMenuItem.Icon = "qr-code"
	}
	if cfg.EditorMenuItem.Label == "" {
		cfg.EditorMenuItem.Label = "Product layouts"
	}
	if cfg.EditorMenuItem.Route == "" {
		cfg.EditorMenuItem.Route = cfg.BasePath + "/admin/preview"
	}
	if cfg.EditorMenuItem.Icon == "" {
		cfg.EditorMenuItem.Icon = "layout"
	}
	if cfg.EditorMenuItem.Position == 0 {
		cfg.EditorMenuItem.Position = cfg.DefaultMenuItem.Position + 1
	}
	return &Admin{cfg: cfg}, nil
}

// Traceability exposes the configured service when enabled.
func (a *Admin) Traceability() *traceabilitypkg.Service {
	if !a.cfg.EnableTraceability {
		return nil
	}
	return a.cfg.Service
}

// MenuItems returns the entries Bootstrap seeds.
func (a *Admin) MenuItems() []MenuItem {
	return []MenuItem{a.cfg.DefaultMenuItem, a.cfg.EditorMenuItem}
}

// Bootstrap seeds menu entries when traceability support is enabled.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableTraceability || a.cfg.MenuBuilder == nil {
		return nil
	}
	var err error
	for _, item := range a.MenuItems() {
		err = errors.Join(err, a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item))
	}
	return err
}
