package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	traceability "github.com/goliatone/go-traceability/components/traceability"
)

type renderCmd struct {
	Code   string `arg:"" optional:"" help:"Product code to scan (defaults to the demo supply chain code)."`
	Format string `enum:"html,json" default:"html" help:"Output format: html page or json view."`
	Locale string `default:"en" help:"Locale used for layout labels."`
	Layout string `help:"Preview this layout instead of the one the view uses (admin codes only)."`
}

func (cmd *renderCmd) Run(ctx context.Context, g *globals) error {
	a, err := newApp(ctx, g.cfg, g.logger)
	if err != nil {
		return err
	}
	defer a.service.Close(ctx)
	return cmd.render(ctx, a, stdout())
}

func (cmd *renderCmd) render(ctx context.Context, a *app, out io.Writer) error {
	code := cmd.Code
	if code == "" {
		code = traceability.DemoTraceabilityCode
	}
	if err := traceability.ValidateCode(code); err != nil {
		return err
	}
	sessionID := a.service.NewSessionID()
	state, err := a.service.Scan(ctx, sessionID, code)
	if err != nil {
		return err
	}
	if cmd.Layout != "" {
		if err := a.service.SelectLayout(ctx, sessionID, traceability.LayoutType(cmd.Layout)); err != nil {
			return fmt.Errorf("tracectl: --layout: %w", err)
		}
	}

	if cmd.Format == "json" {
		payload, err := cmd.view(ctx, a, sessionID, state)
		if err != nil {
			return err
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}
	return a.controller.RenderPage(ctx, sessionID, cmd.Locale, out)
}

// view returns the structure a page is built from: the rendered product for
// detail views, the editor preview for the admin view.
func (cmd *renderCmd) view(ctx context.Context, a *app, sessionID string, state traceability.NavigationState) (any, error) {
	if state.View == traceability.ViewAdmin {
		preview, err := a.service.Preview(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"navigation": state, "preview": preview}, nil
	}
	layout, _ := traceability.LayoutForView(state.View)
	view, err := a.service.View(ctx, layout)
	if err != nil {
		return nil, err
	}
	return map[string]any{"navigation": state, "view": view}, nil
}
