package traceability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Page templates, one per view plus the admin side-by-side preview.
const (
	TemplateScanner      = "scanner.html"
	TemplateTraceability = "traceability.html"
	TemplateCustomer     = "customer.html"
	TemplateAdmin        = "admin.html"
	TemplatePreview      = "preview.html"
)

var viewTemplates = map[View]string{
	ViewScanner:      TemplateScanner,
	ViewTraceability: TemplateTraceability,
	ViewCustomer:     TemplateCustomer,
	ViewAdmin:        TemplateAdmin,
}

// TemplateFor returns the page template of a view.
func TemplateFor(view View) string {
	if name, ok := viewTemplates[view]; ok {
		return name
	}
	return TemplateScanner
}

// ControllerOptions wires the controller collaborators.
type ControllerOptions struct {
	Service    *Service
	Renderer   Renderer
	Charts     *ChartRenderer
	Theme      *Theme
	Translator TranslationService
	BasePath   string
	Title      string
}

// Controller turns session state into rendered pages.
type Controller struct {
	opts ControllerOptions
}

// NewController applies defaults to the options.
func NewController(opts ControllerOptions) *Controller {
	if opts.Service == nil {
		opts.Service = NewService(Options{})
	}
	if opts.Charts == nil {
		opts.Charts = NewChartRenderer()
	}
	if opts.Theme == nil {
		opts.Theme = DefaultTheme()
	}
	if opts.BasePath == "" {
		opts.BasePath = "/trace"
	}
	opts.BasePath = "/" + strings.Trim(opts.BasePath, "/")
	if opts.Title == "" {
		opts.Title = "Shrimp Traceability"
	}
	return &Controller{opts: opts}
}

// Service returns the underlying service.
func (c *Controller) Service() *Service {
	return c.opts.Service
}

// Page is a template name plus its payload.
type Page struct {
	Template string
	State    NavigationState
	Payload  map[string]any
}

// Page builds the payload for the session's current view.
func (c *Controller) Page(ctx context.Context, sessionID, locale string) (Page, error) {
	svc := c.opts.Service
	session, err := svc.Session(ctx, sessionID)
	if err != nil {
		return Page{}, err
	}
	state := session.Navigator.State()
	payload := c.basePayload(ctx, sessionID, locale, state)
	payload["scanning"] = session.Scanner.Busy()

	switch state.View {
	case ViewTraceability, ViewCustomer:
		layout, _ := LayoutForView(state.View)
		view, err := svc.View(ctx, layout)
		if err != nil {
			return Page{}, err
		}
		if err := c.decorateProduct(ctx, payload, view, locale); err != nil {
			return Page{}, err
		}
	case ViewAdmin:
		if err := c.decorateAdmin(ctx, payload, session, locale); err != nil {
			return Page{}, err
		}
	}
	return Page{Template: TemplateFor(state.View), State: state, Payload: payload}, nil
}

// PreviewPage builds the side-by-side payload of every layout.
func (c *Controller) PreviewPage(ctx context.Context, sessionID, locale string) (Page, error) {
	svc := c.opts.Service
	previews, err := svc.PreviewAll(ctx, sessionID)
	if err != nil {
		return Page{}, err
	}
	state, err := svc.State(ctx, sessionID)
	if err != nil {
		return Page{}, err
	}
	payload := c.basePayload(ctx, sessionID, locale, state)
	for i := range previews {
		previews[i] = c.withImageURL(previews[i])
	}
	payload["previews"] = previews
	payload["layouts"] = c.layoutOptions(locale)
	return Page{Template: TemplatePreview, State: state, Payload: payload}, nil
}

// RenderPage renders the current view into out.
func (c *Controller) RenderPage(ctx context.Context, sessionID, locale string, out io.Writer) error {
	page, err := c.Page(ctx, sessionID, locale)
	if err != nil {
		return err
	}
	return c.render(page, out)
}

// RenderPreview renders the side-by-side preview into out.
func (c *Controller) RenderPreview(ctx context.Context, sessionID, locale string, out io.Writer) error {
	page, err := c.PreviewPage(ctx, sessionID, locale)
	if err != nil {
		return err
	}
	return c.render(page, out)
}

func (c *Controller) render(page Page, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errors.New("traceability: renderer not configured")
	}
	if _, err := c.opts.Renderer.Render(page.Template, page.Payload, out); err != nil {
		return fmt.Errorf("traceability: render %s: %w", page.Template, err)
	}
	return nil
}

func (c *Controller) basePayload(ctx context.Context, sessionID, locale string, state NavigationState) map[string]any {
	theme := c.opts.Theme
	return map[string]any{
		"title":         translateOrFallback(ctx, c.opts.Translator, "traceability.title", locale, c.opts.Title),
		"locale":        locale,
		"session_id":    sessionID,
		"base_path":     c.opts.BasePath,
		"view":          string(state.View),
		"product_code":  state.ProductCode(),
		"demo_codes":    DemoCodes(),
		"scan_delay_ms": c.opts.Service.ScanDelay().Milliseconds(),
		"theme": map[string]any{
			"name":       theme.Name,
			"css_vars":   theme.CSSVariablesInline(),
			"stylesheet": theme.AssetURL("stylesheet"),
		},
	}
}

func (c *Controller) decorateProduct(ctx context.Context, payload map[string]any, view ProductView, locale string) error {
	svc := c.opts.Service
	catalog := svc.Catalog()
	if spec, ok := svc.Layouts().Layout(view.Layout); ok {
		view.LayoutName = spec.NameForLocale(locale)
	}
	payload["product"] = c.withImageURL(view)
	payload["environmental"] = catalog.Environmental
	carbon, err := c.opts.Charts.CarbonChart(
		translateOrFallback(ctx, c.opts.Translator, "traceability.chart.carbon", locale, "Carbon footprint per stage"),
		catalog.Chain,
	)
	if err != nil {
		return fmt.Errorf("traceability: carbon chart: %w", err)
	}
	score, err := c.opts.Charts.ScoreGauge(
		translateOrFallback(ctx, c.opts.Translator, "traceability.chart.score", locale, "Sustainability score"),
		view.Product.SustainabilityScore,
	)
	if err != nil {
		return fmt.Errorf("traceability: score gauge: %w", err)
	}
	payload["charts"] = map[string]any{
		"carbon": carbon,
		"score":  score,
	}
	return nil
}

func (c *Controller) decorateAdmin(ctx context.Context, payload map[string]any, session *Session, locale string) error {
	svc := c.opts.Service
	preview, err := svc.Preview(ctx, session.ID)
	if err != nil {
		return err
	}
	editor := session.Editor
	product := editor.Product()
	payload["editor"] = map[string]any{
		"product":         product,
		"draft":           editor.Draft(),
		"images":          editor.Images(),
		"selected_layout": string(editor.Layout()),
		"image_url":       c.opts.Theme.ImageURL(product.Image),
	}
	payload["layouts"] = c.layoutOptions(locale)
	payload["preview"] = c.withImageURL(preview)
	var verr *ValidationError
	if err := svc.Validate(ctx, session.ID); err != nil {
		if !errors.As(err, &verr) {
			return err
		}
		payload["issues"] = verr.Fields
	}
	return nil
}

func (c *Controller) withImageURL(view ProductView) ProductView {
	view.Product.ImageURL = c.opts.Theme.ImageURL(view.Product.Image)
	return view
}

// LayoutOption is a selectable layout with its localized label.
type LayoutOption struct {
	Code        string
	Name        string
	Description string
}

func (c *Controller) layoutOptions(locale string) []LayoutOption {
	specs := c.opts.Service.Layouts().Layouts()
	out := make([]LayoutOption, 0, len(specs))
	for _, spec := range specs {
		out = append(out, LayoutOption{
			Code:        string(spec.Code),
			Name:        spec.NameForLocale(locale),
			Description: spec.DescriptionForLocale(locale),
		})
	}
	return out
}
