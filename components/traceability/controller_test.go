package traceability

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	template string
	payload  map[string]any
	err      error
}

func (s *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	s.template = name
	s.payload, _ = data.(map[string]any)
	if s.err != nil {
		return "", s.err
	}
	html := "<html>" + name + "</html>"
	for _, w := range out {
		_, _ = io.WriteString(w, html)
	}
	return html, nil
}

func newTestController(t *testing.T, renderer Renderer) *Controller {
	t.Helper()
	svc := newTestService(t, Options{})
	return NewController(ControllerOptions{Service: svc, Renderer: renderer})
}

func TestTemplateFor(t *testing.T) {
	assert.Equal(t, TemplateScanner, TemplateFor(ViewScanner))
	assert.Equal(t, TemplateCustomer, TemplateFor(ViewCustomer))
	assert.Equal(t, TemplateAdmin, TemplateFor(ViewAdmin))
	assert.Equal(t, TemplateScanner, TemplateFor("bogus"))
}

func TestControllerScannerPage(t *testing.T) {
	controller := newTestController(t, &stubRenderer{})
	page, err := controller.Page(context.Background(), "tab-1", "en")
	require.NoError(t, err)

	assert.Equal(t, TemplateScanner, page.Template)
	assert.Equal(t, "scanner", page.Payload["view"])
	assert.Equal(t, "/trace", page.Payload["base_path"])
	assert.Equal(t, int64(2000), page.Payload["scan_delay_ms"])
	assert.Equal(t, false, page.Payload["scanning"])
	assert.Len(t, page.Payload["demo_codes"], 3)
	theme := page.Payload["theme"].(map[string]any)
	assert.Equal(t, "/assets/css/traceability.css", theme["stylesheet"])
	assert.Contains(t, theme["css_vars"], "--ocean:")
}

func TestControllerDetailPages(t *testing.T) {
	controller := newTestController(t, &stubRenderer{})
	ctx := context.Background()
	svc := controller.Service()

	_, err := svc.Scan(ctx, "tab-1", DemoTraceabilityCode)
	require.NoError(t, err)
	page, err := controller.Page(ctx, "tab-1", "es")
	require.NoError(t, err)
	assert.Equal(t, TemplateTraceability, page.Template)
	view := page.Payload["product"].(ProductView)
	assert.Equal(t, LayoutComprehensive, view.Layout)
	assert.Equal(t, "Diseño completo", view.LayoutName)
	assert.Equal(t, "/assets/images/shrimp-1.jpg", view.Product.ImageURL)
	charts := page.Payload["charts"].(map[string]any)
	assert.NotEmpty(t, charts["carbon"])
	assert.NotEmpty(t, charts["score"])
	assert.Len(t, page.Payload["environmental"], 4)

	_, err = svc.Scan(ctx, "tab-1", DemoCustomerCode)
	require.NoError(t, err)
	page, err = controller.Page(ctx, "tab-1", "en")
	require.NoError(t, err)
	assert.Equal(t, TemplateCustomer, page.Template)
	assert.Equal(t, LayoutConsumer, page.Payload["product"].(ProductView).Layout)
	assert.Equal(t, DemoCustomerCode, page.Payload["product_code"])
}

func TestControllerAdminPage(t *testing.T) {
	controller := newTestController(t, &stubRenderer{})
	ctx := context.Background()
	svc := controller.Service()

	_, err := svc.Scan(ctx, "tab-1", DemoAdminCode)
	require.NoError(t, err)
	require.NoError(t, svc.SetField(ctx, "tab-1", FieldName, ""))

	page, err := controller.Page(ctx, "tab-1", "")
	require.NoError(t, err)
	assert.Equal(t, TemplateAdmin, page.Template)
	editor := page.Payload["editor"].(map[string]any)
	assert.Equal(t, "comprehensive", editor["selected_layout"])
	assert.Equal(t, "/assets/images/shrimp-1.jpg", editor["image_url"])
	layouts := page.Payload["layouts"].([]LayoutOption)
	require.Len(t, layouts, 3)
	assert.Equal(t, "executive", layouts[1].Code)
	issues := page.Payload["issues"].([]FieldError)
	require.NotEmpty(t, issues)
	assert.Equal(t, "name", issues[0].Field)
	preview := page.Payload["preview"].(ProductView)
	assert.Equal(t, "", preview.Product.Name)
}

func TestControllerPreviewPage(t *testing.T) {
	controller := newTestController(t, &stubRenderer{})
	ctx := context.Background()

	_, err := controller.PreviewPage(ctx, "tab-1", "en")
	assert.True(t, errors.Is(err, ErrNotAdmin))

	_, err = controller.Service().Scan(ctx, "tab-1", DemoAdminCode)
	require.NoError(t, err)
	page, err := controller.PreviewPage(ctx, "tab-1", "en")
	require.NoError(t, err)
	assert.Equal(t, TemplatePreview, page.Template)
	previews := page.Payload["previews"].([]ProductView)
	require.Len(t, previews, 3)
	for _, preview := range previews {
		assert.NotEmpty(t, preview.Product.ImageURL)
	}
}

func TestControllerRenderPage(t *testing.T) {
	renderer := &stubRenderer{}
	controller := newTestController(t, renderer)
	var buf bytes.Buffer
	require.NoError(t, controller.RenderPage(context.Background(), "tab-1", "en", &buf))
	assert.Equal(t, "<html>scanner.html</html>", buf.String())
	assert.Equal(t, TemplateScanner, renderer.template)

	renderer.err = errors.New("template broken")
	err := controller.RenderPage(context.Background(), "tab-1", "en", &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scanner.html")

	bare := newTestController(t, nil)
	assert.Error(t, bare.RenderPage(context.Background(), "tab-1", "en", &buf))
}

func TestControllerTitleTranslation(t *testing.T) {
	svc := newTestService(t, Options{})
	controller := NewController(ControllerOptions{
		Service:    svc,
		Renderer:   &stubRenderer{},
		Translator: stubTranslator{values: map[string]string{"es:traceability.title": "Trazabilidad"}},
		BasePath:   "trace/",
	})
	page, err := controller.Page(context.Background(), "tab-1", "es")
	require.NoError(t, err)
	assert.Equal(t, "Trazabilidad", page.Payload["title"])
	assert.Equal(t, "/trace", page.Payload["base_path"])
}

func TestEmbeddedTemplatesRender(t *testing.T) {
	// templates come from the embedded FS, not the working directory
	t.Chdir(t.TempDir())
	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)
	controller := newTestController(t, renderer)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, controller.RenderPage(ctx, "tab-1", "en", &buf))
	html := buf.String()
	assert.Contains(t, html, DemoCustomerCode)
	assert.Contains(t, html, "Start Scanning")

	_, err = controller.Service().Scan(ctx, "tab-1", DemoTraceabilityCode)
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, controller.RenderPage(ctx, "tab-1", "en", &buf))
	html = buf.String()
	assert.Contains(t, html, "Premium White Shrimp")
	assert.Contains(t, html, "Aquaculture Stewardship Council")
	assert.True(t, strings.Contains(html, "chain-timeline"))
}
