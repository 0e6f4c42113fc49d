package gorouter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	traceability "github.com/goliatone/go-traceability/components/traceability"
	"github.com/goliatone/go-traceability/components/traceability/httpapi"
	"github.com/goliatone/go-traceability/components/traceability/queries"
)

func TestRegisterValidatesConfig(t *testing.T) {
	if err := Register(Config[struct{}]{}); err == nil {
		t.Fatalf("expected error when router/controller missing")
	}
}

func TestDefaultRouteConfigKeepsOverrides(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{Scan: "/qr", WebSocket: "/stream"})
	if routes.Scan != "/qr" {
		t.Fatalf("expected scan override, got %s", routes.Scan)
	}
	if routes.WebSocket != "/stream" {
		t.Fatalf("expected websocket override, got %s", routes.WebSocket)
	}
	if routes.Back != "/back" || routes.CertificationIndex != "/admin/certifications/:index" {
		t.Fatalf("expected defaults to be filled, got %+v", routes)
	}
	if routes.HTML != "" {
		t.Fatalf("page route should mount on the group root, got %q", routes.HTML)
	}
	if routes.Assets != traceability.DefaultAssetsPath {
		t.Fatalf("expected default assets path, got %s", routes.Assets)
	}
}

type templateNameRenderer struct{}

func (templateNameRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	if len(out) > 0 && out[0] != nil {
		out[0].Write([]byte("<html>" + name + "</html>"))
	}
	return "<html>" + name + "</html>", nil
}

func newFiberApp(t *testing.T) (*fiber.App, *traceability.Service) {
	t.Helper()
	svc := traceability.NewService(traceability.Options{ScanDelay: 50 * time.Millisecond})
	t.Cleanup(func() { svc.Close(context.Background()) })
	controller := traceability.NewController(traceability.ControllerOptions{Service: svc, Renderer: templateNameRenderer{}})

	server := router.NewFiberAdapter()
	err := Register(Config[*fiber.App]{
		Router:       server.Router(),
		Controller:   controller,
		API:          httpapi.NewHandlers(svc, controller, nil, nil),
		NewSessionID: func() string { return "issued" },
	})
	require.NoError(t, err)
	return server.WrappedRouter(), svc
}

func call(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, payload
}

func decodeState(t *testing.T, payload []byte) queries.StateResult {
	t.Helper()
	var state queries.StateResult
	require.NoError(t, json.Unmarshal(payload, &state), string(payload))
	return state
}

func TestPageRedirectsWithoutSession(t *testing.T) {
	app, _ := newFiberApp(t)

	resp, _ := call(t, app, http.MethodGet, "/trace?locale=es", "")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	location := resp.Header.Get("Location")
	assert.True(t, strings.HasPrefix(location, "/trace?"), location)
	assert.Contains(t, location, "session=issued")
	assert.Contains(t, location, "locale=es")

	resp, _ = call(t, app, http.MethodGet, "/trace/admin/preview", "")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/trace/admin/preview?session=issued")
}

func TestPageReloadKeepsSessionView(t *testing.T) {
	app, _ := newFiberApp(t)

	resp, body := call(t, app, http.MethodGet, "/trace?session=tab", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), traceability.TemplateScanner)

	resp, body = call(t, app, http.MethodPost, "/trace/scan?session=tab", `{"code":"`+traceability.DemoCustomerCode+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, traceability.ViewCustomer, decodeState(t, body).State.View)

	_, body = call(t, app, http.MethodGet, "/trace?session=tab", "")
	assert.Contains(t, string(body), traceability.TemplateCustomer)

	resp, body = call(t, app, http.MethodPost, "/trace/back?session=tab", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, traceability.ViewScanner, decodeState(t, body).State.View)
}

func TestScanIssuesSessionHeader(t *testing.T) {
	app, svc := newFiberApp(t)

	resp, body := call(t, app, http.MethodPost, "/trace/scan", `{"code":"`+traceability.DemoTraceabilityCode+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "issued", resp.Header.Get(httpapi.SessionHeader))

	state, err := svc.State(context.Background(), "issued")
	require.NoError(t, err)
	assert.Equal(t, traceability.ViewTraceability, state.View)
}

func TestSimulateRouteAccepts(t *testing.T) {
	app, svc := newFiberApp(t)

	resp, body := call(t, app, http.MethodPost, "/trace/scan/simulate?session=tab", "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode, string(body))
	assert.True(t, decodeState(t, body).Scanning)

	assert.Eventually(t, func() bool {
		state, err := svc.State(context.Background(), "tab")
		return err == nil && state.View == traceability.ViewTraceability
	}, time.Second, 10*time.Millisecond)
}

func TestEditorRoutesRequireAdminView(t *testing.T) {
	app, _ := newFiberApp(t)

	resp, body := call(t, app, http.MethodPost, "/trace/admin/field?session=tab", `{"field":"name","value":"Tiger Prawn"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(body))

	resp, _ = call(t, app, http.MethodPost, "/trace/admin/reset?session=tab", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestEditorRoutesUpdateWorkingCopy(t *testing.T) {
	app, _ := newFiberApp(t)

	resp, body := call(t, app, http.MethodPost, "/trace/scan?session=tab", `{"code":"`+traceability.DemoAdminCode+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.Equal(t, traceability.ViewAdmin, decodeState(t, body).State.View)

	var snapshot queries.EditorSnapshot
	resp, body = call(t, app, http.MethodPost, "/trace/admin/field?session=tab", `{"field":"`+traceability.FieldName+`","value":"Tiger Prawn"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &snapshot))
	assert.Equal(t, "Tiger Prawn", snapshot.Product.Name)
	certs := len(snapshot.Product.Certifications)

	resp, body = call(t, app, http.MethodPost, "/trace/admin/certifications?session=tab", `{"name":"BAP","issuer":"GSA","date":"2024-05-01"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &snapshot))
	require.Len(t, snapshot.Product.Certifications, certs+1)

	resp, body = call(t, app, http.MethodGet, "/trace/certifications/0?session=tab", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var cert traceability.Certification
	require.NoError(t, json.Unmarshal(body, &cert))
	assert.Equal(t, snapshot.Product.Certifications[0].Name, cert.Name)

	resp, _ = call(t, app, http.MethodGet, "/trace/certifications/99?session=tab", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/trace/certifications/first?session=tab", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = call(t, app, http.MethodDelete, "/trace/admin/certifications/0?session=tab", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &snapshot))
	assert.Len(t, snapshot.Product.Certifications, certs)

	resp, body = call(t, app, http.MethodGet, "/trace/admin/preview.json?session=tab&all=true", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var preview queries.PreviewResult
	require.NoError(t, json.Unmarshal(body, &preview))
	assert.Len(t, preview.All, 3)

	resp, body = call(t, app, http.MethodGet, "/trace/admin/preview?session=tab", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), traceability.TemplatePreview)
}

func TestEndSessionRoute(t *testing.T) {
	app, svc := newFiberApp(t)

	_, body := call(t, app, http.MethodPost, "/trace/scan?session=tab", `{"code":"`+traceability.DemoCustomerCode+`"}`)
	require.Equal(t, traceability.ViewCustomer, decodeState(t, body).State.View, string(body))

	resp, _ := call(t, app, http.MethodDelete, "/trace/session?session=tab", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	state, err := svc.State(context.Background(), "tab")
	require.NoError(t, err)
	assert.Equal(t, traceability.ViewScanner, state.View)

	resp, _ = call(t, app, http.MethodDelete, "/trace/session", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
