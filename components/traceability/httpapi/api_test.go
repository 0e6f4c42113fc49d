package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	traceability "github.com/goliatone/go-traceability/components/traceability"
	"github.com/goliatone/go-traceability/components/traceability/commands"
	"github.com/goliatone/go-traceability/components/traceability/queries"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

type stubRenderer struct {
	lastTemplate string
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.lastTemplate = name
	if len(out) > 0 && out[0] != nil {
		out[0].Write([]byte("<html>" + name + "</html>"))
	}
	return "<html></html>", nil
}

func newTestHandlers(t *testing.T) (*Handlers, *stubRenderer) {
	t.Helper()
	svc := traceability.NewService(traceability.Options{})
	t.Cleanup(func() { svc.Close(context.Background()) })
	renderer := &stubRenderer{}
	controller := traceability.NewController(traceability.ControllerOptions{Service: svc, Renderer: renderer})
	return NewHandlers(svc, controller, traceability.NewBroadcastHook(), nil), renderer
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleScanUsesStubCommander(t *testing.T) {
	scan := &stubCommander[commands.ScanInput]{}
	api := &Handlers{Scan: scan}
	req := httptest.NewRequest(http.MethodPost, "/trace/scan?session=s1", strings.NewReader(`{"code":"SHRIMP-ECU-2024-001"}`))
	rec := httptest.NewRecorder()
	api.HandleScan(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if scan.calls != 1 || scan.last.SessionID != "s1" || scan.last.Code != "SHRIMP-ECU-2024-001" {
		t.Fatalf("unexpected scan input %+v", scan.last)
	}
}

func TestHandleScanRejectsMalformedBody(t *testing.T) {
	scan := &stubCommander[commands.ScanInput]{}
	api := &Handlers{Scan: scan}
	req := httptest.NewRequest(http.MethodPost, "/trace/scan?session=s1", strings.NewReader(`{"code":`))
	rec := httptest.NewRecorder()
	api.HandleScan(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if scan.calls != 0 {
		t.Fatalf("commander should not run")
	}
}

func TestHandleRemoveCertificationParsesIndex(t *testing.T) {
	remove := &stubCommander[commands.RemoveCertificationInput]{err: traceability.ErrNotAdmin}
	api := &Handlers{RemoveCertification: remove}
	rec := httptest.NewRecorder()
	api.HandleRemoveCertification(rec, httptest.NewRequest(http.MethodDelete, "/x?session=s1", nil), "abc")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non numeric index, got %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	api.HandleRemoveCertification(rec, httptest.NewRequest(http.MethodDelete, "/x?session=s1", nil), "2")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 outside admin view, got %d", rec.Code)
	}
	if remove.last.Index != 2 {
		t.Fatalf("expected index propagation, got %d", remove.last.Index)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{traceability.ErrUnknownLayout, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", traceability.ErrUnknownField), http.StatusBadRequest},
		{traceability.ErrUnknownImage, http.StatusBadRequest},
		{traceability.ErrScanInvalidFormat, http.StatusBadRequest},
		{&traceability.ValidationError{}, http.StatusBadRequest},
		{traceability.ErrNotAdmin, http.StatusConflict},
		{&traceability.IndexOutOfRangeError{Index: 9, Len: 4}, http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), "error %v", tc.err)
	}
}

func TestParseAcceptLanguage(t *testing.T) {
	assert.Equal(t, "es-mx", ParseAcceptLanguage("es-MX;q=0.9, en;q=0.8"))
	assert.Equal(t, "", ParseAcceptLanguage(""))
}

func TestPageRedirectsWithoutSession(t *testing.T) {
	api, _ := newTestHandlers(t)
	router := NewRouter(api, "/trace")
	rec := do(t, router, http.MethodGet, "/trace", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "session=")
}

func TestScannerToAdminFlow(t *testing.T) {
	api, renderer := newTestHandlers(t)
	router := NewRouter(api, "/trace")

	rec := do(t, router, http.MethodGet, "/trace?session=tab1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, traceability.TemplateScanner, renderer.lastTemplate)

	rec = do(t, router, http.MethodPost, "/trace/scan?session=tab1", map[string]string{"code": traceability.DemoAdminCode})
	require.Equal(t, http.StatusOK, rec.Code)
	var state queries.StateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, traceability.ViewAdmin, state.State.View)
	require.NotNil(t, state.State.ProductID)
	assert.Equal(t, traceability.DemoAdminCode, *state.State.ProductID)

	rec = do(t, router, http.MethodPost, "/trace/admin/field?session=tab1", map[string]string{"field": "sustainabilityScore", "value": "abc"})
	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot queries.EditorSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, 0, snapshot.Product.SustainabilityScore)

	rec = do(t, router, http.MethodPost, "/trace/admin/certifications?session=tab1", map[string]string{"name": "MSC", "issuer": ""})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Len(t, snapshot.Product.Certifications, 4, "draft without issuer must not be added")

	rec = do(t, router, http.MethodPost, "/trace/admin/certifications?session=tab1", map[string]string{"name": "MSC", "issuer": "Marine Stewardship Council"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Len(t, snapshot.Product.Certifications, 5)
	assert.Equal(t, traceability.CertificationDraft{}, snapshot.Draft)

	rec = do(t, router, http.MethodDelete, "/trace/admin/certifications/0?session=tab1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Len(t, snapshot.Product.Certifications, 4)

	rec = do(t, router, http.MethodPost, "/trace/admin/image?session=tab1", map[string]string{"image": "missing.jpg"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/trace/admin/layout?session=tab1", map[string]string{"layout": "executive"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/trace/admin/preview.json?session=tab1&all=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var preview queries.PreviewResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.Len(t, preview.All, 3)

	rec = do(t, router, http.MethodGet, "/trace?session=tab1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, traceability.TemplateAdmin, renderer.lastTemplate)

	rec = do(t, router, http.MethodPost, "/trace/back?session=tab1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, traceability.ViewScanner, state.State.View)
	assert.Nil(t, state.State.ProductID)
}

func TestEditorRoutesRequireAdminView(t *testing.T) {
	api, _ := newTestHandlers(t)
	router := NewRouter(api, "/trace")
	rec := do(t, router, http.MethodPost, "/trace/admin/field?session=tab2", map[string]string{"field": "name", "value": "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestScanRejectsBlankCode(t *testing.T) {
	api, _ := newTestHandlers(t)
	router := NewRouter(api, "/trace")
	rec := do(t, router, http.MethodPost, "/trace/scan?session=tab3", map[string]string{"code": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionHeaderIssuedWhenMissing(t *testing.T) {
	api, _ := newTestHandlers(t)
	router := NewRouter(api, "/trace")
	rec := do(t, router, http.MethodGet, "/trace/_state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(SessionHeader))
}

func TestLayoutsRoute(t *testing.T) {
	api, _ := newTestHandlers(t)
	router := NewRouter(api, "/trace")
	rec := do(t, router, http.MethodGet, "/trace/layouts?locale=es", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Diseño ejecutivo")
}

func TestAssetsRoute(t *testing.T) {
	api, _ := newTestHandlers(t)
	router := NewRouter(api, "/trace")
	rec := do(t, router, http.MethodGet, "/assets/css/traceability.css", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "--sustainable")
}

func TestCertificationRoute(t *testing.T) {
	api, _ := newTestHandlers(t)
	router := NewRouter(api, "/trace")

	rec := do(t, router, http.MethodGet, "/trace/certifications/1?session=tab4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cert traceability.Certification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cert))
	assert.Equal(t, "Best Aquaculture Practices", cert.Issuer)

	rec = do(t, router, http.MethodGet, "/trace/certifications/9?session=tab4", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, router, http.MethodGet, "/trace/certifications/x?session=tab4", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCertificationRouteReadsAdminWorkingCopy(t *testing.T) {
	api, _ := newTestHandlers(t)
	router := NewRouter(api, "/trace")

	do(t, router, http.MethodPost, "/trace/scan?session=tab5", map[string]string{"code": traceability.DemoAdminCode})
	do(t, router, http.MethodDelete, "/trace/admin/certifications/0?session=tab5", nil)

	rec := do(t, router, http.MethodGet, "/trace/certifications/0?session=tab5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cert traceability.Certification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cert))
	assert.Equal(t, "BAP 4-Star", cert.Name)
}

func TestEndSessionRoute(t *testing.T) {
	api, _ := newTestHandlers(t)
	router := NewRouter(api, "/trace")

	do(t, router, http.MethodPost, "/trace/scan?session=tab6", map[string]string{"code": traceability.DemoCustomerCode})
	rec := do(t, router, http.MethodDelete, "/trace/session?session=tab6", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/trace/_state?session=tab6", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"currentView":"scanner"`, "ended sessions start over")

	rec = do(t, router, http.MethodDelete, "/trace/session", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
