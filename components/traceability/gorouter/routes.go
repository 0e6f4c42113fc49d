package gorouter

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	router "github.com/goliatone/go-router"

	traceability "github.com/goliatone/go-traceability/components/traceability"
	"github.com/goliatone/go-traceability/components/traceability/commands"
	"github.com/goliatone/go-traceability/components/traceability/httpapi"
	"github.com/goliatone/go-traceability/components/traceability/queries"
)

// SessionResolver extracts the session id from a router.Context.
type SessionResolver func(router.Context) string

// Config wires go-router with the traceability controller, API and events.
type Config[T any] struct {
	Router          router.Router[T]
	Controller      *traceability.Controller
	API             *httpapi.Handlers
	Broadcast       *traceability.BroadcastHook
	SessionResolver SessionResolver
	NewSessionID    func() string
	BasePath        string
	Routes          RouteConfig
}

// RouteConfig customizes the relative paths of the endpoints.
type RouteConfig struct {
	HTML               string
	State              string
	Layouts            string
	Scan               string
	Simulate           string
	Back               string
	Field              string
	Draft              string
	Certifications     string
	CertificationIndex string
	Certification      string
	Session            string
	Image              string
	Layout             string
	Reset              string
	Preview            string
	PreviewJSON        string
	WebSocket          string
	Assets             string
}

// Register mounts pages, JSON endpoints and the WebSocket stream.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/trace"
	}
	lookup, resolve := cfg.sessionResolvers()

	if routes.Assets != "" {
		cfg.Router.Static(routes.Assets, ".", router.Static{
			FS:     traceability.AssetsFS(),
			Root:   ".",
			MaxAge: 86400,
		})
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		sessionID := lookup(ctx)
		if sessionID == "" {
			return redirectWithSession(ctx, cfg.newSessionID())
		}
		var buf bytes.Buffer
		if err := cfg.Controller.RenderPage(ctx.Context(), sessionID, inferLocale(ctx), &buf); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Preview, router.WrapHandler(func(ctx router.Context) error {
		sessionID := lookup(ctx)
		if sessionID == "" {
			return redirectWithSession(ctx, cfg.newSessionID())
		}
		var buf bytes.Buffer
		if err := cfg.Controller.RenderPreview(ctx.Context(), sessionID, inferLocale(ctx), &buf); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.State, router.WrapHandler(func(ctx router.Context) error {
		sessionID := resolve(ctx)
		page, err := cfg.Controller.Page(ctx.Context(), sessionID, inferLocale(ctx))
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{
			"session_id": sessionID,
			"navigation": page.State,
			"template":   page.Template,
			"payload":    page.Payload,
		})
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, lookup, resolve, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api *httpapi.Handlers, lookup, resolve SessionResolver, routes RouteConfig) {
	r.Get(routes.Layouts, router.WrapHandler(func(ctx router.Context) error {
		layouts, err := api.Layouts.Query(ctx.Context(), queries.LayoutsInput{Locale: inferLocale(ctx)})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"layouts": layouts})
	}))

	r.Post(routes.Scan, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ScanInput
		if err := httpapi.DecodeJSON(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.SessionID = resolve(ctx)
		if err := api.Scan.Execute(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return respondState(ctx, api, payload.SessionID, http.StatusOK)
	}))

	r.Post(routes.Simulate, router.WrapHandler(func(ctx router.Context) error {
		sessionID := resolve(ctx)
		if err := api.Simulate.Execute(ctx.Context(), commands.SimulateScanInput{SessionID: sessionID}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return respondState(ctx, api, sessionID, http.StatusAccepted)
	}))

	r.Post(routes.Back, router.WrapHandler(func(ctx router.Context) error {
		sessionID := resolve(ctx)
		if err := api.Back.Execute(ctx.Context(), commands.BackInput{SessionID: sessionID}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return respondState(ctx, api, sessionID, http.StatusOK)
	}))

	r.Post(routes.Field, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SetFieldInput
		if err := httpapi.DecodeJSON(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.SessionID = resolve(ctx)
		return respondEditor(ctx, api, payload.SessionID, api.SetField.Execute(ctx.Context(), payload))
	}))

	r.Post(routes.Draft, router.WrapHandler(func(ctx router.Context) error {
		var draft traceability.CertificationDraft
		if err := httpapi.DecodeJSON(ctx.Body(), &draft); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		sessionID := resolve(ctx)
		return respondEditor(ctx, api, sessionID, api.StageDraft.Execute(ctx.Context(), commands.StageDraftInput{SessionID: sessionID, Draft: draft}))
	}))

	r.Post(routes.Certifications, router.WrapHandler(func(ctx router.Context) error {
		sessionID := resolve(ctx)
		input := commands.AddCertificationInput{SessionID: sessionID}
		if body := bytes.TrimSpace(ctx.Body()); len(body) > 0 {
			var draft traceability.CertificationDraft
			if err := httpapi.DecodeJSON(body, &draft); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			input.Draft = &draft
		}
		return respondEditor(ctx, api, sessionID, api.AddCertification.Execute(ctx.Context(), input))
	}))

	r.Delete(routes.CertificationIndex, router.WrapHandler(func(ctx router.Context) error {
		index, err := strconv.Atoi(ctx.Param("index"))
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, errors.New("certification index must be an integer"))
		}
		sessionID := resolve(ctx)
		return respondEditor(ctx, api, sessionID, api.RemoveCertification.Execute(ctx.Context(), commands.RemoveCertificationInput{SessionID: sessionID, Index: index}))
	}))

	r.Post(routes.Image, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SelectImageInput
		if err := httpapi.DecodeJSON(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.SessionID = resolve(ctx)
		return respondEditor(ctx, api, payload.SessionID, api.SelectImage.Execute(ctx.Context(), payload))
	}))

	r.Post(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SelectLayoutInput
		if err := httpapi.DecodeJSON(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.SessionID = resolve(ctx)
		return respondEditor(ctx, api, payload.SessionID, api.SelectLayout.Execute(ctx.Context(), payload))
	}))

	r.Post(routes.Reset, router.WrapHandler(func(ctx router.Context) error {
		sessionID := resolve(ctx)
		return respondEditor(ctx, api, sessionID, api.Reset.Execute(ctx.Context(), commands.ResetEditorInput{SessionID: sessionID}))
	}))

	r.Get(routes.Certification, router.WrapHandler(func(ctx router.Context) error {
		index, err := strconv.Atoi(ctx.Param("index"))
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, errors.New("certification index must be an integer"))
		}
		cert, err := api.Certification.Query(ctx.Context(), queries.CertificationInput{SessionID: resolve(ctx), Index: index})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, cert)
	}))

	r.Delete(routes.Session, router.WrapHandler(func(ctx router.Context) error {
		if sessionID := lookup(ctx); sessionID != "" {
			if err := api.EndSession.Execute(ctx.Context(), commands.EndSessionInput{SessionID: sessionID}); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
		}
		return ctx.NoContent(http.StatusNoContent)
	}))

	r.Get(routes.PreviewJSON, router.WrapHandler(func(ctx router.Context) error {
		all, _ := strconv.ParseBool(ctx.Query("all"))
		result, err := api.Preview.Query(ctx.Context(), queries.PreviewInput{SessionID: resolve(ctx), All: all})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, result)
	}))
}

// registerWebSocket streams the events of the session named in ?session=.
func registerWebSocket[T any](r router.Router[T], hook *traceability.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		session := strings.TrimSpace(ws.Query(traceability.SessionQueryParam))
		if session == "" {
			return ws.CloseWithStatus(websocketPolicyViolation, "session required")
		}
		events, cancel := hook.Subscribe(session)
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func respondState(ctx router.Context, api *httpapi.Handlers, sessionID string, status int) error {
	state, err := api.State.Query(ctx.Context(), queries.StateInput{SessionID: sessionID})
	if err != nil {
		return respondError(ctx, httpapi.StatusFor(err), err)
	}
	return ctx.JSON(status, state)
}

func respondEditor(ctx router.Context, api *httpapi.Handlers, sessionID string, err error) error {
	if err != nil {
		return respondError(ctx, httpapi.StatusFor(err), err)
	}
	snapshot, err := api.Editor.Query(ctx.Context(), queries.EditorInput{SessionID: sessionID})
	if err != nil {
		return respondError(ctx, httpapi.StatusFor(err), err)
	}
	return ctx.JSON(http.StatusOK, snapshot)
}

// websocketPolicyViolation is the RFC 6455 close code for rejected streams.
const websocketPolicyViolation = 1008

func (cfg Config[T]) newSessionID() string {
	if cfg.NewSessionID != nil {
		return cfg.NewSessionID()
	}
	return cfg.Controller.Service().NewSessionID()
}

// sessionResolvers returns the plain lookup used by pages, which redirect when
// it comes back empty, and the API resolver, which issues an id and echoes it
// in the session header.
func (cfg Config[T]) sessionResolvers() (SessionResolver, SessionResolver) {
	lookup := cfg.SessionResolver
	if lookup == nil {
		lookup = defaultSessionResolver
	}
	resolve := func(ctx router.Context) string {
		if id := lookup(ctx); id != "" {
			return id
		}
		id := cfg.newSessionID()
		ctx.SetHeader(httpapi.SessionHeader, id)
		return id
	}
	return lookup, resolve
}

// redirectWithSession sends a visitor without a session to the same page with a
// fresh id, so reloads keep their place.
func redirectWithSession(ctx router.Context, id string) error {
	query := url.Values{}
	for key, value := range ctx.Queries() {
		query.Set(key, value)
	}
	query.Set(traceability.SessionQueryParam, id)
	return ctx.Redirect(ctx.Path()+"?"+query.Encode(), http.StatusSeeOther)
}

func defaultSessionResolver(ctx router.Context) string {
	if id, ok := ctx.Locals("session_id").(string); ok && id != "" {
		return id
	}
	if id := strings.TrimSpace(ctx.Query(traceability.SessionQueryParam)); id != "" {
		return id
	}
	return strings.TrimSpace(ctx.Header(httpapi.SessionHeader))
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	return httpapi.ParseAcceptLanguage(ctx.Header("Accept-Language"))
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	defaults := RouteConfig{
		HTML:               "",
		State:              "/_state",
		Layouts:            "/layouts",
		Scan:               "/scan",
		Simulate:           "/scan/simulate",
		Back:               "/back",
		Field:              "/admin/field",
		Draft:              "/admin/draft",
		Certifications:     "/admin/certifications",
		CertificationIndex: "/admin/certifications/:index",
		Certification:      "/certifications/:index",
		Session:            "/session",
		Image:              "/admin/image",
		Layout:             "/admin/layout",
		Reset:              "/admin/reset",
		Preview:            "/admin/preview",
		PreviewJSON:        "/admin/preview.json",
		WebSocket:          "/ws",
		Assets:             traceability.DefaultAssetsPath,
	}
	fill := func(value *string, fallback string) {
		if *value == "" {
			*value = fallback
		}
	}
	fill(&routes.State, defaults.State)
	fill(&routes.Layouts, defaults.Layouts)
	fill(&routes.Scan, defaults.Scan)
	fill(&routes.Simulate, defaults.Simulate)
	fill(&routes.Back, defaults.Back)
	fill(&routes.Field, defaults.Field)
	fill(&routes.Draft, defaults.Draft)
	fill(&routes.Certifications, defaults.Certifications)
	fill(&routes.CertificationIndex, defaults.CertificationIndex)
	fill(&routes.Certification, defaults.Certification)
	fill(&routes.Session, defaults.Session)
	fill(&routes.Image, defaults.Image)
	fill(&routes.Layout, defaults.Layout)
	fill(&routes.Reset, defaults.Reset)
	fill(&routes.Preview, defaults.Preview)
	fill(&routes.PreviewJSON, defaults.PreviewJSON)
	fill(&routes.WebSocket, defaults.WebSocket)
	fill(&routes.Assets, defaults.Assets)
	return routes
}
