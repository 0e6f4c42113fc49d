package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
	traceability "github.com/goliatone/go-traceability/components/traceability"
	"github.com/goliatone/go-traceability/components/traceability/commands"
	"github.com/goliatone/go-traceability/components/traceability/queries"
)

// SessionHeader carries the session id when the query string does not.
const SessionHeader = "X-Trace-Session"

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	Scan                gocommand.Commander[commands.ScanInput]
	Simulate            gocommand.Commander[commands.SimulateScanInput]
	Back                gocommand.Commander[commands.BackInput]
	SetField            gocommand.Commander[commands.SetFieldInput]
	StageDraft          gocommand.Commander[commands.StageDraftInput]
	AddCertification    gocommand.Commander[commands.AddCertificationInput]
	RemoveCertification gocommand.Commander[commands.RemoveCertificationInput]
	SelectImage         gocommand.Commander[commands.SelectImageInput]
	SelectLayout        gocommand.Commander[commands.SelectLayoutInput]
	Reset               gocommand.Commander[commands.ResetEditorInput]
	EndSession          gocommand.Commander[commands.EndSessionInput]

	State   gocommand.Querier[queries.StateInput, queries.StateResult]
	Editor  gocommand.Querier[queries.EditorInput, queries.EditorSnapshot]
	Preview gocommand.Querier[queries.PreviewInput, queries.PreviewResult]
	Layouts gocommand.Querier[queries.LayoutsInput, []queries.LayoutSummary]

	Certification gocommand.Querier[queries.CertificationInput, traceability.Certification]

	Controller *traceability.Controller
	Broadcast  *traceability.BroadcastHook
	NewID      func() string
}

// NewHandlers wires every endpoint to the service.
func NewHandlers(svc *traceability.Service, controller *traceability.Controller, broadcast *traceability.BroadcastHook, telemetry commands.Telemetry) *Handlers {
	editor := commands.NewEditorCommands(svc, telemetry)
	return &Handlers{
		Scan:                commands.NewScanCommand(svc, telemetry),
		Simulate:            commands.NewSimulateScanCommand(svc, telemetry),
		Back:                commands.NewBackCommand(svc, telemetry),
		SetField:            editor.SetField,
		StageDraft:          editor.StageDraft,
		AddCertification:    editor.AddCertification,
		RemoveCertification: editor.RemoveCertification,
		SelectImage:         editor.SelectImage,
		SelectLayout:        editor.SelectLayout,
		Reset:               editor.Reset,
		EndSession:          commands.NewEndSessionCommand(svc, telemetry),
		State:               queries.NewStateQuery(svc),
		Editor:              queries.NewEditorQuery(svc),
		Preview:             queries.NewPreviewQuery(svc),
		Layouts:             queries.NewLayoutsQuery(svc.Layouts()),
		Certification:       queries.NewCertificationQuery(svc),
		Controller:          controller,
		Broadcast:           broadcast,
		NewID:               svc.NewSessionID,
	}
}

// SessionID reads the session from the query string or header.
func SessionID(r *http.Request) string {
	if id := strings.TrimSpace(r.URL.Query().Get(traceability.SessionQueryParam)); id != "" {
		return id
	}
	return strings.TrimSpace(r.Header.Get(SessionHeader))
}

// Locale reads ?locale= or the first Accept-Language tag.
func Locale(r *http.Request) string {
	if locale := strings.TrimSpace(r.URL.Query().Get("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	return ParseAcceptLanguage(r.Header.Get("Accept-Language"))
}

// ParseAcceptLanguage returns the first language tag of the header.
func ParseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	var verr *traceability.ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr),
		errors.Is(err, traceability.ErrUnknownField),
		errors.Is(err, traceability.ErrUnknownLayout),
		errors.Is(err, traceability.ErrUnknownImage),
		errors.Is(err, traceability.ErrScanInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, traceability.ErrNotAdmin):
		return http.StatusConflict
	case errors.As(err, new(*traceability.IndexOutOfRangeError)):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON reads an optional JSON body into v. An empty body leaves v untouched.
func DecodeJSON(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

// HandlePage renders the HTML page of the session's current view. Visitors
// without a session are redirected to a fresh one.
func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	if h.redirectWithSession(w, r) {
		return
	}
	var buf bytes.Buffer
	if err := h.Controller.RenderPage(r.Context(), SessionID(r), Locale(r), &buf); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// HandlePreviewPage renders the side-by-side layout comparison.
func (h *Handlers) HandlePreviewPage(w http.ResponseWriter, r *http.Request) {
	if h.redirectWithSession(w, r) {
		return
	}
	var buf bytes.Buffer
	if err := h.Controller.RenderPreview(r.Context(), SessionID(r), Locale(r), &buf); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// HandleState returns the navigation state and current page payload as JSON.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionOrNew(w, r)
	state, err := h.State.Query(r.Context(), queries.StateInput{SessionID: sessionID})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	out := map[string]any{"navigation": state}
	if h.Controller != nil {
		page, err := h.Controller.Page(r.Context(), sessionID, Locale(r))
		if err != nil {
			writeError(w, StatusFor(err), err)
			return
		}
		out["template"] = page.Template
		out["payload"] = page.Payload
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleScan handles manual code entry.
func (h *Handlers) HandleScan(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionOrNew(w, r)
	var payload commands.ScanInput
	if !readBody(w, r, &payload) {
		return
	}
	payload.SessionID = sessionID
	if err := h.Scan.Execute(r.Context(), payload); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	h.respondState(w, r, sessionID, http.StatusOK)
}

// HandleSimulateScan starts a simulated camera scan.
func (h *Handlers) HandleSimulateScan(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionOrNew(w, r)
	if err := h.Simulate.Execute(r.Context(), commands.SimulateScanInput{SessionID: sessionID}); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	h.respondState(w, r, sessionID, http.StatusAccepted)
}

// HandleBack returns to the scanner.
func (h *Handlers) HandleBack(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionOrNew(w, r)
	if err := h.Back.Execute(r.Context(), commands.BackInput{SessionID: sessionID}); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	h.respondState(w, r, sessionID, http.StatusOK)
}

// HandleSetField edits a product field.
func (h *Handlers) HandleSetField(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionOrNew(w, r)
	var payload commands.SetFieldInput
	if !readBody(w, r, &payload) {
		return
	}
	payload.SessionID = sessionID
	h.runEditor(w, r, sessionID, h.SetField.Execute(r.Context(), payload))
}

// HandleStageDraft replaces the staged certification.
func (h *Handlers) HandleStageDraft(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionOrNew(w, r)
	var draft traceability.CertificationDraft
	if !readBody(w, r, &draft) {
		return
	}
	h.runEditor(w, r, sessionID, h.StageDraft.Execute(r.Context(), commands.StageDraftInput{SessionID: sessionID, Draft: draft}))
}

// HandleAddCertification stages the posted draft, when present, and commits it.
func (h *Handlers) HandleAddCertification(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionOrNew(w, r)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	input := commands.AddCertificationInput{SessionID: sessionID}
	if len(bytes.TrimSpace(body)) > 0 {
		var draft traceability.CertificationDraft
		if err := json.Unmarshal(body, &draft); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		input.Draft = &draft
	}
	h.runEditor(w, r, sessionID, h.AddCertification.Execute(r.Context(), input))
}

// HandleRemoveCertification drops the certification at index.
func (h *Handlers) HandleRemoveCertification(w http.ResponseWriter, r *http.Request, index string) {
	sessionID := h.sessionOrNew(w, r)
	i, err := strconv.Atoi(index)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("certification index must be an integer"))
		return
	}
	h.runEditor(w, r, sessionID, h.RemoveCertification.Execute(r.Context(), commands.RemoveCertificationInput{SessionID: sessionID, Index: i}))
}

// HandleSelectImage switches the product image.
func (h *Handlers) HandleSelectImage(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionOrNew(w, r)
	var payload commands.SelectImageInput
	if !readBody(w, r, &payload) {
		return
	}
	payload.SessionID = sessionID
	h.runEditor(w, r, sessionID, h.SelectImage.Execute(r.Context(), payload))
}

// HandleSelectLayout picks the preview layout.
func (h *Handlers) HandleSelectLayout(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionOrNew(w, r)
	var payload commands.SelectLayoutInput
	if !readBody(w, r, &payload) {
		return
	}
	payload.SessionID = sessionID
	h.runEditor(w, r, sessionID, h.SelectLayout.Execute(r.Context(), payload))
}

// HandleReset discards the working copy.
func (h *Handlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionOrNew(w, r)
	h.runEditor(w, r, sessionID, h.Reset.Execute(r.Context(), commands.ResetEditorInput{SessionID: sessionID}))
}

// HandlePreview returns previews as JSON; ?all=true renders every layout.
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionOrNew(w, r)
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	result, err := h.Preview.Query(r.Context(), queries.PreviewInput{SessionID: sessionID, All: all})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleLayouts lists the layout table.
func (h *Handlers) HandleLayouts(w http.ResponseWriter, r *http.Request) {
	layouts, err := h.Layouts.Query(r.Context(), queries.LayoutsInput{Locale: Locale(r)})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"layouts": layouts})
}

// HandleCertification returns the certification shown at index, for the
// detail dialog.
func (h *Handlers) HandleCertification(w http.ResponseWriter, r *http.Request, index string) {
	sessionID := h.sessionOrNew(w, r)
	i, err := strconv.Atoi(index)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("certification index must be an integer"))
		return
	}
	cert, err := h.Certification.Query(r.Context(), queries.CertificationInput{SessionID: sessionID, Index: i})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, cert)
}

// HandleEndSession forgets the session, e.g. when the tab closes.
func (h *Handlers) HandleEndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(r)
	if sessionID == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := h.EndSession.Execute(r.Context(), commands.EndSessionInput{SessionID: sessionID}); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) runEditor(w http.ResponseWriter, r *http.Request, sessionID string, err error) {
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	snapshot, err := h.Editor.Query(r.Context(), queries.EditorInput{SessionID: sessionID})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handlers) respondState(w http.ResponseWriter, r *http.Request, sessionID string, status int) {
	if h.State == nil {
		w.WriteHeader(status)
		return
	}
	state, err := h.State.Query(r.Context(), queries.StateInput{SessionID: sessionID})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, status, state)
}

func (h *Handlers) sessionOrNew(w http.ResponseWriter, r *http.Request) string {
	if id := SessionID(r); id != "" {
		return id
	}
	id := h.newID()
	w.Header().Set(SessionHeader, id)
	return id
}

func (h *Handlers) redirectWithSession(w http.ResponseWriter, r *http.Request) bool {
	if SessionID(r) != "" {
		return false
	}
	u := *r.URL
	q := u.Query()
	q.Set(traceability.SessionQueryParam, h.newID())
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
	return true
}

func (h *Handlers) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

func readBody(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	if err := DecodeJSON(body, v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
