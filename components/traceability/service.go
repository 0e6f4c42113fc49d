package traceability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Options configures the traceability Service. Collaborators are interfaces so
// hosts can swap the session store, event sink or telemetry.
type Options struct {
	Catalog       *Catalog
	Layouts       *LayoutRegistry
	Sessions      SessionStore
	EventHook     EventHook
	Telemetry     Telemetry
	Validator     ProductValidator
	ScanDelay     time.Duration
	DemoCode      string
	DefaultLayout LayoutType
	NewID         func() string
	// SessionTTL and MaxSessions bound the default in-memory store.
	SessionTTL  time.Duration
	MaxSessions int
}

// Service owns the seed catalog and the per-session state machines.
type Service struct {
	opts    Options
	catalog Catalog
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	catalog := DefaultCatalog()
	if opts.Catalog != nil {
		catalog = opts.Catalog.Clone()
	}
	if opts.Layouts == nil {
		opts.Layouts = NewLayoutRegistry()
	}
	if opts.Sessions == nil {
		opts.Sessions = NewInMemorySessionStore(
			WithSessionTTL(opts.SessionTTL),
			WithMaxSessions(opts.MaxSessions),
		)
	}
	if opts.EventHook == nil {
		opts.EventHook = noopEventHook{}
	}
	if opts.Validator == nil {
		opts.Validator = NewSchemaProductValidator()
	}
	if opts.ScanDelay <= 0 {
		opts.ScanDelay = DefaultScanDelay
	}
	if opts.DemoCode == "" {
		opts.DemoCode = DemoTraceabilityCode
	}
	if opts.DefaultLayout == "" {
		opts.DefaultLayout = LayoutComprehensive
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{opts: opts, catalog: catalog}
}

// Catalog returns a copy of the seed data.
func (s *Service) Catalog() Catalog {
	return s.catalog.Clone()
}

// Layouts exposes the layout table.
func (s *Service) Layouts() *LayoutRegistry {
	return s.opts.Layouts
}

// ScanDelay returns the configured simulated scan delay.
func (s *Service) ScanDelay() time.Duration {
	return s.opts.ScanDelay
}

// NewSessionID issues an id for a visitor that did not send one.
func (s *Service) NewSessionID() string {
	return s.opts.NewID()
}

// Session loads or creates the session.
func (s *Service) Session(ctx context.Context, sessionID string) (*Session, error) {
	if s.opts.Sessions == nil {
		return nil, errMissingSessions
	}
	if sessionID == "" {
		return nil, errMissingSession
	}
	return s.opts.Sessions.Session(ctx, sessionID, s.newSession)
}

// EndSession stops the session's timers and forgets it.
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	if s.opts.Sessions == nil {
		return errMissingSessions
	}
	if err := s.opts.Sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "traceability.session.end", map[string]any{"session_id": sessionID})
	return nil
}

// Close ends every session, stopping pending scan timers.
func (s *Service) Close(ctx context.Context) error {
	if s.opts.Sessions == nil {
		return errMissingSessions
	}
	ids, err := s.opts.Sessions.IDs(ctx)
	if err != nil {
		return err
	}
	var closeErr error
	for _, id := range ids {
		if err := s.opts.Sessions.Delete(ctx, id); err != nil {
			closeErr = errors.Join(closeErr, err)
		}
	}
	return closeErr
}

func (s *Service) newSession(id string) *Session {
	session := &Session{
		ID:        id,
		Navigator: NewNavigator(),
		Editor: NewEditor(EditorOptions{
			Product: s.catalog.Product,
			Images:  s.catalog.Images,
			Layout:  s.opts.DefaultLayout,
		}),
		CreatedAt: time.Now(),
	}
	session.Scanner = NewScanSimulator(ScannerOptions{
		Delay:    s.opts.ScanDelay,
		DemoCode: s.opts.DemoCode,
		Handler: func(code string) {
			s.navigate(context.Background(), session, code)
		},
	})
	s.recordTelemetry(context.Background(), "traceability.session.start", map[string]any{"session_id": id})
	return session
}

// State returns the session's navigation state.
func (s *Service) State(ctx context.Context, sessionID string) (NavigationState, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return NavigationState{}, err
	}
	return session.Navigator.State(), nil
}

// Scan handles a manually entered code. Any pending simulated scan is dropped.
func (s *Service) Scan(ctx context.Context, sessionID, code string) (NavigationState, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return NavigationState{}, err
	}
	s.recordTelemetry(ctx, "traceability.scan.manual", map[string]any{
		"session_id": sessionID,
		"code":       code,
	})
	if !session.Scanner.Manual(code) {
		s.navigate(ctx, session, code)
	}
	return session.Navigator.State(), nil
}

// SimulateScan starts the camera simulation. It reports false when a scan is
// already running or the session is not on the scanner view.
func (s *Service) SimulateScan(ctx context.Context, sessionID string) (bool, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return false, err
	}
	started := false
	if session.Navigator.State().Scanner() {
		started = session.Scanner.Trigger()
	}
	s.recordTelemetry(ctx, "traceability.scan.trigger", map[string]any{
		"session_id": sessionID,
		"started":    started,
	})
	if !started {
		return false, nil
	}
	if err := s.opts.EventHook.NavigationChanged(ctx, NavigationEvent{
		ID:        s.opts.NewID(),
		SessionID: sessionID,
		Reason:    "scanning",
		State:     session.Navigator.State(),
	}); err != nil {
		return true, err
	}
	return true, nil
}

// Scanning reports whether a simulated scan is in flight.
func (s *Service) Scanning(ctx context.Context, sessionID string) (bool, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return session.Scanner.Busy(), nil
}

// Back returns the session to the scanner and abandons any pending scan.
func (s *Service) Back(ctx context.Context, sessionID string) (NavigationState, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return NavigationState{}, err
	}
	session.Scanner.Cancel()
	state := session.Navigator.OnBack()
	if err := s.opts.EventHook.NavigationChanged(ctx, NavigationEvent{
		ID:        s.opts.NewID(),
		SessionID: sessionID,
		Reason:    "back",
		State:     state,
	}); err != nil {
		return state, err
	}
	s.recordTelemetry(ctx, "traceability.nav.back", map[string]any{"session_id": sessionID})
	return state, nil
}

func (s *Service) navigate(ctx context.Context, session *Session, code string) {
	state := session.Navigator.OnScan(code)
	if err := s.opts.EventHook.NavigationChanged(ctx, NavigationEvent{
		ID:        s.opts.NewID(),
		SessionID: session.ID,
		Reason:    "scan",
		State:     state,
	}); err != nil {
		s.recordTelemetry(ctx, "traceability.event.error", map[string]any{
			"session_id": session.ID,
			"error":      err.Error(),
		})
	}
	s.recordTelemetry(ctx, "traceability.scan.complete", map[string]any{
		"session_id": session.ID,
		"code":       code,
		"view":       string(state.View),
	})
}

// View renders the seed product with a layout.
func (s *Service) View(_ context.Context, layout LayoutType) (ProductView, error) {
	spec, ok := s.opts.Layouts.Layout(layout)
	if !ok {
		return ProductView{}, fmt.Errorf("%w: %s", ErrUnknownLayout, layout)
	}
	return Render(spec, s.catalog.Product, s.catalog.Chain), nil
}

// LayoutForView returns the layout a detail view renders with.
func LayoutForView(view View) (LayoutType, bool) {
	layout, ok := viewLayouts[view]
	return layout, ok
}

// Certification returns the certification the session's current view shows at
// index: the admin working copy on the admin view, the catalog product
// elsewhere. Out of range indexes return an *IndexOutOfRangeError.
func (s *Service) Certification(ctx context.Context, sessionID string, index int) (Certification, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return Certification{}, err
	}
	product := s.catalog.Product
	if session.Navigator.State().View == ViewAdmin {
		product = session.Editor.Product()
	}
	return CertificationAt(product, index)
}

// Editor returns the session's editor. Editing is only possible from the admin view.
func (s *Service) Editor(ctx context.Context, sessionID string) (*Editor, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Navigator.State().View != ViewAdmin {
		return nil, ErrNotAdmin
	}
	return session.Editor, nil
}

// SetField edits a scalar field of the working copy.
func (s *Service) SetField(ctx context.Context, sessionID, field, value string) error {
	editor, err := s.Editor(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := editor.SetField(field, value); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "traceability.editor.field.set", map[string]any{
		"session_id": sessionID,
		"field":      field,
	})
	return nil
}

// StageDraft replaces the staged certification.
func (s *Service) StageDraft(ctx context.Context, sessionID string, draft CertificationDraft) error {
	editor, err := s.Editor(ctx, sessionID)
	if err != nil {
		return err
	}
	editor.StageDraft(draft)
	return nil
}

// SetDraftField edits one field of the staged certification.
func (s *Service) SetDraftField(ctx context.Context, sessionID, field, value string) error {
	editor, err := s.Editor(ctx, sessionID)
	if err != nil {
		return err
	}
	return editor.SetDraftField(field, value)
}

// AddCertification commits the staged certification.
func (s *Service) AddCertification(ctx context.Context, sessionID string) (bool, error) {
	editor, err := s.Editor(ctx, sessionID)
	if err != nil {
		return false, err
	}
	added := editor.AddCertification()
	s.recordTelemetry(ctx, "traceability.editor.certification.add", map[string]any{
		"session_id": sessionID,
		"added":      added,
	})
	return added, nil
}

// RemoveCertification drops a certification from the working copy.
func (s *Service) RemoveCertification(ctx context.Context, sessionID string, index int) (bool, error) {
	editor, err := s.Editor(ctx, sessionID)
	if err != nil {
		return false, err
	}
	removed := editor.RemoveCertification(index)
	s.recordTelemetry(ctx, "traceability.editor.certification.remove", map[string]any{
		"session_id": sessionID,
		"index":      index,
		"removed":    removed,
	})
	return removed, nil
}

// SelectImage switches the working copy's image.
func (s *Service) SelectImage(ctx context.Context, sessionID, ref string) error {
	editor, err := s.Editor(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := editor.SelectImage(ref); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "traceability.editor.image.select", map[string]any{
		"session_id": sessionID,
		"image":      ref,
	})
	return nil
}

// SelectLayout picks the preview layout.
func (s *Service) SelectLayout(ctx context.Context, sessionID string, layout LayoutType) error {
	editor, err := s.Editor(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := editor.SelectLayout(layout, s.opts.Layouts); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "traceability.editor.layout.select", map[string]any{
		"session_id": sessionID,
		"layout":     string(layout),
	})
	return nil
}

// ResetEditor discards the session's edits.
func (s *Service) ResetEditor(ctx context.Context, sessionID string) error {
	editor, err := s.Editor(ctx, sessionID)
	if err != nil {
		return err
	}
	editor.Reset()
	s.recordTelemetry(ctx, "traceability.editor.reset", map[string]any{"session_id": sessionID})
	return nil
}

// Preview renders the working copy with the selected layout.
func (s *Service) Preview(ctx context.Context, sessionID string) (ProductView, error) {
	editor, err := s.Editor(ctx, sessionID)
	if err != nil {
		return ProductView{}, err
	}
	return editor.Preview(s.opts.Layouts, s.catalog.Chain)
}

// PreviewAll renders the working copy with every layout.
func (s *Service) PreviewAll(ctx context.Context, sessionID string) ([]ProductView, error) {
	editor, err := s.Editor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return editor.PreviewAll(s.opts.Layouts, s.catalog.Chain), nil
}

// Validate reports advisory problems with the working copy.
func (s *Service) Validate(ctx context.Context, sessionID string) error {
	editor, err := s.Editor(ctx, sessionID)
	if err != nil {
		return err
	}
	return editor.Validate(s.opts.Validator)
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}
