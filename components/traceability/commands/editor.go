package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	traceability "github.com/goliatone/go-traceability/components/traceability"
)

type editorService interface {
	SetField(ctx context.Context, sessionID, field, value string) error
	StageDraft(ctx context.Context, sessionID string, draft traceability.CertificationDraft) error
	AddCertification(ctx context.Context, sessionID string) (bool, error)
	RemoveCertification(ctx context.Context, sessionID string, index int) (bool, error)
	SelectImage(ctx context.Context, sessionID, ref string) error
	SelectLayout(ctx context.Context, sessionID string, layout traceability.LayoutType) error
	ResetEditor(ctx context.Context, sessionID string) error
}

// SetFieldInput edits one scalar product field.
type SetFieldInput struct {
	SessionID string `json:"session_id"`
	Field     string `json:"field"`
	Value     string `json:"value"`
}

// StageDraftInput replaces the staged certification.
type StageDraftInput struct {
	SessionID string                          `json:"session_id"`
	Draft     traceability.CertificationDraft `json:"draft"`
}

// AddCertificationInput commits the staged certification. When Draft is set it
// is staged first, so forms can submit in one request.
type AddCertificationInput struct {
	SessionID string                           `json:"session_id"`
	Draft     *traceability.CertificationDraft `json:"draft,omitempty"`
}

// RemoveCertificationInput drops the certification at Index.
type RemoveCertificationInput struct {
	SessionID string `json:"session_id"`
	Index     int    `json:"index"`
}

// SelectImageInput switches the product image.
type SelectImageInput struct {
	SessionID string `json:"session_id"`
	Image     string `json:"image"`
}

// SelectLayoutInput picks the preview layout.
type SelectLayoutInput struct {
	SessionID string                  `json:"session_id"`
	Layout    traceability.LayoutType `json:"layout"`
}

// ResetEditorInput discards the working copy.
type ResetEditorInput struct {
	SessionID string `json:"session_id"`
}

// EditorCommands bundles the admin editor commanders over one service.
type EditorCommands struct {
	SetField            *SetFieldCommand
	StageDraft          *StageDraftCommand
	AddCertification    *AddCertificationCommand
	RemoveCertification *RemoveCertificationCommand
	SelectImage         *SelectImageCommand
	SelectLayout        *SelectLayoutCommand
	Reset               *ResetEditorCommand
}

// NewEditorCommands builds every editor commander.
func NewEditorCommands(service editorService, telemetry Telemetry) EditorCommands {
	telemetry = normalizeTelemetry(telemetry)
	base := editorCommand{service: service, telemetry: telemetry}
	return EditorCommands{
		SetField:            &SetFieldCommand{base},
		StageDraft:          &StageDraftCommand{base},
		AddCertification:    &AddCertificationCommand{base},
		RemoveCertification: &RemoveCertificationCommand{base},
		SelectImage:         &SelectImageCommand{base},
		SelectLayout:        &SelectLayoutCommand{base},
		Reset:               &ResetEditorCommand{base},
	}
}

type editorCommand struct {
	service   editorService
	telemetry Telemetry
}

func (c editorCommand) ready() error {
	if c.service == nil {
		return errors.New("editor command requires service")
	}
	return nil
}

// SetFieldCommand wraps Service.SetField.
type SetFieldCommand struct{ editorCommand }

var _ gocommand.Commander[SetFieldInput] = (*SetFieldCommand)(nil)

// Execute delegates to the service.
func (c *SetFieldCommand) Execute(ctx context.Context, msg SetFieldInput) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.service.SetField(ctx, msg.SessionID, msg.Field, msg.Value)
}

// StageDraftCommand wraps Service.StageDraft.
type StageDraftCommand struct{ editorCommand }

var _ gocommand.Commander[StageDraftInput] = (*StageDraftCommand)(nil)

// Execute delegates to the service.
func (c *StageDraftCommand) Execute(ctx context.Context, msg StageDraftInput) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.service.StageDraft(ctx, msg.SessionID, msg.Draft)
}

// AddCertificationCommand wraps Service.AddCertification.
type AddCertificationCommand struct{ editorCommand }

var _ gocommand.Commander[AddCertificationInput] = (*AddCertificationCommand)(nil)

// Execute stages the optional draft and commits it. An incomplete draft is
// not an error.
func (c *AddCertificationCommand) Execute(ctx context.Context, msg AddCertificationInput) error {
	if err := c.ready(); err != nil {
		return err
	}
	if msg.Draft != nil {
		if err := c.service.StageDraft(ctx, msg.SessionID, *msg.Draft); err != nil {
			return err
		}
	}
	added, err := c.service.AddCertification(ctx, msg.SessionID)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "traceability.command.certification.add", map[string]any{
		"session_id": msg.SessionID,
		"added":      added,
	})
	return nil
}

// RemoveCertificationCommand wraps Service.RemoveCertification.
type RemoveCertificationCommand struct{ editorCommand }

var _ gocommand.Commander[RemoveCertificationInput] = (*RemoveCertificationCommand)(nil)

// Execute delegates to the service; out of range indexes are ignored.
func (c *RemoveCertificationCommand) Execute(ctx context.Context, msg RemoveCertificationInput) error {
	if err := c.ready(); err != nil {
		return err
	}
	removed, err := c.service.RemoveCertification(ctx, msg.SessionID, msg.Index)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "traceability.command.certification.remove", map[string]any{
		"session_id": msg.SessionID,
		"index":      msg.Index,
		"removed":    removed,
	})
	return nil
}

// SelectImageCommand wraps Service.SelectImage.
type SelectImageCommand struct{ editorCommand }

var _ gocommand.Commander[SelectImageInput] = (*SelectImageCommand)(nil)

// Execute delegates to the service.
func (c *SelectImageCommand) Execute(ctx context.Context, msg SelectImageInput) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.service.SelectImage(ctx, msg.SessionID, msg.Image)
}

// SelectLayoutCommand wraps Service.SelectLayout.
type SelectLayoutCommand struct{ editorCommand }

var _ gocommand.Commander[SelectLayoutInput] = (*SelectLayoutCommand)(nil)

// Execute delegates to the service.
func (c *SelectLayoutCommand) Execute(ctx context.Context, msg SelectLayoutInput) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.service.SelectLayout(ctx, msg.SessionID, msg.Layout)
}

// ResetEditorCommand wraps Service.ResetEditor.
type ResetEditorCommand struct{ editorCommand }

var _ gocommand.Commander[ResetEditorInput] = (*ResetEditorCommand)(nil)

// Execute delegates to the service.
func (c *ResetEditorCommand) Execute(ctx context.Context, msg ResetEditorInput) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.service.ResetEditor(ctx, msg.SessionID)
}
