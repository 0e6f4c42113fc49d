package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	traceability "github.com/goliatone/go-traceability/components/traceability"
)

// BackInput returns a session to the scanner.
type BackInput struct {
	SessionID string `json:"session_id"`
}

type backService interface {
	Back(ctx context.Context, sessionID string) (traceability.NavigationState, error)
}

// BackCommand wraps Service.Back.
type BackCommand struct {
	service   backService
	telemetry Telemetry
}

// NewBackCommand creates the command.
func NewBackCommand(service backService, telemetry Telemetry) *BackCommand {
	return &BackCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[BackInput] = (*BackCommand)(nil)

// Execute delegates to the service.
func (c *BackCommand) Execute(ctx context.Context, msg BackInput) error {
	if c.service == nil {
		return errors.New("back command requires service")
	}
	if _, err := c.service.Back(ctx, msg.SessionID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "traceability.command.back", map[string]any{"session_id": msg.SessionID})
	return nil
}
