package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// EndSessionInput closes a visitor's session.
type EndSessionInput struct {
	SessionID string `json:"session_id"`
}

type sessionService interface {
	EndSession(ctx context.Context, sessionID string) error
}

// EndSessionCommand stops a session's pending scan and forgets its state.
type EndSessionCommand struct {
	service   sessionService
	telemetry Telemetry
}

// NewEndSessionCommand creates the command.
func NewEndSessionCommand(service sessionService, telemetry Telemetry) *EndSessionCommand {
	return &EndSessionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[EndSessionInput] = (*EndSessionCommand)(nil)

// Execute delegates to the service. Unknown sessions are not an error.
func (c *EndSessionCommand) Execute(ctx context.Context, msg EndSessionInput) error {
	if c.service == nil {
		return errors.New("end session command requires service")
	}
	if err := c.service.EndSession(ctx, msg.SessionID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "traceability.command.session.end", map[string]any{"session_id": msg.SessionID})
	return nil
}
