package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	traceability "github.com/goliatone/go-traceability/components/traceability"
)

// ScanInput carries a manually entered code.
type ScanInput struct {
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
}

type scanService interface {
	Scan(ctx context.Context, sessionID, code string) (traceability.NavigationState, error)
}

// ScanCommand routes a manually entered code through the session navigator.
type ScanCommand struct {
	service   scanService
	telemetry Telemetry
}

// NewScanCommand creates the command.
func NewScanCommand(service scanService, telemetry Telemetry) *ScanCommand {
	return &ScanCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ScanInput] = (*ScanCommand)(nil)

// Execute rejects blank codes, then navigates.
func (c *ScanCommand) Execute(ctx context.Context, msg ScanInput) error {
	if c.service == nil {
		return errors.New("scan command requires service")
	}
	if err := traceability.ValidateCode(msg.Code); err != nil {
		return err
	}
	state, err := c.service.Scan(ctx, msg.SessionID, msg.Code)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "traceability.command.scan", map[string]any{
		"session_id": msg.SessionID,
		"view":       string(state.View),
	})
	return nil
}

// SimulateScanInput starts the camera simulation for a session.
type SimulateScanInput struct {
	SessionID string `json:"session_id"`
}

type simulateService interface {
	SimulateScan(ctx context.Context, sessionID string) (bool, error)
}

// SimulateScanCommand triggers a simulated camera scan. Re-triggers while a
// scan is running are accepted and ignored.
type SimulateScanCommand struct {
	service   simulateService
	telemetry Telemetry
}

// NewSimulateScanCommand creates the command.
func NewSimulateScanCommand(service simulateService, telemetry Telemetry) *SimulateScanCommand {
	return &SimulateScanCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SimulateScanInput] = (*SimulateScanCommand)(nil)

// Execute starts the scan.
func (c *SimulateScanCommand) Execute(ctx context.Context, msg SimulateScanInput) error {
	if c.service == nil {
		return errors.New("simulate scan command requires service")
	}
	started, err := c.service.SimulateScan(ctx, msg.SessionID)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "traceability.command.simulate", map[string]any{
		"session_id": msg.SessionID,
		"started":    started,
	})
	return nil
}
