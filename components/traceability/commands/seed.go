package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	traceability "github.com/goliatone/go-traceability/components/traceability"
)

// SeedLayoutsInput lists manifest files to load on top of the built-in layouts.
type SeedLayoutsInput struct {
	Manifests []string
}

// SeedLayoutsCommand registers layouts from YAML manifests.
type SeedLayoutsCommand struct {
	registry  *traceability.LayoutRegistry
	telemetry Telemetry
}

// NewSeedLayoutsCommand wires dependencies.
func NewSeedLayoutsCommand(registry *traceability.LayoutRegistry, telemetry Telemetry) *SeedLayoutsCommand {
	return &SeedLayoutsCommand{registry: registry, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SeedLayoutsInput] = (*SeedLayoutsCommand)(nil)

// Execute loads every manifest, reporting all failures together.
func (c *SeedLayoutsCommand) Execute(ctx context.Context, msg SeedLayoutsInput) error {
	if c.registry == nil {
		return errors.New("seed command requires layout registry")
	}
	if err := c.registry.LoadManifestFiles(msg.Manifests...); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "traceability.layouts.seed", map[string]any{
		"manifests": len(msg.Manifests),
		"layouts":   len(c.registry.Layouts()),
	})
	return nil
}
