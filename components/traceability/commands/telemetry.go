package commands

import (
	"context"

	traceability "github.com/goliatone/go-traceability/components/traceability"
)

// Telemetry is the sink commands record their events on. *traceability.ZapTelemetry
// satisfies it.
type Telemetry = traceability.Telemetry

type discardTelemetry struct{}

func (discardTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return discardTelemetry{}
	}
	return t
}
