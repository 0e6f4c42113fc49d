package traceability

import (
	core "github.com/goliatone/go-traceability/components/traceability"
)

// Service exposes the underlying components/traceability.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Controller renders session pages.
type Controller = core.Controller

// ControllerOptions re-export for convenience.
type ControllerOptions = core.ControllerOptions

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewController proxies to the internal constructor.
func NewController(opts ControllerOptions) *Controller {
	return core.NewController(opts)
}
