// Package engine provides the public API for the validation-correction
// engine. This package exposes the factory function while keeping
// implementation details internal.
package engine

import (
	"github.com/LinkesAuge/chestbuddy/internal/engine"
	"github.com/LinkesAuge/chestbuddy/pkg/types"
)

// New creates a new engine instance. The engine is not attached; call
// Attach with a Config to initialize.
//
// Example:
//
//	eng := engine.New()
//	err := eng.Attach(types.DefaultConfig())
//	defer eng.Detach()
func New() types.Engine {
	return engine.NewEngine()
}
