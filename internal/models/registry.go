// Package models is the registry the CLI uses to resolve a YAML config's
// `model:` name to that model's propensity functions and post-step hook, keeping
// internal/engine free of any dependency on a specific disease model
// (spec §4.1, §9 "Model loader").
package models

import (
	"fmt"

	"github.com/BorisVSchmid/SimInf/internal/engine"
	"github.com/BorisVSchmid/SimInf/internal/models/sir"
)

// Callbacks is the pair of external-collaborator functions a model
// contributes (spec §4.1); everything else — dimensions, initial state,
// and the S/G/E/N sparse descriptors — is generic and comes from the
// host binding layer (internal/modelio's YAML config), exactly as
// spec.md §1 draws the boundary: "the concrete propensity functions and
// post-time-step callbacks for specific disease models" are out of the
// core's scope but are the only per-model code that exists.
type Callbacks struct {
	TrFun  []engine.PropensityFunc
	PtsFun engine.PostStepHook
}

var registry = map[string]Callbacks{
	"sir": {
		TrFun:  []engine.PropensityFunc{sir.PropensitySToI, sir.PropensityIToR},
		PtsFun: sir.PostStep,
	},
}

// Lookup resolves name to its registered Callbacks.
func Lookup(name string) (Callbacks, error) {
	c, ok := registry[name]
	if !ok {
		return Callbacks{}, fmt.Errorf("models: unknown model %q", name)
	}
	return c, nil
}
