// Package main provides CMA-ES tuning of the light habituation constants.
package main

import (
	"github.com/pthm-cable/lurch/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	field func(cfg *config.Config) *float64
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of habituation parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "default_return_chance", Path: "memory.default_return_chance", Min: 0.3, Max: 1.0, Default: 0.75,
				field: func(c *config.Config) *float64 { return &c.Memory.DefaultReturnChance }},
			{Name: "pursue_decay", Path: "memory.pursue_decay", Min: 0.2, Max: 1.0, Default: 0.6,
				field: func(c *config.Config) *float64 { return &c.Memory.PursueDecay }},
			{Name: "decline_decay", Path: "memory.decline_decay", Min: 0.5, Max: 1.0, Default: 0.85,
				field: func(c *config.Config) *float64 { return &c.Memory.DeclineDecay }},
			{Name: "peek_factor", Path: "memory.peek_factor", Min: 0.1, Max: 1.0, Default: 0.5,
				field: func(c *config.Config) *float64 { return &c.Memory.PeekFactor }},
			{Name: "reached_cooldown", Path: "memory.reached_cooldown", Min: 5, Max: 30, Default: 15,
				field: func(c *config.Config) *float64 { return &c.Memory.ReachedCooldown }},
			{Name: "reached_decay", Path: "memory.reached_decay", Min: 0.1, Max: 1.0, Default: 0.4,
				field: func(c *config.Config) *float64 { return &c.Memory.ReachedDecay }},
			{Name: "gave_up_decay", Path: "memory.gave_up_decay", Min: 0.2, Max: 1.0, Default: 0.55,
				field: func(c *config.Config) *float64 { return &c.Memory.GaveUpDecay }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return out
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return out
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return out
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].field(cfg) = v
	}
}

// ExtractFromConfig reads current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = *spec.field(cfg)
	}
	return out
}
