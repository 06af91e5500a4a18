// Package config loads decision tuning from an HCL file.
//
// Every attribute is optional; anything left out keeps the value from
// policy.DefaultConfig. A minimal file:
//
//	depth      = 4
//	path_bonus = 25
//
//	weights {
//	  space     = 10
//	  discount  = 0.5
//	  aggregate = "mean"
//	}
package config

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/brensch/snekpilot/lookahead"
	"github.com/brensch/snekpilot/policy"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// MaxDepth bounds the lookahead; the search is 4^depth flood fills.
const MaxDepth = 8

type hclFile struct {
	Depth          *int        `hcl:"depth,optional"`
	PathBonus      *float64    `hcl:"path_bonus,optional"`
	SafetyMargin   *int        `hcl:"safety_margin,optional"`
	OverrideMargin *int        `hcl:"override_margin,optional"`
	Weights        *hclWeights `hcl:"weights,block"`
}

type hclWeights struct {
	Distance  *float64 `hcl:"distance,optional"`
	Food      *float64 `hcl:"food,optional"`
	EatBonus  *float64 `hcl:"eat_bonus,optional"`
	Space     *float64 `hcl:"space,optional"`
	WallEdge  *float64 `hcl:"wall_edge_penalty,optional"`
	WallNear  *float64 `hcl:"wall_near_penalty,optional"`
	DeadEnd   *float64 `hcl:"dead_end_penalty,optional"`
	Invalid   *float64 `hcl:"invalid_score,optional"`
	Discount  *float64 `hcl:"discount,optional"`
	Aggregate *string  `hcl:"aggregate,optional"`
}

// Default returns the built-in tuning.
func Default() policy.Config {
	return policy.DefaultConfig()
}

// Load reads an .hcl file and overlays it on the defaults. An empty path
// returns the defaults.
func Load(path string) (policy.Config, error) {
	if path == "" {
		return Default(), nil
	}
	var f hclFile
	if err := hclsimple.DecodeFile(path, nil, &f); err != nil {
		return policy.Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return apply(Default(), f)
}

// Parse decodes HCL source; filename is used for diagnostics and must end
// in .hcl.
func Parse(filename string, src []byte) (policy.Config, error) {
	var f hclFile
	if err := hclsimple.Decode(filename, src, nil, &f); err != nil {
		return policy.Config{}, fmt.Errorf("decode %s: %w", filename, err)
	}
	return apply(Default(), f)
}

func apply(cfg policy.Config, f hclFile) (policy.Config, error) {
	setInt(&cfg.Depth, f.Depth)
	setFloat(&cfg.PathBonus, f.PathBonus)
	setInt(&cfg.SafetyMargin, f.SafetyMargin)
	setInt(&cfg.OverrideMargin, f.OverrideMargin)

	if w := f.Weights; w != nil {
		setFloat(&cfg.Weights.DistanceWeight, w.Distance)
		setFloat(&cfg.Weights.FoodWeight, w.Food)
		setFloat(&cfg.Weights.EatBonus, w.EatBonus)
		setFloat(&cfg.Weights.SpaceWeight, w.Space)
		setFloat(&cfg.Weights.WallEdgePenalty, w.WallEdge)
		setFloat(&cfg.Weights.WallNearPenalty, w.WallNear)
		setFloat(&cfg.Weights.DeadEndPenalty, w.DeadEnd)
		setFloat(&cfg.Weights.InvalidScore, w.Invalid)
		setFloat(&cfg.Weights.Discount, w.Discount)
		if w.Aggregate != nil {
			agg, err := lookahead.ParseAggregate(*w.Aggregate)
			if err != nil {
				return policy.Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
			}
			cfg.Weights.Aggregate = agg
		}
	}

	if err := Validate(cfg); err != nil {
		return policy.Config{}, err
	}
	return cfg, nil
}

// Validate rejects tunings the policy cannot run with.
func Validate(cfg policy.Config) error {
	if cfg.Depth < 1 || cfg.Depth > MaxDepth {
		return fmt.Errorf("%w: depth %d outside [1,%d]", ErrInvalid, cfg.Depth, MaxDepth)
	}
	if cfg.SafetyMargin < 0 || cfg.OverrideMargin < 0 {
		return fmt.Errorf("%w: margins must be non-negative", ErrInvalid)
	}
	if d := cfg.Weights.Discount; d <= 0 || d > 1 {
		return fmt.Errorf("%w: discount %v outside (0,1]", ErrInvalid, d)
	}
	switch cfg.Weights.Aggregate {
	case lookahead.AggregateMax, lookahead.AggregateMean:
	default:
		return fmt.Errorf("%w: aggregate %v", ErrInvalid, cfg.Weights.Aggregate)
	}
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
