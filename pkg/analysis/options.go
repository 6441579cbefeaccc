package analysis

import (
	"fmt"

	"github.com/atlas-kg/atlas/pkg/score"

	"github.com/go-playground/validator"
)

// Default tunables for impact analysis.
const (
	DefaultMaxDepth    = 5
	DefaultMaxEntities = 100
)

// CriticalImportance is the importance cutoff at and above which an entity
// is treated as critical.
var CriticalImportance = 0.9

// Options controls a single analysis operation. Construct with
// DefaultOptions and override individual fields; a zero Options value is
// invalid and rejected.
type Options struct {
	// MaxDepth bounds the traversal distance in hops.
	MaxDepth int `validate:"gt=0"`
	// MaxEntities caps the number of paths a traversal may return.
	MaxEntities int `validate:"gt=0"`
	// DecayFactor is the per-hop retention multiplier beyond the first hop.
	DecayFactor float64 `validate:"gt=0,lte=1"`
	// IncludeImportance controls whether entity importance is scored. When
	// false the impact score is based on depth alone.
	IncludeImportance bool
	// ForceRefresh bypasses the result cache for cached operations.
	ForceRefresh bool
}

// DefaultOptions returns the standard analysis tunables.
func DefaultOptions() Options {
	return Options{
		MaxDepth:          DefaultMaxDepth,
		MaxEntities:       DefaultMaxEntities,
		DecayFactor:       score.DefaultDecayFactor,
		IncludeImportance: true,
	}
}

var optionsValidator = validator.New()

// resolve applies defaults for a nil options pointer and rejects invalid
// configuration synchronously; invalid options are never silently
// corrected.
func resolve(opts *Options) (Options, error) {
	if opts == nil {
		return DefaultOptions(), nil
	}
	if err := optionsValidator.Struct(opts); err != nil {
		return Options{}, fmt.Errorf("invalid analysis options: %w", err)
	}
	return *opts, nil
}
