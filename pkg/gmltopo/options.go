package gmltopo

import (
	"github.com/go-logr/logr"

	"github.com/beetlebugorg/gmltopo/internal/topology"
)

// Options configures a Theme.
type Options struct {
	// MaxTraversalSteps caps a single face walk during detection. A walk
	// that does not close within this many edges fails with a
	// *TraversalLimitError. Default is 1,000,000.
	MaxTraversalSteps int

	// ErrorLimit caps the number of stored errors per kind. Errors beyond
	// the limit are still counted. Zero stores every error.
	ErrorLimit int

	// SuppressDuplicates makes LoadFile drop immediately repeated points.
	SuppressDuplicates bool

	// Logger receives diagnostics. V(1) logs per-theme summaries and V(2)
	// per-feature detail. The zero value discards everything.
	Logger logr.Logger
}

// DefaultOptions returns theme options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxTraversalSteps: topology.DefaultMaxTraversalSteps,
		ErrorLimit:        0,
		Logger:            logr.Discard(),
	}
}
