// Package nufft is the transform orchestrator: it wires the kernel,
// planner, spreader, deconvolver, and FFT adapter into the type 1/2/3
// single and batched ("many") pipelines described by the external
// interface.
package nufft

import (
	"math"

	nufft2d "github.com/nufft2d/nufft2d"
	"github.com/nufft2d/nufft2d/logging"
)

// epsMachine is EPS(F) for float64. The engine runs in double precision
// only; there is no single-precision path and no precision option.
const epsMachine = 2.220446049250313e-16

// ModeOrder selects the CMCL or FFT mode index convention for fk.
type ModeOrder int

const (
	ModeOrderCMCL ModeOrder = 0
	ModeOrderFFT  ModeOrder = 1
)

// SortPolicy selects the spreader's coarse-bin sort discipline.
type SortPolicy int

const (
	SortOff       SortPolicy = 0
	SortOn        SortPolicy = 1
	SortHeuristic SortPolicy = 2
)

// ManyDiscipline selects how a batched call amortizes plan/sort cost
// across ndata transforms.
type ManyDiscipline int

const (
	ManySimultaneous ManyDiscipline = 0
	ManySequential   ManyDiscipline = 1
)

// Options is the flat configuration record every public entry point takes,
// matching the options record spec.md's external interface names.
type Options struct {
	Debug       int
	SpreadDebug int
	SpreadSort  SortPolicy
	ChkBnds     bool
	ModeOrd     ModeOrder
	UpsampFac   float64
	ManySeq     ManyDiscipline

	// Logger receives structured progress/debug events; a no-op logger is
	// substituted when nil.
	Logger logging.Logger
}

// DefaultOptions returns sigma=2.0, heuristic sort, bounds-checking, CMCL mode
// order, simultaneous batching — the nominal configuration matching the
// planner's DefaultOptions.
func DefaultOptions() Options {
	return Options{
		SpreadSort: SortHeuristic,
		ChkBnds:    true,
		ModeOrd:    ModeOrderCMCL,
		UpsampFac:  2.0,
		ManySeq:    ManySimultaneous,
		Logger:     logging.GetGlobalLogger(),
	}
}

func (o Options) logger() logging.Logger {
	if o.Logger == nil {
		return &logging.NoOpLogger{}
	}
	return o.Logger
}

// validateEps checks eps against [EPS(F), 1), the machine-epsilon lower
// bound and open upper bound spec.md's invariants require.
func validateEps(eps float64) error {
	if math.IsNaN(eps) || eps < epsMachine || eps >= 1.0 {
		return nufft2d.ErrEpsTooSmall
	}
	return nil
}

// signOf maps the iflag convention (>=0 selects +i, <0 selects -i) to the
// FFT/exponential sign used throughout the pipeline.
func signOf(iflag int) int {
	if iflag >= 0 {
		return 1
	}
	return -1
}
