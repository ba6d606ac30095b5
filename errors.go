package nufft2d

import "errors"

// Sentinel errors returned by the transform orchestrator and its
// collaborators. Callers distinguish the taxonomy with errors.Is.
var (
	// ErrEpsTooSmall is returned when the requested tolerance is below the
	// machine epsilon for the selected precision, or otherwise out of the
	// [EPS(F), 1) range.
	ErrEpsTooSmall = errors.New("nufft2d: eps below machine epsilon or out of range")

	// ErrMaxNAlloc is returned when the planned oversampled grid nf1*nf2
	// exceeds the compile-time allocation safeguard.
	ErrMaxNAlloc = errors.New("nufft2d: oversampled grid exceeds allocation cap")

	// ErrSpreadPtsOutOfRange is returned when chkbnds is enabled and a
	// nonuniform coordinate, before wrapping, falls outside the declared
	// [-3pi-tolslack, 3pi+tolslack] entry range.
	ErrSpreadPtsOutOfRange = errors.New("nufft2d: nonuniform point out of range")

	// ErrSpreadAlloc is returned when the spreader cannot acquire its
	// working buffers.
	ErrSpreadAlloc = errors.New("nufft2d: spreader allocation failed")

	// ErrNDataNotValid is returned when a batched ("many") call is given
	// ndata < 1.
	ErrNDataNotValid = errors.New("nufft2d: ndata must be at least 1")
)
