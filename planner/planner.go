// Package planner derives the oversampled grid size, kernel width, and
// type-3 rescaling geometry from the requested tolerance, oversampling
// factor, and mode count (or nonuniform-point half-widths).
package planner

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/nufft2d/nufft2d/kernel"
)

// MaxNF is the compile-time allocation safeguard on nf1*nf2, mirroring
// FINUFFT's MAX_NF cap against runaway grid sizes from pathological inputs.
const MaxNF = int64(1) << 38

// Options carries the planner-level tunables shared by types 1/2/3.
type Options struct {
	// UpsampFac is sigma, the oversampling factor. Nominally 2.0; values
	// in [1.2, 4.0] are supported.
	UpsampFac float64
}

// DefaultOptions returns sigma=2.0, FINUFFT's nominal oversampling factor.
func DefaultOptions() Options {
	return Options{UpsampFac: 2.0}
}

var smallPrimes = []int64{2, 3, 5}

// nextSmoothEven returns the smallest even integer >= n whose prime
// factorization contains only 2, 3, and 5 (an FFT-library-friendly size).
func nextSmoothEven(n int64) int64 {
	if n < 2 {
		n = 2
	}
	if n%2 != 0 {
		n++
	}
	for {
		if isSmooth(n) {
			return n
		}
		n += 2
	}
}

func isSmooth(n int64) bool {
	for _, p := range smallPrimes {
		for n%p == 0 {
			n /= p
		}
	}
	return n == 1
}

// SetNfType12 returns the smallest even, FFT-friendly nf >= max(2*ns,
// ceil(sigma*m)), the grid size used by the types 1 and 2 pipelines.
func SetNfType12(m int64, opts Options, ns int) (int64, error) {
	if opts.UpsampFac <= 1.0 {
		opts.UpsampFac = 2.0
	}
	target := int64(math.Ceil(opts.UpsampFac * float64(m)))
	minNf := int64(2 * ns)
	if target < minNf {
		target = minNf
	}
	nf := nextSmoothEven(target)
	return nf, nil
}

// ArrayWidCen returns the half-width and center of the smallest interval
// containing every value in a — the (X,C) / (S,D) computation type 3 uses
// to shift and rescale sources and targets before the internal type-1/2
// pipeline. Grounded on gonum's floats.Min/Max for a numerically careful
// scan instead of a hand-rolled min/max loop.
func ArrayWidCen(a []float64) (halfWidth, center float64) {
	if len(a) == 0 {
		return 0, 0
	}
	lo := floats.Min(a)
	hi := floats.Max(a)
	center = 0.5 * (hi + lo)
	halfWidth = 0.5 * (hi - lo)
	if halfWidth == 0 {
		halfWidth = 1e-9 // degenerate single-point interval: avoid divide-by-zero downstream
	}
	return halfWidth, center
}

// SetNhgType3 computes the type-3 grid size nf, grid spacing h, and
// rescaling factor gamma for one dimension, given the half-widths of the
// source support X and target (frequency) support S. gamma starts at
// X/(pi/2), so the rescaled sources (x-C)/gamma lie in [-pi/2, pi/2] (the
// source half-width is pi*gamma/2, not pi*gamma); it is then reduced, if
// needed, so the rescaled target frequencies have magnitude < pi/R, where R
// is the kernel's support half-width (ns/2).
func SetNhgType3(s, x float64, opts Options, ns int) (nf int64, h, gamma float64, err error) {
	if opts.UpsampFac <= 1.0 {
		opts.UpsampFac = 2.0
	}
	r := float64(ns) / 2
	if x <= 0 {
		x = 1e-9
	}
	if s <= 0 {
		s = 1e-9
	}
	// Grid size grows with the product of interval widths, the classic
	// type-3 "space-bandwidth product" scaling; nf approx sigma*(2*X*S/pi + ns).
	nfFloat := opts.UpsampFac * (2*x*s/math.Pi + float64(ns))
	nf = nextSmoothEven(int64(math.Ceil(nfFloat)))
	if nf < int64(2*ns) {
		nf = nextSmoothEven(int64(2 * ns))
	}
	gamma = math.Max(x/(math.Pi*0.5), 1e-12)
	// h is the spacing in the rescaled coordinate such that h*gamma*S < pi/R.
	h = 2 * math.Pi / float64(nf)
	// Shrink gamma if needed so the rescaled target frequency stays inside
	// the kernel's aliasing-free band; this mirrors FINUFFT's iterative
	// gamma tightening but resolved directly since h and nf are already fixed.
	maxS := math.Pi / r
	if h*gamma*s >= maxS {
		gamma = maxS / (h * s) * 0.999999
	}
	return nf, h, gamma, nil
}

// RequiredWidth re-exports kernel.RequiredWidth so callers that only import
// planner still have the (eps, sigma) -> ns bound available; kept here as a
// thin alias rather than duplicated logic.
func RequiredWidth(eps, sigma float64) int {
	return kernel.RequiredWidth(eps, sigma)
}
