// Package fftadapter is a thin, uniform wrapper around the external FFT
// library this engine treats as a pluggable collaborator (spec.md's "Out of
// scope: the uniform FFT library"). It gives the orchestrator an
// FFTW-shaped plan/execute/destroy seam while delegating the actual
// transform work to github.com/mjibson/go-dsp/fft, the pack's real
// third-party FFT dependency (see algorithms/spectral/fft.go in the
// teacher repo, which wraps the same library for its 1D STFT path).
package fftadapter

import (
	"runtime"

	"github.com/mjibson/go-dsp/fft"
)

var maxThreads = runtime.GOMAXPROCS(0)

// InitThreads records that the process intends to use multithreaded FFTs.
// go-dsp/fft has no explicit thread-pool object, so this is a no-op kept
// only to preserve the adapter's contract shape (init_threads /
// plan_with_nthreads / plan / execute / destroy) for a future cgo-FFTW
// backend to slot into without touching the orchestrator.
func InitThreads() {}

// PlanWithNThreads records the thread count the orchestrator wants used for
// subsequent plans in this process. Held for parity with the FFTW-style
// contract; go-dsp/fft parallelizes internally per call.
func PlanWithNThreads(n int) {
	if n > 0 {
		maxThreads = n
	}
}

// AllocComplex returns a fresh working buffer of n complex128 zeros, the Go
// analogue of the external library's aligned-allocation call.
func AllocComplex(n int) []complex128 {
	return make([]complex128, n)
}

// Plan is a 2D in-place FFT plan over an nf1 (fast axis) x nf2 (slow axis)
// row-major grid, or a many-plan over howMany independent grids of that
// shape stacked contiguously.
type Plan struct {
	nf1, nf2 int64
	howMany  int
	sign     int
}

// Plan2D builds a single 2D transform plan, row-major with n1 the fast
// axis (matching the working array's layout in spec.md §3), and the given
// FFT sign (+1 or -1).
func Plan2D(n2, n1 int64, sign int) *Plan {
	return &Plan{nf1: n1, nf2: n2, howMany: 1, sign: sign}
}

// PlanMany builds a plan executing howMany independent nf1 x nf2 transforms
// back to back, the seam behind the "many" batched pipeline's simultaneous
// discipline (spec.md §4.6's plan_many_dft contract). go-dsp/fft has no
// native many-transform entry point, so Execute loops the single-transform
// path once per slice; the seam is what matters; a cgo-FFTW backend could
// replace this with one real fftw_plan_many_dft call without the
// orchestrator noticing.
func PlanMany(nf1, nf2 int64, howMany int, sign int) *Plan {
	return &Plan{nf1: nf1, nf2: nf2, howMany: howMany, sign: sign}
}

// Execute runs the plan in place over buf, which must hold
// howMany*nf1*nf2 complex128 values, transform index slowest.
func (p *Plan) Execute(buf []complex128) {
	stride := int(p.nf1 * p.nf2)
	for h := 0; h < p.howMany; h++ {
		transform2D(buf[h*stride:(h+1)*stride], p.nf1, p.nf2, p.sign)
	}
}

// Destroy releases any resources held by the plan. Go's garbage collector
// reclaims the (stateless) Plan itself; Destroy exists so callers written
// against the FFTW-shaped contract have a symmetric release call, and so a
// future cgo-FFTW backend has a place to free its native plan.
func (p *Plan) Destroy() {}

// transform2D runs a row-column decomposition: an nf1-point FFT along the
// fast axis for each of nf2 rows, then an nf2-point FFT along the slow
// axis for each of nf1 columns, both delegated to go-dsp/fft.
func transform2D(buf []complex128, nf1, nf2 int64, sign int) {
	row := make([]complex128, nf1)
	for r := int64(0); r < nf2; r++ {
		base := r * nf1
		copy(row, buf[base:base+nf1])
		signedFFT(row, sign)
		copy(buf[base:base+nf1], row)
	}

	col := make([]complex128, nf2)
	for c := int64(0); c < nf1; c++ {
		for r := int64(0); r < nf2; r++ {
			col[r] = buf[r*nf1+c]
		}
		signedFFT(col, sign)
		for r := int64(0); r < nf2; r++ {
			buf[r*nf1+c] = col[r]
		}
	}
}

// signedFFT computes, in place, sum_n x[n] * exp(sign * i * 2*pi*k*n/N),
// unnormalized. go-dsp/fft.FFT gives the sign=-1 convention directly;
// sign=+1 is obtained via conj(FFT(conj(x))), the standard trick that
// avoids relying on IFFT's built-in 1/N normalization (this engine's FFT
// step must stay unnormalized — the kernel deconvolution step is the only
// place a scale factor belongs).
func signedFFT(x []complex128, sign int) {
	if sign >= 0 {
		conjInPlace(x)
		y := fft.FFT(x)
		copy(x, y)
		conjInPlace(x)
		return
	}
	y := fft.FFT(x)
	copy(x, y)
}

func conjInPlace(x []complex128) {
	for i, v := range x {
		x[i] = complex(real(v), -imag(v))
	}
}
