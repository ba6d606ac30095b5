package nufft

import (
	"fmt"

	nufft2d "github.com/nufft2d/nufft2d"
	"github.com/nufft2d/nufft2d/internal/deconvolve"
	"github.com/nufft2d/nufft2d/internal/spread"
	"github.com/nufft2d/nufft2d/kernel"
	"github.com/nufft2d/nufft2d/planner"
)

// kernelGen is a package-level cache of kernel factories keyed by nothing
// more than existing across calls; each call still asks the generator for
// its own (type, ns, beta) key, so concurrent single/many transforms with
// different widths never collide.
var kernelGen = kernel.NewGenerator()

// pipeline bundles the per-call kernel, grid, and Fourier-series state
// shared by both directions of a type 1/2 transform.
type pipeline struct {
	ns    int
	beta  float64
	k     kernel.Kernel
	nf1   int64
	nf2   int64
	fwk1  []float64
	fwk2  []float64
	sopts spread.Opts
}

func buildPipeline(eps float64, ms, mt int64, opts Options) (*pipeline, error) {
	if err := validateEps(eps); err != nil {
		return nil, err
	}
	sigma := opts.UpsampFac
	if sigma <= 1.0 {
		sigma = 2.0
	}
	ns := kernel.RequiredWidth(eps, sigma)
	beta := kernel.ChooseBeta(ns, sigma)
	k, err := kernelGen.Get(kernel.TypeES, ns, beta)
	if err != nil {
		return nil, err
	}

	nf1, err := planner.SetNfType12(ms, planner.Options{UpsampFac: sigma}, ns)
	if err != nil {
		return nil, err
	}
	nf2, err := planner.SetNfType12(mt, planner.Options{UpsampFac: sigma}, ns)
	if err != nil {
		return nil, err
	}
	if nf1*nf2 > planner.MaxNF {
		return nil, nufft2d.ErrMaxNAlloc
	}

	fwk1 := make([]float64, nf1/2+1)
	fwk2 := make([]float64, nf2/2+1)
	k.FSeries(int(nf1), fwk1)
	k.FSeries(int(nf2), fwk2)

	sopts := spread.Opts{
		Ns:       ns,
		Beta:     beta,
		Sigma:    sigma,
		PiRange:  true,
		ChkBnds:  opts.ChkBnds,
		SortMode: int(opts.SpreadSort),
	}
	return &pipeline{ns: ns, beta: beta, k: k, nf1: nf1, nf2: nf2, fwk1: fwk1, fwk2: fwk2, sopts: sopts}, nil
}

// checkPoints runs the bounds check the orchestrator performs before
// spreading whenever ChkBnds is enabled.
func checkPoints(xj, yj []float64, opts Options) error {
	if !opts.ChkBnds {
		return nil
	}
	if err := spread.Check(xj, yj); err != nil {
		return fmt.Errorf("%w: %v", nufft2d.ErrSpreadPtsOutOfRange, err)
	}
	return nil
}

func modeOrderOf(o ModeOrder) int {
	if o == ModeOrderFFT {
		return deconvolve.ModeOrderFFT
	}
	return deconvolve.ModeOrderCMCL
}
