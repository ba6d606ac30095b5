package nufft

import (
	"math"

	nufft2d "github.com/nufft2d/nufft2d"
	"github.com/nufft2d/nufft2d/fftadapter"
	"github.com/nufft2d/nufft2d/internal/spread"
	"github.com/nufft2d/nufft2d/kernel"
	"github.com/nufft2d/nufft2d/logging"
	"github.com/nufft2d/nufft2d/planner"
)

// Nufft2D3 computes the type-3 transform (points -> points, arbitrary
// target frequencies):
//
//	fk[k] = sum_j cj[j] * exp(sign*i*(s[k]*xj[j] + t[k]*yj[j]))
//
// by centering and rescaling both source and target supports, spreading the
// rescaled sources onto an nf1 x nf2 grid, and then feeding that raw spread
// grid to a genuine type-2 evaluation at the rescaled targets, treating the
// grid's own nf1,nf2 as the type-2's mode counts. The type-2 call builds its
// own, independently oversampled grid, amplifies the spread grid into it,
// runs its own FFT, and interpolates at the rescaled targets — the spread
// grid never gets an FFT or deconvolve of its own. A final division by the
// first kernel's Fourier transform at the (continuous) target frequencies
// corrects the spreading bias, together with the center-shift phase.
func Nufft2D3(xj, yj []float64, cj []complex128, iflag int, eps float64, s, t []float64, opts Options) ([]complex128, error) {
	log := opts.logger().WithFields(logging.Fields{"op": "nufft2d3", "nj": len(xj), "nk": len(s), "eps": eps})

	if err := validateEps(eps); err != nil {
		log.Error(err, "invalid eps")
		return nil, err
	}
	if len(s) != len(t) {
		return nil, nufft2d.ErrNDataNotValid
	}
	sign := signOf(iflag)
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

	x1, c1 := planner.ArrayWidCen(xj)
	s1, d1 := planner.ArrayWidCen(s)
	x2, c2 := planner.ArrayWidCen(yj)
	s2, d2 := planner.ArrayWidCen(t)

	popts := planner.Options{UpsampFac: sigma}
	nf1, h1, gamma1, err := planner.SetNhgType3(s1, x1, popts, ns)
	if err != nil {
		return nil, err
	}
	nf2, h2, gamma2, err := planner.SetNhgType3(s2, x2, popts, ns)
	if err != nil {
		return nil, err
	}
	if nf1*nf2 > planner.MaxNF {
		return nil, nufft2d.ErrMaxNAlloc
	}

	nj := len(xj)
	cjp := make([]complex128, nj)
	xjp := make([]float64, nj)
	yjp := make([]float64, nj)
	sgn := float64(sign)
	for j := 0; j < nj; j++ {
		phase := sgn * (d1*xj[j] + d2*yj[j])
		cjp[j] = cj[j] * complex(math.Cos(phase), math.Sin(phase))
		xjp[j] = (xj[j] - c1) / gamma1
		yjp[j] = (yj[j] - c2) / gamma2
	}

	sopts := spread.Opts{
		Ns:       ns,
		Beta:     beta,
		Sigma:    sigma,
		PiRange:  true,
		ChkBnds:  opts.ChkBnds,
		SortMode: int(opts.SpreadSort),
	}
	if err := checkPoints(xjp, yjp, opts); err != nil {
		log.Error(err, "rescaled source out of range")
		return nil, err
	}

	fw := fftadapter.AllocComplex(int(nf1 * nf2))
	idx, didSort := spread.SortIndices(nf1, nf2, xjp, yjp, sopts)
	log.Debug("sorted rescaled sources", logging.Fields{"did_sort": didSort})

	spreadOpts := sopts
	spreadOpts.Direction = spread.DirSpread
	if err := spread.Spread(nf1, nf2, fw, xjp, yjp, cjp, k, spreadOpts, idx); err != nil {
		log.Error(err, "spread failed")
		return nil, err
	}

	nk := len(s)
	skp := make([]float64, nk)
	tkp := make([]float64, nk)
	for kk := 0; kk < nk; kk++ {
		skp[kk] = h1 * gamma1 * (s[kk] - d1)
		tkp[kk] = h2 * gamma2 * (t[kk] - d2)
	}

	// The raw spread grid, never FFT'd or deconvolved on its own, is fed
	// to a genuine type-2 evaluation with nf1,nf2 standing in for that
	// call's own mode counts (ms,mt): it builds its own further-oversampled
	// grid, amplifies fw into it, runs its own FFT, and interpolates at
	// the rescaled targets. fw's storage order already matches gridCoord's
	// x=0-maps-to-0 convention index-for-index, so the inner amplify step
	// must read it as FFT-ordered rather than under the caller's ModeOrd.
	innerOpts := opts
	innerOpts.ModeOrd = ModeOrderFFT
	fk, err := Nufft2D2(skp, tkp, fw, iflag, eps, nf1, nf2, innerOpts)
	if err != nil {
		log.Error(err, "inner type-2 evaluation failed")
		return nil, err
	}

	phiS := make([]float64, nk)
	phiT := make([]float64, nk)
	k.NUFT(skp, phiS)
	k.NUFT(tkp, phiT)
	for kk := 0; kk < nk; kk++ {
		scale := 1.0 / (phiS[kk] * phiT[kk])
		shift := sgn * ((s[kk]-d1)*c1 + (t[kk]-d2)*c2)
		phase := complex(math.Cos(shift), math.Sin(shift))
		fk[kk] = fk[kk] * complex(scale, 0) * phase
	}

	log.Info("transform complete", logging.Fields{"nf1": nf1, "nf2": nf2, "ns": ns})
	return fk, nil
}
