package nufft

import (
	"github.com/nufft2d/nufft2d/fftadapter"
	"github.com/nufft2d/nufft2d/internal/deconvolve"
	"github.com/nufft2d/nufft2d/internal/spread"
	"github.com/nufft2d/nufft2d/logging"
)

// Nufft2D1 computes the type-1 transform (points -> modes):
//
//	fk[k1,k2] = sum_j cj[j] * exp(sign*i*(k1*xj[j] + k2*yj[j]))
//
// for k1 in [-ms/2,(ms-1)/2], k2 in [-mt/2,(mt-1)/2], to relative accuracy
// eps, via spread -> FFT -> deconvolve.
func Nufft2D1(xj, yj []float64, cj []complex128, iflag int, eps float64, ms, mt int64, opts Options) ([]complex128, error) {
	log := opts.logger().WithFields(logging.Fields{"op": "nufft2d1", "nj": len(xj), "ms": ms, "mt": mt, "eps": eps})

	p, err := buildPipeline(eps, ms, mt, opts)
	if err != nil {
		log.Error(err, "pipeline setup failed")
		return nil, err
	}
	if err := checkPoints(xj, yj, opts); err != nil {
		log.Error(err, "bounds check failed")
		return nil, err
	}

	sign := signOf(iflag)
	fw := fftadapter.AllocComplex(int(p.nf1 * p.nf2))
	idx, didSort := spread.SortIndices(p.nf1, p.nf2, xj, yj, p.sopts)
	log.Debug("sorted points", logging.Fields{"did_sort": didSort})

	sOpts := p.sopts
	sOpts.Direction = spread.DirSpread
	if err := spread.Spread(p.nf1, p.nf2, fw, xj, yj, cj, p.k, sOpts, idx); err != nil {
		log.Error(err, "spread failed")
		return nil, err
	}

	plan := fftadapter.Plan2D(p.nf2, p.nf1, sign)
	defer plan.Destroy()
	plan.Execute(fw)

	fk := make([]complex128, ms*mt)
	deconvolve.Shuffle(deconvolve.Divide, p.fwk1, p.fwk2, ms, mt, fk, p.nf1, p.nf2, fw, modeOrderOf(opts.ModeOrd))

	log.Info("transform complete", logging.Fields{"nf1": p.nf1, "nf2": p.nf2, "ns": p.ns})
	return fk, nil
}
