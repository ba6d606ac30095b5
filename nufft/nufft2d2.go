package nufft

import (
	nufft2d "github.com/nufft2d/nufft2d"
	"github.com/nufft2d/nufft2d/fftadapter"
	"github.com/nufft2d/nufft2d/internal/deconvolve"
	"github.com/nufft2d/nufft2d/internal/spread"
	"github.com/nufft2d/nufft2d/logging"
)

// Nufft2D2 computes the type-2 transform (modes -> points):
//
//	cj[j] = sum_{k1,k2} fk[k1,k2] * exp(sign*i*(k1*xj[j] + k2*yj[j]))
//
// via amplify-and-zero-fill (deconvolve direction 2) -> FFT -> interpolate.
func Nufft2D2(xj, yj []float64, fk []complex128, iflag int, eps float64, ms, mt int64, opts Options) ([]complex128, error) {
	log := opts.logger().WithFields(logging.Fields{"op": "nufft2d2", "nj": len(xj), "ms": ms, "mt": mt, "eps": eps})

	if int64(len(fk)) != ms*mt {
		return nil, nufft2d.ErrNDataNotValid
	}

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
	deconvolve.Shuffle(deconvolve.Amplify, p.fwk1, p.fwk2, ms, mt, fk, p.nf1, p.nf2, fw, modeOrderOf(opts.ModeOrd))

	plan := fftadapter.Plan2D(p.nf2, p.nf1, sign)
	defer plan.Destroy()
	plan.Execute(fw)

	idx, didSort := spread.SortIndices(p.nf1, p.nf2, xj, yj, p.sopts)
	log.Debug("sorted points", logging.Fields{"did_sort": didSort})

	cj := make([]complex128, len(xj))
	sOpts := p.sopts
	sOpts.Direction = spread.DirInterpolate
	if err := spread.Spread(p.nf1, p.nf2, fw, xj, yj, cj, p.k, sOpts, idx); err != nil {
		log.Error(err, "interpolate failed")
		return nil, err
	}

	log.Info("transform complete", logging.Fields{"nf1": p.nf1, "nf2": p.nf2, "ns": p.ns})
	return cj, nil
}
