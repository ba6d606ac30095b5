package nufft

import (
	"runtime"
	"sync"

	nufft2d "github.com/nufft2d/nufft2d"
	"github.com/nufft2d/nufft2d/fftadapter"
	"github.com/nufft2d/nufft2d/internal/deconvolve"
	"github.com/nufft2d/nufft2d/internal/spread"
	"github.com/nufft2d/nufft2d/logging"
)

// Nufft2D1Many computes ndata type-1 transforms sharing (xj,yj), amortizing
// the sort and kernel-Fourier-series cost across all of them. ManySeq in
// opts selects the sequential (one shared fw, minimal memory) or
// simultaneous (nth parallel fw slices, one many-FFT per batch) discipline.
func Nufft2D1Many(ndata int, xj, yj []float64, c [][]complex128, iflag int, eps float64, ms, mt int64, opts Options) ([][]complex128, error) {
	log := opts.logger().WithFields(logging.Fields{"op": "nufft2d1_many", "ndata": ndata, "nj": len(xj)})

	if ndata < 1 || len(c) != ndata {
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
	idx, didSort := spread.SortIndices(p.nf1, p.nf2, xj, yj, p.sopts)
	log.Debug("sorted points (amortized across batch)", logging.Fields{"did_sort": didSort})

	stride := int(p.nf1 * p.nf2)
	fkAll := make([][]complex128, ndata)

	if opts.ManySeq == ManySequential {
		fw := fftadapter.AllocComplex(stride)
		plan := fftadapter.Plan2D(p.nf2, p.nf1, sign)
		defer plan.Destroy()

		sOpts := p.sopts
		sOpts.Direction = spread.DirSpread
		for i := 0; i < ndata; i++ {
			for j := range fw {
				fw[j] = 0
			}
			if err := spread.Spread(p.nf1, p.nf2, fw, xj, yj, c[i], p.k, sOpts, idx); err != nil {
				log.Error(err, "spread failed", logging.Fields{"i": i})
				return nil, err
			}
			plan.Execute(fw)
			fk := make([]complex128, ms*mt)
			deconvolve.Shuffle(deconvolve.Divide, p.fwk1, p.fwk2, ms, mt, fk, p.nf1, p.nf2, fw, modeOrderOf(opts.ModeOrd))
			fkAll[i] = fk
		}
		log.Info("sequential many complete", logging.Fields{"ndata": ndata})
		return fkAll, nil
	}

	// Simultaneous discipline: batches of size nth, each thread spreading
	// its own fw slice before one plan_many_dft-equivalent call executes
	// the whole batch.
	nth := runtime.GOMAXPROCS(0)
	if nth < 1 {
		nth = 1
	}
	buf := fftadapter.AllocComplex(nth * stride)
	sOpts := p.sopts
	sOpts.Direction = spread.DirSpread

	for batchStart := 0; batchStart < ndata; batchStart += nth {
		batchSize := nth
		if batchStart+batchSize > ndata {
			batchSize = ndata - batchStart
		}

		errs := make([]error, batchSize)
		var wg sync.WaitGroup
		for bi := 0; bi < batchSize; bi++ {
			wg.Add(1)
			go func(bi int) {
				defer wg.Done()
				slice := buf[bi*stride : (bi+1)*stride]
				for j := range slice {
					slice[j] = 0
				}
				i := batchStart + bi
				if err := spread.Spread(p.nf1, p.nf2, slice, xj, yj, c[i], p.k, sOpts, idx); err != nil {
					errs[bi] = err
				}
			}(bi)
		}
		wg.Wait()
		for _, e := range errs {
			if e != nil {
				log.Error(e, "spread failed in simultaneous batch")
				return nil, e
			}
		}

		plan := fftadapter.PlanMany(p.nf1, p.nf2, batchSize, sign)
		plan.Execute(buf[:batchSize*stride])
		plan.Destroy()

		var dwg sync.WaitGroup
		for bi := 0; bi < batchSize; bi++ {
			dwg.Add(1)
			go func(bi int) {
				defer dwg.Done()
				i := batchStart + bi
				slice := buf[bi*stride : (bi+1)*stride]
				fk := make([]complex128, ms*mt)
				deconvolve.Shuffle(deconvolve.Divide, p.fwk1, p.fwk2, ms, mt, fk, p.nf1, p.nf2, slice, modeOrderOf(opts.ModeOrd))
				fkAll[i] = fk
			}(bi)
		}
		dwg.Wait()
	}

	log.Info("simultaneous many complete", logging.Fields{"ndata": ndata, "nth": nth})
	return fkAll, nil
}

// Nufft2D2Many computes ndata type-2 transforms sharing (xj,yj), the
// batched analogue of Nufft2D2 with the same sequential/simultaneous
// discipline choice as Nufft2D1Many.
func Nufft2D2Many(ndata int, xj, yj []float64, fk [][]complex128, iflag int, eps float64, ms, mt int64, opts Options) ([][]complex128, error) {
	log := opts.logger().WithFields(logging.Fields{"op": "nufft2d2_many", "ndata": ndata, "nj": len(xj)})

	if ndata < 1 || len(fk) != ndata {
		return nil, nufft2d.ErrNDataNotValid
	}
	for _, f := range fk {
		if int64(len(f)) != ms*mt {
			return nil, nufft2d.ErrNDataNotValid
		}
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
	idx, didSort := spread.SortIndices(p.nf1, p.nf2, xj, yj, p.sopts)
	log.Debug("sorted points (amortized across batch)", logging.Fields{"did_sort": didSort})

	stride := int(p.nf1 * p.nf2)
	nj := len(xj)
	cAll := make([][]complex128, ndata)

	if opts.ManySeq == ManySequential {
		fw := fftadapter.AllocComplex(stride)
		plan := fftadapter.Plan2D(p.nf2, p.nf1, sign)
		defer plan.Destroy()

		iOpts := p.sopts
		iOpts.Direction = spread.DirInterpolate
		for i := 0; i < ndata; i++ {
			deconvolve.Shuffle(deconvolve.Amplify, p.fwk1, p.fwk2, ms, mt, fk[i], p.nf1, p.nf2, fw, modeOrderOf(opts.ModeOrd))
			plan.Execute(fw)
			cj := make([]complex128, nj)
			if err := spread.Spread(p.nf1, p.nf2, fw, xj, yj, cj, p.k, iOpts, idx); err != nil {
				log.Error(err, "interpolate failed", logging.Fields{"i": i})
				return nil, err
			}
			cAll[i] = cj
		}
		log.Info("sequential many complete", logging.Fields{"ndata": ndata})
		return cAll, nil
	}

	nth := runtime.GOMAXPROCS(0)
	if nth < 1 {
		nth = 1
	}
	buf := fftadapter.AllocComplex(nth * stride)
	iOpts := p.sopts
	iOpts.Direction = spread.DirInterpolate

	for batchStart := 0; batchStart < ndata; batchStart += nth {
		batchSize := nth
		if batchStart+batchSize > ndata {
			batchSize = ndata - batchStart
		}

		var awg sync.WaitGroup
		for bi := 0; bi < batchSize; bi++ {
			awg.Add(1)
			go func(bi int) {
				defer awg.Done()
				i := batchStart + bi
				slice := buf[bi*stride : (bi+1)*stride]
				deconvolve.Shuffle(deconvolve.Amplify, p.fwk1, p.fwk2, ms, mt, fk[i], p.nf1, p.nf2, slice, modeOrderOf(opts.ModeOrd))
			}(bi)
		}
		awg.Wait()

		plan := fftadapter.PlanMany(p.nf1, p.nf2, batchSize, sign)
		plan.Execute(buf[:batchSize*stride])
		plan.Destroy()

		errs := make([]error, batchSize)
		var wg sync.WaitGroup
		for bi := 0; bi < batchSize; bi++ {
			wg.Add(1)
			go func(bi int) {
				defer wg.Done()
				i := batchStart + bi
				slice := buf[bi*stride : (bi+1)*stride]
				cj := make([]complex128, nj)
				if err := spread.Spread(p.nf1, p.nf2, slice, xj, yj, cj, p.k, iOpts, idx); err != nil {
					errs[bi] = err
					return
				}
				cAll[i] = cj
			}(bi)
		}
		wg.Wait()
		for _, e := range errs {
			if e != nil {
				log.Error(e, "interpolate failed in simultaneous batch")
				return nil, e
			}
		}
	}

	log.Info("simultaneous many complete", logging.Fields{"ndata": ndata, "nth": nth})
	return cAll, nil
}
