// Package spread implements the bidirectional transfer between irregular
// points and the oversampled uniform grid: kernel spreading (direction 1),
// interpolation (direction 2), the coarse-bin sort that groups neighboring
// points for cache locality and lock-free parallel writes, and the
// coordinate bounds check.
package spread

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/nufft2d/nufft2d/kernel"
)

// Direction selects spread (points -> grid) or interpolate (grid -> points).
const (
	DirSpread      = 1
	DirInterpolate = 2
)

// SortMode selects whether SortIndices actually reorders points.
const (
	SortOff       = 0
	SortOn        = 1
	SortHeuristic = 2
)

// tolSlack is the allowed slack beyond +/-pi before a coordinate is
// rejected by Check, matching FINUFFT's small numerical-safety margin.
const tolSlack = 1e-10

// Opts carries the spreader configuration for one invocation.
type Opts struct {
	Ns        int
	Beta      float64
	Sigma     float64
	Direction int
	PiRange   bool
	ChkBnds   bool
	SortMode  int
}

// wrap folds a coordinate assumed to lie in [-3pi,3pi] into [-pi,pi], the
// single-wrap contract spec.md's external interface guarantees the
// spreader performs internally.
func wrap(x float64) float64 {
	for x >= math.Pi {
		x -= 2 * math.Pi
	}
	for x < -math.Pi {
		x += 2 * math.Pi
	}
	return x
}

// Check scans the raw (unwrapped) xj,yj and returns an error naming the
// first coordinate whose magnitude exceeds the declared
// [-3pi,3pi] entry range plus slack. Bounds-checking must run before the
// single wrap gridCoord applies internally, or every input would collapse
// into range and chkbnds would never fire.
func Check(xj, yj []float64) error {
	limit := 3*math.Pi + tolSlack
	for j := range xj {
		if math.Abs(xj[j]) > limit || math.Abs(yj[j]) > limit {
			return fmt.Errorf("spread: point %d out of range: x=%v y=%v", j, xj[j], yj[j])
		}
	}
	return nil
}

// SortIndices computes a permutation of [0,nj) that groups points into
// coarse spatial bins of side ~ns on the nf1 x nf2 grid, concatenating bins
// in row-major bin order. Sorting is skipped (identity permutation,
// didSort=false) when nj is too small to amortize the sort cost, or when
// the caller disables it outright.
func SortIndices(nf1, nf2 int64, xj, yj []float64, opts Opts) (idx []int32, didSort bool) {
	nj := len(xj)
	idx = make([]int32, nj)
	for i := range idx {
		idx[i] = int32(i)
	}

	switch opts.SortMode {
	case SortOff:
		return idx, false
	case SortHeuristic:
		if nj < 1<<10 {
			return idx, false
		}
	}

	binSize := opts.Ns
	if binSize < 1 {
		binSize = 1
	}
	numBinsX := int(nf1)/binSize + 1
	numBinsY := int(nf2)/binSize + 1
	if numBinsX < 1 {
		numBinsX = 1
	}
	if numBinsY < 1 {
		numBinsY = 1
	}

	binOf := make([]int32, nj)
	for j := 0; j < nj; j++ {
		gx := gridCoord(xj[j], nf1)
		gy := gridCoord(yj[j], nf2)
		bx := int(gx) / binSize
		by := int(gy) / binSize
		if bx >= numBinsX {
			bx = numBinsX - 1
		}
		if by >= numBinsY {
			by = numBinsY - 1
		}
		binOf[j] = int32(by*numBinsX + bx)
	}

	sort.SliceStable(idx, func(a, b int) bool {
		return binOf[idx[a]] < binOf[idx[b]]
	})
	return idx, true
}

// gridCoord maps a pi-range coordinate to its position on a length-nf axis,
// wrapping into [0,nf). x=0 maps to grid index 0, matching the deconvolve
// step's mode origin (FFT index 0 == mode 0); an extra +pi translation here
// would leave every mode's sign flipped by (-1)^k relative to that origin.
func gridCoord(x float64, nf int64) float64 {
	x = wrap(x)
	g := x / (2 * math.Pi) * float64(nf)
	if g < 0 {
		g += float64(nf)
	}
	if g >= float64(nf) {
		g -= float64(nf)
	}
	return g
}

// Spread performs the direction-1 (accumulate cj*kernel onto fw) or
// direction-2 (interpolate fw*kernel into cj) transfer for every point,
// visiting points in idx order and running one goroutine per contiguous
// chunk of idx (fork-join, no cooperative suspension).
//
// Direction 1 gives each worker a private fw-sized shard to accumulate
// into, summed into the caller's fw after the join — the "per-thread
// private shards reduced after the loop" discipline sanctioned as an
// alternative to disjoint bin scheduling, since it needs no assumption
// about idx's bin geometry to stay race-free. Direction 2 has no such
// hazard (each goroutine only ever writes its own cj[j]) so workers share
// fw read-only.
func Spread(nf1, nf2 int64, fw []complex128, xj, yj []float64, cj []complex128,
	k kernel.Kernel, opts Opts, idx []int32) error {

	nj := len(idx)
	if nj == 0 {
		return nil
	}
	ns := k.Width()

	nWorkers := runtime.GOMAXPROCS(0)
	if nWorkers > nj {
		nWorkers = nj
	}
	if nWorkers < 1 {
		nWorkers = 1
	}

	chunk := (nj + nWorkers - 1) / nWorkers
	errs := make([]error, nWorkers)

	if opts.Direction == DirSpread {
		shards := make([][]complex128, nWorkers)
		var wg sync.WaitGroup
		for w := 0; w < nWorkers; w++ {
			start := w * chunk
			end := start + chunk
			if start >= nj {
				continue
			}
			if end > nj {
				end = nj
			}
			shard := make([]complex128, len(fw))
			shards[w] = shard
			wg.Add(1)
			go func(w, start, end int, shard []complex128) {
				defer wg.Done()
				kx := make([]float64, ns)
				ky := make([]float64, ns)
				wxs := make([]float64, ns)
				wys := make([]float64, ns)
				for ii := start; ii < end; ii++ {
					j := int(idx[ii])
					if err := spreadOnePoint(nf1, nf2, shard, xj[j], yj[j], cj[j], k, kx, ky, wxs, wys); err != nil {
						errs[w] = err
						return
					}
				}
			}(w, start, end, shard)
		}
		wg.Wait()
		for _, e := range errs {
			if e != nil {
				return e
			}
		}
		for _, shard := range shards {
			if shard == nil {
				continue
			}
			for i, v := range shard {
				fw[i] += v
			}
		}
		return nil
	}

	// Direction 2: interpolate, no shared-write hazard.
	var wg sync.WaitGroup
	for w := 0; w < nWorkers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= nj {
			continue
		}
		if end > nj {
			end = nj
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			kx := make([]float64, ns)
			ky := make([]float64, ns)
			wxs := make([]float64, ns)
			wys := make([]float64, ns)
			for ii := start; ii < end; ii++ {
				j := int(idx[ii])
				v, err := interpolateOnePoint(nf1, nf2, fw, xj[j], yj[j], k, kx, ky, wxs, wys)
				if err != nil {
					errs[w] = err
					return
				}
				cj[j] = v
			}
		}(w, start, end)
	}
	wg.Wait()
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// stencil fills kx/wxs for one axis: the ns integer grid cells nearest gx
// (the point's fractional grid coordinate) and the kernel weight at each.
func stencil(g float64, nf int64, ns int, k kernel.Kernel, coordOut, weightOut []float64) []int64 {
	i0 := int64(math.Ceil(g - float64(ns)/2))
	for i := 0; i < ns; i++ {
		gi := i0 + int64(i)
		coordOut[i] = g - float64(gi)
	}
	k.Eval(coordOut, weightOut)
	idxs := make([]int64, ns)
	for i := 0; i < ns; i++ {
		gi := i0 + int64(i)
		gi %= nf
		if gi < 0 {
			gi += nf
		}
		idxs[i] = gi
	}
	return idxs
}

func spreadOnePoint(nf1, nf2 int64, fw []complex128, x, y float64, c complex128,
	k kernel.Kernel, kx, ky, wxs, wys []float64) error {

	ns := k.Width()
	gx := gridCoord(x, nf1)
	gy := gridCoord(y, nf2)
	ixs := stencil(gx, nf1, ns, k, kx, wxs)
	iys := stencil(gy, nf2, ns, k, ky, wys)

	for a := 0; a < ns; a++ {
		wy := wys[a]
		if wy == 0 {
			continue
		}
		rowBase := iys[a] * nf1
		for b := 0; b < ns; b++ {
			wx := wxs[b]
			if wx == 0 {
				continue
			}
			fw[rowBase+ixs[b]] += c * complex(wx*wy, 0)
		}
	}
	return nil
}

func interpolateOnePoint(nf1, nf2 int64, fw []complex128, x, y float64,
	k kernel.Kernel, kx, ky, wxs, wys []float64) (complex128, error) {

	ns := k.Width()
	gx := gridCoord(x, nf1)
	gy := gridCoord(y, nf2)
	ixs := stencil(gx, nf1, ns, k, kx, wxs)
	iys := stencil(gy, nf2, ns, k, ky, wys)

	var sum complex128
	for a := 0; a < ns; a++ {
		wy := wys[a]
		if wy == 0 {
			continue
		}
		rowBase := iys[a] * nf1
		for b := 0; b < ns; b++ {
			wx := wxs[b]
			if wx == 0 {
				continue
			}
			sum += fw[rowBase+ixs[b]] * complex(wx*wy, 0)
		}
	}
	return sum, nil
}
