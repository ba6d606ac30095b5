package nufft

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/nufft2d/nufft2d/internal/verify"
)

func closeC(t *testing.T, got, want complex128, tol float64, label string) {
	t.Helper()
	if cmplx.Abs(got-want) > tol {
		t.Fatalf("%s: got %v want %v (tol %v)", label, got, want, tol)
	}
}

// Scenario 1: nj=3 unit-sum DC case.
func TestScenarioUnitSumDC(t *testing.T) {
	xj := []float64{0, math.Pi / 2, 0}
	yj := []float64{0, 0, math.Pi / 2}
	cj := []complex128{1, 1, 1}
	opts := DefaultOptions()
	fk, err := Nufft2D1(xj, yj, cj, +1, 1e-9, 1, 1, opts)
	if err != nil {
		t.Fatalf("nufft2d1 failed: %v", err)
	}
	closeC(t, fk[0], 3+0i, 1e-6, "fk[0]")
}

// Scenario 2: nj=1 all-ones case under FFT mode order.
func TestScenarioSinglePointAllOnes(t *testing.T) {
	xj := []float64{0}
	yj := []float64{0}
	cj := []complex128{1}
	opts := DefaultOptions()
	opts.ModeOrd = ModeOrderFFT
	fk, err := Nufft2D1(xj, yj, cj, +1, 1e-9, 2, 2, opts)
	if err != nil {
		t.Fatalf("nufft2d1 failed: %v", err)
	}
	for i, v := range fk {
		closeC(t, v, 1+0i, 1e-6, "fk["+string(rune('0'+i))+"]")
	}
}

// Scenario 3: nj=4 symmetric checkerboard case, CMCL order, checked against
// direct summation (fk[0,0] should vanish, fk[-1,-1] should approach -4).
func TestScenarioCheckerboard(t *testing.T) {
	h := math.Pi / 2
	xj := []float64{h, h, -h, -h}
	yj := []float64{h, -h, h, -h}
	cj := []complex128{1, -1, -1, 1}
	ms, mt := int64(2), int64(2)
	opts := DefaultOptions()
	fk, err := Nufft2D1(xj, yj, cj, +1, 1e-9, ms, mt, opts)
	if err != nil {
		t.Fatalf("nufft2d1 failed: %v", err)
	}
	want := verify.DirectSum1(xj, yj, cj, ms, mt, +1)
	if errRel := verify.RelLinfError(fk, want); errRel > 1e-6 {
		t.Fatalf("checkerboard case relative error too large: %v", errRel)
	}
}

// Scenario 4: type-2 inverse of the checkerboard case recovers the inputs.
// Both transforms are unnormalized, so the inverse is the opposite-sign
// type-2 divided by ms*mt; on this 2x2 mode grid the four points are
// exactly orthogonal, so that recovers cj.
func TestScenarioType2InverseOfCheckerboard(t *testing.T) {
	h := math.Pi / 2
	xj := []float64{h, h, -h, -h}
	yj := []float64{h, -h, h, -h}
	cj := []complex128{1, -1, -1, 1}
	opts := DefaultOptions()
	fk, err := Nufft2D1(xj, yj, cj, +1, 1e-10, 2, 2, opts)
	if err != nil {
		t.Fatalf("nufft2d1 failed: %v", err)
	}
	got, err := Nufft2D2(xj, yj, fk, -1, 1e-10, 2, 2, opts)
	if err != nil {
		t.Fatalf("nufft2d2 failed: %v", err)
	}
	for i := range cj {
		closeC(t, got[i]/4, cj[i], 1e-4, "recovered c")
	}
}

// Scenario 5: type-3 round trip against a two-point direct sum.
func TestScenarioType3RoundTrip(t *testing.T) {
	xj := []float64{0, math.Pi}
	yj := []float64{0, 0}
	cj := []complex128{1, 1}
	s := []float64{0, 1, 2, 3}
	tArr := []float64{0, 0, 0, 0}
	opts := DefaultOptions()
	fk, err := Nufft2D3(xj, yj, cj, +1, 1e-9, s, tArr, opts)
	if err != nil {
		t.Fatalf("nufft2d3 failed: %v", err)
	}
	want := verify.DirectSum3(xj, yj, cj, s, tArr, +1)
	errRel := verify.RelLinfError(fk, want)
	if errRel > 1e-3 {
		t.Fatalf("type-3 relative error too large: %v", errRel)
	}
}

// Scenario 6: bounds check rejects an out-of-range point.
func TestScenarioBoundsCheckRejects(t *testing.T) {
	xj := []float64{10}
	yj := []float64{0}
	cj := []complex128{1}
	opts := DefaultOptions()
	opts.ChkBnds = true
	_, err := Nufft2D1(xj, yj, cj, +1, 1e-6, 4, 4, opts)
	if err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

// Property: direct-summation accuracy across a range of eps.
func TestDirectSummationAccuracy(t *testing.T) {
	nj := 200
	ms, mt := int64(10), int64(10)
	xj := make([]float64, nj)
	yj := make([]float64, nj)
	cj := make([]complex128, nj)
	rngState := uint64(12345)
	next := func() float64 {
		rngState = rngState*6364136223846793005 + 1442695040888963407
		return float64(rngState>>11) / float64(1<<53)
	}
	for i := 0; i < nj; i++ {
		xj[i] = -math.Pi + 2*math.Pi*next()
		yj[i] = -math.Pi + 2*math.Pi*next()
		cj[i] = complex(2*next()-1, 2*next()-1)
	}

	for _, eps := range []float64{1e-3, 1e-6, 1e-9} {
		opts := DefaultOptions()
		got, err := Nufft2D1(xj, yj, cj, +1, eps, ms, mt, opts)
		if err != nil {
			t.Fatalf("nufft2d1 failed at eps=%v: %v", eps, err)
		}
		want := verify.DirectSum1(xj, yj, cj, ms, mt, +1)
		errRel := verify.RelLinfError(got, want)
		if errRel > 50*eps {
			t.Fatalf("eps=%v: relative error %v exceeds tolerance", eps, errRel)
		}
	}
}

// Property: sign symmetry, nufft2d1(+1,c) == conj(nufft2d1(-1,conj(c))).
func TestSignSymmetry(t *testing.T) {
	xj := []float64{0.3, -1.1, 2.0, -0.2}
	yj := []float64{-0.4, 0.9, -2.5, 1.3}
	cj := []complex128{1 + 0.2i, -0.5 + 0.1i, 0.3 - 0.7i, -1 + 0.4i}
	opts := DefaultOptions()

	fkPos, err := Nufft2D1(xj, yj, cj, +1, 1e-10, 6, 6, opts)
	if err != nil {
		t.Fatalf("nufft2d1(+1) failed: %v", err)
	}
	cjConj := make([]complex128, len(cj))
	for i, c := range cj {
		cjConj[i] = cmplx.Conj(c)
	}
	fkNeg, err := Nufft2D1(xj, yj, cjConj, -1, 1e-10, 6, 6, opts)
	if err != nil {
		t.Fatalf("nufft2d1(-1) failed: %v", err)
	}
	for i := range fkPos {
		closeC(t, fkPos[i], cmplx.Conj(fkNeg[i]), 1e-6, "sign symmetry")
	}
}

// Property: mode-order equivalence between CMCL and FFT orderings.
func TestModeOrderEquivalence(t *testing.T) {
	xj := []float64{0.1, -0.6, 1.4}
	yj := []float64{0.7, -1.2, 0.05}
	cj := []complex128{1, -0.5 + 0.2i, 0.3 - 0.1i}
	ms, mt := int64(5), int64(5)

	optsCMCL := DefaultOptions()
	optsCMCL.ModeOrd = ModeOrderCMCL
	optsFFT := DefaultOptions()
	optsFFT.ModeOrd = ModeOrderFFT

	fkCMCL, err := Nufft2D1(xj, yj, cj, +1, 1e-10, ms, mt, optsCMCL)
	if err != nil {
		t.Fatalf("cmcl transform failed: %v", err)
	}
	fkFFT, err := Nufft2D1(xj, yj, cj, +1, 1e-10, ms, mt, optsFFT)
	if err != nil {
		t.Fatalf("fft-order transform failed: %v", err)
	}

	for k2i := int64(0); k2i < mt; k2i++ {
		for k1i := int64(0); k1i < ms; k1i++ {
			// CMCL index0 == mode -m/2; FFT index0 == mode 0.
			k1 := k1i - ms/2
			k2 := k2i - mt/2
			fftK1 := k1
			if fftK1 < 0 {
				fftK1 += ms
			}
			fftK2 := k2
			if fftK2 < 0 {
				fftK2 += mt
			}
			cmclV := fkCMCL[k2i*ms+k1i]
			fftV := fkFFT[fftK2*ms+fftK1]
			closeC(t, cmclV, fftV, 1e-9, "mode order equivalence")
		}
	}
}

// Property: batched simultaneous and sequential disciplines agree, and both
// agree with ndata separate single-transform calls.
func TestBatchedEqualsLoop(t *testing.T) {
	nj := 30
	ndata := 5
	ms, mt := int64(6), int64(6)
	xj := make([]float64, nj)
	yj := make([]float64, nj)
	for i := 0; i < nj; i++ {
		xj[i] = -math.Pi + 2*math.Pi*float64(i)/float64(nj)
		yj[i] = -math.Pi + 2*math.Pi*float64((i*7)%nj)/float64(nj)
	}
	c := make([][]complex128, ndata)
	for d := 0; d < ndata; d++ {
		c[d] = make([]complex128, nj)
		for j := 0; j < nj; j++ {
			c[d][j] = complex(float64(d+1)*0.1+float64(j)*0.01, -float64(j)*0.02)
		}
	}

	optsSeq := DefaultOptions()
	optsSeq.ManySeq = ManySequential
	optsSim := DefaultOptions()
	optsSim.ManySeq = ManySimultaneous

	seqOut, err := Nufft2D1Many(ndata, xj, yj, c, +1, 1e-9, ms, mt, optsSeq)
	if err != nil {
		t.Fatalf("sequential many failed: %v", err)
	}
	simOut, err := Nufft2D1Many(ndata, xj, yj, c, +1, 1e-9, ms, mt, optsSim)
	if err != nil {
		t.Fatalf("simultaneous many failed: %v", err)
	}

	for d := 0; d < ndata; d++ {
		single, err := Nufft2D1(xj, yj, c[d], +1, 1e-9, ms, mt, optsSeq)
		if err != nil {
			t.Fatalf("single transform %d failed: %v", d, err)
		}
		if errRel := verify.RelLinfError(seqOut[d], single); errRel > 8e-9*10 {
			t.Fatalf("sequential batch %d disagrees with single: %v", d, errRel)
		}
		if errRel := verify.RelLinfError(simOut[d], single); errRel > 8e-9*10 {
			t.Fatalf("simultaneous batch %d disagrees with single: %v", d, errRel)
		}
	}
}

func TestNufft2D2ValidatesModeCount(t *testing.T) {
	xj := []float64{0, 1}
	yj := []float64{0, 1}
	fk := []complex128{1, 2, 3}
	_, err := Nufft2D2(xj, yj, fk, +1, 1e-6, 2, 2, DefaultOptions())
	if err == nil {
		t.Fatalf("expected error for mismatched mode count")
	}
}

func TestNufftManyRejectsInvalidNdata(t *testing.T) {
	xj := []float64{0}
	yj := []float64{0}
	_, err := Nufft2D1Many(0, xj, yj, nil, +1, 1e-6, 2, 2, DefaultOptions())
	if err == nil {
		t.Fatalf("expected error for ndata < 1")
	}
}
