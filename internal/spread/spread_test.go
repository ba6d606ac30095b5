package spread

import (
	"math"
	"testing"

	"github.com/nufft2d/nufft2d/kernel"
)

func TestCheckWithinRange(t *testing.T) {
	xj := []float64{0, math.Pi / 2, -math.Pi}
	yj := []float64{0, -math.Pi / 2, math.Pi}
	if err := Check(xj, yj); err != nil {
		t.Fatalf("expected in-range points to pass, got %v", err)
	}
}

func TestCheckOutOfRange(t *testing.T) {
	xj := []float64{10}
	yj := []float64{0}
	if err := Check(xj, yj); err == nil {
		t.Fatalf("expected out-of-range point to fail")
	}
}

func TestSortIndicesOffIsIdentity(t *testing.T) {
	xj := []float64{0.1, 0.2, 0.3}
	yj := []float64{0.1, 0.2, 0.3}
	idx, didSort := SortIndices(64, 64, xj, yj, Opts{SortMode: SortOff, Ns: 8})
	if didSort {
		t.Fatalf("expected didSort=false when SortMode=SortOff")
	}
	for i, v := range idx {
		if int(v) != i {
			t.Fatalf("expected identity permutation, got %v", idx)
		}
	}
}

func TestSortIndicesGroupsBins(t *testing.T) {
	nj := 4096
	xj := make([]float64, nj)
	yj := make([]float64, nj)
	for i := range xj {
		xj[i] = -math.Pi + 2*math.Pi*float64(i)/float64(nj)
		yj[i] = -math.Pi + 2*math.Pi*float64((i*37)%nj)/float64(nj)
	}
	idx, didSort := SortIndices(128, 128, xj, yj, Opts{SortMode: SortOn, Ns: 8})
	if !didSort {
		t.Fatalf("expected didSort=true when SortMode=SortOn")
	}
	if len(idx) != nj {
		t.Fatalf("expected permutation of length %d, got %d", nj, len(idx))
	}
	seen := make(map[int32]bool, nj)
	for _, v := range idx {
		seen[v] = true
	}
	if len(seen) != nj {
		t.Fatalf("expected a permutation, found %d unique indices out of %d", len(seen), nj)
	}
}

func TestSpreadDepositsNonzeroMass(t *testing.T) {
	ns := 8
	beta := kernel.ChooseBeta(ns, 2.0)
	k := kernel.NewESKernel(ns, beta)

	nf1, nf2 := int64(64), int64(64)
	xj := []float64{0.0, 0.5, -1.2}
	yj := []float64{0.0, -0.3, 1.1}
	cj := []complex128{1 + 0i, 0.5 - 0.2i, -1 + 0.3i}

	fw := make([]complex128, nf1*nf2)
	idx, _ := SortIndices(nf1, nf2, xj, yj, Opts{SortMode: SortOn, Ns: ns})

	opts := Opts{Ns: ns, Beta: beta, Direction: DirSpread}
	if err := Spread(nf1, nf2, fw, xj, yj, cj, k, opts, idx); err != nil {
		t.Fatalf("spread failed: %v", err)
	}

	total := complex128(0)
	for _, v := range fw {
		total += v
	}
	wantTotal := complex128(0)
	for _, c := range cj {
		wantTotal += c
	}
	// Spreading scales the total mass by the kernel's own integral; this
	// only checks that the spread grid carries nonzero mass.
	if math.Abs(real(total)) < 1e-9 && math.Abs(real(wantTotal)) > 1e-9 {
		t.Fatalf("expected nonzero spread mass, got %v", total)
	}
}

func TestSpreadEmptyPoints(t *testing.T) {
	k := kernel.NewESKernel(8, 12.0)
	fw := make([]complex128, 16*16)
	err := Spread(16, 16, fw, nil, nil, nil, k, Opts{Ns: 8, Direction: DirSpread}, nil)
	if err != nil {
		t.Fatalf("expected no error for empty point set, got %v", err)
	}
}
