// Package deconvolve implements the post/pre-FFT scaling and mode-order
// shuffle between the user-facing mode array fk and the FFT-ordered
// oversampled working array fw.
package deconvolve

// Direction selects which way the scaling runs.
const (
	// Divide scales fw by 1/(kernel FT) into fk (post-FFT, type 1).
	Divide = 1
	// Amplify scales fk by 1/(kernel FT) into fw, zero-filling the rest of
	// fw (pre-FFT, type 2).
	Amplify = 2
)

// ModeOrder selects the mode indexing convention.
const (
	ModeOrderCMCL = 0 // index 0 == mode -m/2
	ModeOrderFFT  = 1 // index 0 == mode 0, natural FFT layout
)

// modeToFFTIndex maps a signed mode k in [-nf/2, nf/2) to its index in the
// FFT-ordered working array of length nf.
func modeToFFTIndex(k, nf int64) int64 {
	if k >= 0 {
		return k
	}
	return k + nf
}

// kernelScale returns 1/fwkerhalf[|k|], exploiting that the kernel's
// Fourier series is real, even, and precomputed only for k >= 0.
func kernelScale(fwkerhalf []float64, k int64) float64 {
	if k < 0 {
		k = -k
	}
	return 1.0 / fwkerhalf[k]
}

// Shuffle performs the direction-1 (divide, post-FFT) or direction-2
// (amplify, pre-FFT) scaling between fk (ms x mt, in modeOrder layout) and
// fw (nf1 x nf2, row-major, FFT-ordered, nf1 fast axis).
//
// Direction 1: fk[k1,k2] = fw[kf1 + nf1*kf2] / (fwkerhalf1[|k1|]*fwkerhalf2[|k2|])
// Direction 2: fw[kf1 + nf1*kf2] = fk[k1,k2] / (fwkerhalf1[|k1|]*fwkerhalf2[|k2|]),
// all other fw cells zeroed.
func Shuffle(direction int, fwkerhalf1, fwkerhalf2 []float64, ms, mt int64,
	fk []complex128, nf1, nf2 int64, fw []complex128, modeOrder int) {

	if direction == Amplify {
		for i := range fw {
			fw[i] = 0
		}
	}

	for k2i := int64(0); k2i < mt; k2i++ {
		k2 := modeIndexToSigned(k2i, mt, modeOrder)
		kf2 := modeToFFTIndex(k2, nf2)
		scale2 := kernelScale(fwkerhalf2, k2)

		fkRowBase := k2i * ms
		fwRowBase := kf2 * nf1

		for k1i := int64(0); k1i < ms; k1i++ {
			k1 := modeIndexToSigned(k1i, ms, modeOrder)
			kf1 := modeToFFTIndex(k1, nf1)
			scale := scale2 * kernelScale(fwkerhalf1, k1)

			fkIdx := fkRowBase + k1i
			fwIdx := fwRowBase + kf1

			switch direction {
			case Divide:
				fk[fkIdx] = fw[fwIdx] * complex(scale, 0)
			case Amplify:
				fw[fwIdx] = fk[fkIdx] * complex(scale, 0)
			}
		}
	}
}

// modeIndexToSigned converts a 0-based storage index in fk along one axis
// into its signed mode number, according to the requested mode ordering.
//
// CMCL (0): index 0 is mode -m/2 (ascending frequency).
// FFT  (1): index 0 is mode 0, negative frequencies occupy the upper half.
func modeIndexToSigned(idx, m int64, modeOrder int) int64 {
	if modeOrder == ModeOrderFFT {
		if idx < (m+1)/2 {
			return idx
		}
		return idx - m
	}
	return idx - m/2
}
