package siteresponse

import (
	"math"
	"math/cmplx"
)

// GetResFreq returns the frequencies and amplitudes of the local maxima of an
// amplitude spectrum. A sample is a maximum when its magnitude is strictly
// greater than both neighbours; the first and last samples never qualify.
func GetResFreq(frequencies, amplitudes []float64) (fn, an []float64) {
	n := min(len(frequencies), len(amplitudes))
	for i := 1; i < n-1; i++ {
		a0 := math.Abs(amplitudes[i-1])
		a1 := math.Abs(amplitudes[i])
		a2 := math.Abs(amplitudes[i+1])
		if a1 > a0 && a1 > a2 {
			fn = append(fn, frequencies[i])
			an = append(an, a1)
		}
	}
	return fn, an
}

// GetResFreqComplex applies GetResFreq to the magnitude of a complex
// spectrum. NaN samples compare false and therefore never form or flank a
// maximum.
func GetResFreqComplex(frequencies []float64, spectrum []complex128) (fn, an []float64) {
	return GetResFreq(frequencies, Magnitude(spectrum))
}

// Magnitude returns |x| for every sample.
func Magnitude(spectrum []complex128) []float64 {
	out := make([]float64, len(spectrum))
	for i, v := range spectrum {
		out[i] = cmplx.Abs(v)
	}
	return out
}
