package models

import (
	"math"
	"math/cmplx"
)

// FrequencyPoint is one sample of a real-valued spectral function.
type FrequencyPoint struct {
	Frequency float64 `json:"frequency" doc:"Frequency in Hz"`
	Value     float64 `json:"value" doc:"Function value at this frequency"`
}

// TransferPoint is one sample of a complex transfer function. The value
// fields are null where the solve failed at that frequency.
type TransferPoint struct {
	Frequency float64  `json:"frequency" doc:"Frequency in Hz"`
	Real      *float64 `json:"real" doc:"Real part"`
	Imag      *float64 `json:"imag" doc:"Imaginary part"`
	Amplitude *float64 `json:"amplitude" doc:"Modulus"`
}

// NewFrequencyPoints zips a frequency axis with the values sampled on it.
func NewFrequencyPoints(frequencies, values []float64) []FrequencyPoint {
	n := min(len(frequencies), len(values))
	out := make([]FrequencyPoint, n)
	for i := range out {
		out[i] = FrequencyPoint{Frequency: frequencies[i], Value: values[i]}
	}
	return out
}

// NewTransferPoints zips a frequency axis with a complex spectrum.
func NewTransferPoints(frequencies []float64, spectrum []complex128) []TransferPoint {
	n := min(len(frequencies), len(spectrum))
	out := make([]TransferPoint, n)
	for i := range out {
		out[i].Frequency = frequencies[i]
		v := spectrum[i]
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			continue
		}
		out[i].Real = Float(real(v))
		out[i].Imag = Float(imag(v))
		out[i].Amplitude = Float(cmplx.Abs(v))
	}
	return out
}

// Spectrum reverses NewTransferPoints; null samples become NaN.
func Spectrum(points []TransferPoint) []complex128 {
	out := make([]complex128, len(points))
	for i, p := range points {
		if p.Real == nil || p.Imag == nil {
			out[i] = cmplx.NaN()
			continue
		}
		out[i] = complex(*p.Real, *p.Imag)
	}
	return out
}

// FiniteOrNil maps NaN and infinities to nil.
func FiniteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return Float(v)
}
