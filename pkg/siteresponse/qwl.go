package siteresponse

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultQwlMaxDepth caps the quarter-wavelength search interval, in metres.
// The natural bound max(v)/(4f) diverges as f approaches zero.
const DefaultQwlMaxDepth = 10000.0

// QwlOptions tunes QwlSolve. The zero value searches down to
// DefaultQwlMaxDepth, uses the half-space as impedance reference and runs
// sequentially.
type QwlOptions struct {
	// RefVelocity and RefDensity set the reference impedance of the
	// amplification factor. Zero selects the half-space layer.
	RefVelocity float64
	RefDensity  float64

	// MaxDepth caps the search interval. Zero selects DefaultQwlMaxDepth.
	MaxDepth float64

	// Workers is the number of frequencies solved concurrently.
	Workers int
}

// QwlResult holds the quarter-wavelength parameters, one element per input
// frequency.
type QwlResult struct {
	Depth         []float64 `json:"depth"`
	Velocity      []float64 `json:"velocity"`
	Density       []float64 `json:"density"`
	Amplification []float64 `json:"amplification"`
}

// QwlSolve solves the quarter-wavelength problem (Boore, 2003).
//
// For every frequency f it finds the depth z whose quarter wavelength equals
// the travel distance implied by the average slowness s(z) down to that
// depth, i.e. the minimiser of |z - 1/(4 f s(z))|. The average velocity and
// density at that depth give the square-root impedance amplification
// relative to the reference layer.
func QwlSolve(thicknesses, velocities, densities, frequencies []float64, opts QwlOptions) (QwlResult, error) {
	if err := checkColumns(thicknesses, velocities, densities); err != nil {
		return QwlResult{}, err
	}
	if err := checkPositive("velocity", velocities); err != nil {
		return QwlResult{}, err
	}
	if err := checkPositive("density", densities); err != nil {
		return QwlResult{}, err
	}
	if err := checkFrequencies(frequencies); err != nil {
		return QwlResult{}, err
	}

	last := len(velocities) - 1
	vref, dref := opts.RefVelocity, opts.RefDensity
	if vref == 0 {
		vref = velocities[last]
	}
	if dref == 0 {
		dref = densities[last]
	}
	if !(vref > 0) || !(dref > 0) {
		return QwlResult{}, fmt.Errorf("%w: reference impedance %v x %v", ErrInvalidProfile, vref, dref)
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultQwlMaxDepth
	}

	slow := slowness(velocities)
	vmax := floats.Max(velocities)

	n := len(frequencies)
	res := QwlResult{
		Depth:         make([]float64, n),
		Velocity:      make([]float64, n),
		Density:       make([]float64, n),
		Amplification: make([]float64, n),
	}

	forEachFrequency(n, opts.Workers, func(i int) {
		f := frequencies[i]
		misfit := func(z float64) float64 {
			if z <= 0 {
				return math.Inf(1)
			}
			return math.Abs(z - 1/(4*f*depthAverage(thicknesses, slow, z)))
		}

		upper := math.Min(vmax/(4*f), maxDepth)
		z := minimizeBounded(misfit, 0, upper, qwlTolerance, qwlMaxEval)

		v := 1 / depthAverage(thicknesses, slow, z)
		d := depthAverage(thicknesses, densities, z)

		res.Depth[i] = z
		res.Velocity[i] = v
		res.Density[i] = d
		res.Amplification[i] = math.Sqrt((dref * vref) / (d * v))
	})

	return res, nil
}

// QwlImpedance returns the square-root impedance amplification of
// quarter-wavelength velocities and densities against a reference
// velocity and density.
func QwlImpedance(velocities, densities []float64, vref, dref float64) ([]float64, error) {
	if len(velocities) != len(densities) {
		return nil, fmt.Errorf("%w: %d velocities for %d densities", ErrInvalidProfile, len(velocities), len(densities))
	}
	if !(vref > 0) || !(dref > 0) {
		return nil, fmt.Errorf("%w: reference impedance %v x %v", ErrInvalidProfile, vref, dref)
	}

	amp := make([]float64, len(velocities))
	for i := range amp {
		amp[i] = math.Sqrt((dref * vref) / (densities[i] * velocities[i]))
	}
	return amp, nil
}
