package siteresponse

import (
	"fmt"
	"math"
)

// DepthAverage returns the thickness-weighted average of values from the
// surface down to depth z.
//
// Every layer lying entirely above z contributes its full thickness. The
// first layer reaching or crossing z, or the half-space when z lies below the
// last interface, contributes only the remaining depth and accumulation stops
// there. When z coincides with the last interface the half-space contributes
// nothing. A single-layer profile returns its value unchanged.
func DepthAverage(thicknesses, values []float64, z float64) (float64, error) {
	if err := checkColumns(thicknesses, values); err != nil {
		return 0, err
	}
	if err := checkDepth(z); err != nil {
		return 0, err
	}

	return depthAverage(thicknesses, values, z), nil
}

// depthAverage is the unchecked kernel shared by every depth integral. It is
// the inner loop of the quarter-wavelength search and must not allocate.
func depthAverage(thicknesses, values []float64, z float64) float64 {
	last := len(thicknesses) - 1
	if last == 0 {
		return values[0]
	}

	var top, sum float64
	for i, h := range thicknesses {
		if i != last && top+h < z {
			sum += h * values[i]
			top += h
			continue
		}
		sum += (z - top) * values[i]
		break
	}

	return sum / z
}

// TTAverageVelocity returns the travel-time average velocity down to depth
// z (Vs30 for shear velocities and z = 30 m).
//
// Travel time, not velocity, is additive across layers, so the average is
// taken on slowness and inverted.
func TTAverageVelocity(thicknesses, velocities []float64, z float64) (float64, error) {
	if err := checkColumns(thicknesses, velocities); err != nil {
		return 0, err
	}
	if err := checkPositive("velocity", velocities); err != nil {
		return 0, err
	}
	if err := checkDepth(z); err != nil {
		return 0, err
	}

	if len(velocities) == 1 {
		return velocities[0], nil
	}

	return 1 / depthAverage(thicknesses, slowness(velocities), z), nil
}

// TotalDepth returns the summed thickness of all finite layers, excluding
// the half-space.
func TotalDepth(thicknesses []float64) float64 {
	var z float64
	for _, h := range thicknesses[:max(len(thicknesses)-1, 0)] {
		z += h
	}
	return z
}

func slowness(velocities []float64) []float64 {
	s := make([]float64, len(velocities))
	for i, v := range velocities {
		s[i] = 1 / v
	}
	return s
}

func checkDepth(z float64) error {
	if !(z > 0) || math.IsInf(z, 1) {
		return fmt.Errorf("%w: %v", ErrInvalidDepth, z)
	}
	return nil
}

func checkColumns(thicknesses []float64, columns ...[]float64) error {
	if len(thicknesses) == 0 {
		return fmt.Errorf("%w: empty layer stack", ErrInvalidProfile)
	}
	for _, c := range columns {
		if len(c) != len(thicknesses) {
			return fmt.Errorf("%w: %d values for %d layers", ErrInvalidProfile, len(c), len(thicknesses))
		}
	}
	for i, h := range thicknesses[:len(thicknesses)-1] {
		if !(h >= 0) || math.IsInf(h, 1) {
			return fmt.Errorf("%w: layer %d thickness %v", ErrInvalidProfile, i, h)
		}
	}
	return nil
}

func checkPositive(name string, values []float64) error {
	for i, v := range values {
		if !(v > 0) || math.IsInf(v, 1) {
			return fmt.Errorf("%w: layer %d %s %v", ErrInvalidProfile, i, name, v)
		}
	}
	return nil
}

func checkFrequencies(frequencies []float64) error {
	if len(frequencies) == 0 {
		return fmt.Errorf("%w: empty frequency axis", ErrInvalidFrequency)
	}
	for i, f := range frequencies {
		if !(f > 0) || math.IsInf(f, 1) {
			return fmt.Errorf("%w: sample %d is %v", ErrInvalidFrequency, i, f)
		}
		if i > 0 && !(f > frequencies[i-1]) {
			return fmt.Errorf("%w: sample %d (%v) does not follow %v", ErrInvalidFrequency, i, f, frequencies[i-1])
		}
	}
	return nil
}
