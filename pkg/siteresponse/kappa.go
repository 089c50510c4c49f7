package siteresponse

import "math"

// Kappa0 returns the high-frequency attenuation parameter of a profile down to
// depth z, the depth average of z/(v·Q). A zero z selects the total depth of
// the finite layers.
func Kappa0(thicknesses, velocities, q []float64, z float64) (float64, error) {
	if err := checkColumns(thicknesses, velocities, q); err != nil {
		return 0, err
	}
	if err := checkPositive("velocity", velocities); err != nil {
		return 0, err
	}
	if err := checkPositive("quality factor", q); err != nil {
		return 0, err
	}

	if z == 0 {
		z = TotalDepth(thicknesses)
	}
	if err := checkDepth(z); err != nil {
		return 0, err
	}

	par := make([]float64, len(velocities))
	for i := range par {
		par[i] = z / (velocities[i] * q[i])
	}

	return depthAverage(thicknesses, par, z), nil
}

// AttenuationDecay returns the spectral decay exp(-π·κ0·f) at every frequency.
func AttenuationDecay(frequencies []float64, kappa0 float64) []float64 {
	out := make([]float64, len(frequencies))
	for i, f := range frequencies {
		out[i] = math.Exp(-math.Pi * kappa0 * f)
	}
	return out
}
