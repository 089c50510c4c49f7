package siteresponse

import (
	"math"
	"math/cmplx"

	"github.com/rs/zerolog/log"
)

// ShOptions tunes ShTransferFunction. The zero value computes the anelastic
// response to a vertically incident wave.
type ShOptions struct {
	// IncidenceAngle is the angle of the incoming wave in the half-space,
	// in degrees from the vertical.
	IncidenceAngle float64

	// Elastic ignores the quality factors.
	Elastic bool

	// Workers is the number of frequencies solved concurrently.
	Workers int
}

// ShTransferFunction returns the SH-wave transfer function of a layered
// profile: the ratio of free-surface to half-space displacement, one complex
// value per frequency (Knopoff formalism).
//
// Material damping enters through complex velocities Vs·2iQ/(2iQ-1). For
// every frequency a 2N×2N system is built with a stress-free surface, two
// continuity equations (displacement and stress) per interface and a unit
// incoming wave in the half-space. A frequency whose system is singular is
// reported as cmplx.NaN() and does not stop the computation.
func ShTransferFunction(thicknesses, vs, density, qs, frequencies []float64, opts ShOptions) ([]complex128, error) {
	if err := checkColumns(thicknesses, vs, density, qs); err != nil {
		return nil, err
	}
	if err := checkPositive("velocity", vs); err != nil {
		return nil, err
	}
	if err := checkPositive("density", density); err != nil {
		return nil, err
	}
	if !opts.Elastic {
		if err := checkPositive("quality factor", qs); err != nil {
			return nil, err
		}
	}
	if err := checkFrequencies(frequencies); err != nil {
		return nil, err
	}

	n := len(vs)
	vel := make([]complex128, n)
	for i, v := range vs {
		vel[i] = complex(v, 0)
		if !opts.Elastic {
			q := complex(0, 2*qs[i])
			vel[i] *= q / (q - 1)
		}
	}

	// Snell's law: sin(θ)/v is constant across interfaces. The bidiagonal
	// system anchored at the half-space reduces to a ratio of velocities.
	ray := complex(math.Sin(opts.IncidenceAngle*math.Pi/180), 0) / vel[n-1]

	// Shear modulus times vertical slowness: the stress factor of each layer.
	eta := make([]complex128, n)
	stress := make([]complex128, n)
	for i, v := range vel {
		angle := cmplx.Asin(ray * v)
		eta[i] = cmplx.Cos(angle) / v
		mu := complex(density[i], 0) * v * v
		stress[i] = mu * eta[i]
	}

	out := make([]complex128, len(frequencies))
	forEachFrequency(len(frequencies), opts.Workers, func(i int) {
		out[i] = knopoff(thicknesses, eta, stress, 2*math.Pi*frequencies[i])
	})

	return out, nil
}

// knopoff solves the boundary-condition system at angular frequency omega.
// Unknowns are ordered (down, up) per layer, top to bottom.
func knopoff(thicknesses []float64, eta, stress []complex128, omega float64) complex128 {
	n := len(eta)
	size := 2 * n
	core := newCMatrix(size)

	// Free surface: no shear stress.
	core.set(0, 0, 1)
	core.set(0, 1, -1)

	for k := 0; k < n-1; k++ {
		row, col := 2*k+1, 2*k

		phase := complex(0, omega) * eta[k] * complex(thicknesses[k], 0)
		down := cmplx.Exp(phase)
		up := cmplx.Exp(-phase)

		// Displacement continuity.
		core.set(row, col, down)
		core.set(row, col+1, up)
		core.set(row, col+2, -1)
		core.set(row, col+3, -1)

		// Stress continuity.
		core.set(row+1, col, stress[k]*down)
		core.set(row+1, col+1, -stress[k]*up)
		core.set(row+1, col+2, -stress[k+1])
		core.set(row+1, col+3, stress[k+1])
	}

	// Unit incoming wave in the half-space.
	core.set(size-1, size-1, 1)

	rhs := make([]complex128, size)
	rhs[size-1] = 1

	a, err := core.solve(rhs)
	if err != nil {
		log.Debug().Err(err).Float64("frequency", omega/(2*math.Pi)).Msg("SH system not solvable")
		return cmplx.NaN()
	}

	surface := a[0] + a[1]
	base := 2 * a[size-1]
	return surface / base
}
