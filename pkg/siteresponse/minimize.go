package siteresponse

import "math"

const (
	// qwlTolerance is the absolute depth tolerance of the quarter-wavelength
	// search, in metres.
	qwlTolerance = 1e-5
	qwlMaxEval   = 500
)

var (
	sqrtEps    = math.Sqrt(2.220446049250313e-16)
	goldenMean = 0.5 * (3 - math.Sqrt(5))
)

// minimizeBounded returns the abscissa minimising f on [lo, hi] using Brent's
// bounded method: golden-section steps with parabolic interpolation when the
// last three points allow it. f is never evaluated at the interval ends.
func minimizeBounded(f func(float64) float64, lo, hi, xtol float64, maxEval int) float64 {
	a, b := lo, hi

	// x is the best point so far, w the second best and v the previous w.
	x := a + goldenMean*(b-a)
	w, v := x, x
	fx := f(x)
	fw, fv := fx, fx
	eval := 1

	var d, e float64
	mid := 0.5 * (a + b)
	tol1 := sqrtEps*math.Abs(x) + xtol/3
	tol2 := 2 * tol1

	for math.Abs(x-mid) > tol2-0.5*(b-a) {
		golden := true

		if math.Abs(e) > tol1 {
			golden = false
			r := (x - w) * (fx - fv)
			q := (x - v) * (fx - fw)
			p := (x-v)*q - (x-w)*r
			q = 2 * (q - r)
			if q > 0 {
				p = -p
			}
			q = math.Abs(q)
			r = e
			e = d

			if math.Abs(p) < math.Abs(0.5*q*r) && p > q*(a-x) && p < q*(b-x) {
				d = p / q
				u := x + d
				if u-a < tol2 || b-u < tol2 {
					d = tol1 * sign(mid-x)
				}
			} else {
				golden = true
			}
		}

		if golden {
			if x >= mid {
				e = a - x
			} else {
				e = b - x
			}
			d = goldenMean * e
		}

		u := x + sign(d)*math.Max(math.Abs(d), tol1)
		fu := f(u)
		eval++

		if fu <= fx {
			if u >= x {
				a = x
			} else {
				b = x
			}
			v, fv = w, fw
			w, fw = x, fx
			x, fx = u, fu
		} else {
			if u < x {
				a = u
			} else {
				b = u
			}
			switch {
			case fu <= fw || w == x:
				v, fv = w, fw
				w, fw = u, fu
			case fu <= fv || v == x || v == w:
				v, fv = u, fu
			}
		}

		mid = 0.5 * (a + b)
		tol1 = sqrtEps*math.Abs(x) + xtol/3
		tol2 = 2 * tol1

		if eval >= maxEval {
			break
		}
	}

	return x
}

// sign returns -1 for negative x and +1 otherwise, zero included.
func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
