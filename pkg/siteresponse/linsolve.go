package siteresponse

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// cmatrix is a dense square complex matrix in row-major order.
type cmatrix struct {
	n    int
	data []complex128
}

func newCMatrix(n int) *cmatrix {
	return &cmatrix{n: n, data: make([]complex128, n*n)}
}

func (m *cmatrix) set(r, c int, v complex128) {
	m.data[r*m.n+c] = v
}

// solve returns x with m·x = b. The complex system is solved through its
// real embedding
//
//	[Re(m) -Im(m)] [Re(x)]   [Re(b)]
//	[Im(m)  Re(m)] [Im(x)] = [Im(b)]
//
// whose determinant is |det m|², so it is singular exactly when m is. An
// ill-conditioned but nonsingular system still yields its solution; only an
// exactly singular factorisation or a non-finite solution is reported as
// singular.
func (m *cmatrix) solve(b []complex128) ([]complex128, error) {
	n := m.n
	a := mat.NewDense(2*n, 2*n, nil)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			re, im := real(m.data[r*n+c]), imag(m.data[r*n+c])
			a.Set(r, c, re)
			a.Set(r, c+n, -im)
			a.Set(r+n, c, im)
			a.Set(r+n, c+n, re)
		}
	}

	rhs := mat.NewVecDense(2*n, nil)
	for i, v := range b {
		rhs.SetVec(i, real(v))
		rhs.SetVec(i+n, imag(v))
	}

	var lu mat.LU
	lu.Factorize(a)

	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, fmt.Errorf("%w: %v", ErrSingularSystem, err)
		}
		log.Debug().Float64("condition", float64(cond)).Msg("Ill-conditioned system")
	}

	out := make([]complex128, n)
	for i := range out {
		re, im := x.AtVec(i), x.AtVec(i+n)
		if math.IsNaN(re) || math.IsInf(re, 0) || math.IsNaN(im) || math.IsInf(im, 0) {
			return nil, fmt.Errorf("%w: non-finite solution", ErrSingularSystem)
		}
		out[i] = complex(re, im)
	}
	return out, nil
}
