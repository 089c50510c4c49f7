package siteresponse

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// FrequencyAxis returns n ascending frequencies from fmin to fmax inclusive,
// logarithmically or linearly spaced.
func FrequencyAxis(fmin, fmax float64, n int, log bool) ([]float64, error) {
	switch {
	case n < 1:
		return nil, fmt.Errorf("%w: %d samples", ErrInvalidFrequency, n)
	case !(fmin > 0) || math.IsInf(fmax, 1):
		return nil, fmt.Errorf("%w: range [%v, %v]", ErrInvalidFrequency, fmin, fmax)
	case n == 1:
		return []float64{fmin}, nil
	case !(fmax > fmin):
		return nil, fmt.Errorf("%w: range [%v, %v]", ErrInvalidFrequency, fmin, fmax)
	}

	axis := make([]float64, n)
	if log {
		floats.LogSpan(axis, fmin, fmax)
	} else {
		floats.Span(axis, fmin, fmax)
	}
	return axis, nil
}
