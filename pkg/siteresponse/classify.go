package siteresponse

import (
	"fmt"
	"math"
	"strings"
)

// CodeEC8 is the Eurocode 8 ground-type classification.
const CodeEC8 = "EC8"

// Classify returns the geotechnical class of a site from its Vs30. Boundary
// values belong to the stiffer class. Only the velocity-based EC8 ground
// types A to D are supported; the special classes need data a velocity
// profile does not carry.
func Classify(vs30 float64, code string) (string, error) {
	if !(vs30 > 0) || math.IsInf(vs30, 1) {
		return "", fmt.Errorf("%w: vs30 %v", ErrInvalidProfile, vs30)
	}

	switch strings.ToUpper(code) {
	case CodeEC8, "":
		switch {
		case vs30 >= 800:
			return "A", nil
		case vs30 >= 360:
			return "B", nil
		case vs30 >= 180:
			return "C", nil
		default:
			return "D", nil
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCode, code)
	}
}
