package siteresponse

import "errors"

var (
	// ErrInvalidDepth is returned for a non-positive integration depth.
	ErrInvalidDepth = errors.New("invalid depth")

	// ErrInvalidProfile is returned for an empty layer stack, parameter slices
	// of different length or non-physical layer values.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrInvalidFrequency is returned for frequency input that is empty,
	// not positive or not strictly increasing.
	ErrInvalidFrequency = errors.New("invalid frequency")

	// ErrSingularSystem marks a per-frequency linear solve failure. The SH
	// solver never returns it; the affected sample becomes NaN instead.
	ErrSingularSystem = errors.New("singular system")

	// ErrMissingPrerequisite is returned when a derived result is requested
	// before the result it depends on has been computed.
	ErrMissingPrerequisite = errors.New("missing prerequisite")

	// ErrUnsupportedCode is returned for an unknown building code.
	ErrUnsupportedCode = errors.New("unsupported building code")
)
