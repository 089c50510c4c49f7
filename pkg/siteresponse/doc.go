// Package siteresponse computes one-dimensional seismic site-response
// parameters from a layered soil profile.
//
// Profiles are passed as parallel slices ordered from the surface down. The
// last element of every slice describes the half-space; its thickness is
// conventionally zero and it is never integrated as a finite interval.
//
// The package provides depth-weighted averaging (the primitive behind
// travel-time velocities and Kappa0), the quarter-wavelength approximation,
// the SH-wave transfer function in Knopoff's formalism and the
// post-processing that consumes their outputs: resonance picking, spectral
// attenuation and EC8 site classification.
//
// Functions are pure. The per-frequency loops of QwlSolve and
// ShTransferFunction can fan out across goroutines through the Workers
// option; results are identical either way.
package siteresponse
