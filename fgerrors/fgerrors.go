// Package fgerrors defines the sentinel errors for the optimizer core's
// error taxonomy. Call sites wrap these with fmt.Errorf("%w: ...")
// so callers can dispatch on kind via errors.Is, mirroring the small named
// sentinel-error convention gonum's mat package uses (e.g. a package-level
// ErrShape) rather than a bespoke error-code hierarchy.
package fgerrors

import "errors"

var (
	// ErrDimensionMismatch signals a residual's declared arity/dimension
	// does not match the keys or variables it was built with.
	ErrDimensionMismatch = errors.New("fgerrors: dimension mismatch")

	// ErrMissingKey signals a factor references a key absent from Values.
	ErrMissingKey = errors.New("fgerrors: missing key")

	// ErrNoiseConstruction signals Cholesky/inverse failed while building a
	// noise model from a user-supplied covariance or information matrix.
	ErrNoiseConstruction = errors.New("fgerrors: noise construction failed")

	// ErrLinearSolveFailed signals Cholesky of the normal equations failed
	// at an iteration.
	ErrLinearSolveFailed = errors.New("fgerrors: linear solve failed")

	// ErrNumericalDegeneracy signals a NaN or Inf surfaced in a residual or
	// Jacobian.
	ErrNumericalDegeneracy = errors.New("fgerrors: numerical degeneracy")
)
