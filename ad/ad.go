// Package ad implements the automatic-differentiation Jacobian driver:
// residual evaluation functions are written once, polymorphic
// over dualnum.Scalar, and this package extracts a stacked k×N Jacobian
// from a slice of dualnum.Dual outputs whose ε-vectors were seeded by each
// input variable's own Seed method (package lie) using the ⊕ retraction.
//
// It also exposes a numerical-differentiation reference path built on
// gonum's diff/fd.Jacobian, mirroring the finite-difference check
// optimize/nlls/lmopt.go runs against its own analytic Jacobian.
package ad

import (
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/rkleinman/factorgraph/dualnum"
)

// Extract splits a slice of k duals, each carrying an N-wide ε-vector, into
// the real-valued residual (length k) and its Jacobian (k×N).
func Extract(out []dualnum.Dual, n int) ([]float64, *mat.Dense) {
	k := len(out)
	val := make([]float64, k)
	jac := mat.NewDense(k, n, nil)
	for i, d := range out {
		val[i] = d.Real
		for j := 0; j < n; j++ {
			if j < len(d.Eps) {
				jac.Set(i, j, d.Eps[j])
			}
		}
	}
	return val, jac
}

// NumericalJacobian approximates the Jacobian of f: R^n -> R^k at x using
// central differences, for use as a regression-test reference against the
// AD path.
func NumericalJacobian(f func(y, x []float64), k, n int, x []float64) *mat.Dense {
	dst := mat.NewDense(k, n, nil)
	fd.Jacobian(dst, f, x, &fd.JacobianSettings{
		Formula: fd.Central,
	})
	return dst
}
