// Package noise implements the measurement noise models: a
// Model whitens a residual (and its Jacobian blocks) by left-multiplying
// with a square-root information matrix L, L^T L = Σ^-1. Construction
// mirrors gonum's own mat.Cholesky usage (mat64/cholesky.go's
// SolveCholeskyVec, adapted to the modern mat package API) rather than a
// hand-rolled triangular solve.
package noise

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/rkleinman/factorgraph/fgerrors"
)

// Model whitens residual vectors and Jacobian blocks in place of the raw
// measurement covariance, both operations linear and left-multiplicative.
type Model interface {
	Dim() int
	WhitenVec(e []float64) []float64
	WhitenMat(j *mat.Dense) *mat.Dense
}

// UnitNoise is the identity noise model.
type UnitNoise struct{ dim int }

func NewUnitNoise(dim int) UnitNoise { return UnitNoise{dim: dim} }

func (u UnitNoise) Dim() int { return u.dim }

func (u UnitNoise) WhitenVec(e []float64) []float64 {
	out := make([]float64, len(e))
	copy(out, e)
	return out
}

func (u UnitNoise) WhitenMat(j *mat.Dense) *mat.Dense {
	out := mat.DenseCopyOf(j)
	return out
}

// GaussianNoise whitens by left-multiplying with a square-root information
// matrix L (upper triangular, L^T L = Σ^-1), stored densely since factor
// dimensions here are small (typically <= 6).
type GaussianNoise struct {
	dim int
	l   *mat.Dense // dim x dim, upper triangular
}

func (g GaussianNoise) Dim() int { return g.dim }

func (g GaussianNoise) WhitenVec(e []float64) []float64 {
	ev := mat.NewVecDense(g.dim, e)
	var out mat.VecDense
	out.MulVec(g.l, ev)
	return mat.Col(nil, 0, &out)
}

func (g GaussianNoise) WhitenMat(j *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Mul(g.l, j)
	return &out
}

func diagDense(d []float64) *mat.Dense {
	n := len(d)
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		out.Set(i, i, d[i])
	}
	return out
}

// FromScalarSigma builds L = (1/σ) I for an n-dimensional residual.
func FromScalarSigma(n int, sigma float64) GaussianNoise {
	d := make([]float64, n)
	for i := range d {
		d[i] = 1 / sigma
	}
	return GaussianNoise{dim: n, l: diagDense(d)}
}

// FromScalarCov builds L = (1/sqrt(c)) I.
func FromScalarCov(n int, c float64) GaussianNoise {
	return FromScalarSigma(n, math.Sqrt(c))
}

// FromVecSigma builds a diagonal L with L_ii = 1/sigma_i.
func FromVecSigma(sigma []float64) GaussianNoise {
	d := make([]float64, len(sigma))
	for i, s := range sigma {
		d[i] = 1 / s
	}
	return GaussianNoise{dim: len(sigma), l: diagDense(d)}
}

// FromVecCov builds a diagonal L with L_ii = 1/sqrt(cov_i).
func FromVecCov(cov []float64) GaussianNoise {
	d := make([]float64, len(cov))
	for i, c := range cov {
		d[i] = 1 / math.Sqrt(c)
	}
	return GaussianNoise{dim: len(cov), l: diagDense(d)}
}

// FromVecInf builds a diagonal L with L_ii = sqrt(inf_i).
func FromVecInf(inf []float64) GaussianNoise {
	d := make([]float64, len(inf))
	for i, v := range inf {
		d[i] = math.Sqrt(v)
	}
	return GaussianNoise{dim: len(inf), l: diagDense(d)}
}

// FromMatrixCov builds L = chol(Σ^-1)^T from a full covariance matrix,
// failing with ErrNoiseConstruction if Σ is not SPD.
func FromMatrixCov(sigma mat.Symmetric) (GaussianNoise, error) {
	n := sigma.SymmetricDim()
	var cholSigma mat.Cholesky
	if ok := cholSigma.Factorize(sigma); !ok {
		return GaussianNoise{}, fmt.Errorf("%w: covariance not SPD", fgerrors.ErrNoiseConstruction)
	}
	var inv mat.SymDense
	if err := cholSigma.InverseTo(&inv); err != nil {
		return GaussianNoise{}, fmt.Errorf("%w: inverting covariance: %v", fgerrors.ErrNoiseConstruction, err)
	}
	return fromInformation(n, &inv)
}

// FromMatrixInf builds L = chol(Λ)^T from a full information matrix,
// failing with ErrNoiseConstruction if Λ is not SPD.
func FromMatrixInf(lambda mat.Symmetric) (GaussianNoise, error) {
	return fromInformation(lambda.SymmetricDim(), lambda)
}

func fromInformation(n int, info mat.Symmetric) (GaussianNoise, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(info); !ok {
		return GaussianNoise{}, fmt.Errorf("%w: information matrix not SPD", fgerrors.ErrNoiseConstruction)
	}
	var u mat.TriDense
	chol.UTo(&u)
	dense := mat.NewDense(n, n, nil)
	dense.Copy(&u)
	return GaussianNoise{dim: n, l: dense}, nil
}

// FromSplitSigma builds a diagonal L where the first floor(n/2) entries use
// sigma a and the remainder use sigma b (rotation block comes first, for
// SE(k) measurements noised separately by component).
func FromSplitSigma(n int, a, b float64) GaussianNoise {
	half := n / 2
	d := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < half {
			d[i] = 1 / a
		} else {
			d[i] = 1 / b
		}
	}
	return GaussianNoise{dim: n, l: diagDense(d)}
}

// FromSplitCov builds a diagonal L where the first floor(n/2) entries use
// covariance a and the remainder use covariance b.
func FromSplitCov(n int, a, b float64) GaussianNoise {
	return FromSplitSigma(n, math.Sqrt(a), math.Sqrt(b))
}
