// Package factor implements the Factor contract: the
// linearizer-facing boundary that applies noise whitening and robust
// reweighting uniformly over whatever residual produced the raw error.
//
// Rather than six hand-duplicated fixed-arity adapter types (the literal
// rendering of the "ResidualK" family), a single slice-based adapter
// covers every arity K=1..6 and beyond: keys, tangent dims, and the
// raw-residual/AD closures are all slices, with arity folded into their
// length. Species-specific construction (casting to lie types, seeding
// duals) lives in package residual, which supplies the closures this
// adapter runs.
package factor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/rkleinman/factorgraph/ad"
	"github.com/rkleinman/factorgraph/dualnum"
	"github.com/rkleinman/factorgraph/fgerrors"
	"github.com/rkleinman/factorgraph/noise"
	"github.com/rkleinman/factorgraph/robust"
	"github.com/rkleinman/factorgraph/values"
)

// Factor is the contract exposed to the linearizer.
type Factor interface {
	Dim() int
	Keys() []values.Key
	Error(vs *values.Values) ([]float64, error)
	Linearize(vs *values.Values) ([]float64, []*mat.Dense, error)

	// Cost returns ρ(s), the robust loss applied to the whitened squared
	// norm s = eᵀe — the loss is applied to the whitened norm as a whole,
	// not to each component — for the optimizer's reported scalar cost
	// Σ ρ_i(...). This is distinct from
	// ||Error()||², which carries the √w-reweighted residual used for
	// IRLS, not the loss itself.
	Cost(vs *values.Values) (float64, error)
}

// RawEvalFunc computes the unwhitened residual value at the given Values.
type RawEvalFunc func(vs *values.Values) ([]float64, error)

// DualEvalFunc seeds each key's dual tangent at the given column offsets
// (one per key, same order as Keys) within an N-wide Jacobian and returns
// the k stacked dual outputs of the residual.
type DualEvalFunc func(vs *values.Values, offsets []int, n int) ([]dualnum.Dual, error)

type adapter struct {
	keys   []values.Key
	dims   []int // tangent dim of each key's variable
	dim    int   // residual output dimension k
	rawFn  RawEvalFunc
	dualFn DualEvalFunc
	noise  noise.Model
	robust robust.Kernel
}

// Option configures a Factor at construction time.
type Option func(*adapter)

// Noise attaches a noise model; if omitted, UnitNoise is used.
func Noise(n noise.Model) Option {
	return func(a *adapter) { a.noise = n }
}

// Robust attaches a robust kernel; if omitted, L2 (no reweighting) is used.
func Robust(r robust.Kernel) Option {
	return func(a *adapter) { a.robust = r }
}

// New builds a Factor over keys whose variables have tangent dimensions
// dims (same order), with raw residual dimension dim, given the raw and
// dual evaluators (built per-species by package residual).
func New(keys []values.Key, dims []int, dim int, rawFn RawEvalFunc, dualFn DualEvalFunc, opts ...Option) Factor {
	a := &adapter{
		keys:   keys,
		dims:   dims,
		dim:    dim,
		rawFn:  rawFn,
		dualFn: dualFn,
		noise:  noise.NewUnitNoise(dim),
		robust: robust.L2{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *adapter) Dim() int { return a.dim }

func (a *adapter) Keys() []values.Key {
	out := make([]values.Key, len(a.keys))
	copy(out, a.keys)
	return out
}

// whitenedAndS computes the whitened (but not robust-reweighted) residual
// and its squared norm s = eᵀe, shared by Error and Cost so the robust
// kernel is evaluated against the same s in both places.
func (a *adapter) whitenedAndS(vs *values.Values) ([]float64, float64, error) {
	raw, err := a.rawFn(vs)
	if err != nil {
		return nil, 0, err
	}
	if len(raw) != a.dim {
		return nil, 0, fmt.Errorf("%w: residual returned %d components, want %d", fgerrors.ErrDimensionMismatch, len(raw), a.dim)
	}
	e := a.noise.WhitenVec(raw)
	s := 0.0
	for _, v := range e {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, 0, fmt.Errorf("%w: residual component is NaN/Inf", fgerrors.ErrNumericalDegeneracy)
		}
		s += v * v
	}
	return e, s, nil
}

// Error returns the whitened, robust-weighted residual.
func (a *adapter) Error(vs *values.Values) ([]float64, error) {
	e, s, err := a.whitenedAndS(vs)
	if err != nil {
		return nil, err
	}
	w := math.Sqrt(a.robust.Weight(s))
	for i := range e {
		e[i] *= w
	}
	return e, nil
}

// Cost returns ρ(s), the robust loss applied to the whitened squared norm,
// for the optimizer's reported total cost.
func (a *adapter) Cost(vs *values.Values) (float64, error) {
	_, s, err := a.whitenedAndS(vs)
	if err != nil {
		return 0, err
	}
	return a.robust.Loss(s), nil
}

// Linearize returns the whitened, robust-weighted residual and its
// per-key Jacobian blocks.
func (a *adapter) Linearize(vs *values.Values) ([]float64, []*mat.Dense, error) {
	offsets := make([]int, len(a.dims))
	n := 0
	for i, d := range a.dims {
		offsets[i] = n
		n += d
	}
	duals, err := a.dualFn(vs, offsets, n)
	if err != nil {
		return nil, nil, err
	}
	if len(duals) != a.dim {
		return nil, nil, fmt.Errorf("%w: residual returned %d components, want %d", fgerrors.ErrDimensionMismatch, len(duals), a.dim)
	}
	raw, jac := ad.Extract(duals, n)

	whitenedE := a.noise.WhitenVec(raw)
	whitenedJ := a.noise.WhitenMat(jac)

	s := 0.0
	for _, v := range whitenedE {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, fmt.Errorf("%w: residual component is NaN/Inf", fgerrors.ErrNumericalDegeneracy)
		}
		s += v * v
	}
	w := math.Sqrt(a.robust.Weight(s))
	for i := range whitenedE {
		whitenedE[i] *= w
	}
	whitenedJ.Scale(w, whitenedJ)

	blocks := make([]*mat.Dense, len(a.dims))
	for i, d := range a.dims {
		blk := mat.NewDense(a.dim, d, nil)
		blk.Copy(whitenedJ.Slice(0, a.dim, offsets[i], offsets[i]+d))
		blocks[i] = blk
	}
	return whitenedE, blocks, nil
}
