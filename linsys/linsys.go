// Package linsys assembles the dense linear system from a
// factor graph's per-factor Jacobian blocks, and solves it with one of
// three backends: dense Cholesky on the normal equations (default), direct
// QR on J (avoids squaring the condition number), or iterative CG via
// gonum's linsolve package (domain-stack expansion for large sparse
// systems, applying JᵀJ through products with J rather than a
// materialized dense H).
package linsys

import (
	"fmt"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/linsolve"
	"gonum.org/v1/gonum/mat"

	"github.com/rkleinman/factorgraph/factor"
	"github.com/rkleinman/factorgraph/fgerrors"
	"github.com/rkleinman/factorgraph/values"
)

// Layout fixes the column (variable) and row (factor) offsets for one
// linearization pass, following insertion order.
type Layout struct {
	colOffset map[values.Key]int
	colDim    map[values.Key]int
	keys      []values.Key
	width     int
	rowOffset []int
	height    int
}

// BuildLayout walks vs in insertion order for columns and factors in slice
// order for rows.
func BuildLayout(vs *values.Values, factors []factor.Factor) *Layout {
	l := &Layout{
		colOffset: make(map[values.Key]int),
		colDim:    make(map[values.Key]int),
	}
	w := 0
	for _, k := range vs.Keys() {
		v, _ := vs.At(k)
		l.keys = append(l.keys, k)
		l.colOffset[k] = w
		l.colDim[k] = v.Dim()
		w += v.Dim()
	}
	l.width = w

	h := 0
	l.rowOffset = make([]int, len(factors))
	for i, f := range factors {
		l.rowOffset[i] = h
		h += f.Dim()
	}
	l.height = h
	return l
}

func (l *Layout) Width() int  { return l.width }
func (l *Layout) Height() int { return l.height }

// Keys returns the column keys in layout order.
func (l *Layout) Keys() []values.Key { return l.keys }

// Retract applies the solved step δ to a clone of vs, slicing δ per key
// according to the column layout and retracting each variable via ⊕. The
// input vs is left untouched.
func (l *Layout) Retract(vs *values.Values, delta []float64) (*values.Values, error) {
	out := vs.Clone()
	for _, k := range l.keys {
		c0 := l.colOffset[k]
		d := l.colDim[k]
		if err := out.Retract(k, delta[c0:c0+d]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// System is one assembled linearization: dense J (H x W) and e (H).
type System struct {
	Layout *Layout
	J      *mat.Dense
	E      []float64
}

// Assemble runs Linearize on every factor and scatters blocks into a dense
// J/e pair per the column/row layout.
func Assemble(vs *values.Values, factors []factor.Factor) (*System, error) {
	l := BuildLayout(vs, factors)
	J := mat.NewDense(l.height, l.width, nil)
	e := make([]float64, l.height)

	for fi, f := range factors {
		ef, blocks, err := f.Linearize(vs)
		if err != nil {
			return nil, err
		}
		r0 := l.rowOffset[fi]
		copy(e[r0:r0+f.Dim()], ef)
		for bi, k := range f.Keys() {
			c0 := l.colOffset[k]
			d := l.colDim[k]
			blk := blocks[bi]
			for i := 0; i < f.Dim(); i++ {
				for j := 0; j < d; j++ {
					J.Set(r0+i, c0+j, blk.At(i, j))
				}
			}
		}
	}
	return &System{Layout: l, J: J, E: e}, nil
}

// LinearizeParallel is equivalent to Assemble but evaluates each factor's
// Linearize concurrently across a bounded worker pool (an optional
// parallel-linearize path): each factor's scatter writes to disjoint rows
// of the shared J/e buffers, so no lock is needed there, but the per-index
// error slot is written via its own index (lock-free).
func LinearizeParallel(vs *values.Values, factors []factor.Factor) (*System, error) {
	l := BuildLayout(vs, factors)
	J := mat.NewDense(l.height, l.width, nil)
	e := make([]float64, l.height)
	errs := make([]error, len(factors))

	nWorkers := runtime.GOMAXPROCS(0)
	if nWorkers > len(factors) {
		nWorkers = len(factors)
	}
	if nWorkers < 1 {
		nWorkers = 1
	}

	jobs := make(chan int, len(factors))
	var wg sync.WaitGroup
	for w := 0; w < nWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for fi := range jobs {
				f := factors[fi]
				ef, blocks, err := f.Linearize(vs)
				if err != nil {
					errs[fi] = err
					continue
				}
				r0 := l.rowOffset[fi]
				copy(e[r0:r0+f.Dim()], ef)
				for bi, k := range f.Keys() {
					c0 := l.colOffset[k]
					d := l.colDim[k]
					blk := blocks[bi]
					for i := 0; i < f.Dim(); i++ {
						for j := 0; j < d; j++ {
							J.Set(r0+i, c0+j, blk.At(i, j))
						}
					}
				}
			}
		}()
	}
	for fi := range factors {
		jobs <- fi
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return &System{Layout: l, J: J, E: e}, nil
}

// normalEquations forms H = JᵀJ + λD (D = diag(JᵀJ) for LM, zero for GN)
// and g = Jᵀe.
func (s *System) normalEquations(lambda float64) (*mat.SymDense, []float64) {
	w := s.Layout.width
	var jtj mat.SymDense
	jtj.SymOuterK(1, s.J.T())

	h := mat.NewSymDense(w, nil)
	for i := 0; i < w; i++ {
		for j := i; j < w; j++ {
			h.SetSym(i, j, jtj.At(i, j))
		}
	}
	if lambda > 0 {
		for i := 0; i < w; i++ {
			h.SetSym(i, i, h.At(i, i)+lambda*jtj.At(i, i))
		}
	}

	g := make([]float64, w)
	ev := mat.NewVecDense(s.Layout.height, s.E)
	var gv mat.VecDense
	gv.MulVec(s.J.T(), ev)
	for i := 0; i < w; i++ {
		g[i] = gv.AtVec(i)
	}
	return h, g
}

// Gradient returns g = Jᵀe, independent of the damping λ,
// for use in the Levenberg-Marquardt gain ratio.
func (s *System) Gradient() []float64 {
	_, g := s.normalEquations(0)
	return g
}

// Solve finds δ solving Hδ = -g via dense Cholesky on the normal
// equations, where H = JᵀJ + λD. lambda=0 gives the
// Gauss-Newton step.
func (s *System) Solve(lambda float64) ([]float64, error) {
	h, g := s.normalEquations(lambda)
	var chol mat.Cholesky
	if ok := chol.Factorize(h); !ok {
		return nil, fmt.Errorf("%w: normal equations not SPD", fgerrors.ErrLinearSolveFailed)
	}
	rhs := make([]float64, len(g))
	for i, v := range g {
		rhs[i] = -v
	}
	rhsVec := mat.NewVecDense(len(rhs), rhs)
	var delta mat.VecDense
	if err := chol.SolveVecTo(&delta, rhsVec); err != nil {
		return nil, fmt.Errorf("%w: %v", fgerrors.ErrLinearSolveFailed, err)
	}
	return mat.Col(nil, 0, &delta), nil
}

// SolveQR solves the linear least-squares problem min ||Jδ + e|| directly
// via QR factorization of J, avoiding the condition-number squaring of
// forming JᵀJ (an optional alternative to the dense Cholesky solve).
func (s *System) SolveQR() ([]float64, error) {
	var qr mat.QR
	qr.Factorize(s.J)

	neg := make([]float64, len(s.E))
	for i, v := range s.E {
		neg[i] = -v
	}
	b := mat.NewVecDense(len(neg), neg)
	var delta mat.VecDense
	if err := qr.SolveVec(&delta, false, b); err != nil {
		return nil, fmt.Errorf("%w: %v", fgerrors.ErrLinearSolveFailed, err)
	}
	return mat.Col(nil, 0, &delta), nil
}

// jtjOperator implements the MulVec side of linsolve.Method's reverse
// communication contract directly against J (never materializing JᵀJ):
// dst = (JᵀJ + λD) x.
type jtjOperator struct {
	s      *System
	lambda float64
	diag   []float64
}

func newJTJOperator(s *System, lambda float64) *jtjOperator {
	w := s.Layout.width
	diag := make([]float64, w)
	for j := 0; j < w; j++ {
		col := s.J.ColView(j)
		sum := 0.0
		for i := 0; i < col.Len(); i++ {
			v := col.AtVec(i)
			sum += v * v
		}
		diag[j] = sum
	}
	return &jtjOperator{s: s, lambda: lambda, diag: diag}
}

// MulVecTo implements linsolve.MulVecToer: dst = A*x (A is symmetric, so
// the same product serves both the transposed and non-transposed cases),
// for A = JᵀJ + λ diag(JᵀJ), via two dense matrix-vector products against
// J rather than ever forming A.
func (op *jtjOperator) MulVecTo(dst *mat.VecDense, _ bool, x mat.Vector) {
	tmp := mat.NewVecDense(op.s.Layout.height, nil)
	tmp.MulVec(op.s.J, x)
	dst.MulVec(op.s.J.T(), tmp)
	if op.lambda > 0 {
		for i := 0; i < dst.Len(); i++ {
			dst.SetVec(i, dst.AtVec(i)+op.lambda*op.diag[i]*x.AtVec(i))
		}
	}
}

// SolveCG solves Hδ = -g iteratively via gonum's linsolve.CG, an
// alternative to the dense Cholesky/QR paths for large sparse systems where
// materializing H is undesirable.
func (s *System) SolveCG(lambda float64) ([]float64, error) {
	ev := mat.NewVecDense(s.Layout.height, s.E)
	var gv mat.VecDense
	gv.MulVec(s.J.T(), ev)
	op := newJTJOperator(s, lambda)
	b := make([]float64, s.Layout.width)
	for i := range b {
		b[i] = -gv.AtVec(i)
	}
	bVec := mat.NewVecDense(len(b), b)

	result, err := linsolve.Iterative(op, bVec, &linsolve.CG{}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fgerrors.ErrLinearSolveFailed, err)
	}
	return mat.Col(nil, 0, result.X), nil
}
