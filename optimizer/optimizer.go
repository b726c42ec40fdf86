// Package optimizer implements the shared retract-loop state machine
// over the dense linear system assembled by package linsys: a
// Gauss-Newton driver that always accepts, and a Levenberg-Marquardt driver
// with the classic damping update. Both are grounded directly on
// optimize/nlls/lmopt.go's LM function (gain ratio, μ/ν update, stopping
// tests), adapted from its flat-parameter-vector Func/Jac problem shape to
// the Values/Factor retraction model.
package optimizer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/rkleinman/factorgraph/factor"
	"github.com/rkleinman/factorgraph/linsys"
	"github.com/rkleinman/factorgraph/values"
)

// Status mirrors the enum-with-stringer shape of gonum's optimize.Status,
// restricted to the five states a retract loop can terminate in.
type Status uint8

const (
	Init Status = iota
	Iterating
	Converged
	MaxIters
	LinsolveFailed
)

func (s Status) String() string {
	switch s {
	case Init:
		return "Init"
	case Iterating:
		return "Iterating"
	case Converged:
		return "Converged"
	case MaxIters:
		return "MaxIters"
	case LinsolveFailed:
		return "LinsolveFailed"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Settings holds the optimizer's tolerances and iteration budget.
type Settings struct {
	MaxIters  int
	EpsX      float64
	EpsR      float64
	Lambda0   float64
	LambdaMax float64
}

// DefaultSettings returns the standard tolerances: MaxIters=100,
// EpsX=EpsR=1e-6, Lambda0=1e-4, LambdaMax=1e10.
func DefaultSettings() Settings {
	return Settings{
		MaxIters:  100,
		EpsX:      1e-6,
		EpsR:      1e-6,
		Lambda0:   1e-4,
		LambdaMax: 1e10,
	}
}

// Result is the outcome of a complete optimization run: the final Values,
// the terminal Status, the iteration count, and the total cost at Values.
type Result struct {
	Values     *values.Values
	Status     Status
	Iterations int
	Cost       float64
}

// totalCost returns Σ ρ_i(s_i), the sum of every factor's
// robust loss evaluated at vs (for L2, ρ(s) = s/2 already carries the 1/2).
func totalCost(vs *values.Values, factors []factor.Factor) (float64, error) {
	total := 0.0
	for _, f := range factors {
		c, err := f.Cost(vs)
		if err != nil {
			return 0, err
		}
		total += c
	}
	return total, nil
}

// GaussNewton runs the undamped (λ = 0) Gauss-Newton retract loop: every step is
// accepted unconditionally, and the loop stops on step size, cost change,
// or iteration budget.
func GaussNewton(vs0 *values.Values, factors []factor.Factor, settings *Settings) (*Result, error) {
	set := DefaultSettings()
	if settings != nil {
		set = *settings
	}

	vs := vs0.Clone()
	ek, err := totalCost(vs, factors)
	if err != nil {
		return nil, err
	}

	for iter := 0; ; iter++ {
		if iter >= set.MaxIters {
			return &Result{Values: vs, Status: MaxIters, Iterations: iter, Cost: ek}, nil
		}

		sys, err := linsys.Assemble(vs, factors)
		if err != nil {
			return nil, err
		}
		delta, err := sys.Solve(0)
		if err != nil {
			return &Result{Values: vs, Status: LinsolveFailed, Iterations: iter, Cost: ek}, nil
		}

		next, err := sys.Layout.Retract(vs, delta)
		if err != nil {
			return nil, err
		}
		ek1, err := totalCost(next, factors)
		if err != nil {
			return nil, err
		}

		vs = next
		converged := floats.Norm(delta, math.Inf(1)) < set.EpsX || math.Abs(ek-ek1) < set.EpsR
		ek = ek1
		if converged {
			return &Result{Values: vs, Status: Converged, Iterations: iter + 1, Cost: ek}, nil
		}
	}
}

// LevenbergMarquardt runs the damped Gauss-Newton retract loop: steps are
// accepted only when the gain ratio ρ is positive, with μ
// shrinking on acceptance (Madsen/Nielsen/Tingleff's cubic rule) and
// growing geometrically via a doubling ν on rejection, exactly mirroring
// optimize/nlls/lmopt.go's LM.
func LevenbergMarquardt(vs0 *values.Values, factors []factor.Factor, settings *Settings) (*Result, error) {
	set := DefaultSettings()
	if settings != nil {
		set = *settings
	}

	vs := vs0.Clone()
	ek, err := totalCost(vs, factors)
	if err != nil {
		return nil, err
	}

	lambda := set.Lambda0
	nu := 2.0

	sys, err := linsys.Assemble(vs, factors)
	if err != nil {
		return nil, err
	}

	for iter := 0; ; iter++ {
		if iter >= set.MaxIters {
			return &Result{Values: vs, Status: MaxIters, Iterations: iter, Cost: ek}, nil
		}
		if lambda > set.LambdaMax {
			return &Result{Values: vs, Status: Converged, Iterations: iter, Cost: ek}, nil
		}

		delta, err := sys.Solve(lambda)
		if err != nil {
			lambda *= nu
			nu *= 2
			continue
		}

		if floats.Norm(delta, math.Inf(1)) < set.EpsX {
			return &Result{Values: vs, Status: Converged, Iterations: iter, Cost: ek}, nil
		}

		next, err := sys.Layout.Retract(vs, delta)
		if err != nil {
			return nil, err
		}
		ek1, err := totalCost(next, factors)
		if err != nil {
			return nil, err
		}

		rho := gainRatio(ek, ek1, delta, sys.Gradient(), lambda)

		if rho > 0 {
			vs = next
			nextSys, err := linsys.Assemble(vs, factors)
			if err != nil {
				return nil, err
			}
			sys = nextSys
			lambda *= math.Max(1.0/3.0, 1-math.Pow(2*rho-1, 3))
			nu = 2.0

			converged := math.Abs(ek-ek1) < set.EpsR
			ek = ek1
			if converged {
				return &Result{Values: vs, Status: Converged, Iterations: iter + 1, Cost: ek}, nil
			}
		} else {
			lambda *= nu
			nu *= 2.0
		}
	}
}

// gainRatio computes ρ = (E_k - E_{k+1}) / predicted-reduction, with the
// predicted reduction expressed against our additive step convention
// (Hδ=-g, Θ_{k+1}=Θ_k⊕δ), the mirror image of lmopt.go's calcRho (which
// solves Ah=g and updates params-=h, i.e. h=-δ).
func gainRatio(ek, ek1 float64, delta, g []float64, lambda float64) float64 {
	denom := lambda*floats.Dot(delta, delta) - floats.Dot(delta, g)
	if denom == 0 {
		return 0
	}
	return 2 * (ek - ek1) / denom
}
