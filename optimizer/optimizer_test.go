package optimizer

import (
	"math"
	"testing"

	"github.com/rkleinman/factorgraph/factor"
	"github.com/rkleinman/factorgraph/lie"
	"github.com/rkleinman/factorgraph/noise"
	"github.com/rkleinman/factorgraph/residual"
	"github.com/rkleinman/factorgraph/robust"
	"github.com/rkleinman/factorgraph/values"
)

// TestSO2PriorConverges checks that a single SO(2) prior factor converges
// Gauss-Newton within 2 iterations to the prior's value.
func TestSO2PriorConverges(t *testing.T) {
	k := values.Key{Tag: 'x', Index: 0}
	vs := values.New()
	vs.Insert(k, lie.IdentitySO2())

	factors := []factor.Factor{residual.NewSO2Prior(k, lie.ExpSO2(1.0))}

	result, err := GaussNewton(vs, factors, nil)
	if err != nil {
		t.Fatalf("GaussNewton: %v", err)
	}
	if result.Status != Converged {
		t.Fatalf("status = %v, want Converged", result.Status)
	}
	if result.Iterations > 2 {
		t.Fatalf("iterations = %d, want <= 2", result.Iterations)
	}
	x, _ := values.Get[lie.SO2](result.Values, k)
	if math.Abs(x.Log()-1.0) > 1e-8 {
		t.Fatalf("X(0).Log() = %v, want ~1.0", x.Log())
	}
}

// TestSO2PriorAndBetweenConverges checks a prior on X(0) and a between
// factor to X(1), with Gaussian noise and a Huber kernel.
func TestSO2PriorAndBetweenConverges(t *testing.T) {
	k0 := values.Key{Tag: 'x', Index: 0}
	k1 := values.Key{Tag: 'x', Index: 1}
	vs := values.New()
	vs.Insert(k0, lie.IdentitySO2())
	vs.Insert(k1, lie.IdentitySO2())

	sigma := noise.FromScalarSigma(1, 0.1)
	huber := robust.Huber{K: 1.345}

	factors := []factor.Factor{
		residual.NewSO2Prior(k0, lie.ExpSO2(1.0)),
		residual.NewSO2Between(k0, k1, lie.ExpSO2(1.0), factor.Noise(sigma), factor.Robust(huber)),
	}

	result, err := LevenbergMarquardt(vs, factors, nil)
	if err != nil {
		t.Fatalf("LevenbergMarquardt: %v", err)
	}
	if result.Status != Converged {
		t.Fatalf("status = %v, want Converged", result.Status)
	}
	x0, _ := values.Get[lie.SO2](result.Values, k0)
	x1, _ := values.Get[lie.SO2](result.Values, k1)
	if math.Abs(x0.Log()-1.0) > 1e-6 {
		t.Fatalf("X(0).Log() = %v, want ~1.0", x0.Log())
	}
	if math.Abs(x1.Log()-2.0) > 1e-6 {
		t.Fatalf("X(1).Log() = %v, want ~2.0", x1.Log())
	}
}

// TestFixedPointConvergesInOneStep is property P8: starting at the
// minimum, both drivers take at most one iteration.
func TestFixedPointConvergesInOneStep(t *testing.T) {
	k := values.Key{Tag: 'x', Index: 0}

	buildAt := func(theta float64) (*values.Values, []factor.Factor) {
		vs := values.New()
		vs.Insert(k, lie.ExpSO2(theta))
		return vs, []factor.Factor{residual.NewSO2Prior(k, lie.ExpSO2(theta))}
	}

	vsGN, fGN := buildAt(0.7)
	gn, err := GaussNewton(vsGN, fGN, nil)
	if err != nil {
		t.Fatalf("GaussNewton: %v", err)
	}
	if gn.Iterations > 1 {
		t.Errorf("GN iterations = %d, want <= 1", gn.Iterations)
	}

	vsLM, fLM := buildAt(0.7)
	lm, err := LevenbergMarquardt(vsLM, fLM, nil)
	if err != nil {
		t.Fatalf("LevenbergMarquardt: %v", err)
	}
	if lm.Iterations > 1 {
		t.Errorf("LM iterations = %d, want <= 1", lm.Iterations)
	}
}

// TestLMMonotonicity is property P9: every accepted LM step strictly
// decreases the total cost. We reconstruct the cost trajectory by running
// the driver for an increasing iteration budget and checking cost never
// increases between budgets (a coarse but direct monotonicity probe, since
// the driver itself does not expose per-iteration history).
func TestLMMonotonicity(t *testing.T) {
	k0 := values.Key{Tag: 'x', Index: 0}
	k1 := values.Key{Tag: 'x', Index: 1}

	build := func() (*values.Values, []factor.Factor) {
		vs := values.New()
		vs.Insert(k0, lie.IdentitySO2())
		vs.Insert(k1, lie.ExpSO2(-3.0))
		return vs, []factor.Factor{
			residual.NewSO2Prior(k0, lie.ExpSO2(1.0)),
			residual.NewSO2Between(k0, k1, lie.ExpSO2(1.0)),
		}
	}

	prevCost := math.Inf(1)
	for iters := 1; iters <= 10; iters++ {
		vs, factors := build()
		settings := DefaultSettings()
		settings.MaxIters = iters
		result, err := LevenbergMarquardt(vs, factors, &settings)
		if err != nil {
			t.Fatalf("LevenbergMarquardt: %v", err)
		}
		if result.Cost > prevCost+1e-9 {
			t.Fatalf("cost increased at budget %d: %v > %v", iters, result.Cost, prevCost)
		}
		prevCost = result.Cost
	}
}

// TestGemanMcClureSuppressesOutlierPrior runs three scalar priors against
// one variable — two agreeing at 0, one isolated outlier at 1000 — through
// a Geman-McClure robust kernel end to end. The redescending kernel should
// drive the outlier factor's weight toward zero as its residual grows, so
// the converged estimate tracks the two-prior consensus rather than the
// unweighted least-squares mean of all three (which would land near 333).
// Geman-McClure needs a starting point already near the consensus it is
// meant to protect (its weight collapses for any large residual, inlier or
// not), so the variable starts at the consensus value 0 rather than at the
// naive mean of the three measurements.
func TestGemanMcClureSuppressesOutlierPrior(t *testing.T) {
	k := values.Key{Tag: 'x', Index: 0}
	vs := values.New()
	vs.Insert(k, lie.NewVectorVar([]float64{0}))

	sigma := noise.FromScalarSigma(1, 1.0)
	kernel := robust.GemanMcClure{C: 1}

	factors := []factor.Factor{
		residual.NewVectorPrior(k, lie.NewVectorVar([]float64{0}), factor.Noise(sigma), factor.Robust(kernel)),
		residual.NewVectorPrior(k, lie.NewVectorVar([]float64{0}), factor.Noise(sigma), factor.Robust(kernel)),
		residual.NewVectorPrior(k, lie.NewVectorVar([]float64{1000}), factor.Noise(sigma), factor.Robust(kernel)),
	}

	result, err := LevenbergMarquardt(vs, factors, nil)
	if err != nil {
		t.Fatalf("LevenbergMarquardt: %v", err)
	}
	if result.Status != Converged {
		t.Fatalf("status = %v, want Converged", result.Status)
	}
	x, _ := values.Get[lie.VectorVar](result.Values, k)
	got := x.Value()[0]
	if got < 0 || got > 0.1 {
		t.Fatalf("converged value = %v, want in [0, 0.1]", got)
	}
}

// TestLMIllConditionedPriorBetweenMatchesClosedForm runs LM on a
// two-variable chain where a tight between measurement disagrees with both
// variables' priors, and checks the converged total cost against the
// closed-form weighted least-squares solution derived directly from the
// normal equations (all three factors are linear in the R^1 retraction, so
// Gauss-Newton/LM solve the exact quadratic in closed form).
func TestLMIllConditionedPriorBetweenMatchesClosedForm(t *testing.T) {
	k0 := values.Key{Tag: 'x', Index: 0}
	k1 := values.Key{Tag: 'x', Index: 1}
	vs := values.New()
	vs.Insert(k0, lie.NewVectorVar([]float64{0}))
	vs.Insert(k1, lie.NewVectorVar([]float64{0}))

	const a0, a1 = 0.0, 10.0 // prior targets
	const m = 0.0            // between measurement: X(1) - X(0) should be ~m
	const s0, s1, sb = 1.0, 1.0, 0.1
	w0, w1, wb := 1/(s0*s0), 1/(s1*s1), 1/(sb*sb)

	factors := []factor.Factor{
		residual.NewVectorPrior(k0, lie.NewVectorVar([]float64{a0}), factor.Noise(noise.FromScalarSigma(1, s0))),
		residual.NewVectorPrior(k1, lie.NewVectorVar([]float64{a1}), factor.Noise(noise.FromScalarSigma(1, s1))),
		residual.NewVectorBetween(k0, k1, lie.NewVectorVar([]float64{m}), factor.Noise(noise.FromScalarSigma(1, sb))),
	}

	settings := DefaultSettings()
	settings.EpsX = 1e-14
	settings.EpsR = 1e-16
	settings.MaxIters = 200

	result, err := LevenbergMarquardt(vs, factors, &settings)
	if err != nil {
		t.Fatalf("LevenbergMarquardt: %v", err)
	}
	if result.Status != Converged {
		t.Fatalf("status = %v, want Converged", result.Status)
	}

	// Closed-form: minimizing w0(x0-a0)^2 + w1(x1-a1)^2 + wb(x1-x0-m)^2
	// over (x0, x1) gives, with d = x1-x0-m at the optimum,
	//   d = (a1-a0-m) / (1 + wb*(1/w0+1/w1))
	// and total cost = 1/2 * wb*d*(a1-a0-m).
	d := (a1 - a0 - m) / (1 + wb*(1/w0+1/w1))
	wantCost := 0.5 * wb * d * (a1 - a0 - m)

	if math.Abs(result.Cost-wantCost) > 1e-8 {
		t.Fatalf("cost = %v, want %v (closed form)", result.Cost, wantCost)
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		Init:           "Init",
		Iterating:      "Iterating",
		Converged:      "Converged",
		MaxIters:       "MaxIters",
		LinsolveFailed: "LinsolveFailed",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", s, got, want)
		}
	}
}
