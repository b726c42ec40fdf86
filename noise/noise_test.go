package noise

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

func TestUnitNoiseIsIdentity(t *testing.T) {
	u := NewUnitNoise(3)
	e := []float64{1, 2, 3}
	got := u.WhitenVec(e)
	for i := range e {
		if got[i] != e[i] {
			t.Errorf("UnitNoise.WhitenVec[%d] = %v, want %v", i, got[i], e[i])
		}
	}
}

func TestFromVecSigma(t *testing.T) {
	n := FromVecSigma([]float64{2, 4})
	got := n.WhitenVec([]float64{2, 4})
	want := []float64{1, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("WhitenVec[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFromMatrixCovRejectsNonSPD(t *testing.T) {
	bad := mat.NewSymDense(2, []float64{1, 2, 2, 1}) // eigenvalues -1, 3: not SPD
	if _, err := FromMatrixCov(bad); err == nil {
		t.Fatal("expected error for non-SPD covariance")
	}
}

func TestFromMatrixInfRoundTripsCov(t *testing.T) {
	sigma := mat.NewSymDense(2, []float64{4, 1, 1, 2})
	var chol mat.Cholesky
	if ok := chol.Factorize(sigma); !ok {
		t.Fatal("test covariance not SPD")
	}
	var inf mat.SymDense
	if err := chol.InverseTo(&inf); err != nil {
		t.Fatalf("inverting test covariance: %v", err)
	}

	fromCov, err := FromMatrixCov(sigma)
	if err != nil {
		t.Fatalf("FromMatrixCov: %v", err)
	}
	fromInf, err := FromMatrixInf(&inf)
	if err != nil {
		t.Fatalf("FromMatrixInf: %v", err)
	}

	e := []float64{1, -2}
	a := fromCov.WhitenVec(e)
	b := fromInf.WhitenVec(e)
	// L isn't unique (only L^T L is fixed), so compare ||Le||^2 instead of
	// component-wise equality.
	na, nb := dot(a, a), dot(b, b)
	if math.Abs(na-nb) > 1e-9 {
		t.Errorf("||L_cov e||^2 = %v, ||L_inf e||^2 = %v, want equal", na, nb)
	}
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// TestGaussianNoiseWhiteningExpectation is property P6: for e ~ N(0, Σ),
// E[||Le||^2] = k where L^T L = Σ^-1 and k is the dimension.
func TestGaussianNoiseWhiteningExpectation(t *testing.T) {
	sigma := mat.NewSymDense(3, []float64{
		2.0, 0.3, -0.1,
		0.3, 1.5, 0.2,
		-0.1, 0.2, 1.0,
	})
	model, err := FromMatrixCov(sigma)
	if err != nil {
		t.Fatalf("FromMatrixCov: %v", err)
	}

	src := rand.NewSource(42)
	normal, ok := distmv.NewNormal(make([]float64, 3), sigma, src)
	if !ok {
		t.Fatal("test covariance not positive definite for distmv.Normal")
	}

	const trials = 200000
	sum := 0.0
	buf := make([]float64, 3)
	for i := 0; i < trials; i++ {
		normal.Rand(buf)
		whitened := model.WhitenVec(buf)
		sum += dot(whitened, whitened)
	}
	mean := sum / trials

	// Monte-Carlo tolerance: std dev of ||Le||^2 (chi-squared_k) is
	// sqrt(2k), so the mean's std error is sqrt(2k/trials).
	const k = 3
	stdErr := math.Sqrt(2*k/float64(trials)) * 6 // 6 sigma margin
	if math.Abs(mean-k) > stdErr {
		t.Errorf("E[||Le||^2] = %v, want ~%v (tolerance %v)", mean, k, stdErr)
	}
}

func TestFromSplitSigma(t *testing.T) {
	n := FromSplitSigma(4, 2, 10)
	got := n.WhitenVec([]float64{2, 2, 10, 10})
	want := []float64{1, 1, 1, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("WhitenVec[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
