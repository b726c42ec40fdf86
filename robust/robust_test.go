package robust

import (
	"math"
	"testing"
)

// TestWeightAtZero is property P7: w(0) = 1 for every kernel.
func TestWeightAtZero(t *testing.T) {
	kernels := []Kernel{L2{}, Huber{K: 1.345}, GemanMcClure{C: 1.0}}
	for _, k := range kernels {
		if got := k.Weight(0); math.Abs(got-1) > 1e-12 {
			t.Errorf("%T.Weight(0) = %v, want 1", k, got)
		}
	}
}

func TestL2(t *testing.T) {
	l := L2{}
	if got := l.Loss(4); got != 2 {
		t.Errorf("L2.Loss(4) = %v, want 2", got)
	}
	if got := l.Weight(4); got != 1 {
		t.Errorf("L2.Weight(4) = %v, want 1", got)
	}
}

func TestHuberBelowThreshold(t *testing.T) {
	h := Huber{K: 2}
	s := 1.0 // sqrt(s)=1 < K
	if got, want := h.Loss(s), s/2; got != want {
		t.Errorf("Huber.Loss below threshold = %v, want %v", got, want)
	}
	if got := h.Weight(s); got != 1 {
		t.Errorf("Huber.Weight below threshold = %v, want 1", got)
	}
}

func TestHuberAboveThreshold(t *testing.T) {
	h := Huber{K: 1}
	s := 16.0 // sqrt(s)=4 > K
	wantLoss := h.K*math.Sqrt(s) - h.K*h.K/2
	if got := h.Loss(s); math.Abs(got-wantLoss) > 1e-12 {
		t.Errorf("Huber.Loss above threshold = %v, want %v", got, wantLoss)
	}
	wantWeight := h.K / math.Sqrt(s)
	if got := h.Weight(s); math.Abs(got-wantWeight) > 1e-12 {
		t.Errorf("Huber.Weight above threshold = %v, want %v", got, wantWeight)
	}
}

func TestGemanMcClureSuppressesOutliers(t *testing.T) {
	g := GemanMcClure{C: 1.0}
	// Far outliers should have vanishing weight and bounded loss.
	w := g.Weight(1e6)
	if w > 1e-5 {
		t.Errorf("GemanMcClure.Weight(1e6) = %v, want near 0", w)
	}
	loss := g.Loss(1e6)
	if loss > g.C {
		t.Errorf("GemanMcClure.Loss(1e6) = %v, want bounded by C=%v", loss, g.C)
	}
}

func TestHuberWeightIsTwiceLossDerivative(t *testing.T) {
	h := Huber{K: 1.5}
	const eps = 1e-6
	for _, s := range []float64{0.1, 1.0, 2.0, 10.0} {
		numDeriv := (h.Loss(s+eps) - h.Loss(s-eps)) / (2 * eps)
		if got := h.Weight(s); math.Abs(got-2*numDeriv) > 1e-4 {
			t.Errorf("Weight(%v) = %v, want 2*dLoss/ds = %v", s, got, 2*numDeriv)
		}
	}
}
