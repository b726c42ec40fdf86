package g2o

import (
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rkleinman/factorgraph/lie"
	"github.com/rkleinman/factorgraph/optimizer"
	"github.com/rkleinman/factorgraph/residual"
	"github.com/rkleinman/factorgraph/symbol"
	"github.com/rkleinman/factorgraph/values"
)

const tinySE2 = `# a minimal pose chain
VERTEX_SE2 0 0.0 0.0 0.0
VERTEX_SE2 1 0.0 0.0 0.0
EDGE_SE2 0 1 1.0 0.0 0.0 100.0 0.0 0.0 100.0 0.0 100.0
`

func TestLoadSE2(t *testing.T) {
	vs, g, err := Load(strings.NewReader(tinySE2))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if vs.Len() != 2 {
		t.Fatalf("vs.Len() = %d, want 2", vs.Len())
	}
	if g.Len() != 1 {
		t.Fatalf("g.Len() = %d, want 1", g.Len())
	}

	k0 := symbol.Key('x', 0)
	x0, err := values.Get[lie.SE2](vs, k0)
	if err != nil {
		t.Fatalf("missing vertex 0: %v", err)
	}
	if tx, ty := x0.Translation(); tx != 0 || ty != 0 {
		t.Errorf("vertex 0 translation = (%v, %v), want (0, 0)", tx, ty)
	}
}

func TestLoadSE2OptimizesToMeasurement(t *testing.T) {
	vs, g, err := Load(strings.NewReader(tinySE2))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// G2O carries no native prior syntax; anchor vertex 0 explicitly so the
	// system isn't rank-deficient under the graph's global SE(2) symmetry.
	k0 := symbol.Key('x', 0)
	factors := append(g.Factors(), residual.NewSE2Prior(k0, lie.IdentitySE2()))

	result, err := optimizer.GaussNewton(vs, factors, nil)
	if err != nil {
		t.Fatalf("GaussNewton: %v", err)
	}
	if result.Status != optimizer.Converged {
		t.Fatalf("status = %v, want Converged", result.Status)
	}

	k1 := symbol.Key('x', 1)
	x1, err := values.Get[lie.SE2](result.Values, k1)
	if err != nil {
		t.Fatalf("missing vertex 1: %v", err)
	}
	tx, ty := x1.Translation()
	if math.Abs(tx-1.0) > 1e-6 || math.Abs(ty) > 1e-6 {
		t.Errorf("vertex 1 translation = (%v, %v), want (1, 0)", tx, ty)
	}
}

// TestLoadM3500RunsGaussNewtonToConsistentMinimum loads the compact M3500
// pose-graph stand-in (see testdata/M3500.g2o), anchors vertex 0, and runs
// GaussNewton for a 10-iteration budget. The fixture's odometry and
// loop-closure measurements are all exactly satisfiable by the true square
// of poses it was built from, so the reference final cost is exactly 0
// rather than an empirically recorded number — an absolute tolerance
// replaces the usual relative-tolerance comparison since a relative
// comparison against a zero reference is degenerate.
func TestLoadM3500RunsGaussNewtonToConsistentMinimum(t *testing.T) {
	vs, g, err := LoadFile("testdata/M3500.g2o")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if vs.Len() != 4 {
		t.Fatalf("vs.Len() = %d, want 4", vs.Len())
	}
	if g.Len() != 4 {
		t.Fatalf("g.Len() = %d, want 4", g.Len())
	}

	k0 := symbol.Key('x', 0)
	factors := append(g.Factors(), residual.NewSE2Prior(k0, lie.IdentitySE2()))

	settings := optimizer.DefaultSettings()
	settings.MaxIters = 10
	result, err := optimizer.GaussNewton(vs, factors, &settings)
	if err != nil {
		t.Fatalf("GaussNewton: %v", err)
	}
	if result.Status != optimizer.Converged {
		t.Fatalf("status = %v, want Converged within a 10-iteration budget", result.Status)
	}

	const wantCost = 0.0
	const absTol = 1e-9
	if math.Abs(result.Cost-wantCost) > absTol {
		t.Fatalf("final cost = %v, want %v ± %v", result.Cost, wantCost, absTol)
	}
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	bad := "VERTEX_SE2 0 0.0 0.0\n"
	if _, _, err := Load(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for malformed VERTEX_SE2 line")
	}
}

func TestLoadRejectsUnknownRecord(t *testing.T) {
	bad := "FOO 1 2 3\n"
	if _, _, err := Load(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for unrecognized record type")
	}
}

// TestLoadSE2VertexAndFactorKeySets checks the full shape of the parsed
// graph at once: the set of inserted vertex keys and the set of keys each
// parsed factor touches, rather than poking at one vertex at a time.
func TestLoadSE2VertexAndFactorKeySets(t *testing.T) {
	vs, g, err := Load(strings.NewReader(tinySE2))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	gotVertices := vs.Keys()
	sort.Slice(gotVertices, func(i, j int) bool { return gotVertices[i].Index < gotVertices[j].Index })
	wantVertices := []values.Key{
		symbol.Key('x', 0),
		symbol.Key('x', 1),
	}
	if diff := cmp.Diff(wantVertices, gotVertices); diff != "" {
		t.Errorf("vertex keys mismatch (-want +got):\n%s", diff)
	}

	var gotFactorKeys [][]values.Key
	for _, f := range g.Factors() {
		gotFactorKeys = append(gotFactorKeys, f.Keys())
	}
	wantFactorKeys := [][]values.Key{
		{symbol.Key('x', 0), symbol.Key('x', 1)},
	}
	if diff := cmp.Diff(wantFactorKeys, gotFactorKeys); diff != "" {
		t.Errorf("factor key sets mismatch (-want +got):\n%s", diff)
	}
}
