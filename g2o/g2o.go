// Package g2o parses the G2O pose-graph format: VERTEX_SE2,
// VERTEX_SE3:QUAT, EDGE_SE2, and EDGE_SE3:QUAT lines, producing a ready-to-
// optimize (*values.Values, *fgraph.Graph) pair with GaussianNoise built
// from each edge's upper-triangular information matrix.
package g2o

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/rkleinman/factorgraph/factor"
	"github.com/rkleinman/factorgraph/fgraph"
	"github.com/rkleinman/factorgraph/lie"
	"github.com/rkleinman/factorgraph/noise"
	"github.com/rkleinman/factorgraph/residual"
	"github.com/rkleinman/factorgraph/symbol"
	"github.com/rkleinman/factorgraph/values"
)

const (
	poseTag = 'x'
)

// LoadFile opens path and parses it as a G2O file.
func LoadFile(path string) (*values.Values, *fgraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("g2o: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a G2O pose-graph stream into a Values/Graph pair.
func Load(r io.Reader) (*values.Values, *fgraph.Graph, error) {
	vs := values.New()
	g := fgraph.New()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		kind := fields[0]
		args := fields[1:]

		var err error
		switch kind {
		case "VERTEX_SE2":
			err = parseVertexSE2(vs, args)
		case "VERTEX_SE3:QUAT":
			err = parseVertexSE3(vs, args)
		case "EDGE_SE2":
			err = parseEdgeSE2(g, args)
		case "EDGE_SE3:QUAT":
			err = parseEdgeSE3(g, args)
		default:
			err = fmt.Errorf("unrecognized record type %q", kind)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("g2o: line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("g2o: %w", err)
	}
	return vs, g, nil
}

func floats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", a, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseID(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

func parseVertexSE2(vs *values.Values, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("VERTEX_SE2 expects id x y theta, got %d fields", len(args))
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	f, err := floats(args[1:4])
	if err != nil {
		return err
	}
	x, y, theta := f[0], f[1], f[2]
	vs.Insert(symbol.Key(poseTag, id), lie.NewSE2(theta, x, y))
	return nil
}

func parseVertexSE3(vs *values.Values, args []string) error {
	if len(args) < 8 {
		return fmt.Errorf("VERTEX_SE3:QUAT expects id x y z qx qy qz qw, got %d fields", len(args))
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	f, err := floats(args[1:8])
	if err != nil {
		return err
	}
	x, y, z, qx, qy, qz, qw := f[0], f[1], f[2], f[3], f[4], f[5], f[6]
	vs.Insert(symbol.Key(poseTag, id), lie.NewSE3(qx, qy, qz, qw, x, y, z))
	return nil
}

// symUpperToSymDense builds an n x n mat.SymDense from a flat upper-
// triangular row-major list of n*(n+1)/2 values.
func symUpperToSymDense(n int, upper []float64) *mat.SymDense {
	m := mat.NewSymDense(n, nil)
	idx := 0
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			m.SetSym(i, j, upper[idx])
			idx++
		}
	}
	return m
}

func parseEdgeSE2(g *fgraph.Graph, args []string) error {
	const nInfo = 6 // upper triangular 3x3
	if len(args) < 2+3+nInfo {
		return fmt.Errorf("EDGE_SE2 expects i j dx dy dtheta + 6 information values, got %d fields", len(args))
	}
	i, err := parseID(args[0])
	if err != nil {
		return err
	}
	j, err := parseID(args[1])
	if err != nil {
		return err
	}
	f, err := floats(args[2:])
	if err != nil {
		return err
	}
	dx, dy, dtheta := f[0], f[1], f[2]
	info := symUpperToSymDense(3, f[3:3+nInfo])
	model, err := noise.FromMatrixInf(info)
	if err != nil {
		return err
	}
	meas := lie.NewSE2(dtheta, dx, dy)
	g.Add(residual.NewSE2Between(symbol.Key(poseTag, i), symbol.Key(poseTag, j), meas, factor.Noise(model)))
	return nil
}

func parseEdgeSE3(g *fgraph.Graph, args []string) error {
	const nInfo = 21 // upper triangular 6x6
	if len(args) < 2+7+nInfo {
		return fmt.Errorf("EDGE_SE3:QUAT expects i j dx dy dz qx qy qz qw + 21 information values, got %d fields", len(args))
	}
	i, err := parseID(args[0])
	if err != nil {
		return err
	}
	j, err := parseID(args[1])
	if err != nil {
		return err
	}
	f, err := floats(args[2:])
	if err != nil {
		return err
	}
	dx, dy, dz, qx, qy, qz, qw := f[0], f[1], f[2], f[3], f[4], f[5], f[6]
	info := symUpperToSymDense(6, f[7:7+nInfo])
	model, err := noise.FromMatrixInf(info)
	if err != nil {
		return err
	}
	meas := lie.NewSE3(qx, qy, qz, qw, dx, dy, dz)
	g.Add(residual.NewSE3Between(symbol.Key(poseTag, i), symbol.Key(poseTag, j), meas, factor.Noise(model)))
	return nil
}
