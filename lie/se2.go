package lie

import (
	"github.com/rkleinman/factorgraph/dualnum"
	"github.com/rkleinman/factorgraph/liegen"
	"github.com/rkleinman/factorgraph/values"
)

// SE2 is a planar rigid-transform variable.
type SE2 struct {
	g liegen.SE2[dualnum.Real]
}

func NewSE2(theta, tx, ty float64) SE2 {
	r := liegen.ExpSO2[dualnum.Real]([1]dualnum.Real{dualnum.Real(theta)})
	return SE2{g: liegen.SE2[dualnum.Real]{R: r, T: [2]dualnum.Real{dualnum.Real(tx), dualnum.Real(ty)}}}
}

func IdentitySE2() SE2 { return SE2{g: liegen.IdentitySE2[dualnum.Real]()} }

func ExpSE2(xi []float64) SE2 {
	var a [3]dualnum.Real
	for i := range a {
		a[i] = dualnum.Real(xi[i])
	}
	return SE2{g: liegen.ExpSE2[dualnum.Real](a)}
}

func (v SE2) Dim() int                      { return 3 }
func (v SE2) Raw() liegen.SE2[dualnum.Real] { return v.g }
func (v SE2) Inverse() SE2                  { return SE2{g: v.g.Inverse()} }
func (v SE2) Compose(o SE2) SE2             { return SE2{g: v.g.Compose(o.g)} }

func (v SE2) Log() []float64 {
	xi := v.g.Log()
	return toFloats(xi[:])
}

func (v SE2) Ominus(o SE2) []float64 {
	xi := v.g.Ominus(o.g)
	return toFloats(xi[:])
}

// Oplus implements values.Variable.
func (v SE2) Oplus(xi []float64) values.Variable {
	var a [3]dualnum.Real
	copy(a[:], toReal(xi))
	return SE2{g: v.g.Oplus(a)}
}

func (v SE2) Apply(p [2]float64) [2]float64 {
	out := v.g.Apply([2]dualnum.Real{dualnum.Real(p[0]), dualnum.Real(p[1])})
	return [2]float64{float64(out[0]), float64(out[1])}
}

// Translation returns the (tx, ty) block.
func (v SE2) Translation() (float64, float64) { return float64(v.g.T[0]), float64(v.g.T[1]) }

// Seed returns the dual-lane transform with its 3 tangent components
// (θ, tx, ty) seeded at columns [offset, offset+3) of an n-wide Jacobian.
func (v SE2) Seed(offset, n int) liegen.SE2[dualnum.Dual] {
	dv := liegen.CastSE2[dualnum.Real, dualnum.Dual](v.g, dualnum.Lift)
	xi := [3]dualnum.Dual{
		dualnum.Seed(0, offset, n),
		dualnum.Seed(0, offset+1, n),
		dualnum.Seed(0, offset+2, n),
	}
	return dv.Oplus(xi)
}

func (v SE2) Lift() liegen.SE2[dualnum.Dual] {
	return liegen.CastSE2[dualnum.Real, dualnum.Dual](v.g, dualnum.Lift)
}
