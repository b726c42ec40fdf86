package lie

import (
	"github.com/rkleinman/factorgraph/dualnum"
	"github.com/rkleinman/factorgraph/liegen"
	"github.com/rkleinman/factorgraph/values"
)

// SE3 is a rigid-transform variable.
type SE3 struct {
	g liegen.SE3[dualnum.Real]
}

// NewSE3 builds SE3 from a quaternion (x,y,z,w) and translation (tx,ty,tz).
func NewSE3(x, y, z, w, tx, ty, tz float64) SE3 {
	r := liegen.SO3[dualnum.Real]{X: dualnum.Real(x), Y: dualnum.Real(y), Z: dualnum.Real(z), W: dualnum.Real(w)}
	return SE3{g: liegen.SE3[dualnum.Real]{R: r, T: [3]dualnum.Real{dualnum.Real(tx), dualnum.Real(ty), dualnum.Real(tz)}}}
}

func IdentitySE3() SE3 { return SE3{g: liegen.IdentitySE3[dualnum.Real]()} }

func ExpSE3(xi []float64) SE3 {
	var a [6]dualnum.Real
	for i := range a {
		a[i] = dualnum.Real(xi[i])
	}
	return SE3{g: liegen.ExpSE3[dualnum.Real](a)}
}

func (v SE3) Dim() int                      { return 6 }
func (v SE3) Raw() liegen.SE3[dualnum.Real] { return v.g }
func (v SE3) Inverse() SE3                  { return SE3{g: v.g.Inverse()} }
func (v SE3) Compose(o SE3) SE3             { return SE3{g: v.g.Compose(o.g)} }

func (v SE3) Log() []float64 {
	xi := v.g.Log()
	return toFloats(xi[:])
}

func (v SE3) Ominus(o SE3) []float64 {
	xi := v.g.Ominus(o.g)
	return toFloats(xi[:])
}

// Oplus implements values.Variable.
func (v SE3) Oplus(xi []float64) values.Variable {
	var a [6]dualnum.Real
	copy(a[:], toReal(xi))
	return SE3{g: v.g.Oplus(a)}
}

func (v SE3) Apply(p [3]float64) [3]float64 {
	out := v.g.Apply([3]dualnum.Real{dualnum.Real(p[0]), dualnum.Real(p[1]), dualnum.Real(p[2])})
	return [3]float64{float64(out[0]), float64(out[1]), float64(out[2])}
}

// Rotation returns the rotation block as an SO3 variable.
func (v SE3) Rotation() SO3 { return SO3{g: v.g.R} }

// Translation returns the (tx, ty, tz) block.
func (v SE3) Translation() [3]float64 {
	return [3]float64{float64(v.g.T[0]), float64(v.g.T[1]), float64(v.g.T[2])}
}

// AdjointMatrix returns the 6x6 adjoint as a row-major [6][6] array.
func (v SE3) AdjointMatrix() [6][6]float64 {
	m := v.g.Adjoint()
	var out [6][6]float64
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			out[i][j] = float64(m[i][j])
		}
	}
	return out
}

// Seed returns the dual-lane transform with its 6 tangent components
// (ω, ν) seeded at columns [offset, offset+6) of an n-wide Jacobian.
func (v SE3) Seed(offset, n int) liegen.SE3[dualnum.Dual] {
	dv := liegen.CastSE3[dualnum.Real, dualnum.Dual](v.g, dualnum.Lift)
	var xi [6]dualnum.Dual
	for i := 0; i < 6; i++ {
		xi[i] = dualnum.Seed(0, offset+i, n)
	}
	return dv.Oplus(xi)
}

func (v SE3) Lift() liegen.SE3[dualnum.Dual] {
	return liegen.CastSE3[dualnum.Real, dualnum.Dual](v.g, dualnum.Lift)
}
