// Package lie provides the concrete, float64-backed Lie-group Variable
// types that are actually stored in Values and retracted by the
// optimizer. Each wraps the corresponding generic liegen algebra
// instantiated at dualnum.Real, and exposes a Seed method that produces the
// dualnum.Dual-instantiated counterpart used by the AD driver (package ad).
package lie

import (
	"math"

	"github.com/rkleinman/factorgraph/dualnum"
	"github.com/rkleinman/factorgraph/liegen"
	"github.com/rkleinman/factorgraph/values"
)

func toReal(xi []float64) []dualnum.Real {
	out := make([]dualnum.Real, len(xi))
	for i, v := range xi {
		out[i] = dualnum.Real(v)
	}
	return out
}

func toFloats(xi []dualnum.Real) []float64 {
	out := make([]float64, len(xi))
	for i, v := range xi {
		out[i] = float64(v)
	}
	return out
}

// SO3 is a 3D rotation variable.
type SO3 struct {
	g liegen.SO3[dualnum.Real]
}

// NewSO3 builds SO3 from its quaternion components directly.
func NewSO3(x, y, z, w float64) SO3 {
	return SO3{g: liegen.SO3[dualnum.Real]{
		X: dualnum.Real(x), Y: dualnum.Real(y), Z: dualnum.Real(z), W: dualnum.Real(w),
	}}
}

// IdentitySO3 returns the identity rotation.
func IdentitySO3() SO3 { return SO3{g: liegen.IdentitySO3[dualnum.Real]()} }

// ExpSO3 maps a 3-vector tangent to a rotation.
func ExpSO3(xi []float64) SO3 {
	var a [3]dualnum.Real
	copy(a[:], toReal(xi))
	return SO3{g: liegen.ExpSO3[dualnum.Real](a)}
}

func (v SO3) Dim() int { return 3 }

// Raw exposes the underlying generic value for use by the ad/residual
// packages.
func (v SO3) Raw() liegen.SO3[dualnum.Real] { return v.g }

// XYZW returns the quaternion components.
func (v SO3) XYZW() (x, y, z, w float64) {
	return float64(v.g.X), float64(v.g.Y), float64(v.g.Z), float64(v.g.W)
}

func (v SO3) Inverse() SO3      { return SO3{g: v.g.Inverse()} }
func (v SO3) Compose(o SO3) SO3 { return SO3{g: v.g.Compose(o.g)} }
func (v SO3) Log() []float64    { xi := v.g.Log(); return toFloats(xi[:]) }
func (v SO3) Ominus(o SO3) []float64 {
	xi := v.g.Ominus(o.g)
	return toFloats(xi[:])
}

// Oplus implements values.Variable.
func (v SO3) Oplus(xi []float64) values.Variable {
	var a [3]dualnum.Real
	copy(a[:], toReal(xi))
	return SO3{g: v.g.Oplus(a)}
}

// Apply rotates a 3-vector.
func (v SO3) Apply(p [3]float64) [3]float64 {
	in := [3]dualnum.Real{dualnum.Real(p[0]), dualnum.Real(p[1]), dualnum.Real(p[2])}
	out := v.g.Apply(in)
	return [3]float64{float64(out[0]), float64(out[1]), float64(out[2])}
}

// AdjointMatrix returns the 3x3 adjoint (equal to the rotation matrix) as a
// row-major [3][3] array.
func (v SO3) AdjointMatrix() [3][3]float64 {
	m := v.g.Adjoint()
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = float64(m[i][j])
		}
	}
	return out
}

// NormError reports how far the stored quaternion drifts from unit norm;
// drift should stay below 1e-10 after any documented operation.
func (v SO3) NormError() float64 {
	n := float64(v.g.X)*float64(v.g.X) + float64(v.g.Y)*float64(v.g.Y) +
		float64(v.g.Z)*float64(v.g.Z) + float64(v.g.W)*float64(v.g.W)
	return math.Abs(n - 1)
}

// Seed returns the dual-lane rotation X ⊕ ξ̃, where ξ̃ carries a one-hot
// seed for each of this variable's 3 tangent components starting at
// column offset within a size-n Jacobian.
func (v SO3) Seed(offset, n int) liegen.SO3[dualnum.Dual] {
	dv := liegen.CastSO3[dualnum.Real, dualnum.Dual](v.g, dualnum.Lift)
	xi := [3]dualnum.Dual{
		dualnum.Seed(0, offset, n),
		dualnum.Seed(0, offset+1, n),
		dualnum.Seed(0, offset+2, n),
	}
	return dv.Oplus(xi)
}

// Lift casts v to the dual lane with a zero (unseeded) tangent, used when a
// factor references v but v is not one of the variables being
// differentiated w.r.t. in a given call (not needed by the core driver,
// which always seeds every argument, but kept for residual authors who
// fold in constants).
func (v SO3) Lift() liegen.SO3[dualnum.Dual] {
	return liegen.CastSO3[dualnum.Real, dualnum.Dual](v.g, dualnum.Lift)
}
