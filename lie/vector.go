package lie

import (
	"github.com/rkleinman/factorgraph/dualnum"
	"github.com/rkleinman/factorgraph/liegen"
	"github.com/rkleinman/factorgraph/values"
)

// VectorVar is an R^N variable (landmark positions, velocities, biases, ...).
type VectorVar struct {
	g liegen.Vector[dualnum.Real]
}

func NewVectorVar(val []float64) VectorVar {
	return VectorVar{g: liegen.Vector[dualnum.Real]{Val: toReal(val)}}
}

func IdentityVectorVar(n int) VectorVar { return VectorVar{g: liegen.IdentityVector[dualnum.Real](n)} }

func (v VectorVar) Dim() int                         { return v.g.Dim() }
func (v VectorVar) Raw() liegen.Vector[dualnum.Real] { return v.g }
func (v VectorVar) Value() []float64                 { return toFloats(v.g.Val) }
func (v VectorVar) Inverse() VectorVar               { return VectorVar{g: v.g.Inverse()} }
func (v VectorVar) Compose(o VectorVar) VectorVar    { return VectorVar{g: v.g.Compose(o.g)} }
func (v VectorVar) Log() []float64                   { return toFloats(v.g.Log()) }

func (v VectorVar) Ominus(o VectorVar) []float64 {
	return toFloats(v.g.Ominus(o.g))
}

// Oplus implements values.Variable.
func (v VectorVar) Oplus(xi []float64) values.Variable {
	return VectorVar{g: v.g.Oplus(toReal(xi))}
}

// Seed returns the dual-lane vector with its Dim() tangent components
// seeded at columns [offset, offset+Dim()) of an n-wide Jacobian.
func (v VectorVar) Seed(offset, n int) liegen.Vector[dualnum.Dual] {
	dv := liegen.CastVector[dualnum.Real, dualnum.Dual](v.g, dualnum.Lift)
	xi := make([]dualnum.Dual, v.Dim())
	for i := range xi {
		xi[i] = dualnum.Seed(0, offset+i, n)
	}
	return dv.Oplus(xi)
}

func (v VectorVar) Lift() liegen.Vector[dualnum.Dual] {
	return liegen.CastVector[dualnum.Real, dualnum.Dual](v.g, dualnum.Lift)
}
