package lie

import (
	"github.com/rkleinman/factorgraph/dualnum"
	"github.com/rkleinman/factorgraph/liegen"
	"github.com/rkleinman/factorgraph/values"
)

// SO2 is a 2D rotation variable, stored as a unit complex number.
type SO2 struct {
	g liegen.SO2[dualnum.Real]
}

func NewSO2(cos, sin float64) SO2 {
	return SO2{g: liegen.SO2[dualnum.Real]{C: dualnum.Real(cos), Sn: dualnum.Real(sin)}}
}

func IdentitySO2() SO2 { return SO2{g: liegen.IdentitySO2[dualnum.Real]()} }

func ExpSO2(theta float64) SO2 {
	return SO2{g: liegen.ExpSO2[dualnum.Real]([1]dualnum.Real{dualnum.Real(theta)})}
}

func (v SO2) Dim() int                      { return 1 }
func (v SO2) Raw() liegen.SO2[dualnum.Real] { return v.g }
func (v SO2) CosSin() (float64, float64)    { return float64(v.g.C), float64(v.g.Sn) }
func (v SO2) Inverse() SO2                  { return SO2{g: v.g.Inverse()} }
func (v SO2) Compose(o SO2) SO2             { return SO2{g: v.g.Compose(o.g)} }
func (v SO2) Log() float64                  { return float64(v.g.Log()[0]) }
func (v SO2) Ominus(o SO2) float64          { return float64(v.g.Ominus(o.g)[0]) }

// Oplus implements values.Variable.
func (v SO2) Oplus(xi []float64) values.Variable {
	return SO2{g: v.g.Oplus([1]dualnum.Real{dualnum.Real(xi[0])})}
}

func (v SO2) Apply(p [2]float64) [2]float64 {
	out := v.g.Apply([2]dualnum.Real{dualnum.Real(p[0]), dualnum.Real(p[1])})
	return [2]float64{float64(out[0]), float64(out[1])}
}

// Seed returns the dual-lane rotation with its single tangent component
// seeded at column offset of an n-wide Jacobian.
func (v SO2) Seed(offset, n int) liegen.SO2[dualnum.Dual] {
	dv := liegen.CastSO2[dualnum.Real, dualnum.Dual](v.g, dualnum.Lift)
	return dv.Oplus([1]dualnum.Dual{dualnum.Seed(0, offset, n)})
}

func (v SO2) Lift() liegen.SO2[dualnum.Dual] {
	return liegen.CastSO2[dualnum.Real, dualnum.Dual](v.g, dualnum.Lift)
}
