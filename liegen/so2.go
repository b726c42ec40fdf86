package liegen

import "github.com/rkleinman/factorgraph/dualnum"

// SO2 stores a 2D rotation as a unit complex number (c, s) = (cos θ, sin θ),
// avoiding the angle-wrapping issues of storing θ directly.
type SO2[S dualnum.Scalar[S]] struct {
	C, Sn S
}

func IdentitySO2[S dualnum.Scalar[S]]() SO2[S] {
	return SO2[S]{C: one[S](), Sn: zero[S]()}
}

func (SO2[S]) Dim() int { return 1 }

// ExpSO2 maps a scalar tangent ξ to SO(2).
func ExpSO2[S dualnum.Scalar[S]](xi [1]S) SO2[S] {
	return SO2[S]{C: xi[0].Cos(), Sn: xi[0].Sin()}
}

func (q SO2[S]) Log() [1]S {
	return [1]S{q.Sn.Atan2(q.C)}
}

func (q SO2[S]) Compose(o SO2[S]) SO2[S] {
	return SO2[S]{
		C:  q.C.Mul(o.C).Sub(q.Sn.Mul(o.Sn)),
		Sn: q.C.Mul(o.Sn).Add(q.Sn.Mul(o.C)),
	}
}

func (q SO2[S]) Inverse() SO2[S] {
	return SO2[S]{C: q.C, Sn: q.Sn.Neg()}
}

func (q SO2[S]) Apply(v [2]S) [2]S {
	return [2]S{
		q.C.Mul(v[0]).Sub(q.Sn.Mul(v[1])),
		q.Sn.Mul(v[0]).Add(q.C.Mul(v[1])),
	}
}

// Adjoint of SO(2) is the scalar identity (rotations commute in 1-DoF).
func (q SO2[S]) Adjoint() S {
	return one[S]()
}

func (q SO2[S]) Oplus(xi [1]S) SO2[S] {
	return q.Compose(ExpSO2[S](xi))
}

func (x SO2[S]) Ominus(y SO2[S]) [1]S {
	return y.Inverse().Compose(x).Log()
}

func CastSO2[S1 dualnum.Scalar[S1], S2 dualnum.Scalar[S2]](q SO2[S1], conv func(S1) S2) SO2[S2] {
	return SO2[S2]{C: conv(q.C), Sn: conv(q.Sn)}
}
