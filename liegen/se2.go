package liegen

import "github.com/rkleinman/factorgraph/dualnum"

// SE2 is a planar rigid transform (R, t). Tangent order is rotation-first
// (ω in row 0, ν in rows 1..2).
type SE2[S dualnum.Scalar[S]] struct {
	R SO2[S]
	T [2]S
}

func IdentitySE2[S dualnum.Scalar[S]]() SE2[S] {
	z := zero[S]()
	return SE2[S]{R: IdentitySO2[S](), T: [2]S{z, z}}
}

func (SE2[S]) Dim() int { return 3 }

// seCoeffs2D returns A = sinθ/θ, B = (1-cosθ)/θ with Taylor fallbacks.
func seCoeffs2D[S dualnum.Scalar[S]](theta S) (S, S) {
	theta2 := theta.Mul(theta)
	if theta2.Float() < smallAngleSq {
		a := one[S]().Sub(theta2.Quo(konst[S](6)))
		b := theta.Quo(konst[S](2)).Sub(theta.Mul(theta2).Quo(konst[S](24)))
		return a, b
	}
	return theta.Sin().Quo(theta), one[S]().Sub(theta.Cos()).Quo(theta)
}

func ExpSE2[S dualnum.Scalar[S]](xi [3]S) SE2[S] {
	theta := xi[0]
	nu := [2]S{xi[1], xi[2]}
	a, b := seCoeffs2D(theta)
	t := [2]S{
		a.Mul(nu[0]).Sub(b.Mul(nu[1])),
		b.Mul(nu[0]).Add(a.Mul(nu[1])),
	}
	return SE2[S]{R: ExpSO2[S]([1]S{theta}), T: t}
}

func (x SE2[S]) Log() [3]S {
	theta := x.R.Log()[0]
	a, b := seCoeffs2D(theta)
	denom := a.Mul(a).Add(b.Mul(b))
	nu0 := a.Mul(x.T[0]).Add(b.Mul(x.T[1])).Quo(denom)
	nu1 := b.Neg().Mul(x.T[0]).Add(a.Mul(x.T[1])).Quo(denom)
	return [3]S{theta, nu0, nu1}
}

func (x SE2[S]) Compose(o SE2[S]) SE2[S] {
	return SE2[S]{R: x.R.Compose(o.R), T: [2]S{
		x.T[0].Add(x.R.Apply(o.T)[0]),
		x.T[1].Add(x.R.Apply(o.T)[1]),
	}}
}

func (x SE2[S]) Inverse() SE2[S] {
	rInv := x.R.Inverse()
	tInv := rInv.Apply(x.T)
	return SE2[S]{R: rInv, T: [2]S{tInv[0].Neg(), tInv[1].Neg()}}
}

func (x SE2[S]) Apply(v [2]S) [2]S {
	rv := x.R.Apply(v)
	return [2]S{rv[0].Add(x.T[0]), rv[1].Add(x.T[1])}
}

func (x SE2[S]) Oplus(xi [3]S) SE2[S] {
	return x.Compose(ExpSE2[S](xi))
}

func (x SE2[S]) Ominus(y SE2[S]) [3]S {
	return y.Inverse().Compose(x).Log()
}

func CastSE2[S1 dualnum.Scalar[S1], S2 dualnum.Scalar[S2]](x SE2[S1], conv func(S1) S2) SE2[S2] {
	return SE2[S2]{
		R: CastSO2[S1, S2](x.R, conv),
		T: [2]S2{conv(x.T[0]), conv(x.T[1])},
	}
}
