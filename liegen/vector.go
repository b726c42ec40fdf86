package liegen

import "github.com/rkleinman/factorgraph/dualnum"

// Vector is the trivial Lie group (R^N, +): exp and log are the identity
// map, and the group operation is ordinary addition.
type Vector[S dualnum.Scalar[S]] struct {
	Val []S
}

func IdentityVector[S dualnum.Scalar[S]](n int) Vector[S] {
	v := make([]S, n)
	z := zero[S]()
	for i := range v {
		v[i] = z
	}
	return Vector[S]{Val: v}
}

func (v Vector[S]) Dim() int { return len(v.Val) }

func ExpVector[S dualnum.Scalar[S]](xi []S) Vector[S] {
	out := make([]S, len(xi))
	copy(out, xi)
	return Vector[S]{Val: out}
}

func (v Vector[S]) Log() []S {
	out := make([]S, len(v.Val))
	copy(out, v.Val)
	return out
}

func (v Vector[S]) Compose(o Vector[S]) Vector[S] {
	out := make([]S, len(v.Val))
	for i := range out {
		out[i] = v.Val[i].Add(o.Val[i])
	}
	return Vector[S]{Val: out}
}

func (v Vector[S]) Inverse() Vector[S] {
	out := make([]S, len(v.Val))
	for i := range out {
		out[i] = v.Val[i].Neg()
	}
	return Vector[S]{Val: out}
}

func (v Vector[S]) Oplus(xi []S) Vector[S] {
	return v.Compose(Vector[S]{Val: xi})
}

func (x Vector[S]) Ominus(y Vector[S]) []S {
	return x.Compose(y.Inverse()).Log()
}

func CastVector[S1 dualnum.Scalar[S1], S2 dualnum.Scalar[S2]](v Vector[S1], conv func(S1) S2) Vector[S2] {
	out := make([]S2, len(v.Val))
	for i, c := range v.Val {
		out[i] = conv(c)
	}
	return Vector[S2]{Val: out}
}
