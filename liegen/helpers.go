// Package liegen implements the Lie-group algebra (SO(2), SO(3), SE(2),
// SE(3), and N-dimensional vector spaces) generic over the scalar kind
// (dualnum.Real for evaluation, dualnum.Dual for automatic differentiation).
// Each type is written once and instantiated at both scalar kinds by
// residual and AD code in the sibling lie/ad/residual packages.
package liegen

import "github.com/rkleinman/factorgraph/dualnum"

// smallAngleSq is the squared-angle threshold below which Taylor expansions
// replace the closed-form trig formulas.
const smallAngleSq = 1e-6

func zero[S dualnum.Scalar[S]]() S {
	var z S
	return z.Const(0)
}

func one[S dualnum.Scalar[S]]() S {
	var z S
	return z.Const(1)
}

func konst[S dualnum.Scalar[S]](f float64) S {
	var z S
	return z.Const(f)
}

// mat3 is a 3x3 matrix over S, row-major.
type mat3[S dualnum.Scalar[S]] [3][3]S

func mulMat3Vec3[S dualnum.Scalar[S]](m mat3[S], v [3]S) [3]S {
	var out [3]S
	for i := 0; i < 3; i++ {
		sum := m[i][0].Mul(v[0])
		sum = sum.Add(m[i][1].Mul(v[1]))
		sum = sum.Add(m[i][2].Mul(v[2]))
		out[i] = sum
	}
	return out
}

func mulMat3Mat3[S dualnum.Scalar[S]](a, b mat3[S]) mat3[S] {
	var out mat3[S]
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum := a[i][0].Mul(b[0][j])
			sum = sum.Add(a[i][1].Mul(b[1][j]))
			sum = sum.Add(a[i][2].Mul(b[2][j]))
			out[i][j] = sum
		}
	}
	return out
}

func addMat3[S dualnum.Scalar[S]](a, b mat3[S]) mat3[S] {
	var out mat3[S]
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = a[i][j].Add(b[i][j])
		}
	}
	return out
}

func scaleMat3[S dualnum.Scalar[S]](a mat3[S], s S) mat3[S] {
	var out mat3[S]
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = a[i][j].Mul(s)
		}
	}
	return out
}

func identityMat3[S dualnum.Scalar[S]]() mat3[S] {
	o, z := one[S](), zero[S]()
	return mat3[S]{
		{o, z, z},
		{z, o, z},
		{z, z, o},
	}
}

// skew returns the cross-product (hat) matrix of a 3-vector.
func skew[S dualnum.Scalar[S]](w [3]S) mat3[S] {
	z := zero[S]()
	return mat3[S]{
		{z, w[2].Neg(), w[1]},
		{w[2], z, w[0].Neg()},
		{w[1].Neg(), w[0], z},
	}
}

// det3 is the determinant of a 3x3 matrix via cofactor expansion; kept
// closed-form (no pivoting) so it differentiates cleanly through Dual.
func det3[S dualnum.Scalar[S]](m mat3[S]) S {
	a := m[0][0].Mul(m[1][1].Mul(m[2][2]).Sub(m[1][2].Mul(m[2][1])))
	b := m[0][1].Mul(m[1][0].Mul(m[2][2]).Sub(m[1][2].Mul(m[2][0])))
	c := m[0][2].Mul(m[1][0].Mul(m[2][1]).Sub(m[1][1].Mul(m[2][0])))
	return a.Sub(b).Add(c)
}

// solve3x3 solves M x = b via Cramer's rule, which stays closed-form (hence
// AD-friendly) for the fixed 3x3 case that SE(3)'s log map needs.
func solve3x3[S dualnum.Scalar[S]](m mat3[S], b [3]S) [3]S {
	d := det3(m)
	var x [3]S
	for col := 0; col < 3; col++ {
		mc := m
		for row := 0; row < 3; row++ {
			mc[row][col] = b[row]
		}
		x[col] = det3(mc).Quo(d)
	}
	return x
}

func transposeMat3[S dualnum.Scalar[S]](m mat3[S]) mat3[S] {
	var out mat3[S]
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}

func norm2_3[S dualnum.Scalar[S]](v [3]S) S {
	return v[0].Mul(v[0]).Add(v[1].Mul(v[1])).Add(v[2].Mul(v[2]))
}

func sub3[S dualnum.Scalar[S]](a, b [3]S) [3]S {
	return [3]S{a[0].Sub(b[0]), a[1].Sub(b[1]), a[2].Sub(b[2])}
}

func add3[S dualnum.Scalar[S]](a, b [3]S) [3]S {
	return [3]S{a[0].Add(b[0]), a[1].Add(b[1]), a[2].Add(b[2])}
}

func scale3[S dualnum.Scalar[S]](v [3]S, s S) [3]S {
	return [3]S{v[0].Mul(s), v[1].Mul(s), v[2].Mul(s)}
}
