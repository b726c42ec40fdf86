package liegen

import "github.com/rkleinman/factorgraph/dualnum"

// SE3 is a rigid transform (R, t). Tangent order is rotation-first
// (ω in rows 0..2, ν in rows 3..5), part of the public contract callers
// rely on when reading Jacobian blocks.
type SE3[S dualnum.Scalar[S]] struct {
	R SO3[S]
	T [3]S
}

func IdentitySE3[S dualnum.Scalar[S]]() SE3[S] {
	z := zero[S]()
	return SE3[S]{R: IdentitySO3[S](), T: [3]S{z, z, z}}
}

func (SE3[S]) Dim() int { return 6 }

// leftJacobianCoeffs returns B, C in V = I + B*[ω]_x + C*[ω]_x^2, with
// Taylor fallbacks when θ² is small.
func leftJacobianCoeffs[S dualnum.Scalar[S]](theta2, theta S) (S, S) {
	if theta2.Float() < 1e-5 {
		return konst[S](0.5), konst[S](1.0 / 6.0)
	}
	theta3 := theta2.Mul(theta)
	b := one[S]().Sub(theta.Cos()).Quo(theta2)
	c := theta.Sub(theta.Sin()).Quo(theta3)
	return b, c
}

// ExpSE3 maps a 6-vector ξ = (ω, ν) to SE(3).
func ExpSE3[S dualnum.Scalar[S]](xi [6]S) SE3[S] {
	w := [3]S{xi[0], xi[1], xi[2]}
	nu := [3]S{xi[3], xi[4], xi[5]}
	theta2 := norm2_3(w)
	theta := theta2.Sqrt()
	b, c := leftJacobianCoeffs(theta2, theta)
	wx := skew(w)
	wx2 := mulMat3Mat3(wx, wx)
	V := addMat3(addMat3(identityMat3[S](), scaleMat3(wx, b)), scaleMat3(wx2, c))
	t := mulMat3Vec3(V, nu)
	return SE3[S]{R: ExpSO3[S](w), T: t}
}

// Log maps this transform back to its tangent vector.
func (x SE3[S]) Log() [6]S {
	w := x.R.Log()
	theta2 := norm2_3(w)
	theta := theta2.Sqrt()
	b, c := leftJacobianCoeffs(theta2, theta)
	wx := skew(w)
	wx2 := mulMat3Mat3(wx, wx)
	V := addMat3(addMat3(identityMat3[S](), scaleMat3(wx, b)), scaleMat3(wx2, c))
	nu := solve3x3(V, x.T)
	return [6]S{w[0], w[1], w[2], nu[0], nu[1], nu[2]}
}

func (x SE3[S]) Compose(o SE3[S]) SE3[S] {
	return SE3[S]{R: x.R.Compose(o.R), T: add3(x.T, x.R.Apply(o.T))}
}

func (x SE3[S]) Inverse() SE3[S] {
	rInv := x.R.Inverse()
	return SE3[S]{R: rInv, T: scale3(rInv.Apply(x.T), konst[S](-1))}
}

func (x SE3[S]) Apply(v [3]S) [3]S {
	return add3(x.R.Apply(v), x.T)
}

// Adjoint returns the 6x6 adjoint matrix:
// [[R, 0], [[t]_x R, R]], with rotation-first block ordering matching the
// tangent-space convention.
func (x SE3[S]) Adjoint() [6][6]S {
	R := x.R.ToMatrix()
	txR := mulMat3Mat3(skew(x.T), R)
	z := zero[S]()
	var out [6][6]S
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = R[i][j]
			out[i][j+3] = z
			out[i+3][j] = txR[i][j]
			out[i+3][j+3] = R[i][j]
		}
	}
	return out
}

func (x SE3[S]) Oplus(xi [6]S) SE3[S] {
	return x.Compose(ExpSE3[S](xi))
}

func (x SE3[S]) Ominus(y SE3[S]) [6]S {
	return y.Inverse().Compose(x).Log()
}

func CastSE3[S1 dualnum.Scalar[S1], S2 dualnum.Scalar[S2]](x SE3[S1], conv func(S1) S2) SE3[S2] {
	return SE3[S2]{
		R: CastSO3[S1, S2](x.R, conv),
		T: [3]S2{conv(x.T[0]), conv(x.T[1]), conv(x.T[2])},
	}
}
