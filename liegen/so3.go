package liegen

import "github.com/rkleinman/factorgraph/dualnum"

// SO3 is a unit quaternion (x, y, z, w) representing a 3D rotation. Storage
// order is xyzw, real part last.
type SO3[S dualnum.Scalar[S]] struct {
	X, Y, Z, W S
}

// IdentitySO3 returns the identity rotation.
func IdentitySO3[S dualnum.Scalar[S]]() SO3[S] {
	return SO3[S]{X: zero[S](), Y: zero[S](), Z: zero[S](), W: one[S]()}
}

func (SO3[S]) Dim() int { return 3 }

// ExpSO3 maps a tangent vector ξ ∈ R^3 to SO(3) via the quaternion
// exponential, with a small-angle Taylor branch avoiding division by a
// near-zero θ.
func ExpSO3[S dualnum.Scalar[S]](xi [3]S) SO3[S] {
	theta2 := norm2_3(xi)
	if theta2.Float() < smallAngleSq {
		half := konst[S](0.5)
		w := one[S]().Sub(theta2.Quo(konst[S](8)))
		return SO3[S]{X: xi[0].Mul(half), Y: xi[1].Mul(half), Z: xi[2].Mul(half), W: w}
	}
	theta := theta2.Sqrt()
	halfTheta := theta.Quo(konst[S](2))
	w := halfTheta.Cos()
	s := halfTheta.Sin().Quo(theta)
	return SO3[S]{X: xi[0].Mul(s), Y: xi[1].Mul(s), Z: xi[2].Mul(s), W: w}
}

// Log maps this rotation back to its tangent vector, using the atan2
// formulation with a sign correction for continuity near w=0.
func (q SO3[S]) Log() [3]S {
	v := [3]S{q.X, q.Y, q.Z}
	n2 := norm2_3(v)
	if n2.Float() < smallAngleSq {
		coeff := konst[S](2).Quo(q.W).Sub(konst[S](2.0 / 3.0).Mul(n2).Quo(q.W.Mul(q.W).Mul(q.W)))
		return scale3(v, coeff)
	}
	sign := 1.0
	if q.W.Float() < 0 {
		sign = -1
	}
	s := konst[S](sign)
	n := n2.Sqrt()
	sn := s.Mul(n)
	sw := s.Mul(q.W)
	angle := konst[S](2).Mul(sn.Atan2(sw))
	coeff := s.Mul(angle).Quo(n)
	return scale3(v, coeff)
}

// Compose returns the Hamilton product q*o, chosen so that
// ToMatrix(q.Compose(o)) = ToMatrix(q) * ToMatrix(o).
func (q SO3[S]) Compose(o SO3[S]) SO3[S] {
	w := q.W.Mul(o.W).Sub(q.X.Mul(o.X)).Sub(q.Y.Mul(o.Y)).Sub(q.Z.Mul(o.Z))
	x := q.W.Mul(o.X).Add(q.X.Mul(o.W)).Add(q.Y.Mul(o.Z)).Sub(q.Z.Mul(o.Y))
	y := q.W.Mul(o.Y).Sub(q.X.Mul(o.Z)).Add(q.Y.Mul(o.W)).Add(q.Z.Mul(o.X))
	z := q.W.Mul(o.Z).Add(q.X.Mul(o.Y)).Sub(q.Y.Mul(o.X)).Add(q.Z.Mul(o.W))
	return SO3[S]{X: x, Y: y, Z: z, W: w}
}

// Inverse returns the conjugate quaternion (valid since storage is unit
// norm).
func (q SO3[S]) Inverse() SO3[S] {
	return SO3[S]{X: q.X.Neg(), Y: q.Y.Neg(), Z: q.Z.Neg(), W: q.W}
}

// ToMatrix returns the 3x3 rotation matrix equivalent to q.
func (q SO3[S]) ToMatrix() mat3[S] {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	two := konst[S](2)
	one_ := one[S]()
	xx := x.Mul(x)
	yy := y.Mul(y)
	zz := z.Mul(z)
	xy := x.Mul(y)
	xz := x.Mul(z)
	yz := y.Mul(z)
	wx := w.Mul(x)
	wy := w.Mul(y)
	wz := w.Mul(z)
	return mat3[S]{
		{one_.Sub(two.Mul(yy.Add(zz))), two.Mul(xy.Sub(wz)), two.Mul(xz.Add(wy))},
		{two.Mul(xy.Add(wz)), one_.Sub(two.Mul(xx.Add(zz))), two.Mul(yz.Sub(wx))},
		{two.Mul(xz.Sub(wy)), two.Mul(yz.Add(wx)), one_.Sub(two.Mul(xx.Add(yy)))},
	}
}

// Apply rotates the vector v by q.
func (q SO3[S]) Apply(v [3]S) [3]S {
	return mulMat3Vec3(q.ToMatrix(), v)
}

// Adjoint of SO(3) equals the rotation matrix.
func (q SO3[S]) Adjoint() mat3[S] {
	return q.ToMatrix()
}

// Oplus implements the right-handed retraction X ⊕ ξ = X · exp(ξ).
func (q SO3[S]) Oplus(xi [3]S) SO3[S] {
	return q.Compose(ExpSO3[S](xi))
}

// Ominus implements X ⊖ Y = log(Y^-1 · X).
func (x SO3[S]) Ominus(y SO3[S]) [3]S {
	return y.Inverse().Compose(x).Log()
}

// CastSO3 converts a rotation's storage from one scalar kind to another
// (e.g. Real -> Dual, with zero seeded partials).
func CastSO3[S1 dualnum.Scalar[S1], S2 dualnum.Scalar[S2]](q SO3[S1], conv func(S1) S2) SO3[S2] {
	return SO3[S2]{X: conv(q.X), Y: conv(q.Y), Z: conv(q.Z), W: conv(q.W)}
}
