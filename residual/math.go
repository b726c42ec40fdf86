// Package residual implements the built-in residual families (prior and
// between) for each variable species, plus the per-species glue that wires
// them into factor.Factor via ad's dual-seeding driver. The residual math
// itself is written once per species but polymorphic over the scalar kind
// (dualnum.Scalar), so the same code path evaluates both the plain residual
// and its AD Jacobian; what cannot be shared across species, absent
// higher-kinded generics, is the thin wrapper selecting which liegen type to
// instantiate.
package residual

import (
	"github.com/rkleinman/factorgraph/dualnum"
	"github.com/rkleinman/factorgraph/liegen"
)

func PriorSO2[S dualnum.Scalar[S]](x, prior liegen.SO2[S]) [1]S {
	return x.Ominus(prior)
}

func BetweenSO2[S dualnum.Scalar[S]](x, y, z liegen.SO2[S]) [1]S {
	return x.Inverse().Compose(y).Ominus(z)
}

func PriorSO3[S dualnum.Scalar[S]](x, prior liegen.SO3[S]) [3]S {
	return x.Ominus(prior)
}

func BetweenSO3[S dualnum.Scalar[S]](x, y, z liegen.SO3[S]) [3]S {
	return x.Inverse().Compose(y).Ominus(z)
}

func PriorSE2[S dualnum.Scalar[S]](x, prior liegen.SE2[S]) [3]S {
	return x.Ominus(prior)
}

func BetweenSE2[S dualnum.Scalar[S]](x, y, z liegen.SE2[S]) [3]S {
	return x.Inverse().Compose(y).Ominus(z)
}

func PriorSE3[S dualnum.Scalar[S]](x, prior liegen.SE3[S]) [6]S {
	return x.Ominus(prior)
}

func BetweenSE3[S dualnum.Scalar[S]](x, y, z liegen.SE3[S]) [6]S {
	return x.Inverse().Compose(y).Ominus(z)
}

func PriorVector[S dualnum.Scalar[S]](x, prior liegen.Vector[S]) []S {
	return x.Ominus(prior)
}

func BetweenVector[S dualnum.Scalar[S]](x, y, z liegen.Vector[S]) []S {
	return x.Inverse().Compose(y).Ominus(z)
}
