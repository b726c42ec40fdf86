package residual

import (
	"github.com/rkleinman/factorgraph/dualnum"
	"github.com/rkleinman/factorgraph/factor"
	"github.com/rkleinman/factorgraph/lie"
	"github.com/rkleinman/factorgraph/liegen"
	"github.com/rkleinman/factorgraph/values"
)

func se3ToFloats(r [6]dualnum.Real) []float64 {
	out := make([]float64, 6)
	for i := range out {
		out[i] = float64(r[i])
	}
	return out
}

// NewSE3Prior builds r(X) = X ⊖ prior.
func NewSE3Prior(key values.Key, prior lie.SE3, opts ...factor.Option) factor.Factor {
	priorRaw := prior.Raw()
	rawFn := func(vs *values.Values) ([]float64, error) {
		x, err := values.Get[lie.SE3](vs, key)
		if err != nil {
			return nil, err
		}
		return se3ToFloats(PriorSE3[dualnum.Real](x.Raw(), priorRaw)), nil
	}
	priorDual := liegen.CastSE3[dualnum.Real, dualnum.Dual](priorRaw, dualnum.Lift)
	dualFn := func(vs *values.Values, offsets []int, n int) ([]dualnum.Dual, error) {
		x, err := values.Get[lie.SE3](vs, key)
		if err != nil {
			return nil, err
		}
		r := PriorSE3[dualnum.Dual](x.Seed(offsets[0], n), priorDual)
		return r[:], nil
	}
	return factor.New([]values.Key{key}, []int{6}, 6, rawFn, dualFn, opts...)
}

// NewSE3Between builds r(X,Y) = (X^-1 Y) ⊖ meas.
func NewSE3Between(xKey, yKey values.Key, meas lie.SE3, opts ...factor.Option) factor.Factor {
	measRaw := meas.Raw()
	rawFn := func(vs *values.Values) ([]float64, error) {
		x, err := values.Get[lie.SE3](vs, xKey)
		if err != nil {
			return nil, err
		}
		y, err := values.Get[lie.SE3](vs, yKey)
		if err != nil {
			return nil, err
		}
		return se3ToFloats(BetweenSE3[dualnum.Real](x.Raw(), y.Raw(), measRaw)), nil
	}
	measDual := liegen.CastSE3[dualnum.Real, dualnum.Dual](measRaw, dualnum.Lift)
	dualFn := func(vs *values.Values, offsets []int, n int) ([]dualnum.Dual, error) {
		x, err := values.Get[lie.SE3](vs, xKey)
		if err != nil {
			return nil, err
		}
		y, err := values.Get[lie.SE3](vs, yKey)
		if err != nil {
			return nil, err
		}
		r := BetweenSE3[dualnum.Dual](x.Seed(offsets[0], n), y.Seed(offsets[1], n), measDual)
		return r[:], nil
	}
	return factor.New([]values.Key{xKey, yKey}, []int{6, 6}, 6, rawFn, dualFn, opts...)
}
