package residual

import (
	"github.com/rkleinman/factorgraph/dualnum"
	"github.com/rkleinman/factorgraph/factor"
	"github.com/rkleinman/factorgraph/lie"
	"github.com/rkleinman/factorgraph/liegen"
	"github.com/rkleinman/factorgraph/values"
)

// NewSE2Prior builds r(X) = X ⊖ prior.
func NewSE2Prior(key values.Key, prior lie.SE2, opts ...factor.Option) factor.Factor {
	priorRaw := prior.Raw()
	rawFn := func(vs *values.Values) ([]float64, error) {
		x, err := values.Get[lie.SE2](vs, key)
		if err != nil {
			return nil, err
		}
		r := PriorSE2[dualnum.Real](x.Raw(), priorRaw)
		return []float64{float64(r[0]), float64(r[1]), float64(r[2])}, nil
	}
	priorDual := liegen.CastSE2[dualnum.Real, dualnum.Dual](priorRaw, dualnum.Lift)
	dualFn := func(vs *values.Values, offsets []int, n int) ([]dualnum.Dual, error) {
		x, err := values.Get[lie.SE2](vs, key)
		if err != nil {
			return nil, err
		}
		r := PriorSE2[dualnum.Dual](x.Seed(offsets[0], n), priorDual)
		return r[:], nil
	}
	return factor.New([]values.Key{key}, []int{3}, 3, rawFn, dualFn, opts...)
}

// NewSE2Between builds r(X,Y) = (X^-1 Y) ⊖ meas.
func NewSE2Between(xKey, yKey values.Key, meas lie.SE2, opts ...factor.Option) factor.Factor {
	measRaw := meas.Raw()
	rawFn := func(vs *values.Values) ([]float64, error) {
		x, err := values.Get[lie.SE2](vs, xKey)
		if err != nil {
			return nil, err
		}
		y, err := values.Get[lie.SE2](vs, yKey)
		if err != nil {
			return nil, err
		}
		r := BetweenSE2[dualnum.Real](x.Raw(), y.Raw(), measRaw)
		return []float64{float64(r[0]), float64(r[1]), float64(r[2])}, nil
	}
	measDual := liegen.CastSE2[dualnum.Real, dualnum.Dual](measRaw, dualnum.Lift)
	dualFn := func(vs *values.Values, offsets []int, n int) ([]dualnum.Dual, error) {
		x, err := values.Get[lie.SE2](vs, xKey)
		if err != nil {
			return nil, err
		}
		y, err := values.Get[lie.SE2](vs, yKey)
		if err != nil {
			return nil, err
		}
		r := BetweenSE2[dualnum.Dual](x.Seed(offsets[0], n), y.Seed(offsets[1], n), measDual)
		return r[:], nil
	}
	return factor.New([]values.Key{xKey, yKey}, []int{3, 3}, 3, rawFn, dualFn, opts...)
}
