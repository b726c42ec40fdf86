package residual

import (
	"github.com/rkleinman/factorgraph/dualnum"
	"github.com/rkleinman/factorgraph/factor"
	"github.com/rkleinman/factorgraph/lie"
	"github.com/rkleinman/factorgraph/liegen"
	"github.com/rkleinman/factorgraph/values"
)

// NewSO3Prior builds r(X) = X ⊖ prior.
func NewSO3Prior(key values.Key, prior lie.SO3, opts ...factor.Option) factor.Factor {
	priorRaw := prior.Raw()
	rawFn := func(vs *values.Values) ([]float64, error) {
		x, err := values.Get[lie.SO3](vs, key)
		if err != nil {
			return nil, err
		}
		r := PriorSO3[dualnum.Real](x.Raw(), priorRaw)
		return []float64{float64(r[0]), float64(r[1]), float64(r[2])}, nil
	}
	priorDual := liegen.CastSO3[dualnum.Real, dualnum.Dual](priorRaw, dualnum.Lift)
	dualFn := func(vs *values.Values, offsets []int, n int) ([]dualnum.Dual, error) {
		x, err := values.Get[lie.SO3](vs, key)
		if err != nil {
			return nil, err
		}
		r := PriorSO3[dualnum.Dual](x.Seed(offsets[0], n), priorDual)
		return r[:], nil
	}
	return factor.New([]values.Key{key}, []int{3}, 3, rawFn, dualFn, opts...)
}

// NewSO3Between builds r(X,Y) = (X^-1 Y) ⊖ meas.
func NewSO3Between(xKey, yKey values.Key, meas lie.SO3, opts ...factor.Option) factor.Factor {
	measRaw := meas.Raw()
	rawFn := func(vs *values.Values) ([]float64, error) {
		x, err := values.Get[lie.SO3](vs, xKey)
		if err != nil {
			return nil, err
		}
		y, err := values.Get[lie.SO3](vs, yKey)
		if err != nil {
			return nil, err
		}
		r := BetweenSO3[dualnum.Real](x.Raw(), y.Raw(), measRaw)
		return []float64{float64(r[0]), float64(r[1]), float64(r[2])}, nil
	}
	measDual := liegen.CastSO3[dualnum.Real, dualnum.Dual](measRaw, dualnum.Lift)
	dualFn := func(vs *values.Values, offsets []int, n int) ([]dualnum.Dual, error) {
		x, err := values.Get[lie.SO3](vs, xKey)
		if err != nil {
			return nil, err
		}
		y, err := values.Get[lie.SO3](vs, yKey)
		if err != nil {
			return nil, err
		}
		r := BetweenSO3[dualnum.Dual](x.Seed(offsets[0], n), y.Seed(offsets[1], n), measDual)
		return r[:], nil
	}
	return factor.New([]values.Key{xKey, yKey}, []int{3, 3}, 3, rawFn, dualFn, opts...)
}
