package residual

import (
	"github.com/rkleinman/factorgraph/dualnum"
	"github.com/rkleinman/factorgraph/factor"
	"github.com/rkleinman/factorgraph/lie"
	"github.com/rkleinman/factorgraph/liegen"
	"github.com/rkleinman/factorgraph/values"
)

func vecToFloats(r []dualnum.Real) []float64 {
	out := make([]float64, len(r))
	for i, v := range r {
		out[i] = float64(v)
	}
	return out
}

// NewVectorPrior builds r(X) = X ⊖ prior for an R^N variable.
func NewVectorPrior(key values.Key, prior lie.VectorVar, opts ...factor.Option) factor.Factor {
	n := prior.Dim()
	priorRaw := prior.Raw()
	rawFn := func(vs *values.Values) ([]float64, error) {
		x, err := values.Get[lie.VectorVar](vs, key)
		if err != nil {
			return nil, err
		}
		return vecToFloats(PriorVector[dualnum.Real](x.Raw(), priorRaw)), nil
	}
	priorDual := liegen.CastVector[dualnum.Real, dualnum.Dual](priorRaw, dualnum.Lift)
	dualFn := func(vs *values.Values, offsets []int, total int) ([]dualnum.Dual, error) {
		x, err := values.Get[lie.VectorVar](vs, key)
		if err != nil {
			return nil, err
		}
		return PriorVector[dualnum.Dual](x.Seed(offsets[0], total), priorDual), nil
	}
	return factor.New([]values.Key{key}, []int{n}, n, rawFn, dualFn, opts...)
}

// NewVectorBetween builds r(X,Y) = (X^-1 Y) ⊖ meas for an R^N variable.
func NewVectorBetween(xKey, yKey values.Key, meas lie.VectorVar, opts ...factor.Option) factor.Factor {
	n := meas.Dim()
	measRaw := meas.Raw()
	rawFn := func(vs *values.Values) ([]float64, error) {
		x, err := values.Get[lie.VectorVar](vs, xKey)
		if err != nil {
			return nil, err
		}
		y, err := values.Get[lie.VectorVar](vs, yKey)
		if err != nil {
			return nil, err
		}
		return vecToFloats(BetweenVector[dualnum.Real](x.Raw(), y.Raw(), measRaw)), nil
	}
	measDual := liegen.CastVector[dualnum.Real, dualnum.Dual](measRaw, dualnum.Lift)
	dualFn := func(vs *values.Values, offsets []int, total int) ([]dualnum.Dual, error) {
		x, err := values.Get[lie.VectorVar](vs, xKey)
		if err != nil {
			return nil, err
		}
		y, err := values.Get[lie.VectorVar](vs, yKey)
		if err != nil {
			return nil, err
		}
		return BetweenVector[dualnum.Dual](x.Seed(offsets[0], total), y.Seed(offsets[1], total), measDual), nil
	}
	return factor.New([]values.Key{xKey, yKey}, []int{n, n}, n, rawFn, dualFn, opts...)
}
