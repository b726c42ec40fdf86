package values

import (
	"fmt"

	"github.com/rkleinman/factorgraph/fgerrors"
)

// Variable is the minimal capability set the optimizer's retraction loop
// needs from a stored Lie-group element: its tangent dimension, and the
// right-handed retraction X ⊕ ξ. Concrete species (lie.SO2, lie.SO3, ...)
// implement this directly; richer per-species operations (Ominus, Compose,
// Seed for AD) are reached by type-asserting back to the concrete type via
// Get.
type Variable interface {
	Dim() int
	Oplus(xi []float64) Variable
}

// Values is an ordered key->variable map: a slice carries insertion order
// (which fixes the linear system's column layout) while the
// map gives expected O(1) lookup.
type Values struct {
	order []Key
	m     map[Key]Variable
}

// New returns an empty Values container.
func New() *Values {
	return &Values{m: make(map[Key]Variable)}
}

// Insert adds v under key k. Re-inserting an existing key overwrites the
// variable but does not change its position in the column layout.
func (vs *Values) Insert(k Key, v Variable) {
	if _, ok := vs.m[k]; !ok {
		vs.order = append(vs.order, k)
	}
	vs.m[k] = v
}

// At returns the variable stored at k.
func (vs *Values) At(k Key) (Variable, bool) {
	v, ok := vs.m[k]
	return v, ok
}

// Keys returns the keys in insertion order.
func (vs *Values) Keys() []Key {
	out := make([]Key, len(vs.order))
	copy(out, vs.order)
	return out
}

// Len returns the number of stored variables.
func (vs *Values) Len() int { return len(vs.order) }

// Retract applies Oplus to the named variable, replacing it in place. It is
// used by the optimizer to apply a solved step δ.
func (vs *Values) Retract(k Key, xi []float64) error {
	v, ok := vs.m[k]
	if !ok {
		return fmt.Errorf("%w: %v", fgerrors.ErrMissingKey, k)
	}
	vs.m[k] = v.Oplus(xi)
	return nil
}

// Clone returns a shallow copy of vs: variable values themselves are
// immutable (Oplus returns a new Variable), so sharing them across the
// clone is safe.
func (vs *Values) Clone() *Values {
	out := &Values{
		order: make([]Key, len(vs.order)),
		m:     make(map[Key]Variable, len(vs.m)),
	}
	copy(out.order, vs.order)
	for k, v := range vs.m {
		out.m[k] = v
	}
	return out
}

// Get fetches the variable at k and type-asserts it to T, returning
// ErrMissingKey or a wrapped type-mismatch error (reported as
// ErrDimensionMismatch, since a type mismatch here always means the caller
// built a factor against the wrong species for this key).
func Get[T Variable](vs *Values, k Key) (T, error) {
	var zero T
	v, ok := vs.m[k]
	if !ok {
		return zero, fmt.Errorf("%w: %v", fgerrors.ErrMissingKey, k)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: key %v holds %T, want %T", fgerrors.ErrDimensionMismatch, k, v, zero)
	}
	return t, nil
}
