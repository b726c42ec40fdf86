// Package values implements the heterogeneous key->variable container
// that preserves insertion order to give stable column
// layouts for the linear system.
package values

import "fmt"

// Key is an opaque, hashable identifier: a (tag, index) pair. It is a plain
// comparable struct, usable directly as a Go map key — no separate hashing
// step is needed, unlike languages where Key would need a derived Hash impl.
type Key struct {
	Tag   byte
	Index uint64
}

func (k Key) String() string {
	return fmt.Sprintf("%c%d", k.Tag, k.Index)
}
