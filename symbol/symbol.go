// Package symbol provides the conventional (tag, index) Key constructor,
// mirroring gtsam-style symbol helpers: a one-byte tag
// ('x', 'l', ...) distinguishes variable kinds within a single flat Key
// space.
package symbol

import "github.com/rkleinman/factorgraph/values"

// Key builds a values.Key from a tag byte and an index.
func Key(tag byte, index uint64) values.Key {
	return values.Key{Tag: tag, Index: index}
}
