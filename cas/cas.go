// Package cas is a content-addressed store for interpreter snapshots.
// Snapshots are split into their scope records so that records which do not
// change between steps are stored once.
package cas

import (
	"errors"
	"fmt"
	"io"

	"github.com/timewinder-dev/ecmastep/inspect"
)

type CAS interface {
	Put(item Hashable) (Hash, error)
	Has(hash Hash) bool

	// RecordVisit notes that the state with this hash was reached at step.
	RecordVisit(hash Hash, step int)
	Visits(hash Hash) []int
}

type Serde interface {
	Serialize(w io.Writer) error
	Deserialize(r io.Reader) error
}

type Hashable interface {
	Serde
}

type directStore interface {
	getValue(h Hash) (bool, []byte, error)
}

type Hash uint64

func (h Hash) String() string { return fmt.Sprintf("%016x", uint64(h)) }

// Retrieve loads the item stored under hash. Snapshots are recomposed from
// their parts.
func Retrieve[T Hashable](c CAS, hash Hash) (T, error) {
	var t T
	v, ok := c.(directStore)
	if !ok {
		return t, errors.New("CAS does not support direct retrieval")
	}

	if _, wantSnapshot := any(t).(*inspect.Snapshot); wantSnapshot {
		snap, err := recomposeSnapshot(v, hash)
		if err != nil {
			return t, fmt.Errorf("recomposing snapshot: %w", err)
		}
		return any(snap).(T), nil
	}

	return getDirect[T](v, hash)
}
