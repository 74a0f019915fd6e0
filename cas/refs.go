package cas

import (
	"io"

	"github.com/shamaton/msgpack/v2"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/inspect"
)

// SnapshotRef is the stored form of an inspect.Snapshot. Scope records are
// stored separately and referenced by hash, innermost first.
type SnapshotRef struct {
	Location          compute.Point
	Depth             int
	Strict            bool
	Stack             []inspect.Frame
	EnvironmentHashes []Hash
}

func (s *SnapshotRef) Serialize(w io.Writer) error {
	return msgpack.MarshalWrite(w, s)
}

func (s *SnapshotRef) Deserialize(r io.Reader) error {
	return msgpack.UnmarshalRead(r, s)
}

// EnvironmentRef is the stored form of one scope record.
type EnvironmentRef struct {
	Ref      uint64
	Kind     string
	Bindings []inspect.Binding
}

func (e *EnvironmentRef) Serialize(w io.Writer) error {
	return msgpack.MarshalWrite(w, e)
}

func (e *EnvironmentRef) Deserialize(r io.Reader) error {
	return msgpack.UnmarshalRead(r, e)
}
