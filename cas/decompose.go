package cas

import (
	"fmt"

	"github.com/timewinder-dev/ecmastep/inspect"
)

// decomposeSnapshot stores every scope record of s on its own and then the
// SnapshotRef pointing at them. The caller holds the write lock.
func decomposeSnapshot(m *MemoryCAS, s *inspect.Snapshot) (Hash, error) {
	if s == nil {
		return 0, fmt.Errorf("cannot decompose nil Snapshot")
	}
	ref := &SnapshotRef{
		Location: s.Location,
		Depth:    s.Depth,
		Strict:   s.Strict,
		Stack:    s.Stack,
	}
	for i, e := range s.Environments {
		h, err := putDirect(m, &EnvironmentRef{Ref: e.Ref, Kind: e.Kind, Bindings: e.Bindings})
		if err != nil {
			return 0, fmt.Errorf("decomposing environment %d: %w", i, err)
		}
		ref.EnvironmentHashes = append(ref.EnvironmentHashes, h)
	}
	return putDirect(m, ref)
}
