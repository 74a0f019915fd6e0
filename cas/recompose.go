package cas

import (
	"bytes"
	"fmt"

	"github.com/timewinder-dev/ecmastep/inspect"
)

func recomposeSnapshot(d directStore, hash Hash) (*inspect.Snapshot, error) {
	ref, err := getDirect[*SnapshotRef](d, hash)
	if err != nil {
		return nil, fmt.Errorf("retrieving SnapshotRef: %w", err)
	}
	snap := &inspect.Snapshot{
		Location: ref.Location,
		Depth:    ref.Depth,
		Strict:   ref.Strict,
		Stack:    ref.Stack,
	}
	for i, h := range ref.EnvironmentHashes {
		e, err := getDirect[*EnvironmentRef](d, h)
		if err != nil {
			return nil, fmt.Errorf("recomposing environment %d: %w", i, err)
		}
		snap.Environments = append(snap.Environments, inspect.Environment{Ref: e.Ref, Kind: e.Kind, Bindings: e.Bindings})
	}
	return snap, nil
}

func getDirect[T Hashable](d directStore, hash Hash) (T, error) {
	var zero T
	has, data, err := d.getValue(hash)
	if err != nil {
		return zero, err
	}
	if !has {
		return zero, fmt.Errorf("hash not found in CAS: %s", hash)
	}
	entry := &TypedEntry{}
	if err := entry.Deserialize(bytes.NewReader(data)); err != nil {
		return zero, fmt.Errorf("deserializing TypedEntry: %w", err)
	}
	instance, err := createInstance(entry.TypeTag)
	if err != nil {
		return zero, fmt.Errorf("creating instance: %w", err)
	}
	if err := instance.Deserialize(bytes.NewReader(entry.Data)); err != nil {
		return zero, fmt.Errorf("deserializing: %w", err)
	}
	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("type mismatch: expected %T, got %T", zero, instance)
	}
	return result, nil
}
