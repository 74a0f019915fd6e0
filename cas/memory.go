package cas

import (
	"bytes"
	"sort"
	"sync"

	"github.com/dgryski/go-farm"
	"github.com/timewinder-dev/ecmastep/inspect"
)

type MemoryCAS struct {
	mu     sync.RWMutex
	data   map[Hash][]byte
	visits map[Hash][]int
}

func NewMemoryCAS() *MemoryCAS {
	return &MemoryCAS{
		data:   make(map[Hash][]byte),
		visits: make(map[Hash][]int),
	}
}

func (m *MemoryCAS) getValue(h Hash) (bool, []byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[h]
	return ok, v, nil
}

func (m *MemoryCAS) Has(hash Hash) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[hash]
	return ok
}

// Len is the number of stored entries.
func (m *MemoryCAS) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MemoryCAS) Put(item Hashable) (Hash, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if snap, ok := item.(*inspect.Snapshot); ok {
		return decomposeSnapshot(m, snap)
	}
	return putDirect(m, item)
}

func (m *MemoryCAS) RecordVisit(hash Hash, step int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visits[hash] = append(m.visits[hash], step)
	sort.Ints(m.visits[hash])
}

// Visits returns the steps at which the state was reached, in order.
func (m *MemoryCAS) Visits(hash Hash) []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	steps := m.visits[hash]
	out := make([]int, len(steps))
	copy(out, steps)
	return out
}

// putDirect stores item under the hash of its serialized form. The caller
// holds the write lock.
func putDirect(m *MemoryCAS, item Hashable) (Hash, error) {
	var buf bytes.Buffer
	if err := item.Serialize(&buf); err != nil {
		return 0, err
	}
	data := buf.Bytes()
	h := Hash(farm.Hash64(data))
	if _, ok := m.data[h]; ok {
		return h, nil
	}
	entry := &TypedEntry{TypeTag: getTypeTag(item), Data: data}
	var entryBuf bytes.Buffer
	if err := entry.Serialize(&entryBuf); err != nil {
		return 0, err
	}
	m.data[h] = entryBuf.Bytes()
	return h, nil
}
