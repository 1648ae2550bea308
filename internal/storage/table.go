package storage

import (
	"sort"
	"sync"
)

// Table is a keyed collection with store-assigned integer ids. The stores
// in user and chat only talk to this interface, so a different backend can
// be dropped in without touching their integrity rules.
type Table[T any] interface {
	// Insert allocates the next id, builds the row for it and stores it.
	Insert(build func(id int) T) int
	Get(id int) (T, bool)
	// Update runs fn against the stored row under the table's write lock.
	// It reports false if id is not present.
	Update(id int, fn func(row *T)) bool
	Delete(id int) bool
	Has(id int) bool
	Len() int
	// All returns the rows ordered by id.
	All() []T
}

// Memory is the in-process Table. Ids come from a monotonic counter and are
// never handed out twice, even after deletes.
type Memory[T any] struct {
	mu   sync.RWMutex
	rows map[int]T
	last int
}

func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{
		rows: make(map[int]T),
	}
}

func (m *Memory[T]) Insert(build func(id int) T) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.last++
	id := m.last
	m.rows[id] = build(id)

	return id
}

func (m *Memory[T]) Get(id int) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.rows[id]
	return row, ok
}

func (m *Memory[T]) Update(id int, fn func(row *T)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[id]
	if !ok {
		return false
	}
	fn(&row)
	m.rows[id] = row

	return true
}

func (m *Memory[T]) Delete(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[id]; !ok {
		return false
	}
	delete(m.rows, id)

	return true
}

func (m *Memory[T]) Has(id int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.rows[id]
	return ok
}

func (m *Memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.rows)
}

func (m *Memory[T]) All() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.rows[id])
	}

	return out
}
