package storage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID   int
	Name string
}

func insert(t *Memory[row], name string) int {
	return t.Insert(func(id int) row { return row{ID: id, Name: name} })
}

func TestMemoryIDsStartAtOne(t *testing.T) {
	tbl := NewMemory[row]()

	assert.Equal(t, 1, insert(tbl, "a"))
	assert.Equal(t, 2, insert(tbl, "b"))

	got, ok := tbl.Get(2)
	require.True(t, ok)
	assert.Equal(t, row{ID: 2, Name: "b"}, got)
}

func TestMemoryIDsAreNotReusedAfterDelete(t *testing.T) {
	tbl := NewMemory[row]()
	insert(tbl, "a")
	middle := insert(tbl, "b")
	insert(tbl, "c")

	require.True(t, tbl.Delete(middle))
	next := insert(tbl, "d")

	assert.Equal(t, 4, next)
	assert.Equal(t, 3, tbl.Len())
	got, _ := tbl.Get(3)
	assert.Equal(t, "c", got.Name, "live row must not be overwritten")
}

func TestMemoryDeleteMissing(t *testing.T) {
	tbl := NewMemory[row]()

	assert.False(t, tbl.Delete(42))
	assert.Equal(t, 0, tbl.Len())
}

func TestMemoryUpdate(t *testing.T) {
	tbl := NewMemory[row]()
	id := insert(tbl, "a")

	ok := tbl.Update(id, func(r *row) { r.Name = "renamed" })
	require.True(t, ok)

	got, _ := tbl.Get(id)
	assert.Equal(t, "renamed", got.Name)
	assert.False(t, tbl.Update(99, func(r *row) { r.Name = "nope" }))
}

func TestMemoryAllIsOrderedByID(t *testing.T) {
	tbl := NewMemory[row]()
	for _, name := range []string{"a", "b", "c", "d"} {
		insert(tbl, name)
	}
	tbl.Delete(2)

	all := tbl.All()
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 3, 4}, []int{all[0].ID, all[1].ID, all[2].ID})
}

func TestMemoryConcurrentInsertsGetDistinctIDs(t *testing.T) {
	tbl := NewMemory[row]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			insert(tbl, "x")
		}()
	}
	wg.Wait()

	seen := make(map[int]bool)
	for _, r := range tbl.All() {
		assert.False(t, seen[r.ID], "duplicate id %d", r.ID)
		seen[r.ID] = true
	}
	assert.Len(t, seen, 50)
}
