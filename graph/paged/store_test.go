package paged

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaviate/graphkit/memwatch"
)

func TestStoreAppendWithinPage(t *testing.T) {
	store := NewStore(nil)

	off1 := store.Append([]byte{1, 2, 3})
	off2 := store.Append([]byte{4, 5})

	assert.Equal(t, uint64(0), off1)
	assert.Equal(t, uint64(3), off2)
	assert.Equal(t, uint64(5), store.Len())
	assert.Equal(t, 1, store.PageCount())

	for i := 0; i < 5; i++ {
		assert.Equal(t, byte(i+1), store.ByteAt(uint64(i)))
	}
}

func TestStoreAppendSpansPages(t *testing.T) {
	store := NewStore(nil)

	// fill most of the first page, then append a run that must straddle the
	// boundary
	store.Append(make([]byte, PageSize-3))
	run := []byte{10, 20, 30, 40, 50, 60}
	off := store.Append(run)

	assert.Equal(t, uint64(PageSize-3), off)
	assert.Equal(t, 2, store.PageCount())

	for i, want := range run {
		assert.Equal(t, want, store.ByteAt(off+uint64(i)))
	}

	got := make([]byte, len(run))
	store.Copy(got, off)
	assert.True(t, bytes.Equal(run, got))
}

func TestStoreAppendLargerThanPage(t *testing.T) {
	store := NewStore(nil)

	big := make([]byte, 3*PageSize+17)
	for i := range big {
		big[i] = byte(i % 251)
	}
	off := store.Append(big)
	require.Equal(t, uint64(0), off)
	assert.Equal(t, 4, store.PageCount())

	got := make([]byte, len(big))
	store.Copy(got, 0)
	assert.True(t, bytes.Equal(big, got))
}

func TestStoreGrowMaterializesIntermediatePages(t *testing.T) {
	store := NewStore(nil)

	store.Grow(5 * PageSize)
	assert.Equal(t, 5, store.PageCount())
	for i := 0; i < 5; i++ {
		assert.Len(t, store.Page(i), PageSize)
	}

	// growing never shrinks
	store.Grow(PageSize)
	assert.Equal(t, 5, store.PageCount())
}

func TestStoreOutOfRangePanics(t *testing.T) {
	store := NewStore(nil)
	store.Append([]byte{1, 2, 3})

	assert.Panics(t, func() { store.ByteAt(3) })
	assert.Panics(t, func() { store.Copy(make([]byte, 2), 2) })
	assert.Panics(t, func() { store.Page(1) })
}

func TestStoreAllocationBalance(t *testing.T) {
	tracker := memwatch.NewTracker("test")
	store := NewStore(tracker)

	store.Append(make([]byte, 2*PageSize+100))
	assert.Equal(t, int64(3*PageSize), tracker.Snapshot())

	require.Nil(t, store.Release())
	assert.Equal(t, int64(0), tracker.Snapshot())
}

func TestStoreReadAfterReleasePanics(t *testing.T) {
	store := NewStore(nil)
	store.Append([]byte{1})
	require.Nil(t, store.Release())

	assert.Panics(t, func() { store.ByteAt(0) })
}
