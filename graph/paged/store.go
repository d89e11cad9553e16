//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2024 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

// Package paged implements a growable byte store backed by fixed-size pages.
// A 64-bit logical offset decomposes into (page index, page offset) via
// shift/mask, so the store can address far more data than a single Go
// allocation comfortably holds while keeping random access cheap.
//
// The store follows a strict two-phase lifecycle: a single writer appends
// during the build phase, after which the structure is frozen and may be read
// concurrently by any number of workers without locking. There is no
// synchronization on the read path; the freeze is what makes it safe.
package paged

import (
	"github.com/pkg/errors"

	"github.com/weaviate/graphkit/memwatch"
)

const (
	// PageSizeBits yields 8 KiB pages, comfortably above the 10 byte
	// worst case of a single encoded value.
	PageSizeBits = 13
	PageSize     = 1 << PageSizeBits

	pageMask = PageSize - 1
)

// ErrOutOfRange signals access beyond the written portion of the store.
var ErrOutOfRange = errors.New("paged: offset outside of written range")

type Store struct {
	pages   [][]byte
	length  uint64
	tracker *memwatch.Tracker
}

func NewStore(tracker *memwatch.Tracker) *Store {
	return &Store{tracker: tracker}
}

// Len returns the logical length, i.e. the offset the next Append starts at.
func (s *Store) Len() uint64 {
	return s.length
}

func (s *Store) PageCount() int {
	return len(s.pages)
}

// Page returns the mutable region backing the given page index. Only the
// build phase may mutate it.
func (s *Store) Page(index int) []byte {
	if index < 0 || index >= len(s.pages) {
		panic(errors.Wrapf(ErrOutOfRange, "page %d of %d", index, len(s.pages)))
	}
	return s.pages[index]
}

// Grow ensures capacity for totalBytes. Pages never shrink, and a target
// beyond the current high-water mark materializes every intermediate page so
// the page set is never sparse.
func (s *Store) Grow(totalBytes uint64) {
	needed := int((totalBytes + pageMask) >> PageSizeBits)
	for len(s.pages) < needed {
		s.pages = append(s.pages, make([]byte, PageSize))
		s.tracker.Reserve(PageSize)
	}
}

// Append copies buf into the store at the current logical end, spanning page
// boundaries as needed, and returns the logical offset it was written at.
// Single writer only.
func (s *Store) Append(buf []byte) uint64 {
	start := s.length
	s.Grow(s.length + uint64(len(buf)))

	offset := s.length
	for len(buf) > 0 {
		page := s.pages[offset>>PageSizeBits]
		n := copy(page[offset&pageMask:], buf)
		buf = buf[n:]
		offset += uint64(n)
	}
	s.length = offset
	return start
}

// ByteAt reads a single byte at a logical offset.
func (s *Store) ByteAt(offset uint64) byte {
	if offset >= s.length {
		panic(errors.Wrapf(ErrOutOfRange, "byte at %d with length %d", offset, s.length))
	}
	return s.pages[offset>>PageSizeBits][offset&pageMask]
}

// Copy reads n bytes starting at a logical offset into dst, spanning page
// boundaries as needed.
func (s *Store) Copy(dst []byte, offset uint64) {
	if offset+uint64(len(dst)) > s.length {
		panic(errors.Wrapf(ErrOutOfRange, "copy [%d, %d) with length %d",
			offset, offset+uint64(len(dst)), s.length))
	}
	for len(dst) > 0 {
		page := s.pages[offset>>PageSizeBits]
		n := copy(dst, page[offset&pageMask:])
		dst = dst[n:]
		offset += uint64(n)
	}
}

// Release drops all pages and returns their bytes to the tracker. Any read
// after Release panics rather than returning stale data.
func (s *Store) Release() error {
	released := int64(len(s.pages)) * PageSize
	s.pages = nil
	s.length = 0
	return s.tracker.Release(released)
}
