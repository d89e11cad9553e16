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

// Package compact materializes a property graph into a scan-friendly,
// read-only in-memory representation: dense internal node ids, per-node
// degrees in flat metadata arrays, and adjacency lists delta-encoded into a
// paged byte store. Built once by a single writer, then frozen and shared by
// any number of algorithm workers without locking.
package compact

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/weaviate/graphkit/graph/paged"
	"github.com/weaviate/graphkit/graph/varbyte"
	"github.com/weaviate/graphkit/memwatch"
)

// RelationshipVisitor is invoked once per relationship with the internal ids
// of both endpoints. Returning false stops the iteration; remaining bytes of
// the adjacency run are not decoded.
type RelationshipVisitor func(source, target int64) bool

// Graph is the assembled read-only graph. All query methods are safe for
// concurrent use; Release must not race with readers.
type Graph struct {
	nodeCount  int64
	undirected bool

	store *paged.Store
	out   adjacency
	in    adjacency

	toOriginal []uint64
	toInternal map[uint64]int64

	tracker   *memwatch.Tracker
	metaBytes int64
	released  atomic.Bool
}

func (g *Graph) NodeCount() int64 {
	g.mustNotBeReleased()
	return g.nodeCount
}

func (g *Graph) Undirected() bool {
	return g.undirected
}

// Degree returns the number of relationships of a node in the given
// direction. For Both on a directed graph this is the sum of both directional
// counts (each relationship counted once per endpoint); an undirected graph
// serves its mirrored count for every direction.
func (g *Graph) Degree(node int64, direction Direction) int64 {
	g.mustNotBeReleased()
	g.mustBeInRange(node)

	if g.undirected {
		return g.out.degrees[node]
	}
	switch direction {
	case Outgoing:
		return g.out.degrees[node]
	case Incoming:
		return g.in.degrees[node]
	case Both:
		return g.out.degrees[node] + g.in.degrees[node]
	default:
		panic(errors.Errorf("unknown direction %d", direction))
	}
}

// ForEachRelationship decodes the node's adjacency in ascending neighbor
// order, invoking the visitor with (node, neighbor). For Both on a directed
// graph the outgoing list is visited first, then the incoming one.
func (g *Graph) ForEachRelationship(node int64, direction Direction, visitor RelationshipVisitor) {
	g.mustNotBeReleased()
	g.mustBeInRange(node)

	if g.undirected {
		g.forEach(g.out, node, visitor)
		return
	}
	switch direction {
	case Outgoing:
		g.forEach(g.out, node, visitor)
	case Incoming:
		g.forEach(g.in, node, visitor)
	case Both:
		if g.forEach(g.out, node, visitor) {
			g.forEach(g.in, node, visitor)
		}
	default:
		panic(errors.Errorf("unknown direction %d", direction))
	}
}

// forEach reports whether the iteration ran to completion.
func (g *Graph) forEach(meta adjacency, node int64, visitor RelationshipVisitor) bool {
	count := meta.degrees[node]
	if count == 0 {
		return true
	}

	offset := meta.offsets[node]
	length := uint64(meta.byteLens[node])

	// a run that stays within one page decodes straight off the page slice
	if firstPage := offset >> paged.PageSizeBits; (offset+length-1)>>paged.PageSizeBits == firstPage {
		start := offset & (paged.PageSize - 1)
		reader := varbyte.NewDeltaReader(g.store.Page(int(firstPage))[start : start+length])
		for neighbor, ok := reader.Next(); ok; neighbor, ok = reader.Next() {
			if !visitor(node, int64(neighbor)) {
				return false
			}
		}
		return true
	}

	dec := newListDecoder(g.store, offset)
	neighbor := uint64(0)
	for i := int64(0); i < count; i++ {
		neighbor += dec.uvarint()
		if !visitor(node, int64(neighbor)) {
			return false
		}
	}
	return true
}

// ToOriginalNodeID translates an internal id back to the externally-visible
// identifier.
func (g *Graph) ToOriginalNodeID(internal int64) uint64 {
	g.mustNotBeReleased()
	g.mustBeInRange(internal)
	return g.toOriginal[internal]
}

// ToInternalNodeID translates an original id to its dense internal id. The
// second return is false when the id was not part of the loaded graph.
func (g *Graph) ToInternalNodeID(original uint64) (int64, bool) {
	g.mustNotBeReleased()
	internal, ok := g.toInternal[original]
	return internal, ok
}

// Release drops the store and the id mapping and returns all tracked bytes.
// It is idempotent; any query after Release panics instead of returning stale
// data.
func (g *Graph) Release() error {
	if !g.released.CompareAndSwap(false, true) {
		return nil
	}

	if err := g.store.Release(); err != nil {
		return errors.Wrap(err, "release adjacency store")
	}
	g.store = nil
	g.out = adjacency{}
	g.in = adjacency{}
	g.toOriginal = nil
	g.toInternal = nil

	err := g.tracker.Release(g.metaBytes)
	return errors.Wrap(err, "release graph metadata")
}

func (g *Graph) metadataBytes() int64 {
	return g.out.bytes() + g.in.bytes() + int64(len(g.toOriginal))*8
}

func (g *Graph) mustNotBeReleased() {
	if g.released.Load() {
		panic(errors.New("compact: graph accessed after Release"))
	}
}

func (g *Graph) mustBeInRange(node int64) {
	if node < 0 || node >= g.nodeCount {
		panic(errors.Errorf("node id %d out of range [0, %d)", node, g.nodeCount))
	}
}

// listDecoder walks an encoded adjacency run byte by byte, caching the
// current page slice and refreshing it at page edges. It only serves runs
// that cross a page boundary; in-page runs use varbyte.DeltaReader directly.
type listDecoder struct {
	store   *paged.Store
	page    []byte
	pageIdx int
	pageOff int
}

func newListDecoder(store *paged.Store, offset uint64) *listDecoder {
	idx := int(offset >> paged.PageSizeBits)
	return &listDecoder{
		store:   store,
		page:    store.Page(idx),
		pageIdx: idx,
		pageOff: int(offset & (paged.PageSize - 1)),
	}
}

func (d *listDecoder) uvarint() uint64 {
	var v uint64
	var shift uint
	for {
		if d.pageOff == paged.PageSize {
			d.pageIdx++
			d.page = d.store.Page(d.pageIdx)
			d.pageOff = 0
		}
		b := d.page[d.pageOff]
		d.pageOff++
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v
		}
		shift += 7
	}
}
