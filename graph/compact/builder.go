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

package compact

import (
	"math"
	"slices"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/graphkit/graph/paged"
	"github.com/weaviate/graphkit/graph/varbyte"
	"github.com/weaviate/graphkit/memwatch"
)

// Builder stages relationships for a fixed node-id space and assembles the
// frozen Graph in a single pass. It is strictly single-writer: the loading
// collaborator drives it from one goroutine and hands the result to any
// number of readers.
//
// Parallel relationships are preserved: degree counts relationships, not
// distinct neighbors, so duplicates survive the sort and show up as zero
// deltas in the encoding.
type Builder struct {
	nodeCount  int64
	undirected bool
	tracker    *memwatch.Tracker
	logger     logrus.FieldLogger

	out [][]uint64
	in  [][]uint64

	toOriginal []uint64
	toInternal map[uint64]int64
	assigned   []bool
	mapped     int64

	relationships int64
	built         bool
}

type BuilderOption func(*Builder)

// WithUndirected mirrors every relationship into both endpoints' adjacency
// before encoding. The resulting graph serves the mirrored list for every
// direction.
func WithUndirected() BuilderOption {
	return func(b *Builder) { b.undirected = true }
}

func WithTracker(tracker *memwatch.Tracker) BuilderOption {
	return func(b *Builder) { b.tracker = tracker }
}

func WithLogger(logger logrus.FieldLogger) BuilderOption {
	return func(b *Builder) { b.logger = logger }
}

func NewBuilder(nodeCount int64, opts ...BuilderOption) *Builder {
	b := &Builder{
		nodeCount:  nodeCount,
		logger:     logrus.StandardLogger(),
		out:        make([][]uint64, nodeCount),
		toOriginal: make([]uint64, nodeCount),
		toInternal: make(map[uint64]int64, nodeCount),
		assigned:   make([]bool, nodeCount),
	}
	for _, opt := range opts {
		opt(b)
	}
	if !b.undirected {
		b.in = make([][]uint64, nodeCount)
	}
	return b
}

// SetOriginalID records the externally-visible id for an internal node. Every
// internal id maps to exactly one original id and vice versa; violations are
// build errors, not silent overwrites. If no ids are set at all, Build falls
// back to the identity mapping.
func (b *Builder) SetOriginalID(internal int64, original uint64) error {
	if internal < 0 || internal >= b.nodeCount {
		return errors.Errorf("internal id %d out of range [0, %d)", internal, b.nodeCount)
	}
	if b.assigned[internal] {
		return errors.Errorf("internal id %d already mapped to %d", internal, b.toOriginal[internal])
	}
	if prev, ok := b.toInternal[original]; ok {
		return errors.Errorf("original id %d already mapped to internal %d", original, prev)
	}
	b.toOriginal[internal] = original
	b.toInternal[original] = internal
	b.assigned[internal] = true
	b.mapped++
	return nil
}

// AddRelationship stages one relationship between two internal node ids.
func (b *Builder) AddRelationship(source, target int64) error {
	if b.built {
		return errors.New("builder already produced a graph")
	}
	if source < 0 || source >= b.nodeCount {
		return errors.Errorf("source id %d out of range [0, %d)", source, b.nodeCount)
	}
	if target < 0 || target >= b.nodeCount {
		return errors.Errorf("target id %d out of range [0, %d)", target, b.nodeCount)
	}

	b.out[source] = append(b.out[source], uint64(target))
	if b.undirected {
		b.out[target] = append(b.out[target], uint64(source))
	} else {
		b.in[target] = append(b.in[target], uint64(source))
	}
	b.relationships++
	return nil
}

// Build sorts and delta-encodes all staged adjacency into a paged store,
// freezes the result and returns it. The builder cannot be reused.
func (b *Builder) Build() (*Graph, error) {
	if b.built {
		return nil, errors.New("builder already produced a graph")
	}
	if err := b.finalizeMapping(); err != nil {
		return nil, err
	}
	b.built = true

	store := paged.NewStore(b.tracker)

	outMeta, err := encodeLists(store, b.out)
	if err != nil {
		return nil, errors.Wrap(err, "encode outgoing adjacency")
	}
	b.out = nil

	var inMeta adjacency
	if !b.undirected {
		inMeta, err = encodeLists(store, b.in)
		if err != nil {
			return nil, errors.Wrap(err, "encode incoming adjacency")
		}
		b.in = nil
	}

	g := &Graph{
		nodeCount:  b.nodeCount,
		undirected: b.undirected,
		store:      store,
		out:        outMeta,
		in:         inMeta,
		toOriginal: b.toOriginal,
		toInternal: b.toInternal,
		tracker:    b.tracker,
	}
	g.metaBytes = g.metadataBytes()
	b.tracker.Reserve(g.metaBytes)

	b.logger.WithFields(logrus.Fields{
		"action":        "compact_graph_build",
		"nodes":         b.nodeCount,
		"relationships": b.relationships,
		"undirected":    b.undirected,
		"stored_bytes":  store.Len(),
		"pages":         store.PageCount(),
	}).Debug("built compact graph")

	return g, nil
}

func (b *Builder) finalizeMapping() error {
	if b.mapped == 0 {
		for i := int64(0); i < b.nodeCount; i++ {
			b.toOriginal[i] = uint64(i)
			b.toInternal[uint64(i)] = i
		}
		return nil
	}
	if b.mapped != b.nodeCount {
		return errors.Errorf("incomplete id mapping: %d of %d nodes assigned",
			b.mapped, b.nodeCount)
	}
	return nil
}

// adjacency is the per-node metadata for one direction: the byte range into
// the store plus the relationship count.
type adjacency struct {
	offsets  []uint64
	byteLens []uint32
	degrees  []int64
}

func encodeLists(store *paged.Store, lists [][]uint64) (adjacency, error) {
	n := len(lists)
	meta := adjacency{
		offsets:  make([]uint64, n),
		byteLens: make([]uint32, n),
		degrees:  make([]int64, n),
	}

	var scratch []byte
	for node, list := range lists {
		slices.Sort(list)

		size := varbyte.DeltaSize(list)
		if size > cap(scratch) {
			scratch = make([]byte, size)
		}
		scratch = scratch[:size]

		if size > math.MaxUint32 {
			return adjacency{}, errors.Errorf(
				"node %d: encoded adjacency of %d bytes exceeds per-node limit", node, size)
		}

		written, err := varbyte.PutDeltas(scratch, list)
		if err != nil {
			return adjacency{}, errors.Wrapf(err, "node %d", node)
		}
		if written != size {
			return adjacency{}, errors.Errorf(
				"node %d: encoded %d bytes, pre-sized %d", node, written, size)
		}

		meta.offsets[node] = store.Append(scratch)
		meta.byteLens[node] = uint32(size)
		meta.degrees[node] = int64(len(list))
	}
	return meta, nil
}

func (a adjacency) bytes() int64 {
	return int64(len(a.offsets))*8 + int64(len(a.byteLens))*4 + int64(len(a.degrees))*8
}
