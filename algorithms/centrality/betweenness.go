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

package centrality

import (
	"context"

	"github.com/pkg/errors"

	"github.com/weaviate/graphkit/algorithms"
	"github.com/weaviate/graphkit/graph/compact"
	"github.com/weaviate/graphkit/memwatch"
)

// brandesScratch is the per-source working state of Brandes' betweenness
// algorithm: BFS queue, dependency stack, shortest-path counts (sigma),
// distances and dependency values (delta). All buffers are sized to nodeCount
// once and reset between source nodes, never reallocated; in the parallel
// variant each worker owns its own scratch exclusively.
type brandesScratch struct {
	stack    []int64
	queue    []int64
	preds    [][]int64
	sigma    []float64
	distance []int64
	delta    []float64
}

func newBrandesScratch(nodeCount int64) *brandesScratch {
	s := &brandesScratch{
		stack:    make([]int64, 0, nodeCount),
		queue:    make([]int64, 0, nodeCount),
		preds:    make([][]int64, nodeCount),
		sigma:    make([]float64, nodeCount),
		distance: make([]int64, nodeCount),
		delta:    make([]float64, nodeCount),
	}
	for i := range s.distance {
		s.distance[i] = -1
	}
	return s
}

// bytes is the fixed footprint of the scratch buffers. The per-node
// predecessor lists grow on demand and are not counted.
func (s *brandesScratch) bytes() int64 {
	fixed := cap(s.stack) + cap(s.queue) + len(s.sigma) + len(s.distance) + len(s.delta)
	return int64(fixed)*8 + int64(len(s.preds))*24
}

func (s *brandesScratch) reset() {
	s.stack = s.stack[:0]
	s.queue = s.queue[:0]
	for i := range s.preds {
		s.preds[i] = s.preds[i][:0]
	}
	for i := range s.sigma {
		s.sigma[i] = 0
		s.distance[i] = -1
		s.delta[i] = 0
	}
}

// singleSource runs one Brandes iteration from source and emits the
// dependency contribution of every node on a shortest path from it. Emissions
// are commutative adds, so contributions from different sources may be merged
// in any order.
func (s *brandesScratch) singleSource(graph *compact.Graph, source int64,
	direction compact.Direction, emit func(node int64, contribution float64),
) {
	s.reset()
	s.sigma[source] = 1
	s.distance[source] = 0
	s.queue = append(s.queue, source)

	head := 0
	for head < len(s.queue) {
		v := s.queue[head]
		head++
		s.stack = append(s.stack, v)
		nextDist := s.distance[v] + 1

		graph.ForEachRelationship(v, direction, func(_, w int64) bool {
			if s.distance[w] < 0 {
				s.distance[w] = nextDist
				s.queue = append(s.queue, w)
			}
			if s.distance[w] == nextDist {
				s.sigma[w] += s.sigma[v]
				s.preds[w] = append(s.preds[w], v)
			}
			return true
		})
	}

	// dependency accumulation in reverse BFS order
	for i := len(s.stack) - 1; i >= 0; i-- {
		w := s.stack[i]
		coefficient := (1 + s.delta[w]) / s.sigma[w]
		for _, v := range s.preds[w] {
			s.delta[v] += s.sigma[v] * coefficient
		}
		if w != source && s.delta[w] != 0 {
			emit(w, s.delta[w])
		}
	}
}

// BetweennessCentrality computes unnormalized betweenness centrality
// (Brandes 2001) with a single worker. Each ordered source/target pair
// contributes once; an undirected (mirrored) graph therefore yields twice the
// classic undirected values.
type BetweennessCentrality struct {
	graph      *compact.Graph
	centrality []float64
	scratch    *brandesScratch
	nodeCount  int64

	direction compact.Direction
	progress  algorithms.ProgressLogger
	flag      *algorithms.TerminationFlag
	tracker   *memwatch.Tracker
	released  bool
}

func NewBetweennessCentrality(graph *compact.Graph) *BetweennessCentrality {
	return &BetweennessCentrality{
		graph:      graph,
		nodeCount:  graph.NodeCount(),
		centrality: make([]float64, graph.NodeCount()),
		scratch:    newBrandesScratch(graph.NodeCount()),
		direction:  compact.Outgoing,
		progress:   algorithms.NopProgressLogger{},
	}
}

func (bc *BetweennessCentrality) WithDirection(direction compact.Direction) *BetweennessCentrality {
	bc.direction = direction
	return bc
}

// WithTracker accounts the result array and the scratch buffers against
// tracker; the bytes are returned on Release.
func (bc *BetweennessCentrality) WithTracker(tracker *memwatch.Tracker) *BetweennessCentrality {
	tracker.Reserve(bc.workingBytes())
	bc.tracker = tracker
	return bc
}

func (bc *BetweennessCentrality) WithProgressLogger(progress algorithms.ProgressLogger) *BetweennessCentrality {
	bc.progress = progress
	return bc
}

func (bc *BetweennessCentrality) WithTerminationFlag(flag *algorithms.TerminationFlag) *BetweennessCentrality {
	bc.flag = flag
	return bc
}

func (bc *BetweennessCentrality) Compute(ctx context.Context) error {
	bc.mustBeLive()

	for i := range bc.centrality {
		bc.centrality[i] = 0
	}

	for source := int64(0); source < bc.nodeCount; source++ {
		if !bc.flag.Running() || ctx.Err() != nil {
			return nil
		}
		bc.progress.LogProgress(progressFraction(source, bc.nodeCount))
		bc.scratch.singleSource(bc.graph, source, bc.direction,
			func(node int64, contribution float64) {
				bc.centrality[node] += contribution
			})
	}
	return nil
}

func (bc *BetweennessCentrality) Centrality() []float64 {
	bc.mustBeLive()
	return bc.centrality
}

func (bc *BetweennessCentrality) ForEach(consumer ResultConsumer) {
	bc.mustBeLive()
	forEachResult(bc.graph, bc.nodeCount, bc.value, consumer)
}

func (bc *BetweennessCentrality) ResultStream() *ResultIterator {
	bc.mustBeLive()
	return newResultIterator(bc.graph, bc.nodeCount, bc.value)
}

func (bc *BetweennessCentrality) Results() []Result {
	bc.mustBeLive()
	return collectResults(bc.graph, bc.nodeCount, bc.value)
}

func (bc *BetweennessCentrality) Release() {
	if bc.released {
		return
	}
	if err := bc.tracker.Release(bc.workingBytes()); err != nil {
		panic(err)
	}
	bc.graph = nil
	bc.centrality = nil
	bc.scratch = nil
	bc.released = true
}

func (bc *BetweennessCentrality) workingBytes() int64 {
	return int64(len(bc.centrality))*8 + bc.scratch.bytes()
}

func (bc *BetweennessCentrality) value(node int64) float64 {
	return bc.centrality[node]
}

func (bc *BetweennessCentrality) mustBeLive() {
	if bc.released {
		panic(errors.New("centrality: BetweennessCentrality used after Release"))
	}
}
