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

// DegreeCentrality computes per-node degree centrality with a single
// sequential pass over all nodes. Degree counts relationships, not distinct
// neighbors, so parallel relationships contribute individually.
type DegreeCentrality struct {
	graph      *compact.Graph
	centrality []float64
	nodeCount  int64

	direction compact.Direction
	weighted  bool
	progress  algorithms.ProgressLogger
	flag      *algorithms.TerminationFlag
	tracker   *memwatch.Tracker
	released  bool
}

func NewDegreeCentrality(graph *compact.Graph) *DegreeCentrality {
	return &DegreeCentrality{
		graph:      graph,
		nodeCount:  graph.NodeCount(),
		centrality: make([]float64, graph.NodeCount()),
		direction:  compact.Outgoing,
		progress:   algorithms.NopProgressLogger{},
	}
}

func (dc *DegreeCentrality) WithDirection(direction compact.Direction) *DegreeCentrality {
	dc.direction = direction
	return dc
}

// WithWeighted divides each score by the node count. This mirrors the
// observed upstream behavior; it is a normalization policy, not an
// edge-weight sum.
func (dc *DegreeCentrality) WithWeighted(weighted bool) *DegreeCentrality {
	dc.weighted = weighted
	return dc
}

// WithTracker accounts the result array against tracker; the bytes are
// returned on Release.
func (dc *DegreeCentrality) WithTracker(tracker *memwatch.Tracker) *DegreeCentrality {
	tracker.Reserve(dc.workingBytes())
	dc.tracker = tracker
	return dc
}

func (dc *DegreeCentrality) WithProgressLogger(progress algorithms.ProgressLogger) *DegreeCentrality {
	dc.progress = progress
	return dc
}

func (dc *DegreeCentrality) WithTerminationFlag(flag *algorithms.TerminationFlag) *DegreeCentrality {
	dc.flag = flag
	return dc
}

// Compute fills the result array in ascending node order. Re-invocation
// re-zeros the previous result first. A termination-flagged or cancelled run
// returns nil with a partial result.
func (dc *DegreeCentrality) Compute(ctx context.Context) error {
	dc.mustBeLive()

	for i := range dc.centrality {
		dc.centrality[i] = 0
	}

	for node := int64(0); node < dc.nodeCount; node++ {
		if !dc.flag.Running() || ctx.Err() != nil {
			return nil
		}
		score := float64(dc.graph.Degree(node, dc.direction))
		if dc.weighted {
			score /= float64(dc.nodeCount)
		}
		dc.centrality[node] = score
		dc.progress.LogProgress(progressFraction(node, dc.nodeCount))
	}
	return nil
}

// Centrality returns the result array indexed by internal node id.
func (dc *DegreeCentrality) Centrality() []float64 {
	dc.mustBeLive()
	return dc.centrality
}

// ForEach visits results in ascending internal-id order, translated to
// original ids, until the consumer signals stop.
func (dc *DegreeCentrality) ForEach(consumer ResultConsumer) {
	dc.mustBeLive()
	forEachResult(dc.graph, dc.nodeCount, dc.value, consumer)
}

// ResultStream returns a pull-style iterator over the result.
func (dc *DegreeCentrality) ResultStream() *ResultIterator {
	dc.mustBeLive()
	return newResultIterator(dc.graph, dc.nodeCount, dc.value)
}

func (dc *DegreeCentrality) Results() []Result {
	dc.mustBeLive()
	return collectResults(dc.graph, dc.nodeCount, dc.value)
}

// Release drops the result array and the graph reference. The algorithm is
// unusable afterwards.
func (dc *DegreeCentrality) Release() {
	if dc.released {
		return
	}
	if err := dc.tracker.Release(dc.workingBytes()); err != nil {
		panic(err)
	}
	dc.graph = nil
	dc.centrality = nil
	dc.released = true
}

func (dc *DegreeCentrality) workingBytes() int64 {
	return int64(len(dc.centrality)) * 8
}

func (dc *DegreeCentrality) value(node int64) float64 {
	return dc.centrality[node]
}

func (dc *DegreeCentrality) mustBeLive() {
	if dc.released {
		panic(errors.New("centrality: DegreeCentrality used after Release"))
	}
}
