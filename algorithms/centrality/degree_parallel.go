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
	"github.com/sirupsen/logrus"

	"github.com/weaviate/graphkit/algorithms"
	"github.com/weaviate/graphkit/graph/compact"
	"github.com/weaviate/graphkit/memwatch"
)

// ParallelDegreeCentrality runs degree centrality over the node-queue engine:
// workers pull node ids from the shared cursor and add their score into a
// concurrency-safe result array. With a fixed graph the merged result is
// identical to the sequential one regardless of concurrency degree.
type ParallelDegreeCentrality struct {
	graph      *compact.Graph
	centrality *algorithms.AtomicDoubleArray
	nodeCount  int64

	logger      logrus.FieldLogger
	concurrency int
	direction   compact.Direction
	weighted    bool
	progress    algorithms.ProgressLogger
	flag        *algorithms.TerminationFlag
	tracker     *memwatch.Tracker
	released    bool
}

// NewParallelDegreeCentrality builds the solver; concurrency is the number of
// workers to spawn, passed explicitly rather than taken from a global pool.
func NewParallelDegreeCentrality(graph *compact.Graph, logger logrus.FieldLogger,
	concurrency int,
) *ParallelDegreeCentrality {
	return &ParallelDegreeCentrality{
		graph:       graph,
		nodeCount:   graph.NodeCount(),
		centrality:  algorithms.NewAtomicDoubleArray(graph.NodeCount()),
		logger:      logger,
		concurrency: concurrency,
		direction:   compact.Outgoing,
		progress:    algorithms.NopProgressLogger{},
	}
}

func (pdc *ParallelDegreeCentrality) WithDirection(direction compact.Direction) *ParallelDegreeCentrality {
	pdc.direction = direction
	return pdc
}

func (pdc *ParallelDegreeCentrality) WithWeighted(weighted bool) *ParallelDegreeCentrality {
	pdc.weighted = weighted
	return pdc
}

// WithTracker accounts the result array against tracker; the bytes are
// returned on Release.
func (pdc *ParallelDegreeCentrality) WithTracker(tracker *memwatch.Tracker) *ParallelDegreeCentrality {
	tracker.Reserve(pdc.centrality.Bytes())
	pdc.tracker = tracker
	return pdc
}

func (pdc *ParallelDegreeCentrality) WithProgressLogger(progress algorithms.ProgressLogger) *ParallelDegreeCentrality {
	pdc.progress = progress
	return pdc
}

func (pdc *ParallelDegreeCentrality) WithTerminationFlag(flag *algorithms.TerminationFlag) *ParallelDegreeCentrality {
	pdc.flag = flag
	return pdc
}

func (pdc *ParallelDegreeCentrality) Compute(ctx context.Context) error {
	pdc.mustBeLive()
	pdc.centrality.Zero()

	return algorithms.RunNodeQueue(ctx, pdc.logger, pdc.concurrency, pdc.nodeCount,
		pdc.flag, func(int) algorithms.NodeQueueWorker {
			return func(node int64) error {
				pdc.progress.LogProgress(progressFraction(node, pdc.nodeCount))
				score := float64(pdc.graph.Degree(node, pdc.direction))
				if pdc.weighted {
					score /= float64(pdc.nodeCount)
				}
				pdc.centrality.Add(node, score)
				return nil
			}
		})
}

// Centrality returns the concurrency-safe result array.
func (pdc *ParallelDegreeCentrality) Centrality() *algorithms.AtomicDoubleArray {
	pdc.mustBeLive()
	return pdc.centrality
}

func (pdc *ParallelDegreeCentrality) ForEach(consumer ResultConsumer) {
	pdc.mustBeLive()
	forEachResult(pdc.graph, pdc.nodeCount, pdc.centrality.Get, consumer)
}

func (pdc *ParallelDegreeCentrality) ResultStream() *ResultIterator {
	pdc.mustBeLive()
	return newResultIterator(pdc.graph, pdc.nodeCount, pdc.centrality.Get)
}

func (pdc *ParallelDegreeCentrality) Results() []Result {
	pdc.mustBeLive()
	return collectResults(pdc.graph, pdc.nodeCount, pdc.centrality.Get)
}

func (pdc *ParallelDegreeCentrality) Release() {
	if pdc.released {
		return
	}
	if err := pdc.tracker.Release(pdc.centrality.Bytes()); err != nil {
		panic(err)
	}
	pdc.graph = nil
	pdc.centrality = nil
	pdc.released = true
}

func (pdc *ParallelDegreeCentrality) mustBeLive() {
	if pdc.released {
		panic(errors.New("centrality: ParallelDegreeCentrality used after Release"))
	}
}
