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

// ParallelBetweennessCentrality partitions source nodes across workers via
// the node-queue engine. Unlike degree centrality, workers here write to
// shared accumulation targets: many sources contribute to the same
// intermediate node, which is exactly why the result array supports atomic
// add rather than atomic set.
type ParallelBetweennessCentrality struct {
	graph      *compact.Graph
	centrality *algorithms.AtomicDoubleArray
	nodeCount  int64

	logger      logrus.FieldLogger
	concurrency int
	direction   compact.Direction
	progress    algorithms.ProgressLogger
	flag        *algorithms.TerminationFlag
	tracker     *memwatch.Tracker
	released    bool
}

func NewParallelBetweennessCentrality(graph *compact.Graph, logger logrus.FieldLogger,
	concurrency int,
) *ParallelBetweennessCentrality {
	return &ParallelBetweennessCentrality{
		graph:       graph,
		nodeCount:   graph.NodeCount(),
		centrality:  algorithms.NewAtomicDoubleArray(graph.NodeCount()),
		logger:      logger,
		concurrency: concurrency,
		direction:   compact.Outgoing,
		progress:    algorithms.NopProgressLogger{},
	}
}

func (pbc *ParallelBetweennessCentrality) WithDirection(direction compact.Direction) *ParallelBetweennessCentrality {
	pbc.direction = direction
	return pbc
}

// WithTracker accounts the result array against tracker; per-worker scratch
// is accounted for the duration of each Compute. The result bytes are
// returned on Release.
func (pbc *ParallelBetweennessCentrality) WithTracker(tracker *memwatch.Tracker) *ParallelBetweennessCentrality {
	tracker.Reserve(pbc.centrality.Bytes())
	pbc.tracker = tracker
	return pbc
}

func (pbc *ParallelBetweennessCentrality) WithProgressLogger(progress algorithms.ProgressLogger) *ParallelBetweennessCentrality {
	pbc.progress = progress
	return pbc
}

func (pbc *ParallelBetweennessCentrality) WithTerminationFlag(flag *algorithms.TerminationFlag) *ParallelBetweennessCentrality {
	pbc.flag = flag
	return pbc
}

func (pbc *ParallelBetweennessCentrality) Compute(ctx context.Context) error {
	pbc.mustBeLive()
	pbc.centrality.Zero()

	// workers are built sequentially before any of them runs, so plain
	// arithmetic on the scratch total is safe
	var scratchBytes int64
	err := algorithms.RunNodeQueue(ctx, pbc.logger, pbc.concurrency, pbc.nodeCount,
		pbc.flag, func(int) algorithms.NodeQueueWorker {
			// scratch is allocated once per worker and reset between
			// source nodes
			scratch := newBrandesScratch(pbc.nodeCount)
			pbc.tracker.Reserve(scratch.bytes())
			scratchBytes += scratch.bytes()
			return func(source int64) error {
				pbc.progress.LogProgress(progressFraction(source, pbc.nodeCount))
				scratch.singleSource(pbc.graph, source, pbc.direction,
					func(node int64, contribution float64) {
						pbc.centrality.Add(node, contribution)
					})
				return nil
			}
		})
	if relErr := pbc.tracker.Release(scratchBytes); relErr != nil && err == nil {
		err = relErr
	}
	return err
}

func (pbc *ParallelBetweennessCentrality) Centrality() *algorithms.AtomicDoubleArray {
	pbc.mustBeLive()
	return pbc.centrality
}

func (pbc *ParallelBetweennessCentrality) ForEach(consumer ResultConsumer) {
	pbc.mustBeLive()
	forEachResult(pbc.graph, pbc.nodeCount, pbc.centrality.Get, consumer)
}

func (pbc *ParallelBetweennessCentrality) ResultStream() *ResultIterator {
	pbc.mustBeLive()
	return newResultIterator(pbc.graph, pbc.nodeCount, pbc.centrality.Get)
}

func (pbc *ParallelBetweennessCentrality) Results() []Result {
	pbc.mustBeLive()
	return collectResults(pbc.graph, pbc.nodeCount, pbc.centrality.Get)
}

func (pbc *ParallelBetweennessCentrality) Release() {
	if pbc.released {
		return
	}
	if err := pbc.tracker.Release(pbc.centrality.Bytes()); err != nil {
		panic(err)
	}
	pbc.graph = nil
	pbc.centrality = nil
	pbc.released = true
}

func (pbc *ParallelBetweennessCentrality) mustBeLive() {
	if pbc.released {
		panic(errors.New("centrality: ParallelBetweennessCentrality used after Release"))
	}
}
