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

package algorithms

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	enterrors "github.com/weaviate/graphkit/entities/errors"
)

// NodeQueueWorker processes a single node. The closure owns any scratch
// buffers; they are never shared between workers.
type NodeQueueWorker func(node int64) error

// RunNodeQueue is the parallel compute engine: a shared monotonic cursor over
// [0, nodeCount) drained by `concurrency` workers. Each worker is built once
// via newWorker (allocating its scratch there, not per node) and pulls node
// ids until the cursor is exhausted, the termination flag is set, or the
// context is cancelled.
//
// Node assignment order is whatever order the cursor is observed in; that is
// deliberately non-deterministic. The set of processed nodes is not:
// contributions must be merged with commutative adds so the final result is
// independent of interleaving.
//
// RunNodeQueue blocks until every worker has exited. Worker errors and panics
// do not cut the other workers short, but they are all collected and surfaced
// here; cooperative stops are not errors.
func RunNodeQueue(ctx context.Context, logger logrus.FieldLogger, concurrency int,
	nodeCount int64, flag *TerminationFlag, newWorker func(workerID int) NodeQueueWorker,
) error {
	if concurrency < 1 {
		concurrency = 1
	}

	var cursor atomic.Int64
	eg := enterrors.NewErrorGroupWrapper(logger)
	for workerID := 0; workerID < concurrency; workerID++ {
		worker := newWorker(workerID)
		eg.Go(func() error {
			for {
				node := cursor.Add(1) - 1
				if node >= nodeCount {
					return nil
				}
				if !flag.Running() || ctx.Err() != nil {
					return nil
				}
				if err := worker(node); err != nil {
					return err
				}
			}
		})
	}
	return eg.Wait()
}
