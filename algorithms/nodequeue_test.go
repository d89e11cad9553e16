package algorithms

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunNodeQueueProcessesEveryNodeOnce(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()
	const nodeCount = int64(1000)

	visits := make([]atomic.Int64, nodeCount)
	err := RunNodeQueue(context.Background(), logger, 8, nodeCount, nil,
		func(int) NodeQueueWorker {
			return func(node int64) error {
				visits[node].Add(1)
				return nil
			}
		})
	require.Nil(t, err)

	for node := range visits {
		assert.Equal(t, int64(1), visits[node].Load(), "node %d", node)
	}
}

func TestRunNodeQueueConcurrencyOne(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()

	var order []int64
	err := RunNodeQueue(context.Background(), logger, 1, 10, nil,
		func(int) NodeQueueWorker {
			return func(node int64) error {
				order = append(order, node)
				return nil
			}
		})
	require.Nil(t, err)

	// a single worker drains the cursor strictly in order
	assert.Equal(t, []int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestRunNodeQueueWorkerScratchAllocatedOnce(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()

	var factoryCalls atomic.Int64
	err := RunNodeQueue(context.Background(), logger, 4, 100, nil,
		func(int) NodeQueueWorker {
			factoryCalls.Add(1)
			return func(int64) error { return nil }
		})
	require.Nil(t, err)
	assert.Equal(t, int64(4), factoryCalls.Load())
}

func TestRunNodeQueuePropagatesWorkerError(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()

	var processed atomic.Int64
	err := RunNodeQueue(context.Background(), logger, 4, 100, nil,
		func(workerID int) NodeQueueWorker {
			return func(node int64) error {
				if node == 13 {
					return errors.New("node 13 is unlucky")
				}
				processed.Add(1)
				return nil
			}
		})
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "node 13 is unlucky")

	// the other workers were allowed to finish, not abandoned
	assert.Equal(t, int64(99), processed.Load())
}

func TestRunNodeQueueConvertsPanicToError(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()

	err := RunNodeQueue(context.Background(), logger, 2, 10, nil,
		func(int) NodeQueueWorker {
			return func(node int64) error {
				if node == 5 {
					panic("worker exploded")
				}
				return nil
			}
		})
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "worker exploded")
}

func TestRunNodeQueuePreSetTerminationFlag(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()

	flag := NewTerminationFlag()
	flag.Terminate()

	var processed atomic.Int64
	err := RunNodeQueue(context.Background(), logger, 4, 1000, flag,
		func(int) NodeQueueWorker {
			return func(int64) error {
				processed.Add(1)
				return nil
			}
		})

	// cancellation is not an error, and no node was processed
	require.Nil(t, err)
	assert.Equal(t, int64(0), processed.Load())
	assert.True(t, flag.Terminated())
}

func TestRunNodeQueueContextCancellation(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var processed atomic.Int64
	err := RunNodeQueue(ctx, logger, 4, 1000, nil,
		func(int) NodeQueueWorker {
			return func(int64) error {
				processed.Add(1)
				return nil
			}
		})
	require.Nil(t, err)
	assert.Equal(t, int64(0), processed.Load())
}
