package centrality

import (
	"context"
	"testing"

	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaviate/graphkit/algorithms"
	"github.com/weaviate/graphkit/graph/compact"
	"github.com/weaviate/graphkit/memwatch"
)

func TestBetweennessCentralityPathGraph(t *testing.T) {
	//  (A)-->(B)-->(C)-->(D)-->(E)
	//  0.0   3.0   4.0   3.0   0.0
	g := buildPathGraph(t)

	bc := NewBetweennessCentrality(g)
	require.Nil(t, bc.Compute(context.Background()))
	assert.Equal(t, []float64{0, 3, 4, 3, 0}, bc.Centrality())
}

func TestBetweennessCentralityDiamond(t *testing.T) {
	// A→B, A→C, B→D, C→D: two equal shortest paths A→D, each broker
	// carries half the dependency
	b := compact.NewBuilder(4)
	for _, e := range [][2]int64{{0, 1}, {0, 2}, {1, 3}, {2, 3}} {
		require.Nil(t, b.AddRelationship(e[0], e[1]))
	}
	g, err := b.Build()
	require.Nil(t, err)

	bc := NewBetweennessCentrality(g)
	require.Nil(t, bc.Compute(context.Background()))
	assert.InDelta(t, 0.0, bc.Centrality()[0], 1e-12)
	assert.InDelta(t, 0.5, bc.Centrality()[1], 1e-12)
	assert.InDelta(t, 0.5, bc.Centrality()[2], 1e-12)
	assert.InDelta(t, 0.0, bc.Centrality()[3], 1e-12)
}

func TestBetweennessCentralityUndirectedDoublesPairs(t *testing.T) {
	// mirrored adjacency counts every ordered pair, so the classic
	// undirected path values (3, 4, 3) appear doubled
	g := buildPathGraph(t, compact.WithUndirected())

	bc := NewBetweennessCentrality(g)
	require.Nil(t, bc.Compute(context.Background()))
	assert.Equal(t, []float64{0, 6, 8, 6, 0}, bc.Centrality())
}

func TestBetweennessCentralitySequentialParallelEquivalence(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()
	g, _ := buildRandomGraph(t, 300, 2400, 1234)

	sequential := NewBetweennessCentrality(g)
	require.Nil(t, sequential.Compute(context.Background()))

	for _, concurrency := range []int{1, 2, 8} {
		parallel := NewParallelBetweennessCentrality(g, logger, concurrency)
		require.Nil(t, parallel.Compute(context.Background()))

		for node := int64(0); node < g.NodeCount(); node++ {
			assert.InDelta(t, sequential.Centrality()[node],
				parallel.Centrality().Get(node), 1e-6,
				"concurrency %d node %d", concurrency, node)
		}
	}
}

func TestParallelBetweennessRecomputeReZeros(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()
	g := buildPathGraph(t)

	pbc := NewParallelBetweennessCentrality(g, logger, 4)
	require.Nil(t, pbc.Compute(context.Background()))
	require.Nil(t, pbc.Compute(context.Background()))

	assert.InDelta(t, 4.0, pbc.Centrality().Get(2), 1e-12)
}

func TestBetweennessCentralityPreSetTermination(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()
	g := buildPathGraph(t)

	flag := algorithms.NewTerminationFlag()
	flag.Terminate()

	bc := NewBetweennessCentrality(g).WithTerminationFlag(flag)
	require.Nil(t, bc.Compute(context.Background()))
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, bc.Centrality())

	pbc := NewParallelBetweennessCentrality(g, logger, 4).WithTerminationFlag(flag)
	require.Nil(t, pbc.Compute(context.Background()))
	for node := int64(0); node < 5; node++ {
		assert.Equal(t, 0.0, pbc.Centrality().Get(node))
	}
}

func TestBetweennessCentralityParallelEdgesCountAsPaths(t *testing.T) {
	// two parallel edges A→B plus B→C: both A→B edges are distinct
	// shortest paths, so sigma(C from A) is 2 but B still carries the
	// whole dependency
	b := compact.NewBuilder(3)
	require.Nil(t, b.AddRelationship(0, 1))
	require.Nil(t, b.AddRelationship(0, 1))
	require.Nil(t, b.AddRelationship(1, 2))
	g, err := b.Build()
	require.Nil(t, err)

	bc := NewBetweennessCentrality(g)
	require.Nil(t, bc.Compute(context.Background()))
	assert.InDelta(t, 1.0, bc.Centrality()[1], 1e-12)
}

func TestBetweennessCentralityAllocationBalance(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()
	g := buildPathGraph(t)
	tracker := memwatch.NewTracker("test")
	before := tracker.Snapshot()

	bc := NewBetweennessCentrality(g).WithTracker(tracker)
	assert.Greater(t, tracker.Snapshot(), before)
	require.Nil(t, bc.Compute(context.Background()))
	bc.Release()
	assert.Equal(t, before, tracker.Snapshot())

	// per-worker scratch is accounted only while Compute runs
	pbc := NewParallelBetweennessCentrality(g, logger, 4).WithTracker(tracker)
	resultOnly := tracker.Snapshot()
	assert.Equal(t, before+5*8, resultOnly)
	require.Nil(t, pbc.Compute(context.Background()))
	assert.Equal(t, resultOnly, tracker.Snapshot())
	pbc.Release()
	assert.Equal(t, before, tracker.Snapshot())

	bc.Release()
	pbc.Release()
	assert.Equal(t, before, tracker.Snapshot())
}

func TestBetweennessCentralityUseAfterReleasePanics(t *testing.T) {
	g := buildPathGraph(t)

	bc := NewBetweennessCentrality(g)
	require.Nil(t, bc.Compute(context.Background()))
	bc.Release()
	assert.Panics(t, func() { bc.Compute(context.Background()) })
	assert.Panics(t, func() { bc.Centrality() })
}
