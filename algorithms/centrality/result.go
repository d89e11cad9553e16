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

// Package centrality implements node-centric centrality algorithms over the
// compact graph: degree centrality and Brandes betweenness centrality, each
// in a sequential and a worker-partitioned parallel variant.
package centrality

import (
	"github.com/weaviate/graphkit/graph/compact"
)

// Result is one (original node id, score) pair.
type Result struct {
	NodeID     uint64
	Centrality float64
}

// ResultConsumer receives results in ascending internal-id order; returning
// false stops the iteration.
type ResultConsumer func(originalNodeID uint64, centrality float64) bool

// ResultIterator is the pull-style lazy view over a computed result, in
// ascending internal-id order with ids translated back to original ids.
type ResultIterator struct {
	graph     *compact.Graph
	nodeCount int64
	node      int64
	value     func(node int64) float64
}

func newResultIterator(graph *compact.Graph, nodeCount int64, value func(int64) float64) *ResultIterator {
	return &ResultIterator{graph: graph, nodeCount: nodeCount, node: -1, value: value}
}

func (it *ResultIterator) Next() bool {
	if it.node+1 >= it.nodeCount {
		return false
	}
	it.node++
	return true
}

func (it *ResultIterator) Result() Result {
	return Result{
		NodeID:     it.graph.ToOriginalNodeID(it.node),
		Centrality: it.value(it.node),
	}
}

func forEachResult(graph *compact.Graph, nodeCount int64, value func(int64) float64, consumer ResultConsumer) {
	for node := int64(0); node < nodeCount; node++ {
		if !consumer(graph.ToOriginalNodeID(node), value(node)) {
			return
		}
	}
}

func collectResults(graph *compact.Graph, nodeCount int64, value func(int64) float64) []Result {
	results := make([]Result, 0, nodeCount)
	forEachResult(graph, nodeCount, value, func(id uint64, score float64) bool {
		results = append(results, Result{NodeID: id, Centrality: score})
		return true
	})
	return results
}

// progressFraction follows the node/(nodeCount-1) convention; a single-node
// graph is immediately complete.
func progressFraction(node, nodeCount int64) float64 {
	if nodeCount <= 1 {
		return 1
	}
	return float64(node) / float64(nodeCount-1)
}
