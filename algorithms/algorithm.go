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

// Package algorithms carries the shared contract of all graph algorithms
// (compute lifecycle, progress reporting, cooperative termination) and the
// node-partitioned parallel compute engine they run on.
package algorithms

import "context"

// Computable is the compute lifecycle every algorithm implements. Compute is
// re-invocable: a second call re-zeros all result state before recomputing.
// A termination-flagged run returns nil with a partial result; only worker
// failures produce an error.
type Computable interface {
	Compute(ctx context.Context) error
}

// Releasable drops all heavy working state so it can be reclaimed. Calling
// Compute or a result accessor after Release is a programming error and
// panics rather than returning stale or empty data.
type Releasable interface {
	Release()
}
