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

import "sync/atomic"

// TerminationFlag is a shared, externally-settable stop signal. Compute loops
// poll it at node boundaries (never mid-node) and exit cooperatively once it
// is set, leaving results partially computed. Setting the flag from a timer
// is how callers implement timeouts; the engine itself has none.
//
// A nil flag reads as running, so it can stay optional on every algorithm.
type TerminationFlag struct {
	terminated atomic.Bool
}

func NewTerminationFlag() *TerminationFlag {
	return &TerminationFlag{}
}

// Terminate requests a cooperative stop. Safe to call from any goroutine,
// multiple times.
func (t *TerminationFlag) Terminate() {
	t.terminated.Store(true)
}

// Running reports whether compute loops should keep going.
func (t *TerminationFlag) Running() bool {
	if t == nil {
		return true
	}
	return !t.terminated.Load()
}

// Terminated reports whether a stop was requested. Callers use this after
// Compute to distinguish a complete result from a partial one.
func (t *TerminationFlag) Terminated() bool {
	return !t.Running()
}
