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
	"math"
	"sync/atomic"
)

// AtomicDoubleArray is a fixed-size array of float64 cells supporting
// concurrent, per-index atomic add. Adds are commutative, so the merged
// result of parallel workers does not depend on their interleaving. The raw
// storage is never exposed; workers only get Add and Get.
type AtomicDoubleArray struct {
	cells []atomic.Uint64
}

func NewAtomicDoubleArray(size int64) *AtomicDoubleArray {
	return &AtomicDoubleArray{cells: make([]atomic.Uint64, size)}
}

func (a *AtomicDoubleArray) Len() int64 {
	return int64(len(a.cells))
}

// Bytes is the footprint of the cell storage, for allocation accounting.
func (a *AtomicDoubleArray) Bytes() int64 {
	return int64(len(a.cells)) * 8
}

// Add atomically adds delta to the cell at index.
func (a *AtomicDoubleArray) Add(index int64, delta float64) {
	cell := &a.cells[index]
	for {
		oldBits := cell.Load()
		newBits := math.Float64bits(math.Float64frombits(oldBits) + delta)
		if cell.CompareAndSwap(oldBits, newBits) {
			return
		}
	}
}

func (a *AtomicDoubleArray) Get(index int64) float64 {
	return math.Float64frombits(a.cells[index].Load())
}

// Zero resets every cell. Only the owner calls this, between compute passes,
// never concurrently with workers.
func (a *AtomicDoubleArray) Zero() {
	for i := range a.cells {
		a.cells[i].Store(0)
	}
}
