package algorithms

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtomicDoubleArrayConcurrentAdd(t *testing.T) {
	arr := NewAtomicDoubleArray(16)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				// every worker hammers the same cells, accumulation must
				// not lose updates
				arr.Add(int64(i%16), 0.5)
			}
		}()
	}
	wg.Wait()

	var total float64
	for i := int64(0); i < arr.Len(); i++ {
		total += arr.Get(i)
	}
	assert.InDelta(t, 8*1000*0.5, total, 1e-9)
}

func TestAtomicDoubleArrayZero(t *testing.T) {
	arr := NewAtomicDoubleArray(4)
	arr.Add(0, 1.5)
	arr.Add(3, -2.25)

	arr.Zero()
	for i := int64(0); i < arr.Len(); i++ {
		assert.Equal(t, 0.0, arr.Get(i))
	}
}

func TestAtomicDoubleArrayNegativeDeltas(t *testing.T) {
	arr := NewAtomicDoubleArray(1)
	arr.Add(0, 10)
	arr.Add(0, -2.5)
	assert.InDelta(t, 7.5, arr.Get(0), 1e-12)
}
