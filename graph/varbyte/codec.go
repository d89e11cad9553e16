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

// Package varbyte implements the variable-byte integer codec used for
// delta-encoded adjacency lists. Each byte carries 7 payload bits, least
// significant group first, with the high bit set on every byte except the
// last. The encoded width of a value is known up front from its bit length,
// which lets callers allocate exact space before writing.
package varbyte

import (
	"math/bits"

	"github.com/pkg/errors"
)

// MaxLen is the widest possible encoding of a 64-bit value.
const MaxLen = 10

// ErrBounds signals an encode or decode that would touch bytes outside the
// allotted range. It always indicates a sizing bug in the caller and must
// abort the surrounding operation.
var ErrBounds = errors.New("varbyte: access outside of allotted byte range")

// sizeByBitLen[b] is the encoded width of a value with bit length b.
// Index 0 covers the degenerate case value == 0, which still costs one byte.
var sizeByBitLen = func() [65]int {
	var table [65]int
	table[0] = 1
	for i := 1; i <= 64; i++ {
		table[i] = (i + 6) / 7
	}
	return table
}()

// Size returns the exact number of bytes Put writes for v, without
// performing the encoding.
func Size(v uint64) int {
	return sizeByBitLen[bits.Len64(v)]
}

// Put encodes v into buf starting at offset and returns the offset just past
// the written bytes. If the destination range does not have Size(v) free
// bytes the buffer is left untouched and an error wrapping ErrBounds is
// returned.
func Put(buf []byte, offset int, v uint64) (int, error) {
	if n := Size(v); offset < 0 || offset+n > len(buf) {
		return 0, errors.Wrapf(ErrBounds,
			"put value %d (%d bytes) at offset %d into buffer of len %d",
			v, n, offset, len(buf))
	}

	for v >= 0x80 {
		buf[offset] = byte(v) | 0x80
		v >>= 7
		offset++
	}
	buf[offset] = byte(v)
	return offset + 1, nil
}

// Uvarint decodes a single value from buf starting at offset and returns the
// value and the offset just past its last byte. An encoding that runs off the
// end of buf yields an error wrapping ErrBounds.
func Uvarint(buf []byte, offset int) (uint64, int, error) {
	if offset < 0 || offset >= len(buf) {
		return 0, 0, errors.Wrapf(ErrBounds,
			"uvarint at offset %d in buffer of len %d", offset, len(buf))
	}

	var v uint64
	var shift uint
	for i := offset; i < len(buf); i++ {
		b := buf[i]
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, errors.Wrapf(ErrBounds,
		"uvarint at offset %d truncated at buffer end %d", offset, len(buf))
}

// DeltaSize returns the exact number of bytes PutDeltas writes for list.
// The list must be sorted ascending.
func DeltaSize(list []uint64) int {
	var total int
	last := uint64(0)
	for i, v := range list {
		if i == 0 {
			total += Size(v)
		} else {
			total += Size(v - last)
		}
		last = v
	}
	return total
}

// PutDeltas encodes an ascending list into buf: the first value absolute,
// every subsequent value as the difference from its predecessor. A descending
// pair is a caller bug and yields an error; duplicates (delta 0) are legal.
// Returns the number of bytes written.
func PutDeltas(buf []byte, list []uint64) (int, error) {
	offset := 0
	last := uint64(0)
	for i, v := range list {
		if v < last {
			return 0, errors.Errorf(
				"varbyte: delta list not ascending at index %d: %d < %d", i, v, last)
		}
		delta := v
		if i > 0 {
			delta = v - last
		}
		last = v

		var err error
		offset, err = Put(buf, offset, delta)
		if err != nil {
			return 0, err
		}
	}
	return offset, nil
}

// DeltaReader iterates a delta-encoded list over a contiguous buffer,
// reconstructing absolute values by running sum. Callers that know the
// element count may stop early without decoding remaining bytes.
type DeltaReader struct {
	buf     []byte
	offset  int
	current uint64
	first   bool
}

func NewDeltaReader(buf []byte) *DeltaReader {
	return &DeltaReader{buf: buf, first: true}
}

// Next advances to the next value. It returns false once the buffer is
// exhausted.
func (r *DeltaReader) Next() (uint64, bool) {
	if r.offset >= len(r.buf) {
		return 0, false
	}
	delta, next, err := Uvarint(r.buf, r.offset)
	if err != nil {
		// the writer pre-sizes every run, a torn value means corruption
		panic(err)
	}
	r.offset = next
	if r.first {
		r.current = delta
		r.first = false
	} else {
		r.current += delta
	}
	return r.current, true
}
