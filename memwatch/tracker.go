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

// Package memwatch provides process-wide accounting of bytes held by tracked
// structures. It is purely observational: it never blocks or throttles an
// allocation, it only keeps a balance so that capacity usage can be inspected
// and leaks (or double-releases) show up.
package memwatch

import (
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrAccounting signals a release of more bytes than are currently tracked.
// The total is left untouched when this happens; the caller has a
// double-release bug.
var ErrAccounting = errors.New("memwatch: released more bytes than reserved")

// Tracker keeps a running total of reserved bytes. All methods are safe for
// concurrent use and nil-safe, so optional tracking can be threaded through
// without guards at every call site.
type Tracker struct {
	name  string
	bytes atomic.Int64
}

func NewTracker(name string) *Tracker {
	return &Tracker{name: name}
}

// Reserve attributes n bytes to the tracker.
func (t *Tracker) Reserve(n int64) {
	if t == nil {
		return
	}
	t.bytes.Add(n)
}

// Release returns n bytes to the tracker. A release that would drive the
// total negative is rejected with ErrAccounting.
func (t *Tracker) Release(n int64) error {
	if t == nil {
		return nil
	}
	for {
		current := t.bytes.Load()
		if current-n < 0 {
			return errors.Wrapf(ErrAccounting,
				"release of %d bytes with only %d tracked", n, current)
		}
		if t.bytes.CompareAndSwap(current, current-n) {
			return nil
		}
	}
}

// Snapshot returns the bytes currently attributed to the tracker.
func (t *Tracker) Snapshot() int64 {
	if t == nil {
		return 0
	}
	return t.bytes.Load()
}

func (t *Tracker) String() string {
	if t == nil {
		return "<nil tracker>"
	}
	return fmt.Sprintf("%s: %s tracked", t.name, HumanReadable(t.Snapshot()))
}

// Register exposes the tracked total as a prometheus gauge.
func (t *Tracker) Register(registerer prometheus.Registerer) error {
	gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "graphkit",
		Name:        "tracked_bytes",
		Help:        "Bytes currently attributed to tracked graph structures.",
		ConstLabels: prometheus.Labels{"tracker": t.name},
	}, func() float64 {
		return float64(t.Snapshot())
	})
	if err := registerer.Register(gauge); err != nil {
		return errors.Wrap(err, "register tracked bytes gauge")
	}
	return nil
}

// HumanReadable formats a byte count with binary units.
func HumanReadable(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.2f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.2f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
