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

	"github.com/sirupsen/logrus"
)

// ProgressLogger receives completion fractions in [0, 1]. Implementations
// must be safe for concurrent use; parallel workers report from many
// goroutines at once.
type ProgressLogger interface {
	LogProgress(fraction float64)
}

// NopProgressLogger is the default when no reporting is wired up.
type NopProgressLogger struct{}

func (NopProgressLogger) LogProgress(float64) {}

// throttled steps keep a million-node run from producing a million log lines
const progressStep = 0.10

// LogrusProgressLogger writes throttled progress lines through a
// logrus.FieldLogger, at most one per progressStep of completion.
type LogrusProgressLogger struct {
	logger logrus.FieldLogger
	task   string
	logged atomic.Uint64 // bits of the last fraction written out
}

func NewProgressLogger(logger logrus.FieldLogger, task string) *LogrusProgressLogger {
	return &LogrusProgressLogger{logger: logger, task: task}
}

func (p *LogrusProgressLogger) LogProgress(fraction float64) {
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}

	for {
		lastBits := p.logged.Load()
		last := math.Float64frombits(lastBits)
		if fraction != 1 && fraction-last < progressStep {
			return
		}
		if fraction <= last {
			return
		}
		if p.logged.CompareAndSwap(lastBits, math.Float64bits(fraction)) {
			break
		}
	}

	p.logger.WithFields(logrus.Fields{
		"task":     p.task,
		"progress": fraction,
	}).Infof("%s %d%%", p.task, int(fraction*100))
}
