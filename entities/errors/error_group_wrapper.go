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

package errors

import (
	"runtime/debug"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrorGroupWrapper embeds errgroup.Group and hardens it for long-running
// compute workers: a panicking worker is recovered and converted into an
// error, and Wait aggregates every worker's failure instead of dropping all
// but the first. A failing worker never leaves the caller blocked and never
// results in a silently-incomplete result.
type ErrorGroupWrapper struct {
	*errgroup.Group
	logger logrus.FieldLogger

	mu        sync.Mutex
	collected *multierror.Error
}

func NewErrorGroupWrapper(logger logrus.FieldLogger) *ErrorGroupWrapper {
	return &ErrorGroupWrapper{
		Group:  new(errgroup.Group),
		logger: logger,
	}
}

// Go runs f on a group goroutine with panic recovery.
func (egw *ErrorGroupWrapper) Go(f func() error) {
	egw.Group.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				egw.logger.WithField("panic", r).
					WithField("stack", string(debug.Stack())).
					Error("recovered from panic in worker")
				err = errors.Errorf("worker panicked: %v", r)
			}
			if err != nil {
				egw.mu.Lock()
				egw.collected = multierror.Append(egw.collected, err)
				egw.mu.Unlock()
			}
		}()
		return f()
	})
}

// Wait blocks until every goroutine has exited and returns all collected
// errors, or nil if none failed.
func (egw *ErrorGroupWrapper) Wait() error {
	egw.Group.Wait()
	egw.mu.Lock()
	defer egw.mu.Unlock()
	return egw.collected.ErrorOrNil()
}
