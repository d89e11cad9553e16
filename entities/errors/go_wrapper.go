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

	"github.com/sirupsen/logrus"
)

// GoWrapper spawns f on its own goroutine with panic recovery. Use it for
// fire-and-forget background work where a panic must not take the process
// down; compute workers that need their failure surfaced go through
// ErrorGroupWrapper instead.
func GoWrapper(f func(), logger logrus.FieldLogger) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.WithField("panic", r).
					WithField("stack", string(debug.Stack())).
					Error("recovered from panic in background goroutine")
			}
		}()
		f()
	}()
}
