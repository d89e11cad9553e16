package errors

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorGroupWrapperCollectsAllErrors(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()
	eg := NewErrorGroupWrapper(logger)

	eg.Go(func() error { return errors.New("first failure") })
	eg.Go(func() error { return nil })
	eg.Go(func() error { return errors.New("second failure") })

	err := eg.Wait()
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "first failure")
	assert.Contains(t, err.Error(), "second failure")
}

func TestErrorGroupWrapperRecoversPanic(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	eg := NewErrorGroupWrapper(logger)

	eg.Go(func() error { panic("worker blew up") })

	err := eg.Wait()
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "worker blew up")

	require.NotEmpty(t, hook.Entries)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestErrorGroupWrapperNoErrors(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()
	eg := NewErrorGroupWrapper(logger)

	for i := 0; i < 4; i++ {
		eg.Go(func() error { return nil })
	}
	assert.Nil(t, eg.Wait())
}

func TestGoWrapperRecoversPanic(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()

	done := make(chan struct{})
	GoWrapper(func() {
		defer close(done)
		panic("background blew up")
	}, logger)
	<-done

	// the deferred recovery runs after close(done); the hook entry may lag
	// one scheduling round
	assert.Eventually(t, func() bool {
		return len(hook.AllEntries()) > 0
	}, time.Second, time.Millisecond)
}
