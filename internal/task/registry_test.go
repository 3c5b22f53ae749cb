package task

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForDone(t *testing.T, r *Registry, id string) Status {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if status, ok := r.Status(id); ok && status.State != StateRunning {
			return status
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s did not finish", id)
	return Status{}
}

func TestRegistryUnknownTask(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Status("nope")
	assert.False(t, ok)
}

func TestRegistryCompletes(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Submit("t1", func() error { return nil }))

	status := waitForDone(t, r, "t1")

	assert.Equal(t, StateCompleted, status.State)
	assert.Empty(t, status.Error)
	require.NotNil(t, status.CompletedAt)
}

func TestRegistryRecordsFailure(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Submit("t1", func() error { return errors.New("boom") }))

	status := waitForDone(t, r, "t1")

	assert.Equal(t, StateFailed, status.State)
	assert.Equal(t, "boom", status.Error)
	require.NotNil(t, status.CompletedAt)
}

func TestRegistryRejectsConcurrentSameID(t *testing.T) {
	r := NewRegistry()
	release := make(chan struct{})
	require.NoError(t, r.Submit("t1", func() error {
		<-release
		return nil
	}))

	err := r.Submit("t1", func() error { return nil })
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(release)
	waitForDone(t, r, "t1")

	// A finished id may run again.
	require.NoError(t, r.Submit("t1", func() error { return nil }))
	waitForDone(t, r, "t1")
}
