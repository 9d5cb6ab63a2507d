package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := New(zerolog.Nop(), time.UTC, 0)

	err := s.Register("accrual", "not a cron spec", func(context.Context) error { return nil })
	assert.Error(t, err)
	assert.Zero(t, s.Entries())

	require.NoError(t, s.Register("accrual", "5 0 * * *", func(context.Context) error { return nil }))
	assert.Equal(t, 1, s.Entries())
}

func TestRunAppliesTimeoutAndSurvivesErrors(t *testing.T) {
	s := New(zerolog.Nop(), time.UTC, 50*time.Millisecond)

	var sawDeadline atomic.Bool
	s.run("accrual", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		sawDeadline.Store(ok)
		return errors.New("storage failure")
	})

	assert.True(t, sawDeadline.Load())
}

func TestStopCancelsRunningJobs(t *testing.T) {
	s := New(zerolog.Nop(), time.UTC, 0)

	started := make(chan struct{})
	finished := make(chan error, 1)
	go s.run("slow", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		finished <- ctx.Err()
		return ctx.Err()
	})

	<-started
	s.Start()
	<-s.Stop().Done()

	select {
	case err := <-finished:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("job was not cancelled")
	}
}

func TestWrappedJobRecoversFromPanic(t *testing.T) {
	s := New(zerolog.Nop(), time.UTC, 0)

	var calls atomic.Int32
	job := s.wrap("panicky", func(context.Context) error {
		calls.Add(1)
		panic("boom")
	})

	assert.NotPanics(t, job.Run)
	assert.NotPanics(t, job.Run)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWrappedJobSkipsOverlappingRuns(t *testing.T) {
	s := New(zerolog.Nop(), time.UTC, 0)

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	job := s.wrap("slow", func(context.Context) error {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
		return nil
	})

	done := make(chan struct{})
	go func() {
		job.Run()
		close(done)
	}()

	<-started
	job.Run()
	close(release)
	<-done

	assert.Equal(t, int32(1), calls.Load())

	job.Run()
	assert.Equal(t, int32(2), calls.Load())
}
