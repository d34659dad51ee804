package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type recorder struct {
	ch chan Job
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan Job, 16)}
}

func (r *recorder) observe(job Job) {
	r.ch <- job
}

func (r *recorder) next(t *testing.T) Job {
	t.Helper()

	select {
	case job := <-r.ch:
		return job
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no job outcome observed")
	}

	return Job{}
}

func (r *recorder) none(t *testing.T) {
	t.Helper()

	select {
	case job := <-r.ch:
		require.FailNow(t, "unexpected outcome", "job %s %s", job.ID, job.State)
	case <-time.After(50 * time.Millisecond):
	}
}

func newTestScheduler(t *testing.T, exec Executor, reject bool) (*Scheduler, *ManualClock, *recorder) {
	t.Helper()

	clock := NewManualClock(epoch)
	rec := newRecorder()

	s := New(Options{
		Clock:         clock,
		Executor:      exec,
		Log:           logrus.New(),
		RejectOverlap: reject,
	})
	s.Observe(rec.observe)
	s.Start(context.Background())

	t.Cleanup(s.Stop)

	return s, clock, rec
}

func Test_Scheduler_FiresAfterDelay(t *testing.T) {
	var executed []string

	var m sync.Mutex

	s, clock, rec := newTestScheduler(t, func(ctx context.Context, job *Job) error {
		m.Lock()
		executed = append(executed, job.MemberID)
		m.Unlock()

		return nil
	}, false)

	job, err := s.Schedule(&Job{MemberID: "1", Snapshot: []string{"r1"}}, 2*time.Second)
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)
	require.Equal(t, Pending, job.State)
	require.Equal(t, epoch.Add(2*time.Second), job.FireAt)
	require.Equal(t, 1, s.Len())
	require.True(t, s.Active("1"))

	clock.Advance(time.Second)
	rec.none(t)

	clock.Advance(time.Second)

	got := rec.next(t)
	require.Equal(t, job.ID, got.ID)
	require.Equal(t, Fired, got.State)
	require.NoError(t, got.Err)
	require.Equal(t, []string{"r1"}, got.Snapshot)
	require.Equal(t, 0, s.Len())
	require.False(t, s.Active("1"))

	m.Lock()
	require.Equal(t, []string{"1"}, executed)
	m.Unlock()
}

func Test_Scheduler_FireTimeOrder(t *testing.T) {
	s, clock, rec := newTestScheduler(t, func(ctx context.Context, job *Job) error {
		return nil
	}, false)

	late, err := s.Schedule(&Job{MemberID: "late"}, 10*time.Second)
	require.NoError(t, err)

	early, err := s.Schedule(&Job{MemberID: "early"}, 5*time.Second)
	require.NoError(t, err)

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	require.Equal(t, early.ID, jobs[0].ID)
	require.Equal(t, late.ID, jobs[1].ID)

	clock.Advance(5 * time.Second)
	require.Equal(t, early.ID, rec.next(t).ID)
	rec.none(t)

	clock.Advance(5 * time.Second)
	require.Equal(t, late.ID, rec.next(t).ID)
}

func Test_Scheduler_ExecutorErrorAbandons(t *testing.T) {
	failure := errors.New("member left")

	calls := 0

	s, clock, rec := newTestScheduler(t, func(ctx context.Context, job *Job) error {
		calls++
		return failure
	}, false)

	_, err := s.Schedule(&Job{MemberID: "1"}, time.Second)
	require.NoError(t, err)

	clock.Advance(time.Minute)

	got := rec.next(t)
	require.Equal(t, Abandoned, got.State)
	require.ErrorIs(t, got.Err, failure)

	clock.Advance(time.Hour)
	rec.none(t)
	require.Equal(t, 1, calls)
}

func Test_Scheduler_PanicAbandons(t *testing.T) {
	s, clock, rec := newTestScheduler(t, func(ctx context.Context, job *Job) error {
		panic("boom")
	}, false)

	_, err := s.Schedule(&Job{MemberID: "1"}, time.Second)
	require.NoError(t, err)

	clock.Advance(time.Second)
	require.Equal(t, Abandoned, rec.next(t).State)
}

func Test_Scheduler_Overlap(t *testing.T) {
	t.Run("allow", func(t *testing.T) {
		s, clock, rec := newTestScheduler(t, func(ctx context.Context, job *Job) error {
			return nil
		}, false)

		first, err := s.Schedule(&Job{MemberID: "1"}, time.Second)
		require.NoError(t, err)

		second, err := s.Schedule(&Job{MemberID: "1"}, 2*time.Second)
		require.NoError(t, err)
		require.NotEqual(t, first.ID, second.ID)

		clock.Advance(2 * time.Second)

		ids := map[string]bool{rec.next(t).ID: true, rec.next(t).ID: true}
		require.True(t, ids[first.ID])
		require.True(t, ids[second.ID])
	})

	t.Run("reject", func(t *testing.T) {
		s, clock, rec := newTestScheduler(t, func(ctx context.Context, job *Job) error {
			return nil
		}, true)

		require.True(t, s.RejectsOverlap())

		_, err := s.Schedule(&Job{MemberID: "1"}, time.Second)
		require.NoError(t, err)

		_, err = s.Schedule(&Job{MemberID: "1"}, time.Second)
		require.ErrorIs(t, err, ErrOverlap)

		_, err = s.Schedule(&Job{MemberID: "2"}, time.Second)
		require.NoError(t, err)

		clock.Advance(time.Second)
		rec.next(t)
		rec.next(t)

		_, err = s.Schedule(&Job{MemberID: "1"}, time.Second)
		require.NoError(t, err)
	})
}

func Test_Scheduler_StopDropsPending(t *testing.T) {
	clock := NewManualClock(epoch)
	rec := newRecorder()

	s := New(Options{
		Clock: clock,
		Executor: func(ctx context.Context, job *Job) error {
			return nil
		},
	})
	s.Observe(rec.observe)
	s.Start(context.Background())

	_, err := s.Schedule(&Job{MemberID: "1"}, time.Hour)
	require.NoError(t, err)

	s.Stop()
	require.Equal(t, 0, s.Len())

	_, err = s.Schedule(&Job{MemberID: "1"}, time.Second)
	require.ErrorIs(t, err, ErrStopped)

	clock.Advance(2 * time.Hour)
	rec.none(t)
}

func Test_Scheduler_ScheduleDoesNotBlock(t *testing.T) {
	s := New(Options{
		Executor: func(ctx context.Context, job *Job) error {
			return nil
		},
	})
	s.Start(context.Background())

	defer s.Stop()

	start := time.Now()

	_, err := s.Schedule(&Job{MemberID: "1"}, time.Hour)
	require.NoError(t, err)
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

func Test_RegisterMetrics(t *testing.T) {
	s, clock, rec := newTestScheduler(t, func(ctx context.Context, job *Job) error {
		return nil
	}, false)

	registry := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(registry, s))

	_, err := s.Schedule(&Job{MemberID: "1"}, time.Second)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(registry, "eagle_restorations_pending")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	clock.Advance(time.Second)
	rec.next(t)

	require.Eventually(t, func() bool {
		n, err := testutil.GatherAndCount(registry, "eagle_restorations_total")
		return err == nil && n == 1
	}, time.Second, 10*time.Millisecond)
}
