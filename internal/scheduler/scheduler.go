// Package scheduler provides in-memory deferred role restoration
package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrOverlap is returned when member already has pending restoration and overlaps are rejected
	ErrOverlap = errors.New("restoration already pending")
	// ErrStopped is returned when scheduling on stopped scheduler
	ErrStopped = errors.New("scheduler stopped")
)

// Executor performs restoration of a due job
type Executor func(ctx context.Context, job *Job) error

// Observer is notified once job reaches final state
type Observer func(job Job)

// Options provide configuration for scheduler
type Options struct {
	Clock         Clock
	Executor      Executor
	Log           *logrus.Logger
	RejectOverlap bool
}

// Scheduler keeps pending jobs ordered by fire time and runs them from a single dispatch loop
type Scheduler struct {
	clock         Clock
	exec          Executor
	log           *logrus.Logger
	observers     []Observer
	rejectOverlap bool

	queue   queue
	active  map[string]int
	wake    chan struct{}
	done    chan struct{}
	started bool
	stopped bool
	m       sync.Mutex
	wg      sync.WaitGroup
}

// New returns scheduler instance
func New(options Options) *Scheduler {
	if options.Clock == nil {
		options.Clock = RealClock{}
	}

	if options.Log == nil {
		options.Log = logrus.New()
	}

	return &Scheduler{
		clock:         options.Clock,
		exec:          options.Executor,
		log:           options.Log,
		rejectOverlap: options.RejectOverlap,
		active:        make(map[string]int),
		wake:          make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
}

// Observe registers outcome observer
func (s *Scheduler) Observe(observer Observer) {
	s.m.Lock()
	s.observers = append(s.observers, observer)
	s.m.Unlock()
}

// Schedule enqueues job to fire after delay and returns immediately
func (s *Scheduler) Schedule(job *Job, delay time.Duration) (Job, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if s.stopped {
		return Job{}, ErrStopped
	}

	if s.rejectOverlap && s.active[job.MemberID] > 0 {
		return Job{}, ErrOverlap
	}

	if delay < 0 {
		delay = 0
	}

	job.ID = uuid.New().String()
	job.CreatedAt = s.clock.Now()
	job.FireAt = job.CreatedAt.Add(delay)
	job.State = Pending
	job.Err = nil

	heap.Push(&s.queue, job)
	s.active[job.MemberID]++

	select {
	case s.wake <- struct{}{}:
	default:
	}

	return job.Copy(), nil
}

// Start launches dispatch loop
func (s *Scheduler) Start(ctx context.Context) {
	s.m.Lock()
	defer s.m.Unlock()

	if s.started || s.stopped {
		return
	}

	s.started = true

	s.wg.Add(1)

	go s.loop(ctx)
}

// Stop terminates dispatch loop, waits for running jobs and drops pending ones
func (s *Scheduler) Stop() {
	s.m.Lock()

	if s.stopped {
		s.m.Unlock()
		return
	}

	s.stopped = true
	close(s.done)

	dropped := len(s.queue)
	s.queue = nil
	s.active = make(map[string]int)

	s.m.Unlock()

	s.wg.Wait()

	if dropped > 0 {
		s.log.WithField("dropped", dropped).Warn("Scheduler stopped with pending restorations")
	}
}

// Len returns number of pending jobs
func (s *Scheduler) Len() int {
	s.m.Lock()
	defer s.m.Unlock()

	return len(s.queue)
}

// Active returns true if member has pending or running job
func (s *Scheduler) Active(memberID string) bool {
	s.m.Lock()
	defer s.m.Unlock()

	return s.active[memberID] > 0
}

// RejectsOverlap returns true if second job for the same member is refused
func (s *Scheduler) RejectsOverlap() bool {
	return s.rejectOverlap
}

// Jobs returns copies of pending jobs ordered by fire time
func (s *Scheduler) Jobs() (jobs []Job) {
	s.m.Lock()

	for _, job := range s.queue {
		jobs = append(jobs, job.Copy())
	}

	s.m.Unlock()

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].FireAt.Before(jobs[j].FireAt)
	})

	return jobs
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	for {
		s.m.Lock()

		var (
			timer Timer
			fire  <-chan time.Time
		)

		if next := s.queue.peek(); next != nil {
			if !next.FireAt.After(s.clock.Now()) {
				job := heap.Pop(&s.queue).(*Job)
				s.m.Unlock()
				s.run(ctx, job)

				continue
			}

			timer = s.clock.NewTimer(next.FireAt)
			fire = timer.C()
		}

		s.m.Unlock()

		select {
		case <-fire:
		case <-s.wake:
		case <-s.done:
			stopTimer(timer)
			return
		case <-ctx.Done():
			stopTimer(timer)
			return
		}

		stopTimer(timer)
	}
}

func (s *Scheduler) run(ctx context.Context, job *Job) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		err := s.execute(ctx, job)

		s.m.Lock()

		if err != nil {
			job.State = Abandoned
			job.Err = err
		} else {
			job.State = Fired
		}

		if s.active[job.MemberID] > 1 {
			s.active[job.MemberID]--
		} else {
			delete(s.active, job.MemberID)
		}

		observers := append([]Observer(nil), s.observers...)
		final := job.Copy()

		s.m.Unlock()

		for _, o := range observers {
			o(final)
		}
	}()
}

func (s *Scheduler) execute(ctx context.Context, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("job", job.ID).WithField("panic", r).Error("Restoration panicked")

			err = errors.New("restoration panicked")
		}
	}()

	if s.exec == nil {
		return errors.New("no executor")
	}

	return s.exec(ctx, job)
}

func stopTimer(timer Timer) {
	if timer != nil {
		timer.Stop()
	}
}
