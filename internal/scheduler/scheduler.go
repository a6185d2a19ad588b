// Package scheduler is the settlement timer service: a single time-ordered
// job queue that fires one finalization callback per auction at its expiry
// instant. Jobs run at-least-once; the finalization callback is idempotent,
// which is what makes replays after a crash-restart safe. The queue is
// rebuilt from the auction store on startup, so no in-process timer state
// has to survive a restart.
package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"auction-market/internal/repository"
	"auction-market/utils"
)

// RunFunc is the callback fired when a job comes due
type RunFunc func(ctx context.Context, jobID string) error

type job struct {
	id       string
	runAt    time.Time
	attempts int
	index    int // heap index, -1 when not queued
}

// Scheduler dispatches jobs at their runAt instants, retries failed jobs
// with exponential backoff, and never runs two jobs with the same ID
// concurrently.
type Scheduler struct {
	run           RunFunc
	retryBase     time.Duration
	maxRetryDelay time.Duration

	mu        sync.Mutex
	queue     jobQueue
	pending   map[string]*job
	running   map[string]bool
	cancelled map[string]bool

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Scheduler. retryBase is the first retry delay after a failed
// job, doubling per attempt up to maxRetryDelay.
func New(run RunFunc, retryBase, maxRetryDelay time.Duration) *Scheduler {
	return &Scheduler{
		run:           run,
		retryBase:     retryBase,
		maxRetryDelay: maxRetryDelay,
		pending:       make(map[string]*job),
		running:       make(map[string]bool),
		cancelled:     make(map[string]bool),
		wake:          make(chan struct{}, 1),
	}
}

// Schedule registers a job to fire at runAt. Scheduling an already-pending
// job moves it to the new instant instead of duplicating it, so repeated
// submission for the same auction is safe.
func (s *Scheduler) Schedule(jobID string, runAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cancelled, jobID)
	if existing, ok := s.pending[jobID]; ok {
		existing.runAt = runAt
		heap.Fix(&s.queue, existing.index)
	} else {
		j := &job{id: jobID, runAt: runAt}
		s.pending[jobID] = j
		heap.Push(&s.queue, j)
	}
	s.signal()
}

// Cancel removes a pending job. A job already running finishes its current
// attempt but is not rescheduled on failure.
func (s *Scheduler) Cancel(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j, ok := s.pending[jobID]; ok {
		heap.Remove(&s.queue, j.index)
		delete(s.pending, jobID)
	}
	if s.running[jobID] {
		s.cancelled[jobID] = true
	}
}

// Rehydrate rebuilds the job queue from the auction store: one finalization
// job per stored record, keyed by auction ID at its ends_at instant. Records
// whose expiry already passed fire immediately.
func (s *Scheduler) Rehydrate(store repository.AuctionStore) (int, error) {
	auctions, err := store.ListAuctions()
	if err != nil {
		return 0, err
	}
	for _, a := range auctions {
		s.Schedule(a.AuctionID, a.EndsAt)
	}
	return len(auctions), nil
}

// Start launches the dispatch loop
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop()
}

// Stop cancels the dispatch loop and waits for in-flight jobs to return
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		now := time.Now()
		wait := time.Hour
		var due *job
		if s.queue.Len() > 0 {
			next := s.queue[0]
			if next.runAt.After(now) {
				wait = time.Until(next.runAt)
			} else if s.running[next.id] {
				// same key still running a previous attempt, look again shortly
				next.runAt = now.Add(s.retryBase)
				heap.Fix(&s.queue, next.index)
				wait = s.retryBase
			} else {
				due = heap.Pop(&s.queue).(*job)
				delete(s.pending, due.id)
				s.running[due.id] = true
			}
		}
		s.mu.Unlock()

		if due != nil {
			s.wg.Add(1)
			go s.dispatch(due)
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-s.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (s *Scheduler) dispatch(j *job) {
	defer s.wg.Done()

	err := s.run(s.ctx, j.id)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, j.id)

	if err == nil || s.ctx.Err() != nil {
		delete(s.cancelled, j.id)
		s.signal()
		return
	}
	if s.cancelled[j.id] {
		delete(s.cancelled, j.id)
		utils.Warn("scheduler: failed job was cancelled, dropping", map[string]any{"job_id": j.id, "error": err.Error()})
		s.signal()
		return
	}

	j.attempts++
	delay := s.retryDelay(j.attempts)
	j.runAt = time.Now().Add(delay)
	if _, ok := s.pending[j.id]; !ok {
		s.pending[j.id] = j
		heap.Push(&s.queue, j)
	}
	utils.Warn("scheduler: job failed, rescheduled", map[string]any{
		"job_id":   j.id,
		"attempts": j.attempts,
		"retry_in": delay.String(),
		"error":    err.Error(),
	})
	s.signal()
}

func (s *Scheduler) retryDelay(attempts int) time.Duration {
	delay := s.retryBase
	for i := 1; i < attempts && delay < s.maxRetryDelay; i++ {
		delay *= 2
	}
	if delay > s.maxRetryDelay {
		delay = s.maxRetryDelay
	}
	return delay
}

// jobQueue is a min-heap of jobs ordered by runAt
type jobQueue []*job

func (q jobQueue) Len() int            { return len(q) }
func (q jobQueue) Less(i, j int) bool  { return q[i].runAt.Before(q[j].runAt) }
func (q jobQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *jobQueue) Push(x interface{}) { j := x.(*job); j.index = len(*q); *q = append(*q, j) }
func (q *jobQueue) Pop() interface{} {
	old := *q
	n := len(old)
	j := old[n-1]
	old[n-1] = nil
	j.index = -1
	*q = old[:n-1]
	return j
}
