package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	model "auction-market/internal/models"
	"auction-market/internal/repository"

	"github.com/stretchr/testify/require"
)

// recorder collects job invocations
type recorder struct {
	mu    sync.Mutex
	runs  map[string][]time.Time
	fails map[string]int // remaining failures per job
}

func newRecorder() *recorder {
	return &recorder{runs: make(map[string][]time.Time), fails: make(map[string]int)}
}

func (r *recorder) run(ctx context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[jobID] = append(r.runs[jobID], time.Now())
	if r.fails[jobID] > 0 {
		r.fails[jobID]--
		return errors.New("settlement failed")
	}
	return nil
}

func (r *recorder) count(jobID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs[jobID])
}

func (r *recorder) firstRun(jobID string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.runs[jobID]) == 0 {
		return time.Time{}, false
	}
	return r.runs[jobID][0], true
}

// waitFor polls until cond holds or the deadline passes
func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.True(t, cond(), "condition not met within %s", d)
}

func TestScheduler_FiresAtRunAt(t *testing.T) {
	t.Parallel()

	rec := newRecorder()
	s := New(rec.run, 10*time.Millisecond, 100*time.Millisecond)

	runAt := time.Now().Add(40 * time.Millisecond)
	s.Schedule("job1", runAt)

	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool { return rec.count("job1") == 1 })

	fired, ok := rec.firstRun("job1")
	require.True(t, ok)
	require.False(t, fired.Before(runAt), "job must never fire before its instant")
}

func TestScheduler_RetriesFailedJob(t *testing.T) {
	t.Parallel()

	rec := newRecorder()
	rec.fails["job1"] = 2 // first two attempts fail, third succeeds
	s := New(rec.run, 5*time.Millisecond, 50*time.Millisecond)

	s.Schedule("job1", time.Now())
	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool { return rec.count("job1") == 3 })

	// settled: no further attempts
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 3, rec.count("job1"))
}

func TestScheduler_CancelPendingJob(t *testing.T) {
	t.Parallel()

	rec := newRecorder()
	s := New(rec.run, 10*time.Millisecond, 100*time.Millisecond)

	s.Schedule("job1", time.Now().Add(50*time.Millisecond))
	s.Start(context.Background())
	defer s.Stop()

	s.Cancel("job1")

	time.Sleep(150 * time.Millisecond)
	require.Equal(t, 0, rec.count("job1"))
}

func TestScheduler_RescheduleReplacesJob(t *testing.T) {
	t.Parallel()

	rec := newRecorder()
	s := New(rec.run, 10*time.Millisecond, 100*time.Millisecond)

	// resubmitting the same job moves it, never duplicates it
	s.Schedule("job1", time.Now().Add(10*time.Minute))
	s.Schedule("job1", time.Now().Add(20*time.Millisecond))

	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool { return rec.count("job1") == 1 })
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, rec.count("job1"))
}

func TestScheduler_SingleFlightPerJob(t *testing.T) {
	t.Parallel()

	var inFlight, maxInFlight, total int32
	run := func(ctx context.Context, jobID string) error {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			observed := atomic.LoadInt32(&maxInFlight)
			if cur <= observed || atomic.CompareAndSwapInt32(&maxInFlight, observed, cur) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		atomic.AddInt32(&total, 1)
		return nil
	}

	s := New(run, 5*time.Millisecond, 50*time.Millisecond)
	s.Start(context.Background())
	defer s.Stop()

	s.Schedule("job1", time.Now())
	time.Sleep(10 * time.Millisecond) // job1 is now running
	s.Schedule("job1", time.Now())    // resubmitted while in flight

	waitFor(t, 2*time.Second, func() bool { return atomic.LoadInt32(&total) == 2 })
	require.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight), "same job must never run concurrently")
}

func TestScheduler_Rehydrate(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	store := repository.NewMemoryStore()
	require.NoError(t, store.CreateAuction(model.Auction{
		AuctionID: "expired", ItemID: "i1", SellerID: "s1",
		StartingPrice: 10, CurrentPrice: 10,
		CreatedAt: now.Add(-20 * time.Minute), EndsAt: now.Add(-10 * time.Minute),
	}))
	require.NoError(t, store.CreateAuction(model.Auction{
		AuctionID: "upcoming", ItemID: "i2", SellerID: "s2",
		StartingPrice: 10, CurrentPrice: 10,
		CreatedAt: now, EndsAt: now.Add(30 * time.Millisecond),
	}))

	rec := newRecorder()
	s := New(rec.run, 10*time.Millisecond, 100*time.Millisecond)

	count, err := s.Rehydrate(store)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	s.Start(context.Background())
	defer s.Stop()

	// the already-expired auction settles immediately, the upcoming one at its instant
	waitFor(t, 2*time.Second, func() bool {
		return rec.count("expired") == 1 && rec.count("upcoming") == 1
	})
}
