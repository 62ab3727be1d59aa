package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// QueueItem wraps a job waiting in the document queue. Its status mirrors
// the job's.
type QueueItem struct {
	Job      *Job
	FileName string
	FileSize int64
	AddedAt  time.Time
}

// QueueItemSnapshot is a read-only, JSON-safe view of a queue entry.
type QueueItemSnapshot struct {
	Position int       `json:"position"`
	TaskID   string    `json:"task_id"`
	FileName string    `json:"file_name"`
	FileSize int64     `json:"file_size"`
	Status   JobStatus `json:"status"`
	Progress int       `json:"progress"`
}

// Queue processes document jobs strictly one at a time. Documents are
// pipelined, not parallelized: total concurrent outbound calls stay bounded
// by the scheduler's window regardless of queue depth.
type Queue struct {
	mu       sync.Mutex
	items    []*QueueItem
	paused   bool
	active   bool
	wake     chan struct{}
	store    Store
	worker   *Worker
	log      *slog.Logger
	sweep    time.Duration
	capacity int
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	started  bool

	artifactSweep func(now time.Time) int
}

// NewQueue builds a queue. A capacity of zero or less means unbounded.
func NewQueue(store Store, worker *Worker, log *slog.Logger, sweepInterval time.Duration, capacity int) *Queue {
	if sweepInterval <= 0 {
		sweepInterval = 10 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &Queue{
		wake:     make(chan struct{}, 1),
		store:    store,
		worker:   worker,
		log:      log,
		sweep:    sweepInterval,
		capacity: capacity,
	}
}

// SweepArtifacts registers an extra cleanup step run on each sweep tick.
// The document flow uses it to expire materialized artifacts alongside their
// jobs, so evicting a job does not strand its downloads.
func (q *Queue) SweepArtifacts(fn func(now time.Time) int) {
	q.mu.Lock()
	q.artifactSweep = fn
	q.mu.Unlock()
}

// Start launches the consumption loop and the expiry sweeper.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return
	}
	q.started = true
	loopCtx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.mu.Unlock()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.run(loopCtx)
	}()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		ticker := time.NewTicker(q.sweep)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				q.sweepExpired(time.Now())
			}
		}
	}()
}

// Stop shuts the queue down; the in-flight item, if any, is interrupted via
// its context.
func (q *Queue) Stop() {
	q.mu.Lock()
	cancel := q.cancel
	q.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	q.wg.Wait()
}

func (q *Queue) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		}

		for {
			item := q.takeNext()
			if item == nil {
				break
			}
			q.worker.Process(ctx, item.Job)
			q.finishCurrent()
			if ctx.Err() != nil {
				return
			}
		}
	}
}

// takeNext claims the next pending item, or nil when paused, busy, or empty.
func (q *Queue) takeNext() *QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.paused || q.active {
		return nil
	}
	for _, it := range q.items {
		if it.Job.Status() == StatusPending {
			q.active = true
			return it
		}
	}
	return nil
}

func (q *Queue) finishCurrent() {
	q.mu.Lock()
	q.active = false
	q.mu.Unlock()
}

// ErrQueueFull is returned by Add when the queue's capacity is reached.
var ErrQueueFull = errors.New("queue is full")

// Add registers the job in the store and appends it to the queue. Only
// non-terminal entries count against the capacity; finished jobs lingering
// until the sweep never wedge the queue shut.
func (q *Queue) Add(job *Job) error {
	q.mu.Lock()
	if q.capacity > 0 {
		waiting := 0
		for _, it := range q.items {
			switch it.Job.Status() {
			case StatusPending, StatusProcessing:
				waiting++
			}
		}
		if waiting >= q.capacity {
			q.mu.Unlock()
			return ErrQueueFull
		}
	}
	q.store.Put(job)
	q.items = append(q.items, &QueueItem{
		Job:      job,
		FileName: job.FileName,
		FileSize: job.FileSize,
		AddedAt:  time.Now(),
	})
	q.mu.Unlock()
	q.signal()
	return nil
}

// Pause stops starting new items; the in-flight item finishes.
func (q *Queue) Pause() {
	q.mu.Lock()
	q.paused = true
	q.mu.Unlock()
}

// Resume restarts consumption.
func (q *Queue) Resume() {
	q.mu.Lock()
	q.paused = false
	q.mu.Unlock()
	q.signal()
}

// Paused reports whether the queue is paused.
func (q *Queue) Paused() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.paused
}

// Clear empties the queue. It is only permitted while the queue is not
// running: nothing in flight, and consumption paused or nothing pending.
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.active {
		return fmt.Errorf("queue is processing an item")
	}
	if !q.paused {
		for _, it := range q.items {
			if it.Job.Status() == StatusPending {
				return fmt.Errorf("queue is running; pause it first")
			}
		}
	}
	q.items = nil
	return nil
}

// Snapshot returns the queue contents in order.
func (q *Queue) Snapshot() []QueueItemSnapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]QueueItemSnapshot, 0, len(q.items))
	for i, it := range q.items {
		out = append(out, QueueItemSnapshot{
			Position: i,
			TaskID:   it.Job.ID,
			FileName: it.FileName,
			FileSize: it.FileSize,
			Status:   it.Job.Status(),
			Progress: it.Job.Progress(),
		})
	}
	return out
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// sweepExpired is one sweep tick: evict expired jobs from the store, drop
// their queue entries, and expire materialized artifacts.
func (q *Queue) sweepExpired(now time.Time) {
	removed := q.store.SweepExpired(now)
	dropped := q.dropTerminalExpired(now)

	q.mu.Lock()
	fn := q.artifactSweep
	q.mu.Unlock()
	artifacts := 0
	if fn != nil {
		artifacts = fn(now)
	}

	if removed > 0 || dropped > 0 || artifacts > 0 {
		q.log.Info("expiry sweep",
			"jobs_removed", removed, "queue_dropped", dropped, "artifacts_removed", artifacts)
	}
}

// dropTerminalExpired removes queue entries whose job passed the expiry
// window. Housekeeping only; correctness does not depend on it.
func (q *Queue) dropTerminalExpired(now time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.items[:0]
	dropped := 0
	for _, it := range q.items {
		if q.store.Get(it.Job.ID) == nil {
			dropped++
			continue
		}
		kept = append(kept, it)
	}
	q.items = kept
	return dropped
}
