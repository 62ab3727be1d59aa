package pipeline

import (
	"sync"
	"time"
)

// Store is the job registry. It is injectable so the pipeline can run
// against a different backend without changes; the default is in-memory with
// TTL eviction.
type Store interface {
	Get(id string) *Job
	Put(job *Job)
	Delete(id string)
	List() []*Job
	SweepExpired(now time.Time) int
}

// MemoryStore is a thread-safe in-memory job registry.
type MemoryStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *MemoryStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *MemoryStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

func (s *MemoryStore) List() []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	return out
}

// SweepExpired removes jobs older than the TTL, keyed on creation time, and
// reports how many were removed.
func (s *MemoryStore) SweepExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, job := range s.jobs {
		if now.Sub(job.CreatedAt) > s.ttl {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}
