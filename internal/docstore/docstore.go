// Package docstore materializes translated text into downloadable artifacts
// and serves them back by id. In-memory; a restart loses artifacts, which is
// acceptable since jobs can be re-submitted.
package docstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Artifact is one materialized translated document.
type Artifact struct {
	ID           string
	OriginalName string
	LangCode     string
	Data         []byte
	CreatedAt    time.Time
}

// Store holds artifacts keyed by id.
type Store struct {
	mu        sync.Mutex
	artifacts map[string]Artifact
}

func New() *Store {
	return &Store{
		artifacts: make(map[string]Artifact),
	}
}

// Materialize stores the translated text as a downloadable artifact and
// returns its id.
func (s *Store) Materialize(text, originalName, langCode string) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[id] = Artifact{
		ID:           id,
		OriginalName: originalName,
		LangCode:     langCode,
		Data:         []byte(text),
		CreatedAt:    time.Now(),
	}
	return id, nil
}

// Get returns the artifact with the given id.
func (s *Store) Get(id string) (Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.artifacts[id]
	return a, ok
}

// Delete removes an artifact.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.artifacts, id)
}

// SweepExpired removes artifacts older than ttl relative to now and reports
// how many were removed.
func (s *Store) SweepExpired(now time.Time, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, a := range s.artifacts {
		if now.Sub(a.CreatedAt) > ttl {
			delete(s.artifacts, id)
			removed++
		}
	}
	return removed
}
