package docstore

import (
	"testing"
	"time"
)

func TestStore_MaterializeAndGet(t *testing.T) {
	s := New()
	id, err := s.Materialize("hola mundo", "report.txt", "es")
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("empty artifact id")
	}

	a, ok := s.Get(id)
	if !ok {
		t.Fatal("artifact not found")
	}
	if string(a.Data) != "hola mundo" {
		t.Errorf("data = %q", a.Data)
	}
	if a.OriginalName != "report.txt" || a.LangCode != "es" {
		t.Errorf("metadata = %+v", a)
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("Get(missing) found something")
	}
}

func TestStore_UniqueIDs(t *testing.T) {
	s := New()
	a, _ := s.Materialize("x", "a.txt", "es")
	b, _ := s.Materialize("x", "a.txt", "es")
	if a == b {
		t.Error("two artifacts share an id")
	}
}

func TestStore_Delete(t *testing.T) {
	s := New()
	id, _ := s.Materialize("x", "a.txt", "es")
	s.Delete(id)
	if _, ok := s.Get(id); ok {
		t.Error("artifact survived Delete")
	}
}

func TestStore_SweepExpired(t *testing.T) {
	s := New()
	oldID, _ := s.Materialize("old", "a.txt", "es")
	freshID, _ := s.Materialize("fresh", "b.txt", "es")

	// Age the first artifact past the TTL.
	s.mu.Lock()
	a := s.artifacts[oldID]
	a.CreatedAt = time.Now().Add(-2 * time.Hour)
	s.artifacts[oldID] = a
	s.mu.Unlock()

	if removed := s.SweepExpired(time.Now(), time.Hour); removed != 1 {
		t.Fatalf("removed %d, want 1", removed)
	}
	if _, ok := s.Get(oldID); ok {
		t.Error("expired artifact survived")
	}
	if _, ok := s.Get(freshID); !ok {
		t.Error("fresh artifact swept")
	}
}
