package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type stubMaterializer struct {
	mu      sync.Mutex
	next    int
	failFor map[string]bool
	calls   []string // langCode per call
	bodies  map[string]string
}

func newStubMaterializer() *stubMaterializer {
	return &stubMaterializer{failFor: map[string]bool{}, bodies: map[string]string{}}
}

func (m *stubMaterializer) Materialize(text, originalName, langCode string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, langCode)
	if m.failFor[langCode] {
		return "", errors.New("disk full")
	}
	m.next++
	id := "doc-" + langCode
	m.bodies[id] = text
	return id, nil
}

func testWorker(eng *stubEngine, docs Materializer) *Worker {
	return &Worker{
		Sched:      &Scheduler{Units: &UnitTranslator{Engine: eng}, Concurrency: 2},
		Docs:       docs,
		Extract:    func(data []byte, filename string) (string, error) { return string(data), nil },
		ChunkLimit: 2000,
	}
}

func TestWorker_ProcessHappyPath(t *testing.T) {
	eng := &stubEngine{fn: func(call int, text string) (string, error) {
		return "T:" + text, nil
	}}
	docs := newStubMaterializer()
	w := testWorker(eng, docs)

	job := NewJob("en", []string{"es", "fr"}, "report.txt", 11)
	job.SetFileData([]byte("hello world"))
	w.Process(context.Background(), job)

	if job.Status() != StatusCompleted {
		t.Fatalf("status = %s, want completed", job.Status())
	}
	if job.Progress() != 100 {
		t.Errorf("progress = %d, want 100", job.Progress())
	}

	for _, lang := range []string{"es", "fr"} {
		r, ok := job.Result(lang)
		if !ok {
			t.Fatalf("no result for %s", lang)
		}
		if r.Status != LangCompleted {
			t.Errorf("%s status = %s (%s)", lang, r.Status, r.Err)
		}
		if r.Text != "T:hello world" {
			t.Errorf("%s text = %q", lang, r.Text)
		}
		if r.DocumentID == "" {
			t.Errorf("%s has no artifact", lang)
		}
		body := docs.bodies[r.DocumentID]
		if !strings.Contains(body, "T:hello world") || !strings.Contains(body, "Original file: report.txt") {
			t.Errorf("%s artifact body = %q", lang, body)
		}
	}
}

func TestWorker_LanguageFailureIsIsolated(t *testing.T) {
	eng := &stubEngine{fn: func(call int, text string) (string, error) {
		return "T:" + text, nil
	}}
	docs := newStubMaterializer()
	docs.failFor["de"] = true
	w := testWorker(eng, docs)

	job := NewJob("en", []string{"es", "de", "fr"}, "report.txt", 5)
	job.SetFileData([]byte("hello"))
	w.Process(context.Background(), job)

	if job.Status() != StatusCompleted {
		t.Fatalf("one bad language must not fail the job: status = %s", job.Status())
	}
	if r, _ := job.Result("de"); r.Status != LangError || !strings.Contains(r.Err, "materialize") {
		t.Errorf("de result = %+v", r)
	}
	for _, lang := range []string{"es", "fr"} {
		if r, _ := job.Result(lang); r.Status != LangCompleted {
			t.Errorf("%s result = %+v", lang, r)
		}
	}
	// All three languages were attempted despite the middle failure.
	if len(docs.calls) != 3 {
		t.Errorf("materialize calls = %v", docs.calls)
	}
}

func TestWorker_ExtractionFailureFailsJob(t *testing.T) {
	w := testWorker(&stubEngine{fn: func(int, string) (string, error) { return "", nil }}, newStubMaterializer())
	w.Extract = func(data []byte, filename string) (string, error) {
		return "", errors.New("corrupt file")
	}

	job := NewJob("en", []string{"es"}, "bad.pdf", 3)
	job.SetFileData([]byte{0x01})
	w.Process(context.Background(), job)

	if job.Status() != StatusError {
		t.Fatalf("status = %s, want error", job.Status())
	}
	if snap := job.Snapshot(); !strings.Contains(snap.Error, "corrupt file") {
		t.Errorf("job error = %q", snap.Error)
	}
}

func TestWorker_EmptyContentFailsJob(t *testing.T) {
	w := testWorker(&stubEngine{fn: func(int, string) (string, error) { return "", nil }}, newStubMaterializer())

	job := NewJob("en", []string{"es"}, "empty.txt", 0)
	job.SetFileData([]byte("   \n\n  "))
	w.Process(context.Background(), job)

	if job.Status() != StatusError {
		t.Fatalf("status = %s, want error", job.Status())
	}
}

func TestWorker_FallbackNoteOnDegradedResult(t *testing.T) {
	// Text long enough for several chunks; every engine call fails, so every
	// chunk falls back and the note reports it.
	eng := &stubEngine{fn: func(call int, text string) (string, error) {
		return "", errors.New("connection refused")
	}}
	docs := newStubMaterializer()
	w := testWorker(eng, docs)
	w.ChunkLimit = 10
	w.Sched.Units.Policy = RetryPolicy{MaxAttempts: 2, Sleep: func(context.Context, time.Duration) error { return nil }}

	job := NewJob("en", []string{"es"}, "long.txt", 40)
	job.SetFileData([]byte("one two three four five six seven eight"))
	w.Process(context.Background(), job)

	if job.Status() != StatusCompleted {
		t.Fatalf("status = %s, want completed", job.Status())
	}
	r, _ := job.Result("es")
	if r.Status != LangCompleted {
		t.Fatalf("result = %+v", r)
	}
	if !strings.Contains(r.Note, "fallback") {
		t.Errorf("expected a fallback note, got %q", r.Note)
	}
	if !strings.Contains(r.Text, DefaultFallback("es")) {
		t.Errorf("result text should contain fallback phrases: %q", r.Text)
	}
}

func TestWorker_ProgressNonDecreasing(t *testing.T) {
	var mu sync.Mutex
	var samples []int
	job := NewJob("en", []string{"es", "fr"}, "long.txt", 40)

	eng := &stubEngine{fn: func(call int, text string) (string, error) {
		mu.Lock()
		samples = append(samples, job.Progress())
		mu.Unlock()
		return "T:" + text, nil
	}}
	w := testWorker(eng, newStubMaterializer())
	w.ChunkLimit = 10

	job.SetFileData([]byte("one two three four five six seven eight"))
	w.Process(context.Background(), job)

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(samples); i++ {
		if samples[i] < samples[i-1] {
			t.Fatalf("progress regressed: %v", samples)
		}
	}
	if job.Progress() != 100 {
		t.Errorf("final progress = %d", job.Progress())
	}
}
