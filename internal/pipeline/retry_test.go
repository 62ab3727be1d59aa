package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/doctrans/doctrans/internal/chunker"
	"github.com/doctrans/doctrans/internal/engine"
)

// stubEngine scripts the outcome of each successive call.
type stubEngine struct {
	mu    sync.Mutex
	calls int
	fn    func(call int, text string) (string, error)
}

func (s *stubEngine) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()
	return s.fn(call, text)
}

func (s *stubEngine) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func noSleep(sleeps *[]time.Duration) func(context.Context, time.Duration) error {
	var mu sync.Mutex
	return func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		*sleeps = append(*sleeps, d)
		mu.Unlock()
		return nil
	}
}

func testChunk(text string) chunker.Chunk {
	return chunker.Chunk{Index: 0, Text: text, Size: len(text)}
}

func TestUnitTranslator_RetriesThenSucceeds(t *testing.T) {
	eng := &stubEngine{fn: func(call int, text string) (string, error) {
		if call <= 2 {
			return "", &engine.UpstreamError{Status: 503, Message: "overloaded"}
		}
		return "translated: " + text, nil
	}}

	var sleeps []time.Duration
	u := &UnitTranslator{
		Engine: eng,
		Policy: RetryPolicy{
			MaxAttempts: 3,
			BackoffBase: 1 * time.Second,
			BackoffMax:  16 * time.Second,
			Sleep:       noSleep(&sleeps),
		},
	}

	res := u.Translate(context.Background(), testChunk("hello"), "en", "es")
	if res.Status != UnitOK {
		t.Fatalf("expected success, got %s (%s)", res.Status, res.Err)
	}
	if res.Text != "translated: hello" {
		t.Errorf("unexpected text %q", res.Text)
	}
	if eng.callCount() != 3 {
		t.Errorf("expected 3 attempts, got %d", eng.callCount())
	}
	if len(sleeps) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", len(sleeps))
	}
	// First delay: base plus up to 30% jitter. Second: doubled, ditto.
	if sleeps[0] < 1*time.Second || sleeps[0] > 1300*time.Millisecond {
		t.Errorf("first backoff out of range: %v", sleeps[0])
	}
	if sleeps[1] < 2*time.Second || sleeps[1] > 2600*time.Millisecond {
		t.Errorf("second backoff out of range: %v", sleeps[1])
	}
	if sleeps[1] <= sleeps[0] {
		t.Errorf("backoff should increase: %v then %v", sleeps[0], sleeps[1])
	}
}

func TestUnitTranslator_ExhaustionSubstitutesFallback(t *testing.T) {
	eng := &stubEngine{fn: func(call int, text string) (string, error) {
		return "", &engine.UpstreamError{Status: 502, Message: "down"}
	}}

	var sleeps []time.Duration
	u := &UnitTranslator{
		Engine: eng,
		Policy: RetryPolicy{MaxAttempts: 3, Sleep: noSleep(&sleeps)},
	}

	res := u.Translate(context.Background(), testChunk("hello"), "en", "es")
	if res.Status != UnitFallback {
		t.Fatalf("expected fallback, got %s", res.Status)
	}
	if res.Text == "" {
		t.Error("fallback text must be non-empty")
	}
	if res.Text != DefaultFallback("es") {
		t.Errorf("expected the es fallback phrase, got %q", res.Text)
	}
	if res.Err == "" {
		t.Error("fallback result should carry the last error")
	}
	if eng.callCount() != 3 {
		t.Errorf("expected exactly maxAttempts calls, got %d", eng.callCount())
	}
}

func TestUnitTranslator_TerminalErrorStopsImmediately(t *testing.T) {
	eng := &stubEngine{fn: func(call int, text string) (string, error) {
		return "", &engine.UpstreamError{Status: 400, Message: "bad request"}
	}}

	var sleeps []time.Duration
	u := &UnitTranslator{
		Engine: eng,
		Policy: RetryPolicy{MaxAttempts: 5, Sleep: noSleep(&sleeps)},
	}

	res := u.Translate(context.Background(), testChunk("hello"), "en", "fr")
	if res.Status != UnitFallback {
		t.Fatalf("expected fallback, got %s", res.Status)
	}
	if eng.callCount() != 1 {
		t.Errorf("terminal error should not be retried, got %d calls", eng.callCount())
	}
	if len(sleeps) != 0 {
		t.Errorf("no backoff expected, observed %d sleeps", len(sleeps))
	}
}

func TestUnitTranslator_CustomFallbackProvider(t *testing.T) {
	eng := &stubEngine{fn: func(call int, text string) (string, error) {
		return "", &engine.UpstreamError{Status: 500}
	}}

	var sleeps []time.Duration
	u := &UnitTranslator{
		Engine:   eng,
		Policy:   RetryPolicy{MaxAttempts: 2, Sleep: noSleep(&sleeps)},
		Fallback: func(lang string) string { return "<<" + lang + ">>" },
	}

	res := u.Translate(context.Background(), testChunk("x"), "en", "de")
	if res.Text != "<<de>>" {
		t.Errorf("expected injected fallback, got %q", res.Text)
	}
}

func TestDefaultFallback_Deterministic(t *testing.T) {
	if DefaultFallback("es") != DefaultFallback("es") {
		t.Error("fallback must be deterministic")
	}
	if DefaultFallback("tlh") == "" {
		t.Error("unknown language must still produce a non-empty phrase")
	}
}

func TestRetryPolicy_BackoffCap(t *testing.T) {
	p := RetryPolicy{BackoffBase: 1 * time.Second, BackoffMax: 16 * time.Second}
	for attempt := 1; attempt <= 20; attempt++ {
		d := p.Backoff(attempt)
		if d > 16*time.Second+16*time.Second*3/10 {
			t.Fatalf("attempt %d backoff %v exceeds cap plus jitter", attempt, d)
		}
		if d <= 0 {
			t.Fatalf("attempt %d backoff %v not positive", attempt, d)
		}
	}
}
