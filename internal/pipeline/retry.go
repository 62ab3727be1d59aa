package pipeline

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/doctrans/doctrans/internal/chunker"
	"github.com/doctrans/doctrans/internal/engine"
)

// UnitStatus tells how a chunk's translation was obtained.
type UnitStatus string

const (
	// UnitOK means the engine produced the translation.
	UnitOK UnitStatus = "ok"
	// UnitFallback means retries were exhausted and fallback text was
	// substituted.
	UnitFallback UnitStatus = "fallback"
)

// UnitResult is the outcome of translating one chunk into one language.
type UnitResult struct {
	ChunkIndex int
	Status     UnitStatus
	Text       string
	Err        string
}

// FallbackProvider supplies the placeholder substituted for a chunk whose
// retries are exhausted.
type FallbackProvider func(targetLang string) string

var fallbackPhrases = map[string]string{
	"es": "[traducción no disponible]",
	"fr": "[traduction indisponible]",
	"de": "[Übersetzung nicht verfügbar]",
	"pt": "[tradução indisponível]",
	"it": "[traduzione non disponibile]",
	"ru": "[перевод недоступен]",
	"zh": "[翻译不可用]",
	"ja": "[翻訳は利用できません]",
}

// DefaultFallback returns a deterministic per-language placeholder phrase.
func DefaultFallback(targetLang string) string {
	if p, ok := fallbackPhrases[targetLang]; ok {
		return p
	}
	return "[translation unavailable]"
}

// RetryPolicy bounds the attempt loop of a unit translation.
type RetryPolicy struct {
	MaxAttempts int
	BackoffBase time.Duration
	BackoffMax  time.Duration

	// Sleep waits between attempts. Overridable in tests; the default is a
	// context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BackoffBase: 1 * time.Second,
		BackoffMax:  16 * time.Second,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.BackoffBase <= 0 {
		p.BackoffBase = 1 * time.Second
	}
	if p.BackoffMax < p.BackoffBase {
		p.BackoffMax = 16 * time.Second
	}
	if p.Sleep == nil {
		p.Sleep = sleepCtx
	}
	return p
}

// Backoff returns the delay before retrying attempt n (1-indexed): the base
// doubled per attempt, capped, plus up to 30% uniform jitter so many
// concurrently failing units don't retry in lockstep.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := p.BackoffBase << uint(attempt-1)
	if d > p.BackoffMax || d <= 0 {
		d = p.BackoffMax
	}
	jitter := time.Duration(rand.Int63n(int64(d)*3/10 + 1))
	return d + jitter
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UnitTranslator wraps the engine with bounded retries and a fallback value,
// producing a best-effort result per chunk. Translate never fails: one
// unrecoverable chunk must not abort a whole job.
type UnitTranslator struct {
	Engine   engine.Translator
	Policy   RetryPolicy
	Fallback FallbackProvider
	Stats    *engine.CallStats
	Log      *slog.Logger
}

// Translate runs the attempt loop for one chunk. On exhaustion it substitutes
// the fallback phrase for the target language; availability of a result
// outranks correctness of that one chunk.
func (u *UnitTranslator) Translate(ctx context.Context, ch chunker.Chunk, sourceLang, targetLang string) UnitResult {
	policy := u.Policy.normalized()
	fallback := u.Fallback
	if fallback == nil {
		fallback = DefaultFallback
	}
	log := u.Log
	if log == nil {
		log = slog.Default()
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		out, err := u.Engine.Translate(ctx, ch.Text, sourceLang, targetLang)
		if err == nil {
			if attempt > 1 {
				log.Info("unit translation succeeded after retries",
					"chunk", ch.Index, "lang", targetLang, "attempts", attempt)
			}
			return UnitResult{ChunkIndex: ch.Index, Status: UnitOK, Text: out}
		}
		lastErr = err

		if !engine.IsRetryable(err) || attempt == policy.MaxAttempts {
			break
		}
		log.Warn("retryable unit translation error",
			"chunk", ch.Index, "lang", targetLang, "attempt", attempt, "error", err)
		if u.Stats != nil {
			u.Stats.AddRetry()
		}
		if err := policy.Sleep(ctx, policy.Backoff(attempt)); err != nil {
			break
		}
	}

	log.Error("unit translation exhausted, substituting fallback",
		"chunk", ch.Index, "lang", targetLang, "error", lastErr)
	if u.Stats != nil {
		u.Stats.AddFallback()
	}
	return UnitResult{
		ChunkIndex: ch.Index,
		Status:     UnitFallback,
		Text:       fallback(targetLang),
		Err:        lastErr.Error(),
	}
}
