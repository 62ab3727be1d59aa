package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/doctrans/doctrans/internal/assemble"
	"github.com/doctrans/doctrans/internal/chunker"
)

// ProgressFunc receives a progress event after each settled window: how many
// chunks are done, the total, and the joined text of everything settled so
// far (possibly containing fallback units).
type ProgressFunc func(done, total int, partial string)

// Scheduler runs an ordered chunk list through the unit translator with a
// fixed concurrency window.
type Scheduler struct {
	Units       *UnitTranslator
	Concurrency int
	Log         *slog.Logger
}

// TranslateAll translates chunks in windows of Concurrency. All members of a
// window run concurrently; the next window starts only after every member
// settles, which bounds peak outbound concurrency exactly. Results land in
// their chunk-index slot, so output order always matches input order no
// matter which call finishes first.
//
// stale is checked at each window boundary; when it reports true the run is
// abandoned and the settled results discarded (ok=false). This is how a
// newer request supersedes an older one without aborting in-flight calls.
func (s *Scheduler) TranslateAll(ctx context.Context, chunks []chunker.Chunk, sourceLang, targetLang string, onProgress ProgressFunc, stale func() bool) (results []UnitResult, ok bool) {
	conc := s.Concurrency
	if conc <= 0 {
		conc = 3
	}
	if stale == nil {
		stale = func() bool { return false }
	}
	log := s.Log
	if log == nil {
		log = slog.Default()
	}

	total := len(chunks)
	results = make([]UnitResult, total)

	for start := 0; start < total; start += conc {
		if stale() || ctx.Err() != nil {
			log.Info("translation run abandoned", "lang", targetLang, "done", start, "total", total)
			return nil, false
		}

		end := start + conc
		if end > total {
			end = total
		}

		var wg sync.WaitGroup
		for _, ch := range chunks[start:end] {
			wg.Add(1)
			go func(ch chunker.Chunk) {
				defer wg.Done()
				results[ch.Index] = s.Units.Translate(ctx, ch, sourceLang, targetLang)
			}(ch)
		}
		wg.Wait()

		if stale() {
			log.Info("translation run abandoned", "lang", targetLang, "done", end, "total", total)
			return nil, false
		}
		if onProgress != nil {
			onProgress(end, total, JoinResults(chunks[:end], results[:end]))
		}
	}

	return results, true
}

// JoinResults assembles translated chunk results back into one string,
// re-inserting the separator consumed at each boundary.
func JoinResults(chunks []chunker.Chunk, results []UnitResult) string {
	pieces := make([]assemble.Piece, len(results))
	for i, r := range results {
		pieces[i] = assemble.Piece{Text: r.Text, Sep: chunks[i].Sep}
	}
	return assemble.Join(pieces)
}

// CountFallbacks reports how many units used fallback text.
func CountFallbacks(results []UnitResult) int {
	n := 0
	for _, r := range results {
		if r.Status == UnitFallback {
			n++
		}
	}
	return n
}
