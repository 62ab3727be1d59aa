package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/doctrans/doctrans/internal/assemble"
	"github.com/doctrans/doctrans/internal/chunker"
)

// Materializer turns translated text into a downloadable document artifact.
type Materializer interface {
	Materialize(text, originalName, langCode string) (string, error)
}

// ExtractFunc pulls translatable text out of uploaded bytes.
type ExtractFunc func(data []byte, filename string) (string, error)

// Progress shares for the document flow: extraction, translation spread
// across languages, and head/tail overhead.
const (
	extractionShare  = 10
	translationShare = 80
)

// Worker processes a single document translation job.
type Worker struct {
	Sched      *Scheduler
	Docs       Materializer
	Extract    ExtractFunc
	ChunkLimit int
	Log        *slog.Logger
}

// Process runs one job to a terminal state: extract, then translate each
// target language in turn, then materialize per-language artifacts.
//
// Languages run sequentially. The scheduler already has its own concurrency
// budget; running languages in parallel on top of it would multiply outbound
// request pressure uncontrollably.
//
// A failure in one language's run is recorded on that language and the loop
// continues; only extraction failure (or no content) fails the whole job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With("job_id", job.ID, "file", job.FileName)

	job.SetProcessing()

	text, err := w.Extract(job.FileData(), job.FileName)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.Fail(fmt.Sprintf("extract: %s", err))
		return
	}
	job.SetProgress(extractionShare)

	chunks := chunker.Split(text, w.ChunkLimit)
	if len(chunks) == 0 {
		log.Warn("no translatable content")
		job.Fail("no translatable content")
		return
	}
	log.Info("chunked document", "chunks", len(chunks), "langs", len(job.TargetLangs))

	total := len(job.TargetLangs)
	for i, lang := range job.TargetLangs {
		langDone := i
		onProgress := func(done, totalChunks int, partial string) {
			frac := float64(langDone) + float64(done)/float64(totalChunks)
			job.SetProgress(extractionShare + int(translationShare*frac/float64(total)))
		}

		results, ok := w.Sched.TranslateAll(ctx, chunks, job.SourceLang, lang, onProgress, nil)
		if !ok {
			job.AddResult(LanguageResult{
				Lang:   lang,
				Status: LangError,
				Err:    "translation aborted",
			})
			continue
		}

		joined := JoinResults(chunks, results)
		note := ""
		if n := CountFallbacks(results); n > 0 {
			note = fmt.Sprintf("%d of %d segments used fallback text", n, len(results))
		}

		body := assemble.DocumentBody(joined, job.FileName, lang, job.ID, time.Now())
		docID, err := w.Docs.Materialize(body, job.FileName, lang)
		if err != nil {
			log.Error("materialize failed", "lang", lang, "error", err)
			job.AddResult(LanguageResult{
				Lang:   lang,
				Status: LangError,
				Err:    fmt.Sprintf("materialize: %s", err),
			})
			continue
		}

		job.AddResult(LanguageResult{
			Lang:       lang,
			Status:     LangCompleted,
			Text:       joined,
			DocumentID: docID,
			Note:       note,
		})
		log.Info("language completed", "lang", lang, "fallback_note", note != "")
	}

	job.SetProgress(100)
	job.Complete()
	log.Info("job completed", "status", job.Status())
}
