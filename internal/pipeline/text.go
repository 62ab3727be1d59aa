package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/doctrans/doctrans/internal/chunker"
)

// TextRequest is one direct text translation.
type TextRequest struct {
	Text       string
	SourceLang string
	TargetLang string
	// Session groups requests for supersession: a newer request in the same
	// session invalidates any older in-flight run. Empty means standalone.
	Session string
}

// TextResponse is the outcome of a direct text translation.
type TextResponse struct {
	TranslatedText string `json:"translated_text"`
	Chunks         int    `json:"chunks"`
	FallbackUsed   bool   `json:"fallback_used"`
	Superseded     bool   `json:"superseded,omitempty"`
}

// TextService runs the chunk/translate/assemble pipeline for direct text
// submissions. Per session it keeps a generation counter: when a newer
// request arrives, the older run notices at its next window boundary,
// abandons its remaining windows, and its results are discarded instead of
// clobbering the newer result.
type TextService struct {
	Sched        *Scheduler
	ChunkLimit   int
	MaxTextChars int
	Log          *slog.Logger

	mu   sync.Mutex
	gens map[string]uint64
	last map[string]TextResponse
}

func NewTextService(sched *Scheduler, chunkLimit, maxTextChars int, log *slog.Logger) *TextService {
	return &TextService{
		Sched:        sched,
		ChunkLimit:   chunkLimit,
		MaxTextChars: maxTextChars,
		Log:          log,
		gens:         make(map[string]uint64),
		last:         make(map[string]TextResponse),
	}
}

// Translate chunks the text, schedules it against the engine, and joins the
// results. A superseded run returns Superseded=true with no text.
func (s *TextService) Translate(ctx context.Context, req TextRequest) (TextResponse, error) {
	if req.Text == "" {
		return TextResponse{}, fmt.Errorf("text is required")
	}
	if req.TargetLang == "" {
		return TextResponse{}, fmt.Errorf("target_lang is required")
	}
	if s.MaxTextChars > 0 && utf8.RuneCountInString(req.Text) > s.MaxTextChars {
		return TextResponse{}, fmt.Errorf("text exceeds %d characters", s.MaxTextChars)
	}

	var stale func() bool
	var gen uint64
	if req.Session != "" {
		gen = s.nextGen(req.Session)
		stale = func() bool { return s.currentGen(req.Session) != gen }
	}

	chunks := chunker.Split(req.Text, s.ChunkLimit)
	if len(chunks) == 0 {
		return TextResponse{}, fmt.Errorf("no translatable content")
	}

	results, ok := s.Sched.TranslateAll(ctx, chunks, req.SourceLang, req.TargetLang, nil, stale)
	if !ok {
		if ctx.Err() != nil {
			return TextResponse{}, ctx.Err()
		}
		return TextResponse{Superseded: true}, nil
	}

	resp := TextResponse{
		TranslatedText: JoinResults(chunks, results),
		Chunks:         len(chunks),
		FallbackUsed:   CountFallbacks(results) > 0,
	}

	if req.Session != "" {
		s.mu.Lock()
		// A slower superseded run must not overwrite a newer result.
		if s.gens[req.Session] == gen {
			s.last[req.Session] = resp
		}
		s.mu.Unlock()
	}
	return resp, nil
}

// Last returns the most recent non-superseded result for a session.
func (s *TextService) Last(session string) (TextResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.last[session]
	return r, ok
}

func (s *TextService) nextGen(session string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[session]++
	return s.gens[session]
}

func (s *TextService) currentGen(session string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[session]
}
