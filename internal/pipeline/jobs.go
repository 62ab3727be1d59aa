package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the state of a translation job.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusError      JobStatus = "error"
)

// LangStatus is the state of one target language within a job.
type LangStatus string

const (
	LangCompleted LangStatus = "completed"
	LangError     LangStatus = "error"
)

// LanguageResult is the outcome for one requested target language. Either
// the translation completed (possibly with a degraded-quality note when
// fallback text was substituted for some chunks) or it errored.
type LanguageResult struct {
	Lang       string     `json:"lang"`
	Status     LangStatus `json:"status"`
	Text       string     `json:"-"`
	DocumentID string     `json:"document_id,omitempty"`
	Note       string     `json:"note,omitempty"`
	Err        string     `json:"error,omitempty"`
}

// Job tracks one submitted translation: one source, one or more target
// languages. Only the pipeline executing the job mutates it; everyone else
// reads snapshots.
type Job struct {
	mu sync.Mutex

	ID          string
	SourceLang  string
	TargetLangs []string
	FileName    string
	FileSize    int64
	CreatedAt   time.Time

	status   JobStatus
	progress int
	errMsg   string
	results  map[string]LanguageResult

	fileData []byte

	done     chan struct{}
	doneOnce sync.Once
}

// NewJob creates a pending job. Duplicate target languages are removed,
// keeping first-seen order.
func NewJob(sourceLang string, targetLangs []string, fileName string, fileSize int64) *Job {
	seen := make(map[string]bool, len(targetLangs))
	langs := make([]string, 0, len(targetLangs))
	for _, l := range targetLangs {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		langs = append(langs, l)
	}
	return &Job{
		ID:          uuid.NewString(),
		SourceLang:  sourceLang,
		TargetLangs: langs,
		FileName:    fileName,
		FileSize:    fileSize,
		CreatedAt:   time.Now(),
		status:      StatusPending,
		results:     make(map[string]LanguageResult, len(langs)),
		done:        make(chan struct{}),
	}
}

// SetFileData stores the raw uploaded bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw uploaded bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetProcessing moves a pending job to processing.
func (j *Job) SetProcessing() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status == StatusPending {
		j.status = StatusProcessing
	}
}

// SetProgress raises the job's progress. Progress is monotonic: a lower
// value than the current one is ignored.
func (j *Job) SetProgress(p int) {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if p > j.progress {
		j.progress = p
	}
}

// Progress returns the current progress.
func (j *Job) Progress() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.progress
}

// Status returns the current status.
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// AddResult records the outcome for one target language.
func (j *Job) AddResult(r LanguageResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results[r.Lang] = r
}

// Result returns the recorded outcome for one target language.
func (j *Job) Result(lang string) (LanguageResult, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	r, ok := j.results[lang]
	return r, ok
}

// Complete moves the job to its completed terminal state. Any target
// language with no recorded result gets an error entry, so no language is
// silently dropped.
func (j *Job) Complete() {
	j.mu.Lock()
	if j.status == StatusProcessing {
		for _, lang := range j.TargetLangs {
			if _, ok := j.results[lang]; !ok {
				j.results[lang] = LanguageResult{
					Lang:   lang,
					Status: LangError,
					Err:    "no result produced",
				}
			}
		}
		j.status = StatusCompleted
		j.progress = 100
	}
	j.mu.Unlock()
	j.doneOnce.Do(func() { close(j.done) })
}

// Fail moves the job to its error terminal state. Missing language results
// are filled with the job-level error, keeping the snapshot coherent.
func (j *Job) Fail(msg string) {
	j.mu.Lock()
	if j.status == StatusPending || j.status == StatusProcessing {
		j.status = StatusError
		j.errMsg = msg
		for _, lang := range j.TargetLangs {
			if _, ok := j.results[lang]; !ok {
				j.results[lang] = LanguageResult{
					Lang:   lang,
					Status: LangError,
					Err:    msg,
				}
			}
		}
	}
	j.mu.Unlock()
	j.doneOnce.Do(func() { close(j.done) })
}

// Done is closed exactly once, when the job reaches a terminal state.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string           `json:"task_id"`
	Status      JobStatus        `json:"status"`
	Progress    int              `json:"progress"`
	SourceLang  string           `json:"source_lang"`
	TargetLangs []string         `json:"target_langs"`
	FileName    string           `json:"file_name,omitempty"`
	FileSize    int64            `json:"file_size,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	Error       string           `json:"error,omitempty"`
	Results     []LanguageResult `json:"results"`
}

// Snapshot returns a coherent copy of the job state, with results ordered by
// the requested target languages.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	results := make([]LanguageResult, 0, len(j.TargetLangs))
	for _, lang := range j.TargetLangs {
		if r, ok := j.results[lang]; ok {
			results = append(results, r)
		}
	}
	return JobSnapshot{
		ID:          j.ID,
		Status:      j.status,
		Progress:    j.progress,
		SourceLang:  j.SourceLang,
		TargetLangs: append([]string(nil), j.TargetLangs...),
		FileName:    j.FileName,
		FileSize:    j.FileSize,
		CreatedAt:   j.CreatedAt,
		Error:       j.errMsg,
		Results:     results,
	}
}
