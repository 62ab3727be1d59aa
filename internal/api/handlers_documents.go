package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/doctrans/doctrans/internal/assemble"
	"github.com/doctrans/doctrans/internal/authgate"
	"github.com/doctrans/doctrans/internal/engine"
	"github.com/doctrans/doctrans/internal/extract"
	"github.com/doctrans/doctrans/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSubmitDocument(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	// The approval gate decides whether this session may start jobs.
	decision, err := s.gate.Check(r.Context(), r.FormValue("session"))
	if err != nil {
		s.log.Warn("session check failed", "error", err)
		jsonError(w, "session check unavailable", http.StatusServiceUnavailable)
		return
	}
	if decision != authgate.Allowed {
		jsonError(w, fmt.Sprintf("session not allowed: %s", decision), http.StatusForbidden)
		return
	}

	targetLangs := splitLangs(r.FormValue("target_langs"))
	if len(targetLangs) == 0 {
		jsonError(w, "target_langs is required", http.StatusBadRequest)
		return
	}
	for _, lang := range targetLangs {
		if !validLang(lang) {
			jsonError(w, "invalid target lang: "+lang, http.StatusBadRequest)
			return
		}
	}
	sourceLang := r.FormValue("source_lang")
	if sourceLang == "" {
		sourceLang = engine.AutoDetect
	}
	if sourceLang != engine.AutoDetect && !validLang(sourceLang) {
		jsonError(w, "invalid source_lang: "+sourceLang, http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !extract.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	job := pipeline.NewJob(sourceLang, targetLangs, filename, int64(len(data)))
	job.SetFileData(data)
	if err := s.queue.Add(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"task_id":  job.ID,
		"status":   job.Status(),
		"poll_url": fmt.Sprintf("/api/documents/%s/status", job.ID),
	})
}

func (s *Server) handleDocumentStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	job := s.store.Get(taskID)
	if job == nil {
		jsonError(w, "task not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleDocumentDownload(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		jsonError(w, "lang is required", http.StatusBadRequest)
		return
	}

	job := s.store.Get(taskID)
	if job == nil {
		jsonError(w, "task not found", http.StatusNotFound)
		return
	}
	result, ok := job.Result(lang)
	if !ok {
		jsonError(w, "no result for lang "+lang, http.StatusNotFound)
		return
	}
	if result.Status != pipeline.LangCompleted || result.DocumentID == "" {
		jsonError(w, fmt.Sprintf("lang %s is not completed", lang), http.StatusConflict)
		return
	}

	artifact, ok := s.docs.Get(result.DocumentID)
	if !ok {
		jsonError(w, "document no longer available", http.StatusNotFound)
		return
	}

	name := assemble.DownloadName(artifact.OriginalName, lang)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", assemble.ContentDisposition(name))
	w.Write(artifact.Data)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	jobs := s.store.List()
	snaps := make([]pipeline.JobSnapshot, 0, len(jobs))
	for _, j := range jobs {
		snaps = append(snaps, j.Snapshot())
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"tasks": snaps})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	job := s.store.Get(taskID)
	if job == nil {
		jsonError(w, "task not found", http.StatusNotFound)
		return
	}
	for _, lang := range job.TargetLangs {
		if res, ok := job.Result(lang); ok && res.DocumentID != "" {
			s.docs.Delete(res.DocumentID)
		}
	}
	s.store.Delete(taskID)
	w.WriteHeader(http.StatusNoContent)
}

func splitLangs(raw string) []string {
	parts := strings.Split(raw, ",")
	langs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			langs = append(langs, p)
		}
	}
	return langs
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
