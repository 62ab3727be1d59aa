package api

import (
	"encoding/json"
	"net/http"

	"github.com/doctrans/doctrans/internal/engine"
	"github.com/doctrans/doctrans/internal/pipeline"
	"golang.org/x/text/language"
)

type translateBody struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	Session    string `json:"session,omitempty"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var body translateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.Text == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}
	if body.TargetLang == "" {
		jsonError(w, "target_lang is required", http.StatusBadRequest)
		return
	}
	if !validLang(body.TargetLang) {
		jsonError(w, "invalid target_lang: "+body.TargetLang, http.StatusBadRequest)
		return
	}
	if body.SourceLang != "" && body.SourceLang != engine.AutoDetect && !validLang(body.SourceLang) {
		jsonError(w, "invalid source_lang: "+body.SourceLang, http.StatusBadRequest)
		return
	}

	resp, err := s.texts.Translate(r.Context(), pipeline.TextRequest{
		Text:       body.Text,
		SourceLang: body.SourceLang,
		TargetLang: body.TargetLang,
		Session:    body.Session,
	})
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func validLang(code string) bool {
	_, err := language.Parse(code)
	return err == nil
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
