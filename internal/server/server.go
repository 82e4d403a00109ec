// Package server exposes the authoring API: document storage, validation
// and SCORM export, plus an export progress feed.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/courseforge/courseforge/internal/course"
	"github.com/courseforge/courseforge/internal/export"
	"github.com/courseforge/courseforge/internal/questionbank"
	"github.com/courseforge/courseforge/internal/scorm"
)

// Server holds the HTTP handler dependencies.
type Server struct {
	store course.Store
	svc   *export.Service
	feed  *export.Feed
}

// New creates a Server. feed may be nil if no progress streaming is wanted.
func New(store course.Store, svc *export.Service, feed *export.Feed) *Server {
	return &Server{store: store, svc: svc, feed: feed}
}

// Routes builds the HTTP mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", handleReadyz)
	mux.HandleFunc("PUT /api/courses/{id}", s.handleSaveCourse)
	mux.HandleFunc("POST /api/validate", s.handleValidate)
	mux.HandleFunc("POST /api/courses/{id}/export", s.handleExport)
	mux.HandleFunc("POST /api/courses/{id}/questionbank", s.handleImportQuestions)
	if s.feed != nil {
		mux.HandleFunc("GET /api/exports/{jobID}/events", s.handleExportEvents)
	}
	return mux
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReadyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleSaveCourse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	doc, ok := decodeDocument(w, r)
	if !ok {
		return
	}
	if err := s.store.SaveCourse(r.Context(), id, doc); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// handleValidate returns the complete issue list for a raw document in one
// response, for the editing UI to render all defects at once.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeDocument(w, r)
	if !ok {
		return
	}

	issues := s.svc.ValidateDocument(doc)
	if len(issues) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"valid":  false,
			"issues": issues,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	result := s.svc.ExportCourse(r.Context(), id)
	switch {
	case result.Issues != nil:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"jobId":  result.JobID,
			"valid":  false,
			"issues": result.Issues,
		})
	case result.Err != nil:
		status := http.StatusBadRequest
		var exportErr *scorm.ExportError
		if errors.As(result.Err, &exportErr) && exportErr.Reason == scorm.FailResourceExhausted {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, map[string]any{
			"jobId": result.JobID,
			"error": result.Err.Error(),
		})
	default:
		pkg := result.Package
		writeJSON(w, http.StatusOK, map[string]any{
			"jobId":              result.JobID,
			"identifier":         pkg.Identifier,
			"estimatedSizeBytes": pkg.EstimatedSizeBytes,
			"files":              pkg.Manifest.Files,
			"contract":           pkg.Contract,
		})
	}
}

// handleImportQuestions appends an mcq template built from an uploaded xlsx
// question bank to the stored course document. The body is the workbook
// itself; the new template takes the next free order slot.
func (s *Server) handleImportQuestions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	questions, err := questionbank.ParseWorkbook(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parsing question bank: %v", err))
		return
	}

	stored, err := s.store.GetCourse(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if stored.Document == nil {
		// A document stored as JSON null round-trips to a nil map.
		stored.Document = map[string]any{}
	}

	templates, _ := stored.Document["templates"].([]any)
	order := len(templates)
	tpl := questionbank.MCQTemplate(fmt.Sprintf("qbank_%d", order), "Imported Quiz", order, questions)

	raw, err := templateToDocument(tpl)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	stored.Document["templates"] = append(templates, raw)

	if err := s.store.SaveCourse(r.Context(), id, stored.Document); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":        id,
		"template":  tpl.ID,
		"questions": len(questions),
	})
}

// templateToDocument converts a typed template back to the loose document
// shape the store holds.
func templateToDocument(tpl course.Template) (map[string]any, error) {
	buf, err := json.Marshal(tpl)
	if err != nil {
		return nil, fmt.Errorf("encoding template: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(buf, &raw); err != nil {
		return nil, fmt.Errorf("decoding template: %w", err)
	}
	return raw, nil
}

// handleExportEvents streams export progress events for one job over a
// websocket until the client disconnects.
func (s *Server) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("jobID")

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	events, cancel := s.feed.Subscribe(jobID)
	defer cancel()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			writeCtx, cancelWrite := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, ev)
			cancelWrite()
			if err != nil {
				return
			}
		}
	}
}

func decodeDocument(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON document: %v", err))
		return nil, false
	}
	return doc, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
