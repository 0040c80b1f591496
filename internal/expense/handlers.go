package expense

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/expense-scanner/internal/extraction"
)

// maxUploadSize bounds multipart uploads (high-resolution phone photos)
const maxUploadSize = int64(50 << 20) // 50MB

// jsonError writes a JSON error payload with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON writes a JSON response body
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleDomains returns the enumerated model, category and currency sets
func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"models":        extraction.Models,
		"default_model": extraction.DefaultModel,
		"categories":    Categories,
		"currencies":    Currencies,
	})
}

// handleCreateSession creates a new empty session
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.service.CreateSession()
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

// session resolves the {id} path value to a registered session, writing
// the error response itself when the session doesn't exist
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := r.PathValue("id")
	if id == "" {
		jsonError(w, "Session ID required", http.StatusBadRequest)
		return nil, false
	}
	sess, err := s.service.GetSession(id)
	if err != nil {
		jsonError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

// handleGetSession returns the current session state
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// handleUploadFile handles file selection: the upload immediately triggers
// a submission to the extraction backend and blocks until it resolves
func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			errorMsg = "File is too large. Maximum size is 50MB."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		jsonError(w, "No file was selected. Please choose a file to upload.", http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > maxUploadSize {
		jsonError(w, "File is too large. Maximum size is 50MB.", http.StatusBadRequest)
		return
	}

	// A model part may accompany the file to switch models in one request
	if model := r.FormValue("model"); model != "" {
		if err := s.service.SelectModel(sess, model); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	doc := &Document{
		Filename:    header.Filename,
		ContentType: sniffContentType(header.Header.Get("Content-Type"), header.Filename),
		Data:        data,
		Size:        int64(len(data)),
		UploadedAt:  s.service.timeSource.Now(),
	}

	snap, err := s.service.SubmitDocument(r.Context(), sess, doc)
	if err != nil {
		if errors.Is(err, ErrStale) {
			// A reset or newer submission won the race; this result was
			// discarded and the session belongs to the winner
			jsonError(w, "Submission superseded", http.StatusConflict)
			return
		}
		jsonError(w, "Processing failed, please retry", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// sniffContentType falls back to the filename extension when the upload
// carried no usable content type. Generic clients label every file
// application/octet-stream, so that counts as missing too.
func sniffContentType(contentType, filename string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleEditFields applies a partial field edit
func (s *Server) handleEditFields(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var edits FieldEdits
	if err := json.NewDecoder(r.Body).Decode(&edits); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.service.EditFields(sess, edits); err != nil {
		switch {
		case errors.Is(err, ErrBusy):
			jsonError(w, "A submission is in flight", http.StatusConflict)
		default:
			jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		}
		return
	}

	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// handleSelectModel changes the session's model choice
func (s *Server) handleSelectModel(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Model string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.service.SelectModel(sess, req.Model); err != nil {
		if errors.Is(err, ErrBusy) {
			jsonError(w, "A submission is in flight", http.StatusConflict)
			return
		}
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// handleReset returns the session to its defaults
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	s.service.ResetSession(sess)
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// handleGetFile returns the originally uploaded document
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	doc, err := s.service.Document(sess)
	if err != nil {
		jsonError(w, "No document uploaded", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Write(doc.Data)
}

// handleGetPreview returns a PNG rendering of the uploaded document
func (s *Server) handleGetPreview(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	doc, err := s.service.Document(sess)
	if err != nil {
		jsonError(w, "No document uploaded", http.StatusNotFound)
		return
	}

	preview, err := extraction.RenderPreview(doc.Data, doc.ContentType)
	if err != nil {
		slog.Error("Error rendering preview", "session", sess.ID(), "error", err)
		jsonError(w, "Error rendering preview", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(preview)
}

// handleDeleteSession drops a session and its stored document
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		jsonError(w, "Session ID required", http.StatusBadRequest)
		return
	}
	if err := s.service.DeleteSession(id); err != nil {
		jsonError(w, "Session not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
