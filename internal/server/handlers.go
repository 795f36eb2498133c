package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"briefdeck/internal/classify"
	"briefdeck/internal/convert"
	"briefdeck/internal/core"
	"briefdeck/internal/normalize"
	"briefdeck/internal/store"
)

const (
	formField       = "document"
	maxJSONBody     = 20 << 20
	multipartMemory = 32 << 20
)

// Converter runs the conversion pipeline. *convert.Service implements it.
type Converter interface {
	ProcessDocument(ctx context.Context, name string, data []byte) (*convert.Preview, error)
	ConvertToPPTX(ctx context.Context, presentationID, html string) (*convert.Download, error)
}

// History lists past conversions. *store.Store implements it.
type History interface {
	ListConversions(limit int) ([]store.Conversion, error)
}

// HealthResponse is the /health body
type HealthResponse struct {
	Status string `json:"status"`
}

type processResponse struct {
	Success bool `json:"success"`
	*convert.Preview
}

type convertRequest struct {
	PresentationID presentationID `json:"presentationId"`
	HTML           string         `json:"html"`
}

type convertResponse struct {
	Success bool `json:"success"`
	*convert.Download
}

// presentationID accepts the id as a JSON string or number.
type presentationID string

func (p *presentationID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = presentationID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("presentationId must be a string or number")
	}
	*p = presentationID(n.String())
	return nil
}

type classifyRequest struct {
	Articles []core.Article `json:"articles"`
	Text     string         `json:"text"`
}

type classifyResponse struct {
	Classifications []core.Classification `json:"classifications"`
	Guidance        string                `json:"guidance"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Document to PPT Converter API"})
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleUpload accepts a document and reports what was received without processing it
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	name, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"message":  "File uploaded successfully",
		"filename": name,
		"size":     len(data),
	})
}

func (s *Server) handleProcessDocument(w http.ResponseWriter, r *http.Request) {
	name, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	preview, err := s.converter.ProcessDocument(r.Context(), name, data)
	if err != nil {
		s.respondPipelineError(w, "Failed to process document", err)
		return
	}
	s.respondJSON(w, http.StatusOK, processResponse{Success: true, Preview: preview})
}

func (s *Server) handleConvertToPPT(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.HTML) == "" {
		s.respondError(w, http.StatusBadRequest, "No HTML content provided")
		return
	}

	download, err := s.converter.ConvertToPPTX(r.Context(), string(req.PresentationID), req.HTML)
	if err != nil {
		s.respondPipelineError(w, "Failed to convert to PowerPoint", err)
		return
	}
	s.respondJSON(w, http.StatusOK, convertResponse{Success: true, Download: download})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	articles := req.Articles
	if len(articles) == 0 && strings.TrimSpace(req.Text) != "" {
		articles = classify.SplitArticles(req.Text)
	}
	if len(articles) == 0 {
		s.respondError(w, http.StatusBadRequest, "Provide articles or text to classify")
		return
	}

	classifications := s.classifier.ClassifyAll(articles)
	s.respondJSON(w, http.StatusOK, classifyResponse{
		Classifications: classifications,
		Guidance:        classify.Guidance(classifications),
	})
}

func (s *Server) handleListConversions(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondJSON(w, http.StatusOK, map[string]any{"conversions": []store.Conversion{}})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			s.respondError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	conversions, err := s.history.ListConversions(limit)
	if err != nil {
		s.log.Error("Failed to list conversions", "error", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to load conversions")
		return
	}
	if conversions == nil {
		conversions = []store.Conversion{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"conversions": conversions})
}

// readUpload reads the "document" multipart field. It writes the error response itself and
// reports false when the request cannot continue.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	if limit := s.config.MaxUploadBytes(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartMemory/32)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			s.respondError(w, http.StatusRequestEntityTooLarge, "File too large")
			return "", nil, false
		}
		s.respondError(w, http.StatusBadRequest, "No file uploaded")
		return "", nil, false
	}

	file, header, err := r.FormFile(formField)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "No file uploaded")
		return "", nil, false
	}
	defer file.Close()

	if limit := s.config.MaxUploadBytes(); limit > 0 && header.Size > limit {
		s.respondError(w, http.StatusRequestEntityTooLarge, "File too large")
		return "", nil, false
	}
	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Could not read uploaded file")
		return "", nil, false
	}
	return header.Filename, data, true
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// respondPipelineError maps input problems to 400 and everything else to 500
func (s *Server) respondPipelineError(w http.ResponseWriter, prefix string, err error) {
	switch {
	case errors.Is(err, convert.ErrInvalidInput), errors.Is(err, normalize.ErrNoSlides):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		s.log.Error(prefix, "error", err)
		s.respondError(w, http.StatusGatewayTimeout, prefix+": request timed out")
	default:
		s.log.Error(prefix, "error", err)
		s.respondError(w, http.StatusInternalServerError, prefix+": "+err.Error())
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes {"error": message}
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
