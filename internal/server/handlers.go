package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/MeKo-Tech/langid/internal/detector"
	"github.com/MeKo-Tech/langid/internal/report"
	"github.com/MeKo-Tech/langid/internal/version"
	"github.com/oklog/ulid/v2"
)

// error_type values reported to clients.
const (
	errTypeInvalidRequest = "invalid_request"
	errTypeEmptyQuery     = "empty_query"
	errTypeBodyTooLarge   = "body_too_large"
	errTypeNoReferences   = "no_reference_data"
	errTypeInternal       = "internal_error"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:    "healthy",
		Version:   version.Version,
		Time:      time.Now().UTC().Format(time.RFC3339),
		Languages: len(s.detector.Languages()),
	}

	writeJSON(w, http.StatusOK, response)
}

// languagesHandler lists the reference labels.
func (s *Server) languagesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	langs := s.detector.Languages()
	writeJSON(w, http.StatusOK, LanguagesResponse{Languages: langs, Count: len(langs)})
}

// detectHandler ranks the references against the request text. The body is
// either JSON ({"text": ..., "top": k}) or the raw text itself.
func (s *Server) detectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	req, err := decodeDetectRequest(r)
	if err != nil {
		detectRequestsTotal.WithLabelValues("http", "error").Inc()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorResponse(w, "Request body too large", errTypeBodyTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		s.writeErrorResponse(w, "Failed to parse request: "+err.Error(), errTypeInvalidRequest, http.StatusBadRequest)
		return
	}

	top := s.topK
	if req.Top != 0 {
		top = req.Top
	}
	if q := r.URL.Query().Get("top"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			s.writeErrorResponse(w, "Invalid top parameter: "+q, errTypeInvalidRequest, http.StatusBadRequest)
			return
		}
		top = n
	}
	if top < 0 {
		s.writeErrorResponse(w, "Invalid top value", errTypeInvalidRequest, http.StatusBadRequest)
		return
	}

	format := r.URL.Query().Get("format")
	if format != "" && !report.ValidFormat(format) {
		s.writeErrorResponse(w, "Unsupported format: "+format, errTypeInvalidRequest, http.StatusBadRequest)
		return
	}

	matches, err := s.detect(req.Text, "http")
	if err != nil {
		status, errType := classifyError(err)
		s.writeErrorResponse(w, err.Error(), errType, status)
		return
	}
	matches = detector.Top(matches, top)

	switch format {
	case report.FormatText, report.FormatCSV:
		out, err := report.Format(matches, format)
		if err != nil {
			s.writeErrorResponse(w, "Formatting failed", errTypeInternal, http.StatusInternalServerError)
			return
		}
		if format == report.FormatCSV {
			w.Header().Set("Content-Type", "text/csv")
		} else {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		}
		_, _ = io.WriteString(w, out)
	default:
		writeJSON(w, http.StatusOK, DetectResponse{
			Success:   true,
			RequestID: ulid.Make().String(),
			Language:  matches[0].Label,
			Matches:   matches,
		})
	}
}

// detect runs the detector and records metrics for one query.
func (s *Server) detect(text, source string) ([]detector.Match, error) {
	queryLengthBytes.Observe(float64(len(text)))

	start := time.Now()
	matches, err := s.detector.Detect(text)
	detectDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	if err != nil {
		detectRequestsTotal.WithLabelValues(source, "error").Inc()
		return nil, err
	}
	detectRequestsTotal.WithLabelValues(source, "success").Inc()
	detectionsTotal.WithLabelValues(matches[0].Label).Inc()
	return matches, nil
}

func decodeDetectRequest(r *http.Request) (DetectRequest, error) {
	var req DetectRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
		return req, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return req, err
	}
	req.Text = string(body)
	return req, nil
}

// classifyError maps detection errors to an HTTP status and error_type.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, detector.ErrEmptyQuery):
		return http.StatusBadRequest, errTypeEmptyQuery
	case errors.Is(err, detector.ErrNoReferenceData):
		return http.StatusServiceUnavailable, errTypeNoReferences
	default:
		return http.StatusInternalServerError, errTypeInternal
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// can't send another response
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message, errorType string, statusCode int) {
	writeJSON(w, statusCode, DetectResponse{
		Success:   false,
		Error:     message,
		ErrorType: errorType,
	})
}
