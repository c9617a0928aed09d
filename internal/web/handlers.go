package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/azraattar/deduplication-system/internal/dedupe"
	"github.com/azraattar/deduplication-system/internal/export"
	"github.com/azraattar/deduplication-system/internal/pipeline"
)

// maxUploadBytes caps dataset uploads at 256 MB.
const maxUploadBytes = 256 << 20

// UploadResponse identifies a stored dataset.
type UploadResponse struct {
	UploadID string `json:"upload_id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size_bytes"`
}

// RunRequest selects an uploaded dataset to deduplicate.
type RunRequest struct {
	UploadID string `json:"upload_id"`
}

// ResultsResponse is the most recent run with a preview of its pairs.
type ResultsResponse struct {
	Summary *pipeline.Summary  `json:"summary"`
	Pairs   []dedupe.Candidate `json:"pairs"`
}

// Health reports liveness.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Upload stores a multipart CSV under a fresh id.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("missing file field: %v", err))
		return
	}
	defer file.Close()

	uploadID := uuid.NewString()
	path := filepath.Join(s.config.UploadDir, uploadID+".csv")

	dst, err := os.Create(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(path)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	s.mu.Lock()
	s.uploads[uploadID] = path
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, UploadResponse{
		UploadID: uploadID,
		Filename: header.Filename,
		Size:     size,
	})
}

// Run executes the pipeline over a previously uploaded dataset. The run is
// synchronous; the response is the run summary.
func (s *Server) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	inputPath, ok := s.uploads[req.UploadID]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown upload_id %q", req.UploadID))
		return
	}

	summary, err := s.driver.Run(inputPath, s.config.OutputPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("pipeline failed: %v", err))
		return
	}

	s.mu.Lock()
	s.last = summary
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, summary)
}

// Results returns the latest run summary with the top pairs read back from
// the artifact.
func (s *Server) Results(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	summary := s.last
	s.mu.Unlock()

	if summary == nil {
		writeError(w, http.StatusNotFound, "no run has completed yet")
		return
	}

	pairs, err := export.ReadCSV(s.config.OutputPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read artifact: %v", err))
		return
	}
	if len(pairs) > s.config.TopPairs {
		pairs = pairs[:s.config.TopPairs]
	}

	writeJSON(w, http.StatusOK, ResultsResponse{Summary: summary, Pairs: pairs})
}

// Artifact serves the full predictions CSV for download.
func (s *Server) Artifact(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	summary := s.last
	s.mu.Unlock()

	if summary == nil {
		writeError(w, http.StatusNotFound, "no run has completed yet")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="duplicates.csv"`)
	http.ServeFile(w, r, s.config.OutputPath)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
