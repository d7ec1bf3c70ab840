// Package api exposes the assistant over HTTP: query answering, voice
// transcription, and document management.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Jackiech6/voice-rag/internal/answer"
	"github.com/Jackiech6/voice-rag/internal/ingest"
	"github.com/Jackiech6/voice-rag/internal/storage"
	"github.com/Jackiech6/voice-rag/internal/transcribe"
)

const (
	maxRequestBodySize = 1 << 20  // 1MB
	maxUploadSize      = 50 << 20 // 50MB
)

// Deps are the services the HTTP layer dispatches into.
type Deps struct {
	Answer     *answer.Service
	Transcribe *transcribe.Service
	Pipeline   *ingest.Pipeline
	Store      *storage.Store
	// UploadDir receives uploaded files before ingestion. Empty means
	// the system temp directory.
	UploadDir string
}

// NewHandler returns the REST API router. When token is non-empty every
// route except /health requires a matching bearer token.
func NewHandler(deps Deps, token string) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		if token != "" {
			r.Use(BearerAuth(token))
		}
		r.Post("/query", handleQuery(deps.Answer))
		r.Post("/transcribe", handleTranscribe(deps.Transcribe))
		r.Post("/documents/upload", handleUpload(deps.Pipeline, deps.UploadDir))
		r.Get("/documents", handleListDocuments(deps.Store))
		r.Delete("/documents/{id}", handleDeleteDocument(deps.Pipeline))
	})

	return r
}

// requestID tags each request with a correlation id, echoed in the
// X-Request-ID response header and attached to handler log lines.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type queryRequest struct {
	Question string `json:"question"`
}

type queryResponse struct {
	State     answer.State      `json:"state"`
	Answer    string            `json:"answer"`
	Citations []answer.Citation `json:"citations"`
	Chunks    []chunkSummary    `json:"chunks"`
}

type chunkSummary struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Page  int     `json:"page"`
	Score float32 `json:"score"`
}

func handleQuery(svc *answer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if strings.TrimSpace(req.Question) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "question is required")
			return
		}

		result, err := svc.Query(r.Context(), req.Question)
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "answering query: %v", err)
			return
		}

		resp := queryResponse{
			State:     result.State,
			Answer:    result.Answer,
			Citations: result.Citations,
			Chunks:    make([]chunkSummary, 0, len(result.Chunks)),
		}
		if resp.Citations == nil {
			resp.Citations = []answer.Citation{}
		}
		for _, c := range result.Chunks {
			resp.Chunks = append(resp.Chunks, chunkSummary{ID: c.ID, Title: c.Title, Page: c.Page, Score: c.Score})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleTranscribe(svc *transcribe.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		defer r.Body.Close()

		file, header, err := r.FormFile("file")
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "missing audio file: %v", err)
			return
		}
		defer file.Close()

		audio, err := io.ReadAll(file)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "reading audio: %v", err)
			return
		}

		text, err := svc.Transcribe(r.Context(), header.Filename, audio, r.FormValue("language"))
		if err != nil {
			if errors.Is(err, transcribe.ErrEmptyAudio) {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "audio file is empty")
				return
			}
			httpError(w, http.StatusBadGateway, "api_error", "transcription failed: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"text": text})
	}
}

func handleUpload(pipeline *ingest.Pipeline, uploadDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		defer r.Body.Close()

		file, header, err := r.FormFile("file")
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "missing file: %v", err)
			return
		}
		defer file.Close()

		if uploadDir == "" {
			uploadDir = os.TempDir()
		}
		tmpPath := filepath.Join(uploadDir, uuid.NewString()+strings.ToLower(filepath.Ext(header.Filename)))
		out, err := os.Create(tmpPath)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "server_error", "saving upload: %v", err)
			return
		}
		if _, err := io.Copy(out, file); err != nil {
			out.Close()
			os.Remove(tmpPath)
			httpError(w, http.StatusInternalServerError, "server_error", "saving upload: %v", err)
			return
		}
		if err := out.Close(); err != nil {
			os.Remove(tmpPath)
			httpError(w, http.StatusInternalServerError, "server_error", "saving upload: %v", err)
			return
		}
		defer os.Remove(tmpPath)

		result, err := pipeline.Ingest(r.Context(), tmpPath, ingest.Options{
			CustomTitle:  r.FormValue("title"),
			OriginalName: header.Filename,
		})
		if err != nil {
			writeIngestError(w, err)
			return
		}

		status := http.StatusCreated
		if result.AlreadyExists {
			status = http.StatusOK
		}
		writeJSON(w, status, result)
	}
}

func handleListDocuments(store *storage.Store) http.HandlerFunc {
	type documentSummary struct {
		ID         int64  `json:"id"`
		Title      string `json:"title"`
		FilePath   string `json:"file_path"`
		CreatedAt  string `json:"created_at"`
		ChunkCount int    `json:"chunk_count"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := store.ListDocuments()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "server_error", "listing documents: %v", err)
			return
		}

		summaries := make([]documentSummary, 0, len(docs))
		for _, d := range docs {
			summaries = append(summaries, documentSummary{
				ID:         d.ID,
				Title:      d.Title,
				FilePath:   d.FilePath,
				CreatedAt:  d.CreatedAt.Format(time.RFC3339),
				ChunkCount: d.ChunkCount,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"documents": summaries})
	}
}

func handleDeleteDocument(pipeline *ingest.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid document id")
			return
		}

		result, err := pipeline.Delete(r.Context(), id)
		if err != nil {
			writeIngestError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// writeIngestError maps pipeline failure codes to HTTP statuses; anything
// without a code is a server error.
func writeIngestError(w http.ResponseWriter, err error) {
	code := ingest.CodeOf(err)
	switch code {
	case ingest.CodeFileNotFound, ingest.CodeDocumentNotFound:
		httpError(w, http.StatusNotFound, string(code), "%v", err)
	case ingest.CodeUnsupportedFileType:
		httpError(w, http.StatusBadRequest, string(code), "%v", err)
	case ingest.CodeFileNotReadable, ingest.CodeProcessingError:
		httpError(w, http.StatusUnprocessableEntity, string(code), "%v", err)
	default:
		slog.Error("unclassified pipeline error", "error", err)
		httpError(w, http.StatusInternalServerError, "server_error", "%v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
