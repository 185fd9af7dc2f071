package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/tsplhq/registration-api/internal/ingest"
)

// maxUploadBytes caps the size of an uploaded CSV file.
const maxUploadBytes = 10 << 20 // 10 MiB

// IngestionSubmitter enqueues CSV ingestion jobs.
type IngestionSubmitter interface {
	SubmitIngestion(job ingest.Job) error
}

// UploadHandler handles registration CSV upload requests. Uploads are
// processed asynchronously on the single-slot ingestion pipeline; the
// handler only acknowledges acceptance.
type UploadHandler struct {
	jobs IngestionSubmitter
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(jobs IngestionSubmitter) *UploadHandler {
	return &UploadHandler{jobs: jobs}
}

// Upload handles POST /seasons/{seasonID}/uploads. It expects a multipart
// form with a required "file" part (the registrations CSV) and an optional
// "points_file" part (the reg-ID to points override CSV).
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	seasonID, ok := getPathUUID(r, "seasonID")
	if !ok {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid season ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	data, err := readFormFile(r, "file")
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Missing or unreadable file")
		return
	}

	// The points file is optional; absence is not an error.
	pointsData, err := readFormFile(r, "points_file")
	if err != nil {
		pointsData = nil
	}

	job := ingest.Job{
		SeasonID:   seasonID,
		Data:       data,
		PointsData: pointsData,
	}
	if err := h.jobs.SubmitIngestion(job); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	slog.Info("ingestion job accepted",
		"season_id", seasonID,
		"bytes", len(data),
		"has_points", pointsData != nil)
	RespondWithJSON(w, r, http.StatusAccepted, JobAcceptedResponse{Status: "accepted"})
}

func readFormFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return io.ReadAll(file)
}
