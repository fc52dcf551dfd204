package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/neu-csye6225/webapp/internal/metrics"
	"github.com/neu-csye6225/webapp/internal/model"
	"github.com/neu-csye6225/webapp/internal/pkg/httputils"
	"github.com/neu-csye6225/webapp/internal/service"
)

const (
	// multipartOverhead is allowed on top of the file size for boundaries and headers.
	multipartOverhead = 1 << 20
	downloadURLTTL    = 15 * time.Minute
)

type FileResponse struct {
	ID         string `json:"id"`
	FileName   string `json:"file_name"`
	URL        string `json:"url"`
	UploadDate string `json:"upload_date"`
}

type DownloadResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

func newFileResponse(file *model.FileMetadata) FileResponse {
	return FileResponse{
		ID:         file.ID.String(),
		FileName:   file.OriginalName,
		URL:        file.Locator,
		UploadDate: file.CreatedAt.Format(time.DateOnly),
	}
}

type FileHandler struct {
	files       service.FileService
	metrics     metrics.Instrumentation
	log         zerolog.Logger
	maxFileSize int64
}

func NewFileHandler(files service.FileService, inst metrics.Instrumentation, log zerolog.Logger, maxFileSize int64) *FileHandler {
	return &FileHandler{
		files:       files,
		metrics:     inst,
		log:         log.With().Str("component", "file_handler").Logger(),
		maxFileSize: maxFileSize,
	}
}

func (h *FileHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/v1/file", h.uploadFile).Methods(http.MethodPost)
	router.HandleFunc("/v1/file", h.withoutID("file_get_all")).Methods(http.MethodGet)
	router.HandleFunc("/v1/file", h.withoutID("file_delete_all")).Methods(http.MethodDelete)
	router.HandleFunc("/v1/file", h.methodNotAllowed)

	router.HandleFunc("/v1/file/{id}", h.getFile).Methods(http.MethodGet)
	router.HandleFunc("/v1/file/{id}", h.deleteFile).Methods(http.MethodDelete)
	router.HandleFunc("/v1/file/{id}", h.methodNotAllowed)

	router.HandleFunc("/v1/file/{id}/download", h.downloadFile).Methods(http.MethodGet)
	router.HandleFunc("/v1/file/{id}/download", h.methodNotAllowed)
}

// api times fn as api.<name> and counts the call.
func (h *FileHandler) api(name string, fn func()) {
	h.metrics.Count(metrics.API(name + ".count"))
	_ = metrics.Time(h.metrics, metrics.API(name), func() error {
		fn()
		return nil
	})
}

// @Summary Upload a file
// @Description Stores the file in the bucket and records its metadata
// @Tags file
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 201 {object} FileResponse
// @Failure 400 {object} httputils.ErrorResponse
// @Failure 413 {object} httputils.ErrorResponse
// @Failure 500 {object} httputils.ErrorResponse
// @Failure 503 {object} httputils.ErrorResponse
// @Router /v1/file [post]
func (h *FileHandler) uploadFile(w http.ResponseWriter, r *http.Request) {
	h.api("file_upload", func() {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+multipartOverhead)

		part, header, err := r.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.tooLarge(w)
				return
			}
			h.log.Warn().Err(err).Msg("upload without a file part")
			httputils.ResponseError(w, http.StatusBadRequest, "File is required")
			return
		}
		defer part.Close()

		h.log.Info().Str("file_name", header.Filename).Msg("received file upload request")

		// one byte past the limit is enough to reject the upload
		payload, err := io.ReadAll(io.LimitReader(part, h.maxFileSize+1))
		if err != nil {
			h.log.Error().Err(err).Msg("failed to read upload")
			httputils.ResponseError(w, http.StatusBadRequest, "Failed to read file")
			return
		}

		file, err := h.files.Upload(r.Context(), payload, header.Filename, header.Header.Get("Content-Type"))
		if err != nil {
			h.writeError(w, err)
			return
		}

		httputils.ResponseJSON(w, http.StatusCreated, newFileResponse(file))
	})
}

// @Summary Get file metadata
// @Tags file
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} FileResponse
// @Failure 400 {object} httputils.ErrorResponse
// @Failure 404
// @Failure 503 {object} httputils.ErrorResponse
// @Router /v1/file/{id} [get]
func (h *FileHandler) getFile(w http.ResponseWriter, r *http.Request) {
	h.api("file_get", func() {
		id, ok := h.parseID(w, r)
		if !ok {
			return
		}

		file, err := h.files.Get(r.Context(), id)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if file == nil {
			httputils.ResponseStatus(w, http.StatusNotFound)
			return
		}

		httputils.ResponseJSON(w, http.StatusOK, newFileResponse(file))
	})
}

// @Summary Delete a file
// @Description Removes the object from the bucket, then its metadata
// @Tags file
// @Param id path string true "File ID"
// @Success 204
// @Failure 400 {object} httputils.ErrorResponse
// @Failure 404
// @Failure 500 {object} httputils.ErrorResponse
// @Failure 503 {object} httputils.ErrorResponse
// @Router /v1/file/{id} [delete]
func (h *FileHandler) deleteFile(w http.ResponseWriter, r *http.Request) {
	h.api("file_delete", func() {
		id, ok := h.parseID(w, r)
		if !ok {
			return
		}

		if err := h.files.Delete(r.Context(), id); err != nil {
			h.writeError(w, err)
			return
		}

		httputils.ResponseStatus(w, http.StatusNoContent)
	})
}

// @Summary Get a temporary download URL
// @Tags file
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} DownloadResponse
// @Failure 404
// @Router /v1/file/{id}/download [get]
func (h *FileHandler) downloadFile(w http.ResponseWriter, r *http.Request) {
	h.api("file_download", func() {
		id, ok := h.parseID(w, r)
		if !ok {
			return
		}

		url, err := h.files.DownloadURL(r.Context(), id, downloadURLTTL)
		if err != nil {
			h.writeError(w, err)
			return
		}

		httputils.ResponseJSON(w, http.StatusOK, DownloadResponse{
			URL:       url,
			ExpiresIn: int(downloadURLTTL.Seconds()),
		})
	})
}

func (h *FileHandler) withoutID(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.log.Warn().Str("method", r.Method).Msg("file id is required")
		h.metrics.Count(metrics.API(name + ".count"))
		httputils.ResponseStatus(w, http.StatusBadRequest)
	}
}

func (h *FileHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.log.Warn().Str("method", r.Method).Str("path", r.URL.Path).Msg("method not allowed")
	httputils.ResponseStatus(w, http.StatusMethodNotAllowed)
}

func (h *FileHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "Invalid file id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *FileHandler) tooLarge(w http.ResponseWriter) {
	httputils.ResponseError(w, http.StatusRequestEntityTooLarge,
		fmt.Sprintf("File size exceeds the maximum allowed limit of %d MB", h.maxFileSize/1024/1024))
}

func (h *FileHandler) writeError(w http.ResponseWriter, err error) {
	switch service.KindOf(err) {
	case service.KindValidation:
		switch {
		case errors.Is(err, service.ErrPayloadTooLarge):
			h.tooLarge(w)
		case errors.Is(err, service.ErrEmptyPayload):
			httputils.ResponseError(w, http.StatusBadRequest, "File cannot be empty")
		case errors.Is(err, service.ErrUnsupportedContentType):
			httputils.ResponseError(w, http.StatusBadRequest, "File type not supported")
		default:
			httputils.ResponseError(w, http.StatusBadRequest, err.Error())
		}
	case service.KindNotFound:
		httputils.ResponseStatus(w, http.StatusNotFound)
	case service.KindObjectStore:
		httputils.ResponseError(w, http.StatusInternalServerError, "S3 service error")
	case service.KindMetadataStore:
		httputils.ResponseError(w, http.StatusServiceUnavailable, "Service temporarily unavailable. Database connection issue.")
	default:
		h.log.Error().Err(err).Msg("unexpected error")
		httputils.ResponseError(w, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
