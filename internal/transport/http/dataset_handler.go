package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"retailpulse/internal/config"
	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/exporter"
	"retailpulse/internal/middleware"
	"retailpulse/internal/services"
)

// List pagination bounds.
const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// DatasetHandler handles dataset lifecycle requests with RFC 7807 errors.
type DatasetHandler struct {
	datasets       DatasetServiceInterface
	insights       InsightServiceInterface
	exporter       MetricsExporter
	query          *middleware.QueryParamValidator
	validate       *middleware.ValidationMiddleware
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
	logger         *slog.Logger
}

// uploadRequest is the validated shape of a file upload.
type uploadRequest struct {
	Filename string `json:"filename" validate:"required,filename"`
}

// NewDatasetHandler creates a dataset handler.
func NewDatasetHandler(
	datasets DatasetServiceInterface,
	insights InsightServiceInterface,
	metricsExporter MetricsExporter,
	errorHandler *apierrors.ErrorHandler,
	maxUploadBytes int64,
	logger *slog.Logger,
) *DatasetHandler {
	return &DatasetHandler{
		datasets:       datasets,
		insights:       insights,
		exporter:       metricsExporter,
		query:          middleware.NewQueryParamValidator(logger, errorHandler),
		validate:       middleware.NewValidationMiddleware(logger, errorHandler),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "dataset_handler")),
	}
}

// Routes returns the dataset routes.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.With(middleware.ContentTypeValidator("multipart/form-data")).
		Post("/upload", h.Upload)
	r.Get("/", h.List)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Get("/metrics", h.Metrics)
		r.Get("/insights", h.Insights)
		r.Get("/export", h.Export)
	})

	return r
}

// DatasetCtx rejects malformed dataset ids before they reach a handler.
func (h *DatasetHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := uuid.Parse(chi.URLParam(r, "id")); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "Dataset id must be a UUID"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Upload handles POST /upload: a multipart file, or the built-in sample
// dataset when use_sample=true.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	useSample, ok := h.query.ValidateBool(w, r, "use_sample", false)
	if !ok {
		return
	}

	var (
		result *services.UploadResult
		err    error
	)
	if useSample {
		result, err = h.datasets.UploadSample(r.Context())
	} else {
		content, filename, readErr := h.readUpload(r)
		if readErr != nil {
			h.errorHandler.HandleError(w, r, readErr)
			return
		}
		if vErr := h.validate.ValidateStruct(uploadRequest{Filename: filename}); vErr != nil {
			h.errorHandler.HandleError(w, r, vErr)
			return
		}
		result, err = h.datasets.Upload(r.Context(), content, filename)
	}
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "upload completed",
		slog.String("dataset_id", result.DatasetID),
		slog.String("filename", result.Filename),
		slog.Int("cleaned_rows", result.CleanedRows),
	)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

// readUpload extracts the multipart file, enforcing the size limit.
func (h *DatasetHandler) readUpload(r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(config.UploadMemoryBuffer); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, "", apierrors.ErrPayloadTooLarge
		}
		return nil, "", apierrors.ErrValidation("file", "Request body must be multipart/form-data")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, "", apierrors.ErrPayloadTooLarge
		}
		return nil, "", apierrors.ErrValidation("file", "Multipart field 'file' is required")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, "", apierrors.ErrPayloadTooLarge
		}
		return nil, "", apierrors.InvalidRequestWithError(err)
	}

	return content, header.Filename, nil
}

// List handles GET / with skip/limit pagination.
func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, ok := h.query.ValidateInt(w, r, "skip", 0, 1<<30, 0)
	if !ok {
		return
	}
	limit, ok := h.query.ValidateInt(w, r, "limit", 1, maxPageLimit, defaultPageLimit)
	if !ok {
		return
	}

	datasets, total, err := h.datasets.List(r.Context(), skip, limit)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"datasets": datasets,
			"total":    total,
			"skip":     skip,
			"limit":    limit,
		},
	})
}

// Get handles GET /{id}.
func (h *DatasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	dataset, err := h.datasets.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   dataset,
	})
}

// Delete handles DELETE /{id}; metrics and insights cascade.
func (h *DatasetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.datasets.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset deleted", slog.String("dataset_id", id))
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   map[string]string{"id": id},
	})
}

// Metrics handles GET /{id}/metrics.
func (h *DatasetHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.datasets.Metrics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   metrics,
	})
}

// Insights handles GET /{id}/insights?refresh=bool.
func (h *DatasetHandler) Insights(w http.ResponseWriter, r *http.Request) {
	refresh, ok := h.query.ValidateBool(w, r, "refresh", false)
	if !ok {
		return
	}

	report, err := h.insights.Insights(r.Context(), chi.URLParam(r, "id"), refresh)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   report,
	})
}

// Export handles GET /{id}/export?format=csv|xlsx as a file download.
func (h *DatasetHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, ok := h.query.ValidateEnum(w, r, "format",
		[]string{exporter.FormatCSV, exporter.FormatXLSX}, exporter.FormatCSV)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	dataset, err := h.datasets.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	metrics, err := h.datasets.Metrics(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType(format))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="metrics_%s.%s"`, id, format))

	if format == exporter.FormatXLSX {
		err = h.exporter.WriteXLSX(w, dataset, metrics)
	} else {
		err = h.exporter.WriteCSV(w, dataset, metrics)
	}
	if err != nil {
		// Headers are gone; all we can do is log.
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("dataset_id", id),
			slog.String("format", format),
			slog.String("error", err.Error()),
		)
	}
}

// handleServiceError maps service sentinels onto API errors before handing
// off to the RFC 7807 error handler.
func (h *DatasetHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *services.FileValidationError

	switch {
	case errors.As(err, &validationErr):
		err = apierrors.FileValidationError(validationErr.Meta.Validation)
	case errors.Is(err, services.ErrDatasetNotFound):
		err = apierrors.ErrDatasetNotFound
	case errors.Is(err, services.ErrMetricsNotFound):
		err = apierrors.ErrMetricsNotFound
	case errors.Is(err, services.ErrUnsupportedFileType):
		err = apierrors.ErrUnsupportedFileType
	case errors.Is(err, services.ErrEmptyFile):
		err = apierrors.ErrValidation("file", "Uploaded file is empty")
	}

	h.errorHandler.HandleError(w, r, err)
}
