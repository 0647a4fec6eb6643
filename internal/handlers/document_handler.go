package handlers

import (
	"io"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
)

// maxUploadSize caps PDF uploads at 50 MB.
const maxUploadSize = 50 << 20

// DocumentHandler serves the ingestion endpoints.
type DocumentHandler struct {
	documentService interfaces.DocumentService
	trainingPDF     string
	logger          arbor.ILogger
}

// NewDocumentHandler creates a document handler. trainingPDF names the
// PDF served by the dedicated training endpoint.
func NewDocumentHandler(documentService interfaces.DocumentService, trainingPDF string, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		trainingPDF:     trainingPDF,
		logger:          logger,
	}
}

// HandleUpload accepts a multipart PDF upload, saves it into the PDF
// directory and ingests it.
func (h *DocumentHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing 'file' form field: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "failed to read upload: "+err.Error())
		return
	}

	summary, err := h.documentService.IngestBytes(r.Context(), header.Filename, data)
	if err != nil {
		h.logger.Warn().Str("filename", header.Filename).Err(err).Msg("Upload ingestion failed")
		WriteServiceError(w, err)
		return
	}

	h.logger.Info().Str("filename", header.Filename).Int("chunks", summary.Chunks).Msg("PDF uploaded and ingested")
	WriteJSON(w, http.StatusOK, summary)
}

// HandleIndexAll ingests every PDF in the configured directory.
func (h *DocumentHandler) HandleIndexAll(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	summary, err := h.documentService.IngestDirectory(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}

// HandleTrain ingests the configured training PDF.
func (h *DocumentHandler) HandleTrain(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	summary, err := h.documentService.IngestNamed(r.Context(), h.trainingPDF)
	if err != nil {
		h.logger.Warn().Str("filename", h.trainingPDF).Err(err).Msg("Training ingestion failed")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}

// HandleStats reports registry and index counts.
func (h *DocumentHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	stats, err := h.documentService.Stats(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}
