// Package uploads exposes the resume analysis HTTP surface: a multipart
// upload endpoint returning the full feedback, and a streaming variant that
// reports progress over SSE.
package uploads

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-feedback/internal/extract"
	"resume-feedback/internal/feedback"
	"resume-feedback/internal/shared/server/respond"
	"resume-feedback/internal/shared/storage/object"
	"resume-feedback/internal/shared/telemetry"
)

const (
	defaultMaxUploadBytes = 10 << 20
	uploadsNamespace      = "uploads"
	streamEventBuffer     = 32
)

var allowedContentTypes = map[string]struct{}{
	"application/pdf": {},
	"text/plain":      {},
}

// Analyzer runs the document to feedback pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, doc extract.Document, progress feedback.Publisher) (feedback.Feedback, error)
}

// Handler serves the analysis endpoints.
type Handler struct {
	Service  Analyzer
	Store    object.ObjectStore
	MaxBytes int64
}

// NewHandler wires the analysis handler. Store may be nil, disabling upload
// persistence.
func NewHandler(svc Analyzer, store object.ObjectStore, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &Handler{Service: svc, Store: store, MaxBytes: maxBytes}
}

// RegisterRoutes attaches the analysis endpoints to the group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resume/analyze", h.analyze)
	rg.POST("/resume/analyze/stream", h.analyzeStream)
}

func (h *Handler) analyze(c *gin.Context) {
	doc, ok := h.readDocument(c)
	if !ok {
		return
	}

	result, err := h.Service.Analyze(c.Request.Context(), doc, nil)
	if err != nil {
		writeAnalysisError(c, err)
		return
	}
	respond.OK(c, result)
}

// analyzeStream runs the same pipeline but emits progress events over SSE,
// ending with a result event carrying the complete feedback.
func (h *Handler) analyzeStream(c *gin.Context) {
	doc, ok := h.readDocument(c)
	if !ok {
		return
	}

	pub := feedback.NewChannelPublisher(streamEventBuffer)

	type outcome struct {
		result feedback.Feedback
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := h.Service.Analyze(c.Request.Context(), doc, pub)
		pub.Close()
		done <- outcome{result: result, err: err}
	}()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	for ev := range pub.Events() {
		c.SSEvent("progress", ev)
		c.Writer.Flush()
	}

	out := <-done
	if out.err != nil {
		c.SSEvent("error", gin.H{"message": analysisErrorMessage(out.err)})
		c.Writer.Flush()
		return
	}
	c.SSEvent("result", out.result)
	c.Writer.Flush()
}

// readDocument validates the multipart upload and persists it when a store
// is configured. A false return means the error response was already
// written.
func (h *Handler) readDocument(c *gin.Context) (extract.Document, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "upload exceeds size limit", nil)
			return extract.Document{}, false
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart field 'file' is required", nil)
		return extract.Document{}, false
	}
	defer file.Close()

	contentType := normalizeContentType(header.Header.Get("Content-Type"))
	if contentType != "" {
		if _, ok := allowedContentTypes[contentType]; !ok && contentType != "application/octet-stream" {
			respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_document", "only PDF and plain text resumes are accepted", nil)
			return extract.Document{}, false
		}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "upload exceeds size limit", nil)
			return extract.Document{}, false
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read upload", nil)
		return extract.Document{}, false
	}
	if len(data) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "uploaded file is empty", nil)
		return extract.Document{}, false
	}

	doc := extract.Document{
		Data:      data,
		MediaType: contentType,
		FileName:  header.Filename,
	}

	if h.Store != nil {
		key, size, mime, err := h.Store.Save(c.Request.Context(), uploadsNamespace, header.Filename, bytes.NewReader(data))
		if err != nil {
			telemetry.Warn("upload persistence failed", map[string]any{
				"fileName":   header.Filename,
				"error":      err.Error(),
				"request_id": c.GetString("requestId"),
			})
		} else {
			doc.StorageKey = key
			telemetry.Info("upload persisted", map[string]any{
				"key":        key,
				"sizeBytes":  size,
				"mimeType":   mime,
				"request_id": c.GetString("requestId"),
			})
		}
	}

	return doc, true
}

func writeAnalysisError(c *gin.Context, err error) {
	if errors.Is(err, extract.ErrUnsupportedDocument) {
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_document", "only PDF and plain text resumes are accepted", nil)
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		respond.Error(c, http.StatusGatewayTimeout, "timeout", "analysis timed out", nil)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal", "analysis failed", nil)
}

func analysisErrorMessage(err error) string {
	if errors.Is(err, extract.ErrUnsupportedDocument) {
		return "only PDF and plain text resumes are accepted"
	}
	return "analysis failed"
}

func normalizeContentType(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, ";"); i >= 0 {
		raw = raw[:i]
	}
	return strings.ToLower(strings.TrimSpace(raw))
}
