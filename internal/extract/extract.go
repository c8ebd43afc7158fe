package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"

	"resume-feedback/internal/ocr"
	"resume-feedback/internal/shared/metrics"
	"resume-feedback/internal/shared/telemetry"
)

const (
	mimePDF  = "application/pdf"
	mimeText = "text/plain"

	// Below this many characters the text layer is considered trivial and
	// the document is treated as image-bearing.
	defaultMinTextLength = 10

	defaultDPI     = 300
	defaultWorkers = 4

	// Pages narrower than this are upscaled before recognition.
	minRecognizeWidth = 1000
)

// ErrUnsupportedDocument is returned for media types the extractor does not
// handle. It is the only extraction failure surfaced to the caller.
var ErrUnsupportedDocument = errors.New("unsupported document type")

// Document is the transient input to extraction: raw bytes plus the declared
// media type, discarded once text has been pulled out.
type Document struct {
	Data      []byte
	MediaType string
	FileName  string
	// StorageKey is set when the upload has been persisted; downstream
	// stages use it to save derived artifacts beside the original.
	StorageKey string
}

// Extractor pulls normalized text out of uploaded documents. PDFs try the
// text layer first and fall back to per-page OCR when the yield is trivial.
type Extractor struct {
	// OpenRenderer opens a page rasterizer over PDF bytes. Nil disables the
	// OCR fallback; image-bearing PDFs then degrade to empty text.
	OpenRenderer ocr.OpenRenderer
	// Engine recognizes rendered page images. Nil disables the fallback too.
	Engine ocr.Engine

	Languages     []string
	DPI           int
	Workers       int
	MinTextLength int

	// DPIPolicy may lower the target resolution based on document size,
	// trading accuracy for throughput. Nil keeps the configured DPI.
	DPIPolicy func(pages, requested int) int
}

// Extract returns normalized text for the two supported media kinds and never
// fails for them; unsupported types yield ErrUnsupportedDocument.
func (e *Extractor) Extract(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch normalizeMediaType(doc.MediaType, doc.FileName) {
	case mimeText:
		return Normalize(string(doc.Data)), nil
	case mimePDF:
		return e.extractPDF(ctx, doc)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDocument, doc.MediaType)
	}
}

func (e *Extractor) extractPDF(ctx context.Context, doc Document) (string, error) {
	direct := directTextLayer(doc.Data)
	if len(strings.TrimSpace(direct)) > e.minTextLength() {
		return Normalize(direct), nil
	}
	return e.ocrFallback(ctx, doc), nil
}

// directTextLayer reads the PDF's embedded text layer. Failures yield ""
// so the OCR fallback gets its chance.
func directTextLayer(data []byte) string {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return ""
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return ""
	}
	return buf.String()
}

// ocrFallback renders each page, preprocesses it and runs recognition on a
// bounded worker pool. A page that fails to render or recognize contributes
// empty text; the rest of the document still counts.
func (e *Extractor) ocrFallback(ctx context.Context, doc Document) string {
	if e.OpenRenderer == nil || e.Engine == nil {
		telemetry.Warn("extract.ocr_unavailable", map[string]any{
			"file_name": doc.FileName,
		})
		return ""
	}

	renderer, err := e.OpenRenderer(doc.Data)
	if err != nil {
		telemetry.Warn("extract.open_renderer_failed", map[string]any{
			"file_name": doc.FileName,
			"error":     err.Error(),
		})
		return ""
	}
	defer renderer.Close()

	numPages := renderer.NumPages()
	if numPages == 0 {
		return ""
	}

	dpi := e.effectiveDPI(numPages)
	opts := ocr.Options{Languages: e.Languages, DPI: dpi}

	pages := make([]string, numPages)
	jobs := make(chan int)
	var renderMu sync.Mutex
	var wg sync.WaitGroup

	workers := e.workers()
	if workers > numPages {
		workers = numPages
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range jobs {
				if ctx.Err() != nil {
					return
				}
				pages[page] = e.recognizePage(ctx, renderer, &renderMu, page, dpi, opts)
			}
		}()
	}

dispatch:
	for page := 0; page < numPages; page++ {
		select {
		case jobs <- page:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	return Normalize(strings.Join(pages, "\n"))
}

func (e *Extractor) recognizePage(ctx context.Context, renderer ocr.Renderer, renderMu *sync.Mutex, page, dpi int, opts ocr.Options) string {
	renderMu.Lock()
	img, err := renderer.RenderPage(ctx, page, dpi)
	renderMu.Unlock()
	if err != nil {
		metrics.IncOCRPageFailed()
		telemetry.Warn("extract.render_page_failed", map[string]any{
			"page":  page,
			"error": err.Error(),
		})
		return ""
	}

	// Renderers capped below the requested DPI yield pages too small for
	// reliable recognition; upscale before preprocessing.
	if b := img.Bounds(); b.Dx() > 0 && b.Dx() < minRecognizeWidth {
		img = ocr.Rescale(img, float64(minRecognizeWidth)/float64(b.Dx()))
	}

	text, err := e.Engine.Recognize(ctx, ocr.Preprocess(img), opts)
	if err != nil {
		metrics.IncOCRPageFailed()
		telemetry.Warn("extract.recognize_page_failed", map[string]any{
			"page":   page,
			"engine": e.Engine.Name(),
			"error":  err.Error(),
		})
		return ""
	}
	return strings.TrimSpace(text)
}

func (e *Extractor) effectiveDPI(pages int) int {
	dpi := e.DPI
	if dpi <= 0 {
		dpi = defaultDPI
	}
	if e.DPIPolicy != nil {
		if adjusted := e.DPIPolicy(pages, dpi); adjusted > 0 {
			dpi = adjusted
		}
	}
	return dpi
}

func (e *Extractor) workers() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return defaultWorkers
}

func (e *Extractor) minTextLength() int {
	if e.MinTextLength > 0 {
		return e.MinTextLength
	}
	return defaultMinTextLength
}

// LoadAwareDPIPolicy halves the target resolution for documents above the
// page threshold so a long scan does not monopolize the OCR workers. 150 DPI
// is the floor below which recognition quality collapses.
func LoadAwareDPIPolicy(largeDocPages int) func(pages, requested int) int {
	return func(pages, requested int) int {
		if largeDocPages > 0 && pages > largeDocPages {
			if halved := requested / 2; halved >= 150 {
				return halved
			}
			return 150
		}
		return requested
	}
}

func normalizeMediaType(mediaType, fileName string) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mediaType, ";")[0]))
	if clean != "" && clean != "application/octet-stream" {
		return clean
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return mimePDF
	case ".txt":
		return mimeText
	default:
		return clean
	}
}
