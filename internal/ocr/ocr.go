// Package ocr defines the optical recognition boundary of the pipeline: a
// renderer that turns document pages into images, an engine that turns images
// into text, and the image preprocessing that sits between them. The engine
// and renderer are capabilities injected by the caller; this package owns only
// their contracts and the preprocessing math.
package ocr

import (
	"context"
	"image"
)

// Options carries per-recognition knobs for an Engine.
type Options struct {
	// Languages lists trained-data hints (e.g. "kor", "eng").
	Languages []string
	// DPI is the effective dots-per-inch of the input image; zero means
	// unknown and lets the engine apply its own default.
	DPI int
}

// Engine recognizes text in a single page image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image, opts Options) (string, error)
}

// Renderer rasterizes the pages of an open document. Implementations are not
// required to be safe for concurrent RenderPage calls; the extractor
// serializes rendering and parallelizes recognition instead.
type Renderer interface {
	NumPages() int
	RenderPage(ctx context.Context, page int, dpi int) (image.Image, error)
	Close() error
}

// OpenRenderer opens a renderer over raw document bytes. A nil func disables
// the OCR fallback entirely.
type OpenRenderer func(data []byte) (Renderer, error)
