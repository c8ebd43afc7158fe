// Package mupdf adapts go-fitz (MuPDF) to the ocr.Renderer contract for
// rasterizing image-bearing PDFs.
package mupdf

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"resume-feedback/internal/ocr"
)

// Renderer rasterizes pages of an in-memory PDF document.
type Renderer struct {
	doc *fitz.Document
}

// Open parses the document bytes and returns a page renderer. The caller owns
// the renderer and must Close it.
func Open(data []byte) (ocr.Renderer, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &Renderer{doc: doc}, nil
}

func (r *Renderer) NumPages() int { return r.doc.NumPage() }

// RenderPage rasterizes one zero-based page at the given resolution.
func (r *Renderer) RenderPage(ctx context.Context, page int, dpi int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := r.doc.ImageDPI(page, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}
	return img, nil
}

func (r *Renderer) Close() error { return r.doc.Close() }

var _ ocr.Renderer = (*Renderer)(nil)
