// Package tesseract implements the ocr.Engine contract with the gosseract
// client. A fresh client is created per recognition; gosseract clients are not
// safe for concurrent use, and per-call construction lets the extractor run
// recognitions on a worker pool without shared state.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strconv"

	"github.com/otiai10/gosseract/v2"

	"resume-feedback/internal/ocr"
)

// Engine recognizes page images through a local Tesseract installation.
type Engine struct {
	clientFactory func() *gosseract.Client

	// Buffers, when set, bounds the memory used for page-image encoding
	// across concurrent recognitions.
	Buffers *ocr.BufferPool
}

// New constructs a Tesseract-backed engine.
func New() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize runs OCR on a single preprocessed page image.
func (e *Engine) Recognize(ctx context.Context, img image.Image, opts ocr.Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	buf, release, err := e.scratchBuffer(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	if err := png.Encode(buf, img); err != nil {
		return "", fmt.Errorf("encode page image: %w", err)
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if len(opts.Languages) > 0 {
		if err := c.SetLanguage(opts.Languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if opts.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(opts.DPI)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return text, nil
}

func (e *Engine) scratchBuffer(ctx context.Context) (*bytes.Buffer, func(), error) {
	if e.Buffers == nil {
		return &bytes.Buffer{}, func() {}, nil
	}
	buf, err := e.Buffers.Get(ctx)
	if err != nil {
		return nil, nil, err
	}
	return buf, func() { e.Buffers.Put(buf) }, nil
}

var _ ocr.Engine = (*Engine)(nil)
