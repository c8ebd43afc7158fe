package feedback

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"resume-feedback/internal/extract"
	"resume-feedback/internal/llm"
	"resume-feedback/internal/resume"
	"resume-feedback/internal/shared/metrics"
	"resume-feedback/internal/shared/telemetry"
)

// Prompt modes.
const (
	ModeSingle = "single"
	ModeMulti  = "multi"
)

// TextExtractor yields normalized text from an uploaded document.
// *extract.Extractor is the production implementation.
type TextExtractor interface {
	Extract(ctx context.Context, doc extract.Document) (string, error)
}

// TextStore persists extracted text beside the stored upload. The local
// object store satisfies it.
type TextStore interface {
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
}

// Service runs the document to feedback pipeline.
type Service struct {
	Extractor TextExtractor
	Parser    *resume.Parser
	LLM       llm.Client
	// Mode selects single (one JSON prompt) or multi (one prompt per
	// category). Any unrecognized value falls back to single.
	Mode  string
	Retry RetryPolicy
	// MaxInFlight bounds concurrent dispatches in multi mode. Zero means
	// one category at a time.
	MaxInFlight int
	// Limiter is shared across all dispatches including retries. Nil means
	// unlimited.
	Limiter *rate.Limiter
	// TextStore, when set, archives the extracted text next to documents
	// that carry a storage key. Failures are logged, never fatal.
	TextStore TextStore
}

// Analyze runs extraction, section parsing, and feedback generation for one
// uploaded document. The returned Feedback always carries all five
// categories. Only an unsupported document type or context cancellation
// surfaces as an error; generation failures degrade to NoData slots.
func (s *Service) Analyze(ctx context.Context, doc extract.Document, progress Publisher) (Feedback, error) {
	if progress == nil {
		progress = NopPublisher{}
	}
	requestID := uuid.NewString()
	started := time.Now()
	metrics.IncFeedbackStarted()
	telemetry.Info("analysis started", map[string]any{
		"requestId": requestID,
		"fileName":  doc.FileName,
		"mediaType": doc.MediaType,
		"bytes":     len(doc.Data),
	})

	text, err := s.Extractor.Extract(ctx, doc)
	if err != nil {
		metrics.IncFeedbackFailed()
		progress.Publish(Event{Percent: 100, Stage: "failed", Done: true, Err: err.Error()})
		telemetry.Error("extraction failed", map[string]any{
			"requestId": requestID,
			"error":     err.Error(),
		})
		return Feedback{}, err
	}
	progress.Publish(Event{Percent: 20, Stage: "extracted"})

	if s.TextStore != nil && doc.StorageKey != "" {
		key := doc.StorageKey + ".extracted.txt"
		if _, err := s.TextStore.SaveWithKey(ctx, key, "text/plain; charset=utf-8", strings.NewReader(text)); err != nil {
			telemetry.Warn("extracted text archive failed", map[string]any{
				"requestId": requestID,
				"key":       key,
				"error":     err.Error(),
			})
		}
	}

	parsed := s.Parser.Parse(text)
	fb := s.generate(ctx, requestID, parsed, progress)

	metrics.IncFeedbackCompleted()
	metrics.ObservePipelineDurationMs(float64(time.Since(started).Milliseconds()))
	progress.Publish(Event{Percent: 100, Stage: "done", Done: true})
	telemetry.Info("analysis completed", map[string]any{
		"requestId":  requestID,
		"durationMs": time.Since(started).Milliseconds(),
	})
	return fb, nil
}

// Generate produces feedback for an already-parsed resume. Exposed for
// callers that extracted text themselves.
func (s *Service) Generate(ctx context.Context, r resume.Resume) Feedback {
	return s.generate(ctx, uuid.NewString(), r, NopPublisher{})
}

func (s *Service) generate(ctx context.Context, requestID string, r resume.Resume, progress Publisher) Feedback {
	if s.Mode == ModeMulti {
		return s.generateMulti(ctx, requestID, r, progress)
	}
	return s.generateSingle(ctx, requestID, r, progress)
}

// generateSingle dispatches one prompt whose content must come back as a
// JSON object with every category key. Any rejection retries the whole
// dispatch; exhaustion degrades every category at once.
func (s *Service) generateSingle(ctx context.Context, requestID string, r resume.Resume, progress Publisher) Feedback {
	prompt := BuildSingle(r)
	content, err := s.dispatch(ctx, requestID, prompt, func(content string) error {
		_, parseErr := ParseCategoryMap(content)
		return parseErr
	})
	if err != nil {
		for _, c := range Categories() {
			metrics.IncCategoryDegraded(string(c))
		}
		telemetry.Warn("single-mode generation degraded", map[string]any{
			"requestId": requestID,
			"error":     err.Error(),
		})
		return fromMap(nil)
	}
	m, _ := ParseCategoryMap(content)
	progress.Publish(Event{Percent: 60, Stage: "generated"})
	return fromMap(m)
}

// generateMulti fans out one dispatch per category. Each goroutine writes
// only its own results slot; the join reads only after every goroutine has
// signalled done.
func (s *Service) generateMulti(ctx context.Context, requestID string, r resume.Resume, progress Publisher) Feedback {
	prompts := BuildPerCategory(r)
	results := make([]string, len(prompts))

	inFlight := s.MaxInFlight
	if inFlight < 1 {
		inFlight = 1
	}
	sem := make(chan struct{}, inFlight)
	done := make(chan int, len(prompts))

	for i := range prompts {
		go func(i int) {
			defer func() { done <- i }()
			sem <- struct{}{}
			defer func() { <-sem }()

			p := prompts[i]
			content, err := s.dispatch(ctx, requestID, p, func(content string) error {
				if strings.TrimSpace(content) == "" {
					return ErrEmptyContent
				}
				return nil
			})
			if err != nil {
				metrics.IncCategoryDegraded(string(p.Category))
				telemetry.Warn("category generation degraded", map[string]any{
					"requestId": requestID,
					"category":  string(p.Category),
					"error":     err.Error(),
				})
				return
			}
			results[i] = strings.TrimSpace(content)
		}(i)
	}

	resolved := 0
	for range prompts {
		<-done
		resolved++
		progress.Publish(Event{
			Percent: 20 + resolved*16,
			Stage:   "category resolved",
		})
	}

	m := make(map[Category]string, len(prompts))
	for i, p := range prompts {
		m[p.Category] = results[i]
	}
	return fromMap(m)
}

// dispatch runs one prompt through the retry state machine: at most
// Retry.MaxAttempts calls to the client, each validated by envelope
// extraction plus the caller's accept check, with the policy's backoff
// between failed attempts.
func (s *Service) dispatch(ctx context.Context, requestID string, p Prompt, accept func(content string) error) (string, error) {
	label := string(p.Category)
	if label == "" {
		label = "all"
	}
	var lastErr error
	attempts := s.Retry.attempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if s.Limiter != nil {
			if err := s.Limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		raw, err := s.LLM.Complete(ctx, llm.Request{
			Messages: []llm.Message{
				{Role: "system", Content: p.System},
				{Role: "user", Content: p.User},
			},
			MaxTokens: p.MaxTokens,
		})
		if err == nil {
			var content string
			content, err = ExtractContent(raw)
			if err == nil {
				err = accept(content)
			}
			if err == nil {
				return content, nil
			}
		}

		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		if attempt < attempts {
			metrics.IncDispatchRetry(label)
			telemetry.Warn("dispatch retrying", map[string]any{
				"requestId": requestID,
				"category":  label,
				"attempt":   attempt,
				"error":     err.Error(),
			})
			if waitErr := s.Retry.wait(ctx, attempt); waitErr != nil {
				return "", waitErr
			}
		}
	}
	return "", lastErr
}
