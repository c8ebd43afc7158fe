package feedback

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Rejection errors. The orchestrator treats every rejection as retryable;
// the distinct values exist for logs and tests.
var (
	ErrMalformedEnvelope = errors.New("feedback: malformed response envelope")
	ErrEmptyContent      = errors.New("feedback: empty response content")
	ErrContentRejected   = errors.New("feedback: response content rejected")
)

// IsRejection reports whether err is a shape rejection rather than a
// transport failure. Both retry, but only rejections mean the upstream
// answered and answered badly.
func IsRejection(err error) bool {
	return errors.Is(err, ErrMalformedEnvelope) ||
		errors.Is(err, ErrEmptyContent) ||
		errors.Is(err, ErrContentRejected)
}

type envelope struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// ExtractContent pulls choices[0].message.content out of a raw completion
// envelope. An upstream error object, missing choices, or empty content all
// reject.
func ExtractContent(raw json.RawMessage) (string, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.Error != nil {
		return "", fmt.Errorf("%w: upstream error %s: %s", ErrMalformedEnvelope, env.Error.Type, env.Error.Message)
	}
	if len(env.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedEnvelope)
	}
	content := env.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}
	return content, nil
}

// ParseCategoryMap validates single-mode content: it must be a JSON object
// carrying every category key with a non-empty string value. Anything less
// rejects so the dispatch retries rather than returning a partial result.
func ParseCategoryMap(content string) (map[Category]string, error) {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("%w: content is not a JSON object", ErrContentRejected)
	}

	var fields map[string]string
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentRejected, err)
	}

	out := make(map[Category]string, len(Categories()))
	for _, c := range Categories() {
		v, ok := fields[string(c)]
		if !ok || strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%w: missing or empty key %q", ErrContentRejected, string(c))
		}
		out[c] = v
	}
	return out, nil
}
