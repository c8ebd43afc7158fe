package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"resume-feedback/internal/extract"
	"resume-feedback/internal/llm"
	"resume-feedback/internal/resume"
)

const validSingleContent = `{"자기소개":"소개 피드백","기술 스택":"스택 피드백","경력":"경력 피드백","프로젝트":"프로젝트 피드백","대외활동":"활동 피드백"}`

func singleEnvelope(content string) json.RawMessage {
	env := map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": content}},
		},
	}
	raw, _ := json.Marshal(env)
	return raw
}

// stubClient replays scripted responses in call order.
type stubClient struct {
	mu        sync.Mutex
	calls     int
	responses []json.RawMessage
	errs      []error
	respond   func(req llm.Request) (json.RawMessage, error)
}

func (s *stubClient) Complete(ctx context.Context, req llm.Request) (json.RawMessage, error) {
	s.mu.Lock()
	i := s.calls
	s.calls++
	s.mu.Unlock()
	if s.respond != nil {
		return s.respond(req)
	}
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return nil, errors.New("stub exhausted")
}

func (s *stubClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) Extract(ctx context.Context, doc extract.Document) (string, error) {
	return s.text, s.err
}

func newService(client llm.Client, mode string) *Service {
	return &Service{
		Extractor: stubExtractor{text: "자기소개\n홍길동입니다\n기술 스택\nGo"},
		Parser:    resume.NewParser(resume.DefaultVocabulary()),
		LLM:       client,
		Mode:      mode,
		Retry:     RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond, Multiplier: 1},
	}
}

func TestAnalyzeSingleModeHappyPath(t *testing.T) {
	client := &stubClient{responses: []json.RawMessage{singleEnvelope(validSingleContent)}}
	svc := newService(client, ModeSingle)

	fb, err := svc.Analyze(context.Background(), extract.Document{FileName: "r.txt", MediaType: "text/plain"}, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if fb.SelfIntroduction != "소개 피드백" || fb.Activities != "활동 피드백" {
		t.Errorf("feedback = %+v", fb)
	}
	if client.callCount() != 1 {
		t.Errorf("calls = %d, want 1", client.callCount())
	}
}

func TestSingleModeRetriesThenSucceeds(t *testing.T) {
	client := &stubClient{responses: []json.RawMessage{
		singleEnvelope("죄송하지만 JSON이 아닙니다"),
		singleEnvelope(validSingleContent),
	}}
	svc := newService(client, ModeSingle)

	fb, err := svc.Analyze(context.Background(), extract.Document{MediaType: "text/plain"}, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if fb.WorkExperience != "경력 피드백" {
		t.Errorf("WorkExperience = %q", fb.WorkExperience)
	}
	if client.callCount() != 2 {
		t.Errorf("calls = %d, want 2", client.callCount())
	}
}

func TestSingleModeExhaustionDegradesAllCategories(t *testing.T) {
	// Every attempt answers with prose, never JSON.
	client := &stubClient{respond: func(req llm.Request) (json.RawMessage, error) {
		return singleEnvelope("여기 피드백이 있습니다: 이력서가 좋네요."), nil
	}}
	svc := newService(client, ModeSingle)

	fb, err := svc.Analyze(context.Background(), extract.Document{MediaType: "text/plain"}, nil)
	if err != nil {
		t.Fatalf("degraded analysis must not error: %v", err)
	}
	for _, c := range Categories() {
		if fb.field(c) != NoData {
			t.Errorf("%s = %q, want %q", c, fb.field(c), NoData)
		}
	}
	if client.callCount() != 3 {
		t.Errorf("calls = %d, want exactly MaxAttempts", client.callCount())
	}
}

func TestDispatchCountIsExactlyMaxAttempts(t *testing.T) {
	client := &stubClient{respond: func(req llm.Request) (json.RawMessage, error) {
		return nil, errors.New("connection refused")
	}}
	svc := newService(client, ModeSingle)
	svc.Retry.MaxAttempts = 5

	if _, err := svc.Analyze(context.Background(), extract.Document{MediaType: "text/plain"}, nil); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if client.callCount() != 5 {
		t.Errorf("calls = %d, want 5", client.callCount())
	}
}

func TestMultiModeFansOutPerCategory(t *testing.T) {
	client := &stubClient{respond: func(req llm.Request) (json.RawMessage, error) {
		// Echo the category the prompt asks about.
		for _, c := range Categories() {
			if strings.Contains(req.Messages[1].Content, "'"+string(c)+"'") {
				return singleEnvelope(string(c) + " 피드백"), nil
			}
		}
		return nil, errors.New("unrecognized prompt")
	}}
	svc := newService(client, ModeMulti)
	svc.MaxInFlight = 5

	fb, err := svc.Analyze(context.Background(), extract.Document{MediaType: "text/plain"}, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if fb.SelfIntroduction != "자기소개 피드백" {
		t.Errorf("SelfIntroduction = %q", fb.SelfIntroduction)
	}
	if fb.Projects != "프로젝트 피드백" {
		t.Errorf("Projects = %q", fb.Projects)
	}
	if client.callCount() != 5 {
		t.Errorf("calls = %d, want 5", client.callCount())
	}
}

func TestMultiModeDegradesOnlyFailedCategory(t *testing.T) {
	client := &stubClient{respond: func(req llm.Request) (json.RawMessage, error) {
		if strings.Contains(req.Messages[1].Content, "'"+string(CategoryProjects)+"'") {
			return nil, errors.New("upstream down")
		}
		return singleEnvelope("피드백"), nil
	}}
	svc := newService(client, ModeMulti)
	svc.MaxInFlight = 2

	fb, err := svc.Analyze(context.Background(), extract.Document{MediaType: "text/plain"}, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if fb.Projects != NoData {
		t.Errorf("Projects = %q, want sentinel", fb.Projects)
	}
	if fb.SelfIntroduction != "피드백" || fb.Activities != "피드백" {
		t.Errorf("healthy categories degraded: %+v", fb)
	}
}

func TestMultiModeBoundsInFlight(t *testing.T) {
	var inFlight, peak int64
	client := &stubClient{respond: func(req llm.Request) (json.RawMessage, error) {
		cur := atomic.AddInt64(&inFlight, 1)
		for {
			old := atomic.LoadInt64(&peak)
			if cur <= old || atomic.CompareAndSwapInt64(&peak, old, cur) {
				break
			}
		}
		time.Sleep(time.Duration(rand.Intn(10)+5) * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return singleEnvelope("피드백"), nil
	}}
	svc := newService(client, ModeMulti)
	svc.MaxInFlight = 2

	if _, err := svc.Analyze(context.Background(), extract.Document{MediaType: "text/plain"}, nil); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got := atomic.LoadInt64(&peak); got > 2 {
		t.Errorf("peak in-flight = %d, want <= 2", got)
	}
}

type memTextStore struct {
	mu    sync.Mutex
	saved map[string]string
}

func (m *memTextStore) SaveWithKey(ctx context.Context, key string, contentType string, r io.Reader) (int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = map[string]string{}
	}
	m.saved[key] = string(b)
	return int64(len(b)), nil
}

func TestAnalyzeArchivesExtractedText(t *testing.T) {
	client := &stubClient{responses: []json.RawMessage{singleEnvelope(validSingleContent)}}
	svc := newService(client, ModeSingle)
	store := &memTextStore{}
	svc.TextStore = store

	doc := extract.Document{MediaType: "text/plain", StorageKey: "ns/resume.pdf"}
	if _, err := svc.Analyze(context.Background(), doc, nil); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	text, ok := store.saved["ns/resume.pdf.extracted.txt"]
	if !ok {
		t.Fatalf("extracted text not archived, keys = %v", store.saved)
	}
	if !strings.Contains(text, "홍길동입니다") {
		t.Errorf("archived text = %q", text)
	}
}

func TestAnalyzePropagatesUnsupportedDocument(t *testing.T) {
	svc := newService(&stubClient{}, ModeSingle)
	svc.Extractor = stubExtractor{err: fmt.Errorf("media type image/png: %w", extract.ErrUnsupportedDocument)}

	_, err := svc.Analyze(context.Background(), extract.Document{MediaType: "image/png"}, nil)
	if !errors.Is(err, extract.ErrUnsupportedDocument) {
		t.Fatalf("err = %v, want ErrUnsupportedDocument", err)
	}
}

func TestAnalyzeProgressTerminates(t *testing.T) {
	client := &stubClient{responses: []json.RawMessage{singleEnvelope(validSingleContent)}}
	svc := newService(client, ModeSingle)

	pub := NewChannelPublisher(32)
	if _, err := svc.Analyze(context.Background(), extract.Document{MediaType: "text/plain"}, pub); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	pub.Close()

	var events []Event
	for ev := range pub.Events() {
		events = append(events, ev)
	}
	if len(events) == 0 {
		t.Fatal("no progress events")
	}
	last := events[len(events)-1]
	if !last.Done || last.Percent != 100 {
		t.Errorf("last event = %+v, want done at 100", last)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Percent < events[i-1].Percent {
			t.Errorf("progress went backwards: %d then %d", events[i-1].Percent, events[i].Percent)
		}
	}
}

func TestAnalyzeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &stubClient{respond: func(req llm.Request) (json.RawMessage, error) {
		return nil, ctx.Err()
	}}
	svc := newService(client, ModeSingle)

	fb, err := svc.Analyze(ctx, extract.Document{MediaType: "text/plain"}, nil)
	if err != nil {
		// The extractor stub ignores ctx, so cancellation lands during
		// dispatch and the result degrades rather than erroring.
		t.Fatalf("Analyze: %v", err)
	}
	for _, c := range Categories() {
		if fb.field(c) != NoData {
			t.Errorf("%s = %q", c, fb.field(c))
		}
	}
	if client.callCount() != 0 {
		t.Errorf("client called %d times under cancelled ctx", client.callCount())
	}
}
