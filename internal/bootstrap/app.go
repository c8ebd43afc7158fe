// Package bootstrap wires the application graph from configuration.
package bootstrap

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"resume-feedback/internal/config"
	"resume-feedback/internal/extract"
	"resume-feedback/internal/feedback"
	"resume-feedback/internal/llm"
	"resume-feedback/internal/llm/openai"
	"resume-feedback/internal/ocr"
	"resume-feedback/internal/ocr/mupdf"
	"resume-feedback/internal/ocr/tesseract"
	"resume-feedback/internal/resume"
	"resume-feedback/internal/server"
	"resume-feedback/internal/services/health"
	"resume-feedback/internal/shared/storage/object"
	localstore "resume-feedback/internal/shared/storage/object/local"
	"resume-feedback/internal/shared/telemetry"
	"resume-feedback/internal/uploads"
)

const (
	// ocrPoolSize bounds concurrent page-image encodes; each buffer starts
	// at 1 MiB and grows with the page.
	ocrPoolSize       = 8
	ocrBufferCapacity = 1 << 20
	largeDocPages     = 20
)

// App holds shared dependencies.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	Store   object.ObjectStore
	Service *feedback.Service
	Handler *uploads.Handler
	Health  *health.Service
}

// Build prepares the dependency graph and the router.
func Build(cfg config.Config) (*App, error) {
	store := localstore.New(cfg.LocalStoreDir)

	llmClient, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	engine := tesseract.New()
	engine.Buffers = ocr.NewBufferPool(ocrPoolSize, ocrBufferCapacity)

	extractor := &extract.Extractor{
		OpenRenderer: mupdf.Open,
		Engine:       engine,
		Languages:    cfg.OCRLanguages,
		DPI:          cfg.OCRDPI,
		Workers:      cfg.OCRWorkers,
		DPIPolicy:    extract.LoadAwareDPIPolicy(largeDocPages),
	}

	svc := &feedback.Service{
		Extractor: extractor,
		Parser:    resume.NewParser(resume.DefaultVocabulary()),
		LLM:       llmClient,
		Mode:      cfg.PromptMode,
		Retry: feedback.RetryPolicy{
			MaxAttempts: cfg.MaxRetries,
			Backoff:     cfg.RetryBackoff,
			Multiplier:  1,
		},
		MaxInFlight: cfg.MaxInFlight,
		Limiter:     buildLimiter(cfg),
		TextStore:   store,
	}

	handler := uploads.NewHandler(svc, store, cfg.MaxUploadBytes)
	healthSvc := health.NewService(cfg.PromptMode, true)

	app := &App{
		Config:  cfg,
		Store:   store,
		Service: svc,
		Handler: handler,
		Health:  healthSvc,
	}
	app.Router = server.NewEngine(server.Deps{
		Config:         cfg,
		HealthService:  healthSvc,
		UploadsHandler: handler,
	})
	return app, nil
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	if cfg.OpenAIAPIKey == "" {
		telemetry.Warn("OPENAI_API_KEY not set, generation disabled", nil)
		return llm.PlaceholderClient{}, nil
	}
	client, err := openai.NewClient(openai.Config{
		APIKey:          cfg.OpenAIAPIKey,
		APIURL:          cfg.OpenAIAPIURL,
		Model:           cfg.LLMModel,
		ResponseTimeout: cfg.ResponseTimeout,
		ConnectTimeout:  cfg.ConnectTimeout,
	})
	if err != nil {
		return nil, err
	}
	return llm.NewBreakerClient(client, llm.BreakerSettings{Name: "openai"}), nil
}

func buildLimiter(cfg config.Config) *rate.Limiter {
	if cfg.RatePerSecond <= 0 {
		return nil
	}
	burst := cfg.MaxInFlight
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
}
