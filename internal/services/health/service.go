package health

// Service encapsulates health-related checks.
type Service struct {
	promptMode   string
	ocrAvailable bool
}

// NewService constructs a new health service.
func NewService(promptMode string, ocrAvailable bool) *Service {
	return &Service{promptMode: promptMode, ocrAvailable: ocrAvailable}
}

// Status returns a simple health payload.
func (s *Service) Status() map[string]any {
	return map[string]any{
		"ok":           true,
		"promptMode":   s.promptMode,
		"ocrAvailable": s.ocrAvailable,
	}
}
