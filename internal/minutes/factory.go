package minutes

import (
	"fmt"

	"github.com/sakif/my-applications/internal/config"
	"github.com/sakif/my-applications/internal/logger"
)

// NewSummarizer builds the summarizer named by cfg.Provider.
func NewSummarizer(cfg config.AI, log *logger.Logger) (Summarizer, error) {
	switch cfg.Provider {
	case config.AIProviderGemini:
		return NewGemini(GeminiConfig{
			APIKey:    cfg.GeminiAPIKey,
			BaseURL:   cfg.GeminiBaseURL,
			Model:     cfg.GeminiModel,
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			Burst:     cfg.Burst,
		}, log), nil
	case config.AIProviderClassic:
		return Classic{}, nil
	default:
		return nil, fmt.Errorf("minutes: unknown AI provider %q", cfg.Provider)
	}
}

// NewTranscriber builds the transcriber named by cfg.Provider.
func NewTranscriber(cfg config.Transcribe, log *logger.Logger) (Transcriber, error) {
	switch cfg.Provider {
	case config.TranscribeProviderWhisper:
		return NewWhisper(WhisperConfig{
			URL:     cfg.URL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
		}, log), nil
	case config.TranscribeProviderNone, "":
		return NoTranscriber{}, nil
	default:
		return nil, fmt.Errorf("minutes: unknown transcribe provider %q", cfg.Provider)
	}
}
