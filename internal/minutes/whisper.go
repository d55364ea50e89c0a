package minutes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sakif/my-applications/internal/apperror"
	"github.com/sakif/my-applications/internal/logger"
)

type WhisperConfig struct {
	// URL is the server root; requests go to URL + "/v1/audio/transcriptions".
	URL     string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// Whisper talks to an OpenAI-compatible transcription endpoint such as a
// self-hosted faster-whisper server.
type Whisper struct {
	client *resty.Client
	model  string
	log    *logger.Logger
}

func NewWhisper(cfg WhisperConfig, log *logger.Logger) *Whisper {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetTimeout(cfg.Timeout)
	if cfg.APIKey != "" {
		cli.SetAuthToken(cfg.APIKey)
	}

	return &Whisper{client: cli, model: cfg.Model, log: log}
}

func (w *Whisper) Transcribe(ctx context.Context, audio Audio) (string, error) {
	filename := audio.Filename
	if filename == "" {
		filename = "chunk.mp3"
	}

	form := map[string]string{"response_format": "json"}
	if w.model != "" {
		form["model"] = w.model
	}
	if audio.Language != "" {
		form["language"] = audio.Language
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(audio.Data)).
		SetFormData(form).
		Post("/v1/audio/transcriptions")
	if err != nil {
		return "", apperror.Upstream("transcription request failed", err)
	}
	if resp.IsError() {
		body := strings.TrimSpace(string(resp.Body()))
		if body == "" {
			body = http.StatusText(resp.StatusCode())
		}
		return "", apperror.Upstream(fmt.Sprintf("transcription service returned HTTP %d: %s", resp.StatusCode(), body), nil)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", apperror.Upstream("transcription service returned an unreadable response", err)
	}

	text := strings.TrimSpace(out.Text)
	logger.FromContext(ctx).Debug().Int("bytes", len(audio.Data)).Int("chars", len(text)).Msg("transcribed audio")
	return text, nil
}

// NoTranscriber is used when no speech-to-text backend is configured.
type NoTranscriber struct{}

func (NoTranscriber) Transcribe(context.Context, Audio) (string, error) {
	return "", apperror.Unavailable("Speech-to-text is not configured on this server.")
}
