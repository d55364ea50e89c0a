package minutes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/sakif/my-applications/internal/apperror"
	"github.com/sakif/my-applications/internal/logger"
)

// PreferredModels is the fallback order used when no model is forced.
var PreferredModels = []string{
	"models/gemini-2.5-flash",
	"models/gemini-2.5-pro",
	"models/gemini-2.0-flash",
	"models/gemini-2.0-flash-001",
	"models/gemini-flash-latest",
	"models/gemini-pro-latest",
}

const minutesPrompt = `You are an expert corporate assistant. Convert the following inputs into a clean, structured Minutes of Meeting (MOM).
Be concise and factual. If both media and transcript are provided, use transcript as primary and media as context.

STRICT FORMAT (use these exact headers):
MEETING TITLE:
AGENDA:
SUMMARY:
KEY POINTS:
DECISIONS:
RISKS:
ACTION ITEMS (with owner & deadline):

Rules:
- Use bullet points where appropriate
- Clear owners and explicit dates
- No extra commentary outside these sections`

type GeminiConfig struct {
	APIKey  string
	BaseURL string
	// Model, when set, is used as is and skips model discovery.
	Model   string
	Timeout time.Duration
	// RateLimit is requests per second; zero or less disables throttling.
	RateLimit float64
	Burst     int
}

// Gemini summarizes through the Google Generative Language REST API.
type Gemini struct {
	client  *resty.Client
	apiKey  string
	forced  string
	limiter *rate.Limiter
	log     *logger.Logger

	discovery singleflight.Group
	mu        sync.Mutex
	resolved  string
}

func NewGemini(cfg GeminiConfig, log *logger.Logger) *Gemini {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Gemini{
		client: resty.New().
			SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
			SetTimeout(cfg.Timeout).
			SetHeader("Content-Type", "application/json"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		forced:  strings.TrimSpace(cfg.Model),
		limiter: rate.NewLimiter(limit, cfg.Burst),
		log:     log,
	}
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type generateRequest struct {
	Contents []geminiContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type listModelsResponse struct {
	Models []struct {
		Name                       string   `json:"name"`
		SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
	} `json:"models"`
	NextPageToken string `json:"nextPageToken"`
}

type geminiError struct {
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (g *Gemini) Summarize(ctx context.Context, req Request) (string, error) {
	if g.apiKey == "" {
		return "", apperror.Unavailable("GEMINI_API_KEY not configured on server.")
	}

	parts := []geminiPart{{Text: minutesPrompt}}
	if t := strings.TrimSpace(req.Transcript); t != "" {
		parts = append(parts, geminiPart{Text: "Transcript:\n\"\"\"" + t + "\"\"\""})
	}
	for _, m := range req.Media {
		mime := m.ContentType
		if mime == "" {
			mime = http.DetectContentType(m.Data)
		}
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{MimeType: mime, Data: m.Data}})
	}

	model := g.pickModel(ctx)
	log := logger.FromContext(ctx)
	log.Debug().Str("model", model).Int("media", len(req.Media)).Msg("generating minutes")

	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("gemini: waiting for rate limiter: %w", err)
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("key", g.apiKey).
		SetBody(generateRequest{Contents: []geminiContent{{Parts: parts}}}).
		Post("/v1beta/" + model + ":generateContent")
	if err != nil {
		return "", apperror.Upstream("AI service request failed", err)
	}
	if err := mapGeminiError(resp); err != nil {
		return "", err
	}

	var out generateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", apperror.Upstream("AI service returned an unreadable response", err)
	}
	if out.PromptFeedback.BlockReason != "" {
		return "", apperror.Upstream("AI service blocked the request: "+out.PromptFeedback.BlockReason, nil)
	}
	if len(out.Candidates) == 0 {
		return "", nil
	}

	var b strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

// ListModels returns the models that support generateContent.
func (g *Gemini) ListModels(ctx context.Context) ([]string, error) {
	if g.apiKey == "" {
		return nil, apperror.Unavailable("GEMINI_API_KEY not configured on server.")
	}

	var models []string
	pageToken := ""
	for {
		req := g.client.R().
			SetContext(ctx).
			SetQueryParam("key", g.apiKey).
			SetQueryParam("pageSize", "1000")
		if pageToken != "" {
			req.SetQueryParam("pageToken", pageToken)
		}

		resp, err := req.Get("/v1beta/models")
		if err != nil {
			return nil, apperror.Upstream("AI service request failed", err)
		}
		if err := mapGeminiError(resp); err != nil {
			return nil, err
		}

		var page listModelsResponse
		if err := json.Unmarshal(resp.Body(), &page); err != nil {
			return nil, apperror.Upstream("AI service returned an unreadable response", err)
		}
		for _, m := range page.Models {
			if slices.Contains(m.SupportedGenerationMethods, "generateContent") {
				models = append(models, m.Name)
			}
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	if models == nil {
		models = []string{}
	}
	return models, nil
}

// pickModel returns the forced model, else the first preferred model the
// catalog offers, else the first catalog entry. When the catalog cannot be
// read the first preferred model is tried blind. A choice made from a
// successful listing is reused.
//
// Concurrent callers share one catalog request and none of them holds g.mu
// while it is in flight. A caller whose ctx ends first stops waiting.
func (g *Gemini) pickModel(ctx context.Context) string {
	if g.forced != "" {
		return g.forced
	}

	g.mu.Lock()
	resolved := g.resolved
	g.mu.Unlock()
	if resolved != "" {
		return resolved
	}

	ch := g.discovery.DoChan("model", func() (any, error) {
		return g.discoverModel(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return PreferredModels[0]
	case res := <-ch:
		if res.Err != nil {
			logger.FromContext(ctx).Warn().Err(res.Err).Msg("listing models failed, using default model")
			return PreferredModels[0]
		}
		if name := res.Val.(string); name != "" {
			return name
		}
		return PreferredModels[0]
	}
}

// discoverModel lists the catalog and caches the pick. An empty catalog
// yields "" and is not cached.
func (g *Gemini) discoverModel(ctx context.Context) (string, error) {
	available, err := g.ListModels(ctx)
	if err != nil {
		return "", err
	}
	if len(available) == 0 {
		return "", nil
	}

	name := available[0]
	for _, preferred := range PreferredModels {
		if slices.Contains(available, preferred) {
			name = preferred
			break
		}
	}

	g.mu.Lock()
	g.resolved = name
	g.mu.Unlock()
	g.log.Info().Str("model", name).Msg("selected AI model")
	return name, nil
}

func mapGeminiError(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}

	var ge geminiError
	msg := strings.TrimSpace(string(resp.Body()))
	if err := json.Unmarshal(resp.Body(), &ge); err == nil && ge.Error.Message != "" {
		msg = ge.Error.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}

	return apperror.Upstream(fmt.Sprintf("AI service returned HTTP %d: %s", resp.StatusCode(), msg), nil)
}
