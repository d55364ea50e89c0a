package service

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/my-applications/internal/apperror"
	"github.com/sakif/my-applications/internal/executor"
	"github.com/sakif/my-applications/internal/logger"
	"github.com/sakif/my-applications/internal/minutes"
	"github.com/sakif/my-applications/internal/model"
	"github.com/sakif/my-applications/internal/repository"
)

// Upload limits for the minutes generators.
const (
	MaxVideoBytes = 25 << 20
	MaxImageBytes = 10 << 20
)

// MinutesInput is the material for a minutes run. Video and Image are
// optional.
type MinutesInput struct {
	Transcript string
	Video      *minutes.Media
	Image      *minutes.Media
}

// ArtifactWriter renders minutes as a downloadable PDF and returns its
// public path.
type ArtifactWriter interface {
	WritePDF(name, content string) (string, error)
}

type MinutesOptions struct {
	AITimeout         time.Duration
	TranscribeTimeout time.Duration
}

// MinutesService generates Minutes of Meeting. Calls to the AI and
// speech-to-text backends run on the shared worker pool with a deadline.
type MinutesService struct {
	summarizer  minutes.Summarizer
	transcriber minutes.Transcriber
	records     repository.MinutesRepository
	artifacts   ArtifactWriter
	pool        *executor.Pool
	opts        MinutesOptions
}

func NewMinutesService(
	summarizer minutes.Summarizer,
	transcriber minutes.Transcriber,
	records repository.MinutesRepository,
	artifacts ArtifactWriter,
	pool *executor.Pool,
	opts MinutesOptions,
) *MinutesService {
	if opts.AITimeout <= 0 {
		opts.AITimeout = 60 * time.Second
	}
	if opts.TranscribeTimeout <= 0 {
		opts.TranscribeTimeout = 2 * time.Minute
	}
	return &MinutesService{
		summarizer:  summarizer,
		transcriber: transcriber,
		records:     records,
		artifacts:   artifacts,
		pool:        pool,
		opts:        opts,
	}
}

// GenerateAI summarizes the transcript and any attached media with the
// configured AI backend.
func (s *MinutesService) GenerateAI(ctx context.Context, in MinutesInput) (*model.MinutesRecord, error) {
	transcript := strings.TrimSpace(in.Transcript)
	if transcript == "" && in.Video == nil && in.Image == nil {
		return nil, apperror.ValidationFailed("transcript", "Provide transcript or upload video/image")
	}
	if err := checkSizes(in); err != nil {
		return nil, err
	}

	req := minutes.Request{Transcript: transcript}
	if in.Image != nil {
		req.Media = append(req.Media, *in.Image)
	}
	if in.Video != nil {
		req.Media = append(req.Media, *in.Video)
	}

	text, err := executor.Run(ctx, s.pool, s.opts.AITimeout, func(ctx context.Context) (string, error) {
		return s.summarizer.Summarize(ctx, req)
	})
	if err != nil {
		if errors.Is(err, apperror.ErrTimeout) {
			return nil, apperror.Timeout("AI generation timed out. Try again.", err)
		}
		return nil, err
	}

	text = strings.TrimSpace(html.UnescapeString(strings.TrimSpace(text)))
	if text == "" {
		return nil, apperror.Upstream("AI returned empty response", nil)
	}

	rec := &model.MinutesRecord{
		ID:         xid.New().String(),
		Mode:       model.MinutesModeAI,
		Transcript: transcript,
		Minutes:    text,
	}
	s.save(ctx, rec)
	return rec, nil
}

// GenerateClassic fills the offline template. An uploaded recording is
// transcribed first when a speech-to-text backend is configured, and a
// non-blank result replaces the typed transcript. The minutes are also
// rendered as a PDF artifact.
func (s *MinutesService) GenerateClassic(ctx context.Context, in MinutesInput) (*model.MinutesRecord, error) {
	if err := checkSizes(in); err != nil {
		return nil, err
	}

	transcript := strings.TrimSpace(in.Transcript)
	if in.Video != nil && len(in.Video.Data) > 0 {
		text, err := s.transcribe(ctx, minutes.Audio{
			Filename:    in.Video.Filename,
			ContentType: in.Video.ContentType,
			Data:        in.Video.Data,
		})
		switch {
		case errors.Is(err, apperror.ErrUnavailable):
			logger.FromContext(ctx).Warn().Err(err).Msg("recording not transcribed, using typed transcript")
		case err != nil:
			return nil, err
		case text != "":
			transcript = text
		}
	}

	rec := &model.MinutesRecord{
		ID:         xid.New().String(),
		Mode:       model.MinutesModeClassic,
		Transcript: transcript,
		Minutes:    minutes.ClassicMinutes(transcript),
	}

	path, err := s.artifacts.WritePDF(rec.ID+".pdf", rec.Minutes)
	if err != nil {
		return nil, err
	}
	rec.Artifact = path

	s.save(ctx, rec)
	return rec, nil
}

// Transcribe converts a recording to text. Silence is an upstream failure.
func (s *MinutesService) Transcribe(ctx context.Context, audio minutes.Audio) (string, error) {
	if len(audio.Data) == 0 {
		return "", apperror.ValidationFailed("file", "Upload an audio file")
	}

	text, err := s.transcribe(ctx, audio)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", apperror.Upstream("transcription produced empty text", nil)
	}
	return text, nil
}

func (s *MinutesService) transcribe(ctx context.Context, audio minutes.Audio) (string, error) {
	text, err := executor.Run(ctx, s.pool, s.opts.TranscribeTimeout, func(ctx context.Context) (string, error) {
		return s.transcriber.Transcribe(ctx, audio)
	})
	if err != nil {
		if errors.Is(err, apperror.ErrTimeout) {
			return "", apperror.Timeout("Transcription timed out. Try again.", err)
		}
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Models lists the AI models usable for generation.
func (s *MinutesService) Models(ctx context.Context) ([]string, error) {
	lister, ok := s.summarizer.(minutes.ModelLister)
	if !ok {
		return nil, apperror.Unavailable("Model listing is not available for the configured AI provider.")
	}
	return lister.ListModels(ctx)
}

// save records the minutes in the history table. The caller already has its
// result, so a failed write is logged rather than returned.
func (s *MinutesService) save(ctx context.Context, rec *model.MinutesRecord) {
	rec.CreatedAt = time.Now().UTC()
	if err := s.records.SaveMinutes(ctx, rec); err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("minutes_id", rec.ID).Msg("saving minutes record")
	}
}

func checkSizes(in MinutesInput) error {
	if in.Video != nil && len(in.Video.Data) > MaxVideoBytes {
		return apperror.TooLarge("video", "Video too large (>25MB)")
	}
	if in.Image != nil && len(in.Image.Data) > MaxImageBytes {
		return apperror.TooLarge("image", "Image too large (>10MB)")
	}
	return nil
}
