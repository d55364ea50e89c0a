package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/sakif/my-applications/internal/apperror"
	"github.com/sakif/my-applications/internal/minutes"
	"github.com/sakif/my-applications/internal/model"
	"github.com/sakif/my-applications/internal/service"
)

// MinutesGenerator is the part of service.MinutesService the HTTP layer uses.
type MinutesGenerator interface {
	GenerateAI(ctx context.Context, in service.MinutesInput) (*model.MinutesRecord, error)
	GenerateClassic(ctx context.Context, in service.MinutesInput) (*model.MinutesRecord, error)
	Transcribe(ctx context.Context, audio minutes.Audio) (string, error)
	Models(ctx context.Context) ([]string, error)
}

// multipartMemory is how much of a form ParseMultipartForm keeps in memory
// before spilling file parts to disk.
const multipartMemory = 8 << 20

// MinutesHandler serves the Minutes of Meeting and transcription endpoints.
// They are public and take multipart/form-data.
type MinutesHandler struct {
	svc       MinutesGenerator
	maxUpload int64
}

func NewMinutesHandler(svc MinutesGenerator, maxUpload int64) *MinutesHandler {
	return &MinutesHandler{svc: svc, maxUpload: maxUpload}
}

type momResponse struct {
	MOM string `json:"mom"`
}

type meetingMOMResponse struct {
	MOM      string `json:"mom"`
	Artifact string `json:"artifact"`
}

type transcribeResponse struct {
	Text string `json:"text"`
}

type modelsResponse struct {
	Models []string `json:"models"`
}

// HandleAIMinutes → POST /ai/mom-generator
//
// FORM FIELDS: transcript (text), video (file), image (file). At least one
// must be present.
func (h *MinutesHandler) HandleAIMinutes(w http.ResponseWriter, r *http.Request) {
	in, err := h.parseMinutesForm(w, r, true)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rec, err := h.svc.GenerateAI(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, momResponse{MOM: rec.Minutes})
}

// HandleClassicMinutes → POST /meeting-mom
//
// FORM FIELDS: transcript (text), video (file). Both optional; an empty
// request yields the placeholder template.
func (h *MinutesHandler) HandleClassicMinutes(w http.ResponseWriter, r *http.Request) {
	in, err := h.parseMinutesForm(w, r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rec, err := h.svc.GenerateClassic(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, meetingMOMResponse{MOM: rec.Minutes, Artifact: rec.Artifact})
}

// HandleTranscribe → POST /transcribe/local
//
// FORM FIELDS: file (required), language (optional hint, e.g. "en").
func (h *MinutesHandler) HandleTranscribe(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(w, r); err != nil {
		writeError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	media, err := formFile(r, "file")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if media == nil {
		writeError(w, r, apperror.ValidationFailed("file", "Upload an audio file"))
		return
	}

	text, err := h.svc.Transcribe(r.Context(), minutes.Audio{
		Filename:    media.Filename,
		ContentType: media.ContentType,
		Data:        media.Data,
		Language:    strings.TrimSpace(r.FormValue("language")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, transcribeResponse{Text: text})
}

// HandleModels → GET /ai/models
func (h *MinutesHandler) HandleModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.svc.Models(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if models == nil {
		models = []string{}
	}
	writeJSON(w, r, http.StatusOK, modelsResponse{Models: models})
}

func (h *MinutesHandler) parseMinutesForm(w http.ResponseWriter, r *http.Request, withImage bool) (service.MinutesInput, error) {
	var in service.MinutesInput
	if err := h.parseForm(w, r); err != nil {
		return in, err
	}
	defer r.MultipartForm.RemoveAll()

	in.Transcript = r.FormValue("transcript")

	video, err := formFile(r, "video")
	if err != nil {
		return in, err
	}
	in.Video = video

	if withImage {
		image, err := formFile(r, "image")
		if err != nil {
			return in, err
		}
		in.Image = image
	}
	return in, nil
}

// parseForm reads a multipart body of at most maxUpload bytes.
func (h *MinutesHandler) parseForm(w http.ResponseWriter, r *http.Request) error {
	if h.maxUpload > 0 {
		if r.ContentLength > h.maxUpload {
			return apperror.TooLarge("body", "Upload too large")
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperror.TooLarge("body", "Upload too large")
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			return apperror.ValidationFailed("body", "Expected multipart/form-data")
		default:
			return apperror.ValidationFailed("body", "Invalid multipart form")
		}
	}
	return nil
}

// formFile reads the named file part. A missing or empty part is nil.
func formFile(r *http.Request, field string) (*minutes.Media, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.ValidationFailed(field, "Invalid file upload")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &minutes.Media{
		Filename:    hdr.Filename,
		ContentType: contentType(hdr),
		Data:        data,
	}, nil
}

func contentType(hdr *multipart.FileHeader) string {
	if ct := hdr.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
