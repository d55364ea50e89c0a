package handler

import (
	"context"
	"net/http"

	"github.com/sakif/my-applications/internal/apperror"
	"github.com/sakif/my-applications/internal/auth"
	"github.com/sakif/my-applications/internal/service"
)

// ActivityHandler exposes the per-user collections under /user. Every route
// sits behind auth.RequireUser; GET lists, POST mutates and DELETE clears,
// and all three answer with the collection as it now stands.
type ActivityHandler struct {
	svc *service.ActivityService
}

func NewActivityHandler(svc *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

func (h *ActivityHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.svc.Recent)
}

func (h *ActivityHandler) PostRecent(w http.ResponseWriter, r *http.Request) {
	serveBody(w, r, h.svc.TouchRecent)
}

func (h *ActivityHandler) DeleteRecent(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.svc.ClearRecent)
}

func (h *ActivityHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.svc.Usage)
}

func (h *ActivityHandler) PostUsage(w http.ResponseWriter, r *http.Request) {
	serveBody(w, r, h.svc.RecordUsage)
}

func (h *ActivityHandler) DeleteUsage(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.svc.ClearUsage)
}

func (h *ActivityHandler) GetFavourites(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.svc.Favourites)
}

func (h *ActivityHandler) PostFavourites(w http.ResponseWriter, r *http.Request) {
	serveBody(w, r, h.svc.ToggleFavourite)
}

func (h *ActivityHandler) DeleteFavourites(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.svc.ClearFavourites)
}

func (h *ActivityHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.svc.Suggestions)
}

func (h *ActivityHandler) PostSuggestions(w http.ResponseWriter, r *http.Request) {
	serveBody(w, r, h.svc.AddSuggestion)
}

func (h *ActivityHandler) DeleteSuggestions(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.svc.ClearSuggestions)
}

func serveList[T any](w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID string) (T, error)) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, apperror.Unauthorized("Could not validate credentials"))
		return
	}

	out, err := fn(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

func serveBody[In, T any](w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID string, in In) (T, error)) {
	var in In
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	serveList(w, r, func(ctx context.Context, userID string) (T, error) {
		return fn(ctx, userID, in)
	})
}
