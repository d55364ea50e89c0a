package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sakif/my-applications/internal/apperror"
	"github.com/sakif/my-applications/internal/logger"
	"github.com/sakif/my-applications/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
// Only this package can create a key of this type, so nothing else can read
// or shadow the user stored under it.
type contextKey string

const userKey contextKey = "user"

// unauthorizedBody is sent for every identity-resolution failure. Keeping it
// byte-identical across causes is what stops callers from probing accounts.
const unauthorizedBody = `{"error":"unauthorized","message":"Could not validate credentials","detail":"Could not validate credentials"}` + "\n"

// TokenVerifier is the part of TokenService the middleware needs.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// UserLookup loads an identity row by id. It must return an error matching
// apperror.ErrNotFound when the row does not exist.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// RequireUser guards per-user routes.
//
// It reads the bearer token from the Authorization header, verifies it, then
// loads the user it names. A missing or malformed header, an invalid or
// expired token, and a user deleted after the token was issued all end in
// the same 401 response before the wrapped handler runs. On success the
// *model.User is available through UserFromContext.
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireUser(tokens TokenVerifier, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.FromRequest(r)

			raw, ok := BearerToken(r)
			if !ok {
				log.Debug().Msg("auth: missing or malformed Authorization header")
				writeUnauthorized(w)
				return
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				log.Debug().Err(err).Msg("auth: token rejected")
				writeUnauthorized(w)
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, apperror.ErrNotFound) {
					log.Debug().Str("user_id", claims.UserID).Msg("auth: token subject no longer exists")
					writeUnauthorized(w)
					return
				}
				log.Err(err).Str("user_id", claims.UserID).Msg("auth: loading user")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal_error","message":"An internal error occurred","detail":"An internal error occurred"}` + "\n"))
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user resolved by RequireUser.
//
// Returns (nil, false) outside a RequireUser-protected route.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// WithUser returns a copy of ctx carrying u. Used by tests that call
// handlers directly without going through RequireUser.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(unauthorizedBody))
}
