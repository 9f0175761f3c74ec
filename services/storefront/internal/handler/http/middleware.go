package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/pkg/httputil"
	"github.com/utafrali/EcommerceGo/pkg/logger"
	"github.com/utafrali/EcommerceGo/pkg/middleware"
	"github.com/utafrali/EcommerceGo/pkg/validator"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/region"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/session"
)

const (
	// RegionHeader selects the region for a single request.
	RegionHeader = "X-Region"
	// RegionCookie remembers the shopper's region between requests.
	RegionCookie = "region"
)

type contextKey string

const registryKey contextKey = "registry"

// SessionConfig wires the per-request session registry.
type SessionConfig struct {
	CookieName   string
	CookieSecure bool
	// TokenTTL is the lifetime of the active cart token.
	TokenTTL time.Duration
	// Sessions returns the session store for a session id.
	Sessions func(sessionID string) repository.SessionStore
	// Tokens returns the token store for the current request.
	Tokens func(w http.ResponseWriter, r *http.Request, sessionID string) repository.TokenStore
}

// Session identifies the shopper by session cookie, issuing a new id when the
// cookie is missing or malformed, and places a Registry built over that
// session's stores in the request context.
func Session(cfg SessionConfig, base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if c, err := r.Cookie(cfg.CookieName); err == nil {
				if id, err := uuid.Parse(c.Value); err == nil {
					sessionID = id.String()
				}
			}
			if sessionID == "" {
				sessionID = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := logger.WithSessionID(r.Context(), sessionID)
			r = middleware.Relog(r.WithContext(ctx), base)

			reg := session.NewRegistry(
				cfg.Sessions(sessionID),
				cfg.Tokens(w, r, sessionID),
				cfg.TokenTTL,
				logger.FromContext(r.Context()),
			)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), registryKey, reg)))
		})
	}
}

// registryFromContext returns the registry stored by the Session middleware.
func registryFromContext(ctx context.Context) (*session.Registry, bool) {
	reg, ok := ctx.Value(registryKey).(*session.Registry)
	return reg, ok && reg != nil
}

type regionInput struct {
	Code string `validate:"alphanum,min=2,max=8"`
}

// Region resolves the request's region from the X-Region header, then the
// region cookie, then fallback. A malformed code is rejected with 400.
func Region(fallback string, base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := region.Normalize(r.Header.Get(RegionHeader))
			if code == "" {
				if c, err := r.Cookie(RegionCookie); err == nil {
					code = region.Normalize(c.Value)
				}
			}
			if code == "" {
				code = fallback
			}

			if err := validator.Validate(regionInput{Code: code}); err != nil {
				httputil.WriteError(w, r, apperrors.InvalidInput("invalid region code "+code), base)
				return
			}

			ctx := region.NewContext(r.Context(), code)
			ctx = logger.WithRegion(ctx, code)
			next.ServeHTTP(w, middleware.Relog(r.WithContext(ctx), base))
		})
	}
}

// ContentTypeJSON rejects request bodies that are not JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
