package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const viewerIDKey contextKey = "viewerID"

// Verifier is the subset of TokenService the middleware needs.
type Verifier interface {
	Verify(tokenStr string, kind TokenKind) (string, error)
}

// AccessTokenCookie is the cookie name browsers present access tokens under.
const AccessTokenCookie = "accessToken"

// Require gates a route on a valid access token, presented either as an
// Authorization bearer header or the access-token cookie. On success the
// viewer id is placed on the request context.
func Require(tokens Verifier, reject http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewerID, err := extractViewer(r, tokens)
			if err != nil {
				reject(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), viewerID)))
		})
	}
}

// Optional resolves the viewer when a valid token is present but never
// rejects. Public views with viewer-relative fields use this.
func Optional(tokens Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if viewerID, err := extractViewer(r, tokens); err == nil {
				r = r.WithContext(WithViewer(r.Context(), viewerID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithViewer stores the authenticated viewer id on the context.
func WithViewer(ctx context.Context, viewerID string) context.Context {
	if viewerID == "" {
		return ctx
	}
	return context.WithValue(ctx, viewerIDKey, viewerID)
}

// ViewerFromContext returns the authenticated viewer id, or "" when the
// request is anonymous.
func ViewerFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(viewerIDKey).(string); ok {
		return id
	}
	return ""
}

func extractViewer(r *http.Request, tokens Verifier) (string, error) {
	raw := ""
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		raw = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	} else if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		raw = cookie.Value
	}
	if raw == "" {
		return "", ErrTokenInvalid
	}
	return tokens.Verify(raw, KindAccess)
}
