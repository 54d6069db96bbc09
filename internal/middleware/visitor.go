package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// VisitorCookieName holds the anonymous visitor id.
const VisitorCookieName = "landing_vid"

const visitorMaxAge = 365 * 24 * time.Hour

type ctxKey string

const ctxKeyVisitor ctxKey = "visitor_id"

// VisitorConfig configures the visitor cookie.
type VisitorConfig struct {
	Secure bool
	Now    func() time.Time
}

// Visitor makes sure every request carries a stable anonymous visitor id. The
// id scopes server-side countdown stores and the checkout click debounce.
func Visitor(cfg VisitorConfig) func(http.Handler) http.Handler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := readVisitorCookie(r)
			if id == "" {
				id = ulid.MustNew(ulid.Timestamp(now()), ulid.DefaultEntropy()).String()
				http.SetCookie(w, &http.Cookie{
					Name:     VisitorCookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(visitorMaxAge / time.Second),
					Expires:  now().Add(visitorMaxAge),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithVisitorID(r.Context(), id)))
		})
	}
}

func readVisitorCookie(r *http.Request) string {
	c, err := r.Cookie(VisitorCookieName)
	if err != nil {
		return ""
	}
	id, err := ulid.ParseStrict(strings.TrimSpace(c.Value))
	if err != nil {
		return ""
	}
	return id.String()
}

// WithVisitorID stores the visitor id in context.
func WithVisitorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyVisitor, id)
}

// VisitorID returns the visitor id attached by Visitor, or "".
func VisitorID(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyVisitor).(string)
	return v
}

// VisitorFromRequest adapts VisitorID for request-scoped callers such as the
// request logger.
func VisitorFromRequest(r *http.Request) string {
	return VisitorID(r.Context())
}
