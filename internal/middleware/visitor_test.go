package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

func visitorEcho() http.Handler {
	return Visitor(VisitorConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(VisitorID(r.Context())))
	}))
}

func TestVisitorIssuesCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	visitorEcho().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, VisitorCookieName, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	require.Equal(t, cookies[0].Value, rec.Body.String())

	_, err := ulid.ParseStrict(cookies[0].Value)
	require.NoError(t, err)
}

func TestVisitorReusesValidCookie(t *testing.T) {
	id := ulid.MustNew(ulid.Timestamp(time.Unix(1_700_000_000, 0)), ulid.DefaultEntropy()).String()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookieName, Value: id})

	rec := httptest.NewRecorder()
	visitorEcho().ServeHTTP(rec, req)
	require.Equal(t, id, rec.Body.String())
	require.Empty(t, rec.Result().Cookies())
}

func TestVisitorReplacesForgedCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookieName, Value: "../../etc"})

	rec := httptest.NewRecorder()
	visitorEcho().ServeHTTP(rec, req)
	require.NotEqual(t, "../../etc", rec.Body.String())
	require.Len(t, rec.Result().Cookies(), 1)
}
