package httpserver_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ingveliz02ia/Club-del-cafe/internal/clock"
	"github.com/ingveliz02ia/Club-del-cafe/internal/countdown"
	"github.com/ingveliz02ia/Club-del-cafe/internal/handlers"
	"github.com/ingveliz02ia/Club-del-cafe/internal/httpserver"
	"github.com/ingveliz02ia/Club-del-cafe/internal/landing"
	custommw "github.com/ingveliz02ia/Club-del-cafe/internal/middleware"
	"github.com/ingveliz02ia/Club-del-cafe/internal/offer"
	"github.com/ingveliz02ia/Club-del-cafe/internal/testutil"
	"github.com/ingveliz02ia/Club-del-cafe/internal/tracking"
)

type staticLoader struct{ doc *offer.Document }

func (s staticLoader) Load(context.Context, string) (*offer.Document, error) { return s.doc, nil }

func str(s string) *offer.Text { return offer.NewText(s) }

func sampleDocument() *offer.Document {
	return &offer.Document{
		Meta:   &offer.Meta{Title: str("El Club del Café")},
		Links:  &offer.Links{Buy: str("https://pay.hotmart.com/X123")},
		Images: []string{"/1.webp", "/2.webp", "/3.webp"},
		Offer: &offer.Offer{Timer: &offer.TimerConfig{
			EnabledRaw: offer.NumberScalar(1),
			MinutesRaw: offer.NumberScalar(15),
		}},
	}
}

type testServer struct {
	*httptest.Server
	clock *clock.Fake
	store *countdown.MemoryStore
}

func newTestServer(t *testing.T, static fstest.MapFS) testServer {
	t.Helper()

	clk := clock.NewFake(time.UnixMilli(1_000_000))
	svc, err := landing.NewService(landing.Config{
		Loader:    staticLoader{doc: sampleDocument()},
		Clock:     clk,
		StreamURL: "/countdown/stream",
		TrackURL:  "/track/checkout",
	})
	require.NoError(t, err)

	store := countdown.NewMemoryStore()
	stores := func(_ http.ResponseWriter, r *http.Request) countdown.Store {
		return store.Scope(custommw.VisitorID(r.Context()))
	}
	tracker := tracking.NewTracker(nil, nil, tracking.WithClock(clk))

	cfg := httpserver.Config{
		Address:  ":0",
		Handlers: handlers.New(svc, stores, tracker),
		Health:   handlers.NewHealthHandlers(handlers.WithHealthBuildInfo(handlers.BuildInfo{Version: "test"})),
		Visitor:  custommw.VisitorConfig{Now: clk.Now},
	}
	if static != nil {
		cfg.Static = static
	}
	srv, err := httpserver.New(cfg)
	require.NoError(t, err)
	require.Zero(t, srv.WriteTimeout)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return testServer{Server: ts, clock: clk, store: store}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func get(t *testing.T, client *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestRouterServesLandingPage(t *testing.T) {
	ts := newTestServer(t, nil)
	client := newClient(t)

	for _, path := range []string{"/", "/index.html"} {
		resp, body := get(t, client, ts.URL+path)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)

		doc := testutil.ParseHTML(t, []byte(body))
		require.Equal(t, "El Club del Café", doc.Find("title").Text())
		require.Equal(t, "15", doc.Find("#tMin").Text())
		require.Equal(t, "/assets/landing.js", doc.Find("script[src]").Last().AttrOr("src", ""))
	}
}

func TestRouterKeepsDeadlinePerVisitor(t *testing.T) {
	ts := newTestServer(t, nil)
	client := newClient(t)

	get(t, client, ts.URL+"/")
	ts.clock.Advance(time.Minute)
	_, body := get(t, client, ts.URL+"/")
	require.Equal(t, "14", testutil.ParseHTML(t, []byte(body)).Find("#tMin").Text())

	// a new visitor starts a fresh countdown
	_, body = get(t, newClient(t), ts.URL+"/")
	require.Equal(t, "15", testutil.ParseHTML(t, []byte(body)).Find("#tMin").Text())
}

func TestRouterIssuesVisitorCookie(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, _ := get(t, http.DefaultClient, ts.URL+"/health")
	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == custommw.VisitorCookieName {
			found = true
			require.True(t, c.HttpOnly)
		}
	}
	require.True(t, found)
}

func TestRouterHeadHasNoBody(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Head(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, body)
}

func TestRouterServesEmbeddedAssets(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := get(t, http.DefaultClient, ts.URL+"/assets/landing.js")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "InitiateCheckout")
	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/assets/landing.js", nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", etag)
	cached, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	cached.Body.Close()
	require.Equal(t, http.StatusNotModified, cached.StatusCode)

	missing, _ := get(t, http.DefaultClient, ts.URL+"/assets/")
	require.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestRouterUsesStaticOverride(t *testing.T) {
	ts := newTestServer(t, fstest.MapFS{"landing.css": {Data: []byte("body{}")}})

	resp, body := get(t, http.DefaultClient, ts.URL+"/assets/landing.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "body{}", body)
}

func TestRouterHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := get(t, http.DefaultClient, ts.URL+"/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body)

	resp, body = get(t, http.DefaultClient, ts.URL+"/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	require.Equal(t, "ok", payload["status"])
	require.Equal(t, "test", payload["version"])
}

func TestRouterExposesMetrics(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := get(t, http.DefaultClient, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "landing_countdown_active_streams")
}

func TestRouterTracksCheckoutPerVisitor(t *testing.T) {
	ts := newTestServer(t, nil)
	click := `{"href":"https://pay.hotmart.com/X123","title":"Café"}`

	post := func(client *http.Client) string {
		resp, err := client.Post(ts.URL+"/track/checkout", "application/json", strings.NewReader(click))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out struct {
			Result string `json:"result"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out.Result
	}

	first := newClient(t)
	get(t, first, ts.URL+"/health")
	require.Equal(t, "tracked", post(first))
	require.Equal(t, "suppressed", post(first))

	second := newClient(t)
	get(t, second, ts.URL+"/health")
	require.Equal(t, "tracked", post(second))

	ts.clock.Advance(1200 * time.Millisecond)
	require.Equal(t, "tracked", post(first))
}

func TestRouterRejectsWrongMethod(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, _ := get(t, http.DefaultClient, ts.URL+"/track/checkout")
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestNewRouterRequiresHandlers(t *testing.T) {
	_, err := httpserver.NewRouter(httpserver.Config{})
	require.Error(t, err)
}
