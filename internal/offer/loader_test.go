package offer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "meta": {"title": "El Club del Café"},
  "links": {"buy": "https://pay.hotmart.com/X123"},
  "images": ["/img/1.webp", "/img/2.webp", "/img/3.webp"],
  "offer": {
    "title": "Recetario",
    "priceOld": 49.9,
    "priceNew": 29.9,
    "currency": "USD",
    "timer": {"enabled": true, "minutes": 15, "key": "promoA"}
  },
  "faq": [{"q": "¿Cómo recibo?", "a": "Por <b>email</b>"}]
}`

func TestLoadHTTPSendsNoCacheHeaders(t *testing.T) {
	var (
		calls int
		seen  http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		seen = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleJSON))
	}))
	t.Cleanup(srv.Close)

	doc, err := NewLoader(WithHTTPClient(srv.Client())).Load(context.Background(), srv.URL+"/data/offer.json")
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, "no-cache, no-store", seen.Get("Cache-Control"))
	require.Equal(t, "no-cache", seen.Get("Pragma"))
	require.Equal(t, "El Club del Café", doc.PageTitle(""))
	require.Len(t, doc.Images, 3)
	require.True(t, doc.TimerSettings().Enabled())
	require.Equal(t, "promoA", doc.TimerSettings().Key())
	require.Equal(t, "USD 29.9", FormatMoney(doc.Offer.PriceNew, doc.Offer.Currency))
}

func TestLoadHTTPStatusFailure(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := NewLoader(WithHTTPClient(srv.Client())).Load(context.Background(), srv.URL+"/offer.json")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrLoad))
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	require.Equal(t, http.StatusNotFound, loadErr.Status)
	require.Equal(t, 1, calls, "a failed load is never retried")
}

func TestLoadHTTPUndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	t.Cleanup(srv.Close)

	_, err := NewLoader(WithHTTPClient(srv.Client())).Load(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrLoad)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	require.Zero(t, loadErr.Status)
}

func TestLoadHTTPYAMLByContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write([]byte("meta:\n  title: Desde YAML\nextraButtons:\n  - text: Quiero\n    position: beforeFAQ\n"))
	}))
	t.Cleanup(srv.Close)

	doc, err := NewLoader(WithHTTPClient(srv.Client())).Load(context.Background(), srv.URL+"/offer")
	require.NoError(t, err)
	require.Equal(t, "Desde YAML", doc.PageTitle(""))
	require.Len(t, doc.ExtraButtons, 1)
	require.Equal(t, PositionBeforeFAQ, doc.ExtraButtons[0].Position.String())
}

func TestLoadFileReadsFreshEachTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "offer.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"meta":{"title":"uno"}}`), 0o600))

	loader := NewLoader()
	doc, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "uno", doc.PageTitle(""))

	require.NoError(t, os.WriteFile(path, []byte(`{"meta":{"title":"dos"}}`), 0o600))
	doc, err = loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "dos", doc.PageTitle(""))
}

func TestLoadYAMLFileByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offer.yml")
	require.NoError(t, os.WriteFile(path, []byte("offer:\n  priceNew: 19.90\n  currency: EUR\n"), 0o600))

	doc, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "EUR 19.9", FormatMoney(doc.Offer.PriceNew, doc.Offer.Currency))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	require.ErrorIs(t, err, ErrLoad)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadEmptySource(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), "  ")
	require.ErrorIs(t, err, ErrLoad)
}

func TestLoadBundledSampleDocument(t *testing.T) {
	doc, err := NewLoader().Load(context.Background(), filepath.Join("..", "..", "data", "offer.json"))
	require.NoError(t, err)

	require.Equal(t, "El Club del Café", doc.PageTitle(DefaultSiteTitle))
	require.Equal(t, "https://pay.hotmart.com/CLUBCAFE", doc.BuyURL())
	require.Len(t, doc.Images, 4)
	require.Equal(t, "USD 49.9", FormatMoney(doc.Offer.PriceOld, doc.Offer.Currency))
	timer := doc.TimerSettings()
	require.True(t, timer.Enabled())
	require.Equal(t, 15.0, timer.Minutes())
	require.Equal(t, "club-cafe", timer.Key())
	require.Equal(t, FormatMarkdown, doc.FAQ[1].AnswerFormat())
}

func TestLoadToleratesWrongTypedOptionalFields(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		check func(t *testing.T, doc *Document)
	}{
		{"numeric title", `{"meta":{"title":2025}}`, func(t *testing.T, doc *Document) {
			require.Equal(t, "2025", doc.PageTitle("fallback"))
		}},
		{"numeric faq answer", `{"faq":[{"q":"Precio?","a":29.9}]}`, func(t *testing.T, doc *Document) {
			require.Len(t, doc.FAQ, 1)
			require.Equal(t, "29.9", SafeString(doc.FAQ[0].A, ""))
		}},
		{"numeric whatsapp message", `{"whatsapp":{"number":"5511","message":42}}`, func(t *testing.T, doc *Document) {
			require.Equal(t, "42", SafeString(doc.WhatsApp.Message, ""))
		}},
		{"numeric button position", `{"extraButtons":[{"text":"Quiero","position":1}]}`, func(t *testing.T, doc *Document) {
			require.Len(t, doc.ExtraButtons, 1)
			require.Equal(t, "1", doc.ExtraButtons[0].Position.String())
			require.Equal(t, "Quiero", SafeString(doc.ExtraButtons[0].Text, ""))
		}},
		{"boolean currency", `{"offer":{"priceNew":10,"currency":true}}`, func(t *testing.T, doc *Document) {
			require.Equal(t, "true 10", FormatMoney(doc.Offer.PriceNew, doc.Offer.Currency))
		}},
		{"object timer title reads as absent", `{"offer":{"timer":{"enabled":true,"title":{"es":"Hoy"}}}}`, func(t *testing.T, doc *Document) {
			require.Equal(t, DefaultTimerTitle, doc.TimerSettings().Title())
		}},
		{"array faq format", `{"faq":[{"q":"x","a":"y","format":["markdown"]}]}`, func(t *testing.T, doc *Document) {
			require.Equal(t, FormatHTML, doc.FAQ[0].AnswerFormat())
		}},
		{"non-array lists", `{"images":"a.webp","faq":{"q":"x"},"bonuses":3}`, func(t *testing.T, doc *Document) {
			require.Empty(t, doc.Images)
			require.Empty(t, doc.FAQ)
			require.Empty(t, doc.Bonuses)
		}},
		{"bad list elements", `{"images":["/1.webp",7,"/2.webp"],"faq":[5,{"q":"ok"}]}`, func(t *testing.T, doc *Document) {
			require.Equal(t, []string{"/1.webp", "/2.webp"}, []string(doc.Images))
			require.Len(t, doc.FAQ, 2)
			require.Equal(t, "ok", SafeString(doc.FAQ[1].Q, ""))
		}},
		{"non-object sections", `{"meta":"x","links":5,"offer":[1],"whatsapp":true}`, func(t *testing.T, doc *Document) {
			require.Equal(t, "fallback", doc.PageTitle("fallback"))
			require.Equal(t, DefaultBuyURL, doc.BuyURL())
			require.False(t, doc.TimerSettings().Enabled())
			require.False(t, doc.WhatsApp.Number.Truthy())
		}},
		{"non-object root", `[1,2,3]`, func(t *testing.T, doc *Document) {
			require.Equal(t, "fallback", doc.PageTitle("fallback"))
			require.Empty(t, doc.Images)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "offer.json")
			require.NoError(t, os.WriteFile(path, []byte(tc.body), 0o600))

			doc, err := NewLoader().Load(context.Background(), path)
			require.NoError(t, err)
			tc.check(t, doc)
		})
	}
}

func TestLoadToleratesWrongTypedYAMLFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offer.yaml")
	body := "meta:\n  title: 2025\nfaq:\n  - q: Precio?\n    a: 29.90\n    format: [markdown]\nwhatsapp:\n  number: 5511\n  message: 42\nextraButtons:\n  - text: Quiero\n    position: 1\nbonuses: nada\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	doc, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "2025", doc.PageTitle(""))
	require.Equal(t, "29.9", SafeString(doc.FAQ[0].A, ""))
	require.Equal(t, FormatHTML, doc.FAQ[0].AnswerFormat())
	require.Equal(t, "42", SafeString(doc.WhatsApp.Message, ""))
	require.Equal(t, "1", doc.ExtraButtons[0].Position.String())
	require.Empty(t, doc.Bonuses)
}
