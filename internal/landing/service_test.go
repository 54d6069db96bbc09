package landing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ingveliz02ia/Club-del-cafe/internal/clock"
	"github.com/ingveliz02ia/Club-del-cafe/internal/countdown"
	"github.com/ingveliz02ia/Club-del-cafe/internal/offer"
	"github.com/ingveliz02ia/Club-del-cafe/internal/testutil"
)

type stubLoader struct {
	doc   *offer.Document
	err   error
	calls int
}

func (s *stubLoader) Load(context.Context, string) (*offer.Document, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.doc, nil
}

func str(s string) *offer.Text { return offer.NewText(s) }

func fullDocument() *offer.Document {
	return &offer.Document{
		Meta:        &offer.Meta{Title: str("Recetas de Café")},
		Links:       &offer.Links{Buy: str("https://pay.hotmart.com/X123")},
		Images:      []string{"/i/1.webp", "/i/2.webp", "/i/3.webp", "/i/4.webp"},
		ExtraImages: []string{"/e/1.webp"},
		Offer: &offer.Offer{
			Title:    str("Recetario"),
			PriceNew: offer.NumberScalar(29.9),
			Currency: str("USD"),
			Timer: &offer.TimerConfig{
				EnabledRaw: offer.StringScalar("on"),
				MinutesRaw: offer.NumberScalar(15),
				KeyRaw:     offer.StringScalar("promoA"),
			},
		},
		FAQ:     []offer.FAQItem{{Q: str("¿Cuándo?"), A: str("Ya")}},
		Bonuses: []offer.Bonus{{Image: str("/b.png"), Tag: str("BONO")}},
		ExtraButtons: []offer.ExtraButton{
			{Text: str("Arriba"), Position: str(offer.PositionBeforeOffer)},
			{Text: str("Abajo"), Position: str(offer.PositionBeforeFAQ)},
		},
		WhatsApp: &offer.WhatsApp{Number: offer.NumberScalar(5511999), Message: str("Hola")},
	}
}

func newTestService(t *testing.T, loader DocumentLoader) (*Service, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.UnixMilli(0))
	svc, err := NewService(Config{
		Loader:    loader,
		Source:    "data/offer.json",
		Clock:     clk,
		StreamURL: "/countdown/stream",
		TrackURL:  "/track/checkout",
	})
	require.NoError(t, err)
	return svc, clk
}

func TestBuildComposesPageInOrder(t *testing.T) {
	svc, _ := newTestService(t, &stubLoader{doc: fullDocument()})

	page, err := svc.Build(context.Background(), countdown.NewMemoryStore())
	require.NoError(t, err)
	require.Equal(t, "Recetas de Café", page.Title)
	require.NotNil(t, page.Timer)
	require.Equal(t, "promoA", page.Timer.Key)
	require.EqualValues(t, 900_000, page.Timer.Deadline)

	var buf bytes.Buffer
	require.NoError(t, page.Node.Render(&buf))
	doc := testutil.ParseHTML(t, buf.Bytes())

	require.Equal(t, "Recetas de Café", doc.Find("title").Text())
	require.Equal(t, "15", doc.Find("#tMin").Text())
	require.Equal(t, "00", doc.Find("#tSec").Text())

	images := doc.Find("#images").Children()
	require.True(t, images.Eq(0).Is("img"))
	require.True(t, images.Eq(1).Is(".extra-btn-wrap"))
	require.True(t, images.Eq(4).Is("section.offer-wrap"))
	require.Equal(t, 1, doc.Find("#extras img").Length())

	before := doc.Find("#faq").Prev()
	require.True(t, before.Is(".extra-btn-wrap"))
	require.Equal(t, 1, doc.Find("#faq .faq-row").Length())
	require.Equal(t, 1, doc.Find("#bonuses article").Length())
	require.Equal(t, "https://wa.me/5511999?text=Hola", doc.Find("a.whatsapp-float").AttrOr("href", ""))
}

func TestBuildKeepsDeadlineAcrossReloads(t *testing.T) {
	svc, clk := newTestService(t, &stubLoader{doc: fullDocument()})
	store := countdown.NewMemoryStore()

	first, err := svc.Build(context.Background(), store)
	require.NoError(t, err)

	clk.Advance(time.Minute)
	second, err := svc.Build(context.Background(), store)
	require.NoError(t, err)
	require.Equal(t, first.Timer.Deadline, second.Timer.Deadline)

	var buf bytes.Buffer
	require.NoError(t, second.Node.Render(&buf))
	doc := testutil.ParseHTML(t, buf.Bytes())
	require.Equal(t, "14", doc.Find("#tMin").Text())
}

func TestBuildAbortsOnLoadFailure(t *testing.T) {
	loadErr := &offer.LoadError{Source: "x", Status: 500}
	svc, _ := newTestService(t, &stubLoader{err: loadErr})

	page, err := svc.Build(context.Background(), countdown.NewMemoryStore())
	require.Nil(t, page)
	require.ErrorIs(t, err, offer.ErrLoad)
}

func TestBuildWithoutTimerSkipsDeadline(t *testing.T) {
	doc := fullDocument()
	doc.Offer.Timer = nil
	svc, _ := newTestService(t, &stubLoader{doc: doc})
	store := countdown.NewMemoryStore()

	page, err := svc.Build(context.Background(), store)
	require.NoError(t, err)
	require.Nil(t, page.Timer)

	_, ok, err := store.Get(context.Background(), countdown.StorageName("club-cafe"))
	require.NoError(t, err)
	require.False(t, ok, "a disabled timer must not create a deadline")

	_, err = svc.Timer(context.Background(), store)
	require.ErrorIs(t, err, ErrTimerDisabled)
}

func TestBuildEmptyDocument(t *testing.T) {
	svc, _ := newTestService(t, &stubLoader{doc: &offer.Document{}})
	page, err := svc.Build(context.Background(), countdown.NewMemoryStore())
	require.NoError(t, err)
	require.Equal(t, offer.DefaultSiteTitle, page.Title)

	var buf bytes.Buffer
	require.NoError(t, page.Node.Render(&buf))
	doc := testutil.ParseHTML(t, buf.Bytes())
	require.Equal(t, 0, doc.Find("#images").Children().Length())
	require.Equal(t, 0, doc.Find("a.whatsapp-float").Length())
	require.Equal(t, 1, doc.Find("#faq h2").Length())
}

type readOnlyStore struct{ countdown.Store }

func (readOnlyStore) Set(context.Context, string, string) error { return errors.New("read only") }

func TestBuildRendersWhenDeadlineCannotPersist(t *testing.T) {
	svc, _ := newTestService(t, &stubLoader{doc: fullDocument()})
	page, err := svc.Build(context.Background(), readOnlyStore{countdown.NewMemoryStore()})
	require.NoError(t, err)
	require.EqualValues(t, 900_000, page.Timer.Deadline)
}

func TestTimerReadsWithoutCreating(t *testing.T) {
	loader := &stubLoader{doc: fullDocument()}
	svc, clk := newTestService(t, loader)
	store := countdown.NewMemoryStore()
	ctx := context.Background()

	_, err := svc.Timer(ctx, store)
	require.ErrorIs(t, err, ErrNoDeadline)
	_, ok, _ := store.Get(ctx, countdown.StorageName("promoA"))
	require.False(t, ok, "only a page view starts the countdown")

	page, err := svc.Build(ctx, store)
	require.NoError(t, err)

	timer, err := svc.Timer(ctx, store)
	require.NoError(t, err)
	require.Equal(t, Timer{Key: "promoA", Deadline: page.Timer.Deadline}, timer)
	require.EqualValues(t, 900_000, timer.Deadline)

	clk.Advance(20 * time.Minute)
	timer, err = svc.Timer(ctx, store)
	require.NoError(t, err)
	require.EqualValues(t, 900_000, timer.Deadline, "an elapsed deadline is not restarted")
	require.Equal(t, 3, loader.calls)
}

func TestTimerStoreFailure(t *testing.T) {
	svc, _ := newTestService(t, &stubLoader{doc: fullDocument()})
	_, err := svc.Timer(context.Background(), brokenStore{})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoDeadline)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("store down")
}
func (brokenStore) Set(context.Context, string, string) error { return errors.New("store down") }

func TestBuildRendersWrongTypedOptionalFields(t *testing.T) {
	raw := `{
		"meta": {"title": 2025},
		"faq": [{"q": "¿Precio?", "a": 29.9, "format": ["md"]}],
		"whatsapp": {"number": "5491100000000", "message": 42},
		"extraButtons": [{"text": "Ver", "position": 1}],
		"bonuses": "none"
	}`
	var doc offer.Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	svc, _ := newTestService(t, &stubLoader{doc: &doc})
	page, err := svc.Build(context.Background(), countdown.NewMemoryStore())
	require.NoError(t, err)
	require.Equal(t, "2025", page.Title)

	var buf bytes.Buffer
	require.NoError(t, page.Node.Render(&buf))
	require.Contains(t, buf.String(), "29.9")
}

func TestNewServiceRequiresLoader(t *testing.T) {
	_, err := NewService(Config{})
	require.Error(t, err)
}
