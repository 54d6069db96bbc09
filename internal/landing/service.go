// Package landing assembles the landing page: it loads the offer document,
// resolves the visitor's countdown and composes the rendered sections.
package landing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	g "maragu.dev/gomponents"

	"github.com/ingveliz02ia/Club-del-cafe/internal/clock"
	"github.com/ingveliz02ia/Club-del-cafe/internal/countdown"
	"github.com/ingveliz02ia/Club-del-cafe/internal/offer"
	"github.com/ingveliz02ia/Club-del-cafe/internal/platform/observability"
	"github.com/ingveliz02ia/Club-del-cafe/internal/render"
)

// ErrTimerDisabled is returned by Timer when the document has no active timer.
var ErrTimerDisabled = errors.New("landing: offer timer disabled")

// ErrNoDeadline is returned by Timer when the visitor has no stored deadline
// yet. Only a page view starts a countdown.
var ErrNoDeadline = errors.New("landing: no countdown deadline stored")

// DocumentLoader fetches the offer document.
type DocumentLoader interface {
	Load(ctx context.Context, source string) (*offer.Document, error)
}

// Config wires a Service.
type Config struct {
	Loader      DocumentLoader
	Source      string
	SiteTitle   string
	Clock       clock.Clock
	StreamURL   string
	TrackURL    string
	AssetPrefix string
	PixelID     string
}

// Service builds pages. It holds no per-visitor state; the countdown store
// passed to each call carries that.
type Service struct {
	loader      DocumentLoader
	source      string
	siteTitle   string
	clock       clock.Clock
	streamURL   string
	trackURL    string
	assetPrefix string
	pixelID     string
}

// NewService validates cfg and builds a Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Loader == nil {
		return nil, errors.New("landing: document loader is required")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	title := cfg.SiteTitle
	if title == "" {
		title = offer.DefaultSiteTitle
	}
	return &Service{
		loader:      cfg.Loader,
		source:      cfg.Source,
		siteTitle:   title,
		clock:       clk,
		streamURL:   cfg.StreamURL,
		trackURL:    cfg.TrackURL,
		assetPrefix: cfg.AssetPrefix,
		pixelID:     cfg.PixelID,
	}, nil
}

// Timer is a resolved countdown.
type Timer struct {
	Key      string
	Deadline int64
}

// Page is a fully built landing page.
type Page struct {
	Title string
	Timer *Timer
	Node  g.Node
}

// Build loads the document and renders the page. A load failure aborts the
// build: no partial page is produced.
func (s *Service) Build(ctx context.Context, store countdown.Store) (*Page, error) {
	doc, err := s.loader.Load(ctx, s.source)
	if err != nil {
		return nil, err
	}

	page := &Page{Title: doc.PageTitle(s.siteTitle)}

	var view render.TimerView
	if cfg := doc.TimerSettings(); cfg.Enabled() {
		timer := s.resolve(ctx, store, cfg)
		page.Timer = &timer
		view = render.NewTimerView(timer.Deadline, s.clock.Now().UnixMilli(), s.streamURL)
	}

	buy := doc.BuyURL()
	offerBlock := render.Offer(doc, view)
	page.Node = render.Page(render.PageData{
		Title:       page.Title,
		AssetPrefix: s.assetPrefix,
		TrackURL:    s.trackURL,
		PixelID:     s.pixelID,
		Images:      render.Gallery(doc.Images, offerBlock, render.ExtraButtons(doc.ExtraButtons, buy, offer.PositionBeforeOffer)),
		Extras:      render.Extras(doc.ExtraImages),
		BeforeFAQ:   render.ExtraButtons(doc.ExtraButtons, buy, offer.PositionBeforeFAQ),
		FAQ:         render.FAQ(doc.FAQ),
		Bonuses:     render.Bonuses(doc.Bonuses),
		WhatsApp:    render.WhatsApp(doc.WhatsApp),
	})
	return page, nil
}

// Timer reads the visitor's stored countdown without rendering anything. It
// never creates or restarts a deadline; an elapsed one is returned unchanged.
func (s *Service) Timer(ctx context.Context, store countdown.Store) (Timer, error) {
	doc, err := s.loader.Load(ctx, s.source)
	if err != nil {
		return Timer{}, err
	}
	cfg := doc.TimerSettings()
	if !cfg.Enabled() {
		return Timer{}, ErrTimerDisabled
	}
	key := cfg.Key()
	resolver := countdown.NewResolver(store, countdown.WithClock(s.clock))
	deadline, ok, err := resolver.Lookup(ctx, key)
	if err != nil {
		return Timer{}, fmt.Errorf("landing: lookup countdown: %w", err)
	}
	if !ok {
		return Timer{}, ErrNoDeadline
	}
	return Timer{Key: key, Deadline: deadline}, nil
}

// Clock returns the service's time source.
func (s *Service) Clock() clock.Clock {
	return s.clock
}

func (s *Service) resolve(ctx context.Context, store countdown.Store, cfg *offer.TimerConfig) Timer {
	key := cfg.Key()
	resolver := countdown.NewResolver(store, countdown.WithClock(s.clock))
	deadline, err := resolver.ResolveDeadline(ctx, key, cfg.Minutes())
	if err != nil {
		// the fresh deadline is still usable for this response
		observability.FromContext(ctx).Warn("landing: countdown deadline not persisted",
			zap.String("key", key), zap.Error(fmt.Errorf("resolve deadline: %w", err)))
	}
	return Timer{Key: key, Deadline: deadline}
}
