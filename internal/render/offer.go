package render

import (
	"strconv"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/ingveliz02ia/Club-del-cafe/internal/countdown"
	"github.com/ingveliz02ia/Club-del-cafe/internal/offer"
)

// BuyLabel is the text of the main checkout button.
const BuyLabel = "COMPRA AHORA"

// TimerView is the countdown state the timer box is rendered with, so the
// digits are correct before the first streamed tick arrives.
type TimerView struct {
	Minutes     int
	Seconds     int
	RemainingMs int64
	Deadline    int64
	StreamURL   string
}

// NewTimerView derives the first tick for deadline at nowMs.
func NewTimerView(deadline, nowMs int64, streamURL string) TimerView {
	remaining := deadline - nowMs
	if remaining < 0 {
		remaining = 0
	}
	m, s := countdown.Split(remaining)
	return TimerView{Minutes: m, Seconds: s, RemainingMs: remaining, Deadline: deadline, StreamURL: streamURL}
}

// Offer renders the pricing panel. The timer box is included only when the
// document enables it.
func Offer(doc *offer.Document, timer TimerView) g.Node {
	o := doc.OfferSection()
	buy := safeURL(doc.BuyURL())

	hero := offer.SafeString(o.HeroImage, "")
	downloads := offer.SafeString(o.DownloadsText, "")
	title := offer.SafeString(o.Title, "")
	subtitle := offer.SafeString(o.Subtitle, "")
	oldPrice := offer.FormatMoney(o.PriceOld, o.Currency)
	newPrice := offer.FormatMoney(o.PriceNew, o.Currency)
	badge := offer.SafeString(o.BadgeText, "")
	urgency := offer.SafeString(o.UrgencyText, "")
	viewing := offer.SafeString(o.ViewingText, "")

	return Section(
		Class("offer-wrap"),
		Div(
			Class("offer-grid"),
			Div(
				Class("offer-left"),
				g.If(hero != "", Img(Src(hero), Alt("Producto"))),
			),
			Div(
				Class("offer-right"),
				g.If(downloads != "", Div(Class("small-muted"), richText(downloads))),
				g.If(title != "", H1(Class("offer-title"), richText(title))),
				g.If(subtitle != "", P(Class("offer-subtitle"), richText(subtitle))),
				Div(
					Class("price-row"),
					g.If(oldPrice != "", Div(Class("price-old"), g.Text(oldPrice))),
					g.If(newPrice != "", Div(Class("price-new"), g.Text(newPrice))),
				),
				g.If(badge != "", Div(Class("badge"), richText(badge))),
				g.If(urgency != "", Div(Class("urgency"), richText(urgency))),
				A(Class("add-cart"), Href(buy), Target("_blank"), g.Text(BuyLabel)),
				g.If(viewing != "", Div(Class("viewing"), g.Text("👁️ "), richText(viewing))),
				g.If(o.Timer.Enabled(), TimerBox(o.Timer, buy, timer)),
				guarantee(o.Guarantee),
			),
		),
	)
}

func guarantee(gr *offer.Guarantee) g.Node {
	if gr == nil {
		return nil
	}
	title := offer.SafeString(gr.Title, "")
	text := offer.SafeString(gr.Text, "")
	if title == "" && text == "" {
		return nil
	}
	return Div(
		Class("guarantee"),
		g.If(title != "", P(Class("guarantee-title"), richText(title))),
		g.If(text != "", P(Class("guarantee-text"), richText(text))),
	)
}

// TimerBox renders the countdown panel with #tMin and #tSec pre-filled.
func TimerBox(cfg *offer.TimerConfig, buy string, view TimerView) g.Node {
	return Div(
		Class("timer-box"), ID("timerBox"),
		Data("deadline", strconv.FormatInt(view.Deadline, 10)),
		Data("remaining", strconv.FormatInt(view.RemainingMs, 10)),
		g.If(view.StreamURL != "", Data("stream", view.StreamURL)),
		P(Class("timer-title"), richText(cfg.Title())),
		P(Class("timer-sub"), richText(cfg.Subtitle())),
		Div(
			Class("timer-row"),
			timePill("tMin", view.Minutes, "minutos"),
			timePill("tSec", view.Seconds, "segundos"),
		),
		A(Class("timer-cta"), Href(safeURL(buy)), Target("_blank"), richText(cfg.CTAText())),
	)
}

func timePill(id string, value int, label string) g.Node {
	return Div(
		Class("time-pill"),
		Div(Class("time-num"), ID(id), g.Text(countdown.FormatDigits(value))),
		Div(Class("time-label"), g.Text(label)),
	)
}
