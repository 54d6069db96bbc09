package offer

// Defaults shown when the document leaves a field out.
const (
	DefaultSiteTitle     = "El Club del Café"
	DefaultBuyURL        = "#"
	DefaultTimerMinutes  = 15
	DefaultTimerKey      = "club-cafe"
	DefaultTimerTitle    = "OFERTA SOLO POR HOY"
	DefaultTimerSubtitle = "Tu lugar estará reservado por 15 minutos"
	DefaultTimerCTA      = "Aprovechar oferta"
)

// Safe returns fallback when v is absent and *v otherwise, even if *v is the
// zero value.
func Safe[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

// SafeString is Safe for document text: fallback when absent, the text
// otherwise, even if it is empty.
func SafeString(v *Text, fallback string) string {
	if !v.Present() {
		return fallback
	}
	return v.String()
}

// FormatMoney joins currency and amount with a single space. An absent amount
// yields "", an absent currency is treated as "". No symbol lookup or locale
// formatting is applied.
func FormatMoney(amount *Scalar, currency *Text) string {
	if !amount.Present() {
		return ""
	}
	return SafeString(currency, "") + " " + amount.String()
}

// PageTitle is meta.title, or fallback when it is missing or empty.
func (d *Document) PageTitle(fallback string) string {
	if fallback == "" {
		fallback = DefaultSiteTitle
	}
	if d == nil || d.Meta == nil || d.Meta.Title.String() == "" {
		return fallback
	}
	return d.Meta.Title.String()
}

// BuyURL is the checkout link, "#" when absent.
func (d *Document) BuyURL() string {
	if d == nil || d.Links == nil {
		return DefaultBuyURL
	}
	return SafeString(d.Links.Buy, DefaultBuyURL)
}

// OfferSection returns the offer panel data, empty when absent.
func (d *Document) OfferSection() Offer {
	if d == nil || d.Offer == nil {
		return Offer{}
	}
	return *d.Offer
}

// TimerSettings returns the offer timer config; nil when absent, which the
// TimerConfig accessors accept.
func (d *Document) TimerSettings() *TimerConfig {
	if d == nil || d.Offer == nil {
		return nil
	}
	return d.Offer.Timer
}

// Enabled reports whether the timer box and countdown are shown.
func (t *TimerConfig) Enabled() bool {
	return t != nil && t.EnabledRaw.Truthy()
}

// Minutes is the countdown length for a fresh deadline. Values that do not
// coerce to a number fall back to the default.
func (t *TimerConfig) Minutes() float64 {
	if t == nil || !t.MinutesRaw.Present() {
		return DefaultTimerMinutes
	}
	m, ok := t.MinutesRaw.Float()
	if !ok {
		return DefaultTimerMinutes
	}
	return m
}

// Key scopes the persisted deadline.
func (t *TimerConfig) Key() string {
	if t == nil || !t.KeyRaw.Present() {
		return DefaultTimerKey
	}
	return t.KeyRaw.String()
}

// Title is the timer box heading.
func (t *TimerConfig) Title() string {
	if t == nil {
		return DefaultTimerTitle
	}
	return SafeString(t.TitleRaw, DefaultTimerTitle)
}

// Subtitle is the line under the timer heading.
func (t *TimerConfig) Subtitle() string {
	if t == nil {
		return DefaultTimerSubtitle
	}
	return SafeString(t.SubRaw, DefaultTimerSubtitle)
}

// CTAText labels the checkout button inside the timer box.
func (t *TimerConfig) CTAText() string {
	if t == nil {
		return DefaultTimerCTA
	}
	return SafeString(t.CTARaw, DefaultTimerCTA)
}

// AnswerFormat normalises the FAQ answer format, html by default.
func (f FAQItem) AnswerFormat() string {
	if f.Format.String() == FormatMarkdown {
		return FormatMarkdown
	}
	return FormatHTML
}
