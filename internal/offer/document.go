// Package offer models the landing page's offer document and loads it from a
// URL or a file. Every field is optional; accessors resolve absent values to
// the defaults the page shows.
package offer

// Document is the root of the offer data file.
type Document struct {
	Meta         *Meta             `json:"meta,omitempty" yaml:"meta,omitempty"`
	Links        *Links            `json:"links,omitempty" yaml:"links,omitempty"`
	Images       List[string]      `json:"images,omitempty" yaml:"images,omitempty"`
	ExtraImages  List[string]      `json:"extraImages,omitempty" yaml:"extraImages,omitempty"`
	Offer        *Offer            `json:"offer,omitempty" yaml:"offer,omitempty"`
	FAQ          List[FAQItem]     `json:"faq,omitempty" yaml:"faq,omitempty"`
	Bonuses      List[Bonus]       `json:"bonuses,omitempty" yaml:"bonuses,omitempty"`
	ExtraButtons List[ExtraButton] `json:"extraButtons,omitempty" yaml:"extraButtons,omitempty"`
	WhatsApp     *WhatsApp         `json:"whatsapp,omitempty" yaml:"whatsapp,omitempty"`
}

type Meta struct {
	Title *Text `json:"title,omitempty" yaml:"title,omitempty"`
}

type Links struct {
	Buy *Text `json:"buy,omitempty" yaml:"buy,omitempty"`
}

// Offer is the pricing panel shown inside the gallery.
type Offer struct {
	Title         *Text        `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle      *Text        `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	DownloadsText *Text        `json:"downloadsText,omitempty" yaml:"downloadsText,omitempty"`
	PriceOld      *Scalar      `json:"priceOld,omitempty" yaml:"priceOld,omitempty"`
	PriceNew      *Scalar      `json:"priceNew,omitempty" yaml:"priceNew,omitempty"`
	Currency      *Text        `json:"currency,omitempty" yaml:"currency,omitempty"`
	BadgeText     *Text        `json:"badgeText,omitempty" yaml:"badgeText,omitempty"`
	UrgencyText   *Text        `json:"urgencyText,omitempty" yaml:"urgencyText,omitempty"`
	ViewingText   *Text        `json:"viewingText,omitempty" yaml:"viewingText,omitempty"`
	HeroImage     *Text        `json:"heroImage,omitempty" yaml:"heroImage,omitempty"`
	Guarantee     *Guarantee   `json:"guarantee,omitempty" yaml:"guarantee,omitempty"`
	Timer         *TimerConfig `json:"timer,omitempty" yaml:"timer,omitempty"`
}

type Guarantee struct {
	Title *Text `json:"title,omitempty" yaml:"title,omitempty"`
	Text  *Text `json:"text,omitempty" yaml:"text,omitempty"`
}

// TimerConfig identifies one countdown session by Key.
type TimerConfig struct {
	EnabledRaw *Scalar `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	MinutesRaw *Scalar `json:"minutes,omitempty" yaml:"minutes,omitempty"`
	KeyRaw     *Scalar `json:"key,omitempty" yaml:"key,omitempty"`
	TitleRaw   *Text   `json:"title,omitempty" yaml:"title,omitempty"`
	SubRaw     *Text   `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	CTARaw     *Text   `json:"ctaText,omitempty" yaml:"ctaText,omitempty"`
}

// FAQ answer formats.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

type FAQItem struct {
	Q      *Text `json:"q,omitempty" yaml:"q,omitempty"`
	A      *Text `json:"a,omitempty" yaml:"a,omitempty"`
	Format *Text `json:"format,omitempty" yaml:"format,omitempty"`
}

type Bonus struct {
	Image    *Text `json:"image,omitempty" yaml:"image,omitempty"`
	Tag      *Text `json:"tag,omitempty" yaml:"tag,omitempty"`
	Desc     *Text `json:"desc,omitempty" yaml:"desc,omitempty"`
	Subtitle *Text `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
}

// Extra button positions.
const (
	PositionBeforeOffer = "beforeOffer"
	PositionBeforeFAQ   = "beforeFAQ"
)

type ExtraButton struct {
	Text     *Text `json:"text,omitempty" yaml:"text,omitempty"`
	Position *Text `json:"position,omitempty" yaml:"position,omitempty"`
}

type WhatsApp struct {
	Number  *Scalar `json:"number,omitempty" yaml:"number,omitempty"`
	Message *Text   `json:"message,omitempty" yaml:"message,omitempty"`
}
