package render

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/ingveliz02ia/Club-del-cafe/internal/offer"
)

// FAQHeading titles the accordion.
const FAQHeading = "PREGUNTAS FRECUENTES"

const (
	faqIcon = `<svg fill="none" viewBox="0 0 24 24" stroke-width="2"><path stroke-linecap="round" stroke-linejoin="round" d="M7 3h7l5 5v13a1 1 0 0 1-1 1H7a1 1 0 0 1-1-1V4a1 1 0 0 1 1-1z"/><path stroke-linecap="round" stroke-linejoin="round" d="M14 3v5h5"/></svg>`

	whatsappIcon = `<svg viewBox="0 0 24 24"><path d="M20.5 3.5A11.8 11.8 0 0012.1 0C5.5 0 .2 5.3.2 11.9c0 2.1.6 4.1 1.7 5.9L0 24l6.4-1.9a11.9 11.9 0 005.7 1.5c6.6 0 11.9-5.3 11.9-11.9 0-3.2-1.3-6.2-3.5-8.2zM12.1 21.5c-1.9 0-3.7-.5-5.3-1.4l-.4-.2-3.8 1.1 1.1-3.7-.2-.4a9.6 9.6 0 01-1.5-5.1C2 6.6 6.6 2 12.1 2s10.1 4.6 10.1 10.1-4.6 10.4-10.1 10.4zm5.6-7.7c-.3-.1-1.7-.8-2-.9-.3-.1-.5-.1-.7.1s-.8.9-1 .9c-.2 0-.4 0-.7-.2s-1.2-.4-2.2-1.4c-.8-.7-1.4-1.6-1.5-1.8-.1-.2 0-.4.1-.6.1-.1.3-.3.4-.5.1-.2.2-.3.3-.5.1-.2 0-.4 0-.6 0-.1-.7-1.6-.9-2.2-.2-.5-.4-.4-.7-.4h-.6c-.2 0-.6.1-.9.4s-1.2 1.2-1.2 3 .9 3.5 1 3.7c.1.2 1.8 2.8 4.5 3.9.6.3 1.1.4 1.5.6.6.2 1.2.2 1.6.1.5-.1 1.7-.7 1.9-1.3.2-.6.2-1.1.1-1.3-.1-.2-.3-.2-.6-.3z"/></svg>`
)

// FAQ renders the accordion. The heading is always present; rows toggle
// open on the client.
func FAQ(items []offer.FAQItem) g.Node {
	return Div(
		Class("faq-wrap"),
		H2(g.Text(FAQHeading)),
		Div(
			Class("faq-list"), ID("faqList"),
			g.Group(g.Map(items, faqRow)),
		),
	)
}

func faqRow(item offer.FAQItem) g.Node {
	answer := offer.SafeString(item.A, "")
	var body g.Node
	if item.AnswerFormat() == offer.FormatMarkdown {
		body = markdownText(answer)
	} else {
		body = richText(answer)
	}
	return Div(
		Class("faq-row"),
		Button(
			Class("faq-btn"), Type("button"),
			Div(Class("faq-icon"), g.Raw(faqIcon)),
			Div(Class("faq-q"), richText(offer.SafeString(item.Q, ""))),
			Div(Class("faq-arrow"), g.Text("▾")),
		),
		Div(Class("faq-a"), body),
	)
}

// Bonuses renders the bonus grid, or nothing when there are no bonuses.
func Bonuses(items []offer.Bonus) g.Node {
	if len(items) == 0 {
		return nil
	}
	return Section(
		Class("bonuses-wrap"),
		Div(
			Class("bonuses-grid"), ID("bonusesGrid"),
			g.Group(g.Map(items, bonusCard)),
		),
	)
}

func bonusCard(b offer.Bonus) g.Node {
	return Article(
		Class("bonusV"),
		Div(
			Class("bonusV-media"),
			Img(Src(offer.SafeString(b.Image, "")), Alt("")),
			Div(Class("bonusV-tag"), richText(offer.SafeString(b.Tag, ""))),
			Div(
				Class("bonusV-overlay"),
				Div(Class("bonusV-desc"), richText(offer.SafeString(b.Desc, ""))),
			),
		),
		Div(Class("bonusV-footer"), richText(offer.SafeString(b.Subtitle, ""))),
	)
}

// WhatsAppLink builds the wa.me deep link for cfg.
func WhatsAppLink(cfg *offer.WhatsApp) string {
	if cfg == nil {
		return ""
	}
	return "https://wa.me/" + cfg.Number.String() + "?text=" + encodeURIComponent(offer.SafeString(cfg.Message, ""))
}

// WhatsApp renders the floating contact button, or nothing without a number.
func WhatsApp(cfg *offer.WhatsApp) g.Node {
	if cfg == nil || !cfg.Number.Truthy() {
		return nil
	}
	return A(
		Href(WhatsAppLink(cfg)),
		Target("_blank"),
		Rel("noopener"),
		Class("whatsapp-float"),
		Aria("label", "WhatsApp"),
		g.Raw(whatsappIcon),
	)
}
