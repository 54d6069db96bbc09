package render

import (
	"strings"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// Mount point ids emitted by the layout.
const (
	MountImages  = "images"
	MountExtras  = "extras"
	MountFAQ     = "faq"
	MountBonuses = "bonuses"
)

// PageData is everything the layout needs. Section nodes may be nil.
type PageData struct {
	Title       string
	AssetPrefix string
	TrackURL    string
	PixelID     string

	Images    g.Node
	Extras    g.Node
	BeforeFAQ []g.Node
	FAQ       g.Node
	Bonuses   g.Node
	WhatsApp  g.Node
}

// Page renders the full document.
func Page(data PageData) g.Node {
	assets := strings.TrimRight(data.AssetPrefix, "/")
	if assets == "" {
		assets = "/assets"
	}
	return Doctype(
		HTML(
			Lang("es"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				TitleEl(g.Text(data.Title)),
				Link(Rel("stylesheet"), Href(assets+"/landing.css")),
				pixelBase(data.PixelID),
			),
			Body(
				g.If(data.TrackURL != "", Data("track-url", data.TrackURL)),
				Main(
					Class("page"),
					Div(ID(MountImages), Class("images"), data.Images),
					Div(ID(MountExtras), Class("extras"), data.Extras),
					group(data.BeforeFAQ...),
					Div(ID(MountFAQ), data.FAQ),
					Div(ID(MountBonuses), data.Bonuses),
				),
				data.WhatsApp,
				Script(Src(assets+"/landing.js"), Defer()),
			),
		),
	)
}

// pixelBase emits the Meta Pixel bootstrap for a numeric pixel id.
func pixelBase(id string) g.Node {
	id = strings.TrimSpace(id)
	if id == "" || strings.Trim(id, "0123456789") != "" {
		return nil
	}
	return Script(g.Raw(`!function(f,b,e,v,n,t,s){if(f.fbq)return;n=f.fbq=function(){n.callMethod?` +
		`n.callMethod.apply(n,arguments):n.queue.push(arguments)};if(!f._fbq)f._fbq=n;n.push=n;n.loaded=!0;` +
		`n.version='2.0';n.queue=[];t=b.createElement(e);t.async=!0;t.src=v;s=b.getElementsByTagName(e)[0];` +
		`s.parentNode.insertBefore(t,s)}(window,document,'script','https://connect.facebook.net/en_US/fbevents.js');` +
		`fbq('init','` + id + `');fbq('track','PageView');`))
}
