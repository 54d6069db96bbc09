package render

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/ingveliz02ia/Club-del-cafe/internal/offer"
)

// offerSlot is the index of the image the offer block follows.
const offerSlot = 2

// Gallery renders the primary images with the offer block after the third
// image. beforeOffer buttons go right after the first image; each one is
// placed directly behind the image, so later buttons end up first.
func Gallery(images []string, offerBlock g.Node, beforeOffer []g.Node) g.Node {
	nodes := make([]g.Node, 0, len(images)+len(beforeOffer)+1)
	for i, src := range images {
		nodes = append(nodes, Img(Src(src)))
		if i == 0 {
			for j := len(beforeOffer) - 1; j >= 0; j-- {
				nodes = append(nodes, beforeOffer[j])
			}
		}
		if i == offerSlot {
			nodes = append(nodes, offerBlock)
		}
	}
	return group(nodes...)
}

// Extras renders the additional images shown after the gallery.
func Extras(images []string) g.Node {
	return group(g.Map(images, func(src string) g.Node {
		return Img(Src(src))
	})...)
}

// ExtraButton renders one call-to-action linking to the checkout.
func ExtraButton(text, buy string) g.Node {
	return Div(
		Class("extra-btn-wrap"),
		A(Href(safeURL(buy)), Target("_blank"), Class("buy-animated"), richText(text)),
	)
}

// ExtraButtons renders the buttons configured for position, in document order.
// Buttons with any other position are skipped.
func ExtraButtons(buttons []offer.ExtraButton, buy, position string) []g.Node {
	var out []g.Node
	for _, b := range buttons {
		if b.Position.String() != position {
			continue
		}
		out = append(out, ExtraButton(offer.SafeString(b.Text, ""), buy))
	}
	return out
}
