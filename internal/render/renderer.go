// Package render turns resolved document models into printable bytes.
// The services layer treats it as opaque: the models it hands over are
// complete and the renderer does no further lookups.
package render

import "github.com/mjaworski/window-offers/internal/services"

type Renderer interface {
	RenderOffer(doc *services.OfferDocument) ([]byte, error)
	RenderInvoice(doc *services.InvoiceDocument) ([]byte, error)
}
