package services

import (
	"context"
	_ "embed"
	"encoding/base64"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mjaworski/window-offers/internal/models"
)

// Placeholder labels used when an offer item references a catalog id that
// no longer (or never did) exist. The offer document path substitutes
// these instead of failing: a printable document always comes out, even
// with stale catalog references.
const (
	UnknownProductLabel = "Unknown Product"
	UnknownOptionLabel  = "Unknown Option"
)

// displayVATRate is the fixed presentational VAT percentage shown on
// offer documents, independent of any stored rate.
const displayVATRate = 23

const documentDateFormat = "02.01.2006"

//go:embed assets/logo.svg
var brandingLogo []byte

// OfferDocument is the render-ready model for an offer quote. Every field
// the template needs is resolved here; the renderer does no lookups.
type OfferDocument struct {
	Number        string
	Date          string
	Client        string
	Notes         string
	Items         []OfferDocumentItem
	TotalQuantity int
	NetTotal      decimal.Decimal
	VATTotal      decimal.Decimal
	GrossTotal    decimal.Decimal
	VATRate       int
	LogoDataURI   string
	Year          int
}

type OfferDocumentItem struct {
	Position      int
	TypeName      string
	WidthMM       int
	HeightMM      int
	Configuration map[string]string
	UnitNetPrice  decimal.Decimal
	Quantity      int
	LineNetTotal  decimal.Decimal
}

// InvoiceDocument is the render-ready model for an invoice. Items already
// carry their name snapshot and computed amounts, so no catalog
// resolution happens on this path.
type InvoiceDocument struct {
	Number        string
	IssueDate     string
	DueDate       string
	PaymentMethod string
	Client        models.ClientInfo
	Notes         string
	Currency      string
	VATRate       decimal.Decimal
	Items         []InvoiceDocumentItem
	NetTotal      decimal.Decimal
	VATAmount     decimal.Decimal
	GrossTotal    decimal.Decimal
	LogoDataURI   string
	Year          int
}

type InvoiceDocumentItem struct {
	Position    int
	ProductType string
	WidthMM     int
	HeightMM    int
	OptionNames map[string]string
	Quantity    int
	UnitPrice   decimal.Decimal
	NetAmount   decimal.Decimal
	GrossAmount decimal.Decimal
}

// DocumentResolver turns persisted aggregates into render-ready document
// models. Catalog lookups happen only on the offer path; unresolved ids
// get placeholder labels, never errors.
type DocumentResolver struct {
	catalog CatalogResolver
	now     func() time.Time
}

func NewDocumentResolver(catalog CatalogResolver) *DocumentResolver {
	return &DocumentResolver{catalog: catalog, now: time.Now}
}

func logoDataURI() string {
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(brandingLogo)
}

// ResolveOffer resolves product types and configuration options live
// against the catalog and computes per-line and aggregate quantities.
func (r *DocumentResolver) ResolveOffer(ctx context.Context, offer *models.Offer) (*OfferDocument, error) {
	idSet := map[string]struct{}{}
	for _, item := range offer.Items {
		idSet[item.ProductTypeID] = struct{}{}
		for _, optionID := range item.Configuration.Data() {
			idSet[optionID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	options, err := r.catalog.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	doc := &OfferDocument{
		Number:      offer.Number,
		Date:        offer.Date.Format(documentDateFormat),
		Client:      offer.Client,
		Notes:       offer.Notes,
		NetTotal:    offer.NetTotal,
		VATTotal:    offer.VATTotal,
		GrossTotal:  offer.GrossTotal,
		VATRate:     displayVATRate,
		LogoDataURI: logoDataURI(),
		Year:        r.now().Year(),
	}
	for i, item := range offer.Items {
		typeName := UnknownProductLabel
		if opt, ok := options[item.ProductTypeID]; ok {
			typeName = opt.Name
		}
		cfg := map[string]string{}
		for category, optionID := range item.Configuration.Data() {
			if opt, ok := options[optionID]; ok {
				cfg[category] = opt.Name
			} else {
				cfg[category] = UnknownOptionLabel
			}
		}
		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		doc.Items = append(doc.Items, OfferDocumentItem{
			Position:      i + 1,
			TypeName:      typeName,
			WidthMM:       item.WidthMM,
			HeightMM:      item.HeightMM,
			Configuration: cfg,
			UnitNetPrice:  item.UnitNetPrice,
			Quantity:      qty,
			LineNetTotal:  item.UnitNetPrice.Mul(decimal.NewFromInt(int64(qty))),
		})
		doc.TotalQuantity += qty
	}
	return doc, nil
}

// ResolveInvoice reformats dates and attaches presentation assets; the
// snapshot on the items is used as stored.
func (r *DocumentResolver) ResolveInvoice(inv *models.Invoice) *InvoiceDocument {
	doc := &InvoiceDocument{
		Number:        inv.Number,
		IssueDate:     inv.IssueDate.Format(documentDateFormat),
		DueDate:       inv.DueDate.Format(documentDateFormat),
		PaymentMethod: inv.PaymentMethod,
		Client:        inv.ClientInfo.Data(),
		Notes:         inv.Notes,
		Currency:      inv.Currency,
		VATRate:       inv.VATRate,
		NetTotal:      inv.NetTotal,
		VATAmount:     inv.VATAmount,
		GrossTotal:    inv.GrossTotal,
		LogoDataURI:   logoDataURI(),
		Year:          r.now().Year(),
	}
	for i, item := range inv.Items {
		doc.Items = append(doc.Items, InvoiceDocumentItem{
			Position:    i + 1,
			ProductType: item.ProductType,
			WidthMM:     item.WidthMM,
			HeightMM:    item.HeightMM,
			OptionNames: item.OptionNames.Data(),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			NetAmount:   item.NetAmount,
			GrossAmount: item.GrossAmount,
		})
	}
	return doc
}
