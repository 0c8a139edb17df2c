package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mjaworski/window-offers/internal/apperrors"
	"github.com/mjaworski/window-offers/internal/models"
	"github.com/mjaworski/window-offers/internal/validation"
)

type InvoiceService struct {
	db      *gorm.DB
	catalog CatalogResolver
	log     *zap.Logger
	now     func() time.Time
}

func NewInvoiceService(db *gorm.DB, catalog CatalogResolver, log *zap.Logger) *InvoiceService {
	return &InvoiceService{db: db, catalog: catalog, log: log, now: time.Now}
}

// GenerateNumber builds the human-readable invoice number for an instant.
// Second granularity keeps it unique in practice; concurrent derivations
// within the same second collide and are caught by the unique column.
func GenerateNumber(t time.Time) string {
	return fmt.Sprintf("FV/%d/%02d/%02d/%02d%02d%02d",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// dateOf strips the time-of-day part, keeping the location.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DeriveInput carries the caller-supplied parts of an invoice derivation.
// Zero values fall back to the defaults: issue date today, 14-day term,
// 23% VAT, EUR, bank transfer.
type DeriveInput struct {
	ClientInfo      models.ClientInfo `json:"client_info"`
	IssueDate       *time.Time        `json:"issue_date"`
	PaymentTermDays int               `json:"payment_term_days"`
	PaymentMethod   string            `json:"payment_method"`
	VATRate         *decimal.Decimal  `json:"vat_rate"`
	Currency        string            `json:"currency"`
	Notes           string            `json:"notes"`
}

// DeriveFromOffer creates an invoice from an existing offer: header totals
// are copied verbatim from the offer, per-item amounts are computed from
// quantity x unit price and the VAT rate, and option IDs are resolved to a
// display-name snapshot. Options missing from the catalog are dropped from
// the snapshot. A second-granularity number collision surfaces as a
// Conflict; callers may retry.
func (s *InvoiceService) DeriveFromOffer(ctx context.Context, offerID uint, in DeriveInput) (*models.Invoice, error) {
	v := validation.Violations{}
	validation.Required("client_info.name", in.ClientInfo.Name, v)
	validation.Required("client_info.address", in.ClientInfo.Address, v)
	if in.PaymentTermDays < 0 {
		v["payment_term_days"] = "must_be_non_negative"
	}
	if in.VATRate != nil && in.VATRate.IsNegative() {
		v["vat_rate"] = "must_be_non_negative"
	}
	if !v.Empty() {
		return nil, apperrors.Validation("validation_failed", v)
	}

	var offer models.Offer
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&offer, offerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("offer_not_found")
		}
		return nil, err
	}

	issueDate := dateOf(s.now())
	if in.IssueDate != nil {
		issueDate = *in.IssueDate
	}
	termDays := in.PaymentTermDays
	if termDays == 0 {
		termDays = models.DefaultPaymentTermDays
	}
	vatRate := models.DefaultVATRate()
	if in.VATRate != nil {
		vatRate = *in.VATRate
	}
	currency := in.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}
	paymentMethod := in.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.DefaultPaymentMethod
	}

	// one catalog round trip for all configuration options on the offer
	idSet := map[string]struct{}{}
	for _, item := range offer.Items {
		for _, optionID := range item.Configuration.Data() {
			idSet[optionID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	options, err := s.catalog.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	invoice := models.Invoice{
		OfferID:       offer.ID,
		Number:        GenerateNumber(s.now()),
		IssueDate:     issueDate,
		DueDate:       issueDate.AddDate(0, 0, termDays),
		PaymentMethod: paymentMethod,
		ClientInfo:    datatypes.NewJSONType(in.ClientInfo),
		Notes:         in.Notes,
		VATRate:       vatRate,
		Currency:      currency,
		NetTotal:      offer.NetTotal,
		VATAmount:     offer.VATTotal,
		GrossTotal:    offer.GrossTotal,
	}

	grossFactor := decimal.NewFromInt(1).Add(vatRate)
	items := make([]models.InvoiceItem, 0, len(offer.Items))
	for _, item := range offer.Items {
		names := map[string]string{}
		for category, optionID := range item.Configuration.Data() {
			if opt, ok := options[optionID]; ok {
				names[category] = opt.Name
			} else {
				s.log.Warn("offer item references unknown option, dropping from snapshot",
					zap.Uint("offer_id", offer.ID),
					zap.Uint("offer_item_id", item.ID),
					zap.String("option_id", optionID))
			}
		}
		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		netAmount := item.UnitNetPrice.Mul(decimal.NewFromInt(int64(qty)))
		items = append(items, models.InvoiceItem{
			ProductType: item.ProductTypeID,
			WidthMM:     item.WidthMM,
			HeightMM:    item.HeightMM,
			Quantity:    qty,
			UnitPrice:   item.UnitNetPrice,
			OptionNames: datatypes.NewJSONType(names),
			NetAmount:   netAmount,
			GrossAmount: netAmount.Mul(grossFactor),
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].InvoiceID = invoice.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("invoice_number_collision").Wrap(err)
		}
		return nil, err
	}
	return s.Get(ctx, invoice.ID)
}

// Get loads one invoice with its items in insertion order.
func (s *InvoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&inv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("invoice_not_found")
		}
		return nil, err
	}
	return &inv, nil
}

// ListForOffer returns every invoice derived from one offer. Derivation
// is not exclusive: an offer may have any number of invoices.
func (s *InvoiceService) ListForOffer(ctx context.Context, offerID uint) ([]models.Invoice, error) {
	var invs []models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("offer_id = ?", offerID).Order("id").Find(&invs).Error
	if err != nil {
		return nil, err
	}
	return invs, nil
}

// Delete removes an invoice and its items atomically.
func (s *InvoiceService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Invoice{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("invoice_not_found")
		}
		return tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error
	})
}
