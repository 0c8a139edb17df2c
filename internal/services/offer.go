// Package services holds the domain core: the offer aggregate builder and
// query engine, the invoice derivation engine, and the document model
// resolver that feeds the renderer.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mjaworski/window-offers/internal/apperrors"
	"github.com/mjaworski/window-offers/internal/models"
	"github.com/mjaworski/window-offers/internal/validation"
)

// CatalogResolver is the read side of the option catalog the invoice and
// document engines depend on. Satisfied by *catalog.Repository.
type CatalogResolver interface {
	Resolve(ctx context.Context, ids []string) (map[string]models.Option, error)
}

type OfferService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewOfferService(db *gorm.DB, log *zap.Logger) *OfferService {
	return &OfferService{db: db, log: log}
}

type OfferItemInput struct {
	ProductTypeID string            `json:"typ"`
	WidthMM       int               `json:"szerokosc"`
	HeightMM      int               `json:"wysokosc"`
	Configuration map[string]string `json:"konfiguracja"`
	UnitNetPrice  decimal.Decimal   `json:"cena_netto"`
	Quantity      int               `json:"ilosc"`
}

type OfferCreateInput struct {
	Number     string           `json:"numer"`
	Date       time.Time        `json:"data"`
	Client     string           `json:"klient"`
	Notes      string           `json:"uwagi"`
	NetTotal   decimal.Decimal  `json:"suma_netto"`
	VATTotal   decimal.Decimal  `json:"suma_vat"`
	GrossTotal decimal.Decimal  `json:"suma_brutto"`
	Items      []OfferItemInput `json:"items"`
}

// OfferUpdateInput is a partial header patch. A non-nil Items slice
// replaces the entire item list; there is no per-item patching.
type OfferUpdateInput struct {
	Number     *string           `json:"numer"`
	Date       *time.Time        `json:"data"`
	Client     *string           `json:"klient"`
	Notes      *string           `json:"uwagi"`
	NetTotal   *decimal.Decimal  `json:"suma_netto"`
	VATTotal   *decimal.Decimal  `json:"suma_vat"`
	GrossTotal *decimal.Decimal  `json:"suma_brutto"`
	Items      *[]OfferItemInput `json:"items"`
}

func validateItems(items []OfferItemInput) validation.Violations {
	v := validation.Violations{}
	if len(items) == 0 {
		v["items"] = "required"
		return v
	}
	for i, it := range items {
		validation.Required(fmt.Sprintf("items[%d].typ", i), it.ProductTypeID, v)
		validation.RangeInt(fmt.Sprintf("items[%d].szerokosc", i), it.WidthMM, models.MinDimensionMM, models.MaxDimensionMM, v)
		validation.RangeInt(fmt.Sprintf("items[%d].wysokosc", i), it.HeightMM, models.MinDimensionMM, models.MaxDimensionMM, v)
		validation.NonNegative(fmt.Sprintf("items[%d].cena_netto", i), it.UnitNetPrice, v)
		if it.Quantity < 0 {
			v[fmt.Sprintf("items[%d].ilosc", i)] = "must_be_positive"
		}
	}
	return v
}

func buildItems(offerID uint, inputs []OfferItemInput) []models.OfferItem {
	items := make([]models.OfferItem, 0, len(inputs))
	for _, in := range inputs {
		qty := in.Quantity
		if qty == 0 {
			qty = 1
		}
		cfg := in.Configuration
		if cfg == nil {
			cfg = map[string]string{}
		}
		items = append(items, models.OfferItem{
			OfferID:       offerID,
			ProductTypeID: in.ProductTypeID,
			WidthMM:       in.WidthMM,
			HeightMM:      in.HeightMM,
			Configuration: datatypes.NewJSONType(cfg),
			UnitNetPrice:  in.UnitNetPrice,
			Quantity:      qty,
		})
	}
	return items
}

// Create validates and persists a new offer with its items atomically.
// Totals are stored as supplied; the configurator client owns that math.
func (s *OfferService) Create(ctx context.Context, in OfferCreateInput, userID uint) (*models.Offer, error) {
	v := validateItems(in.Items)
	validation.Required("numer", in.Number, v)
	validation.MinLen("klient", in.Client, 3, v)
	validation.NonNegative("suma_netto", in.NetTotal, v)
	validation.NonNegative("suma_vat", in.VATTotal, v)
	validation.NonNegative("suma_brutto", in.GrossTotal, v)
	if !v.Empty() {
		return nil, apperrors.Validation("validation_failed", v)
	}

	offer := models.Offer{
		UserID:     userID,
		Number:     in.Number,
		Date:       in.Date,
		Client:     in.Client,
		Notes:      in.Notes,
		NetTotal:   in.NetTotal,
		VATTotal:   in.VATTotal,
		GrossTotal: in.GrossTotal,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&offer).Error; err != nil {
			return err
		}
		items := buildItems(offer.ID, in.Items)
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, offer.ID)
}

// Get loads one offer with its items in insertion order.
func (s *OfferService) Get(ctx context.Context, id uint) (*models.Offer, error) {
	var offer models.Offer
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&offer, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("offer_not_found")
		}
		return nil, err
	}
	return &offer, nil
}

// Update applies a partial header patch; when Items is present the whole
// item list is replaced (delete-all, insert-all) in the same transaction.
func (s *OfferService) Update(ctx context.Context, offer *models.Offer, in OfferUpdateInput) (*models.Offer, error) {
	v := validation.Violations{}
	if in.Number != nil {
		validation.Required("numer", *in.Number, v)
	}
	if in.Client != nil {
		validation.MinLen("klient", *in.Client, 3, v)
	}
	if in.NetTotal != nil {
		validation.NonNegative("suma_netto", *in.NetTotal, v)
	}
	if in.VATTotal != nil {
		validation.NonNegative("suma_vat", *in.VATTotal, v)
	}
	if in.GrossTotal != nil {
		validation.NonNegative("suma_brutto", *in.GrossTotal, v)
	}
	if in.Items != nil {
		for field, code := range validateItems(*in.Items) {
			v[field] = code
		}
	}
	if !v.Empty() {
		return nil, apperrors.Validation("validation_failed", v)
	}

	updates := map[string]any{}
	if in.Number != nil {
		updates["numer"] = *in.Number
	}
	if in.Date != nil {
		updates["data"] = *in.Date
	}
	if in.Client != nil {
		updates["klient"] = *in.Client
	}
	if in.Notes != nil {
		updates["uwagi"] = *in.Notes
	}
	if in.NetTotal != nil {
		updates["suma_netto"] = *in.NetTotal
	}
	if in.VATTotal != nil {
		updates["suma_vat"] = *in.VATTotal
	}
	if in.GrossTotal != nil {
		updates["suma_brutto"] = *in.GrossTotal
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Offer{}).Where("id = ?", offer.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		if in.Items != nil {
			if err := tx.Where("offer_id = ?", offer.ID).Delete(&models.OfferItem{}).Error; err != nil {
				return err
			}
			items := buildItems(offer.ID, *in.Items)
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, offer.ID)
}

// Delete removes an offer and its items atomically. A missing id is a
// no-op here; callers that need a 404 check existence first. Derived
// invoices keep their snapshot and a dangling offer reference.
func (s *OfferService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("offer_id = ?", id).Delete(&models.OfferItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Offer{}, id).Error
	})
}

// OfferFilter narrows and orders List results. SortBy accepts the header
// column names of the list payload; anything unrecognized falls back to
// the offer date. Any direction other than "asc" sorts descending.
type OfferFilter struct {
	Search        string
	DateFrom      *time.Time
	DateTo        *time.Time
	SortBy        string
	SortDirection string
}

// offer header columns callers may sort by; guards the ORDER BY clause
var offerSortColumns = map[string]string{
	"id":          "id",
	"numer":       "numer",
	"data":        "data",
	"klient":      "klient",
	"uwagi":       "uwagi",
	"suma_netto":  "suma_netto",
	"suma_vat":    "suma_vat",
	"suma_brutto": "suma_brutto",
}

// List returns offers for one owner, or across all owners when userID is
// nil (admin callers only; the boundary enforces that). Search is a
// case-insensitive substring match over number, client, and notes.
func (s *OfferService) List(ctx context.Context, userID *uint, f OfferFilter) ([]models.Offer, error) {
	q := s.db.WithContext(ctx).Model(&models.Offer{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("lower(numer) LIKE ? OR lower(klient) LIKE ? OR lower(uwagi) LIKE ?", like, like, like)
	}
	if f.DateFrom != nil {
		q = q.Where("data >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("data <= ?", *f.DateTo)
	}

	column, ok := offerSortColumns[f.SortBy]
	if !ok {
		column = "data"
	}
	direction := "desc"
	if f.SortDirection == "asc" {
		direction = "asc"
	}
	q = q.Order(column + " " + direction)

	var offers []models.Offer
	if err := q.Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}
