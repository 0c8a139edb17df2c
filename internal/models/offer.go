package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Offer dimension bounds in millimeters.
const (
	MinDimensionMM = 400
	MaxDimensionMM = 3000
)

// Offer is a priced quote for a client, owned by a single user.
// Totals are supplied by the caller and stored as-is; the server does not
// recompute them from items (the configurator client owns that math).
type Offer struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"column:user_id;not null;index" json:"user_id"`
	Number     string          `gorm:"column:numer;not null" json:"numer"`
	Date       time.Time       `gorm:"column:data;not null;index" json:"data"`
	Client     string          `gorm:"column:klient;not null" json:"klient"`
	Notes      string          `gorm:"column:uwagi" json:"uwagi,omitempty"`
	NetTotal   decimal.Decimal `gorm:"column:suma_netto;type:decimal(10,2);not null;default:0" json:"suma_netto"`
	VATTotal   decimal.Decimal `gorm:"column:suma_vat;type:decimal(10,2);not null;default:0" json:"suma_vat"`
	GrossTotal decimal.Decimal `gorm:"column:suma_brutto;type:decimal(10,2);not null;default:0" json:"suma_brutto"`
	Items      []OfferItem     `gorm:"foreignKey:OfferID" json:"items"`
	CreatedAt  time.Time       `json:"-"`
	UpdatedAt  time.Time       `json:"-"`
}

func (Offer) TableName() string { return "offers" }

// GetUserID implements policy.Ownable.
func (o *Offer) GetUserID() uint { return o.UserID }

// OfferItem is one configured window/door position on an offer.
// ProductTypeID and the Configuration values reference options.id_opcji.
type OfferItem struct {
	ID            uint                                  `gorm:"primaryKey" json:"id"`
	OfferID       uint                                  `gorm:"column:offer_id;not null;index" json:"offer_id"`
	ProductTypeID string                                `gorm:"column:typ;not null" json:"typ"`
	WidthMM       int                                   `gorm:"column:szerokosc;not null" json:"szerokosc"`
	HeightMM      int                                   `gorm:"column:wysokosc;not null" json:"wysokosc"`
	Configuration datatypes.JSONType[map[string]string] `gorm:"column:konfiguracja;not null" json:"konfiguracja"`
	UnitNetPrice  decimal.Decimal                       `gorm:"column:cena_netto;type:decimal(10,2);not null" json:"cena_netto"`
	Quantity      int                                   `gorm:"column:ilosc;not null;default:1" json:"ilosc"`
}

func (OfferItem) TableName() string { return "offer_items" }
