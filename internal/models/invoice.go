package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	DefaultPaymentMethod   = "przelew bankowy"
	DefaultCurrency        = "EUR"
	DefaultPaymentTermDays = 14
)

// DefaultVATRate is the standard VAT rate applied to derived invoices.
func DefaultVATRate() decimal.Decimal { return decimal.NewFromFloat(0.23) }

// ClientInfo is the billing address block stored on an invoice.
type ClientInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	NIP     string `json:"nip,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Invoice is derived once from an offer and never mutated afterwards
// (deletion aside). Header totals are copied verbatim from the source
// offer at derivation time, not recomputed from items.
type Invoice struct {
	ID            uint                           `gorm:"primaryKey" json:"id"`
	OfferID       uint                           `gorm:"column:offer_id;not null;index" json:"offer_id"`
	Number        string                         `gorm:"column:number;uniqueIndex;not null" json:"number"`
	IssueDate     time.Time                      `gorm:"column:issue_date;not null" json:"issue_date"`
	DueDate       time.Time                      `gorm:"column:due_date;not null" json:"due_date"`
	PaymentMethod string                         `gorm:"column:payment_method;not null;default:'przelew bankowy'" json:"payment_method"`
	ClientInfo    datatypes.JSONType[ClientInfo] `gorm:"column:client_info;not null" json:"client_info"`
	Notes         string                         `gorm:"column:notes" json:"notes,omitempty"`
	VATRate       decimal.Decimal                `gorm:"column:vat_rate;type:decimal(5,2);not null;default:0.23" json:"vat_rate"`
	Currency      string                         `gorm:"column:currency;not null;default:'EUR'" json:"currency"`
	NetTotal      decimal.Decimal                `gorm:"column:net_total;type:decimal(10,2);not null;default:0" json:"net_total"`
	VATAmount     decimal.Decimal                `gorm:"column:vat_amount;type:decimal(10,2);not null;default:0" json:"vat_amount"`
	GrossTotal    decimal.Decimal                `gorm:"column:gross_total;type:decimal(10,2);not null;default:0" json:"gross_total"`
	Items         []InvoiceItem                  `gorm:"foreignKey:InvoiceID" json:"items"`
	CreatedAt     time.Time                      `json:"-"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceItem carries a denormalized snapshot of the source offer item:
// option display names, not IDs, so later catalog edits cannot alter an
// issued invoice.
type InvoiceItem struct {
	ID          uint                                  `gorm:"primaryKey" json:"id"`
	InvoiceID   uint                                  `gorm:"column:invoice_id;not null;index" json:"invoice_id"`
	ProductType string                                `gorm:"column:type;not null" json:"type"`
	WidthMM     int                                   `gorm:"column:width;not null" json:"width"`
	HeightMM    int                                   `gorm:"column:height;not null" json:"height"`
	Quantity    int                                   `gorm:"column:quantity;not null;default:1" json:"quantity"`
	UnitPrice   decimal.Decimal                       `gorm:"column:unit_price;type:decimal(10,2);not null" json:"unit_price"`
	OptionNames datatypes.JSONType[map[string]string] `gorm:"column:options;not null" json:"options"`
	NetAmount   decimal.Decimal                       `gorm:"column:net_amount;type:decimal(10,2);not null" json:"net_amount"`
	GrossAmount decimal.Decimal                       `gorm:"column:gross_amount;type:decimal(10,2);not null" json:"gross_amount"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }
