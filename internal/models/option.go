package models

import "github.com/shopspring/decimal"

// Option is a catalog entry: a priced, named product option (window/door
// types included) keyed by its catalog identifier. Reference data only;
// offers store option IDs, invoices snapshot option names at derivation.
type Option struct {
	ID       string          `gorm:"column:id_opcji;primaryKey" json:"id_opcji"`
	Category string          `gorm:"column:kategoria;not null;index" json:"kategoria"`
	Name     string          `gorm:"column:nazwa;not null" json:"nazwa"`
	NetPrice decimal.Decimal `gorm:"column:cena_netto_eur;type:decimal(10,2);not null;default:0" json:"cena_netto_eur"`
}

func (Option) TableName() string { return "options" }
