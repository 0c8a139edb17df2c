package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mjaworski/window-offers/internal/models"
)

// csv column headers, as exported by the pricing spreadsheet
var csvHeader = []string{"ID_OPCJI", "KATEGORIA", "NAZWA", "CENA_NETTO_EUR"}

// ImportCSV replaces the whole catalog from a CSV export in one
// transaction: a malformed row aborts the import and keeps the old
// catalog. Returns the number of imported options.
func (r *Repository) ImportCSV(ctx context.Context, rd io.Reader) (int, error) {
	cr := csv.NewReader(rd)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	idx, err := headerIndex(header)
	if err != nil {
		return 0, err
	}

	var opts []models.Option
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read csv line %d: %w", line, err)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(rec[idx["CENA_NETTO_EUR"]]))
		if err != nil {
			return 0, fmt.Errorf("csv line %d: bad price: %w", line, err)
		}
		opts = append(opts, models.Option{
			ID:       strings.TrimSpace(rec[idx["ID_OPCJI"]]),
			Category: strings.TrimSpace(rec[idx["KATEGORIA"]]),
			Name:     strings.TrimSpace(rec[idx["NAZWA"]]),
			NetPrice: price,
		})
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Option{}).Error; err != nil {
			return err
		}
		if len(opts) == 0 {
			return nil
		}
		return tx.Create(&opts).Error
	})
	if err != nil {
		return 0, err
	}
	return len(opts), nil
}

func headerIndex(header []string) (map[string]int, error) {
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	for _, want := range csvHeader {
		if _, ok := idx[want]; !ok {
			return nil, fmt.Errorf("csv missing column %s", want)
		}
	}
	return idx, nil
}
