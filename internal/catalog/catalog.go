// Package catalog owns the option reference data: the priced, named
// product options every offer item points at by identifier. Offers store
// IDs and resolve names live; invoices snapshot names at derivation time,
// so catalog edits never rewrite history.
package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mjaworski/window-offers/internal/apperrors"
	"github.com/mjaworski/window-offers/internal/models"
	"github.com/mjaworski/window-offers/internal/validation"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Resolve returns the options matching ids, keyed by id. Missing ids are
// simply absent from the result; callers decide between placeholder and
// omission. Never fails on unknown ids.
func (r *Repository) Resolve(ctx context.Context, ids []string) (map[string]models.Option, error) {
	out := make(map[string]models.Option, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var opts []models.Option
	if err := r.db.WithContext(ctx).Where("id_opcji IN ?", ids).Find(&opts).Error; err != nil {
		return nil, err
	}
	for _, o := range opts {
		out[o.ID] = o
	}
	return out, nil
}

// List returns options, optionally restricted to one category.
func (r *Repository) List(ctx context.Context, category string) ([]models.Option, error) {
	q := r.db.WithContext(ctx).Order("id_opcji")
	if category != "" {
		q = q.Where("kategoria = ?", category)
	}
	var opts []models.Option
	if err := q.Find(&opts).Error; err != nil {
		return nil, err
	}
	return opts, nil
}

// Categories returns the distinct option categories.
func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := r.db.WithContext(ctx).Model(&models.Option{}).
		Distinct("kategoria").Order("kategoria").Pluck("kategoria", &cats).Error
	if err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*models.Option, error) {
	var opt models.Option
	if err := r.db.WithContext(ctx).First(&opt, "id_opcji = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("option_not_found")
		}
		return nil, err
	}
	return &opt, nil
}

// Create inserts a new option. Administrative; duplicate ids conflict.
func (r *Repository) Create(ctx context.Context, opt models.Option) (*models.Option, error) {
	v := validation.Violations{}
	validation.Required("id_opcji", opt.ID, v)
	validation.Required("kategoria", opt.Category, v)
	validation.Required("nazwa", opt.Name, v)
	validation.NonNegative("cena_netto_eur", opt.NetPrice, v)
	if !v.Empty() {
		return nil, apperrors.Validation("validation_failed", v)
	}
	if err := r.db.WithContext(ctx).Create(&opt).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("option_already_exists")
		}
		return nil, err
	}
	return &opt, nil
}

// OptionPatch is a partial update; nil fields are left untouched.
type OptionPatch struct {
	Category *string
	Name     *string
	NetPrice *decimal.Decimal
}

func (r *Repository) Update(ctx context.Context, id string, patch OptionPatch) (*models.Option, error) {
	opt, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if patch.Category != nil {
		updates["kategoria"] = *patch.Category
	}
	if patch.Name != nil {
		updates["nazwa"] = *patch.Name
	}
	if patch.NetPrice != nil {
		if patch.NetPrice.IsNegative() {
			return nil, apperrors.Validation("validation_failed", validation.Violations{"cena_netto_eur": "must_be_non_negative"})
		}
		updates["cena_netto_eur"] = *patch.NetPrice
	}
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(opt).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, id)
}

// Delete removes an option. Historical offers/invoices are untouched:
// offers fall back to placeholder names, invoices keep their snapshot.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Option{}, "id_opcji = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("option_not_found")
	}
	return nil
}
