package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mjaworski/window-offers/internal/apperrors"
	"github.com/mjaworski/window-offers/internal/models"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Option{}))
	return NewRepository(db)
}

func mustCreate(t *testing.T, r *Repository, id, category, name, price string) {
	t.Helper()
	p, err := decimal.NewFromString(price)
	require.NoError(t, err)
	_, err = r.Create(context.Background(), models.Option{ID: id, Category: category, Name: name, NetPrice: p})
	require.NoError(t, err)
}

func TestResolveReturnsOnlyKnownIDs(t *testing.T) {
	r := setupRepo(t)
	mustCreate(t, r, "OPT-1", "kolor", "Złoty Dąb", "25.50")
	mustCreate(t, r, "OPT-2", "okucia", "Maco Multi", "40")

	got, err := r.Resolve(context.Background(), []string{"OPT-1", "OPT-MISSING"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Złoty Dąb", got["OPT-1"].Name)

	// empty input short-circuits
	got, err = r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCreateDuplicateConflicts(t *testing.T) {
	r := setupRepo(t)
	mustCreate(t, r, "OPT-1", "kolor", "Złoty Dąb", "25.50")

	_, err := r.Create(context.Background(), models.Option{ID: "OPT-1", Category: "kolor", Name: "Inny", NetPrice: decimal.NewFromInt(1)})
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	_, err = r.Create(context.Background(), models.Option{ID: "", Category: "kolor", Name: "Bez ID"})
	assert.Equal(t, apperrors.KindValidationFailed, apperrors.KindOf(err))
}

func TestUpdatePatchesOnlyGivenFields(t *testing.T) {
	r := setupRepo(t)
	mustCreate(t, r, "OPT-1", "kolor", "Złoty Dąb", "25.50")

	name := "Orzech"
	got, err := r.Update(context.Background(), "OPT-1", OptionPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Orzech", got.Name)
	assert.Equal(t, "kolor", got.Category)
	assert.True(t, got.NetPrice.Equal(decimal.RequireFromString("25.50")))

	neg := decimal.NewFromInt(-1)
	_, err = r.Update(context.Background(), "OPT-1", OptionPatch{NetPrice: &neg})
	assert.Equal(t, apperrors.KindValidationFailed, apperrors.KindOf(err))

	_, err = r.Update(context.Background(), "OPT-GONE", OptionPatch{Name: &name})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestDeleteAndListByCategory(t *testing.T) {
	r := setupRepo(t)
	mustCreate(t, r, "OPT-1", "kolor", "Złoty Dąb", "25.50")
	mustCreate(t, r, "OPT-2", "kolor", "Orzech", "25.50")
	mustCreate(t, r, "OPT-3", "okucia", "Maco Multi", "40")

	opts, err := r.List(context.Background(), "kolor")
	require.NoError(t, err)
	require.Len(t, opts, 2)

	cats, err := r.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"kolor", "okucia"}, cats)

	require.NoError(t, r.Delete(context.Background(), "OPT-3"))
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(r.Delete(context.Background(), "OPT-3")))

	cats, err = r.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"kolor"}, cats)
}

func TestImportCSVReplacesCatalog(t *testing.T) {
	r := setupRepo(t)
	mustCreate(t, r, "OLD-1", "kolor", "Stary", "1")

	body := strings.Join([]string{
		"ID_OPCJI,KATEGORIA,NAZWA,CENA_NETTO_EUR",
		"OPT-1,kolor,Złoty Dąb,25.50",
		"OPT-2,okucia,Maco Multi,40",
	}, "\n")
	n, err := r.ImportCSV(context.Background(), strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = r.Get(context.Background(), "OLD-1")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	got, err := r.Get(context.Background(), "OPT-1")
	require.NoError(t, err)
	assert.True(t, got.NetPrice.Equal(decimal.RequireFromString("25.50")))
}

func TestImportCSVBadRowKeepsOldCatalog(t *testing.T) {
	r := setupRepo(t)
	mustCreate(t, r, "OLD-1", "kolor", "Stary", "1")

	body := strings.Join([]string{
		"ID_OPCJI,KATEGORIA,NAZWA,CENA_NETTO_EUR",
		"OPT-1,kolor,Złoty Dąb,not-a-price",
	}, "\n")
	_, err := r.ImportCSV(context.Background(), strings.NewReader(body))
	require.Error(t, err)

	// bad import leaves the previous catalog in place
	_, err = r.Get(context.Background(), "OLD-1")
	require.NoError(t, err)

	_, err = r.ImportCSV(context.Background(), strings.NewReader("ID_OPCJI,KATEGORIA,NAZWA\nOPT-1,kolor,X"))
	require.ErrorContains(t, err, "CENA_NETTO_EUR")
}
