package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mjaworski/window-offers/internal/apperrors"
	"github.com/mjaworski/window-offers/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Option{}, &models.Offer{}, &models.OfferItem{}, &models.Invoice{}, &models.InvoiceItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testOfferInput(number, client string) OfferCreateInput {
	return OfferCreateInput{
		Number:     number,
		Date:       date(2026, 3, 10),
		Client:     client,
		NetTotal:   dec("200"),
		VATTotal:   dec("46"),
		GrossTotal: dec("246"),
		Items: []OfferItemInput{
			{
				ProductTypeID: "T1",
				WidthMM:       1000,
				HeightMM:      1200,
				Configuration: map[string]string{"kolor": "OPT-COLOR-1"},
				UnitNetPrice:  dec("100"),
				Quantity:      2,
			},
		},
	}
}

func TestOfferCreateRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOfferService(db, zap.NewNop())

	in := testOfferInput("OF-1", "Jan Kowalski")
	in.Items = append(in.Items, OfferItemInput{
		ProductTypeID: "T2",
		WidthMM:       800,
		HeightMM:      2100,
		Configuration: map[string]string{"okucia": "OPT-H-2"},
		UnitNetPrice:  dec("350.50"),
		// quantity omitted: defaults to 1
	})
	offer, err := svc.Create(context.Background(), in, 7)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if offer.UserID != 7 || offer.Number != "OF-1" {
		t.Fatalf("unexpected header: %+v", offer)
	}
	if !offer.NetTotal.Equal(dec("200")) || !offer.GrossTotal.Equal(dec("246")) {
		t.Fatalf("totals must be stored as supplied: %+v", offer)
	}

	got, err := svc.Get(context.Background(), offer.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items got %d", len(got.Items))
	}
	// input order preserved
	if got.Items[0].ProductTypeID != "T1" || got.Items[1].ProductTypeID != "T2" {
		t.Fatalf("item order not preserved: %+v", got.Items)
	}
	if got.Items[0].Quantity != 2 || got.Items[1].Quantity != 1 {
		t.Fatalf("quantities wrong: %d %d", got.Items[0].Quantity, got.Items[1].Quantity)
	}
	if got.Items[0].Configuration.Data()["kolor"] != "OPT-COLOR-1" {
		t.Fatalf("configuration lost: %+v", got.Items[0].Configuration.Data())
	}
}

func TestOfferCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOfferService(db, zap.NewNop())

	cases := []struct {
		name   string
		mutate func(*OfferCreateInput)
	}{
		{"empty items", func(in *OfferCreateInput) { in.Items = nil }},
		{"width too small", func(in *OfferCreateInput) { in.Items[0].WidthMM = 399 }},
		{"height too large", func(in *OfferCreateInput) { in.Items[0].HeightMM = 3001 }},
		{"client too short", func(in *OfferCreateInput) { in.Client = "ab" }},
		{"negative total", func(in *OfferCreateInput) { in.NetTotal = dec("-1") }},
		{"missing number", func(in *OfferCreateInput) { in.Number = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := testOfferInput("OF-V", "Jan Kowalski")
			tc.mutate(&in)
			_, err := svc.Create(context.Background(), in, 1)
			if apperrors.KindOf(err) != apperrors.KindValidationFailed {
				t.Fatalf("expected validation failure, got %v", err)
			}
		})
	}

	// nothing persisted after rejected creates
	var count int64
	db.Model(&models.Offer{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected creates must not persist, found %d offers", count)
	}
}

func TestOfferUpdateReplacesItems(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOfferService(db, zap.NewNop())

	in := testOfferInput("OF-2", "Anna Nowak")
	in.Items = append(in.Items, OfferItemInput{ProductTypeID: "T2", WidthMM: 600, HeightMM: 600, UnitNetPrice: dec("50"), Quantity: 1})
	offer, err := svc.Create(context.Background(), in, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	oldItemIDs := []uint{offer.Items[0].ID, offer.Items[1].ID}

	newItems := []OfferItemInput{{ProductTypeID: "T3", WidthMM: 900, HeightMM: 1500, UnitNetPrice: dec("75"), Quantity: 3}}
	updated, err := svc.Update(context.Background(), offer, OfferUpdateInput{Items: &newItems})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Items) != 1 || updated.Items[0].ProductTypeID != "T3" {
		t.Fatalf("item list not replaced: %+v", updated.Items)
	}
	for _, id := range oldItemIDs {
		var item models.OfferItem
		if err := db.First(&item, id).Error; err != gorm.ErrRecordNotFound {
			t.Fatalf("old item %d should be gone, err=%v", id, err)
		}
	}
}

func TestOfferUpdateHeaderOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOfferService(db, zap.NewNop())

	offer, err := svc.Create(context.Background(), testOfferInput("OF-3", "Anna Nowak"), 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	client := "Firma Okna Sp. z o.o."
	notes := "montaż w maju"
	updated, err := svc.Update(context.Background(), offer, OfferUpdateInput{Client: &client, Notes: &notes})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Client != client || updated.Notes != notes {
		t.Fatalf("header patch not applied: %+v", updated)
	}
	if len(updated.Items) != 1 {
		t.Fatalf("items must survive a header-only patch, got %d", len(updated.Items))
	}
}

func TestOfferDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOfferService(db, zap.NewNop())

	offer, err := svc.Create(context.Background(), testOfferInput("OF-4", "Jan Kowalski"), 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	itemID := offer.Items[0].ID

	if err := svc.Delete(context.Background(), offer.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), offer.ID); apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
	var item models.OfferItem
	if err := db.First(&item, itemID).Error; err != gorm.ErrRecordNotFound {
		t.Fatalf("item should be gone, err=%v", err)
	}

	// deleting a missing offer is a no-op at this layer
	if err := svc.Delete(context.Background(), 9999); err != nil {
		t.Fatalf("delete of missing offer must be a no-op, got %v", err)
	}
}

func seedOffersForList(t *testing.T, svc *OfferService) {
	t.Helper()
	seed := []struct {
		number string
		client string
		notes  string
		date   time.Time
		userID uint
	}{
		{"OF-2026-01", "Jan Kowalski", "pilne", date(2026, 1, 5), 1},
		{"OF-2026-02", "Anna Nowak", "", date(2026, 2, 14), 1},
		{"ABC-17", "Zenon Abacki", "klient z polecenia", date(2026, 3, 1), 2},
	}
	for _, s := range seed {
		in := testOfferInput(s.number, s.client)
		in.Date = s.date
		in.Notes = s.notes
		if _, err := svc.Create(context.Background(), in, s.userID); err != nil {
			t.Fatalf("seed %s: %v", s.number, err)
		}
	}
}

func TestOfferListSearch(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOfferService(db, zap.NewNop())
	seedOffersForList(t, svc)

	// case-insensitive match across number, client, and notes
	offers, err := svc.List(context.Background(), nil, OfferFilter{Search: "abc"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(offers) != 1 || offers[0].Number != "ABC-17" {
		t.Fatalf("search=abc: %+v", offers)
	}

	offers, err = svc.List(context.Background(), nil, OfferFilter{Search: "NOWAK"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(offers) != 1 || offers[0].Client != "Anna Nowak" {
		t.Fatalf("search=NOWAK: %+v", offers)
	}

	offers, err = svc.List(context.Background(), nil, OfferFilter{Search: "polecenia"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(offers) != 1 || offers[0].Number != "ABC-17" {
		t.Fatalf("search over notes: %+v", offers)
	}
}

func TestOfferListOwnerScopeAndDates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOfferService(db, zap.NewNop())
	seedOffersForList(t, svc)

	owner := uint(1)
	offers, err := svc.List(context.Background(), &owner, OfferFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(offers) != 2 {
		t.Fatalf("owner scope: expected 2 got %d", len(offers))
	}

	from := date(2026, 2, 1)
	to := date(2026, 2, 28)
	offers, err = svc.List(context.Background(), nil, OfferFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(offers) != 1 || offers[0].Number != "OF-2026-02" {
		t.Fatalf("date range: %+v", offers)
	}

	// inclusive bounds
	from = date(2026, 1, 5)
	to = date(2026, 3, 1)
	offers, err = svc.List(context.Background(), nil, OfferFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(offers) != 3 {
		t.Fatalf("inclusive date range: expected 3 got %d", len(offers))
	}
}

func TestOfferListSorting(t *testing.T) {
	db := setupTestDB(t)
	svc := NewOfferService(db, zap.NewNop())
	seedOffersForList(t, svc)

	// default: date descending
	offers, err := svc.List(context.Background(), nil, OfferFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if offers[0].Number != "ABC-17" || offers[2].Number != "OF-2026-01" {
		t.Fatalf("default order must be date desc: %+v", offers)
	}

	// sort by client ascending
	offers, err = svc.List(context.Background(), nil, OfferFilter{SortBy: "klient", SortDirection: "asc"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if offers[0].Client != "Anna Nowak" || offers[2].Client != "Zenon Abacki" {
		t.Fatalf("klient asc: %+v", offers)
	}

	// unrecognized sort key falls back to date; direction other than asc is desc
	offers, err = svc.List(context.Background(), nil, OfferFilter{SortBy: "no_such_column", SortDirection: "sideways"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if offers[0].Number != "ABC-17" {
		t.Fatalf("fallback order must be date desc: %+v", offers)
	}
}
