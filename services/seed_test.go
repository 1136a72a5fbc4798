package services

import (
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"dhaba/db"
	"dhaba/db/dbtest"
	"dhaba/models"
)

func TestDefaultMenuShape(t *testing.T) {
	ds := DefaultMenu()
	cats, items := ds.Totals()
	require.Equal(t, 12, cats)
	require.Equal(t, 109, items)

	wantPerGroup := []int{6, 11, 13, 13, 8, 5, 4, 5, 15, 5, 7, 17}
	for i, g := range ds {
		require.Equal(t, i+1, g.DisplayOrder, g.Category)
		require.Len(t, g.Items, wantPerGroup[i], g.Category)
	}
	require.NoError(t, validateDataset("test", ds))
}

func TestDefaultMenuMineralWaterKeepsCardValues(t *testing.T) {
	var water *SeedItem
	for _, g := range DefaultMenu() {
		for i := range g.Items {
			if g.Items[i].Name == "Mineral Water" {
				water = &g.Items[i]
			}
		}
	}
	require.NotNil(t, water)
	require.True(t, water.NeedsVerification)
	require.False(t, water.PriceRegular.Valid)
	require.Equal(t, "Half ₹20  /  Full ₹10", models.DisplayPrice(water.PriceRegular, water.PriceHalf, water.PriceFull))
}

func TestPreviewDataset(t *testing.T) {
	p := PreviewDataset(DefaultMenu())
	require.Equal(t, 12, p.Categories)
	require.Equal(t, 109, p.Items)
	require.Len(t, p.Groups, 12)
	require.Equal(t, GroupCount{Category: "Special Appetizers Veg", DisplayOrder: 1, Items: 6}, p.Groups[0])
	require.Equal(t, GroupCount{Category: "Beverages | Desserts | Juice", DisplayOrder: 12, Items: 17}, p.Groups[11])
}

func TestVerifyCounts(t *testing.T) {
	require.NoError(t, verifyCounts(12, 109, 12, 109))

	err := verifyCounts(12, 109, 11, 108)
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 2)
	require.EqualError(t, merr.Errors[0], "Category count mismatch: expected 12, got 11")
	require.EqualError(t, merr.Errors[1], "MenuItem count mismatch: expected 109, got 108")

	err = verifyCounts(12, 109, 12, 110)
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 1)
}

type seedFixture struct {
	db      *db.DB
	seeder  *Seeder
	catalog *CatalogService
	reviews *ReviewService
}

func newSeedFixture(t *testing.T) seedFixture {
	t.Helper()
	d := dbtest.New(t)
	log := zaptest.NewLogger(t)
	return seedFixture{
		db:      d,
		seeder:  NewSeeder(d, log),
		catalog: NewCatalogService(d, log),
		reviews: NewReviewService(d, log),
	}
}

func TestReseedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newSeedFixture(t)
	n := &recordingNotifier{}
	f.seeder.SetNotifier(n)

	// Existing rows are replaced, reviews are untouched.
	c, err := f.catalog.CreateCategory(ctx, models.CategoryInput{Name: "Old Specials", DisplayOrder: 1})
	require.NoError(t, err)
	_, err = f.catalog.CreateMenuItem(ctx, models.MenuItemInput{CategoryID: c.ID, Name: "Old Dish", Featured: true})
	require.NoError(t, err)
	_, err = f.reviews.CreateReview(ctx, models.ReviewInput{ReviewerName: "Gita", Rating: 5, Body: "Lovely"})
	require.NoError(t, err)

	for run := 1; run <= 2; run++ {
		res, err := f.seeder.Reseed(ctx, DefaultMenu())
		require.NoError(t, err, "run %d", run)
		require.Equal(t, 12, res.Categories)
		require.Equal(t, 109, res.Items)
		require.Len(t, res.Inserted, 12)
		if run == 1 {
			require.EqualValues(t, 1, res.DeletedItems)
			require.EqualValues(t, 1, res.DeletedCategories)
		} else {
			require.EqualValues(t, 109, res.DeletedItems)
			require.EqualValues(t, 12, res.DeletedCategories)
		}

		counts, err := f.catalog.Counts(ctx)
		require.NoError(t, err)
		require.Equal(t, CatalogCounts{Categories: 12, Items: 109, Available: 109, Featured: 0, NeedsVerification: 5}, *counts)
	}
	require.Len(t, n.reseeded, 2)

	rc, err := f.reviews.Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, rc.Total)

	cats, err := f.catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.Equal(t, "Special Appetizers Veg", cats[0].Name)
	require.Equal(t, "Beverages | Desserts | Juice", cats[11].Name)

	yes := true
	flagged, err := f.catalog.ListMenuItems(ctx, MenuItemFilter{NeedsVerification: &yes, Search: "mineral"})
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	require.Equal(t, "Half ₹20  /  Full ₹10", flagged[0].DisplayPrice())
}

func TestPreviewLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	f := newSeedFixture(t)

	c, err := f.catalog.CreateCategory(ctx, models.CategoryInput{Name: "Chaat", DisplayOrder: 1})
	require.NoError(t, err)
	_, err = f.catalog.CreateMenuItem(ctx, models.MenuItemInput{CategoryID: c.ID, Name: "Papdi Chaat", Veg: true, IsAvailable: true})
	require.NoError(t, err)

	before, err := f.catalog.Counts(ctx)
	require.NoError(t, err)

	p := PreviewDataset(DefaultMenu())
	require.Equal(t, 109, p.Items)

	after, err := f.catalog.Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, *before, *after)
	require.Equal(t, 1, after.Categories)
	require.Equal(t, 1, after.Items)

	cats, err := f.catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	require.Equal(t, c.ID, cats[0].ID)
}

func TestReseedRollsBackOnCountMismatch(t *testing.T) {
	ctx := context.Background()
	f := newSeedFixture(t)
	n := &recordingNotifier{}
	f.seeder.SetNotifier(n)

	_, err := f.seeder.Reseed(ctx, DefaultMenu())
	require.NoError(t, err)
	before, err := f.catalog.ListMenuItems(ctx, MenuItemFilter{})
	require.NoError(t, err)

	// Silently drop one row after insert so the in-transaction count comes up short.
	_, err = f.db.ExecContext(ctx, `
		CREATE TRIGGER drop_mineral_water AFTER INSERT ON menu_items
		WHEN NEW.name = 'Mineral Water'
		BEGIN
			DELETE FROM menu_items WHERE id = NEW.id;
		END`)
	require.NoError(t, err)

	_, err = f.seeder.Reseed(ctx, DefaultMenu())
	require.Error(t, err)
	require.Equal(t, EConflict, ErrorCode(err))

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 1)
	require.EqualError(t, merr.Errors[0], "MenuItem count mismatch: expected 109, got 108")

	after, err := f.catalog.ListMenuItems(ctx, MenuItemFilter{})
	require.NoError(t, err)
	require.Equal(t, itemIDs(before), itemIDs(after), "failed reseed must leave the previous catalog in place")
	require.Len(t, n.reseeded, 1)
}

func itemIDs(items []models.MenuItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, m := range items {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestReseedRejectsBadDataset(t *testing.T) {
	ctx := context.Background()
	f := newSeedFixture(t)

	tests := []struct {
		name string
		ds   Dataset
	}{
		{"empty", Dataset{}},
		{"duplicate category", Dataset{{Category: "Rolls", DisplayOrder: 1}, {Category: "rolls", DisplayOrder: 2}}},
		{"blank item", Dataset{{Category: "Rolls", DisplayOrder: 1, Items: []SeedItem{{Name: ""}}}}},
		{"negative price", Dataset{{Category: "Rolls", DisplayOrder: 1, Items: []SeedItem{regular("Veg Roll", true, -60)}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.seeder.Reseed(ctx, tt.ds)
			require.Equal(t, EInvalid, ErrorCode(err))
		})
	}

	counts, err := f.catalog.Counts(ctx)
	require.NoError(t, err)
	require.Zero(t, counts.Categories)
}
