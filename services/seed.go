package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dhaba/db"
	"dhaba/models"
)

// SeedItem is one dish of a seed dataset. Reseeded items are always available and not featured.
type SeedItem struct {
	Name              string
	Veg               bool
	Egg               bool
	PriceRegular      decimal.NullDecimal
	PriceHalf         decimal.NullDecimal
	PriceFull         decimal.NullDecimal
	NeedsVerification bool
}

type SeedGroup struct {
	Category     string
	DisplayOrder int
	Items        []SeedItem
}

// Dataset is an ordered list of categories with their items.
type Dataset []SeedGroup

func (d Dataset) Totals() (categories, items int) {
	for _, g := range d {
		categories++
		items += len(g.Items)
	}
	return categories, items
}

// GroupCount is the per-category line of a preview or a reseed report.
type GroupCount struct {
	Category     string
	DisplayOrder int
	Items        int
}

// SeedPreview describes what Reseed would insert.
type SeedPreview struct {
	Groups     []GroupCount
	Categories int
	Items      int
}

// PreviewDataset summarises ds without touching the database.
func PreviewDataset(ds Dataset) SeedPreview {
	p := SeedPreview{Groups: make([]GroupCount, 0, len(ds))}
	for _, g := range ds {
		p.Groups = append(p.Groups, GroupCount{Category: g.Category, DisplayOrder: g.DisplayOrder, Items: len(g.Items)})
	}
	p.Categories, p.Items = ds.Totals()
	return p
}

type SeedResult struct {
	DeletedItems      int64
	DeletedCategories int64
	Inserted          []GroupCount
	Categories        int // verified row counts after insert
	Items             int
	Duration          time.Duration
}

type Seeder struct {
	db       *db.DB
	log      *zap.Logger
	notifier Notifier
}

func NewSeeder(d *db.DB, log *zap.Logger) *Seeder {
	return &Seeder{db: d, log: log, notifier: NopNotifier()}
}

func (s *Seeder) SetNotifier(n Notifier) {
	if n == nil {
		n = NopNotifier()
	}
	s.notifier = n
}

// Reseed replaces the whole catalog with ds in a single transaction. Row counts are checked
// before commit; any mismatch rolls everything back and the returned error lists each one.
// Reviews are untouched.
func (s *Seeder) Reseed(ctx context.Context, ds Dataset) (*SeedResult, error) {
	const op = "Seeder.Reseed"
	if err := validateDataset(op, ds); err != nil {
		return nil, err
	}

	start := time.Now()
	res := &SeedResult{Inserted: make([]GroupCount, 0, len(ds))}
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if res.DeletedItems, err = s.deleteAll(ctx, tx, "menu_items"); err != nil {
			return err
		}
		if res.DeletedCategories, err = s.deleteAll(ctx, tx, "categories"); err != nil {
			return err
		}

		now := time.Now().UTC()
		cat := &CatalogService{db: s.db, log: s.log}
		for _, g := range ds {
			id, err := cat.insertCategory(ctx, tx, g.Category, g.DisplayOrder, now)
			if err != nil {
				return fmt.Errorf("insert category %q: %w", g.Category, err)
			}
			if err := s.insertItems(ctx, tx, id, g.Items, now); err != nil {
				return fmt.Errorf("insert items of %q: %w", g.Category, err)
			}
			res.Inserted = append(res.Inserted, GroupCount{Category: g.Category, DisplayOrder: g.DisplayOrder, Items: len(g.Items)})
		}

		if err := tx.GetContext(ctx, &res.Categories, `SELECT COUNT(*) FROM categories`); err != nil {
			return err
		}
		if err := tx.GetContext(ctx, &res.Items, `SELECT COUNT(*) FROM menu_items`); err != nil {
			return err
		}
		wantCats, wantItems := ds.Totals()
		return verifyCounts(wantCats, wantItems, res.Categories, res.Items)
	})
	if err != nil {
		var merr *multierror.Error
		if errors.As(err, &merr) {
			s.log.Error("Seed verification failed, rolled back", zap.Error(merr))
			return nil, &Error{Code: EConflict, Op: op, Msg: "seed verification failed", Err: merr}
		}
		var e *Error
		if errors.As(err, &e) {
			return nil, err
		}
		return nil, internal(op, err)
	}

	res.Duration = time.Since(start)
	s.log.Info("Catalog reseeded",
		zap.Int64("deleted_items", res.DeletedItems),
		zap.Int64("deleted_categories", res.DeletedCategories),
		zap.Int("categories", res.Categories),
		zap.Int("items", res.Items),
		zap.Duration("took", res.Duration))
	s.notifier.CatalogReseeded(ctx, res)
	return res, nil
}

func (s *Seeder) deleteAll(ctx context.Context, tx *sqlx.Tx, table string) (int64, error) {
	query, args, err := s.db.Builder().Delete(table).ToSql()
	if err != nil {
		return 0, err
	}
	r, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}
	return r.RowsAffected()
}

// insertItems writes a group's items with one multi-row INSERT.
func (s *Seeder) insertItems(ctx context.Context, tx *sqlx.Tx, categoryID int64, items []SeedItem, now time.Time) error {
	if len(items) == 0 {
		return nil
	}
	ins := s.db.Builder().
		Insert("menu_items").
		Columns("category_id", "name", "description", "veg", "egg",
			"price_regular", "price_half", "price_full",
			"featured", "needs_verification", "is_available", "created_at", "updated_at")
	for _, it := range items {
		ins = ins.Values(categoryID, it.Name, "", it.Veg, it.Egg,
			it.PriceRegular, it.PriceHalf, it.PriceFull,
			false, it.NeedsVerification, true, now, now)
	}
	query, args, err := ins.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// verifyCounts returns one error per mismatching table, nil when both match.
func verifyCounts(wantCategories, wantItems, gotCategories, gotItems int) error {
	var merr *multierror.Error
	if gotCategories != wantCategories {
		merr = multierror.Append(merr, fmt.Errorf("Category count mismatch: expected %d, got %d", wantCategories, gotCategories))
	}
	if gotItems != wantItems {
		merr = multierror.Append(merr, fmt.Errorf("MenuItem count mismatch: expected %d, got %d", wantItems, gotItems))
	}
	return merr.ErrorOrNil()
}

func validateDataset(op string, ds Dataset) error {
	if len(ds) == 0 {
		return invalidf(op, "dataset has no categories")
	}
	seen := make(map[string]struct{}, len(ds))
	for _, g := range ds {
		in := models.CategoryInput{Name: g.Category, DisplayOrder: g.DisplayOrder}
		if err := validateCategory(op, &in); err != nil {
			return err
		}
		key := strings.ToLower(in.Name)
		if _, dup := seen[key]; dup {
			return invalidf(op, "category %q appears twice in the dataset", in.Name)
		}
		seen[key] = struct{}{}
		for _, it := range g.Items {
			item := models.MenuItemInput{
				CategoryID:   1,
				Name:         it.Name,
				PriceRegular: it.PriceRegular,
				PriceHalf:    it.PriceHalf,
				PriceFull:    it.PriceFull,
			}
			if err := validateMenuItem(op, &item); err != nil {
				return &Error{Code: EInvalid, Op: op, Msg: fmt.Sprintf("%s: %s", g.Category, ErrorMessage(err))}
			}
		}
	}
	return nil
}
