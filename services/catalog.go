package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dhaba/db"
	"dhaba/models"
)

const (
	maxCategoryName  = 100
	maxDisplayOrder  = 32767
	maxItemName      = 200
	maxImageRef      = 255
	maxPriceDecimals = 2
)

// NUMERIC(8,2)
var maxPrice = decimal.New(99999999, -2)

var menuItemColumns = []string{
	"i.id",
	"i.category_id",
	"c.name AS category_name",
	"i.name",
	"i.description",
	"i.veg",
	"i.egg",
	"i.price_regular",
	"i.price_half",
	"i.price_full",
	"COALESCE(i.image, '') AS image",
	"i.featured",
	"i.needs_verification",
	"i.is_available",
	"i.created_at",
	"i.updated_at",
}

// CatalogService owns categories and menu items.
type CatalogService struct {
	db  *db.DB
	log *zap.Logger
}

func NewCatalogService(d *db.DB, log *zap.Logger) *CatalogService {
	return &CatalogService{db: d, log: log}
}

// MenuItemFilter narrows item listings. Nil pointers and zero values mean "no filter".
type MenuItemFilter struct {
	CategoryID        *int64
	Diet              models.Diet
	Available         *bool
	Featured          *bool
	Veg               *bool
	NeedsVerification *bool
	Search            string // case-insensitive match on name or description
	Limit             uint64
}

func (f MenuItemFilter) apply(q sq.SelectBuilder) sq.SelectBuilder {
	if f.CategoryID != nil {
		q = q.Where(sq.Eq{"i.category_id": *f.CategoryID})
	}
	switch f.Diet {
	case models.DietVeg:
		q = q.Where(sq.Eq{"i.veg": true, "i.egg": false})
	case models.DietEgg:
		q = q.Where(sq.Eq{"i.egg": true})
	case models.DietNonVeg:
		q = q.Where(sq.Eq{"i.veg": false, "i.egg": false})
	}
	if f.Available != nil {
		q = q.Where(sq.Eq{"i.is_available": *f.Available})
	}
	if f.Featured != nil {
		q = q.Where(sq.Eq{"i.featured": *f.Featured})
	}
	if f.Veg != nil {
		q = q.Where(sq.Eq{"i.veg": *f.Veg})
	}
	if f.NeedsVerification != nil {
		q = q.Where(sq.Eq{"i.needs_verification": *f.NeedsVerification})
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		pattern := "%" + s + "%"
		q = q.Where(sq.Or{
			sq.Like{"LOWER(i.name)": pattern},
			sq.Like{"LOWER(i.description)": pattern},
		})
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	return q
}

// ListCategories returns every category ordered by display_order, then name.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	const op = "CatalogService.ListCategories"
	query, args, err := s.db.Builder().
		Select("id", "name", "display_order", "created_at").
		From("categories").
		OrderBy("display_order", "name").
		ToSql()
	if err != nil {
		return nil, internal(op, err)
	}
	cats := []models.Category{}
	if err := s.db.SelectContext(ctx, &cats, query, args...); err != nil {
		return nil, internal(op, err)
	}
	return cats, nil
}

// ListCategorySummaries is ListCategories with per-category item counts.
func (s *CatalogService) ListCategorySummaries(ctx context.Context) ([]models.CategorySummary, error) {
	const op = "CatalogService.ListCategorySummaries"
	query, args, err := s.db.Builder().
		Select("c.id", "c.name", "c.display_order", "c.created_at", "COUNT(i.id) AS item_count").
		From("categories c").
		LeftJoin("menu_items i ON i.category_id = c.id").
		GroupBy("c.id", "c.name", "c.display_order", "c.created_at").
		OrderBy("c.display_order", "c.name").
		ToSql()
	if err != nil {
		return nil, internal(op, err)
	}
	out := []models.CategorySummary{}
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, internal(op, err)
	}
	return out, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	return s.getCategory(ctx, s.db, id)
}

func (s *CatalogService) getCategory(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.Category, error) {
	const op = "CatalogService.GetCategory"
	query, args, err := s.db.Builder().
		Select("id", "name", "display_order", "created_at").
		From("categories").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, internal(op, err)
	}
	var c models.Category
	if err := sqlx.GetContext(ctx, q, &c, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(op, "category", id)
		}
		return nil, internal(op, err)
	}
	return &c, nil
}

func validateCategory(op string, in *models.CategoryInput) error {
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Name == "":
		return invalidf(op, "category name is required")
	case utf8.RuneCountInString(in.Name) > maxCategoryName:
		return invalidf(op, "category name must be at most %d characters", maxCategoryName)
	case in.DisplayOrder < 0:
		return invalidf(op, "display_order must be >= 0")
	case in.DisplayOrder > maxDisplayOrder:
		return invalidf(op, "display_order must be <= %d", maxDisplayOrder)
	}
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	const op = "CatalogService.CreateCategory"
	if err := validateCategory(op, &in); err != nil {
		return nil, err
	}

	var c *models.Category
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		id, err := s.insertCategory(ctx, tx, in.Name, in.DisplayOrder, time.Now().UTC())
		if err != nil {
			return err
		}
		c, err = s.getCategory(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, categoryWriteError(op, in.Name, err)
	}
	s.log.Info("Category created", zap.Int64("category_id", c.ID), zap.String("name", c.Name))
	return c, nil
}

func (s *CatalogService) insertCategory(ctx context.Context, tx *sqlx.Tx, name string, order int, now time.Time) (int64, error) {
	query, args, err := s.db.Builder().
		Insert("categories").
		Columns("name", "display_order", "created_at").
		Values(name, order, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, in models.CategoryInput) (*models.Category, error) {
	const op = "CatalogService.UpdateCategory"
	if err := validateCategory(op, &in); err != nil {
		return nil, err
	}

	var c *models.Category
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := s.db.Builder().
			Update("categories").
			Set("name", in.Name).
			Set("display_order", in.DisplayOrder).
			Where(sq.Eq{"id": id}).
			ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return notFound(op, "category", id)
		}
		c, err = s.getCategory(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, categoryWriteError(op, in.Name, err)
	}
	return c, nil
}

// DeleteCategory refuses to delete a category that menu items still reference.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	const op = "CatalogService.DeleteCategory"
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		c, err := s.getCategory(ctx, tx, id)
		if err != nil {
			return err
		}
		query, args, err := s.db.Builder().
			Select("COUNT(*)").
			From("menu_items").
			Where(sq.Eq{"category_id": id}).
			ToSql()
		if err != nil {
			return err
		}
		var refs int
		if err := tx.GetContext(ctx, &refs, query, args...); err != nil {
			return err
		}
		if refs > 0 {
			return &Error{
				Code: EConflict,
				Op:   op,
				Msg:  fmt.Sprintf("cannot delete category %q: %d menu item(s) still reference it", c.Name, refs),
			}
		}
		query, args, err = s.db.Builder().Delete("categories").Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		var e *Error
		switch {
		case errors.As(err, &e):
			return err
		case db.IsForeignKeyViolation(err):
			return &Error{Code: EConflict, Op: op, Msg: "category is still referenced by menu items", Err: err}
		}
		return internal(op, err)
	}
	s.log.Info("Category deleted", zap.Int64("category_id", id))
	return nil
}

func categoryWriteError(op, name string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if db.IsUniqueViolation(err) {
		return &Error{Code: EConflict, Op: op, Msg: fmt.Sprintf("category with name %q already exists", name)}
	}
	return internal(op, err)
}

func (s *CatalogService) itemSelect() sq.SelectBuilder {
	return s.db.Builder().
		Select(menuItemColumns...).
		From("menu_items i").
		Join("categories c ON c.id = i.category_id")
}

// ListMenuItems returns items matching f ordered by category display_order, then item name.
func (s *CatalogService) ListMenuItems(ctx context.Context, f MenuItemFilter) ([]models.MenuItem, error) {
	return s.listItems(ctx, "CatalogService.ListMenuItems",
		f.apply(s.itemSelect()).OrderBy("c.display_order", "i.name", "i.id"))
}

// ListFeatured returns featured items that are also available. limit 0 means all.
func (s *CatalogService) ListFeatured(ctx context.Context, limit uint64) ([]models.MenuItem, error) {
	yes := true
	f := MenuItemFilter{Featured: &yes, Available: &yes, Limit: limit}
	return s.listItems(ctx, "CatalogService.ListFeatured", f.apply(s.itemSelect()).OrderBy("i.id"))
}

func (s *CatalogService) listItems(ctx context.Context, op string, q sq.SelectBuilder) ([]models.MenuItem, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, internal(op, err)
	}
	items := []models.MenuItem{}
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, internal(op, err)
	}
	return items, nil
}

func (s *CatalogService) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	return s.getMenuItem(ctx, s.db, id)
}

func (s *CatalogService) getMenuItem(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.MenuItem, error) {
	const op = "CatalogService.GetMenuItem"
	query, args, err := s.itemSelect().Where(sq.Eq{"i.id": id}).ToSql()
	if err != nil {
		return nil, internal(op, err)
	}
	var m models.MenuItem
	if err := sqlx.GetContext(ctx, q, &m, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(op, "menu item", id)
		}
		return nil, internal(op, err)
	}
	return &m, nil
}

func validateMenuItem(op string, in *models.MenuItemInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Image = strings.TrimSpace(in.Image)
	switch {
	case in.CategoryID <= 0:
		return invalidf(op, "category is required")
	case in.Name == "":
		return invalidf(op, "menu item name is required")
	case utf8.RuneCountInString(in.Name) > maxItemName:
		return invalidf(op, "menu item name must be at most %d characters", maxItemName)
	case len(in.Image) > maxImageRef:
		return invalidf(op, "image reference must be at most %d characters", maxImageRef)
	}
	prices := []struct {
		field string
		value decimal.NullDecimal
	}{
		{"price_regular", in.PriceRegular},
		{"price_half", in.PriceHalf},
		{"price_full", in.PriceFull},
	}
	for _, p := range prices {
		if !p.value.Valid {
			continue
		}
		d := p.value.Decimal
		switch {
		case d.IsNegative():
			return invalidf(op, "%s must be >= 0", p.field)
		case d.GreaterThan(maxPrice):
			return invalidf(op, "%s must be <= %s", p.field, maxPrice.StringFixed(maxPriceDecimals))
		case !d.Equal(d.Round(maxPriceDecimals)):
			return invalidf(op, "%s must have at most %d decimal places", p.field, maxPriceDecimals)
		}
	}
	return nil
}

// requireCategory turns a missing category into a validation failure on the item.
func (s *CatalogService) requireCategory(ctx context.Context, tx *sqlx.Tx, op string, id int64) error {
	if _, err := s.getCategory(ctx, tx, id); err != nil {
		if ErrorCode(err) == ENotFound {
			return invalidf(op, "category %d does not exist", id)
		}
		return err
	}
	return nil
}

func nullableImage(ref string) any {
	if ref == "" {
		return nil
	}
	return ref
}

func (s *CatalogService) CreateMenuItem(ctx context.Context, in models.MenuItemInput) (*models.MenuItem, error) {
	const op = "CatalogService.CreateMenuItem"
	if err := validateMenuItem(op, &in); err != nil {
		return nil, err
	}

	var m *models.MenuItem
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.requireCategory(ctx, tx, op, in.CategoryID); err != nil {
			return err
		}
		now := time.Now().UTC()
		query, args, err := s.db.Builder().
			Insert("menu_items").
			Columns("category_id", "name", "description", "veg", "egg",
				"price_regular", "price_half", "price_full", "image",
				"featured", "needs_verification", "is_available", "created_at", "updated_at").
			Values(in.CategoryID, in.Name, in.Description, in.Veg, in.Egg,
				in.PriceRegular, in.PriceHalf, in.PriceFull, nullableImage(in.Image),
				in.Featured, in.NeedsVerification, in.IsAvailable, now, now).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return err
		}
		var id int64
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return err
		}
		m, err = s.getMenuItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, itemWriteError(op, err)
	}
	s.log.Info("Menu item created", zap.Int64("item_id", m.ID), zap.String("name", m.Name))
	return m, nil
}

func (s *CatalogService) UpdateMenuItem(ctx context.Context, id int64, in models.MenuItemInput) (*models.MenuItem, error) {
	const op = "CatalogService.UpdateMenuItem"
	if err := validateMenuItem(op, &in); err != nil {
		return nil, err
	}

	var m *models.MenuItem
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.requireCategory(ctx, tx, op, in.CategoryID); err != nil {
			return err
		}
		query, args, err := s.db.Builder().
			Update("menu_items").
			SetMap(map[string]any{
				"category_id":        in.CategoryID,
				"name":               in.Name,
				"description":        in.Description,
				"veg":                in.Veg,
				"egg":                in.Egg,
				"price_regular":      in.PriceRegular,
				"price_half":         in.PriceHalf,
				"price_full":         in.PriceFull,
				"image":              nullableImage(in.Image),
				"featured":           in.Featured,
				"needs_verification": in.NeedsVerification,
				"is_available":       in.IsAvailable,
				"updated_at":         time.Now().UTC(),
			}).
			Where(sq.Eq{"id": id}).
			ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return notFound(op, "menu item", id)
		}
		m, err = s.getMenuItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, itemWriteError(op, err)
	}
	return m, nil
}

func (s *CatalogService) DeleteMenuItem(ctx context.Context, id int64) error {
	const op = "CatalogService.DeleteMenuItem"
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := s.db.Builder().Delete("menu_items").Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return notFound(op, "menu item", id)
		}
		return nil
	})
	if err != nil {
		return itemWriteError(op, err)
	}
	s.log.Info("Menu item deleted", zap.Int64("item_id", id))
	return nil
}

func itemWriteError(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if db.IsForeignKeyViolation(err) {
		return &Error{Code: EInvalid, Op: op, Msg: "category does not exist", Err: err}
	}
	return internal(op, err)
}

// CatalogCounts summarises the catalog for dashboards.
type CatalogCounts struct {
	Categories        int `db:"categories"`
	Items             int `db:"items"`
	Available         int `db:"available"`
	Featured          int `db:"featured"`
	NeedsVerification int `db:"needs_verification"`
}

func (s *CatalogService) Counts(ctx context.Context) (*CatalogCounts, error) {
	const op = "CatalogService.Counts"
	var c CatalogCounts
	err := s.db.GetContext(ctx, &c, `
		SELECT
			(SELECT COUNT(*) FROM categories) AS categories,
			COUNT(*) AS items,
			COALESCE(SUM(CASE WHEN is_available THEN 1 ELSE 0 END), 0) AS available,
			COALESCE(SUM(CASE WHEN featured THEN 1 ELSE 0 END), 0) AS featured,
			COALESCE(SUM(CASE WHEN needs_verification THEN 1 ELSE 0 END), 0) AS needs_verification
		FROM menu_items`)
	if err != nil {
		return nil, internal(op, err)
	}
	return &c, nil
}
