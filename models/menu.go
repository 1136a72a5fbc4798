package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CategorySummary is a category with the number of items referencing it (admin list).
type CategorySummary struct {
	Category
	ItemCount int `db:"item_count" json:"item_count"`
}

type CategoryInput struct {
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
}

type MenuItem struct {
	ID           int64  `db:"id" json:"id"`
	CategoryID   int64  `db:"category_id" json:"category"`
	CategoryName string `db:"category_name" json:"category_name"`
	Name         string `db:"name" json:"name"`
	Description  string `db:"description" json:"description"`
	Veg          bool   `db:"veg" json:"veg"`
	// Egg marks dishes with egg but no meat; such items conventionally have Veg=false.
	Egg               bool                `db:"egg" json:"egg"`
	PriceRegular      decimal.NullDecimal `db:"price_regular" json:"price_regular"`
	PriceHalf         decimal.NullDecimal `db:"price_half" json:"price_half"`
	PriceFull         decimal.NullDecimal `db:"price_full" json:"price_full"`
	Image             string              `db:"image" json:"image"` // media reference, "" when absent
	Featured          bool                `db:"featured" json:"featured"`
	NeedsVerification bool                `db:"needs_verification" json:"needs_verification"`
	IsAvailable       bool                `db:"is_available" json:"is_available"`
	CreatedAt         time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time           `db:"updated_at" json:"updated_at"`
}

func (m MenuItem) DisplayPrice() string {
	return DisplayPrice(m.PriceRegular, m.PriceHalf, m.PriceFull)
}

func (m MenuItem) HasHalfFull() bool {
	return m.PriceHalf.Valid && m.PriceFull.Valid
}

type MenuItemInput struct {
	CategoryID        int64
	Name              string
	Description       string
	Veg               bool
	Egg               bool
	PriceRegular      decimal.NullDecimal
	PriceHalf         decimal.NullDecimal
	PriceFull         decimal.NullDecimal
	Image             string
	Featured          bool
	NeedsVerification bool
	IsAvailable       bool
}

const PriceOnRequest = "Price on request"

// DisplayPrice renders "₹99", "Half ₹149  /  Full ₹199" or PriceOnRequest.
// A regular price wins over half/full.
func DisplayPrice(regular, half, full decimal.NullDecimal) string {
	var parts []string
	if regular.Valid {
		parts = append(parts, "₹"+FormatAmount(regular.Decimal))
	} else {
		if half.Valid {
			parts = append(parts, "Half ₹"+FormatAmount(half.Decimal))
		}
		if full.Valid {
			parts = append(parts, "Full ₹"+FormatAmount(full.Decimal))
		}
	}
	if len(parts) == 0 {
		return PriceOnRequest
	}
	return strings.Join(parts, "  /  ")
}

// FormatAmount prints whole rupees without decimals and anything else with two.
func FormatAmount(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return d.Truncate(0).String()
	}
	return d.StringFixed(2)
}

// Diet is the public dietary filter derived from the veg and egg flags.
type Diet string

const (
	DietVeg    Diet = "veg"    // veg and no egg
	DietEgg    Diet = "egg"    // contains egg
	DietNonVeg Diet = "nonveg" // neither veg nor egg
)

// ParseDiet reports ok=false for anything that is not exactly a known filter value.
func ParseDiet(s string) (Diet, bool) {
	switch d := Diet(s); d {
	case DietVeg, DietEgg, DietNonVeg:
		return d, true
	}
	return "", false
}

// Diet classifies the item the same way the public diet filter does.
func (m MenuItem) Diet() Diet {
	switch {
	case m.Egg:
		return DietEgg
	case m.Veg:
		return DietVeg
	}
	return DietNonVeg
}

// Matches reports whether an item with these flags belongs to the diet.
func (d Diet) Matches(veg, egg bool) bool {
	switch d {
	case DietVeg:
		return veg && !egg
	case DietEgg:
		return egg
	case DietNonVeg:
		return !veg && !egg
	}
	return true
}
