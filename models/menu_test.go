package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

var none decimal.NullDecimal

func TestDisplayPrice(t *testing.T) {
	tests := []struct {
		name               string
		regular, half, full decimal.NullDecimal
		want               string
	}{
		{"regular only", price("99"), none, none, "₹99"},
		{"half and full", none, price("149"), price("199"), "Half ₹149  /  Full ₹199"},
		{"nothing", none, none, none, "Price on request"},
		{"half only", none, price("120"), none, "Half ₹120"},
		{"full only", none, none, price("250"), "Full ₹250"},
		{"regular wins", price("99"), price("149"), price("199"), "₹99"},
		{"stored with scale", price("179.00"), none, none, "₹179"},
		{"paise", price("20.5"), none, none, "₹20.50"},
		{"inverted portions kept", none, price("20"), price("10"), "Half ₹20  /  Full ₹10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DisplayPrice(tt.regular, tt.half, tt.full))
		})
	}
}

func TestMenuItemHasHalfFull(t *testing.T) {
	require.True(t, MenuItem{PriceHalf: price("1"), PriceFull: price("2")}.HasHalfFull())
	require.False(t, MenuItem{PriceHalf: price("1")}.HasHalfFull())
	require.False(t, MenuItem{PriceRegular: price("1")}.HasHalfFull())
	require.Equal(t, "Half ₹1  /  Full ₹2", MenuItem{PriceHalf: price("1"), PriceFull: price("2")}.DisplayPrice())
}

func TestParseDiet(t *testing.T) {
	for _, s := range []string{"veg", "egg", "nonveg"} {
		_, ok := ParseDiet(s)
		require.True(t, ok, s)
	}
	for _, s := range []string{"", "vegan", "non-veg", "meat", "VEG", " veg ", "Egg"} {
		d, ok := ParseDiet(s)
		require.False(t, ok, s)
		require.Empty(t, d)
	}
}

func TestDietMatches(t *testing.T) {
	tests := []struct {
		diet     Diet
		veg, egg bool
		want     bool
	}{
		{DietVeg, true, false, true},
		{DietVeg, true, true, false},
		{DietVeg, false, false, false},
		{DietEgg, false, true, true},
		{DietEgg, true, true, true},
		{DietEgg, false, false, false},
		{DietNonVeg, false, false, true},
		{DietNonVeg, false, true, false},
		{DietNonVeg, true, false, false},
		{"", false, false, true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.diet.Matches(tt.veg, tt.egg), "%s veg=%v egg=%v", tt.diet, tt.veg, tt.egg)
	}
}

func TestMenuItemDiet(t *testing.T) {
	for _, it := range []MenuItem{{Veg: true}, {Egg: true}, {Veg: true, Egg: true}, {}} {
		d := it.Diet()
		require.True(t, d.Matches(it.Veg, it.Egg), "veg=%v egg=%v -> %s", it.Veg, it.Egg, d)
	}
	require.Equal(t, DietVeg, MenuItem{Veg: true}.Diet())
	require.Equal(t, DietEgg, MenuItem{Egg: true}.Diet())
	require.Equal(t, DietNonVeg, MenuItem{}.Diet())
}

func TestReviewRating(t *testing.T) {
	for r := MinRating; r <= MaxRating; r++ {
		require.True(t, ValidRating(r))
	}
	require.False(t, ValidRating(0))
	require.False(t, ValidRating(6))
	require.Equal(t, "★★★", Review{Rating: 3}.Stars())
	require.Empty(t, Review{Rating: 9}.Stars())
}
