package web

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"dhaba/models"
	"dhaba/services"
)

type categoryResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
}

type menuItemResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Category     int64   `json:"category"`
	CategoryName string  `json:"category_name"`
	Veg          bool    `json:"veg"`
	PriceRegular *string `json:"price_regular"`
	PriceHalf    *string `json:"price_half"`
	PriceFull    *string `json:"price_full"`
	DisplayPrice string  `json:"display_price"`
	HasHalfFull  bool    `json:"has_half_full"`
	ImageURL     *string `json:"image_url"`
	Featured     bool    `json:"featured"`
	IsAvailable  bool    `json:"is_available"`
}

// priceString renders a price as "149.00", nil when absent.
func priceString(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(2)
	return &s
}

func (s *Server) newMenuItemResponse(r *http.Request, m models.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Category:     m.CategoryID,
		CategoryName: m.CategoryName,
		Veg:          m.Veg,
		PriceRegular: priceString(m.PriceRegular),
		PriceHalf:    priceString(m.PriceHalf),
		PriceFull:    priceString(m.PriceFull),
		DisplayPrice: m.DisplayPrice(),
		HasHalfFull:  m.HasHalfFull(),
		ImageURL:     s.media.URL(r, m.Image),
		Featured:     m.Featured,
		IsAvailable:  m.IsAvailable,
	}
}

func (s *Server) newMenuItemsResponse(r *http.Request, items []models.MenuItem) []menuItemResponse {
	out := make([]menuItemResponse, 0, len(items))
	for _, m := range items {
		out = append(out, s.newMenuItemResponse(r, m))
	}
	return out
}

// handleCategories is the HTTP handler for GET /api/categories.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.catalog.ListCategories(r.Context())
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name, DisplayOrder: c.DisplayOrder})
	}
	s.api.Respond(w, http.StatusOK, out)
}

// publicMenuFilter reads ?category= and ?diet=. Values that do not parse are ignored.
func publicMenuFilter(r *http.Request) services.MenuItemFilter {
	yes := true
	f := services.MenuItemFilter{Available: &yes}
	q := r.URL.Query()
	if raw := q.Get("category"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			f.CategoryID = &id
		}
	}
	if d, ok := models.ParseDiet(q.Get("diet")); ok {
		f.Diet = d
	}
	return f
}

// handleMenu is the HTTP handler for GET /api/menu.
func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalog.ListMenuItems(r.Context(), publicMenuFilter(r))
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	s.api.Respond(w, http.StatusOK, s.newMenuItemsResponse(r, items))
}

// handleFeatured is the HTTP handler for GET /api/featured.
func (s *Server) handleFeatured(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalog.ListFeatured(r.Context(), 0)
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	s.api.Respond(w, http.StatusOK, s.newMenuItemsResponse(r, items))
}
