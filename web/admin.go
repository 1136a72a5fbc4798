package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"

	"dhaba/config"
	"dhaba/models"
	"dhaba/services"
)

func (s *Server) adminRoutes(r chi.Router) {
	r.Use(basicAuth(s.creds, s.site.Title, s.api))

	r.Get("/", s.handleDashboard)
	r.Route("/api", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleAdminListCategories)
			r.Post("/", s.handleAdminCreateCategory)
			r.Get("/{id}", s.handleAdminGetCategory)
			r.Put("/{id}", s.handleAdminUpdateCategory)
			r.Delete("/{id}", s.handleAdminDeleteCategory)
		})
		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.handleAdminListItems)
			r.Post("/", s.handleAdminCreateItem)
			r.Get("/{id}", s.handleAdminGetItem)
			r.Put("/{id}", s.handleAdminUpdateItem)
			r.Delete("/{id}", s.handleAdminDeleteItem)
		})
		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", s.handleAdminListReviews)
			r.Post("/", s.handleAdminCreateReview)
			r.Post("/approve", s.handleAdminApproveReviews)
			r.Get("/{id}", s.handleAdminGetReview)
			r.Put("/{id}", s.handleAdminUpdateReview)
			r.Delete("/{id}", s.handleAdminDeleteReview)
		})
	})
}

// boolParam reads true/false style query values; anything else means "no filter".
func boolParam(r *http.Request, key string) *bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	if err != nil {
		return nil
	}
	return &v
}

// Categories

func (s *Server) handleAdminListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.catalog.ListCategorySummaries(r.Context())
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	s.api.Respond(w, http.StatusOK, cats)
}

func (s *Server) handleAdminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if err := s.api.DecodeJSON(r.Body, &in); err != nil {
		s.api.Err(w, r, err)
		return
	}
	c, err := s.catalog.CreateCategory(r.Context(), in)
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	s.api.Respond(w, http.StatusCreated, c)
}

func (s *Server) handleAdminGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	c, err := s.catalog.GetCategory(r.Context(), id)
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	s.api.Respond(w, http.StatusOK, c)
}

func (s *Server) handleAdminUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	var in models.CategoryInput
	if err := s.api.DecodeJSON(r.Body, &in); err != nil {
		s.api.Err(w, r, err)
		return
	}
	c, err := s.catalog.UpdateCategory(r.Context(), id, in)
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	s.api.Respond(w, http.StatusOK, c)
}

func (s *Server) handleAdminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	if err := s.catalog.DeleteCategory(r.Context(), id); err != nil {
		s.api.Err(w, r, err)
		return
	}
	s.api.Respond(w, http.StatusNoContent, nil)
}

// Menu items

// itemPayload is the admin form for a menu item. Omitted veg and is_available default to true.
type itemPayload struct {
	Category          int64               `json:"category"`
	Name              string              `json:"name"`
	Description       string              `json:"description"`
	Veg               *bool               `json:"veg"`
	Egg               bool                `json:"egg"`
	PriceRegular      decimal.NullDecimal `json:"price_regular"`
	PriceHalf         decimal.NullDecimal `json:"price_half"`
	PriceFull         decimal.NullDecimal `json:"price_full"`
	Image             string              `json:"image"`
	Featured          bool                `json:"featured"`
	NeedsVerification bool                `json:"needs_verification"`
	IsAvailable       *bool               `json:"is_available"`
}

func (p itemPayload) input() models.MenuItemInput {
	in := models.MenuItemInput{
		CategoryID:        p.Category,
		Name:              p.Name,
		Description:       p.Description,
		Veg:               true,
		Egg:               p.Egg,
		PriceRegular:      p.PriceRegular,
		PriceHalf:         p.PriceHalf,
		PriceFull:         p.PriceFull,
		Image:             p.Image,
		Featured:          p.Featured,
		NeedsVerification: p.NeedsVerification,
		IsAvailable:       true,
	}
	if p.Veg != nil {
		in.Veg = *p.Veg
	}
	if p.IsAvailable != nil {
		in.IsAvailable = *p.IsAvailable
	}
	return in
}

// adminItemFilter reads category, diet, veg, featured, is_available, needs_verification and q.
func adminItemFilter(r *http.Request) services.MenuItemFilter {
	q := r.URL.Query()
	f := services.MenuItemFilter{
		Veg:               boolParam(r, "veg"),
		Featured:          boolParam(r, "featured"),
		Available:         boolParam(r, "is_available"),
		NeedsVerification: boolParam(r, "needs_verification"),
		Search:            q.Get("q"),
	}
	if id, err := strconv.ParseInt(q.Get("category"), 10, 64); err == nil {
		f.CategoryID = &id
	}
	if d, ok := models.ParseDiet(q.Get("diet")); ok {
		f.Diet = d
	}
	return f
}

func (s *Server) handleAdminListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalog.ListMenuItems(r.Context(), adminItemFilter(r))
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	s.api.Respond(w, http.StatusOK, items)
}

func (s *Server) handleAdminCreateItem(w http.ResponseWriter, r *http.Request) {
	var p itemPayload
	if err := s.api.DecodeJSON(r.Body, &p); err != nil {
		s.api.Err(w, r, err)
		return
	}
	m, err := s.catalog.CreateMenuItem(r.Context(), p.input())
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	s.api.Respond(w, http.StatusCreated, m)
}

func (s *Server) handleAdminGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	m, err := s.catalog.GetMenuItem(r.Context(), id)
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	s.api.Respond(w, http.StatusOK, m)
}

func (s *Server) handleAdminUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	var p itemPayload
	if err := s.api.DecodeJSON(r.Body, &p); err != nil {
		s.api.Err(w, r, err)
		return
	}
	m, err := s.catalog.UpdateMenuItem(r.Context(), id, p.input())
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	s.api.Respond(w, http.StatusOK, m)
}

func (s *Server) handleAdminDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	if err := s.catalog.DeleteMenuItem(r.Context(), id); err != nil {
		s.api.Err(w, r, err)
		return
	}
	s.api.Respond(w, http.StatusNoContent, nil)
}

// Reviews

// reviewPayload is the admin form for a review. Omitted rating defaults to 5.
type reviewPayload struct {
	ReviewerName string `json:"reviewer_name"`
	Rating       *int   `json:"rating"`
	Body         string `json:"body"`
	Source       string `json:"source"`
	IsApproved   bool   `json:"is_approved"`
}

func (p reviewPayload) input() models.ReviewInput {
	in := models.ReviewInput{
		ReviewerName: p.ReviewerName,
		Rating:       models.DefaultRating,
		Body:         p.Body,
		Source:       p.Source,
		IsApproved:   p.IsApproved,
	}
	if p.Rating != nil {
		in.Rating = *p.Rating
	}
	return in
}

func adminReviewFilter(r *http.Request) services.ReviewFilter {
	q := r.URL.Query()
	f := services.ReviewFilter{
		Approved: boolParam(r, "is_approved"),
		Source:   q.Get("source"),
		Search:   q.Get("q"),
	}
	if rating, err := strconv.Atoi(q.Get("rating")); err == nil {
		f.Rating = &rating
	}
	if limit, err := strconv.ParseUint(q.Get("limit"), 10, 64); err == nil {
		f.Limit = limit
	}
	return f
}

func (s *Server) handleAdminListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.reviews.ListReviews(r.Context(), adminReviewFilter(r))
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	s.api.Respond(w, http.StatusOK, reviews)
}

func (s *Server) handleAdminCreateReview(w http.ResponseWriter, r *http.Request) {
	var p reviewPayload
	if err := s.api.DecodeJSON(r.Body, &p); err != nil {
		s.api.Err(w, r, err)
		return
	}
	rv, err := s.reviews.CreateReview(r.Context(), p.input())
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	s.api.Respond(w, http.StatusCreated, rv)
}

func (s *Server) handleAdminGetReview(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	rv, err := s.reviews.GetReview(r.Context(), id)
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	s.api.Respond(w, http.StatusOK, rv)
}

func (s *Server) handleAdminUpdateReview(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	var p reviewPayload
	if err := s.api.DecodeJSON(r.Body, &p); err != nil {
		s.api.Err(w, r, err)
		return
	}
	rv, err := s.reviews.UpdateReview(r.Context(), id, p.input())
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	s.api.Respond(w, http.StatusOK, rv)
}

func (s *Server) handleAdminDeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	if err := s.reviews.DeleteReview(r.Context(), id); err != nil {
		s.api.Err(w, r, err)
		return
	}
	s.api.Respond(w, http.StatusNoContent, nil)
}

type approveRequest struct {
	IDs []int64 `json:"ids"`
}

type approveResponse struct {
	Updated int64  `json:"updated"`
	Message string `json:"message"`
}

// handleAdminApproveReviews is the bulk "approve selected" action.
func (s *Server) handleAdminApproveReviews(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := s.api.DecodeJSON(r.Body, &req); err != nil {
		s.api.Err(w, r, err)
		return
	}
	if len(req.IDs) == 0 {
		s.api.Err(w, r, &services.Error{Code: services.EInvalid, Msg: "ids must list at least one review"})
		return
	}
	n, err := s.reviews.ApproveReviews(r.Context(), req.IDs)
	if err != nil {
		s.api.Err(w, r, err)
		return
	}
	s.api.Respond(w, http.StatusOK, approveResponse{Updated: n, Message: fmt.Sprintf("%d review(s) approved.", n)})
}

// Dashboard

type dashboardData struct {
	Site    config.AdminSite
	Catalog *services.CatalogCounts
	Reviews *services.ReviewCounts
	Pending []models.Review
	Flagged []models.MenuItem
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		data = dashboardData{Site: s.site}
		err  error
		no   = false
		yes  = true
	)
	if data.Catalog, err = s.catalog.Counts(ctx); err != nil {
		s.renderError(w, r, err)
		return
	}
	if data.Reviews, err = s.reviews.Counts(ctx); err != nil {
		s.renderError(w, r, err)
		return
	}
	if data.Pending, err = s.reviews.ListReviews(ctx, services.ReviewFilter{Approved: &no, Limit: 10}); err != nil {
		s.renderError(w, r, err)
		return
	}
	if data.Flagged, err = s.catalog.ListMenuItems(ctx, services.MenuItemFilter{NeedsVerification: &yes}); err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, "admin.html", data)
}

func trimmedTitle(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " | ")
}
