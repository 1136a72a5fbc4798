package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"go.uber.org/zap"

	"dhaba/models"
	"dhaba/services"
)

//go:embed templates
var templateFS embed.FS

const (
	homeFeaturedLimit = 8
	homeReviewLimit   = 6
)

var templateFuncs = template.FuncMap{
	"stars": func(r models.Review) string { return r.Stars() },
	"title": trimmedTitle,
}

// parseTemplates builds one template set per page, each layered over base.html.
func parseTemplates() (map[string]*template.Template, error) {
	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		name := path.Base(p)
		if name == "base.html" {
			continue
		}
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/base.html", p)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// render buffers the page so template errors never produce half a response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, data any) {
	t, ok := s.templates[page]
	if !ok {
		s.renderError(w, r, fmt.Errorf("unknown page %q", page))
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		s.renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("Page render failed", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, "Server Error (500)", http.StatusInternalServerError)
}

type pageData struct {
	Title  string
	Active string
}

type featuredCard struct {
	models.MenuItem
	ImageURL string
}

type homeData struct {
	pageData
	Featured     []featuredCard
	Testimonials []models.Review
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := s.catalog.ListFeatured(ctx, homeFeaturedLimit)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	yes := true
	reviews, err := s.reviews.ListReviews(ctx, services.ReviewFilter{Approved: &yes, Limit: homeReviewLimit})
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	data := homeData{pageData: pageData{Title: "Home", Active: "home"}, Testimonials: reviews}
	for _, m := range items {
		card := featuredCard{MenuItem: m}
		if u := s.media.URL(r, m.Image); u != nil {
			card.ImageURL = *u
		}
		data.Featured = append(data.Featured, card)
	}
	s.render(w, r, "home.html", data)
}

type menuSection struct {
	models.Category
	Items []models.MenuItem
}

type menuPageData struct {
	pageData
	Sections []menuSection
}

// groupByCategory keeps category order; items arrive already sorted by name.
func groupByCategory(cats []models.Category, items []models.MenuItem) []menuSection {
	byCategory := make(map[int64][]models.MenuItem, len(cats))
	for _, m := range items {
		byCategory[m.CategoryID] = append(byCategory[m.CategoryID], m)
	}
	out := make([]menuSection, 0, len(cats))
	for _, c := range cats {
		out = append(out, menuSection{Category: c, Items: byCategory[c.ID]})
	}
	return out
}

// handleMenuPage renders every category with its available items.
func (s *Server) handleMenuPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cats, err := s.catalog.ListCategories(ctx)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	yes := true
	items, err := s.catalog.ListMenuItems(ctx, services.MenuItemFilter{Available: &yes})
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, "menu.html", menuPageData{
		pageData: pageData{Title: "Menu", Active: "menu"},
		Sections: groupByCategory(cats, items),
	})
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "about.html", pageData{Title: "About Us", Active: "about"})
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "contact.html", pageData{Title: "Contact", Active: "contact"})
}
