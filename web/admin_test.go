package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"dhaba/models"
	"dhaba/services"
)

func TestAdminRequiresCredentials(t *testing.T) {
	f := newFixture(t, testConfig(t))

	w := f.do(t, request{method: http.MethodGet, path: "/admin/api/categories"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, `Basic realm="Dhaba Admin", charset="UTF-8"`, w.Header().Get("WWW-Authenticate"))
	require.Equal(t, services.EUnauthorized, decode[errBody](t, w).Code)

	r := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	r.SetBasicAuth(testAdminUser, "wrong")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, r)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	w = f.do(t, request{method: http.MethodGet, path: "/admin/api/categories", admin: true})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAdminCategoryLifecycle(t *testing.T) {
	f := newFixture(t, testConfig(t))

	w := f.do(t, request{method: http.MethodPost, path: "/admin/api/categories", body: `{"name":"Rolls","display_order":3}`, admin: true})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.Category](t, w)
	require.Equal(t, "Rolls", created.Name)
	id := itoa(created.ID)

	w = f.do(t, request{method: http.MethodPost, path: "/admin/api/categories", body: `{"name":"Rolls"}`, admin: true})
	require.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, request{method: http.MethodPost, path: "/admin/api/categories", body: `{"name":""}`, admin: true})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, request{method: http.MethodPut, path: "/admin/api/categories/" + id, body: `{"name":"Kathi Rolls","display_order":1}`, admin: true})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Kathi Rolls", decode[models.Category](t, w).Name)

	_, err := f.catalog.CreateMenuItem(context.Background(), models.MenuItemInput{
		CategoryID: created.ID, Name: "Paneer Roll", Veg: true, PriceRegular: price("90"), IsAvailable: true,
	})
	require.NoError(t, err)

	w = f.do(t, request{method: http.MethodGet, path: "/admin/api/categories", admin: true})
	require.Equal(t, http.StatusOK, w.Code)
	summaries := decode[[]models.CategorySummary](t, w)
	require.Len(t, summaries, 1)
	require.Equal(t, 1, summaries[0].ItemCount)

	w = f.do(t, request{method: http.MethodDelete, path: "/admin/api/categories/" + id, admin: true})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, decode[errBody](t, w).Message, `cannot delete category "Kathi Rolls": 1 menu item(s) still reference it`)
}

func TestAdminDeleteEmptyCategory(t *testing.T) {
	f := newFixture(t, testConfig(t))
	c, err := f.catalog.CreateCategory(context.Background(), models.CategoryInput{Name: "Soups"})
	require.NoError(t, err)

	w := f.do(t, request{method: http.MethodDelete, path: "/admin/api/categories/" + itoa(c.ID), admin: true})
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Empty(t, w.Body.String())

	w = f.do(t, request{method: http.MethodGet, path: "/admin/api/categories/" + itoa(c.ID), admin: true})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminBadIDIsNotFound(t *testing.T) {
	f := newFixture(t, testConfig(t))
	for _, path := range []string{"/admin/api/items/abc", "/admin/api/reviews/0", "/admin/api/categories/-4"} {
		w := f.do(t, request{method: http.MethodGet, path: path, admin: true})
		require.Equal(t, http.StatusNotFound, w.Code, path)
		require.Equal(t, services.ENotFound, w.Header().Get(ErrorCodeHeader), path)
	}
}

func TestAdminMalformedJSON(t *testing.T) {
	f := newFixture(t, testConfig(t))

	w := f.do(t, request{method: http.MethodPost, path: "/admin/api/categories", body: `{"name":`, admin: true})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "malformed JSON body", decode[errBody](t, w).Message)

	w = f.do(t, request{method: http.MethodPost, path: "/admin/api/categories", body: `{"display_order":"first"}`, admin: true})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, `invalid value for field "display_order"`, decode[errBody](t, w).Message)
}

func TestAdminItemLifecycle(t *testing.T) {
	f := newFixture(t, testConfig(t))
	starters, _ := seedMenu(t, f)

	body := `{"category":` + itoa(starters.ID) + `,"name":"Hara Bhara Kabab","price_half":"120","price_full":"220"}`
	w := f.do(t, request{method: http.MethodPost, path: "/admin/api/items", body: body, admin: true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decode[models.MenuItem](t, w)
	require.True(t, item.Veg)
	require.True(t, item.IsAvailable)
	require.False(t, item.Featured)
	require.Equal(t, "Starters", item.CategoryName)
	require.True(t, item.HasHalfFull())

	body = `{"category":` + itoa(starters.ID) + `,"name":"Hara Bhara Kabab","price_regular":"130","is_available":false}`
	w = f.do(t, request{method: http.MethodPut, path: "/admin/api/items/" + itoa(item.ID), body: body, admin: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.MenuItem](t, w)
	require.False(t, updated.IsAvailable)
	require.Equal(t, "₹130", updated.DisplayPrice())

	w = f.do(t, request{method: http.MethodPost, path: "/admin/api/items", body: `{"category":999,"name":"Ghost"}`, admin: true})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, request{method: http.MethodPost, path: "/admin/api/items", body: `{"category":` + itoa(starters.ID) + `,"name":"Cheap","price_regular":"-1"}`, admin: true})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, request{method: http.MethodGet, path: "/admin/api/items?is_available=false", admin: true})
	require.Equal(t, http.StatusOK, w.Code)
	var unavailable []string
	for _, m := range decode[[]models.MenuItem](t, w) {
		unavailable = append(unavailable, m.Name)
	}
	require.ElementsMatch(t, []string{"Hara Bhara Kabab", "Mutton Rogan Josh"}, unavailable)

	w = f.do(t, request{method: http.MethodDelete, path: "/admin/api/items/" + itoa(item.ID), admin: true})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(t, request{method: http.MethodDelete, path: "/admin/api/items/" + itoa(item.ID), admin: true})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminReviewModeration(t *testing.T) {
	f := newFixture(t, testConfig(t))

	var ids []string
	for _, body := range []string{
		`{"reviewer_name":"Asha","body":"Lovely food","source":"Google"}`,
		`{"reviewer_name":"Ravi","rating":4,"body":"Good naan"}`,
	} {
		w := f.do(t, request{method: http.MethodPost, path: "/admin/api/reviews", body: body, admin: true})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		rv := decode[models.Review](t, w)
		require.False(t, rv.IsApproved)
		ids = append(ids, itoa(rv.ID))
	}

	w := f.do(t, request{method: http.MethodGet, path: "/admin/api/reviews/" + ids[0], admin: true})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.DefaultRating, decode[models.Review](t, w).Rating)

	w = f.do(t, request{method: http.MethodPost, path: "/admin/api/reviews", body: `{"reviewer_name":"X","rating":6,"body":"too many stars"}`, admin: true})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, request{method: http.MethodPost, path: "/admin/api/reviews/approve", body: `{"ids":[]}`, admin: true})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, request{method: http.MethodPost, path: "/admin/api/reviews/approve", body: `{"ids":[` + ids[0] + `,` + ids[1] + `]}`, admin: true})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[approveResponse](t, w)
	require.Equal(t, int64(2), resp.Updated)
	require.Equal(t, "2 review(s) approved.", resp.Message)

	w = f.do(t, request{method: http.MethodGet, path: "/admin/api/reviews?is_approved=false", admin: true})
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decode[[]models.Review](t, w))

	w = f.do(t, request{method: http.MethodDelete, path: "/admin/api/reviews/" + ids[1], admin: true})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, request{method: http.MethodGet, path: "/admin/api/reviews?rating=5", admin: true})
	require.Len(t, decode[[]models.Review](t, w), 1)
}

func TestAdminDashboard(t *testing.T) {
	f := newFixture(t, testConfig(t))
	starters, _ := seedMenu(t, f)
	ctx := context.Background()
	_, err := f.catalog.CreateMenuItem(ctx, models.MenuItemInput{
		CategoryID: starters.ID, Name: "Paneer Maharaja", Veg: true, NeedsVerification: true, IsAvailable: true,
	})
	require.NoError(t, err)
	_, err = f.reviews.CreateReview(ctx, models.ReviewInput{ReviewerName: "Meera", Rating: 3, Body: "Needs more spice"})
	require.NoError(t, err)

	w := f.do(t, request{method: http.MethodGet, path: "/admin/", admin: true})
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, "<title>Restaurant Dashboard | Dhaba Admin</title>")
	require.Contains(t, body, "Paneer Maharaja")
	require.Contains(t, body, "Needs more spice")
	require.Contains(t, body, "★★★")
	require.Contains(t, body, models.PriceOnRequest)
}
