package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blogicum/blogicum/models"
)

func TestAdminRoutesRequireAllowListedUser(t *testing.T) {
	r, s := newTestRouter()
	regular := seedUser(t, s, "alice")

	body := map[string]interface{}{"title": "Tech", "slug": "tech"}
	requireStatus(t, doJSON(t, r, http.MethodPost, "/api/v1/admin/categories", tokenFor(t, regular), body), http.StatusForbidden)
	requireStatus(t, doJSON(t, r, http.MethodPost, "/api/v1/admin/categories", "", body), http.StatusFound)
}

func TestAdminCreateCategoryValidatesSlug(t *testing.T) {
	r, s := newTestRouter()
	admin := seedUser(t, s, "admin")
	token := tokenFor(t, admin)

	requireStatus(t, doJSON(t, r, http.MethodPost, "/api/v1/admin/categories", token,
		map[string]interface{}{"title": "Bad", "slug": "Not A Slug"}), http.StatusBadRequest)

	w := doJSON(t, r, http.MethodPost, "/api/v1/admin/categories", token,
		map[string]interface{}{"title": "Tech", "slug": "tech"})
	requireStatus(t, w, http.StatusOK)

	// Duplicate slug is rejected.
	requireStatus(t, doJSON(t, r, http.MethodPost, "/api/v1/admin/categories", token,
		map[string]interface{}{"title": "Tech Again", "slug": "tech"}), http.StatusConflict)
}

func TestUnpublishingCategoryHidesItsPosts(t *testing.T) {
	r, s := newTestRouter()
	admin := seedUser(t, s, "admin")
	author := seedUser(t, s, "alice")
	tech := seedCategory(t, s, "tech", true)
	post := seedPost(t, s, author, "in tech", func(p *models.Post) { p.CategoryID = &tech.ID })
	detail := fmt.Sprintf("/api/v1/posts/%d", post.ID)

	requireStatus(t, doJSON(t, r, http.MethodGet, detail, "", nil), http.StatusOK)

	unpublish := map[string]interface{}{"is_published": false}
	w := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/v1/admin/categories/%d", tech.ID), tokenFor(t, admin), unpublish)
	requireStatus(t, w, http.StatusOK)

	// The post disappears for everyone but its owner, immediately.
	requireStatus(t, doJSON(t, r, http.MethodGet, detail, "", nil), http.StatusNotFound)
	requireStatus(t, doJSON(t, r, http.MethodGet, detail, tokenFor(t, author), nil), http.StatusOK)

	var feed feedData
	wf := doJSON(t, r, http.MethodGet, "/api/v1/posts", "", nil)
	requireStatus(t, wf, http.StatusOK)
	decodeData(t, wf, &feed)
	assert.Empty(t, feed.Items)
}

func TestPublishedCategoriesListing(t *testing.T) {
	r, s := newTestRouter()
	seedCategory(t, s, "tech", true)
	seedCategory(t, s, "drafts", false)

	w := doJSON(t, r, http.MethodGet, "/api/v1/categories", "", nil)
	requireStatus(t, w, http.StatusOK)
	var data struct {
		Items []models.Category `json:"items"`
	}
	decodeData(t, w, &data)
	if assert.Len(t, data.Items, 1) {
		assert.Equal(t, "tech", data.Items[0].Slug)
	}
}
