package controllers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogicum/blogicum/models"
	"github.com/blogicum/blogicum/store"
)

func TestHomeFeedFiltersHiddenPosts(t *testing.T) {
	r, s := newTestRouter()
	author := seedUser(t, s, "alice")
	hiddenCat := seedCategory(t, s, "drafts", false)

	seedPost(t, s, author, "visible")
	seedPost(t, s, author, "unpublished", func(p *models.Post) { p.IsPublished = false })
	seedPost(t, s, author, "scheduled", func(p *models.Post) { p.PubDate = time.Now().Add(time.Hour) })
	seedPost(t, s, author, "hidden category", func(p *models.Post) { p.CategoryID = &hiddenCat.ID })

	w := doJSON(t, r, http.MethodGet, "/api/v1/posts", "", nil)
	requireStatus(t, w, http.StatusOK)

	var data feedData
	decodeData(t, w, &data)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "visible", data.Items[0].Title)
	assert.EqualValues(t, 1, data.Pagination.Total)
}

func TestHomeFeedOrderAndCommentCount(t *testing.T) {
	r, s := newTestRouter()
	author := seedUser(t, s, "alice")

	older := seedPost(t, s, author, "older", func(p *models.Post) { p.PubDate = time.Now().Add(-2 * time.Hour) })
	newer := seedPost(t, s, author, "newer")
	seedComment(t, s, older, author, "first")
	seedComment(t, s, older, author, "second")

	w := doJSON(t, r, http.MethodGet, "/api/v1/posts", "", nil)
	requireStatus(t, w, http.StatusOK)

	var data feedData
	decodeData(t, w, &data)
	require.Len(t, data.Items, 2)
	assert.Equal(t, newer.ID, data.Items[0].ID)
	assert.Equal(t, older.ID, data.Items[1].ID)
	assert.EqualValues(t, 0, data.Items[0].CommentCount)
	assert.EqualValues(t, 2, data.Items[1].CommentCount)
}

func TestPostDetailVisibility(t *testing.T) {
	r, s := newTestRouter()
	owner := seedUser(t, s, "alice")
	stranger := seedUser(t, s, "bob")
	hidden := seedPost(t, s, owner, "draft", func(p *models.Post) { p.IsPublished = false })
	path := fmt.Sprintf("/api/v1/posts/%d", hidden.ID)

	// Anonymous and non-owner requests cannot tell the post exists.
	requireStatus(t, doJSON(t, r, http.MethodGet, path, "", nil), http.StatusNotFound)
	requireStatus(t, doJSON(t, r, http.MethodGet, path, tokenFor(t, stranger), nil), http.StatusNotFound)

	w := doJSON(t, r, http.MethodGet, path, tokenFor(t, owner), nil)
	requireStatus(t, w, http.StatusOK)
	var data struct {
		Post models.Post `json:"post"`
	}
	decodeData(t, w, &data)
	assert.Equal(t, hidden.ID, data.Post.ID)
}

func TestPostDetailListsCommentsOldestFirst(t *testing.T) {
	r, s := newTestRouter()
	author := seedUser(t, s, "alice")
	post := seedPost(t, s, author, "discussed")
	seedComment(t, s, post, author, "first")
	seedComment(t, s, post, author, "second")

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", post.ID), "", nil)
	requireStatus(t, w, http.StatusOK)

	var data struct {
		Post models.Post `json:"post"`
	}
	decodeData(t, w, &data)
	require.Len(t, data.Post.Comments, 2)
	assert.Equal(t, "first", data.Post.Comments[0].Text)
	assert.Equal(t, "second", data.Post.Comments[1].Text)
	assert.EqualValues(t, 2, data.Post.CommentCount)
}

func TestCategoryFeed(t *testing.T) {
	r, s := newTestRouter()
	author := seedUser(t, s, "alice")
	tech := seedCategory(t, s, "tech", true)
	drafts := seedCategory(t, s, "drafts", false)

	seedPost(t, s, author, "in tech", func(p *models.Post) { p.CategoryID = &tech.ID })
	seedPost(t, s, author, "in drafts", func(p *models.Post) { p.CategoryID = &drafts.ID })
	seedPost(t, s, author, "uncategorized")

	w := doJSON(t, r, http.MethodGet, "/api/v1/categories/tech/posts", "", nil)
	requireStatus(t, w, http.StatusOK)
	var data feedData
	decodeData(t, w, &data)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "in tech", data.Items[0].Title)

	// An unpublished category is indistinguishable from a missing one.
	requireStatus(t, doJSON(t, r, http.MethodGet, "/api/v1/categories/drafts/posts", "", nil), http.StatusNotFound)
	requireStatus(t, doJSON(t, r, http.MethodGet, "/api/v1/categories/nope/posts", "", nil), http.StatusNotFound)
}

func TestProfileFeedOwnerSeesHiddenPosts(t *testing.T) {
	r, s := newTestRouter()
	owner := seedUser(t, s, "alice")
	stranger := seedUser(t, s, "bob")

	seedPost(t, s, owner, "public")
	seedPost(t, s, owner, "draft", func(p *models.Post) { p.IsPublished = false })
	seedPost(t, s, owner, "scheduled", func(p *models.Post) { p.PubDate = time.Now().Add(time.Hour) })

	w := doJSON(t, r, http.MethodGet, "/api/v1/users/alice/posts", tokenFor(t, owner), nil)
	requireStatus(t, w, http.StatusOK)
	var ownerData feedData
	decodeData(t, w, &ownerData)
	assert.Len(t, ownerData.Items, 3)

	w = doJSON(t, r, http.MethodGet, "/api/v1/users/alice/posts", tokenFor(t, stranger), nil)
	requireStatus(t, w, http.StatusOK)
	var strangerData feedData
	decodeData(t, w, &strangerData)
	assert.Len(t, strangerData.Items, 1)

	w = doJSON(t, r, http.MethodGet, "/api/v1/users/alice/posts", "", nil)
	requireStatus(t, w, http.StatusOK)
	var anonData feedData
	decodeData(t, w, &anonData)
	assert.Len(t, anonData.Items, 1)

	requireStatus(t, doJSON(t, r, http.MethodGet, "/api/v1/users/ghost/posts", "", nil), http.StatusNotFound)
}

func TestCreatePostForcesAuthor(t *testing.T) {
	r, s := newTestRouter()
	dave := seedUser(t, s, "dave")
	carol := seedUser(t, s, "carol")

	body := map[string]interface{}{
		"title":     "mine",
		"text":      "content",
		"author_id": carol.ID, // ignored
	}
	w := doJSON(t, r, http.MethodPost, "/api/v1/posts", tokenFor(t, dave), body)
	requireStatus(t, w, http.StatusOK)

	var data struct {
		Post models.Post `json:"post"`
	}
	decodeData(t, w, &data)
	assert.Equal(t, dave.ID, data.Post.AuthorID)
}

func TestCreatePostRejectsUnpublishedCategory(t *testing.T) {
	r, s := newTestRouter()
	author := seedUser(t, s, "alice")
	drafts := seedCategory(t, s, "drafts", false)

	body := map[string]interface{}{
		"title":       "post",
		"text":        "content",
		"category_id": drafts.ID,
	}
	requireStatus(t, doJSON(t, r, http.MethodPost, "/api/v1/posts", tokenFor(t, author), body), http.StatusBadRequest)
}

func TestUpdatePostByNonOwnerRedirectsUnchanged(t *testing.T) {
	r, s := newTestRouter()
	owner := seedUser(t, s, "alice")
	other := seedUser(t, s, "bob")
	post := seedPost(t, s, owner, "original")

	body := map[string]interface{}{"title": "hijacked", "text": "nope"}
	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/v1/posts/%d", post.ID), tokenFor(t, other), body)
	requireStatus(t, w, http.StatusSeeOther)
	assert.Equal(t, fmt.Sprintf("/api/v1/posts/%d", post.ID), w.Header().Get("Location"))

	reloaded, err := s.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", reloaded.Title)
}

func TestMutationWithoutTokenRedirectsToLogin(t *testing.T) {
	r, s := newTestRouter()
	owner := seedUser(t, s, "alice")
	post := seedPost(t, s, owner, "original")

	path := fmt.Sprintf("/api/v1/posts/%d", post.ID)
	w := doJSON(t, r, http.MethodPut, path, "", map[string]interface{}{"title": "x", "text": "y"})
	requireStatus(t, w, http.StatusFound)

	location := w.Header().Get("Location")
	parsed, err := url.Parse(location)
	require.NoError(t, err)
	assert.Equal(t, "/login", parsed.Path)
	assert.Equal(t, path, parsed.Query().Get("next"))
}

func TestDeletePostCascadesComments(t *testing.T) {
	r, s := newTestRouter()
	owner := seedUser(t, s, "alice")
	post := seedPost(t, s, owner, "doomed")
	comment := seedComment(t, s, post, owner, "goes with it")

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d", post.ID), tokenFor(t, owner), nil)
	requireStatus(t, w, http.StatusOK)

	_, err := s.GetPost(context.Background(), post.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	_, err = s.GetComment(context.Background(), post.ID, comment.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestPostDetailIdenticalForEveryViewer(t *testing.T) {
	// The detail body of a visible post carries no viewer-specific data.
	// The shared response cache relies on that: a cached copy may be
	// served to anyone before the ownership check runs.
	r, s := newTestRouter()
	owner := seedUser(t, s, "alice")
	stranger := seedUser(t, s, "bob")
	post := seedPost(t, s, owner, "public")
	path := fmt.Sprintf("/api/v1/posts/%d", post.ID)

	anon := doJSON(t, r, http.MethodGet, path, "", nil)
	asOwner := doJSON(t, r, http.MethodGet, path, tokenFor(t, owner), nil)
	asStranger := doJSON(t, r, http.MethodGet, path, tokenFor(t, stranger), nil)

	requireStatus(t, anon, http.StatusOK)
	requireStatus(t, asOwner, http.StatusOK)
	requireStatus(t, asStranger, http.StatusOK)
	assert.JSONEq(t, anon.Body.String(), asOwner.Body.String())
	assert.JSONEq(t, anon.Body.String(), asStranger.Body.String())
}

func TestUpdatePostKeepsRelationsWhenOmitted(t *testing.T) {
	r, s := newTestRouter()
	owner := seedUser(t, s, "alice")
	tech := seedCategory(t, s, "tech", true)
	post := seedPost(t, s, owner, "original", func(p *models.Post) { p.CategoryID = &tech.ID })
	token := tokenFor(t, owner)
	path := fmt.Sprintf("/api/v1/posts/%d", post.ID)

	// Resending only title and text must not detach the category.
	w := doJSON(t, r, http.MethodPut, path, token, map[string]interface{}{"title": "edited", "text": "new body"})
	requireStatus(t, w, http.StatusOK)

	reloaded, err := s.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.CategoryID)
	assert.Equal(t, tech.ID, *reloaded.CategoryID)

	// An explicit zero clears the reference.
	w = doJSON(t, r, http.MethodPut, path, token, map[string]interface{}{"title": "edited", "text": "new body", "category_id": 0})
	requireStatus(t, w, http.StatusOK)

	reloaded, err = s.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CategoryID)
}

func TestFutureScheduledPostHiddenFromStrangers(t *testing.T) {
	r, s := newTestRouter()
	owner := seedUser(t, s, "alice")
	stranger := seedUser(t, s, "bob")
	scheduled := seedPost(t, s, owner, "tomorrow", func(p *models.Post) { p.PubDate = time.Now().Add(24 * time.Hour) })
	path := fmt.Sprintf("/api/v1/posts/%d", scheduled.ID)

	requireStatus(t, doJSON(t, r, http.MethodGet, path, tokenFor(t, stranger), nil), http.StatusNotFound)
	requireStatus(t, doJSON(t, r, http.MethodGet, path, tokenFor(t, owner), nil), http.StatusOK)
}
