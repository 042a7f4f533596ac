package controllers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blogicum/blogicum/models"
	"github.com/blogicum/blogicum/policy"
	"github.com/blogicum/blogicum/store"
	"github.com/blogicum/blogicum/utils"
)

const listCacheTTL = 60 * time.Second

type PostController struct {
	store store.Store
}

func NewPostController(s store.Store) *PostController {
	return &PostController{store: s}
}

type postRequest struct {
	Title       string     `json:"title" binding:"required,max=256"`
	Text        string     `json:"text" binding:"required"`
	PubDate     *time.Time `json:"pub_date"`
	IsPublished *bool      `json:"is_published"`
	CategoryID  *uint      `json:"category_id"`
	LocationID  *uint      `json:"location_id"`
}

func invalidatePostCaches() {
	utils.InvalidateByPrefix("cache:posts:")
	utils.InvalidateByPrefix("cache:post:detail:")
}

func serveCached(ctx *gin.Context, key string) bool {
	if b, ok := utils.CacheGetBytes(key); ok {
		ctx.Data(200, "application/json; charset=utf-8", b)
		return true
	}
	return false
}

// ListPosts is the home feed: every effectively visible post, newest
// publication first.
func (pc *PostController) ListPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	cacheKey := fmt.Sprintf("cache:posts:home:p=%d:s=%d", page, pageSize)
	if serveCached(ctx, cacheKey) {
		return
	}

	now := time.Now()
	posts, total, err := pc.store.ListPosts(ctx.Request.Context(), store.PostFilter{
		VisibleAt: &now,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		utils.Error(ctx, 500, 50001, "failed to load posts")
		return
	}

	data := gin.H{"items": posts, "pagination": paginationPayload(page, pageSize, total)}
	utils.CacheSetJSON(cacheKey, envelope(data), listCacheTTL)
	utils.Success(ctx, data)
}

// ListCategoryPosts serves the feed of one published category. An unknown
// slug and an unpublished category are indistinguishable to callers.
func (pc *PostController) ListCategoryPosts(ctx *gin.Context) {
	slug := strings.TrimSpace(ctx.Param("slug"))
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	cacheKey := fmt.Sprintf("cache:posts:category:%s:p=%d:s=%d", slug, page, pageSize)
	if serveCached(ctx, cacheKey) {
		return
	}

	category, err := pc.store.GetCategoryBySlug(ctx.Request.Context(), slug)
	if err != nil || !category.IsPublished {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, 500, 50001, "failed to load category")
			return
		}
		utils.Error(ctx, 404, 40402, "category not found")
		return
	}

	now := time.Now()
	posts, total, err := pc.store.ListPosts(ctx.Request.Context(), store.PostFilter{
		VisibleAt:  &now,
		CategoryID: &category.ID,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		utils.Error(ctx, 500, 50001, "failed to load posts")
		return
	}

	data := gin.H{
		"category":   category,
		"items":      posts,
		"pagination": paginationPayload(page, pageSize, total),
	}
	utils.CacheSetJSON(cacheKey, envelope(data), listCacheTTL)
	utils.Success(ctx, data)
}

// ListUserPosts is the profile feed. The profile owner sees all of their
// posts, hidden ones included; everyone else gets the visible subset.
func (pc *PostController) ListUserPosts(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	actor := requester(ctx)

	user, err := pc.store.GetUserByUsername(ctx.Request.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, 404, 40404, "user not found")
			return
		}
		utils.Error(ctx, 500, 50001, "failed to load user")
		return
	}

	includeHidden := policy.ProfileIncludesHidden(actor, user.ID)
	cacheKey := fmt.Sprintf("cache:posts:profile:%s:p=%d:s=%d", user.Username, page, pageSize)
	if !includeHidden && serveCached(ctx, cacheKey) {
		return
	}

	filter := store.PostFilter{AuthorID: &user.ID, Page: page, PageSize: pageSize}
	if !includeHidden {
		now := time.Now()
		filter.VisibleAt = &now
	}
	posts, total, err := pc.store.ListPosts(ctx.Request.Context(), filter)
	if err != nil {
		utils.Error(ctx, 500, 50001, "failed to load posts")
		return
	}

	data := gin.H{
		"profile":    publicUserPayload(user),
		"items":      posts,
		"pagination": paginationPayload(page, pageSize, total),
	}
	if !includeHidden {
		utils.CacheSetJSON(cacheKey, envelope(data), listCacheTTL)
	}
	utils.Success(ctx, data)
}

// GetPost serves the detail view with comments oldest first. Posts the
// requester may not see are reported as missing, never as forbidden.
func (pc *PostController) GetPost(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, 404, 40401, "post not found")
		return
	}

	// Only publicly visible payloads are ever written under this key, and
	// the detail body does not vary by viewer, so a hit is safe to serve
	// before any policy check. Mutations and publish toggles invalidate it.
	cacheKey := fmt.Sprintf("cache:post:detail:%d", id)
	if serveCached(ctx, cacheKey) {
		return
	}

	actor := requester(ctx)
	post, err := pc.store.GetPost(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, 404, 40401, "post not found")
			return
		}
		utils.Error(ctx, 500, 50001, "failed to load post")
		return
	}

	now := time.Now()
	if policy.CanView(actor, post, now) != policy.Allowed {
		utils.Error(ctx, 404, 40401, "post not found")
		return
	}

	comments, err := pc.store.ListComments(ctx.Request.Context(), post.ID)
	if err != nil {
		utils.Error(ctx, 500, 50001, "failed to load comments")
		return
	}
	post.Comments = comments
	post.CommentCount = int64(len(comments))

	data := gin.H{"post": post}
	if policy.IsPubliclyVisible(post, now) {
		utils.CacheSetJSON(cacheKey, envelope(data), listCacheTTL)
	}
	utils.Success(ctx, data)
}

// CreatePost publishes a post owned by the requester. The author is always
// the authenticated user, whatever the request body claims.
func (pc *PostController) CreatePost(ctx *gin.Context) {
	actor := requester(ctx)

	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, 400, 40001, "title and text are required")
		return
	}

	post := &models.Post{
		Title:       strings.TrimSpace(utils.Sanitize(req.Title)),
		Text:        utils.Sanitize(req.Text),
		AuthorID:    actor.ID,
		IsPublished: true,
		PubDate:     time.Now(),
	}
	if post.Title == "" || strings.TrimSpace(post.Text) == "" {
		utils.Error(ctx, 400, 40001, "title and text are required")
		return
	}
	if req.PubDate != nil {
		post.PubDate = *req.PubDate
	}
	if req.IsPublished != nil {
		post.IsPublished = *req.IsPublished
	}

	if !pc.applyRelations(ctx, post, &req) {
		return
	}

	if err := pc.store.CreatePost(ctx.Request.Context(), post); err != nil {
		utils.Error(ctx, 500, 50001, "failed to create post")
		return
	}
	invalidatePostCaches()

	created, err := pc.store.GetPost(ctx.Request.Context(), post.ID)
	if err != nil {
		created = post
	}
	utils.Success(ctx, gin.H{"post": created})
}

// UpdatePost edits a post. Only the author may edit; anyone else is
// bounced back to the detail view with nothing changed.
func (pc *PostController) UpdatePost(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, 404, 40401, "post not found")
		return
	}
	actor := requester(ctx)

	post, err := pc.store.GetPost(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, 404, 40401, "post not found")
			return
		}
		utils.Error(ctx, 500, 50001, "failed to load post")
		return
	}

	if policy.CanMutate(actor, post.AuthorID) != policy.Allowed {
		redirectToPostDetail(ctx, post.ID)
		return
	}

	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, 400, 40001, "title and text are required")
		return
	}

	post.Title = strings.TrimSpace(utils.Sanitize(req.Title))
	post.Text = utils.Sanitize(req.Text)
	if post.Title == "" || strings.TrimSpace(post.Text) == "" {
		utils.Error(ctx, 400, 40001, "title and text are required")
		return
	}
	if req.PubDate != nil {
		post.PubDate = *req.PubDate
	}
	if req.IsPublished != nil {
		post.IsPublished = *req.IsPublished
	}

	if !pc.applyRelations(ctx, post, &req) {
		return
	}

	if err := pc.store.UpdatePost(ctx.Request.Context(), post); err != nil {
		utils.Error(ctx, 500, 50001, "failed to update post")
		return
	}
	invalidatePostCaches()

	updated, err := pc.store.GetPost(ctx.Request.Context(), post.ID)
	if err != nil {
		updated = post
	}
	utils.Success(ctx, gin.H{"post": updated})
}

// DeletePost removes a post and its comments. Same ownership rule as edit.
func (pc *PostController) DeletePost(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, 404, 40401, "post not found")
		return
	}
	actor := requester(ctx)

	post, err := pc.store.GetPost(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, 404, 40401, "post not found")
			return
		}
		utils.Error(ctx, 500, 50001, "failed to load post")
		return
	}

	if policy.CanMutate(actor, post.AuthorID) != policy.Allowed {
		redirectToPostDetail(ctx, post.ID)
		return
	}

	if err := pc.store.DeletePost(ctx.Request.Context(), post.ID); err != nil {
		utils.Error(ctx, 500, 50001, "failed to delete post")
		return
	}
	invalidatePostCaches()
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// applyRelations validates and sets the category and location references.
// Only published ones can be attached. Like the other optional fields, an
// omitted id leaves the current reference untouched; an explicit 0 clears it.
func (pc *PostController) applyRelations(ctx *gin.Context, post *models.Post, req *postRequest) bool {
	if req.CategoryID != nil {
		if *req.CategoryID == 0 {
			post.CategoryID = nil
		} else {
			category, err := pc.store.GetCategoryByID(ctx.Request.Context(), *req.CategoryID)
			if err != nil || !category.IsPublished {
				utils.Error(ctx, 400, 40002, "invalid category")
				return false
			}
			post.CategoryID = req.CategoryID
		}
	}
	post.Category = nil

	if req.LocationID != nil {
		if *req.LocationID == 0 {
			post.LocationID = nil
		} else {
			location, err := pc.store.GetLocationByID(ctx.Request.Context(), *req.LocationID)
			if err != nil || !location.IsPublished {
				utils.Error(ctx, 400, 40003, "invalid location")
				return false
			}
			post.LocationID = req.LocationID
		}
	}
	post.Location = nil
	return true
}
