package controllers

import (
	"errors"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/blogicum/blogicum/models"
	"github.com/blogicum/blogicum/store"
	"github.com/blogicum/blogicum/utils"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// AdminController manages the editorial taxonomy: categories and
// locations. Toggling a category's published flag immediately changes the
// effective visibility of every post attached to it.
type AdminController struct {
	store store.Store
}

func NewAdminController(s store.Store) *AdminController {
	return &AdminController{store: s}
}

type categoryCreateRequest struct {
	Title       string `json:"title" binding:"required,max=256"`
	Slug        string `json:"slug" binding:"required,max=64"`
	Description string `json:"description"`
	IsPublished *bool  `json:"is_published"`
}

type categoryUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsPublished *bool   `json:"is_published"`
}

type locationCreateRequest struct {
	Name        string `json:"name" binding:"required,max=256"`
	IsPublished *bool  `json:"is_published"`
}

type locationUpdateRequest struct {
	Name        *string `json:"name"`
	IsPublished *bool   `json:"is_published"`
}

// RequireAdmin gates the admin route group on the configured allow list.
func (ac *AdminController) RequireAdmin(ctx *gin.Context) {
	if !isAdmin(requester(ctx)) {
		utils.Error(ctx, 403, 40301, "admin access required")
		ctx.Abort()
		return
	}
	ctx.Next()
}

func invalidateTaxonomyCaches() {
	invalidatePostCaches()
	utils.InvalidateByPrefix("cache:categories:")
}

func (ac *AdminController) CreateCategory(ctx *gin.Context) {
	var req categoryCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, 400, 40001, "title and slug are required")
		return
	}

	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugPattern.MatchString(slug) {
		utils.Error(ctx, 400, 40005, "slug must be lowercase letters, digits and hyphens")
		return
	}
	if _, err := ac.store.GetCategoryBySlug(ctx.Request.Context(), slug); err == nil {
		utils.Error(ctx, 409, 40902, "slug already in use")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		utils.Error(ctx, 500, 50001, "failed to check slug")
		return
	}

	category := &models.Category{
		Title:       strings.TrimSpace(utils.Sanitize(req.Title)),
		Slug:        slug,
		Description: utils.Sanitize(req.Description),
		IsPublished: true,
	}
	if req.IsPublished != nil {
		category.IsPublished = *req.IsPublished
	}

	if err := ac.store.CreateCategory(ctx.Request.Context(), category); err != nil {
		utils.Error(ctx, 500, 50001, "failed to create category")
		return
	}
	invalidateTaxonomyCaches()
	utils.Success(ctx, gin.H{"category": category})
}

// UpdateCategory edits a category in place. The slug is permanent; it is
// the category's public address.
func (ac *AdminController) UpdateCategory(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, 404, 40402, "category not found")
		return
	}
	category, err := ac.store.GetCategoryByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, 404, 40402, "category not found")
			return
		}
		utils.Error(ctx, 500, 50001, "failed to load category")
		return
	}

	var req categoryUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, 400, 40001, "invalid category payload")
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(utils.Sanitize(*req.Title))
		if title == "" {
			utils.Error(ctx, 400, 40001, "title cannot be empty")
			return
		}
		category.Title = title
	}
	if req.Description != nil {
		category.Description = utils.Sanitize(*req.Description)
	}
	if req.IsPublished != nil {
		category.IsPublished = *req.IsPublished
	}

	if err := ac.store.UpdateCategory(ctx.Request.Context(), category); err != nil {
		utils.Error(ctx, 500, 50001, "failed to update category")
		return
	}
	invalidateTaxonomyCaches()
	utils.Success(ctx, gin.H{"category": category})
}

func (ac *AdminController) CreateLocation(ctx *gin.Context) {
	var req locationCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, 400, 40001, "name is required")
		return
	}

	location := &models.Location{
		Name:        strings.TrimSpace(utils.Sanitize(req.Name)),
		IsPublished: true,
	}
	if location.Name == "" {
		utils.Error(ctx, 400, 40001, "name is required")
		return
	}
	if req.IsPublished != nil {
		location.IsPublished = *req.IsPublished
	}

	if err := ac.store.CreateLocation(ctx.Request.Context(), location); err != nil {
		utils.Error(ctx, 500, 50001, "failed to create location")
		return
	}
	invalidatePostCaches()
	utils.Success(ctx, gin.H{"location": location})
}

func (ac *AdminController) UpdateLocation(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, 404, 40405, "location not found")
		return
	}
	location, err := ac.store.GetLocationByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, 404, 40405, "location not found")
			return
		}
		utils.Error(ctx, 500, 50001, "failed to load location")
		return
	}

	var req locationUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, 400, 40001, "invalid location payload")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(utils.Sanitize(*req.Name))
		if name == "" {
			utils.Error(ctx, 400, 40001, "name cannot be empty")
			return
		}
		location.Name = name
	}
	if req.IsPublished != nil {
		location.IsPublished = *req.IsPublished
	}

	if err := ac.store.UpdateLocation(ctx.Request.Context(), location); err != nil {
		utils.Error(ctx, 500, 50001, "failed to update location")
		return
	}
	invalidatePostCaches()
	utils.Success(ctx, gin.H{"location": location})
}
