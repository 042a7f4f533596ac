package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/blogicum/blogicum/store"
	"github.com/blogicum/blogicum/utils"
)

type CategoryController struct {
	store store.Store
}

func NewCategoryController(s store.Store) *CategoryController {
	return &CategoryController{store: s}
}

// ListCategories returns the published categories for navigation menus.
func (cc *CategoryController) ListCategories(ctx *gin.Context) {
	const cacheKey = "cache:categories:published"
	if serveCached(ctx, cacheKey) {
		return
	}

	categories, err := cc.store.ListCategories(ctx.Request.Context(), true)
	if err != nil {
		utils.Error(ctx, 500, 50001, "failed to load categories")
		return
	}

	data := gin.H{"items": categories}
	utils.CacheSetJSON(cacheKey, envelope(data), listCacheTTL)
	utils.Success(ctx, data)
}
