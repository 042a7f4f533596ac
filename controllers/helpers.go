package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/blogicum/blogicum/config"
	"github.com/blogicum/blogicum/middleware"
	"github.com/blogicum/blogicum/models"
	"github.com/blogicum/blogicum/policy"
	"github.com/blogicum/blogicum/utils"
)

// requester builds the policy actor from whatever identity the auth
// middleware established. An empty context yields the anonymous actor.
func requester(ctx *gin.Context) policy.Actor {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return policy.Anonymous()
	}

	var id uint
	switch v := value.(type) {
	case uint:
		id = v
	case int:
		id = uint(v)
	case int64:
		id = uint(v)
	case float64:
		id = uint(v)
	default:
		return policy.Anonymous()
	}

	username, _ := ctx.Get(middleware.ContextUsernameKey)
	uname, _ := username.(string)
	return policy.Actor{ID: id, Username: uname, Authenticated: true}
}

func isAdmin(actor policy.Actor) bool {
	if !actor.Authenticated || actor.Username == "" {
		return false
	}
	for _, u := range config.Get().AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(u), actor.Username) {
			return true
		}
	}
	return false
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := config.Get().PageSize
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func paginationPayload(page, pageSize int, total int64) gin.H {
	return gin.H{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// postDetailPath is the canonical read-only view of a post, used as the
// redirect target when a mutation is refused.
func postDetailPath(postID uint) string {
	return fmt.Sprintf("/api/v1/posts/%d", postID)
}

func redirectToPostDetail(ctx *gin.Context, postID uint) {
	ctx.Redirect(http.StatusSeeOther, postDetailPath(postID))
	ctx.Abort()
}

// envelope wraps a payload the way utils.Success would, so cached bytes
// can be served verbatim on a hit.
func envelope(data interface{}) utils.Envelope {
	return utils.Envelope{Code: 0, Message: "success", Data: data}
}

func publicUserPayload(user *models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"created_at": user.CreatedAt,
	}
}

func fullUserPayload(user *models.User) gin.H {
	m := publicUserPayload(user)
	m["email"] = user.Email
	m["updated_at"] = user.UpdatedAt
	return m
}
