package controllers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/blogicum/blogicum/models"
	"github.com/blogicum/blogicum/policy"
	"github.com/blogicum/blogicum/store"
	"github.com/blogicum/blogicum/utils"
)

type CommentController struct {
	store store.Store
}

func NewCommentController(s store.Store) *CommentController {
	return &CommentController{store: s}
}

type commentRequest struct {
	Text string `json:"text" binding:"required"`
}

// loadPost resolves the :id segment. Comment endpoints check only that
// the post exists; comment reachability already follows the post's own
// visibility on the read side.
func (cc *CommentController) loadPost(ctx *gin.Context) (*models.Post, bool) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, 404, 40401, "post not found")
		return nil, false
	}

	post, err := cc.store.GetPost(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, 404, 40401, "post not found")
			return nil, false
		}
		utils.Error(ctx, 500, 50001, "failed to load post")
		return nil, false
	}
	return post, true
}

// CreateComment attaches a comment to a post. The author and the post are
// taken from the request context and URL, never from the body.
func (cc *CommentController) CreateComment(ctx *gin.Context) {
	actor := requester(ctx)
	post, ok := cc.loadPost(ctx)
	if !ok {
		return
	}

	var req commentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, 400, 40001, "text is required")
		return
	}
	text := strings.TrimSpace(utils.Sanitize(req.Text))
	if text == "" {
		utils.Error(ctx, 400, 40001, "text is required")
		return
	}

	comment := &models.Comment{
		Text:     text,
		PostID:   post.ID,
		AuthorID: actor.ID,
	}
	if err := cc.store.CreateComment(ctx.Request.Context(), comment); err != nil {
		utils.Error(ctx, 500, 50001, "failed to create comment")
		return
	}
	invalidatePostCaches()

	created, err := cc.store.GetComment(ctx.Request.Context(), post.ID, comment.ID)
	if err != nil {
		created = comment
	}
	utils.Success(ctx, gin.H{"comment": created})
}

// UpdateComment edits a comment in place. Only its author may do so;
// everyone else is sent back to the post detail view.
func (cc *CommentController) UpdateComment(ctx *gin.Context) {
	actor := requester(ctx)
	post, ok := cc.loadPost(ctx)
	if !ok {
		return
	}

	commentID, ok := parseID(ctx.Param("commentId"))
	if !ok {
		utils.Error(ctx, 404, 40403, "comment not found")
		return
	}
	comment, err := cc.store.GetComment(ctx.Request.Context(), post.ID, commentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, 404, 40403, "comment not found")
			return
		}
		utils.Error(ctx, 500, 50001, "failed to load comment")
		return
	}

	if policy.CanMutate(actor, comment.AuthorID) != policy.Allowed {
		redirectToPostDetail(ctx, post.ID)
		return
	}

	var req commentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, 400, 40001, "text is required")
		return
	}
	text := strings.TrimSpace(utils.Sanitize(req.Text))
	if text == "" {
		utils.Error(ctx, 400, 40001, "text is required")
		return
	}

	comment.Text = text
	if err := cc.store.UpdateComment(ctx.Request.Context(), comment); err != nil {
		utils.Error(ctx, 500, 50001, "failed to update comment")
		return
	}
	invalidatePostCaches()
	utils.Success(ctx, gin.H{"comment": comment})
}

// DeleteComment removes a comment. Same ownership rule as edit.
func (cc *CommentController) DeleteComment(ctx *gin.Context) {
	actor := requester(ctx)
	post, ok := cc.loadPost(ctx)
	if !ok {
		return
	}

	commentID, ok := parseID(ctx.Param("commentId"))
	if !ok {
		utils.Error(ctx, 404, 40403, "comment not found")
		return
	}
	comment, err := cc.store.GetComment(ctx.Request.Context(), post.ID, commentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, 404, 40403, "comment not found")
			return
		}
		utils.Error(ctx, 500, 50001, "failed to load comment")
		return
	}

	if policy.CanMutate(actor, comment.AuthorID) != policy.Allowed {
		redirectToPostDetail(ctx, post.ID)
		return
	}

	if err := cc.store.DeleteComment(ctx.Request.Context(), post.ID, comment.ID); err != nil {
		utils.Error(ctx, 500, 50001, "failed to delete comment")
		return
	}
	invalidatePostCaches()
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}
