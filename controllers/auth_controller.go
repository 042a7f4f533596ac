package controllers

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blogicum/blogicum/models"
	"github.com/blogicum/blogicum/store"
	"github.com/blogicum/blogicum/utils"
)

const tokenTTL = 72 * time.Hour

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,64}$`)

type AuthController struct {
	store store.Store
}

func NewAuthController(s store.Store) *AuthController {
	return &AuthController{store: s}
}

type registerRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"omitempty,email"`
	Password  string `json:"password" binding:"required,min=6,max=128"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type profileRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// Register creates an account and signs the new user in.
func (ac *AuthController) Register(ctx *gin.Context) {
	var req registerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, 400, 40001, "invalid registration payload")
		return
	}

	username := strings.TrimSpace(req.Username)
	if !usernamePattern.MatchString(username) {
		utils.Error(ctx, 400, 40004, "username must be 3-64 characters of letters, digits, '_', '.' or '-'")
		return
	}

	if _, err := ac.store.GetUserByUsername(ctx.Request.Context(), username); err == nil {
		utils.Error(ctx, 409, 40901, "username already taken")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		utils.Error(ctx, 500, 50001, "failed to check username")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, 500, 50001, "failed to process password")
		return
	}

	user := &models.User{
		Username:     username,
		Email:        strings.TrimSpace(req.Email),
		FirstName:    strings.TrimSpace(utils.Sanitize(req.FirstName)),
		LastName:     strings.TrimSpace(utils.Sanitize(req.LastName)),
		PasswordHash: hash,
	}
	if err := ac.store.CreateUser(ctx.Request.Context(), user); err != nil {
		utils.Error(ctx, 500, 50001, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, tokenTTL)
	if err != nil {
		utils.Error(ctx, 500, 50001, "failed to issue token")
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": fullUserPayload(user)})
}

// Login exchanges credentials for a JWT. Unknown usernames and wrong
// passwords produce the same response.
func (ac *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, 400, 40001, "username and password are required")
		return
	}

	user, err := ac.store.GetUserByUsername(ctx.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, 401, 40101, "invalid username or password")
			return
		}
		utils.Error(ctx, 500, 50001, "failed to load user")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, 401, 40101, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, tokenTTL)
	if err != nil {
		utils.Error(ctx, 500, 50001, "failed to issue token")
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": fullUserPayload(user)})
}

// Logout blacklists the presented token until it would have expired.
func (ac *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		token := strings.TrimSpace(parts[1])
		if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
			utils.BlacklistToken(token, claims.ExpiresAt.Time)
		}
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's own profile, private fields included.
func (ac *AuthController) Me(ctx *gin.Context) {
	actor := requester(ctx)
	user, err := ac.store.GetUserByID(ctx.Request.Context(), actor.ID)
	if err != nil {
		utils.Error(ctx, 404, 40404, "user not found")
		return
	}
	utils.Success(ctx, gin.H{"user": fullUserPayload(user)})
}

// UpdateProfile edits the requester's own profile. Absent fields are left
// untouched; a username change must not collide with another account.
func (ac *AuthController) UpdateProfile(ctx *gin.Context) {
	actor := requester(ctx)
	user, err := ac.store.GetUserByID(ctx.Request.Context(), actor.ID)
	if err != nil {
		utils.Error(ctx, 404, 40404, "user not found")
		return
	}

	var req profileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, 400, 40001, "invalid profile payload")
		return
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if !usernamePattern.MatchString(username) {
			utils.Error(ctx, 400, 40004, "username must be 3-64 characters of letters, digits, '_', '.' or '-'")
			return
		}
		if username != user.Username {
			if _, err := ac.store.GetUserByUsername(ctx.Request.Context(), username); err == nil {
				utils.Error(ctx, 409, 40901, "username already taken")
				return
			} else if !errors.Is(err, store.ErrNotFound) {
				utils.Error(ctx, 500, 50001, "failed to check username")
				return
			}
			user.Username = username
		}
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(utils.Sanitize(*req.FirstName))
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(utils.Sanitize(*req.LastName))
	}

	if err := ac.store.UpdateUser(ctx.Request.Context(), user); err != nil {
		utils.Error(ctx, 500, 50001, "failed to update profile")
		return
	}
	utils.InvalidateByPrefix("cache:posts:profile:")
	utils.Success(ctx, gin.H{"user": fullUserPayload(user)})
}

// GetUserByUsername is the public profile lookup.
func (ac *AuthController) GetUserByUsername(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))
	user, err := ac.store.GetUserByUsername(ctx.Request.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, 404, 40404, "user not found")
			return
		}
		utils.Error(ctx, 500, 50001, "failed to load user")
		return
	}
	utils.Success(ctx, gin.H{"user": publicUserPayload(user)})
}
