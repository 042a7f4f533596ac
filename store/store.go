// Package store defines the persistence boundary consumed by the
// controllers. The production implementation lives in store/gormstore;
// store/memory backs the handler tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/blogicum/blogicum/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("record not found")

// PostFilter narrows a post listing. When VisibleAt is set only posts that
// are effectively visible at that instant are returned (published, past
// pub date, category absent or published). Listings are always ordered by
// pub date descending and carry a comment count per post.
type PostFilter struct {
	VisibleAt  *time.Time
	AuthorID   *uint
	CategoryID *uint
	Page       int
	PageSize   int
}

type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	// Categories
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategoryByID(ctx context.Context, id uint) (*models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	ListCategories(ctx context.Context, publishedOnly bool) ([]models.Category, error)

	// Locations
	CreateLocation(ctx context.Context, location *models.Location) error
	GetLocationByID(ctx context.Context, id uint) (*models.Location, error)
	UpdateLocation(ctx context.Context, location *models.Location) error

	// Posts. GetPost loads the author, category and location relations.
	// DeletePost removes the post together with its comments.
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) error
	ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, int64, error)

	// Comments. GetComment is scoped to a post: a comment id that exists
	// under a different post is ErrNotFound. ListComments returns comments
	// oldest first with authors loaded.
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, postID, commentID uint) (*models.Comment, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, postID, commentID uint) error
	ListComments(ctx context.Context, postID uint) ([]models.Comment, error)

	Close() error
}
