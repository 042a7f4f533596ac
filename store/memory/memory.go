// Package memory is an in-memory store.Store used by the tests. It mirrors
// the query semantics of the MySQL implementation, including the
// visibility filter, pub-date ordering and comment-count annotation.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/blogicum/blogicum/models"
	"github.com/blogicum/blogicum/store"
)

type MemoryStore struct {
	mu sync.RWMutex

	users      map[uint]*models.User
	categories map[uint]*models.Category
	locations  map[uint]*models.Location
	posts      map[uint]*models.Post
	comments   map[uint]*models.Comment

	nextUser     uint
	nextCategory uint
	nextLocation uint
	nextPost     uint
	nextComment  uint
}

func New() *MemoryStore {
	return &MemoryStore{
		users:      make(map[uint]*models.User),
		categories: make(map[uint]*models.Category),
		locations:  make(map[uint]*models.Location),
		posts:      make(map[uint]*models.Post),
		comments:   make(map[uint]*models.Comment),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextUser++
	user.ID = s.nextUser
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *MemoryStore) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *MemoryStore) CreateCategory(ctx context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCategory++
	category.ID = s.nextCategory
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now()
	}
	clone := *category
	s.categories[category.ID] = &clone
	return nil
}

func (s *MemoryStore) GetCategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, ok := s.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *category
	return &clone, nil
}

func (s *MemoryStore) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, category := range s.categories {
		if category.Slug == slug {
			clone := *category
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *MemoryStore) UpdateCategory(ctx context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[category.ID]; !ok {
		return store.ErrNotFound
	}
	clone := *category
	s.categories[category.ID] = &clone
	return nil
}

func (s *MemoryStore) ListCategories(ctx context.Context, publishedOnly bool) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var categories []models.Category
	for _, category := range s.categories {
		if publishedOnly && !category.IsPublished {
			continue
		}
		categories = append(categories, *category)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Title < categories[j].Title
	})
	return categories, nil
}

func (s *MemoryStore) CreateLocation(ctx context.Context, location *models.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextLocation++
	location.ID = s.nextLocation
	if location.CreatedAt.IsZero() {
		location.CreatedAt = time.Now()
	}
	clone := *location
	s.locations[location.ID] = &clone
	return nil
}

func (s *MemoryStore) GetLocationByID(ctx context.Context, id uint) (*models.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	location, ok := s.locations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *location
	return &clone, nil
}

func (s *MemoryStore) UpdateLocation(ctx context.Context, location *models.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.locations[location.ID]; !ok {
		return store.ErrNotFound
	}
	clone := *location
	s.locations[location.ID] = &clone
	return nil
}

func (s *MemoryStore) CreatePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPost++
	post.ID = s.nextPost
	now := time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now
	clone := *post
	clone.Author = models.User{}
	clone.Category = nil
	clone.Location = nil
	clone.Comments = nil
	s.posts[post.ID] = &clone
	return nil
}

// hydrateLocked attaches relation copies the way the SQL store preloads them.
func (s *MemoryStore) hydrateLocked(post models.Post) models.Post {
	if author, ok := s.users[post.AuthorID]; ok {
		post.Author = *author
	}
	if post.CategoryID != nil {
		if category, ok := s.categories[*post.CategoryID]; ok {
			clone := *category
			post.Category = &clone
		}
	}
	if post.LocationID != nil {
		if location, ok := s.locations[*post.LocationID]; ok {
			clone := *location
			post.Location = &clone
		}
	}
	var count int64
	for _, comment := range s.comments {
		if comment.PostID == post.ID {
			count++
		}
	}
	post.CommentCount = count
	return post
}

func (s *MemoryStore) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	hydrated := s.hydrateLocked(*post)
	return &hydrated, nil
}

func (s *MemoryStore) UpdatePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[post.ID]; !ok {
		return store.ErrNotFound
	}
	post.UpdatedAt = time.Now()
	clone := *post
	clone.Author = models.User{}
	clone.Category = nil
	clone.Location = nil
	clone.Comments = nil
	s.posts[post.ID] = &clone
	return nil
}

func (s *MemoryStore) DeletePost(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.posts, id)
	for commentID, comment := range s.comments {
		if comment.PostID == id {
			delete(s.comments, commentID)
		}
	}
	return nil
}

func (s *MemoryStore) visibleLocked(post *models.Post, at time.Time) bool {
	if !post.IsPublished {
		return false
	}
	if post.PubDate.After(at) {
		return false
	}
	if post.CategoryID != nil {
		category, ok := s.categories[*post.CategoryID]
		if !ok || !category.IsPublished {
			return false
		}
	}
	return true
}

func (s *MemoryStore) ListPosts(ctx context.Context, filter store.PostFilter) ([]models.Post, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Post
	for _, post := range s.posts {
		if filter.VisibleAt != nil && !s.visibleLocked(post, *filter.VisibleAt) {
			continue
		}
		if filter.AuthorID != nil && post.AuthorID != *filter.AuthorID {
			continue
		}
		if filter.CategoryID != nil && (post.CategoryID == nil || *post.CategoryID != *filter.CategoryID) {
			continue
		}
		matched = append(matched, s.hydrateLocked(*post))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].PubDate.After(matched[j].PubDate)
	})

	total := int64(len(matched))
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filter.PageSize
		if start > len(matched) {
			start = len(matched)
		}
		end := start + filter.PageSize
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (s *MemoryStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextComment++
	comment.ID = s.nextComment
	now := time.Now()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now
	}
	comment.UpdatedAt = now
	clone := *comment
	clone.Author = models.User{}
	s.comments[comment.ID] = &clone
	return nil
}

func (s *MemoryStore) GetComment(ctx context.Context, postID, commentID uint) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[commentID]
	if !ok || comment.PostID != postID {
		return nil, store.ErrNotFound
	}
	clone := *comment
	if author, ok := s.users[clone.AuthorID]; ok {
		clone.Author = *author
	}
	return &clone, nil
}

func (s *MemoryStore) UpdateComment(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[comment.ID]; !ok {
		return store.ErrNotFound
	}
	comment.UpdatedAt = time.Now()
	clone := *comment
	clone.Author = models.User{}
	s.comments[comment.ID] = &clone
	return nil
}

func (s *MemoryStore) DeleteComment(ctx context.Context, postID, commentID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[commentID]
	if !ok || comment.PostID != postID {
		return store.ErrNotFound
	}
	delete(s.comments, commentID)
	return nil
}

func (s *MemoryStore) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var comments []models.Comment
	for _, comment := range s.comments {
		if comment.PostID != postID {
			continue
		}
		clone := *comment
		if author, ok := s.users[clone.AuthorID]; ok {
			clone.Author = *author
		}
		comments = append(comments, clone)
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
