package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogicum/blogicum/models"
	"github.com/blogicum/blogicum/store"
)

func seedUser(t *testing.T, s *MemoryStore, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func TestDeletePostCascadesComments(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := seedUser(t, s, "alice")

	post := &models.Post{Title: "p", Text: "t", PubDate: time.Now(), IsPublished: true, AuthorID: alice.ID}
	require.NoError(t, s.CreatePost(ctx, post))

	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateComment(ctx, &models.Comment{Text: "c", PostID: post.ID, AuthorID: alice.ID}))
	}
	other := &models.Post{Title: "q", Text: "t", PubDate: time.Now(), IsPublished: true, AuthorID: alice.ID}
	require.NoError(t, s.CreatePost(ctx, other))
	require.NoError(t, s.CreateComment(ctx, &models.Comment{Text: "keep", PostID: other.ID, AuthorID: alice.ID}))

	require.NoError(t, s.DeletePost(ctx, post.ID))

	_, err := s.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	orphaned, err := s.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, orphaned)

	kept, err := s.ListComments(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestListPostsVisibilityFilter(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := seedUser(t, s, "alice")
	now := time.Now()

	hiddenCat := &models.Category{Title: "Travel", Slug: "travel", IsPublished: false}
	require.NoError(t, s.CreateCategory(ctx, hiddenCat))

	visible := &models.Post{Title: "visible", Text: "t", PubDate: now.Add(-time.Hour), IsPublished: true, AuthorID: alice.ID}
	unpublished := &models.Post{Title: "draft", Text: "t", PubDate: now.Add(-time.Hour), IsPublished: false, AuthorID: alice.ID}
	future := &models.Post{Title: "scheduled", Text: "t", PubDate: now.Add(time.Hour), IsPublished: true, AuthorID: alice.ID}
	hiddenByCat := &models.Post{Title: "in hidden cat", Text: "t", PubDate: now.Add(-time.Hour), IsPublished: true, AuthorID: alice.ID, CategoryID: &hiddenCat.ID}
	for _, p := range []*models.Post{visible, unpublished, future, hiddenByCat} {
		require.NoError(t, s.CreatePost(ctx, p))
	}

	posts, total, err := s.ListPosts(ctx, store.PostFilter{VisibleAt: &now})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, posts, 1)
	assert.Equal(t, visible.ID, posts[0].ID)

	// No filter returns the full catalog.
	posts, total, err = s.ListPosts(ctx, store.PostFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, posts, 4)
}

func TestListPostsOrderAndAnnotations(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := seedUser(t, s, "alice")
	now := time.Now()

	older := &models.Post{Title: "older", Text: "t", PubDate: now.Add(-2 * time.Hour), IsPublished: true, AuthorID: alice.ID}
	newer := &models.Post{Title: "newer", Text: "t", PubDate: now.Add(-time.Hour), IsPublished: true, AuthorID: alice.ID}
	require.NoError(t, s.CreatePost(ctx, older))
	require.NoError(t, s.CreatePost(ctx, newer))
	require.NoError(t, s.CreateComment(ctx, &models.Comment{Text: "c1", PostID: older.ID, AuthorID: alice.ID}))
	require.NoError(t, s.CreateComment(ctx, &models.Comment{Text: "c2", PostID: older.ID, AuthorID: alice.ID}))

	posts, _, err := s.ListPosts(ctx, store.PostFilter{VisibleAt: &now})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "newer", posts[0].Title)
	assert.Equal(t, "older", posts[1].Title)
	assert.EqualValues(t, 0, posts[0].CommentCount)
	assert.EqualValues(t, 2, posts[1].CommentCount)
	assert.Equal(t, "alice", posts[1].Author.Username)
}

func TestListPostsPagination(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := seedUser(t, s, "alice")
	now := time.Now()

	for i := 0; i < 5; i++ {
		p := &models.Post{Title: "p", Text: "t", PubDate: now.Add(-time.Duration(i+1) * time.Minute), IsPublished: true, AuthorID: alice.ID}
		require.NoError(t, s.CreatePost(ctx, p))
	}

	posts, total, err := s.ListPosts(ctx, store.PostFilter{VisibleAt: &now, Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, posts, 2)

	posts, _, err = s.ListPosts(ctx, store.PostFilter{VisibleAt: &now, Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestGetCommentScopedToPost(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := seedUser(t, s, "alice")

	p1 := &models.Post{Title: "a", Text: "t", PubDate: time.Now(), IsPublished: true, AuthorID: alice.ID}
	p2 := &models.Post{Title: "b", Text: "t", PubDate: time.Now(), IsPublished: true, AuthorID: alice.ID}
	require.NoError(t, s.CreatePost(ctx, p1))
	require.NoError(t, s.CreatePost(ctx, p2))

	comment := &models.Comment{Text: "c", PostID: p1.ID, AuthorID: alice.ID}
	require.NoError(t, s.CreateComment(ctx, comment))

	got, err := s.GetComment(ctx, p1.ID, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, comment.ID, got.ID)

	// Same comment id under the wrong post must look missing.
	_, err = s.GetComment(ctx, p2.ID, comment.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.DeleteComment(ctx, p2.ID, comment.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetUserByUsername(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedUser(t, s, "alice")

	user, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
