package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/blogicum/blogicum/models"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func makePost(published bool, pubDate time.Time, category *models.Category) *models.Post {
	return &models.Post{
		ID:          1,
		Title:       "t",
		Text:        "body",
		PubDate:     pubDate,
		IsPublished: published,
		AuthorID:    10,
		Category:    category,
	}
}

func TestIsPubliclyVisible(t *testing.T) {
	published := &models.Category{ID: 1, Slug: "travel", IsPublished: true}
	hidden := &models.Category{ID: 2, Slug: "drafts", IsPublished: false}
	past := now.Add(-time.Hour)
	future := now.Add(time.Second)

	cases := []struct {
		name string
		post *models.Post
		want bool
	}{
		{"published past post without category", makePost(true, past, nil), true},
		{"published past post in published category", makePost(true, past, published), true},
		{"unpublished post", makePost(false, past, published), false},
		{"future pub date", makePost(true, future, published), false},
		{"unpublished category", makePost(true, past, hidden), false},
		{"every factor unfavorable", makePost(false, future, hidden), false},
		{"exactly at pub date", makePost(true, now, nil), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsPubliclyVisible(tc.post, now))
		})
	}
}

func TestCanViewOwnerAlwaysAllowed(t *testing.T) {
	owner := Actor{ID: 10, Username: "alice", Authenticated: true}
	hidden := &models.Category{ID: 2, Slug: "drafts", IsPublished: false}

	posts := []*models.Post{
		makePost(false, now.Add(-time.Hour), nil),
		makePost(true, now.Add(24*time.Hour), nil),
		makePost(true, now.Add(-time.Hour), hidden),
		makePost(false, now.Add(24*time.Hour), hidden),
	}
	for _, p := range posts {
		assert.Equal(t, Allowed, CanView(owner, p, now))
	}
}

func TestCanViewStrangerNeedsPublicVisibility(t *testing.T) {
	stranger := Actor{ID: 99, Username: "bob", Authenticated: true}

	visible := makePost(true, now.Add(-time.Hour), nil)
	assert.Equal(t, Allowed, CanView(stranger, visible, now))

	hidden := makePost(false, now.Add(-time.Hour), nil)
	assert.Equal(t, NotFound, CanView(stranger, hidden, now))
}

func TestCanViewAnonymousCannotUseOwnershipBranch(t *testing.T) {
	// Actor ID 10 matches the author but without authentication the
	// ownership carve-out must not apply.
	anon := Actor{ID: 10}
	hidden := makePost(false, now.Add(-time.Hour), nil)
	assert.Equal(t, NotFound, CanView(anon, hidden, now))
}

func TestCanViewFuturePostBecomesVisible(t *testing.T) {
	post := makePost(true, now.Add(time.Second), nil)

	assert.Equal(t, NotFound, CanView(Anonymous(), post, now))

	later := now.Add(2 * time.Second)
	assert.Equal(t, Allowed, CanView(Anonymous(), post, later))
}

func TestCanViewUnpublishedCategoryHidesPostFromNonOwners(t *testing.T) {
	travel := &models.Category{ID: 3, Slug: "travel", IsPublished: false}
	post := makePost(true, now.Add(-time.Hour), travel)

	assert.Equal(t, NotFound, CanView(Anonymous(), post, now))
	assert.Equal(t, NotFound, CanView(Actor{ID: 99, Authenticated: true}, post, now))
	assert.Equal(t, Allowed, CanView(Actor{ID: 10, Authenticated: true}, post, now))
}

func TestCanMutate(t *testing.T) {
	assert.Equal(t, Allowed, CanMutate(Actor{ID: 10, Authenticated: true}, 10))
	assert.Equal(t, Forbidden, CanMutate(Actor{ID: 99, Authenticated: true}, 10))
	assert.Equal(t, Forbidden, CanMutate(Anonymous(), 10))
	// An unauthenticated actor with a colliding ID still may not mutate.
	assert.Equal(t, Forbidden, CanMutate(Actor{ID: 10}, 10))
}

func TestProfileIncludesHidden(t *testing.T) {
	assert.True(t, ProfileIncludesHidden(Actor{ID: 10, Authenticated: true}, 10))
	assert.False(t, ProfileIncludesHidden(Actor{ID: 99, Authenticated: true}, 10))
	assert.False(t, ProfileIncludesHidden(Anonymous(), 10))
}
