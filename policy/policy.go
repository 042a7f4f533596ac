// Package policy centralizes every visibility and ownership decision for
// posts and comments. Handlers never re-derive these rules: they load the
// data, ask the policy, and map the returned Decision onto HTTP behavior.
//
// The package is pure. It performs no I/O and reads only the snapshot it
// is given, so a decision is a deterministic function of (actor, item, now).
package policy

import (
	"time"

	"github.com/blogicum/blogicum/models"
)

// Actor is the requester identity as established by the auth middleware.
// The zero value is an anonymous visitor.
type Actor struct {
	ID            uint
	Username      string
	Authenticated bool
}

// Anonymous returns the unauthenticated actor.
func Anonymous() Actor { return Actor{} }

// Decision is the outcome of a policy check. NotFound is used on read
// paths so that hidden content is indistinguishable from missing content;
// Forbidden is used on mutation paths where the actor already knows the
// item exists.
type Decision int

const (
	Allowed Decision = iota
	NotFound
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// IsPubliclyVisible reports whether the post is reachable by the public:
// the post is published, its category (when set) is published, and its
// publication time has arrived. A post without a category counts as
// favorable on the category axis.
func IsPubliclyVisible(post *models.Post, now time.Time) bool {
	if !post.IsPublished {
		return false
	}
	if post.Category != nil && !post.Category.IsPublished {
		return false
	}
	return !post.PubDate.After(now)
}

// CanView decides whether the actor may open the post's detail view.
// Owners always see their own posts regardless of publication state;
// everyone else needs public visibility. A denial is always NotFound so
// the existence of hidden posts does not leak.
func CanView(actor Actor, post *models.Post, now time.Time) Decision {
	if actor.Authenticated && actor.ID == post.AuthorID {
		return Allowed
	}
	if IsPubliclyVisible(post, now) {
		return Allowed
	}
	return NotFound
}

// CanMutate decides whether the actor may edit or delete an item owned by
// authorID. Only the owner may mutate; anonymous actors can never own
// anything.
func CanMutate(actor Actor, authorID uint) Decision {
	if !actor.Authenticated {
		return Forbidden
	}
	if actor.ID != authorID {
		return Forbidden
	}
	return Allowed
}

// ProfileIncludesHidden reports whether a profile feed for ownerID should
// include the owner's unpublished and future-dated posts. Only the owner
// previewing their own catalog gets the unfiltered listing; aggregate
// feeds shown to anyone else carry publicly visible posts only.
func ProfileIncludesHidden(actor Actor, ownerID uint) bool {
	return actor.Authenticated && actor.ID == ownerID
}
