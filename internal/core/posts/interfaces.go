package posts

import (
	"context"

	"Chorus/internal/auth"
)

// Service defines the business logic interface for posts.
// Callers are already authenticated; the identity passed to mutating
// operations is trusted to have come from a verified token.
type Service interface {
	// CreatePost allocates an id, persists the post unflagged with empty
	// replies and vote ledger, and returns it
	CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error)

	// GetPost retrieves a post by id
	GetPost(ctx context.Context, id string) (*Post, error)

	// UpdatePost applies the patch under the moderation rules and returns
	// the attributes that were written
	UpdatePost(ctx context.Context, id string, requester auth.Identity, patch UpdatePatch) (map[string]any, error)

	// DeletePost removes a post; only the owner or an admin may delete
	DeletePost(ctx context.Context, id string, requester auth.Identity) error

	// ListAll returns every post
	ListAll(ctx context.Context) ([]*Post, error)

	// ListFlagged returns posts whose moderation flag equals flag (0 or 1)
	ListFlagged(ctx context.Context, flag int) ([]*Post, error)

	// ListByAuthor returns the posts created by username
	ListByAuthor(ctx context.Context, username string) ([]*Post, error)

	// FilterByTags returns posts matching the requested tags: any of them
	// when inclusive, all of them otherwise. An empty tag list matches
	// every post.
	FilterByTags(ctx context.Context, tags []string, inclusive bool) ([]*Post, error)

	// CreateReply appends a reply to the post's thread
	CreateReply(ctx context.Context, postID, username, description string) (*Reply, error)

	// GetReply retrieves a single reply from a post's thread
	GetReply(ctx context.Context, postID, replyID string) (*Reply, error)

	// DeleteReply removes the matching reply; the reply author, the post
	// owner, or an admin may delete
	DeleteReply(ctx context.Context, postID, replyID string, requester auth.Identity) error

	// Vote records a like or dislike for userID, replacing an
	// opposite-polarity vote and rejecting a duplicate one
	Vote(ctx context.Context, postID, userID string, like bool) (*VoteOutcome, error)
}

// Repository defines the data access interface for posts over the item
// store. Conditional list writes return ErrConcurrentUpdate when they
// lose a race so the service can re-read and retry.
type Repository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id string) (*Post, error) // NotFoundError when absent
	ScanAll(ctx context.Context) ([]*Post, error)
	ScanFlagged(ctx context.Context, flag int) ([]*Post, error)
	ScanByAuthor(ctx context.Context, username string) ([]*Post, error)
	SetAttrs(ctx context.Context, id string, attrs map[string]any) error
	Delete(ctx context.Context, id string) error

	// AppendReply atomically appends to the reply list
	AppendReply(ctx context.Context, postID string, reply Reply) error

	// RemoveReplyAt deletes the reply at index, guarded by its id
	RemoveReplyAt(ctx context.Context, postID string, index int, replyID string) error

	// AppendVote appends to the vote ledger; when expectLen >= 0 the write
	// only succeeds while the ledger still holds exactly that many records
	AppendVote(ctx context.Context, postID string, rec VoteRecord, expectLen int) error

	// RemoveVoteAt deletes the vote at index, guarded by its userID
	RemoveVoteAt(ctx context.Context, postID string, index int, userID string) error

	// AddRatio adjusts the denormalized like-minus-dislike counter
	AddRatio(ctx context.Context, postID string, delta int) error
}
