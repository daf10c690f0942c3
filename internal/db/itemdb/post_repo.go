// Package itemdb implements the core repository interfaces over the
// generic item store, translating store sentinels into domain errors.
package itemdb

import (
	"context"
	"errors"
	"fmt"

	"Chorus/internal/core/posts"
	"Chorus/internal/itemstore"
)

type itemPostRepo struct {
	store itemstore.Store
}

// NewPostRepository creates a post repository backed by the item store
func NewPostRepository(store itemstore.Store) posts.Repository {
	return &itemPostRepo{store: store}
}

func postKey(id string) itemstore.Key {
	return itemstore.Key{Class: itemstore.ClassPost, ItemID: id}
}

func (r *itemPostRepo) Create(ctx context.Context, post *posts.Post) error {
	if err := r.store.PutIfAbsent(ctx, postKey(post.ItemID), post); err != nil {
		if errors.Is(err, itemstore.ErrConditionFailed) {
			// ids are random; a collision means the caller reused one
			return fmt.Errorf("post %s already exists: %w", post.ItemID, err)
		}
		return err
	}
	return nil
}

func (r *itemPostRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	var post posts.Post
	if err := r.store.Get(ctx, postKey(id), &post); err != nil {
		if errors.Is(err, itemstore.ErrItemNotFound) {
			return nil, posts.NewNotFoundError("post", id)
		}
		return nil, err
	}
	return &post, nil
}

func (r *itemPostRepo) ScanAll(ctx context.Context) ([]*posts.Post, error) {
	var list []*posts.Post
	if err := r.store.Scan(ctx, itemstore.ClassPost, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *itemPostRepo) ScanFlagged(ctx context.Context, flag int) ([]*posts.Post, error) {
	var list []*posts.Post
	if err := r.store.ScanEq(ctx, itemstore.ClassPost, "isFlagged", flag, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *itemPostRepo) ScanByAuthor(ctx context.Context, username string) ([]*posts.Post, error) {
	var list []*posts.Post
	if err := r.store.ScanEq(ctx, itemstore.ClassPost, "postedBy", username, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *itemPostRepo) SetAttrs(ctx context.Context, id string, attrs map[string]any) error {
	if err := r.store.SetAttrs(ctx, postKey(id), attrs); err != nil {
		if errors.Is(err, itemstore.ErrItemNotFound) {
			return posts.NewNotFoundError("post", id)
		}
		return err
	}
	return nil
}

func (r *itemPostRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, postKey(id))
}

func (r *itemPostRepo) AppendReply(ctx context.Context, postID string, reply posts.Reply) error {
	if err := r.store.Append(ctx, postKey(postID), "replies", reply); err != nil {
		if errors.Is(err, itemstore.ErrItemNotFound) {
			return posts.NewNotFoundError("post", postID)
		}
		return err
	}
	return nil
}

// RemoveReplyAt guards the positional delete with the reply id so a
// concurrently shifted thread fails the write instead of losing a
// neighbouring reply.
func (r *itemPostRepo) RemoveReplyAt(ctx context.Context, postID string, index int, replyID string) error {
	err := r.store.RemoveAt(ctx, postKey(postID), "replies", index, map[string]any{"itemID": replyID})
	return translateListWrite(err, postID)
}

func (r *itemPostRepo) AppendVote(ctx context.Context, postID string, rec posts.VoteRecord, expectLen int) error {
	key := postKey(postID)
	var err error
	if expectLen < 0 {
		err = r.store.Append(ctx, key, "likedBy", rec)
	} else {
		err = r.store.AppendIfLen(ctx, key, "likedBy", rec, expectLen)
	}
	return translateListWrite(err, postID)
}

func (r *itemPostRepo) RemoveVoteAt(ctx context.Context, postID string, index int, userID string) error {
	err := r.store.RemoveAt(ctx, postKey(postID), "likedBy", index, map[string]any{"userID": userID})
	return translateListWrite(err, postID)
}

func (r *itemPostRepo) AddRatio(ctx context.Context, postID string, delta int) error {
	if err := r.store.Increment(ctx, postKey(postID), "ratio", delta); err != nil {
		if errors.Is(err, itemstore.ErrItemNotFound) {
			return posts.NewNotFoundError("post", postID)
		}
		return err
	}
	return nil
}

// translateListWrite maps store sentinels from conditional list writes to
// the domain errors the service retry loops branch on.
func translateListWrite(err error, postID string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, itemstore.ErrConditionFailed):
		return posts.ErrConcurrentUpdate
	case errors.Is(err, itemstore.ErrItemNotFound):
		return posts.NewNotFoundError("post", postID)
	default:
		return err
	}
}
