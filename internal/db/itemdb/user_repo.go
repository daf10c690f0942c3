package itemdb

import (
	"context"
	"errors"

	"Chorus/internal/core/users"
	"Chorus/internal/itemstore"
)

type itemUserRepo struct {
	store itemstore.Store
}

// NewUserRepository creates a user repository backed by the item store
func NewUserRepository(store itemstore.Store) users.Repository {
	return &itemUserRepo{store: store}
}

func userKey(id string) itemstore.Key {
	return itemstore.Key{Class: itemstore.ClassUser, ItemID: id}
}

func (r *itemUserRepo) Create(ctx context.Context, user *users.User) error {
	if err := r.store.PutIfAbsent(ctx, userKey(user.ItemID), user); err != nil {
		if errors.Is(err, itemstore.ErrConditionFailed) {
			return users.ErrUsernameTaken
		}
		return err
	}
	return nil
}

func (r *itemUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	var user users.User
	if err := r.store.Get(ctx, userKey(id), &user); err != nil {
		if errors.Is(err, itemstore.ErrItemNotFound) {
			return nil, users.NewNotFoundError(id)
		}
		return nil, err
	}
	return &user, nil
}

func (r *itemUserRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	var list []*users.User
	if err := r.store.ScanEq(ctx, itemstore.ClassUser, "username", username, &list); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, users.NewNotFoundError(username)
	}
	return list[0], nil
}

func (r *itemUserRepo) SetRole(ctx context.Context, id, role string) error {
	if err := r.store.SetAttrs(ctx, userKey(id), map[string]any{"role": role}); err != nil {
		if errors.Is(err, itemstore.ErrItemNotFound) {
			return users.NewNotFoundError(id)
		}
		return err
	}
	return nil
}

func (r *itemUserRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, userKey(id))
}
