package itemdb

import (
	"context"
	"testing"

	"Chorus/internal/core/posts"
	"Chorus/internal/core/users"
	"Chorus/internal/itemstore/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPost(t *testing.T, repo posts.Repository, post *posts.Post) {
	t.Helper()
	if post.Replies == nil {
		post.Replies = []posts.Reply{}
	}
	if post.LikedBy == nil {
		post.LikedBy = []posts.VoteRecord{}
	}
	require.NoError(t, repo.Create(context.Background(), post))
}

func TestPostRepo_CreateAndGet(t *testing.T) {
	repo := NewPostRepository(memory.New())
	ctx := context.Background()

	seedPost(t, repo, &posts.Post{
		ItemID:      "p1",
		PostedBy:    "alice",
		Title:       "So What",
		Description: "modal opener",
		Score:       90,
		Tags:        []string{"jazz"},
	})

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "So What", got.Title)
	assert.Equal(t, 90, got.Score)
	assert.Equal(t, []string{"jazz"}, got.Tags)
	assert.Empty(t, got.Replies)
	assert.Empty(t, got.LikedBy)
}

func TestPostRepo_GetMissingIsNotFound(t *testing.T) {
	repo := NewPostRepository(memory.New())

	_, err := repo.GetByID(context.Background(), "ghost")
	assert.True(t, posts.IsNotFound(err))
}

func TestPostRepo_ScanFlaggedAndByAuthor(t *testing.T) {
	repo := NewPostRepository(memory.New())
	ctx := context.Background()

	seedPost(t, repo, &posts.Post{ItemID: "p1", PostedBy: "alice", IsFlagged: posts.FlagVisible})
	seedPost(t, repo, &posts.Post{ItemID: "p2", PostedBy: "bob", IsFlagged: posts.FlagHidden})
	seedPost(t, repo, &posts.Post{ItemID: "p3", PostedBy: "alice", IsFlagged: posts.FlagHidden})

	all, err := repo.ScanAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	hidden, err := repo.ScanFlagged(ctx, posts.FlagHidden)
	require.NoError(t, err)
	require.Len(t, hidden, 2)

	byAlice, err := repo.ScanByAuthor(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, byAlice, 2)
}

func TestPostRepo_SetAttrs(t *testing.T) {
	repo := NewPostRepository(memory.New())
	ctx := context.Background()

	seedPost(t, repo, &posts.Post{ItemID: "p1", PostedBy: "alice", Score: 10})
	require.NoError(t, repo.SetAttrs(ctx, "p1", map[string]any{"score": 80, "isFlagged": posts.FlagHidden}))

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 80, got.Score)
	assert.Equal(t, posts.FlagHidden, got.IsFlagged)

	err = repo.SetAttrs(ctx, "ghost", map[string]any{"score": 1})
	assert.True(t, posts.IsNotFound(err))
}

func TestPostRepo_ReplyLifecycle(t *testing.T) {
	repo := NewPostRepository(memory.New())
	ctx := context.Background()

	seedPost(t, repo, &posts.Post{ItemID: "p1", PostedBy: "alice"})
	require.NoError(t, repo.AppendReply(ctx, "p1", posts.Reply{ItemID: "r1", PostedBy: "bob", Description: "one"}))
	require.NoError(t, repo.AppendReply(ctx, "p1", posts.Reply{ItemID: "r2", PostedBy: "carol", Description: "two"}))

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got.Replies, 2)
	assert.Equal(t, "r1", got.Replies[0].ItemID)

	// The guard rejects a delete whose index no longer holds the target
	err = repo.RemoveReplyAt(ctx, "p1", 0, "r2")
	assert.ErrorIs(t, err, posts.ErrConcurrentUpdate)

	require.NoError(t, repo.RemoveReplyAt(ctx, "p1", 0, "r1"))
	got, err = repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got.Replies, 1)
	assert.Equal(t, "r2", got.Replies[0].ItemID)
}

func TestPostRepo_VoteLedgerCAS(t *testing.T) {
	repo := NewPostRepository(memory.New())
	ctx := context.Background()

	seedPost(t, repo, &posts.Post{ItemID: "p1", PostedBy: "alice"})

	require.NoError(t, repo.AppendVote(ctx, "p1", posts.VoteRecord{UserID: "u1", Like: true}, 0))

	// A second conditional append against the stale length loses the race
	err := repo.AppendVote(ctx, "p1", posts.VoteRecord{UserID: "u2", Like: true}, 0)
	assert.ErrorIs(t, err, posts.ErrConcurrentUpdate)

	require.NoError(t, repo.AppendVote(ctx, "p1", posts.VoteRecord{UserID: "u2", Like: false}, 1))
	require.NoError(t, repo.RemoveVoteAt(ctx, "p1", 0, "u1"))

	// Unconditional append backs the replace path
	require.NoError(t, repo.AppendVote(ctx, "p1", posts.VoteRecord{UserID: "u1", Like: false}, -1))

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got.LikedBy, 2)
	assert.Equal(t, "u2", got.LikedBy[0].UserID)
	assert.Equal(t, posts.VoteRecord{UserID: "u1", Like: false}, got.LikedBy[1])
}

func TestPostRepo_AddRatio(t *testing.T) {
	repo := NewPostRepository(memory.New())
	ctx := context.Background()

	seedPost(t, repo, &posts.Post{ItemID: "p1", PostedBy: "alice"})
	require.NoError(t, repo.AddRatio(ctx, "p1", 1))
	require.NoError(t, repo.AddRatio(ctx, "p1", -2))

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, -1, got.Ratio)
}

func TestPostRepo_Delete(t *testing.T) {
	repo := NewPostRepository(memory.New())
	ctx := context.Background()

	seedPost(t, repo, &posts.Post{ItemID: "p1", PostedBy: "alice"})
	require.NoError(t, repo.Delete(ctx, "p1"))

	_, err := repo.GetByID(ctx, "p1")
	assert.True(t, posts.IsNotFound(err))
}

func TestUserRepo_CreateAndLookup(t *testing.T) {
	repo := NewUserRepository(memory.New())
	ctx := context.Background()

	user := &users.User{ItemID: "u1", Username: "alice", Password: "hash", Role: "user"}
	require.NoError(t, repo.Create(ctx, user))

	byID, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", byName.ItemID)

	_, err = repo.GetByUsername(ctx, "ghost")
	assert.True(t, users.IsNotFound(err))
}

func TestUserRepo_DuplicateIDIsConflict(t *testing.T) {
	repo := NewUserRepository(memory.New())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &users.User{ItemID: "u1", Username: "alice"}))
	err := repo.Create(ctx, &users.User{ItemID: "u1", Username: "alice2"})
	assert.ErrorIs(t, err, users.ErrUsernameTaken)
}

func TestUserRepo_SetRoleAndDelete(t *testing.T) {
	repo := NewUserRepository(memory.New())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &users.User{ItemID: "u1", Username: "alice", Role: "user"}))
	require.NoError(t, repo.SetRole(ctx, "u1", "admin"))

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Role)

	require.NoError(t, repo.Delete(ctx, "u1"))
	_, err = repo.GetByID(ctx, "u1")
	assert.True(t, users.IsNotFound(err))
}
