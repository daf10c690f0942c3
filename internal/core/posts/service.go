package posts

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"Chorus/internal/auth"
)

// Conditional writes against the vote ledger and reply thread re-read and
// retry a few times before giving up with ErrConcurrentUpdate.
const (
	writeRetries = 3
	writeBackoff = 25 * time.Millisecond
)

type postService struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new post service
func NewService(repo Repository, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &postService{repo: repo, logger: logger}
}

// CreatePost allocates an id and persists a fresh, unflagged post.
// Score range and description presence are re-checked here as the final
// guard even though the request layer validates basic shape.
func (s *postService) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, NewValidationError("description", "description must be a non-empty string")
	}
	if req.Score == nil || !validScore(*req.Score) {
		return nil, NewValidationError("score", "provided score must be of type number 0-100")
	}

	post := &Post{
		ItemID:      uuid.NewString(),
		PostedBy:    req.PostedBy,
		Title:       req.Title,
		Description: req.Description,
		Song:        req.Song,
		Score:       *req.Score,
		Tags:        normalizeTags(req.Tags),
		Replies:     []Reply{},
		LikedBy:     []VoteRecord{},
		IsFlagged:   FlagVisible,
		Time:        time.Now().UnixMilli(),
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("post created",
		"postID", post.ItemID,
		"postedBy", post.PostedBy,
		"score", post.Score)
	return post, nil
}

func (s *postService) GetPost(ctx context.Context, id string) (*Post, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdatePost applies the patch under the moderation rules and returns the
// attributes that were written.
func (s *postService) UpdatePost(ctx context.Context, id string, requester auth.Identity, patch UpdatePatch) (map[string]any, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	attrs, err := gateUpdate(requester, post, patch)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetAttrs(ctx, id, attrs); err != nil {
		return nil, err
	}

	s.logger.Info("post updated",
		"postID", id,
		"requester", requester.Username,
		"role", requester.Role)
	return attrs, nil
}

func (s *postService) DeletePost(ctx context.Context, id string, requester auth.Identity) error {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !requester.IsAdmin() && post.PostedBy != requester.Username {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("post deleted", "postID", id, "requester", requester.Username)
	return nil
}

func (s *postService) ListAll(ctx context.Context) ([]*Post, error) {
	return s.repo.ScanAll(ctx)
}

func (s *postService) ListFlagged(ctx context.Context, flag int) ([]*Post, error) {
	if !validFlag(flag) {
		return nil, NewValidationError("isFlagged", "isFlagged must be 0 or 1")
	}
	return s.repo.ScanFlagged(ctx, flag)
}

func (s *postService) ListByAuthor(ctx context.Context, username string) ([]*Post, error) {
	return s.repo.ScanByAuthor(ctx, username)
}

func (s *postService) FilterByTags(ctx context.Context, tags []string, inclusive bool) ([]*Post, error) {
	all, err := s.repo.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterByTags(all, tags, inclusive), nil
}

func (s *postService) CreateReply(ctx context.Context, postID, username, description string) (*Reply, error) {
	if strings.TrimSpace(description) == "" {
		return nil, NewValidationError("description", "description must be a non-empty string")
	}

	// Confirm the post exists before appending into it
	if _, err := s.repo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	reply := Reply{
		ItemID:      uuid.NewString(),
		PostedBy:    username,
		Description: description,
	}
	if err := s.repo.AppendReply(ctx, postID, reply); err != nil {
		return nil, err
	}

	s.logger.Info("reply created",
		"postID", postID,
		"replyID", reply.ItemID,
		"postedBy", username)
	return &reply, nil
}

func (s *postService) GetReply(ctx context.Context, postID, replyID string) (*Reply, error) {
	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	idx := findReply(post, replyID)
	if idx < 0 {
		return nil, NewNotFoundError("reply", replyID)
	}
	reply := post.Replies[idx]
	return &reply, nil
}

// DeleteReply removes exactly the targeted reply via a guarded positional
// delete, so replies appended concurrently are never lost. Deleting an
// absent reply reports NotFound instead of silently succeeding.
func (s *postService) DeleteReply(ctx context.Context, postID, replyID string, requester auth.Identity) error {
	backoff := retry.WithMaxRetries(writeRetries, retry.NewFibonacci(writeBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		post, err := s.repo.GetByID(ctx, postID)
		if err != nil {
			return err
		}

		idx := findReply(post, replyID)
		if idx < 0 {
			return NewNotFoundError("reply", replyID)
		}
		reply := post.Replies[idx]
		if !requester.IsAdmin() && reply.PostedBy != requester.Username && post.PostedBy != requester.Username {
			return ErrForbidden
		}

		if err := s.repo.RemoveReplyAt(ctx, postID, idx, replyID); err != nil {
			// A concurrent removal shifted the thread; re-read and retry
			if errors.Is(err, ErrConcurrentUpdate) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("reply deleted",
		"postID", postID,
		"replyID", replyID,
		"requester", requester.Username)
	return nil
}

// Vote records a like or dislike for userID. The ledger write is a
// conditional append (or guarded remove-then-append on polarity change),
// so two racing votes by the same user cannot both land; the loser
// re-reads the post and re-decides.
func (s *postService) Vote(ctx context.Context, postID, userID string, like bool) (*VoteOutcome, error) {
	var outcome *VoteOutcome

	backoff := retry.WithMaxRetries(writeRetries, retry.NewFibonacci(writeBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		post, err := s.repo.GetByID(ctx, postID)
		if err != nil {
			return err
		}

		removeIdx, err := planVote(post, userID, like)
		if err != nil {
			return err
		}
		rec := VoteRecord{UserID: userID, Like: like}

		if removeIdx < 0 {
			if err := s.repo.AppendVote(ctx, postID, rec, len(post.LikedBy)); err != nil {
				if errors.Is(err, ErrConcurrentUpdate) {
					return retry.RetryableError(err)
				}
				return err
			}
			outcome = &VoteOutcome{Status: VoteApplied, Record: rec}
		} else {
			if err := s.repo.RemoveVoteAt(ctx, postID, removeIdx, userID); err != nil {
				if errors.Is(err, ErrConcurrentUpdate) {
					return retry.RetryableError(err)
				}
				return err
			}
			// The old record is gone and nothing else writes this user's
			// votes, so the second write needs no condition.
			if err := s.repo.AppendVote(ctx, postID, rec, -1); err != nil {
				return err
			}
			outcome = &VoteOutcome{Status: VoteReplaced, Record: rec}
		}

		if err := s.repo.AddRatio(ctx, postID, ratioDelta(like, outcome.Status == VoteReplaced)); err != nil {
			// The ledger write already landed; the counter is advisory
			s.logger.Error("failed to adjust post ratio", "error", err, "postID", postID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("vote recorded",
		"postID", postID,
		"userID", userID,
		"like", like,
		"status", outcome.Status)
	return outcome, nil
}
