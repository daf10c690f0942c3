package posts

// planVote scans the vote ledger and decides how userID's vote lands.
// Returns the index of an opposite-polarity record that must be removed
// first, or -1 for a plain append. A record of the same polarity rejects
// the vote with AlreadyVotedError, naming the existing direction.
func planVote(post *Post, userID string, like bool) (removeIdx int, err error) {
	for i, rec := range post.LikedBy {
		if rec.UserID != userID {
			continue
		}
		if rec.Like == like {
			return 0, &AlreadyVotedError{PostID: post.ItemID, Like: like}
		}
		return i, nil
	}
	return -1, nil
}

// ratioDelta is the adjustment to the post's running like-minus-dislike
// counter for a vote that landed. A replacement moves the counter two
// steps because it also removes the opposite vote.
func ratioDelta(like bool, replaced bool) int {
	delta := 1
	if !like {
		delta = -1
	}
	if replaced {
		delta *= 2
	}
	return delta
}
