package posts

// Moderation flag values. Anything else is rejected at the edit path.
const (
	FlagVisible = 0
	FlagHidden  = 1
)

// Post is a song review stored as one item in the item store.
// Replies and likedBy are owned exclusively by the post; nothing else in
// the system holds references into them.
type Post struct {
	ItemID      string       `json:"itemID"`
	PostedBy    string       `json:"postedBy"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Song        string       `json:"song,omitempty"`
	Score       int          `json:"score"`
	Tags        []string     `json:"tags,omitempty"`
	Replies     []Reply      `json:"replies"`
	LikedBy     []VoteRecord `json:"likedBy"`
	IsFlagged   int          `json:"isFlagged"`
	Ratio       int          `json:"ratio"`
	Time        int64        `json:"time"`
}

// Reply is an entry in a post's reply thread. Replies are created and
// removed, never edited.
type Reply struct {
	ItemID      string `json:"itemID"`
	PostedBy    string `json:"postedBy"`
	Description string `json:"description"`
}

// VoteRecord is one user's vote on a post. The ledger holds at most one
// record per userID at any time.
type VoteRecord struct {
	UserID string `json:"userID"`
	Like   bool   `json:"like"`
}

// CreatePostRequest represents input for creating a new post.
// Score is a pointer so an absent score can be told apart from zero.
type CreatePostRequest struct {
	PostedBy    string   `json:"postedBy"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Song        string   `json:"song,omitempty"`
	Score       *int     `json:"score"`
	Tags        []string `json:"tags,omitempty"`
}

// UpdatePatch carries the attributes present in an update request.
// Nil fields were absent from the request and are left untouched.
type UpdatePatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Score       *int    `json:"score,omitempty"`
	Flag        *int    `json:"flag,omitempty"`
}

// Vote outcome statuses
const (
	VoteApplied  = "applied"  // no prior vote, new record appended
	VoteReplaced = "replaced" // opposite-polarity vote swapped out
)

// VoteOutcome reports how a vote landed in the ledger
type VoteOutcome struct {
	Status string     `json:"status"`
	Record VoteRecord `json:"record"`
}
