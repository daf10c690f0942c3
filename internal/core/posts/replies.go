package posts

// findReply returns the index of the reply with the given id in the
// post's thread, or -1 when no such reply exists. Thread order is
// insertion order and removal must not disturb siblings.
func findReply(post *Post, replyID string) int {
	for i, reply := range post.Replies {
		if reply.ItemID == replyID {
			return i
		}
	}
	return -1
}
