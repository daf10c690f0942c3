package posts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tagged(id string, tags ...string) *Post {
	return &Post{ItemID: id, Tags: tags}
}

func ids(list []*Post) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.ItemID)
	}
	return out
}

func TestFilterByTags_InclusiveMatchesAny(t *testing.T) {
	posts := []*Post{
		tagged("a", "rock", "live"),
		tagged("b", "jazz"),
		tagged("c", "rock", "jazz"),
	}

	got := filterByTags(posts, []string{"rock", "pop"}, true)
	assert.Equal(t, []string{"a", "c"}, ids(got))
}

func TestFilterByTags_ExclusiveMatchesAll(t *testing.T) {
	posts := []*Post{
		tagged("a", "rock", "live"),
		tagged("b", "rock"),
		tagged("c", "rock", "live", "bootleg"),
	}

	got := filterByTags(posts, []string{"rock", "live"}, false)
	assert.Equal(t, []string{"a", "c"}, ids(got))
}

func TestFilterByTags_EmptyRequestMatchesEverything(t *testing.T) {
	posts := []*Post{tagged("a", "rock"), tagged("b")}

	got := filterByTags(posts, nil, true)
	assert.Equal(t, posts, got)
	got = filterByTags(posts, []string{}, false)
	assert.Equal(t, posts, got)
}

func TestFilterByTags_UntaggedPostNeverMatches(t *testing.T) {
	posts := []*Post{tagged("a"), tagged("b", "rock")}

	got := filterByTags(posts, []string{"rock"}, true)
	assert.Equal(t, []string{"b"}, ids(got))

	got = filterByTags(posts, []string{"rock"}, false)
	assert.Equal(t, []string{"b"}, ids(got))
}

func TestFilterByTags_DeduplicatesById(t *testing.T) {
	dup := tagged("a", "rock")
	posts := []*Post{dup, dup, tagged("b", "rock")}

	got := filterByTags(posts, []string{"rock"}, true)
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestFilterByTags_Idempotent(t *testing.T) {
	posts := []*Post{
		tagged("a", "rock", "live"),
		tagged("b", "jazz"),
		tagged("c", "rock"),
	}

	once := filterByTags(posts, []string{"rock"}, true)
	twice := filterByTags(once, []string{"rock"}, true)
	assert.Equal(t, once, twice)
}

func TestNormalizeTags(t *testing.T) {
	assert.Nil(t, normalizeTags(nil))
	assert.Nil(t, normalizeTags([]string{}))
	assert.Nil(t, normalizeTags([]string{""}))
	assert.Equal(t, []string{"jazz", "rock"}, normalizeTags([]string{"rock", "jazz", "rock", ""}))
}
