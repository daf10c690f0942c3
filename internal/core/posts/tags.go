package posts

import "sort"

// filterByTags returns the subset of posts matching the requested tags,
// in source order, deduplicated by id. Inclusive is OR semantics (any
// requested tag present), exclusive is AND semantics (every requested
// tag present). An empty request matches everything; a post without tags
// matches nothing.
func filterByTags(list []*Post, tags []string, inclusive bool) []*Post {
	if len(tags) == 0 {
		return list
	}

	matched := make([]*Post, 0)
	seen := make(map[string]struct{})
	for _, post := range list {
		if _, dup := seen[post.ItemID]; dup {
			continue
		}
		if !matchesTags(post, tags, inclusive) {
			continue
		}
		seen[post.ItemID] = struct{}{}
		matched = append(matched, post)
	}
	return matched
}

func matchesTags(post *Post, tags []string, inclusive bool) bool {
	if len(post.Tags) == 0 {
		return false
	}

	have := make(map[string]struct{}, len(post.Tags))
	for _, tag := range post.Tags {
		have[tag] = struct{}{}
	}

	for _, tag := range tags {
		_, ok := have[tag]
		if inclusive && ok {
			return true
		}
		if !inclusive && !ok {
			return false
		}
	}
	return !inclusive
}

// normalizeTags deduplicates and sorts a tag list into its canonical
// set representation. Empty input normalizes to nil.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		set[tag] = struct{}{}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for tag := range set {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
