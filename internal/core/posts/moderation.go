package posts

import (
	"Chorus/internal/auth"
)

// gateUpdate decides the permitted shape of an update from
// (requester role, ownership, flag presence) and returns the attribute
// map to persist:
//
//	admin                 -> full field update, flag included
//	owner                 -> full field update, flag silently dropped
//	other user            -> flag-only update; flag required, other fields rejected
//
// Owners never flag their own posts; for them the flag is ignored rather
// than rejected so a client sending a combined edit still succeeds.
func gateUpdate(requester auth.Identity, post *Post, patch UpdatePatch) (map[string]any, error) {
	isOwner := post.PostedBy == requester.Username

	flag := patch.Flag
	if flag != nil && isOwner && !requester.IsAdmin() {
		flag = nil
	}
	if flag != nil && !validFlag(*flag) {
		return nil, NewValidationError("flag", "provided flag must be a number (0 or 1)")
	}

	if !requester.IsAdmin() && !isOwner {
		// Flag-only path
		if flag == nil {
			return nil, NewValidationError("flag", "flag must be provided in body")
		}
		if patch.Title != nil || patch.Description != nil || patch.Score != nil {
			return nil, NewValidationError("flag", "only the flag may be updated on another user's post")
		}
		return map[string]any{"isFlagged": *flag}, nil
	}

	// Full-field path (admin or owner)
	if patch.Score != nil && !validScore(*patch.Score) {
		return nil, NewValidationError("score", "provided score must be of type number 0-100")
	}

	attrs := make(map[string]any)
	if patch.Title != nil {
		attrs["title"] = *patch.Title
	}
	if patch.Description != nil {
		attrs["description"] = *patch.Description
	}
	if patch.Score != nil {
		attrs["score"] = *patch.Score
	}
	if flag != nil {
		attrs["isFlagged"] = *flag
	}
	if len(attrs) == 0 {
		return nil, NewValidationError("body",
			"no updatable attributes provided: must provide description, title, score, or flag (flag is not valid if you are the poster)")
	}
	return attrs, nil
}

func validFlag(flag int) bool {
	return flag == FlagVisible || flag == FlagHidden
}

func validScore(score int) bool {
	return score >= 0 && score <= 100
}
