package domain

import domainerrors "github.com/foliohq/folio-server/internal/errors"

// Authorize permits a mutation only when the acting user owns the resource.
// Existence must be checked first: callers report NotFound before Forbidden.
// An empty acting id never matches, even against an empty owner.
func Authorize(actingUserID, ownerID string) error {
	if actingUserID == "" || actingUserID != ownerID {
		return domainerrors.Forbidden("you do not own this resource")
	}
	return nil
}
