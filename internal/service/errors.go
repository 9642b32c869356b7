package service

import (
	"context"
	"errors"

	domainerrors "github.com/foliohq/folio-server/internal/errors"
	"github.com/foliohq/folio-server/internal/store"
)

// storeError translates a store failure into a domain error. Domain errors
// and context cancellation pass through untouched.
func storeError(op string, err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}

	var de *domainerrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFound(notFoundMsg)
	default:
		return domainerrors.StoreUnavailable(op, err)
	}
}
