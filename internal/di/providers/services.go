package providers

import (
	"github.com/samber/do/v2"

	"github.com/foliohq/folio-server/internal/auth"
	"github.com/foliohq/folio-server/internal/config"
	"github.com/foliohq/folio-server/internal/logger"
	"github.com/foliohq/folio-server/internal/service"
	"github.com/foliohq/folio-server/internal/validation"
)

// ProvideValidator provides the shared request validator.
func ProvideValidator(_ do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideBookLocks provides the per-book lock table shared by the book
// and review services.
func ProvideBookLocks(_ do.Injector) (*service.BookLocks, error) {
	return service.NewBookLocks(), nil
}

// ProvideRatingAggregator provides the rating aggregator.
func ProvideRatingAggregator(i do.Injector) (*service.RatingAggregator, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewRatingAggregator(log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, validator, log.Logger), nil
}

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	locks := do.MustInvoke[*service.BookLocks](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, indexHandle.Index, locks, cfg.Catalog, log.Logger), nil
}

// ProvideReviewService provides the review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	ratings := do.MustInvoke[*service.RatingAggregator](i)
	locks := do.MustInvoke[*service.BookLocks](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReviewService(storeHandle.Store, ratings, locks, log.Logger), nil
}
