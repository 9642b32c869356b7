// Package di provides dependency injection configuration for the Folio server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/foliohq/folio-server/internal/auth"
	"github.com/foliohq/folio-server/internal/config"
	"github.com/foliohq/folio-server/internal/di/providers"
	"github.com/foliohq/folio-server/internal/logger"
	"github.com/foliohq/folio-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideValidator)

	// Storage
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Auth
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideBookLocks)
	do.Provide(injector, providers.ProvideRatingAggregator)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideReviewService)
	do.Provide(injector, providers.ProvideSearchService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
// Initialization stops at the first provider that fails.
func Bootstrap(injector *do.RootScope) error {
	steps := []func(do.Injector) error{
		invoke[*config.Config],
		invoke[*logger.Logger],
		invoke[providers.AuthKey],
		invoke[*providers.StoreHandle],
		invoke[*providers.SearchIndexHandle],
		invoke[*auth.TokenService],
		invoke[*service.AuthService],
		invoke[*service.BookService],
		invoke[*service.ReviewService],
		invoke[*service.SearchService],
	}
	for _, step := range steps {
		if err := step(injector); err != nil {
			return err
		}
	}

	providers.TriggerSearchReindexIfNeeded(injector)

	return invoke[*providers.HTTPServerHandle](injector)
}

func invoke[T any](i do.Injector) error {
	_, err := do.Invoke[T](i)
	return err
}
