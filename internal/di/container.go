// Package di provides dependency injection configuration for the shelf server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/cozyshelfapp/shelf-server/internal/auth"
	"github.com/cozyshelfapp/shelf-server/internal/config"
	"github.com/cozyshelfapp/shelf-server/internal/daily"
	"github.com/cozyshelfapp/shelf-server/internal/di/providers"
	"github.com/cozyshelfapp/shelf-server/internal/logger"
	"github.com/cozyshelfapp/shelf-server/internal/service"
	"github.com/cozyshelfapp/shelf-server/internal/sync"
	"github.com/cozyshelfapp/shelf-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideValidator)

	// Event plumbing and database layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideSyncHub)
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Outbound clients
	do.Provide(injector, providers.ProvideCoverLookup)

	// Business services
	do.Provide(injector, providers.ProvideDailyGenerator)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideStickerService)
	do.Provide(injector, providers.ProvideGoalService)
	do.Provide(injector, providers.ProvideDoodleService)
	do.Provide(injector, providers.ProvideBackupService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. This triggers lazy initialization of
// everything the container provides.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*sync.Hub](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[providers.CoverLookupHandle](injector)

	// Business services
	_ = do.MustInvoke[*daily.Generator](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.StickerService](injector)
	_ = do.MustInvoke[*service.GoalService](injector)
	_ = do.MustInvoke[*service.DoodleService](injector)
	_ = do.MustInvoke[*service.BackupService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
