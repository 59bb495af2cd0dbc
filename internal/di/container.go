// Package di provides dependency injection configuration for the NoteKeeper server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/notekeeper/notekeeper-server/internal/auth"
	"github.com/notekeeper/notekeeper-server/internal/config"
	"github.com/notekeeper/notekeeper-server/internal/di/providers"
	"github.com/notekeeper/notekeeper-server/internal/logger"
	"github.com/notekeeper/notekeeper-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// The configuration is loaded by the caller so command-line flags can take part.
func NewContainer(cfg *config.Config, version string) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, providers.BuildInfo{Version: version})
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideMetrics)
	do.Provide(injector, providers.ProvideValidator)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAccessMediator)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvidePasswordResetService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideChapterService)
	do.Provide(injector, providers.ProvideNoteService)
	do.Provide(injector, providers.ProvideTagService)

	// Workers
	do.Provide(injector, providers.ProvideResetTokenCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server and workers.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.PasswordResetService](injector); err != nil {
		return err
	}

	// Workers
	if _, err := do.Invoke[*providers.ResetTokenCleanupJob](injector); err != nil {
		return err
	}

	// Server
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
