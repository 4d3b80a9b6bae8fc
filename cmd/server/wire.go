// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"prepwise_backend/internal/app"
	"prepwise_backend/internal/audit"
	"prepwise_backend/internal/auth"
	"prepwise_backend/internal/config"
	"prepwise_backend/internal/firebase"
	"prepwise_backend/internal/jobs"
	"prepwise_backend/internal/platform/database"
	"prepwise_backend/internal/platform/elasticsearch"
	"prepwise_backend/internal/platform/logger"
	"prepwise_backend/internal/session"
	"prepwise_backend/internal/shared"
	"prepwise_backend/internal/user"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		database.NewGORM,
		elasticsearch.NewClient,
		provideCleanup,

		// Identity Verifier
		firebase.NewService,
		wire.Bind(new(shared.Verifier), new(*firebase.Service)),

		// User Directory
		user.ProvideRepository,
		user.NewHandler,

		// Sessions
		session.ProvideSigner,
		session.NewManager,
		session.NewCookies,

		// Audit Trail
		audit.NewGORMRepository,
		audit.NewRecorder,
		jobs.NewAuditRetentionJob,

		// Auth Flows
		auth.NewService,
		auth.NewHandler,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}
