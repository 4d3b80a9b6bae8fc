// File: internal/user/provider.go
package user

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"prepwise_backend/internal/config"
	"prepwise_backend/internal/firebase"
)

// ProvideRepository selects the directory backend from config: the GORM
// Postgres store, or Firestore on the same Firebase app as the verifier.
func ProvideRepository(cfg *config.Config, db *gorm.DB, fb *firebase.Service, logger *zap.Logger) (Repository, error) {
	switch cfg.DirectoryBackend {
	case "firestore":
		client, err := fb.NewFirestoreClient(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Firestore directory backend: %w", err)
		}
		logger.Info("User directory backend: firestore")
		return NewFirestoreRepository(client, logger.Named("FirestoreDirectory")), nil
	default:
		if err := db.AutoMigrate(&User{}); err != nil {
			return nil, fmt.Errorf("failed to migrate users table: %w", err)
		}
		logger.Info("User directory backend: postgres")
		return NewGORMRepository(db), nil
	}
}
