package testutil

import (
	"context"
	"testing"

	"chatonline-world/backend/internal/models"
	"chatonline-world/backend/pkg/config"
	"chatonline-world/backend/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewTestDB opens a private in-memory sqlite database with the schema migrated.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.Database.URL = "file:" + uuid.NewString() + "?mode=memory&cache=shared"

	db, err := config.NewDB(context.Background(), cfg, logger.Discard())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get test database handle: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	return db
}
