package integrity

import (
	"equipment-manager/core/storage"
	"equipment-manager/core/store"
	"equipment-manager/core/txn"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Integrity feature.
func NewFeature(s store.Store, coord *txn.Coordinator, client storage.Client, storageCfg storage.Config, db *gorm.DB, logger *zap.Logger) *Feature {
	svc := NewService(s, coord, client, storageCfg, db, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Service returns the feature's service for use outside HTTP (CLI).
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "integrity"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
