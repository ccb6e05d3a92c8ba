package assets

import (
	"equipment-manager/core/audit"
	"equipment-manager/core/storage"
	"equipment-manager/core/txn"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Assets feature.
func NewFeature(coord *txn.Coordinator, client storage.Client, storageCfg storage.Config, rec audit.Recorder, logger *zap.Logger) *Feature {
	svc := NewService(coord, client, storageCfg, rec, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Service returns the feature's service for use outside HTTP (CLI).
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "assets"
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
