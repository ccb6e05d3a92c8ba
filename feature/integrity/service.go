package integrity

import (
	"context"

	"equipment-manager/core/storage"
	"equipment-manager/core/store"
	"equipment-manager/core/txn"
	"equipment-manager/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	store      store.Store
	coord      *txn.Coordinator
	client     storage.Client
	storageCfg storage.Config
	db         *gorm.DB
	logger     *zap.Logger
}

// NewService creates a new integrity service. db may be nil when the audit
// trail is disabled.
func NewService(s store.Store, coord *txn.Coordinator, client storage.Client, storageCfg storage.Config, db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		store:      s,
		coord:      coord,
		client:     client,
		storageCfg: storageCfg,
		db:         db,
		logger:     logger,
	}
}

// Report combines every check. A check that could not run leaves its
// section nil and an entry in Errors.
type Report struct {
	Store   *checks.StoreReport   `json:"store,omitempty"`
	Storage *checks.StorageReport `json:"storage,omitempty"`
	Images  *checks.ImageReport   `json:"images,omitempty"`
	Audit   *checks.AuditReport   `json:"audit,omitempty"`
	Errors  map[string]string     `json:"errors,omitempty"`
}

// Healthy reports whether every check ran and found nothing to fix.
// Image warnings do not count against health.
func (r *Report) Healthy() bool {
	if len(r.Errors) > 0 {
		return false
	}
	if r.Store != nil && r.Store.Status != "ok" {
		return false
	}
	if r.Storage != nil && r.Storage.Status != "ok" {
		return false
	}
	if r.Audit != nil && r.Audit.Status == "error" {
		return false
	}
	return true
}

// CheckStore inspects the durable document.
func (s *Service) CheckStore() (*checks.StoreReport, error) {
	return checks.CheckStore(s.store)
}

// CheckStorage inspects the bucket layout.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	return checks.CheckStorage(ctx, s.client, s.storageCfg)
}

// FixStorage creates what CheckStorage found missing.
func (s *Service) FixStorage(ctx context.Context, report *checks.StorageReport) error {
	return checks.FixStorage(ctx, s.client, s.storageCfg, s.logger, report)
}

// CheckImages matches asset image paths with stored objects.
func (s *Service) CheckImages(ctx context.Context) (*checks.ImageReport, error) {
	snap, err := s.coord.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return checks.CheckImages(ctx, s.client, s.storageCfg, snap.Assets)
}

// CheckAudit verifies the audit table schema.
func (s *Service) CheckAudit() (*checks.AuditReport, error) {
	return checks.CheckAuditSchema(s.db)
}

// RunAll runs every check. With fix, storage problems are repaired.
func (s *Service) RunAll(ctx context.Context, fix bool) *Report {
	report := &Report{Errors: map[string]string{}}
	fail := func(name string, err error) {
		s.logger.Error("Integrity check failed", zap.String("check", name), zap.Error(err))
		report.Errors[name] = err.Error()
	}

	if r, err := s.CheckStore(); err != nil {
		fail("store", err)
	} else {
		report.Store = r
	}

	if r, err := s.CheckStorage(ctx); err != nil {
		fail("storage", err)
	} else {
		if fix && r.Status != "ok" {
			if err := s.FixStorage(ctx, r); err != nil {
				fail("storage", err)
			}
		}
		report.Storage = r
	}

	if report.Storage == nil || report.Storage.BucketExists {
		if r, err := s.CheckImages(ctx); err != nil {
			fail("images", err)
		} else {
			report.Images = r
		}
	}

	if r, err := s.CheckAudit(); err != nil {
		fail("audit", err)
	} else {
		report.Audit = r
	}

	if len(report.Errors) == 0 {
		report.Errors = nil
	}
	return report
}
