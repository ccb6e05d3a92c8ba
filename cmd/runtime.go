package cmd

import (
	"errors"
	"fmt"

	"equipment-manager/core/audit"
	"equipment-manager/core/config"
	"equipment-manager/core/database"
	"equipment-manager/core/logger"
	"equipment-manager/core/storage"
	"equipment-manager/core/store"
	"equipment-manager/core/txn"
	"equipment-manager/feature/session"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime holds what every command needs: configuration, the store behind
// its coordinator, the image storage client and the optional audit trail.
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *store.FileStore
	coord    *txn.Coordinator
	client   storage.Client
	db       *gorm.DB
	recorder audit.Recorder
}

// loadRuntime builds the runtime. Commands that write the document pass
// writer=true and hold the store's writer lock until close; a second writer
// (for example an import while the server runs) is refused.
func loadRuntime(writer bool) (*runtime, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	fs := store.NewFileStore(cfg.Store.Path, logg)
	if writer {
		if err := fs.Lock(); err != nil {
			if errors.Is(err, store.ErrLocked) {
				return nil, fmt.Errorf("%w: stop the running server or import through its API", err)
			}
			return nil, fmt.Errorf("failed to lock store: %w", err)
		}
	}
	if _, err := fs.Bootstrap(store.DefaultSnapshot(cfg.Store)); err != nil {
		_ = fs.Unlock()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if snap, err := fs.Load(); err == nil && session.BootstrapPasswordInUse(snap, cfg.Store) {
		logg.Warn("Bootstrap account still accepts its initial password, replace it using hash-password",
			zap.String("username", cfg.Store.AdminUsername))
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		_ = fs.Unlock()
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	rt := &runtime{
		cfg:      cfg,
		logger:   logg,
		store:    fs,
		coord:    txn.New(fs, logg),
		client:   client,
		recorder: audit.Nop{},
	}

	// The audit database is optional.
	if conn, err := database.Connect(cfg.Database); err != nil {
		logg.Warn("Optional database connection failed, audit trail disabled", zap.Error(err))
	} else if rec, err := audit.NewGormRecorder(conn); err != nil {
		logg.Warn("Audit table unavailable, audit trail disabled", zap.Error(err))
	} else {
		rt.db = conn
		rt.recorder = rec
		logg.Info("Audit trail enabled", zap.String("driver", cfg.Database.Driver))
	}

	return rt, nil
}

// close releases the writer lock and flushes the logger.
func (rt *runtime) close() {
	if err := rt.store.Unlock(); err != nil {
		rt.logger.Warn("Failed to release store lock", zap.Error(err))
	}
	_ = rt.logger.Sync()
}
