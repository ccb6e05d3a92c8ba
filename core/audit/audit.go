package audit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Entry is one committed mutation.
type Entry struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Op        string    `gorm:"column:op;size:64;index" json:"op"`
	Subject   string    `gorm:"column:subject;size:191" json:"subject"`
	Detail    string    `gorm:"column:detail;type:text" json:"detail,omitempty"`
	Actor     string    `gorm:"column:actor;size:191" json:"actor,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;index" json:"createdAt"`
}

// TableName overrides the table name.
func (Entry) TableName() string {
	return "audit_entries"
}

// Columns lists the columns the audit table must have.
var Columns = []string{"id", "op", "subject", "detail", "actor", "created_at"}

const (
	// DefaultLimit is used by Recent when no limit is given.
	DefaultLimit = 50
	// MaxLimit caps Recent.
	MaxLimit = 500
)

// Recorder stores audit entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// GormRecorder keeps the trail in a SQL database.
type GormRecorder struct {
	db *gorm.DB
}

// NewGormRecorder migrates the audit table and returns a recorder.
func NewGormRecorder(db *gorm.DB) (*GormRecorder, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate audit table: %w", err)
	}
	return &GormRecorder{db: db}, nil
}

// Record inserts e. A zero CreatedAt is set to now.
func (r *GormRecorder) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(&e).Error; err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *GormRecorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	var out []Entry
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(clampLimit(limit)).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return out, nil
}

// DB exposes the underlying connection for schema checks.
func (r *GormRecorder) DB() *gorm.DB {
	return r.db
}

// Nop discards entries. It is used when no audit database is configured.
type Nop struct{}

// Record does nothing.
func (Nop) Record(context.Context, Entry) error { return nil }

// Recent returns no entries.
func (Nop) Recent(context.Context, int) ([]Entry, error) { return []Entry{}, nil }

// Log records e and logs a failure instead of returning it. Audit problems
// never fail the mutation that produced the entry.
func Log(ctx context.Context, r Recorder, logger *zap.Logger, e Entry) {
	if err := r.Record(ctx, e); err != nil {
		logger.Warn("Audit entry dropped",
			zap.String("op", e.Op),
			zap.String("subject", e.Subject),
			zap.Error(err),
		)
	}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
