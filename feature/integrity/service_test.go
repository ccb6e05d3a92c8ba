package integrity

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"equipment-manager/core/audit"
	"equipment-manager/core/database"
	"equipment-manager/core/storage"
	"equipment-manager/core/storage/mocks"
	"equipment-manager/core/store"
	"equipment-manager/core/txn"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var storageCfg = storage.Config{Bucket: "equipment", ImagePrefix: "images/", PublicPrefix: "/assets/images/"}

type fixture struct {
	svc    *Service
	client *mocks.Client
	store  *store.FileStore
}

func asset(id, code, image string) store.Record {
	r := store.NewRecord()
	r.SetText(store.FieldID, id)
	r.SetText(store.FieldCode, code)
	r.SetText(store.FieldImagePath, image)
	return r
}

func setupService(t *testing.T, db *gorm.DB, assets ...store.Record) *fixture {
	t.Helper()
	logger := zap.NewNop()
	fs := store.NewFileStore(filepath.Join(t.TempDir(), "db.json"), logger)
	snap := store.DefaultSnapshot(store.Config{
		AdminUsername:      "admin",
		AdminPassword:      "admin",
		MaintenanceChoices: []string{"Never reported"},
	})
	snap.Assets = assets
	require.NoError(t, fs.Save(snap))

	client := new(mocks.Client)
	svc := NewService(fs, txn.New(fs, logger), client, storageCfg, db, logger)
	return &fixture{svc: svc, client: client, store: fs}
}

func migratedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	_, err = audit.NewGormRecorder(db)
	require.NoError(t, err)
	return db
}

func TestService_RunAllHealthy(t *testing.T) {
	f := setupService(t, migratedDB(t), asset("A-1", "C1", "/assets/images/A-1.jpg"))
	f.client.On("BucketExists", mock.Anything, "equipment").Return(true, nil)
	f.client.On("ListObjects", mock.Anything, "equipment", mock.MatchedBy(func(o minio.ListObjectsOptions) bool {
		return !o.Recursive
	})).Return(mocks.Objects("images/"))
	f.client.On("ListObjects", mock.Anything, "equipment", mock.MatchedBy(func(o minio.ListObjectsOptions) bool {
		return o.Recursive
	})).Return(mocks.Objects("images/", "images/A-1.jpg"))

	report := f.svc.RunAll(context.Background(), false)
	assert.True(t, report.Healthy())
	assert.Nil(t, report.Errors)
	assert.Equal(t, "ok", report.Store.Status)
	assert.Equal(t, "ok", report.Storage.Status)
	assert.Equal(t, "ok", report.Images.Status)
	assert.Equal(t, "ok", report.Audit.Status)
}

func TestService_RunAllFixesStorage(t *testing.T) {
	f := setupService(t, nil)
	f.client.On("BucketExists", mock.Anything, "equipment").Return(false, nil)
	f.client.On("MakeBucket", mock.Anything, "equipment", mock.Anything).Return(nil)
	f.client.On("PutObject", mock.Anything, "equipment", "images/", mock.Anything, int64(0), mock.Anything).
		Return(minio.UploadInfo{}, nil)
	f.client.On("ListObjects", mock.Anything, "equipment", mock.Anything).Return(mocks.Objects())

	report := f.svc.RunAll(context.Background(), true)
	require.NotNil(t, report.Storage)
	assert.Equal(t, "ok", report.Storage.Status)
	assert.True(t, report.Storage.BucketExists)
	assert.Equal(t, "disabled", report.Audit.Status)
	assert.True(t, report.Healthy())
	f.client.AssertCalled(t, "MakeBucket", mock.Anything, "equipment", mock.Anything)
}

func TestService_RunAllReportsFailures(t *testing.T) {
	f := setupService(t, nil)
	f.client.On("BucketExists", mock.Anything, "equipment").Return(false, errors.New("connection refused"))
	f.client.On("ListObjects", mock.Anything, "equipment", mock.Anything).Return(mocks.Objects())

	report := f.svc.RunAll(context.Background(), false)
	assert.False(t, report.Healthy())
	assert.Contains(t, report.Errors["storage"], "connection refused")
	assert.Nil(t, report.Storage)
	assert.NotNil(t, report.Images)
}

func TestService_CheckStoreFindsDuplicates(t *testing.T) {
	f := setupService(t, nil)

	// Written around the coordinator, as a hand edit of the file would be.
	snap, err := f.store.Load()
	require.NoError(t, err)
	snap.Assets = []store.Record{asset("A-1", "C1", ""), asset("A-2", "C1", "")}
	require.NoError(t, f.store.Save(snap))

	report, err := f.svc.CheckStore()
	require.NoError(t, err)
	assert.Equal(t, "error", report.Status)
	require.Len(t, report.Problems, 1)
	assert.Equal(t, "duplicate_code", report.Problems[0].Kind)
	assert.Equal(t, "C1", report.Problems[0].Subject)
}
