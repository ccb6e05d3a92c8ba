package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"equipment-manager/core/audit"
	"equipment-manager/core/codes"
	"equipment-manager/core/reconcile"
	"equipment-manager/core/storage"
	"equipment-manager/core/store"
	"equipment-manager/core/txn"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// MaintenanceFields are the only fields a non-admin may change through
// UpdateByCode.
var MaintenanceFields = []string{
	store.FieldMaintenanceStatus,
	store.FieldMaintenanceNote,
	store.FieldLastReportedAt,
}

// Meta is the collection metadata shown to clients.
type Meta struct {
	Meta                     json.RawMessage `json:"meta"`
	MaintenanceStatusChoices []string        `json:"maintenanceStatusChoices"`
}

// Service implements the asset operations. Every mutation runs as one
// transaction on the coordinator; reads use its snapshot path.
type Service struct {
	coord   *txn.Coordinator
	client  storage.Client
	storage storage.Config
	audit   audit.Recorder
	logger  *zap.Logger
}

// NewService creates a new asset service.
func NewService(coord *txn.Coordinator, client storage.Client, storageCfg storage.Config, rec audit.Recorder, logger *zap.Logger) *Service {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Service{
		coord:   coord,
		client:  client,
		storage: storageCfg,
		audit:   rec,
		logger:  logger,
	}
}

// Create inserts a new asset at the front of the collection.
//
// The code is trimmed. When it is empty and kind is set, the next code of
// that kind is allocated inside the same transaction, so two concurrent
// creates never receive the same code. Any id in rec is replaced.
func (s *Service) Create(ctx context.Context, rec store.Record, kind string) (store.Record, error) {
	created, err := txn.Run(ctx, s.coord, "create", func(snap *store.Snapshot) (*store.Snapshot, store.Record, error) {
		r := rec.Clone()
		code := r.Code()
		if code == "" {
			if strings.TrimSpace(kind) == "" {
				return nil, store.Record{}, fmt.Errorf("%w: code is required", store.ErrInvalidRecord)
			}
			k, err := codes.ParseKind(kind)
			if err != nil {
				return nil, store.Record{}, err
			}
			code = codes.Next(snap, k)
		}
		if snap.IndexByCode(code) >= 0 {
			return nil, store.Record{}, fmt.Errorf("%w: %s", store.ErrDuplicateCode, code)
		}

		r.SetText(store.FieldCode, code)
		r.SetText(store.FieldID, snap.UniqueID())
		if r.Text(store.FieldMaintenanceStatus) == "" {
			r.SetText(store.FieldMaintenanceStatus, snap.DefaultMaintenanceStatus())
		}
		if r.Text(store.FieldImagePath) == "" {
			r.SetText(store.FieldImagePath, "")
		}

		snap.Assets = append([]store.Record{r}, snap.Assets...)
		return snap, r, nil
	})
	if err != nil {
		return store.Record{}, err
	}

	s.record(ctx, "create", created.Code(), created.ID())
	return created, nil
}

// Update merges fields over the asset with the given id. The id itself
// cannot be changed.
func (s *Service) Update(ctx context.Context, id string, fields store.Record) (store.Record, error) {
	updated, err := txn.Run(ctx, s.coord, "update", func(snap *store.Snapshot) (*store.Snapshot, store.Record, error) {
		idx := snap.IndexByID(id)
		if idx < 0 {
			return nil, store.Record{}, fmt.Errorf("%w: asset %s", store.ErrNotFound, id)
		}
		snap.Assets[idx] = overlay(snap.Assets[idx], fields)
		return snap, snap.Assets[idx], nil
	})
	if err != nil {
		return store.Record{}, err
	}

	s.record(ctx, "update", updated.Code(), strings.Join(fields.Keys(), ","))
	return updated, nil
}

// UpdateByCode merges fields over the asset with the given code. Unless
// admin is set, only MaintenanceFields are applied and the rest are ignored.
func (s *Service) UpdateByCode(ctx context.Context, code string, fields store.Record, admin bool) (store.Record, error) {
	if !admin {
		fields = onlyFields(fields, MaintenanceFields)
	}
	code = strings.TrimSpace(code)

	updated, err := txn.Run(ctx, s.coord, "update-by-code", func(snap *store.Snapshot) (*store.Snapshot, store.Record, error) {
		idx := snap.IndexByCode(code)
		if idx < 0 {
			return nil, store.Record{}, fmt.Errorf("%w: asset code %s", store.ErrNotFound, code)
		}
		if fields.Len() == 0 {
			return nil, snap.Assets[idx], nil
		}
		snap.Assets[idx] = overlay(snap.Assets[idx], fields)
		return snap, snap.Assets[idx], nil
	})
	if err != nil {
		return store.Record{}, err
	}

	if fields.Len() > 0 {
		s.record(ctx, "update", updated.Code(), strings.Join(fields.Keys(), ","))
	}
	return updated, nil
}

// Delete removes the asset with the given id, then its stored image.
func (s *Service) Delete(ctx context.Context, id string) error {
	removed, err := txn.Run(ctx, s.coord, "delete", func(snap *store.Snapshot) (*store.Snapshot, store.Record, error) {
		idx := snap.IndexByID(id)
		if idx < 0 {
			return nil, store.Record{}, fmt.Errorf("%w: asset %s", store.ErrNotFound, id)
		}
		r := snap.Assets[idx]
		snap.Assets = append(snap.Assets[:idx], snap.Assets[idx+1:]...)
		return snap, r, nil
	})
	if err != nil {
		return err
	}

	s.removeImage(ctx, removed.Text(store.FieldImagePath), "")
	s.record(ctx, "delete", removed.Code(), removed.ID())
	return nil
}

// AttachImagePath records path as the image of the asset with the given id.
// It returns the updated asset and the path it replaced.
func (s *Service) AttachImagePath(ctx context.Context, id, path string) (store.Record, string, error) {
	type attached struct {
		rec      store.Record
		previous string
	}
	res, err := txn.Run(ctx, s.coord, "attach-image", func(snap *store.Snapshot) (*store.Snapshot, attached, error) {
		idx := snap.IndexByID(id)
		if idx < 0 {
			return nil, attached{}, fmt.Errorf("%w: asset %s", store.ErrNotFound, id)
		}
		prev := snap.Assets[idx].Text(store.FieldImagePath)
		snap.Assets[idx].SetText(store.FieldImagePath, path)
		return snap, attached{rec: snap.Assets[idx].Clone(), previous: prev}, nil
	})
	if err != nil {
		return store.Record{}, "", err
	}

	s.record(ctx, "attach-image", res.rec.Code(), path)
	return res.rec, res.previous, nil
}

// UploadImage stores an image for the asset and attaches its public path.
// The object is written before the transaction, so the document never
// points at an image that does not exist.
func (s *Service) UploadImage(ctx context.Context, id, filename string, r io.Reader, size int64, contentType string) (string, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return "", err
	}

	file := storage.ImageFile(id, filename)
	key := s.storage.ObjectKey(file)
	if _, err := s.client.PutObject(ctx, s.storage.Bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	public := s.storage.PublicPath(file)
	_, previous, err := s.AttachImagePath(ctx, id, public)
	if err != nil {
		// The asset vanished between the check and the commit.
		s.removeImage(ctx, public, "")
		return "", err
	}

	s.removeImage(ctx, previous, public)
	return public, nil
}

// OpenImage streams a stored image by file name.
func (s *Service) OpenImage(ctx context.Context, file string) (io.ReadCloser, error) {
	return s.client.GetObject(ctx, s.storage.Bucket, s.storage.ObjectKey(file), minio.GetObjectOptions{})
}

// PreviewNextCode returns the code the next create of kind would receive
// right now. It is advisory; Create allocates for real. An empty kind
// means equipment.
func (s *Service) PreviewNextCode(ctx context.Context, kind string) (codes.Kind, string, error) {
	k := codes.KindEquipment
	if strings.TrimSpace(kind) != "" {
		var err error
		if k, err = codes.ParseKind(kind); err != nil {
			return "", "", err
		}
	}

	snap, err := s.coord.Snapshot(ctx)
	if err != nil {
		return "", "", err
	}
	return k, codes.Next(snap, k), nil
}

// ImportBatch reconciles a batch of rows into the collection. With dryRun
// the plan is computed against the current collection and nothing is saved.
func (s *Service) ImportBatch(ctx context.Context, rows []reconcile.Row, mode reconcile.Mode, dryRun bool) (reconcile.Plan, error) {
	plan, err := txn.Run(ctx, s.coord, "import", func(snap *store.Snapshot) (*store.Snapshot, reconcile.Plan, error) {
		next, plan := reconcile.Import(snap, rows, mode)
		if dryRun {
			return nil, plan, nil
		}
		return next, plan, nil
	})
	if err != nil {
		return reconcile.Plan{}, err
	}

	s.logger.Info("Import applied",
		zap.String("mode", string(plan.Mode)),
		zap.Bool("dry_run", dryRun),
		zap.Stringer("summary", plan.Summary),
	)
	if !dryRun {
		s.record(ctx, "import", string(plan.Mode), plan.Summary.String())
	}
	return plan, nil
}

// ListAll returns every asset. A non-empty query keeps only assets whose
// code, name, serial or location contains it, ignoring case.
func (s *Service) ListAll(ctx context.Context, query string) ([]store.Record, error) {
	snap, err := s.coord.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return snap.Assets, nil
	}

	out := make([]store.Record, 0)
	for _, a := range snap.Assets {
		if matches(a, q) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Get returns the asset with the given id.
func (s *Service) Get(ctx context.Context, id string) (store.Record, error) {
	snap, err := s.coord.Snapshot(ctx)
	if err != nil {
		return store.Record{}, err
	}
	idx := snap.IndexByID(id)
	if idx < 0 {
		return store.Record{}, fmt.Errorf("%w: asset %s", store.ErrNotFound, id)
	}
	return snap.Assets[idx], nil
}

// GetByCode returns the asset with the given code.
func (s *Service) GetByCode(ctx context.Context, code string) (store.Record, error) {
	snap, err := s.coord.Snapshot(ctx)
	if err != nil {
		return store.Record{}, err
	}
	idx := snap.IndexByCode(strings.TrimSpace(code))
	if idx < 0 {
		return store.Record{}, fmt.Errorf("%w: asset code %s", store.ErrNotFound, code)
	}
	return snap.Assets[idx], nil
}

// Meta returns the collection metadata and the allowed maintenance statuses.
func (s *Service) Meta(ctx context.Context) (Meta, error) {
	snap, err := s.coord.Snapshot(ctx)
	if err != nil {
		return Meta{}, err
	}
	choices := snap.MaintenanceStatusChoices
	if choices == nil {
		choices = []string{}
	}
	return Meta{Meta: snap.Meta, MaintenanceStatusChoices: choices}, nil
}

// Audit returns the most recent audit entries.
func (s *Service) Audit(ctx context.Context, limit int) ([]audit.Entry, error) {
	return s.audit.Recent(ctx, limit)
}

func (s *Service) record(ctx context.Context, op, subject, detail string) {
	audit.Log(ctx, s.audit, s.logger, audit.Entry{
		Op:      op,
		Subject: subject,
		Detail:  detail,
		Actor:   audit.ActorFrom(ctx),
	})
}

// removeImage deletes the object behind a public image path unless it is
// keep. Paths not produced by this service are left alone.
func (s *Service) removeImage(ctx context.Context, public, keep string) {
	if public == "" || public == keep {
		return
	}
	file, ok := s.storage.FileFromPublicPath(public)
	if !ok {
		return
	}
	if err := s.client.RemoveObject(ctx, s.storage.Bucket, s.storage.ObjectKey(file), minio.RemoveObjectOptions{}); err != nil {
		s.logger.Warn("Failed to remove image", zap.String("path", public), zap.Error(err))
	}
}

// overlay applies fields to cur, keeping cur's id and trimming the code.
func overlay(cur, fields store.Record) store.Record {
	out := cur.Clone()
	out.Overlay(fields)
	out.SetText(store.FieldID, cur.ID())
	if _, ok := fields.Get(store.FieldCode); ok {
		out.SetText(store.FieldCode, out.Code())
	}
	return out
}

func onlyFields(r store.Record, keep []string) store.Record {
	out := store.NewRecord()
	for _, k := range keep {
		if v, ok := r.Get(k); ok {
			out.Set(k, v)
		}
	}
	return out
}

func matches(a store.Record, q string) bool {
	for _, f := range []string{store.FieldCode, store.FieldName, store.FieldSerial, store.FieldLocation} {
		if strings.Contains(strings.ToLower(a.Text(f)), q) {
			return true
		}
	}
	return false
}
