package assets

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"equipment-manager/core/audit"
	"equipment-manager/core/auth"
	"equipment-manager/core/codes"
	"equipment-manager/core/logger"
	authmw "equipment-manager/core/middleware/auth"
	"equipment-manager/core/reconcile"
	"equipment-manager/core/storage"
	"equipment-manager/core/store"
	"equipment-manager/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for assets.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ImportRequest is the body of POST /api/import. Rows are already parsed
// from the spreadsheet: one object per row, column header to cell value.
type ImportRequest struct {
	Mode   string         `json:"mode"`
	DryRun bool           `json:"dryRun"`
	Rows   []store.Record `json:"rows"`
}

// RegisterRoutes registers the asset routes. Claims are expected in the
// locals when a token was sent (see middleware/auth with Optional).
func (h *Handler) RegisterRoutes(app fiber.Router) {
	login := authmw.RequireLogin()
	admin := authmw.RequireRole(auth.RoleAdmin)

	api := app.Group("/api")
	api.Get("/meta", h.HandleMeta)
	api.Get("/assets", login, h.HandleList)
	api.Get("/assets/by-code/:code", h.HandleGetByCode)
	api.Put("/assets/by-code/:code", login, h.HandleUpdateByCode)
	api.Get("/next-code", admin, h.HandleNextCode)
	api.Post("/assets", admin, h.HandleCreate)
	api.Get("/assets/:id", login, h.HandleGet)
	api.Put("/assets/:id", admin, h.HandleUpdate)
	api.Delete("/assets/:id", admin, h.HandleDelete)
	api.Post("/assets/:id/image", admin, h.HandleUploadImage)
	api.Post("/import", admin, h.HandleImport)
	api.Get("/audit", admin, h.HandleAudit)

	app.Get(h.service.storage.PublicPath(":file"), h.HandleImage)
}

// StatusFor maps a service error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, store.ErrDuplicateCode):
		return fiber.StatusConflict
	case errors.Is(err, store.ErrInvalidRecord),
		errors.Is(err, store.ErrUnsupportedValue),
		errors.Is(err, codes.ErrUnknownKind),
		errors.Is(err, reconcile.ErrUnknownMode):
		return fiber.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	l := logger.WithRayID(h.service.logger, c)
	if status >= fiber.StatusInternalServerError {
		l.Error("Asset request failed", zap.Int("status", status), zap.Error(err))
	} else {
		l.Debug("Asset request rejected", zap.Int("status", status), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"ok": false, "message": err.Error()})
}

// requestContext carries the caller's username into the audit trail.
func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if claims := authmw.ClaimsFrom(c); claims != nil {
		ctx = audit.WithActor(ctx, claims.Username)
	}
	return ctx
}

func parseRecord(c *fiber.Ctx) (store.Record, error) {
	var rec store.Record
	if len(c.Body()) == 0 {
		return store.NewRecord(), nil
	}
	if err := rec.UnmarshalJSON(c.Body()); err != nil {
		return store.Record{}, errors.Join(store.ErrInvalidRecord, err)
	}
	return rec, nil
}

// HandleMeta returns collection metadata.
// @Summary Collection Metadata
// @Description Returns the collection metadata and the allowed maintenance statuses.
// @Tags assets
// @Produce json
// @Success 200 {object} map[string]interface{} "Metadata"
// @Router /api/meta [get]
func (h *Handler) HandleMeta(c *fiber.Ctx) error {
	meta, err := h.service.Meta(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "meta": meta.Meta, "maintenanceStatusChoices": meta.MaintenanceStatusChoices})
}

// HandleList lists assets.
// @Summary List Assets
// @Description Lists every asset, optionally filtered by code, name, serial or location.
// @Tags assets
// @Produce json
// @Param q query string false "Case-insensitive filter"
// @Success 200 {object} map[string]interface{} "Assets"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Router /api/assets [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	list, err := h.service.ListAll(c.UserContext(), c.Query("q"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "assets": list})
}

// HandleGet returns one asset by id.
// @Summary Get Asset
// @Tags assets
// @Produce json
// @Param id path string true "Asset id"
// @Success 200 {object} map[string]interface{} "Asset"
// @Failure 404 {object} map[string]interface{} "Not Found"
// @Router /api/assets/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	rec, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "asset": rec})
}

// HandleGetByCode returns one asset by code. It is public so a scanned QR
// label can be resolved without logging in.
// @Summary Get Asset By Code
// @Tags assets
// @Produce json
// @Param code path string true "Asset code"
// @Success 200 {object} map[string]interface{} "Asset"
// @Failure 404 {object} map[string]interface{} "Not Found"
// @Router /api/assets/by-code/{code} [get]
func (h *Handler) HandleGetByCode(c *fiber.Ctx) error {
	rec, err := h.service.GetByCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "asset": rec})
}

// HandleUpdateByCode updates an asset by code. Non-admins may only change
// maintenance fields.
// @Summary Update Asset By Code
// @Tags assets
// @Accept json
// @Produce json
// @Param code path string true "Asset code"
// @Success 200 {object} map[string]interface{} "Asset"
// @Failure 404 {object} map[string]interface{} "Not Found"
// @Router /api/assets/by-code/{code} [put]
func (h *Handler) HandleUpdateByCode(c *fiber.Ctx) error {
	fields, err := parseRecord(c)
	if err != nil {
		return h.fail(c, err)
	}
	claims := authmw.ClaimsFrom(c)
	rec, err := h.service.UpdateByCode(requestContext(c), c.Params("code"), fields, claims.IsAdmin())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "asset": rec})
}

// HandleNextCode previews the next asset code.
// @Summary Preview Next Code
// @Tags assets
// @Produce json
// @Param kind query string false "EQ or GN (default EQ)"
// @Success 200 {object} map[string]interface{} "Next code"
// @Failure 400 {object} map[string]interface{} "Unknown kind"
// @Router /api/next-code [get]
func (h *Handler) HandleNextCode(c *fiber.Ctx) error {
	kind, next, err := h.service.PreviewNextCode(c.UserContext(), c.Query("kind"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "kind": kind, "next": next})
}

// HandleCreate creates an asset.
// @Summary Create Asset
// @Description Creates an asset. With an empty code and a kind, the next code of that kind is allocated.
// @Tags assets
// @Accept json
// @Produce json
// @Param kind query string false "EQ or GN, used when the code is empty"
// @Success 200 {object} map[string]interface{} "Asset"
// @Failure 400 {object} map[string]interface{} "Invalid record"
// @Failure 409 {object} map[string]interface{} "Duplicate code"
// @Router /api/assets [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	rec, err := parseRecord(c)
	if err != nil {
		return h.fail(c, err)
	}
	created, err := h.service.Create(requestContext(c), rec, c.Query("kind"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "asset": created})
}

// HandleUpdate updates an asset by id.
// @Summary Update Asset
// @Tags assets
// @Accept json
// @Produce json
// @Param id path string true "Asset id"
// @Success 200 {object} map[string]interface{} "Asset"
// @Failure 404 {object} map[string]interface{} "Not Found"
// @Failure 409 {object} map[string]interface{} "Duplicate code"
// @Router /api/assets/{id} [put]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	fields, err := parseRecord(c)
	if err != nil {
		return h.fail(c, err)
	}
	rec, err := h.service.Update(requestContext(c), c.Params("id"), fields)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "asset": rec})
}

// HandleDelete deletes an asset by id.
// @Summary Delete Asset
// @Tags assets
// @Produce json
// @Param id path string true "Asset id"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Failure 404 {object} map[string]interface{} "Not Found"
// @Router /api/assets/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(requestContext(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// HandleUploadImage stores an image for an asset.
// @Summary Upload Asset Image
// @Tags assets
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Asset id"
// @Param image formData file true "Image file"
// @Success 200 {object} map[string]interface{} "Image path"
// @Failure 400 {object} map[string]interface{} "Missing file"
// @Failure 404 {object} map[string]interface{} "Not Found"
// @Router /api/assets/{id}/image [post]
func (h *Handler) HandleUploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "message": "image file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return h.fail(c, err)
	}
	defer f.Close()

	path, err := h.service.UploadImage(requestContext(c), c.Params("id"), fh.Filename, f, fh.Size, fh.Header.Get(fiber.HeaderContentType))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "imagePath": path})
}

// HandleImport reconciles a batch of parsed spreadsheet rows.
// @Summary Import Rows
// @Description Merges rows into the collection by code, or replaces the collection. With dryRun nothing is saved.
// @Tags assets
// @Accept json
// @Produce json
// @Param dry_run query boolean false "Compute the plan without saving"
// @Success 200 {object} map[string]interface{} "Plan"
// @Failure 400 {object} map[string]interface{} "Unknown mode"
// @Router /api/import [post]
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	var req ImportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "message": "invalid import body: " + err.Error()})
	}
	mode, err := reconcile.ParseMode(req.Mode)
	if err != nil {
		return h.fail(c, err)
	}
	dryRun := req.DryRun || utils.ToBool(c.Query("dry_run"))

	plan, err := h.service.ImportBatch(requestContext(c), req.Rows, mode, dryRun)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"ok":      true,
		"mode":    plan.Mode,
		"dryRun":  dryRun,
		"summary": plan.Summary,
		"actions": plan.Actions,
	})
}

// HandleAudit lists recent audit entries.
// @Summary Audit Trail
// @Tags assets
// @Produce json
// @Param limit query int false "Maximum entries (default 50)"
// @Success 200 {object} map[string]interface{} "Entries"
// @Router /api/audit [get]
func (h *Handler) HandleAudit(c *fiber.Ctx) error {
	entries, err := h.service.Audit(c.UserContext(), c.QueryInt("limit"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "entries": entries})
}

// HandleImage streams a stored image.
// @Summary Asset Image
// @Tags assets
// @Produce octet-stream
// @Param file path string true "Image file name"
// @Success 200 {file} binary "Image"
// @Failure 404 {string} string "Not Found"
// @Router /assets/images/{file} [get]
func (h *Handler) HandleImage(c *fiber.Ctx) error {
	file := c.Params("file")
	if file == "" || strings.ContainsAny(file, `/\`) {
		return c.SendStatus(fiber.StatusNotFound)
	}

	rc, err := h.service.OpenImage(c.UserContext(), file)
	if err != nil {
		if storage.IsNotFound(err) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		logger.WithRayID(h.service.logger, c).Error("Failed to open image", zap.Error(err))
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if ext := strings.TrimPrefix(filepath.Ext(file), "."); ext != "" {
		c.Type(ext)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.SendStream(rc)
}
