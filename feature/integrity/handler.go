package integrity

import (
	"equipment-manager/core/auth"
	"equipment-manager/core/logger"
	authmw "equipment-manager/core/middleware/auth"
	"equipment-manager/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes. All of them are admin only.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity", authmw.RequireRole(auth.RoleAdmin))
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/store", h.HandleStoreCheck)
	group.Get("/storage", h.HandleStorageCheck)
	group.Get("/images", h.HandleImageCheck)
	group.Get("/audit", h.HandleAuditCheck)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "message": err.Error()})
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Runs the document, storage, image and audit checks. Storage problems are repaired when fix is set.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Repair storage layout"
// @Success 200 {object} Report "Combined Report"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 403 {object} map[string]interface{} "Forbidden"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	report := h.service.RunAll(c.UserContext(), utils.ToBool(c.Query("fix")))
	if !report.Healthy() {
		l.Warn("Integrity problems detected", zap.Int("errors", len(report.Errors)))
	}
	return c.JSON(report)
}

// HandleStoreCheck checks the durable document.
// @Summary Check Document
// @Description Reports blank or duplicate ids and codes, unknown maintenance statuses and broken user entries.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.StoreReport "Document Report"
// @Failure 500 {object} map[string]interface{} "Internal Server Error"
// @Router /integrity/store [get]
func (h *Handler) HandleStoreCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckStore()
	if err != nil {
		return h.fail(c, "Document check failed", err)
	}
	return c.JSON(report)
}

// HandleStorageCheck checks and optionally fixes the bucket layout.
// @Summary Check Storage
// @Description Checks that the image bucket and prefix exist. Optionally creates them.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Create missing bucket or prefix"
// @Success 200 {object} checks.StorageReport "Storage Report"
// @Failure 500 {object} map[string]interface{} "Internal Server Error"
// @Router /integrity/storage [get]
func (h *Handler) HandleStorageCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := utils.ToBool(c.Query("fix"))

	report, err := h.service.CheckStorage(c.UserContext())
	if err != nil {
		return h.fail(c, "Storage check failed", err)
	}

	if report.Status != "ok" {
		l.Warn("Storage layout incomplete",
			zap.Bool("bucket", report.BucketExists),
			zap.Bool("prefix", report.PrefixPresent))

		if fix {
			l.Info("Attempting to fix storage layout")
			if err := h.service.FixStorage(c.UserContext(), report); err != nil {
				return h.fail(c, "Storage fix failed", err)
			}
		}
	}
	return c.JSON(report)
}

// HandleImageCheck compares recorded image paths with stored objects.
// @Summary Check Images
// @Description Lists assets whose image is missing from storage and stored images no asset references.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.ImageReport "Image Report"
// @Failure 500 {object} map[string]interface{} "Internal Server Error"
// @Router /integrity/images [get]
func (h *Handler) HandleImageCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckImages(c.UserContext())
	if err != nil {
		return h.fail(c, "Image check failed", err)
	}
	return c.JSON(report)
}

// HandleAuditCheck checks the audit table schema.
// @Summary Check Audit Schema
// @Description Checks that the audit table matches the expected columns and types.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.AuditReport "Audit Report"
// @Failure 500 {object} map[string]interface{} "Internal Server Error"
// @Router /integrity/audit [get]
func (h *Handler) HandleAuditCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckAudit()
	if err != nil {
		return h.fail(c, "Audit check failed", err)
	}
	return c.JSON(report)
}
