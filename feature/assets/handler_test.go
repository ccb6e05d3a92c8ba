package assets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"equipment-manager/core/auth"
	authmw "equipment-manager/core/middleware/auth"
	"equipment-manager/core/storage"
	"equipment-manager/core/store"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	*fixture
	app   *fiber.App
	admin string
	staff string
}

func setupTestApp(t *testing.T, assets ...store.Record) *testApp {
	t.Helper()
	f := setupService(t, assets...)

	iss := auth.NewIssuer("test-secret", time.Hour)
	admin, err := iss.Issue("admin", auth.RoleAdmin, "Admin")
	require.NoError(t, err)
	staff, err := iss.Issue("somsri", "staff", "Somsri")
	require.NoError(t, err)

	app := fiber.New()
	app.Use(authmw.New(authmw.Config{Issuer: iss, Optional: true}))
	NewHandler(f.svc).RegisterRoutes(app)

	return &testApp{fixture: f, app: app, admin: admin, staff: staff}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestHandleMeta(t *testing.T) {
	a := setupTestApp(t)

	status, body := a.do(t, "GET", "/api/meta", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, []any{"Never reported", "Reported"}, body["maintenanceStatusChoices"])
}

func TestHandleList(t *testing.T) {
	a := setupTestApp(t, existing("A-000001", "C1"), existing("A-000002", "C2"))

	status, _ := a.do(t, "GET", "/api/assets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := a.do(t, "GET", "/api/assets?q=c2", a.staff, nil)
	require.Equal(t, http.StatusOK, status)
	list := body["assets"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "C2", list[0].(map[string]any)["code"])
}

func TestHandleGetByCode_Public(t *testing.T) {
	a := setupTestApp(t, existing("A-000001", "LAB-AS-EQ-A001"))

	status, body := a.do(t, "GET", "/api/assets/by-code/LAB-AS-EQ-A001", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "A-000001", body["asset"].(map[string]any)["id"])

	status, body = a.do(t, "GET", "/api/assets/by-code/NOPE", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["ok"])
}

func TestHandleCreate(t *testing.T) {
	a := setupTestApp(t, existing("A-000001", "LAB-AS-EQ-A001"))

	status, _ := a.do(t, "POST", "/api/assets", a.staff, map[string]any{"code": "X"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := a.do(t, "POST", "/api/assets", a.admin, map[string]any{"code": "X", "name": "Scale", "unitCost": 1500})
	require.Equal(t, http.StatusOK, status)
	created := body["asset"].(map[string]any)
	assert.Equal(t, "X", created["code"])
	assert.Equal(t, float64(1500), created["unitCost"])

	status, body = a.do(t, "POST", "/api/assets", a.admin, map[string]any{"code": "X"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, false, body["ok"])

	status, body = a.do(t, "POST", "/api/assets?kind=EQ", a.admin, map[string]any{"name": "Pipette"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "LAB-AS-EQ-A002", body["asset"].(map[string]any)["code"])

	status, _ = a.do(t, "POST", "/api/assets", a.admin, map[string]any{"name": "No code"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = a.do(t, "POST", "/api/assets", a.admin, map[string]any{"code": "Y", "tags": []string{"a"}})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandleUpdateAndDelete(t *testing.T) {
	a := setupTestApp(t, existing("A-000001", "C1"))

	status, body := a.do(t, "PUT", "/api/assets/A-000001", a.admin, map[string]any{"location": "Store room"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Store room", body["asset"].(map[string]any)["location"])

	status, _ = a.do(t, "PUT", "/api/assets/A-404", a.admin, map[string]any{"location": "x"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = a.do(t, "DELETE", "/api/assets/A-000001", a.admin, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = a.do(t, "DELETE", "/api/assets/A-000001", a.admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHandleUpdateByCode_StaffLimitedToMaintenance(t *testing.T) {
	a := setupTestApp(t, existing("A-000001", "C1"))

	status, body := a.do(t, "PUT", "/api/assets/by-code/C1", a.staff, map[string]any{
		"maintenanceStatus": "Reported",
		"name":              "hijacked",
	})
	require.Equal(t, http.StatusOK, status)
	asset := body["asset"].(map[string]any)
	assert.Equal(t, "Reported", asset["maintenanceStatus"])
	assert.Equal(t, "Item C1", asset["name"])

	status, _ = a.do(t, "PUT", "/api/assets/by-code/C1", "", map[string]any{"maintenanceStatus": "Reported"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHandleNextCode(t *testing.T) {
	a := setupTestApp(t, existing("A-000001", "LAB-AS-GN-A003"))

	status, body := a.do(t, "GET", "/api/next-code?kind=GN", a.admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "GN", body["kind"])
	assert.Equal(t, "LAB-AS-GN-A004", body["next"])

	status, _ = a.do(t, "GET", "/api/next-code?kind=XX", a.admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandleImport(t *testing.T) {
	a := setupTestApp(t, existing("A-000001", "C1"))

	req := map[string]any{
		"mode": "replace",
		"rows": []map[string]any{
			{"Code": "N1", "Name": "one"},
			{"Name": "no key"},
		},
	}

	status, body := a.do(t, "POST", "/api/import?dry_run=true", a.admin, req)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["dryRun"])
	summary := body["summary"].(map[string]any)
	assert.Equal(t, float64(1), summary["created"])
	assert.Equal(t, float64(1), summary["skipped"])
	assert.Equal(t, float64(1), summary["removed"])
	assert.Len(t, a.load(t).Assets, 1)

	status, _ = a.do(t, "POST", "/api/import", a.admin, req)
	require.Equal(t, http.StatusOK, status)
	s := a.load(t)
	require.Len(t, s.Assets, 1)
	assert.Equal(t, "N1", s.Assets[0].Code())

	status, _ = a.do(t, "POST", "/api/import", a.admin, map[string]any{"mode": "upsert"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandleAudit(t *testing.T) {
	a := setupTestApp(t)

	status, _ := a.do(t, "POST", "/api/assets", a.admin, map[string]any{"code": "X"})
	require.Equal(t, http.StatusOK, status)

	status, body := a.do(t, "GET", "/api/audit?limit=10", a.admin, nil)
	require.Equal(t, http.StatusOK, status)
	entries := body["entries"].([]any)
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]any)
	assert.Equal(t, "create", entry["op"])
	assert.Equal(t, "admin", entry["actor"])
}

func TestHandleUploadImage(t *testing.T) {
	a := setupTestApp(t, existing("A-000001", "C1"))
	a.client.On("PutObject", mock.Anything, "test-bucket", "images/A-000001.jpg", mock.Anything, int64(5), mock.Anything).
		Return(minio.UploadInfo{}, nil)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "label.jpg")
	require.NoError(t, err)
	_, _ = part.Write([]byte("jpeg!"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/assets/A-000001/image", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+a.admin)

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "/assets/images/A-000001.jpg", body["imagePath"])
	a.client.AssertExpectations(t)
}

func TestHandleUploadImage_MissingFile(t *testing.T) {
	a := setupTestApp(t, existing("A-000001", "C1"))

	status, _ := a.do(t, "POST", "/api/assets/A-000001/image", a.admin, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandleImage(t *testing.T) {
	a := setupTestApp(t)
	a.client.On("GetObject", mock.Anything, "test-bucket", "images/A-000001.png", mock.Anything).
		Return(io.NopCloser(strings.NewReader("png-bytes")), nil)

	resp, err := a.app.Test(httptest.NewRequest("GET", "/assets/images/A-000001.png", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestHandleImageMissing(t *testing.T) {
	a := setupTestApp(t)
	a.client.On("GetObject", mock.Anything, "test-bucket", "images/nope.jpg", mock.Anything).
		Return(nil, fmt.Errorf("%w: images/nope.jpg", storage.ErrObjectNotFound))

	resp, err := a.app.Test(httptest.NewRequest("GET", "/assets/images/nope.jpg", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(store.ErrNotFound))
	assert.Equal(t, http.StatusConflict, StatusFor(store.ErrDuplicateCode))
	assert.Equal(t, http.StatusBadRequest, StatusFor(store.ErrInvalidRecord))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(store.ErrIOFailure))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(store.ErrCorruptStore))
}
