package session

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"equipment-manager/core/auth"
	authmw "equipment-manager/core/middleware/auth"
	"equipment-manager/core/store"
	"equipment-manager/core/txn"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	fs := store.NewFileStore(filepath.Join(t.TempDir(), "db.json"), zap.NewNop())

	hash, err := auth.HashPassword("hashed-pass")
	require.NoError(t, err)
	snap := store.DefaultSnapshot(store.Config{AdminUsername: "admin", AdminPassword: "admin"})
	snap.Users = append(snap.Users, store.User{Username: "somsri", Password: hash, Role: "staff", DisplayName: "Somsri"})
	require.NoError(t, fs.Save(snap))

	iss := auth.NewIssuer("test-secret", time.Hour)
	app := fiber.New()
	app.Use(authmw.New(authmw.Config{Issuer: iss, Optional: true}))

	f := NewFeature(txn.New(fs, zap.NewNop()), iss, zap.NewNop())
	assert.Equal(t, "session", f.Name())
	assert.True(t, f.IsEnabled())
	require.NoError(t, f.Load(app))
	return app
}

func login(t *testing.T, app *fiber.App, username, password string) (int, map[string]any) {
	b, _ := json.Marshal(LoginRequest{Username: username, Password: password})
	req := httptest.NewRequest("POST", "/api/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestLogin(t *testing.T) {
	app := setupTestApp(t)

	tests := []struct {
		name     string
		user     string
		pass     string
		status   int
		wantRole string
	}{
		{"PlainPassword", "admin", "admin", http.StatusOK, "admin"},
		{"HashedPassword", "somsri", "hashed-pass", http.StatusOK, "staff"},
		{"WrongPassword", "admin", "nope", http.StatusUnauthorized, ""},
		{"UnknownUser", "ghost", "admin", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := login(t, app, tt.user, tt.pass)
			assert.Equal(t, tt.status, status)
			if tt.status == http.StatusOK {
				assert.NotEmpty(t, body["token"])
				assert.Equal(t, tt.wantRole, body["user"].(map[string]any)["role"])
			} else {
				assert.Equal(t, false, body["ok"])
			}
		})
	}
}

func TestMe(t *testing.T) {
	app := setupTestApp(t)
	_, body := login(t, app, "somsri", "hashed-pass")
	token := body["token"].(string)

	req := httptest.NewRequest("GET", "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	user := me["user"].(map[string]any)
	assert.Equal(t, "somsri", user["username"])
	assert.Equal(t, "Somsri", user["displayName"])
	assert.NotZero(t, user["exp"])

	resp, err = app.Test(httptest.NewRequest("GET", "/api/me", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBootstrapPasswordInUse(t *testing.T) {
	cfg := store.Config{AdminUsername: "admin", AdminPassword: "admin"}

	snap := store.DefaultSnapshot(cfg)
	assert.True(t, BootstrapPasswordInUse(snap, cfg))

	hash, err := auth.HashPassword("changed")
	require.NoError(t, err)
	snap.Users[0].Password = hash
	assert.False(t, BootstrapPasswordInUse(snap, cfg))

	assert.False(t, BootstrapPasswordInUse(store.DefaultSnapshot(cfg), store.Config{}))
	assert.False(t, BootstrapPasswordInUse(&store.Snapshot{}, cfg))
}
