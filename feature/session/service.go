package session

import (
	"context"
	"errors"

	"equipment-manager/core/auth"
	"equipment-manager/core/store"
	"equipment-manager/core/txn"

	"go.uber.org/zap"
)

// ErrBadCredentials is returned when the username or password is wrong.
var ErrBadCredentials = errors.New("invalid username or password")

// User is the public view of an account.
type User struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

// Service authenticates users against the accounts in the document.
type Service struct {
	coord  *txn.Coordinator
	issuer *auth.Issuer
	logger *zap.Logger
}

// NewService creates a new session service.
func NewService(coord *txn.Coordinator, issuer *auth.Issuer, logger *zap.Logger) *Service {
	return &Service{coord: coord, issuer: issuer, logger: logger}
}

// Login verifies the credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (string, User, error) {
	snap, err := s.coord.Snapshot(ctx)
	if err != nil {
		return "", User{}, err
	}

	u, found := findUser(snap, username)
	if !found {
		// Same bcrypt cost as a wrong password for a real account.
		auth.CompareDummy(password)
		s.logger.Info("Login rejected", zap.String("username", username))
		return "", User{}, ErrBadCredentials
	}
	if !auth.CheckPassword(u.Password, password) {
		s.logger.Info("Login rejected", zap.String("username", username))
		return "", User{}, ErrBadCredentials
	}

	token, err := s.issuer.Issue(u.Username, u.Role, u.DisplayName)
	if err != nil {
		return "", User{}, err
	}
	return token, User{Username: u.Username, DisplayName: u.DisplayName, Role: u.Role}, nil
}

func findUser(snap *store.Snapshot, username string) (store.User, bool) {
	for _, u := range snap.Users {
		if u.Username == username {
			return u, true
		}
	}
	return store.User{}, false
}

// BootstrapPasswordInUse reports whether the bootstrap account of cfg still
// accepts the password it was created with.
func BootstrapPasswordInUse(snap *store.Snapshot, cfg store.Config) bool {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return false
	}
	u, ok := findUser(snap, cfg.AdminUsername)
	return ok && auth.CheckPassword(u.Password, cfg.AdminPassword)
}
