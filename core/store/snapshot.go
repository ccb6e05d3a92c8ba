package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// User is an account stored alongside the assets.
type User struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
}

// Snapshot is one complete version of the document. It is read whole and
// written whole.
type Snapshot struct {
	Meta                     json.RawMessage `json:"meta"`
	MaintenanceStatusChoices []string        `json:"maintenanceStatusChoices"`
	Users                    []User          `json:"users"`
	Assets                   []Record        `json:"assets"`
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Meta:                     append(json.RawMessage(nil), s.Meta...),
		MaintenanceStatusChoices: append([]string(nil), s.MaintenanceStatusChoices...),
		Users:                    append([]User(nil), s.Users...),
		Assets:                   make([]Record, len(s.Assets)),
	}
	for i, a := range s.Assets {
		out.Assets[i] = a.Clone()
	}
	return out
}

// DefaultMaintenanceStatus is the first allowed maintenance status, or
// FallbackMaintenanceStatus when none are configured.
func (s *Snapshot) DefaultMaintenanceStatus() string {
	if len(s.MaintenanceStatusChoices) > 0 {
		return s.MaintenanceStatusChoices[0]
	}
	return FallbackMaintenanceStatus
}

// FallbackMaintenanceStatus is used when the document lists no choices.
const FallbackMaintenanceStatus = "Never reported"

// IndexByID returns the position of the record with the given id, or -1.
func (s *Snapshot) IndexByID(id string) int {
	for i := range s.Assets {
		if s.Assets[i].ID() == id {
			return i
		}
	}
	return -1
}

// IndexByCode returns the position of the record with the given code, or -1.
func (s *Snapshot) IndexByCode(code string) int {
	code = strings.TrimSpace(code)
	for i := range s.Assets {
		if s.Assets[i].Code() == code {
			return i
		}
	}
	return -1
}

// HasID reports whether any record uses id.
func (s *Snapshot) HasID(id string) bool {
	return s.IndexByID(id) >= 0
}

// Validate checks the collection invariants: non-blank unique ids and
// non-blank unique codes.
func (s *Snapshot) Validate() error {
	ids := make(map[string]struct{}, len(s.Assets))
	codes := make(map[string]struct{}, len(s.Assets))
	for i, a := range s.Assets {
		id := a.ID()
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: asset #%d has no id", ErrInvalidRecord, i)
		}
		if _, dup := ids[id]; dup {
			return fmt.Errorf("%w: id %s appears twice", ErrInvalidRecord, id)
		}
		ids[id] = struct{}{}

		code := a.Code()
		if code == "" {
			return fmt.Errorf("%w: asset %s has no code", ErrInvalidRecord, id)
		}
		if _, dup := codes[code]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateCode, code)
		}
		codes[code] = struct{}{}
	}
	return nil
}

// NewID returns a fresh system id of the form A-XXXXXX.
func NewID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "A-" + strings.ToUpper(hex[:6])
}

// UniqueID returns a fresh id not used by any record in s.
func (s *Snapshot) UniqueID() string {
	for {
		id := NewID()
		if !s.HasID(id) {
			return id
		}
	}
}
