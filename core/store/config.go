package store

import (
	"encoding/json"
	"time"
)

// Config holds configuration for the document store.
type Config struct {
	// Path is the location of the JSON document.
	Path string `mapstructure:"path" default:"data/db.json"`
	// Institution is written into the metadata of a new document.
	Institution string `mapstructure:"institution" default:"Laboratory"`
	// MaintenanceChoices seeds the allowed maintenance statuses of a new document.
	MaintenanceChoices []string `mapstructure:"maintenance_choices" default:"Never reported,Reported,In repair,Repaired"`
	// AdminUsername is the account created with a new document.
	AdminUsername string `mapstructure:"admin_username" default:"admin"`
	// AdminPassword is the password of the bootstrap account.
	AdminPassword string `mapstructure:"admin_password" default:"admin"`
}

// DefaultSnapshot builds the first document for a new store.
func DefaultSnapshot(cfg Config) *Snapshot {
	meta, _ := json.Marshal(map[string]string{
		"name":      cfg.Institution,
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	})

	s := &Snapshot{
		Meta:                     meta,
		MaintenanceStatusChoices: append([]string{}, cfg.MaintenanceChoices...),
		Users:                    []User{},
		Assets:                   []Record{},
	}
	if cfg.AdminUsername != "" {
		s.Users = append(s.Users, User{
			Username:    cfg.AdminUsername,
			Password:    cfg.AdminPassword,
			Role:        "admin",
			DisplayName: "Administrator",
		})
	}
	return s
}
