// Package database opens the optional audit database and inspects its schema.
//
// It wraps GORM and supports two drivers: mysql for deployments and sqlite
// (file or ":memory:") for single-host installs and tests.
//
// # Connect
//
// Connect builds the dialector for the configured driver, applies the pool
// settings and pings the database within the configured timeout. Callers
// treat a failure as "no audit trail" rather than a fatal error.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns back the audit schema integrity check.
//
//	db, err := database.Connect(cfg.Database)
//	missing, err := database.MissingColumns(db, "audit_entries", []string{"id", "op"})
package database
