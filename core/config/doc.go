// Package config provides configuration management for the Equipment Manager.
//
// Settings come from environment variables, optionally seeded from a .env
// file. Defaults live in `default` struct tags on each section and are
// registered with Viper by reflection, so every key is also reachable through
// AutomaticEnv.
//
// # Configuration Structure
//
//   - Server: port, body limit, token secret and lifetime
//   - Store: document path, institution, maintenance choices, bootstrap admin
//   - Storage: MinIO credentials, bucket and image prefixes
//   - Database: optional audit database (mysql or sqlite)
//   - Log: level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Store.Path)
package config
