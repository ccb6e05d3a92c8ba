// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface and registers its own routes.
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// The Manager holds the registry of available features:
//   - Register adds a feature
//   - LoadAll loads the enabled ones, in registration order
//
// Features such as 'assets', 'session' or 'integrity' are developed and
// tested in isolation.
package loader
