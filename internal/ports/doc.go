// Package ports defines the interfaces (ports) that connect the engine core
// to infrastructure adapters.
//
// # Port Interfaces
//
//   - [Classifier]: the external motion classifier capability
//   - [Journal]: persists per-run and per-file outcomes
//   - [SettingsStore]: remembers the last-used input folder between sessions
//   - [Logger]: structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (model server, SQLite, JSON file, zerolog, etc.).
package ports
