// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// application needs from external systems without specifying how those needs
// are fulfilled.
//
// # Port Interfaces
//
//   - [Backend]: Performs the durable write/read against a concrete store
//   - [DocumentSource]: Supplies the document snapshot to persist
//   - [Logger]: Structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (file system, HTTP, zerolog, etc.).
//
// This separation enables:
//   - Testing application logic with mock implementations
//   - Swapping backends without changing orchestration logic
//   - Clear boundaries and dependency direction
package ports
