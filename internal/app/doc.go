// Package app contains the application core of docsave: the save
// orchestrator state machine, the generation tracker, the autosave
// scheduler, the event broadcaster, and the connectivity guard.
//
// The package depends only on internal/domain and internal/ports.
// Infrastructure (HTTP, file system, zerolog) lives in internal/adapters.
package app
