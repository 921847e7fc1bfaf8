// Package domain contains the core domain entities and value objects for docsave.
//
// This package represents the innermost layer of the architecture. It has no
// dependencies on infrastructure concerns (HTTP, file system, logging) and
// contains only the vocabulary of document persistence.
//
// # Entities
//
//   - [Generation]: A strictly increasing identifier of a durably-stored
//     document version
//   - [SaverState]: The lifecycle state of the save orchestrator
//   - [SaveEvent]: An immutable notification value emitted on the event channel
//   - [RecoveryOutcome]: The result of a recovery round-trip against the store
//
// # Design Principles
//
// Domain values are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
