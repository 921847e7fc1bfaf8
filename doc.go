// Package docsave provides an embeddable document persistence orchestrator.
//
// The saver gets an in-memory document safely and durably onto a backing
// store, on a schedule, under concurrent edit pressure, and recovers when a
// save is rejected or the network is unavailable. It reconciles three
// independently-timed forces (user edits, a periodic autosave timer, and an
// unreliable remote store) and gives the rest of the application a single
// notion of "the document is saved, at generation N".
//
// # Basic Usage
//
//	backend := docsave.NewFileBackend("/path/to/store")
//	source := docsave.DocumentSourceFunc(func(ctx context.Context) ([]byte, error) {
//	    return editor.Serialize(), nil
//	})
//
//	saver, err := docsave.New(backend, source, docsave.Config{
//	    AutosaveInterval: 30 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := saver.Init(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer saver.Destroy()
//
//	// On every document mutation:
//	saver.MarkDirty()
//
//	// On an explicit save action:
//	if err := saver.Save(ctx, true); err != nil {
//	    // surfaced through events too; see Subscribe
//	}
//
// # Events
//
// Subscribe to observe save progress. Each subscriber receives only events
// emitted after it subscribed; emission is synchronous with the state
// transition that caused it and ordered before the next transition:
//
//	sub := saver.Subscribe(func(ev docsave.Event) {
//	    if ev.Kind == docsave.EventSaveFailure && !ev.Autosave {
//	        ui.ShowSaveError(ev.Reason)
//	    }
//	})
//	defer sub.Cancel()
//
// # Backends
//
// Three backends ship with the package: a local-file store
// ([NewFileBackend]), a remote HTTP store ([NewRemoteBackend]), and a no-op
// demo store ([NewNoopBackend], which opts out of autosave). Custom stores
// implement [Backend]; transport failures must be classified through
// [ConflictError], [ConnectivityError], and [RejectedError] at the backend
// boundary.
//
// # Saving Semantics
//
// At most one backend save is in flight at any instant. Requests arriving
// while a save is in flight coalesce into a single follow-up cycle; an
// interactive request upgrades a coalesced scheduled one. A conflict (the
// store holds a newer generation) triggers exactly one recovery round-trip;
// a connectivity failure is left to the next save attempt.
package docsave
