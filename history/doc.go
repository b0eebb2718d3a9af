// Package history contains concrete HistoryStore implementations. The store
// interface resides in the core package. Depend on core.HistoryStore in your
// code and select an implementation (the in-memory store below, or
// history/sqlite) at wiring time.
//
// Stores are usually attached to an engine through engine.NewHistoryCallback.
package history
