// Package store holds the client-side state layer: one store per entity
// family (session, runs, programs, notifications, theme), each exposing a
// read-only snapshot and a small set of named operations. Stores mutate
// only inside the settlement path of their own network requests; the
// presentation layer composes by reading multiple snapshots, never by
// mutating them. Stores do not call each other.
//
// Blocking operations take a context and are expected to run on tea.Cmd
// goroutines; whichever request settles last wins. Notification expiry
// timers are the only mutators that fire outside a request settlement.
package store
