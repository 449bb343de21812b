// Package presence holds the in-memory coordination state of the chat router:
// who is connected under which name, which rooms exist and who is in them.
//
// The Identity and Room registries are plain data structures guarded by a
// single Directory lock. The Coordinator drives the per-connection session
// state machine and hands the notifications it produces to the Router, which
// resolves scopes to live connections and performs best-effort delivery.
package presence
