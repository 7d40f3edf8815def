// Package cli provides the interactive artwall command-line client.
//
// It wires configuration, local state, the gallery services and an
// interactive REPL. On start it loads the works, then runs two background
// workers: a connectivity watcher that pings the server and refreshes after
// a reconnect, and the leaderboard deriver.
//
// Key features:
//   - Browse: list, show, top (leaderboard)
//   - Interact: like, comment, uncomment, upload
//   - Profile: name, whoami
//   - Admin: login, logout, delete, pin
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
