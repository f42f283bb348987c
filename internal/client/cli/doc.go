// Package cli provides the interactive ProdAuth command-line client.
//
// It wires configuration, the token store, the API client and the session,
// verification and collection services behind a small REPL. Typical flow:
// restore the saved session, start the background session watcher and
// execute user commands.
//
// Key features:
//   - Verify serial numbers, with a capped history and scan statistics
//   - Login / Logout, with the token kept in SQLite, a JSON file or memory
//   - List / Add / Update / Delete customers, products and certificates
//   - Download certificate labels as PDF
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartSessionWatcher, and runREPL for details.
package cli
