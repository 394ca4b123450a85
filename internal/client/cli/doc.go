// Package cli provides the interactive Notish client.
//
// The REPL stands in for the editor surface: typed lines become a minimal
// structured document plus its plain text, and both are handed to the note
// service, which saves them after a quiet period. Known keywords typed
// without a '#' are tagged automatically.
//
// Typical flow: log in (an empty token selects the local owner), pick or
// create a note, edit it, and leave. Pending edits are written on exit.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
