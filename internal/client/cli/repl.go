package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	New(ctx context.Context) error
	Open(ctx context.Context, id string) error
	CloseNote(ctx context.Context) error
	Show(ctx context.Context) error
	Edit(ctx context.Context) error
	Move(ctx context.Context, project string) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, text string) error
	Tag(ctx context.Context, keyword string) error
	Tags(ctx context.Context) error
	Top(ctx context.Context) error
	Projects(ctx context.Context) error
	View(ctx context.Context, mode string) error
	Zoom(ctx context.Context, direction string) error
	Status(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: login, zoom in|out|reset, status, exit"
	helpLoggedIn  = "Available commands: (l)ist, new, open <id>, close, show, edit, move <project>, " +
		"delete [id], search [text], tag [keyword], tags, top, projects, view list|project, " +
		"zoom in|out|reset, status, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the Notish client.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'; the rest of the line is the argument. The
// loop exits on end of input or when the user types "exit" or "quit".
//
//	Not logged in:
//	  - help, login, zoom, status, exit | quit
//
//	Logged in:
//	  - list | l           : notes matching the current search and keyword
//	  - new                : create a note and make it active
//	  - open <id>          : make a note active (id prefix accepted)
//	  - close              : leave the active note
//	  - show               : print the active note
//	  - edit               : replace the active note's text
//	  - move <project>     : move the active note to a project
//	  - delete [id]        : delete a note (default: the active one)
//	  - search [text]      : set or clear the search text
//	  - tag [keyword]      : set or clear the keyword filter
//	  - tags, top, projects: keyword and project lists
//	  - view list|project  : flat list or grouped by project
//	  - logout
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("notish %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				printlnFn("Input error:", err)
			}
			return
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)
		if cmd == "" {
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "login":
			_ = a.Login(ctx)
			continue
		case "zoom":
			_ = a.Zoom(ctx, arg)
			continue
		case "status":
			_ = a.Status(ctx)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !a.isLoggedIn() {
			if isKnown(cmd) {
				printlnFn("Please log in first.")
			} else {
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "l", "list":
			_ = a.List(ctx)
		case "new":
			_ = a.New(ctx)
		case "open":
			if arg == "" {
				printlnFn("Usage: open <id>")
				continue
			}
			_ = a.Open(ctx, arg)
		case "close":
			_ = a.CloseNote(ctx)
		case "show":
			_ = a.Show(ctx)
		case "edit":
			_ = a.Edit(ctx)
		case "move":
			_ = a.Move(ctx, arg)
		case "delete":
			_ = a.Delete(ctx, arg)
		case "search":
			_ = a.Search(ctx, arg)
		case "tag":
			_ = a.Tag(ctx, arg)
		case "tags":
			_ = a.Tags(ctx)
		case "top":
			_ = a.Top(ctx)
		case "projects":
			_ = a.Projects(ctx)
		case "view":
			_ = a.View(ctx, arg)
		case "logout":
			_ = a.Logout(ctx)
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

var noteCommands = []string{
	"l", "list", "new", "open", "close", "show", "edit", "move", "delete",
	"search", "tag", "tags", "top", "projects", "view", "logout",
}

func isKnown(cmd string) bool {
	return slices.Contains(noteCommands, cmd)
}
