package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
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
	WhoAmI(ctx context.Context) error
	Verify(ctx context.Context, serial string) error
	Last(ctx context.Context) error
	History(ctx context.Context) error
	ClearHistory(ctx context.Context) error
	Stats(ctx context.Context) error
	List(ctx context.Context, kind string) error
	Add(ctx context.Context, kind string) error
	Update(ctx context.Context, kind string, id int64) error
	Delete(ctx context.Context, kind string, id int64) error
	PDF(ctx context.Context, id int64, path string) error
	Dashboard(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: login, verify <serial>, last, history, clearhistory, stats, exit"
	helpLoggedIn  = "Available commands: verify <serial>, last, history, clearhistory, stats, dashboard,\n" +
		"  (l)ist <kind>, add <kind>, update <kind> <id>, delete <kind> <id>, pdf <certificate id> [file],\n" +
		"  whoami, logout, exit\n" +
		"Kinds: customers, products, certificates"
)

// runREPL starts a simple read–eval–print loop for the prodauth CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands and malformed arguments are
// reported back to the user. The loop exits on EOF or when the user types
// "exit" or "quit".
//
// Verification and statistics work without a session; record management,
// label download and the dashboard require one.
//
// Errors returned by command handlers are ignored here; handlers print their
// own messages. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("pa %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if needsSession(cmd) && !a.isLoggedIn() {
			printlnFn("Please log in first.")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "verify", "v":
			if len(args) != 1 {
				printlnFn("Usage: verify <serial>")
				continue
			}
			_ = a.Verify(ctx, args[0])

		case "last":
			_ = a.Last(ctx)

		case "history":
			_ = a.History(ctx)

		case "clearhistory":
			_ = a.ClearHistory(ctx)

		case "stats":
			_ = a.Stats(ctx)

		case "dashboard":
			_ = a.Dashboard(ctx)

		case "l", "list", "add":
			kind, ok := kindArg(args, 1)
			if !ok {
				printlnFn(fmt.Sprintf("Usage: %s <customers|products|certificates>", cmd))
				continue
			}
			if cmd == "add" {
				_ = a.Add(ctx, kind)
			} else {
				_ = a.List(ctx, kind)
			}

		case "update", "delete":
			kind, ok := kindArg(args, 2)
			id, idOK := idArg(args, 1)
			if !ok || !idOK {
				printlnFn(fmt.Sprintf("Usage: %s <customers|products|certificates> <id>", cmd))
				continue
			}
			if cmd == "update" {
				_ = a.Update(ctx, kind, id)
			} else {
				_ = a.Delete(ctx, kind, id)
			}

		case "pdf":
			id, ok := idArg(args, 0)
			if !ok || len(args) > 2 {
				printlnFn("Usage: pdf <certificate id> [file]")
				continue
			}
			path := ""
			if len(args) == 2 {
				path = args[1]
			}
			_ = a.PDF(ctx, id, path)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func needsSession(cmd string) bool {
	switch cmd {
	case "logout", "whoami", "dashboard", "l", "list", "add", "update", "delete", "pdf":
		return true
	}
	return false
}

// kindArg reads the collection name from args[0]; want is the exact number
// of arguments the command takes.
func kindArg(args []string, want int) (string, bool) {
	if len(args) != want {
		return "", false
	}
	return parseKind(args[0])
}

func idArg(args []string, i int) (int64, bool) {
	if i >= len(args) {
		return 0, false
	}
	id, err := strconv.ParseInt(args[i], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
