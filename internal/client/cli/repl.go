package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Mine(ctx context.Context) error
	Post(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Attach(ctx context.Context, args []string) error
	Get(ctx context.Context, args []string) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// It returns on EOF, on "exit"/"quit" or when ctx is cancelled.
//
//	Always:
//	  - help                      show available commands
//	  - list | l                  list all messages in posting order
//	  - get <id> image|recording  download an attachment
//	  - login [name]              authenticate with the shared password
//	  - exit | quit
//
//	Logged in:
//	  - mine                      list own messages
//	  - post                      create a message (text and/or files)
//	  - edit <id>                 replace the text of an own message
//	  - attach <id>               replace files of an own message
//	  - logout
//
// Command errors are reported by the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("msgboard (%s) > ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if needsSession(cmd) && !a.isLoggedIn() {
			printlnFn("Please login first")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, mine, post, edit <id>, attach <id>, get <id> image|recording, logout, exit")
			} else {
				printlnFn("Available commands: (l)ist, get <id> image|recording, login [name], exit")
			}

		case "login":
			_ = a.Login(ctx, args)

		case "logout":
			_ = a.Logout(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "mine":
			_ = a.Mine(ctx)

		case "post":
			_ = a.Post(ctx)

		case "edit":
			_ = a.Edit(ctx, args)

		case "attach":
			_ = a.Attach(ctx, args)

		case "get":
			_ = a.Get(ctx, args)

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
	case "mine", "post", "edit", "attach", "logout":
		return true
	}
	return false
}
