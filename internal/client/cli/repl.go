package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	SignUp(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Forgot(ctx context.Context) error
	Avatar(ctx context.Context, path string) error
}

// runREPL reads one command per line from reader and dispatches it to a.
// The loop exits on EOF, when ctx is done, or on "exit"/"quit".
//
//	Not logged in:
//	  - help           show available commands
//	  - signup         create an account
//	  - login          authenticate
//	  - forgot         reset a forgotten password
//	  - exit | quit    leave the program
//
//	Logged in:
//	  - help, whoami, avatar [file], logout, exit | quit
//
// Errors returned by command handlers are not fatal; handlers report them
// to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("rh %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, avatar, logout, exit")
			} else {
				printlnFn("Available commands: signup, login, forgot, exit")
			}

		case "signup", "register":
			_ = a.SignUp(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "forgot":
			_ = a.Forgot(ctx)

		case "avatar":
			var path string
			if len(parts) > 1 {
				path = parts[1]
			}
			_ = a.Avatar(ctx, path)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
