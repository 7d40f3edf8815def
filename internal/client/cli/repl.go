package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isPrivileged() bool
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Top(ctx context.Context, args []string) error
	Refresh(ctx context.Context, args []string) error
	Like(ctx context.Context, args []string) error
	Comment(ctx context.Context, args []string) error
	Uncomment(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Pin(ctx context.Context, args []string) error
	Name(ctx context.Context, args []string) error
	Whoami(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
}

func helpText(privileged bool) string {
	common := "list, show <id>, top, refresh, like <id>, comment <id>, uncomment <id> <comment-id>, upload [files...], name, whoami"
	if privileged {
		return "Available commands: " + common + ", delete <id>, pin <id>, logout, exit"
	}
	return "Available commands: " + common + ", login, exit"
}

// runREPL starts a simple read–eval–print loop for the artwall CLI.
//
// It reads a line from reader, parses the first token as the command and
// passes the rest as arguments. Admin commands (delete, pin, logout) are
// only offered while the session is privileged. The loop exits on EOF or
// when the user types "exit" or "quit".
//
// Errors returned by handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("artwall %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help", "?":
			printlnFn(helpText(a.isPrivileged()))

		case "l", "list":
			cmdErr = a.List(ctx, args)

		case "show":
			cmdErr = a.Show(ctx, args)

		case "top", "leaderboard":
			cmdErr = a.Top(ctx, args)

		case "refresh":
			cmdErr = a.Refresh(ctx, args)

		case "like":
			cmdErr = a.Like(ctx, args)

		case "comment":
			cmdErr = a.Comment(ctx, args)

		case "uncomment":
			cmdErr = a.Uncomment(ctx, args)

		case "upload":
			cmdErr = a.Upload(ctx, args)

		case "delete":
			cmdErr = a.Delete(ctx, args)

		case "pin":
			cmdErr = a.Pin(ctx, args)

		case "name":
			cmdErr = a.Name(ctx, args)

		case "whoami":
			cmdErr = a.Whoami(ctx, args)

		case "login":
			cmdErr = a.Login(ctx, args)

		case "logout":
			cmdErr = a.Logout(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", describeError(cmdErr))
		}
		if err != nil {
			return
		}
	}
}
