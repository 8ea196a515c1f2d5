package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/docchat/internal/client/auth"
	"github.com/dmitrijs2005/docchat/internal/client/client"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	Chats(ctx context.Context) error
	Open(ctx context.Context, args []string) error
	NewChat(ctx context.Context) error
	Show(ctx context.Context) error
	Send(ctx context.Context, text string) error
	ToggleWebSearch(ctx context.Context) error
	ToggleImageGeneration(ctx context.Context) error
	Attach(ctx context.Context, args []string) error
	Detach(ctx context.Context) error
	Cite(ctx context.Context, args []string) error

	Docs(ctx context.Context) error
	Stage(ctx context.Context, args []string) error
	Unstage(ctx context.Context, args []string) error
	Upload(ctx context.Context) error
	RemoveDocument(ctx context.Context, args []string) error
	DocumentStatus(ctx context.Context, args []string) error

	Users(ctx context.Context) error
	EditLimit(ctx context.Context, args []string) error
	SaveLimit(ctx context.Context, args []string) error
	DeleteUser(ctx context.Context, args []string) error
}

const (
	helpSignedOut = "Available commands: login, help, exit"
	helpSignedIn  = `Available commands:
  chat:      send <text> (or: > <text>), show, chats, open <n|chat id>, new,
             websearch, imagegen, attach <image>, detach, cite <message> <n>
  documents: docs, stage <file>..., unstage <name>, upload, rmdoc <id>, docstatus <id>
  admin:     users, limit <user id> [n], setlimit <user id>, deluser <user id>
  account:   whoami, logout, exit`
)

// runREPL starts a simple read–eval–print loop for the docchat CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF, when ctx is cancelled or
// when the user types "exit" or "quit".
//
// Errors returned by command handlers are printed with describe and the
// loop continues. A token error that needs the user starts the interactive
// login.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("docchat %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd, args := parts[0], parts[1:]

		if !a.isLoggedIn() {
			switch cmd {
			case "help":
				printlnFn(helpSignedOut)
			case "login":
				report(a.Login(ctx))
			case "exit", "quit":
				printlnFn("Bye!")
				return
			default:
				printlnFn("Please run 'login' first.")
			}
			continue
		}

		if strings.HasPrefix(line, ">") {
			handle(ctx, a, a.Send(ctx, strings.TrimSpace(strings.TrimPrefix(line, ">"))))
			continue
		}

		var err error
		switch cmd {
		case "help":
			printlnFn(helpSignedIn)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "whoami":
			err = a.WhoAmI(ctx)

		case "send":
			err = a.Send(ctx, strings.TrimSpace(strings.TrimPrefix(line, cmd)))
		case "show":
			err = a.Show(ctx)
		case "chats":
			err = a.Chats(ctx)
		case "open":
			err = a.Open(ctx, args)
		case "new":
			err = a.NewChat(ctx)
		case "websearch":
			err = a.ToggleWebSearch(ctx)
		case "imagegen":
			err = a.ToggleImageGeneration(ctx)
		case "attach":
			err = a.Attach(ctx, args)
		case "detach":
			err = a.Detach(ctx)
		case "cite":
			err = a.Cite(ctx, args)

		case "docs":
			err = a.Docs(ctx)
		case "stage":
			err = a.Stage(ctx, args)
		case "unstage":
			err = a.Unstage(ctx, args)
		case "upload":
			err = a.Upload(ctx)
		case "rmdoc":
			err = a.RemoveDocument(ctx, args)
		case "docstatus":
			err = a.DocumentStatus(ctx, args)

		case "users":
			err = a.Users(ctx)
		case "limit":
			err = a.EditLimit(ctx, args)
		case "setlimit":
			err = a.SaveLimit(ctx, args)
		case "deluser":
			err = a.DeleteUser(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
		handle(ctx, a, err)
	}
}

// handle prints err. When the token provider needs the user, the
// interactive login runs right away.
func handle(ctx context.Context, a execIface, err error) {
	report(err)
	if needsLogin(err) {
		report(a.Login(ctx))
	}
}

func needsLogin(err error) bool {
	return errors.Is(err, auth.ErrNoAccount) || errors.Is(err, auth.ErrInteractionRequired)
}

// errUsage is returned by commands called with the wrong arguments; its
// text is the usage line.
type errUsage string

func (e errUsage) Error() string { return "Usage: " + string(e) }

func report(err error) {
	if err == nil {
		return
	}
	printlnFn(describe(err))
}

// describe turns a command error into the line shown to the user.
func describe(err error) string {
	var usage errUsage
	switch {
	case errors.As(err, &usage):
		return usage.Error()
	case needsLogin(err):
		return "Your session has expired. Please sign in again."
	default:
		return client.Describe(err)
	}
}
