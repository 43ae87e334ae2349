// Package shell implements the interactive passkeep menu.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Manager is the subset of manager.Manager the shell drives
type Manager interface {
	AddPassword(ctx context.Context, name, password string) error
	GetPassword(ctx context.Context, name string) (string, bool, error)
	DeletePassword(ctx context.Context, name string) error
	ListPasswords(ctx context.Context) ([]string, error)
}

type action struct {
	label string
	run   func(s *Shell, ctx context.Context) error
}

var actions = []action{
	{"Add Password", (*Shell).add},
	{"Get Password", (*Shell).get},
	{"Delete Password", (*Shell).delete},
	{"List Passwords", (*Shell).list},
	{"Exit", nil},
}

// Shell is a line-oriented menu over a Manager
type Shell struct {
	manager Manager
	raw     io.Reader
	in      *bufio.Reader
	out     io.Writer
	logger  *slog.Logger
}

// New creates a Shell reading from in and writing to out.
func New(manager Manager, in io.Reader, out io.Writer, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{
		manager: manager,
		raw:     in,
		in:      bufio.NewReader(in),
		out:     out,
		logger:  logger,
	}
}

// Run shows the menu until the user exits, input ends or ctx is cancelled.
// Operation failures are reported to the user and do not end the loop.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printMenu()
		choice, err := s.prompt("> ")
		if errors.Is(err, io.EOF) {
			s.println("Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}

		a, ok := parseChoice(choice)
		if !ok {
			s.printf("Unknown choice %q.\n", choice)
			continue
		}
		if a.run == nil {
			s.println("Goodbye!")
			return nil
		}
		if err := a.run(s, ctx); err != nil {
			if errors.Is(err, io.EOF) {
				s.println("Goodbye!")
				return nil
			}
			return err
		}
	}
}

func (s *Shell) add(ctx context.Context) error {
	name, err := s.accountName()
	if err != nil || name == "" {
		return err
	}
	password, err := readSecret(s.raw, s.in, s.out, "Enter password: ", s.logger)
	if err != nil {
		return err
	}

	if err := s.manager.AddPassword(ctx, name, password); err != nil {
		s.logger.Debug("add failed", "error", err)
		s.printf("Error adding password: %v\n", err)
		return nil
	}
	s.println("Password added successfully.")
	return nil
}

func (s *Shell) get(ctx context.Context) error {
	name, err := s.accountName()
	if err != nil || name == "" {
		return err
	}

	password, ok, err := s.manager.GetPassword(ctx, name)
	switch {
	case err != nil:
		s.printf("Error getting password: %v\n", err)
	case !ok:
		s.printf("Password for %s not found.\n", name)
	default:
		s.printf("Password for %s: %s\n", name, password)
	}
	return nil
}

func (s *Shell) delete(ctx context.Context) error {
	name, err := s.accountName()
	if err != nil || name == "" {
		return err
	}

	if err := s.manager.DeletePassword(ctx, name); err != nil {
		s.printf("Error deleting password: %v\n", err)
		return nil
	}
	s.printf("Password for %s deleted successfully.\n", name)
	return nil
}

func (s *Shell) list(ctx context.Context) error {
	names, err := s.manager.ListPasswords(ctx)
	if err != nil {
		s.printf("Error listing passwords: %v\n", err)
		return nil
	}
	if len(names) == 0 {
		s.println("No passwords stored.")
		return nil
	}
	s.println("Stored account names:")
	for _, n := range names {
		s.printf("- %s\n", n)
	}
	return nil
}

// accountName prompts for a name. An empty answer is reported and returned
// as "" with no error.
func (s *Shell) accountName() (string, error) {
	name, err := s.prompt("Enter account name: ")
	if err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		s.println("Account name must not be empty.")
	}
	return name, nil
}

func (s *Shell) prompt(p string) (string, error) {
	fmt.Fprint(s.out, p)
	return readLine(s.in)
}

func (s *Shell) printMenu() {
	s.println("")
	s.println("What would you like to do?")
	for i, a := range actions {
		s.printf("  %d) %s\n", i+1, a.label)
	}
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) println(line string) {
	fmt.Fprintln(s.out, line)
}

// parseChoice accepts a menu number or a label, case-insensitively.
func parseChoice(choice string) (action, bool) {
	choice = strings.TrimSpace(choice)
	if n, err := strconv.Atoi(choice); err == nil {
		if n >= 1 && n <= len(actions) {
			return actions[n-1], true
		}
		return action{}, false
	}
	for _, a := range actions {
		if strings.EqualFold(a.label, choice) {
			return a, true
		}
	}
	return action{}, false
}
