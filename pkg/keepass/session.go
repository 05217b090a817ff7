package keepass

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// Errors
var (
	// ErrAuthenticationFailed is returned when the vault tool exits non-zero
	// and password enforcement is off. Wrong password and malformed group
	// path both surface this way: the tool reports only an exit status and
	// free text, and this layer keeps that ambiguity.
	ErrAuthenticationFailed = errors.New("keepass: vault tool rejected the request")

	// ErrPromptAborted is returned when the password prompt gives up during
	// the retry loop.
	ErrPromptAborted = errors.New("keepass: password prompt aborted")
)

// unlockPromptPattern matches the interactive unlock prompt the vault tool
// prints before its real output. Those lines are stripped from results.
var unlockPromptPattern = regexp.MustCompile(`(?i)^(enter|insert) password to unlock`)

// PromptFunc supplies a replacement master password after a failed unlock.
// Returning an error aborts the retry loop; an interactive prompt typically
// only fails on EOF or interrupt, which is the designed way out of a stuck
// loop.
type PromptFunc func(db string) (string, error)

// TerminalPrompt reads a password from the controlling terminal with echo
// disabled.
func TerminalPrompt(db string) (string, error) {
	fmt.Printf("Enter password to unlock %s: ", db)
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("keepass: failed to read password: %w", err)
	}
	return string(passwordBytes), nil
}

// Session holds the master password for one open vault file and drives the
// retry loop around the Runner when the tool rejects it. The password is
// supplied once, persists for the lifetime of the open vault view, and is
// replaced only when a retry succeeds with a corrected one.
//
// A Session is confined to a single goroutine; vault queries are
// synchronous and never overlap.
type Session struct {
	db       string
	password []byte

	// EnforcePassword keeps re-prompting until the tool accepts the
	// password. When off, a failing result is surfaced to the caller as-is.
	EnforcePassword bool

	// Prompt supplies corrected passwords during the retry loop.
	// Defaults to TerminalPrompt.
	Prompt PromptFunc

	runner Runner
}

// NewSession creates a session for the vault file at db. The password may
// be empty; the first failing query will prompt for it when enforcement is
// on.
func NewSession(db, password string, runner Runner) *Session {
	s := &Session{
		db:              db,
		EnforcePassword: true,
		Prompt:          TerminalPrompt,
		runner:          runner,
	}
	s.setPassword(password)
	disableCoreDumps()
	return s
}

// DB returns the vault file path. It is immutable for the session lifetime.
func (s *Session) DB() string { return s.db }

// Password returns the current password of record.
func (s *Session) Password() string { return string(s.password) }

// setPassword replaces the in-memory password, zeroing the previous copy.
// The new copy is page-locked best-effort so it does not get swapped out.
func (s *Session) setPassword(password string) {
	if s.password != nil {
		unlockMemory(s.password)
		for i := range s.password {
			s.password[i] = 0
		}
	}
	s.password = []byte(password)
	lockMemory(s.password)
}

// Execute runs one vault tool subcommand against the session's database and
// returns its text output with unlock-prompt lines stripped.
//
// On a non-zero exit with EnforcePassword set, the session prompts for a
// new password and retries until the tool accepts one or the prompt aborts;
// the working password is then persisted as the password of record so later
// queries do not re-prompt. With enforcement off, the failing output is
// returned together with ErrAuthenticationFailed for the caller to inspect.
func (s *Session) Execute(ctx context.Context, sub string, flags []string, path string) (string, error) {
	args := buildArgs(sub, flags, s.db, path)

	for {
		res, err := s.runner.Run(ctx, string(s.password), args)
		if err != nil {
			return "", err
		}
		if res.Ok() {
			return stripPromptLines(res.Output), nil
		}

		if !s.EnforcePassword {
			return res.Output, fmt.Errorf("%w (exit status %d)", ErrAuthenticationFailed, res.ExitCode)
		}

		password, err := s.Prompt(s.db)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrPromptAborted, err)
		}
		s.setPassword(password)
	}
}

// buildArgs assembles the tool argv: subcommand, flags, database, then the
// group or entry path. An empty path means the vault root and is omitted.
func buildArgs(sub string, flags []string, db, path string) []string {
	args := make([]string, 0, len(flags)+3)
	args = append(args, sub)
	args = append(args, flags...)
	args = append(args, db)
	if path != "" {
		args = append(args, path)
	}
	return args
}

// stripPromptLines removes the tool's interactive unlock prompt from its
// combined output. The prompt goes to stderr and would otherwise be mixed
// into every listing.
func stripPromptLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if unlockPromptPattern.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
