package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
)

// PasswordStore updates a user's password hash.
type PasswordStore interface {
	SetPasswordHash(ctx context.Context, user, hash string) error
}

// PasswdOptions configures the passwd command. The password is read from
// the first line of Stdin so it never lands in shell history.
type PasswdOptions struct {
	User   string
	Cost   int
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// PasswdCommand sets the password of an existing desk user.
func PasswdCommand(ctx context.Context, store PasswordStore, opts PasswdOptions) int {
	stdout, stderr := outputs(opts.Stdout, opts.Stderr)
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Cost == 0 {
		opts.Cost = bcrypt.DefaultCost
	}
	user := strings.TrimSpace(opts.User)
	if user == "" {
		fmt.Fprintln(stderr, "passwd: --user is required")
		return 1
	}
	line, err := bufio.NewReader(opts.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintf(stderr, "passwd: read password: %v\n", err)
		return 1
	}
	password := strings.TrimRight(line, "\r\n")
	if len(password) < 8 {
		fmt.Fprintln(stderr, "passwd: password must be at least 8 characters")
		return 1
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), opts.Cost)
	if err != nil {
		fmt.Fprintf(stderr, "passwd: hash: %v\n", err)
		return 1
	}
	if err := store.SetPasswordHash(ctx, user, string(hash)); err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			fmt.Fprintf(stderr, "passwd: user %s not found\n", user)
			return 1
		}
		fmt.Fprintf(stderr, "passwd: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "password updated for %s\n", user)
	return 0
}
