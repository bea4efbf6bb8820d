package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"learnwatch/lib/checker"
	"learnwatch/lib/courseinfo"
	"os"
	"strings"

	"golang.org/x/term"
)

var errNoTerminal = errors.New("a login is needed but stdin is not a terminal, run `learnwatch check` interactively once")

type terminalPrompter struct {
	in  *os.File
	out io.Writer
}

func newTerminalPrompter() terminalPrompter {
	return terminalPrompter{in: os.Stdin, out: os.Stderr}
}

// readLine reads up to a newline one byte at a time, so nothing is
// buffered away from the password read that follows.
func readLine(r io.Reader) (string, error) {
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			line = append(line, buf[0])
		}
		if err == io.EOF && len(line) > 0 {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(string(line)), nil
}

// askUserId returns the typed user id, falling back to previous on an
// empty answer. An empty result means the user gave up.
func askUserId(in io.Reader, out io.Writer, previous *courseinfo.Credential) (string, error) {
	if previous != nil && previous.UserId != "" {
		fmt.Fprintf(out, "User id [%s]: ", previous.UserId)
	} else {
		fmt.Fprint(out, "User id (empty to cancel): ")
	}
	userId, err := readLine(in)
	if errors.Is(err, io.EOF) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if userId == "" && previous != nil {
		userId = previous.UserId
	}
	return userId, nil
}

func (p terminalPrompter) Credential(ctx context.Context, previous *courseinfo.Credential, rejected bool) (courseinfo.Credential, error) {
	fd := int(p.in.Fd())
	if !term.IsTerminal(fd) {
		return courseinfo.Credential{}, errNoTerminal
	}

	if rejected {
		fmt.Fprintln(p.out, "\nThe site rejected the user id or password.")
	}
	userId, err := askUserId(p.in, p.out, previous)
	if err != nil {
		return courseinfo.Credential{}, err
	}
	if userId == "" {
		return courseinfo.Credential{}, checker.ErrLoginCancelled
	}

	fmt.Fprint(p.out, "Password: ")
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return courseinfo.Credential{}, err
	}
	if len(password) == 0 {
		return courseinfo.Credential{}, checker.ErrLoginCancelled
	}

	return courseinfo.Credential{UserId: userId, Password: string(password)}, nil
}
