package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/colonyops/tabula/internal/core/loader"
	"github.com/colonyops/tabula/internal/core/session"
)

// stdinName is the file argument that reads CSV from standard input.
const stdinName = "-"

// input is the CSV source named by a command's file argument.
type input struct {
	name  string
	stdin io.Reader
	// stdinFd is checked for a terminal before stdin is read.
	stdinFd int
}

func newInput(arg string) input {
	return input{name: arg, stdin: os.Stdin, stdinFd: int(os.Stdin.Fd())}
}

func (in input) isStdin() bool { return in.name == "" || in.name == stdinName }

func (in input) displayName() string {
	if in.isStdin() {
		return "stdin"
	}
	return in.name
}

// open begins loading the input into sess. Standard input is read into
// memory first because the loader opens its source twice.
func (in input) open(ctx context.Context, sess *session.Session) (*loader.Load, error) {
	if !in.isStdin() {
		return sess.BeginLoad(ctx, in.name)
	}

	if term.IsTerminal(in.stdinFd) {
		return nil, errors.New("no input provided (stdin is a terminal); pass a file or pipe CSV input")
	}

	data, err := io.ReadAll(in.stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return sess.BeginLoadSource(ctx, in.displayName(), func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}
