package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/term"
)

// isTerminal reports whether fd is a terminal. Package-level variable to
// allow test overrides.
var isTerminal = term.IsTerminal

// EnvironmentCheck verifies the terminal and the log file location.
type EnvironmentCheck struct {
	logFile string
}

// NewEnvironmentCheck creates a new environment check.
func NewEnvironmentCheck(logFile string) *EnvironmentCheck {
	return &EnvironmentCheck{logFile: logFile}
}

func (c *EnvironmentCheck) Name() string {
	return "Environment"
}

func (c *EnvironmentCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if isTerminal(int(os.Stdout.Fd())) {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			result.add("terminal", StatusPass, fmt.Sprintf("%dx%d", w, h))
		} else {
			result.add("terminal", StatusPass, "")
		}
	} else {
		result.add("terminal", StatusWarn, "stdout is not a terminal, the editor needs one")
	}

	if c.logFile == "" {
		result.add("log file", StatusWarn, "logging disabled")
		return result
	}

	dir := filepath.Dir(c.logFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		result.add("log file", StatusFail, fmt.Sprintf("cannot create %s: %v", dir, err))
		return result
	}
	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		result.add("log file", StatusFail, fmt.Sprintf("not writable: %v", err))
		return result
	}
	_ = f.Close()
	result.add("log file", StatusPass, c.logFile)

	return result
}
