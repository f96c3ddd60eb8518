package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/colonyops/tabula/internal/core/config"
	"github.com/colonyops/tabula/internal/store/jsonfile"
)

type Flags struct {
	LogLevel     string
	LogFile      string
	ConfigPath   string
	DataDir      string
	ProfilerPort int

	// Config is read in the Before hook and available to all commands. It
	// is not validated there; see ValidConfig.
	Config *config.Config

	// stdin replaces os.Stdin for the "-" file argument.
	stdin io.Reader
}

// input resolves a command's file argument.
func (f *Flags) input(arg string) input {
	in := newInput(arg)
	if f.stdin != nil {
		in.stdin = f.stdin
		in.stdinFd = -1
	}
	return in
}

// ValidConfig returns Config, or an error describing why it cannot be used.
func (f *Flags) ValidConfig() (*config.Config, error) {
	if f.Config == nil {
		return nil, fmt.Errorf("config not loaded")
	}
	if err := f.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w\nrun 'tabula config validate' for details", f.ConfigPath, err)
	}
	return f.Config, nil
}

// RecentStore returns the store of recently opened files under DataDir.
func (f *Flags) RecentStore() *jsonfile.RecentStore {
	return jsonfile.NewRecentStore(filepath.Join(f.DataDir, "recent.json"))
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "tabula")
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "tabula", "config.yaml")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/tabula/tabula.log
// On Linux: $XDG_STATE_HOME/tabula/tabula.log (defaults to ~/.local/state/tabula/tabula.log)
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "tabula", "tabula.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "tabula", "tabula.log")
	}

	return filepath.Join(home, ".local", "state", "tabula", "tabula.log")
}
