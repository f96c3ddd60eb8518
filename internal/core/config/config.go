// Package config handles configuration loading and validation for tabula.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/tabula/internal/core/loader"
)

// Built-in action names for keybindings.
const (
	ActionOpen         = "open"
	ActionSave         = "save"
	ActionSaveAs       = "save-as"
	ActionClose        = "close"
	ActionQuit         = "quit"
	ActionEdit         = "edit"
	ActionAddRow       = "add-row"
	ActionAddColumn    = "add-column"
	ActionDeleteRow    = "delete-row"
	ActionDeleteColumn = "delete-column"
	ActionClearCell    = "clear-cell"
	ActionColumns      = "columns"
	ActionMark         = "mark"
	ActionPlot         = "plot"
	ActionHelp         = "help"
	ActionMessages     = "messages"
)

var actions = []string{
	ActionOpen, ActionSave, ActionSaveAs, ActionClose, ActionQuit,
	ActionEdit, ActionAddRow, ActionAddColumn, ActionDeleteRow,
	ActionDeleteColumn, ActionClearCell, ActionColumns, ActionMark,
	ActionPlot, ActionHelp, ActionMessages,
}

// Actions returns every built-in action name.
func Actions() []string { return append([]string(nil), actions...) }

// defaultKeybindings maps keys to actions. User entries override them.
var defaultKeybindings = map[string]string{
	"o":      ActionOpen,
	"ctrl+s": ActionSave,
	"S":      ActionSaveAs,
	"w":      ActionClose,
	"q":      ActionQuit,
	"enter":  ActionEdit,
	"e":      ActionEdit,
	"r":      ActionAddRow,
	"c":      ActionAddColumn,
	"D":      ActionDeleteRow,
	"X":      ActionDeleteColumn,
	"x":      ActionClearCell,
	"v":      ActionColumns,
	"m":      ActionMark,
	"p":      ActionPlot,
	"?":      ActionHelp,
	"N":      ActionMessages,
}

// Config holds the application configuration.
type Config struct {
	Theme       string            `yaml:"theme"`
	Loader      LoaderConfig      `yaml:"loader"`
	Open        OpenConfig        `yaml:"open"`
	Plot        PlotConfig        `yaml:"plot"`
	// Watch warns when the open file is changed by another program.
	Watch       bool              `yaml:"watch"`
	Keybindings map[string]string `yaml:"keybindings"`
}

// LoaderConfig tunes background loading.
type LoaderConfig struct {
	// BatchSize is the number of rows per progress update.
	BatchSize int `yaml:"batch_size"`
	// FlushInterval caps how long parsed rows wait before being shown.
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// Options converts the settings for loader.New.
func (c LoaderConfig) Options() loader.Options {
	return loader.Options{BatchSize: c.BatchSize, FlushInterval: c.FlushInterval}
}

// OpenConfig controls the open-file picker.
type OpenConfig struct {
	// Patterns are doublestar globs matched relative to the working directory.
	Patterns []string `yaml:"patterns"`
	// MaxFiles caps the number of picker entries.
	MaxFiles int `yaml:"max_files"`
	// Recent is how many recently opened files are remembered and listed
	// first in the picker. A negative value turns the list off.
	Recent int `yaml:"recent"`
}

// PlotConfig holds plot export defaults.
type PlotConfig struct {
	Title string `yaml:"title"`
	Kind  string `yaml:"kind"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Theme: "tokyo-night",
		Loader: LoaderConfig{
			BatchSize:     256,
			FlushInterval: 50 * time.Millisecond,
		},
		Open: OpenConfig{
			Patterns: []string{"*.csv", "**/*.csv"},
			MaxFiles: 500,
			Recent:   10,
		},
		Plot: PlotConfig{
			Title: "Plot Title",
			Kind:  "scatter",
		},
		Watch:       true,
		Keybindings: map[string]string{},
	}
}

// Load reads configuration from configPath and validates it. A missing file
// or an empty path yields the defaults.
func Load(configPath string) (*Config, error) {
	cfg, err := Read(configPath)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Read is Load without validation. Only unreadable or malformed files are
// errors.
func Read(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.Keybindings = mergeKeybindings(defaultKeybindings, cfg.Keybindings)
	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
	if c.Loader.BatchSize == 0 {
		c.Loader.BatchSize = defaults.Loader.BatchSize
	}
	if c.Loader.FlushInterval == 0 {
		c.Loader.FlushInterval = defaults.Loader.FlushInterval
	}
	if len(c.Open.Patterns) == 0 {
		c.Open.Patterns = defaults.Open.Patterns
	}
	if c.Open.MaxFiles == 0 {
		c.Open.MaxFiles = defaults.Open.MaxFiles
	}
	if c.Open.Recent == 0 {
		c.Open.Recent = defaults.Open.Recent
	}
	if c.Plot.Title == "" {
		c.Plot.Title = defaults.Plot.Title
	}
	if c.Plot.Kind == "" {
		c.Plot.Kind = defaults.Plot.Kind
	}
}

// mergeKeybindings merges user keybindings into defaults. A user entry with
// an empty action unbinds the key.
func mergeKeybindings(defaults, user map[string]string) map[string]string {
	result := make(map[string]string, len(defaults)+len(user))
	for k, v := range defaults {
		result[k] = v
	}
	for k, v := range user {
		if v == "" {
			delete(result, k)
			continue
		}
		result[k] = v
	}
	return result
}

// KeysFor returns the keys bound to action, sorted.
func (c *Config) KeysFor(action string) []string {
	var keys []string
	for k, a := range c.Keybindings {
		if a == action {
			keys = append(keys, k)
		}
	}
	sortKeys(keys)
	return keys
}
