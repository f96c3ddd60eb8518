package config

import (
	"fmt"
	"slices"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/colonyops/tabula/internal/core/plot"
	"github.com/colonyops/tabula/internal/core/styles"
)

// Validate checks that the configuration is valid. Every problem is
// reported as a criterio field error.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("theme", c.Theme, knownTheme),
		positive("loader.batch_size", int64(c.Loader.BatchSize)),
		positive("loader.flush_interval", int64(c.Loader.FlushInterval)),
		positive("open.max_files", int64(c.Open.MaxFiles)),
		criterio.Run("plot.kind", c.Plot.Kind, knownPlotKind),
		c.validatePatterns(),
		c.validateKeybindings(),
	)
}

func knownTheme(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q (available: %v)", name, styles.ThemeNames())
	}
	return nil
}

func positive(field string, n int64) error {
	if n < 1 {
		return criterio.NewFieldErrors(field, fmt.Errorf("must be greater than zero"))
	}
	return nil
}

func knownPlotKind(kind string) error {
	_, err := plot.ParseKind(kind)
	return err
}

func (c *Config) validatePatterns() error {
	var errs criterio.FieldErrorsBuilder
	for i, p := range c.Open.Patterns {
		if !doublestar.ValidatePattern(p) {
			errs = errs.Append(fmt.Sprintf("open.patterns[%d]", i), fmt.Errorf("invalid glob %q", p))
		}
	}
	return errs.ToError()
}

func (c *Config) validateKeybindings() error {
	keys := make([]string, 0, len(c.Keybindings))
	for k := range c.Keybindings {
		keys = append(keys, k)
	}
	sortKeys(keys)

	var errs criterio.FieldErrorsBuilder
	for _, key := range keys {
		action := c.Keybindings[key]
		if !slices.Contains(actions, action) {
			errs = errs.Append(fmt.Sprintf("keybindings[%q]", key), fmt.Errorf("unknown action %q", action))
		}
	}
	return errs.ToError()
}

func sortKeys(keys []string) { sort.Strings(keys) }
