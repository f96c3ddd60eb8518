package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/tabula/internal/core/config"
)

// ConfigCheck reports on the config file and every validation problem in it.
type ConfigCheck struct {
	cfg  *config.Config
	path string
}

// NewConfigCheck creates a check for cfg, read from path.
func NewConfigCheck(cfg *config.Config, path string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, path: path}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	switch _, err := os.Stat(c.path); {
	case c.path == "":
		result.add("config file", StatusPass, "none, using defaults")
	case os.IsNotExist(err):
		result.add("config file", StatusPass, c.path+" not found, using defaults")
	case err != nil:
		result.add("config file", StatusFail, fmt.Sprintf("inaccessible: %v", err))
	default:
		result.add("config file", StatusPass, c.path)
	}

	err := c.cfg.Validate()
	if err == nil {
		result.add("values", StatusPass, fmt.Sprintf("theme %s, %d key bindings", c.cfg.Theme, len(c.cfg.Keybindings)))
		return result
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		result.add("values", StatusFail, err.Error())
		return result
	}
	for _, fe := range fieldErrs {
		result.add(fe.Field, StatusFail, fe.Err.Error())
	}
	return result
}
