package commands

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tabula/internal/core/styles"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "tabula config validate [options]",
				Description: "Validates the configuration file, checking the theme, loader limits, glob patterns and key bindings.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type fieldErrorJSON struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	problems := fieldErrors(cmd.flags.Config.Validate())

	w := c.Root().Writer
	if cmd.format == "json" {
		out := struct {
			Path   string           `json:"path"`
			Valid  bool             `json:"valid"`
			Errors []fieldErrorJSON `json:"errors,omitempty"`
		}{
			Path:   cmd.flags.ConfigPath,
			Valid:  len(problems) == 0,
			Errors: problems,
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		cmd.outputText(w, problems)
	}

	if len(problems) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *ConfigValidateCmd) outputText(w io.Writer, problems []fieldErrorJSON) {
	for _, p := range problems {
		_, _ = lipgloss.Fprintf(w, "%s %s: %s\n", styles.TextErrorStyle.Render("✘"), p.Field, p.Message)
	}
	if len(problems) == 0 {
		_, _ = lipgloss.Fprintln(w, styles.TextSuccessStyle.Render("✔ configuration is valid"))
		return
	}
	_, _ = lipgloss.Fprintln(w)
	_, _ = lipgloss.Fprintf(w, "%d error(s) found in %s\n", len(problems), cmd.flags.ConfigPath)
}

func fieldErrors(err error) []fieldErrorJSON {
	if err == nil {
		return nil
	}
	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return []fieldErrorJSON{{Field: "config", Message: err.Error()}}
	}
	out := make([]fieldErrorJSON, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, fieldErrorJSON{Field: fe.Field, Message: fe.Err.Error()})
	}
	return out
}
