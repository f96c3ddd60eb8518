package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tabula/internal/core/config"
	"github.com/colonyops/tabula/internal/core/logging"
	"github.com/colonyops/tabula/internal/core/styles"
	"github.com/colonyops/tabula/pkg/logutils"
)

// maxNotices caps the warnings replayed on exit.
const maxNotices = 50

// NewApp builds the root command with every subcommand registered.
func NewApp(flags *Flags, version string) *cli.Command {
	var (
		logCloser func()
		notices   = logutils.NewDeferred(maxNotices)
	)

	app := &cli.Command{
		Name:      "tabula",
		Usage:     "View and edit CSV files in the terminal",
		UsageText: "tabula [global options] [file]\ntabula [global options] command [command options]",
		Description: `tabula opens CSV files in a spreadsheet-like terminal editor. Files load in
the background so large files can be browsed while they are still being read.

Hidden columns are left out when saving, which makes tabula a quick way to
cut a file down to the columns you need.

Run 'tabula <file>' to open a file, or 'tabula' to pick one.`,
		Version:               version,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TABULA_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Sources:     cli.EnvVars("TABULA_LOG_FILE"),
				Value:       DefaultLogFile(),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TABULA_CONFIG"),
				Value:       DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "directory for tabula state such as recent files",
				Sources:     cli.EnvVars("TABULA_DATA_DIR"),
				Value:       DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile, notices)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Read(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			if !styles.SetThemeByName(cfg.Theme) {
				log.Warn().Str("theme", cfg.Theme).Msg("unknown theme, using default")
			}

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return notices.Flush(c.Root().ErrWriter)
		},
	}

	tuiCmd := NewTuiCmd(flags)

	app = NewInfoCmd(flags).Register(app)
	app = NewProjectCmd(flags).Register(app)
	app = NewPlotCmd(flags).Register(app)
	app = NewDoctorCmd(flags).Register(app)
	app = NewConfigValidateCmd(flags).Register(app)
	app = NewRecentCmd(flags).Register(app)

	// Register TUI flags on root command
	app.Flags = append(app.Flags, tuiCmd.Flags()...)

	// The TUI is the default action; a lone argument is the file to open.
	app.Action = tuiCmd.Run
	app.ShellComplete = CSVFileCompleter(flags)

	return app
}
