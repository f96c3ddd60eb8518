package commands

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tabula/internal/tui"
	"github.com/colonyops/tabula/pkg/profiler"
)

type TuiCmd struct {
	flags *Flags
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{flags: flags}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
			Sources:     cli.EnvVars("TABULA_PROFILER_PORT"),
			Destination: &cmd.flags.ProfilerPort,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() > 1 {
		return fmt.Errorf("expected at most one file, got %d", c.Args().Len())
	}
	path := c.Args().First()
	if path == stdinName {
		return fmt.Errorf("the editor cannot read CSV from stdin; pass a file, or use 'tabula info -' for piped input")
	}
	return cmd.run(ctx, path)
}

func (cmd *TuiCmd) run(ctx context.Context, path string) error {
	cfg, err := cmd.flags.ValidConfig()
	if err != nil {
		return err
	}

	if cmd.flags.ProfilerPort > 0 {
		profServer := profiler.New(cmd.flags.ProfilerPort)
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		log.Info().
			Str("url", fmt.Sprintf("http://%s/debug/pprof/", profServer.Addr())).
			Msg("profiler endpoint available")
	}

	opts := tui.Options{Path: path, Context: ctx}
	if cfg.Open.Recent > 0 {
		opts.Recent = cmd.flags.RecentStore()
	}

	m := tui.New(cfg, opts)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	if fm, ok := final.(tui.Model); ok {
		st := fm.Session().Stats()
		log.Debug().Stringer("state", st.State).Str("source", st.Source).Bool("changed", st.Changed).Msg("tui exited")
	}
	return nil
}
