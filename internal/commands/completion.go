package commands

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tabula/internal/core/config"
)

// maxCompletions caps the number of suggested files.
const maxCompletions = 200

// CSVFileCompleter returns a ShellCompleteFunc that suggests files matching
// the configured open patterns as positional completions.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func CSVFileCompleter(flags *Flags) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		patterns := config.DefaultConfig().Open.Patterns
		if flags.Config != nil {
			patterns = flags.Config.Open.Patterns
		}

		w := cmd.Root().Writer
		for _, f := range matchFiles(patterns) {
			_, _ = fmt.Fprintln(w, f)
		}
	}
}

func matchFiles(patterns []string) []string {
	fsys := os.DirFS(".")
	var out []string
	for _, p := range patterns {
		matches, err := doublestar.Glob(fsys, p, doublestar.WithFilesOnly())
		if err != nil {
			continue
		}
		out = append(out, matches...)
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) > maxCompletions {
		out = out[:maxCompletions]
	}
	return out
}
