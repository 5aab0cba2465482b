package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/keyscope/internal/keyscope"
)

// completionScanCount caps how many keys one completion request loads.
const completionScanCount = 200

// KeyNameCompleter returns a ShellCompleteFunc that suggests stored key
// names as positional completions. Set this as the ShellComplete field on
// any cli.Command that accepts key names as arguments.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func KeyNameCompleter(app *keyscope.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		// Delegate to default flag completion when typing a flag
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		if app.Store == nil {
			return
		}

		keys, _, err := app.Store.Scan(ctx, "", "*", completionScanCount)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, key := range keys {
			_, _ = fmt.Fprintln(w, key)
		}
	}
}
