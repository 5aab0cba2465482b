package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/keyscope/internal/keyscope"
	"github.com/colonyops/keyscope/pkg/iojson"
)

type GrepCmd struct {
	flags *Flags
	app   *keyscope.App

	// flags
	jsonOutput bool
	limit      int64
}

// NewGrepCmd creates a new grep command
func NewGrepCmd(flags *Flags, app *keyscope.App) *GrepCmd {
	return &GrepCmd{flags: flags, app: app}
}

// Register adds the grep command to the application
func (cmd *GrepCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "grep",
		Usage:     "Find keys whose values contain text",
		UsageText: "keyscope grep <text> [--limit n] [--json]",
		Description: `Scans the whole keyspace and reports every key whose value contains the
given text, case-insensitively. Strings match on the full value, hashes on
field names and values, lists and sorted sets on their leading elements,
sets on all members. Streams never match.

The search is streamed: with --limit the walk stops as soon as enough
matches are found.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.Int64Flag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "stop after this many matches (0 = unlimited)",
				Destination: &cmd.limit,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *GrepCmd) run(ctx context.Context, c *cli.Command) error {
	text := c.Args().First()
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text argument is required")
	}

	out := c.Root().Writer

	var w *tabwriter.Writer
	if !cmd.jsonOutput {
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "KEY\tTYPE\tTTL\tSIZE")
	}

	var matched int64
	for meta, err := range cmd.app.Searcher.Search(ctx, text) {
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		if cmd.jsonOutput {
			if werr := iojson.WriteLine(out, newKeyInfo(meta)); werr != nil {
				return fmt.Errorf("encode key: %w", werr)
			}
		} else {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", meta.Key, meta.Type, formatTTL(meta.TTL), meta.Size)
		}

		matched++
		if cmd.limit > 0 && matched >= cmd.limit {
			break
		}
	}

	if cmd.jsonOutput {
		return nil
	}

	if matched == 0 {
		fmt.Fprintf(os.Stderr, "No matches for %q\n", text)
		return nil
	}

	return w.Flush()
}
