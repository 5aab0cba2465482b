package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/keyscope/internal/core/keyspace"
	"github.com/colonyops/keyscope/internal/core/validate"
	"github.com/colonyops/keyscope/internal/keyscope"
	"github.com/colonyops/keyscope/internal/printer/jsoncolor"
	"github.com/colonyops/keyscope/pkg/iojson"
)

type GetCmd struct {
	flags *Flags
	app   *keyscope.App
}

// NewGetCmd creates a new get command
func NewGetCmd(flags *Flags, app *keyscope.App) *GetCmd {
	return &GetCmd{flags: flags, app: app}
}

// Register adds the get command to the application
func (cmd *GetCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "get",
		Usage:     "Read a key's full value as a JSON document",
		UsageText: "keyscope get <key>",
		Description: `Reads the key's value regardless of its type and prints it as a
self-describing JSON document: strings as a JSON string, lists as an
array, sets as a sorted array, sorted sets as score-ordered
member/score pairs, hashes as an object. The document carries the key
name, its type, and the remaining ttl, so it round-trips through
keyscope import unchanged.`,
		ShellComplete: KeyNameCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *GetCmd) run(ctx context.Context, c *cli.Command) error {
	key := c.Args().First()
	if err := validate.KeyName(key); err != nil {
		return err
	}

	doc, err := cmd.app.Codec.Export(ctx, key)
	if err != nil {
		return fmt.Errorf("get %q: %w", key, err)
	}

	return writeDocument(c.Root().Writer, os.Stderr, doc)
}

// writeDocument prints a document as indented JSON, syntax-colored when
// the destination is a terminal. Shared with export --stdout.
func writeDocument(w, ew io.Writer, doc keyspace.Document) error {
	if jsoncolor.Enabled(w) {
		data, err := doc.Encode()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, jsoncolor.Colorize(data))
		return err
	}
	return iojson.WriteWith(w, ew, doc)
}
