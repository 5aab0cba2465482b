package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/keyscope/internal/core/validate"
	"github.com/colonyops/keyscope/internal/keyscope"
	"github.com/colonyops/keyscope/internal/printer"
)

type ExportCmd struct {
	flags *Flags
	app   *keyscope.App

	// flags
	out      string
	toStdout bool
}

// NewExportCmd creates a new export command
func NewExportCmd(flags *Flags, app *keyscope.App) *ExportCmd {
	return &ExportCmd{flags: flags, app: app}
}

// Register adds the export command to the application
func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export",
		Usage:     "Write keys out as JSON documents",
		UsageText: "keyscope export [pattern] [--out dir] [--stdout <key>]",
		Description: `Exports every key matching the pattern (default *) as a
<sanitized-key>.json document the import command reads back. Keys whose
names sanitize to the same filename overwrite each other; the last one
exported wins.

With --stdout the argument is a single key and its document goes to
stdout instead of a file.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "out",
				Usage:       "directory to write documents into (default: export.dir from config)",
				Destination: &cmd.out,
			},
			&cli.BoolFlag{
				Name:        "stdout",
				Usage:       "write a single key's document to stdout",
				Destination: &cmd.toStdout,
			},
		},
		ShellComplete: KeyNameCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *ExportCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.toStdout {
		key := c.Args().First()
		if err := validate.KeyName(key); err != nil {
			return err
		}
		doc, err := cmd.app.Codec.Export(ctx, key)
		if err != nil {
			return fmt.Errorf("export %q: %w", key, err)
		}
		return writeDocument(c.Root().Writer, os.Stderr, doc)
	}

	pattern := c.Args().First()
	if pattern == "" {
		pattern = "*"
	}

	dir := cmd.out
	if dir == "" {
		dir = cmd.flags.Config.Export.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	p := printer.Ctx(ctx)

	var exported, failed int
	for meta, err := range cmd.app.Enumerator.Enumerate(ctx, pattern) {
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}

		if err := cmd.exportOne(ctx, dir, meta.Key); err != nil {
			p.Warnf("Skipped %q: %v", meta.Key, err)
			failed++
			continue
		}
		exported++
	}

	if exported == 0 && failed == 0 {
		p.Infof("No keys match %q", pattern)
		return nil
	}
	if failed > 0 {
		p.Errorf("Exported %d keys to %s, %d failed", exported, dir, failed)
		return cli.Exit("", 1)
	}
	p.Successf("Exported %d keys to %s", exported, dir)
	return nil
}

func (cmd *ExportCmd) exportOne(ctx context.Context, dir, key string) error {
	doc, err := cmd.app.Codec.Export(ctx, key)
	if err != nil {
		return err
	}
	data, err := doc.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, sanitizeFilename(key)+".json"), data, 0o644)
}

// sanitizeFilename maps a key name onto a flat filename, replacing anything
// outside [a-zA-Z0-9._-]. Distinct keys can collide after sanitizing.
func sanitizeFilename(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
