package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/keyscope/internal/core/keyspace"
	"github.com/colonyops/keyscope/internal/core/logging"
	"github.com/colonyops/keyscope/internal/data/watchdir"
	"github.com/colonyops/keyscope/internal/keyscope"
	"github.com/colonyops/keyscope/internal/printer"
	"github.com/colonyops/keyscope/internal/profiler"
	"github.com/colonyops/keyscope/pkg/iojson"
)

type ImportCmd struct {
	flags     *Flags
	app       *keyscope.App
	docReader iojson.FileReader[keyspace.Document]

	// flags
	watch        string
	jsonOutput   bool
	profilerPort int
}

// importResult is the JSON output format for keyscope import --json.
type importResult struct {
	File   string `json:"file,omitempty"`
	Key    string `json:"key"`
	Status string `json:"status"`
}

// NewImportCmd creates a new import command
func NewImportCmd(flags *Flags, app *keyscope.App) *ImportCmd {
	return &ImportCmd{flags: flags, app: app}
}

// Register adds the import command to the application
func (cmd *ImportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "import",
		Usage:     "Recreate keys from JSON documents",
		UsageText: "keyscope import [path|glob]... [-f file] [--watch dir] [--json]",
		Description: `Reads documents produced by keyscope export (or get) and recreates
their keys, replacing any existing key of the same name outright.

With no arguments a single document is read from stdin or the -f file.
Path arguments may use glob patterns, ** included. With --watch the
directory is watched and every JSON file that settles there is
imported as it arrives; stop with ctrl-c.

A malformed document fails that document only, never the batch.`,
		Flags: []cli.Flag{
			cmd.docReader.Flag(),
			&cli.StringFlag{
				Name:        "watch",
				Usage:       "watch a directory and import documents as they appear",
				Destination: &cmd.watch,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "report results as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.IntFlag{
				Name:        "profiler-port",
				Usage:       "enable pprof HTTP endpoint on specified port while watching (e.g., 6060)",
				Sources:     cli.EnvVars("KEYSCOPE_PROFILER_PORT"),
				Destination: &cmd.profilerPort,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ImportCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.watch != "" {
		return cmd.runWatch(ctx, c)
	}

	if c.Args().Len() == 0 {
		return cmd.runSingle(ctx, c)
	}

	paths, err := expandArgs(c.Args().Slice())
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files match the given paths")
	}

	var imported, failed int
	for _, path := range paths {
		key, err := cmd.importFile(ctx, path)
		cmd.report(ctx, c, path, key, err)
		if err != nil {
			failed++
			continue
		}
		imported++
	}

	p := printer.Ctx(ctx)
	if failed > 0 {
		p.Errorf("Imported %d documents, %d failed", imported, failed)
		return cli.Exit("", 1)
	}
	p.Successf("Imported %d documents", imported)
	return nil
}

// runSingle imports one document from stdin or the -f file.
func (cmd *ImportCmd) runSingle(ctx context.Context, c *cli.Command) error {
	path := c.String("file")
	if path == "" {
		path = "stdin"
	}

	doc, err := cmd.docReader.Read()
	if err != nil {
		return err
	}

	_, err = cmd.app.Codec.Import(ctx, doc)
	cmd.report(ctx, c, path, doc.Key, err)
	if err != nil {
		return cli.Exit("", 1)
	}
	return nil
}

// runWatch imports documents from a hot folder until the context ends.
func (cmd *ImportCmd) runWatch(ctx context.Context, c *cli.Command) error {
	// Start profiler server if enabled
	if cmd.profilerPort > 0 {
		profServer := profiler.New(cmd.profilerPort)
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				log := logging.Component("import")
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
	}

	w, err := watchdir.New(cmd.watch, cmd.flags.Config.ImportDebounce())
	if err != nil {
		return fmt.Errorf("watch %q: %w", cmd.watch, err)
	}
	go func() {
		<-ctx.Done()
		_ = w.Close()
	}()

	log := logging.Component("import")
	printer.Ctx(ctx).Infof("Watching %s for JSON documents (ctrl-c to stop)", cmd.watch)

	for ev := range w.Events() {
		if ctx.Err() != nil {
			break
		}
		if _, err := os.Stat(ev.Path); err != nil {
			// Settled, then vanished before we got to it.
			continue
		}

		key, err := cmd.importFile(ctx, ev.Path)
		cmd.report(ctx, c, ev.Path, key, err)
		if err != nil {
			log.Warn().Err(err).Str("path", ev.Path).Msg("import failed")
			continue
		}
		log.Info().Str("path", ev.Path).Str("key", key).Msg("imported document")
	}
	return nil
}

func (cmd *ImportCmd) importFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	doc, err := keyspace.DecodeDocument(data)
	if err != nil {
		return "", err
	}
	if _, err := cmd.app.Codec.Import(ctx, doc); err != nil {
		return doc.Key, err
	}
	return doc.Key, nil
}

func (cmd *ImportCmd) report(ctx context.Context, c *cli.Command, path, key string, err error) {
	if cmd.jsonOutput {
		out := c.Root().Writer
		if err != nil {
			_ = iojson.WriteLine(out, iojson.Error{
				Message: err.Error(),
				Data:    map[string]any{"file": path},
			})
			return
		}
		_ = iojson.WriteLine(out, importResult{File: path, Key: key, Status: "ok"})
		return
	}

	p := printer.Ctx(ctx)
	if err != nil {
		p.FailItem(path, err.Error())
		return
	}
	p.CheckItem(path, key)
}

// expandArgs resolves glob patterns to concrete paths and passes plain
// paths through untouched, missing or not.
func expandArgs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			paths = append(paths, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}
