// Command docgen generates CLI reference documentation from the keyscope
// command definitions. Output is written to docs/cli-reference.md.
package main

import (
	"fmt"
	"os"

	docs "github.com/urfave/cli-docs/v3"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/keyscope/internal/commands"
	"github.com/colonyops/keyscope/internal/keyscope"
)

func main() {
	flags := &commands.Flags{}
	app := &keyscope.App{}

	root := &cli.Command{
		Name:      "keyscope",
		Usage:     "Inspect and edit a typed key-value store",
		UsageText: "keyscope [global options] command [command options]",
		Description: `Keyscope is a workbench for a typed key-value store: strings, lists,
sets, sorted sets, hashes and streams behind one uniform key surface.

List and search keys, read and write values of any type, manage expiry,
and move data in and out as JSON documents.

Run 'keyscope ls' to see what is in the store.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("KEYSCOPE_LOG_LEVEL"),
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "path to log file",
				Sources: cli.EnvVars("KEYSCOPE_LOG_FILE"),
				Value:   commands.DefaultLogFile(),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Sources: cli.EnvVars("KEYSCOPE_CONFIG"),
				Value:   commands.DefaultConfigPath(),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "path to data directory",
				Sources: cli.EnvVars("KEYSCOPE_DATA_DIR"),
				Value:   commands.DefaultDataDir(),
			},
		},
	}

	root = commands.NewLsCmd(flags, app).Register(root)
	root = commands.NewGrepCmd(flags, app).Register(root)
	root = commands.NewGetCmd(flags, app).Register(root)
	root = commands.NewSetCmd(flags, app).Register(root)
	root = commands.NewRmCmd(flags, app).Register(root)
	root = commands.NewTTLCmd(flags, app).Register(root)
	root = commands.NewCpCmd(flags, app).Register(root)
	root = commands.NewExportCmd(flags, app).Register(root)
	root = commands.NewImportCmd(flags, app).Register(root)
	root = commands.NewConfigValidateCmd(flags).Register(root)

	md, err := docs.ToMarkdown(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating docs: %v\n", err)
		os.Exit(1)
	}

	outPath := "docs/cli-reference.md"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.WriteFile(outPath, []byte(md), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outPath)
}
