package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/keyscope/internal/core/validate"
	"github.com/colonyops/keyscope/internal/keyscope"
	"github.com/colonyops/keyscope/internal/printer"
	"github.com/colonyops/keyscope/pkg/randid"
)

type CpCmd struct {
	flags *Flags
	app   *keyscope.App
}

// NewCpCmd creates a new cp command
func NewCpCmd(flags *Flags, app *keyscope.App) *CpCmd {
	return &CpCmd{flags: flags, app: app}
}

// Register adds the cp command to the application
func (cmd *CpCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "cp",
		Usage:     "Duplicate a key, value, type and ttl included",
		UsageText: "keyscope cp <src> [dst]",
		Description: `Copies src to dst, preserving the value, its type, and any remaining
expiry. When dst is omitted a name is generated from src, and the
chosen name is printed to stdout so scripts can capture it.

The copy is not atomic with respect to other writers.`,
		ShellComplete: KeyNameCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *CpCmd) run(ctx context.Context, c *cli.Command) error {
	src := c.Args().First()
	if err := validate.KeyName(src); err != nil {
		return err
	}

	dst := c.Args().Get(1)
	if dst == "" {
		dst = fmt.Sprintf("%s.copy.%s", src, randid.Generate(4))
	} else if err := validate.KeyName(dst); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if src == dst {
		return fmt.Errorf("source and destination are the same key")
	}

	copied, err := cmd.app.Duplicator.Duplicate(ctx, src, dst)
	if err != nil {
		return fmt.Errorf("cp %q: %w", src, err)
	}
	if !copied {
		printer.Ctx(ctx).Errorf("%q does not exist or cannot be copied", src)
		return cli.Exit("", 1)
	}

	printer.Ctx(ctx).Successf("Copied %q to %q", src, dst)
	_, err = fmt.Fprintln(c.Root().Writer, dst)
	return err
}
