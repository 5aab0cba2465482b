package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/keyscope/internal/core/validate"
	"github.com/colonyops/keyscope/internal/keyscope"
	"github.com/colonyops/keyscope/internal/printer"
)

type TTLCmd struct {
	flags *Flags
	app   *keyscope.App
}

// NewTTLCmd creates a new ttl command
func NewTTLCmd(flags *Flags, app *keyscope.App) *TTLCmd {
	return &TTLCmd{flags: flags, app: app}
}

// Register adds the ttl command to the application
func (cmd *TTLCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ttl",
		Usage:     "Show, set, or clear a key's expiry",
		UsageText: "keyscope ttl <key> [duration|none]",
		Description: `With only a key, prints the remaining time to live, or "none" when the
key has no expiry. With a duration (90s, 5m, 1h30m) sets the expiry,
and with the literal "none" clears it.`,
		ShellComplete: KeyNameCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *TTLCmd) run(ctx context.Context, c *cli.Command) error {
	key := c.Args().First()
	if err := validate.KeyName(key); err != nil {
		return err
	}

	if c.Args().Len() < 2 {
		return cmd.show(ctx, c, key)
	}

	arg := c.Args().Get(1)
	if err := validate.TTLString(arg); err != nil {
		return err
	}

	p := printer.Ctx(ctx)

	if arg == "none" {
		cleared, err := cmd.app.Store.Persist(ctx, key)
		if err != nil {
			return fmt.Errorf("ttl %q: %w", key, err)
		}
		if cleared {
			p.Successf("Cleared expiry on %q", key)
		} else {
			p.Infof("%q has no expiry to clear", key)
		}
		return nil
	}

	d, err := time.ParseDuration(arg)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", arg, err)
	}

	set, err := cmd.app.Store.Expire(ctx, key, d)
	if err != nil {
		return fmt.Errorf("ttl %q: %w", key, err)
	}
	if !set {
		p.Errorf("%q does not exist", key)
		return cli.Exit("", 1)
	}
	p.Successf("%q expires in %s", key, d)
	return nil
}

func (cmd *TTLCmd) show(ctx context.Context, c *cli.Command, key string) error {
	ttl, ok, err := cmd.app.Store.TTL(ctx, key)
	if err != nil {
		return fmt.Errorf("ttl %q: %w", key, err)
	}

	out := c.Root().Writer
	if !ok {
		_, err = fmt.Fprintln(out, "none")
		return err
	}
	_, err = fmt.Fprintln(out, ttl.Round(time.Second))
	return err
}
