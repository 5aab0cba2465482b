package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/keyscope/internal/core/keyspace"
	"github.com/colonyops/keyscope/internal/keyscope"
	"github.com/colonyops/keyscope/internal/printer"
)

type RmCmd struct {
	flags *Flags
	app   *keyscope.App

	// flags
	field  string
	member string
	value  string
}

// NewRmCmd creates a new rm command
func NewRmCmd(flags *Flags, app *keyscope.App) *RmCmd {
	return &RmCmd{flags: flags, app: app}
}

// Register adds the rm command to the application
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rm",
		Usage:     "Delete keys or remove single elements",
		UsageText: "keyscope rm <key>... [--field f | --member m | --value v]",
		Description: `Without flags, deletes every named key. Keys that do not exist are
reported and skipped without failing the command.

With a flag, removes one element from a single key instead of the key
itself:

   --field f    delete one hash field
   --member m   remove a member from a set or sorted set
   --value v    remove every occurrence of a value from a list`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "field",
				Usage:       "hash field to delete",
				Destination: &cmd.field,
			},
			&cli.StringFlag{
				Name:        "member",
				Usage:       "set or sorted-set member to remove",
				Destination: &cmd.member,
			},
			&cli.StringFlag{
				Name:        "value",
				Usage:       "list value to remove",
				Destination: &cmd.value,
			},
		},
		ShellComplete: KeyNameCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *RmCmd) run(ctx context.Context, c *cli.Command) error {
	keys := c.Args().Slice()
	if len(keys) == 0 {
		return fmt.Errorf("at least one key is required")
	}

	modes := 0
	for _, on := range []bool{cmd.field != "", cmd.member != "", cmd.value != ""} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return fmt.Errorf("choose at most one of --field, --member, --value")
	}

	if modes == 1 {
		if len(keys) != 1 {
			return fmt.Errorf("element removal takes exactly one key")
		}
		return cmd.removeElement(ctx, keys[0])
	}

	p := printer.Ctx(ctx)
	for _, key := range keys {
		ok, err := cmd.app.Store.Delete(ctx, key)
		if err != nil {
			return fmt.Errorf("rm %q: %w", key, err)
		}
		if ok {
			p.Successf("Deleted %q", key)
		} else {
			p.Warnf("%q does not exist", key)
		}
	}
	return nil
}

func (cmd *RmCmd) removeElement(ctx context.Context, key string) error {
	p := printer.Ctx(ctx)

	switch {
	case cmd.field != "":
		if err := cmd.app.Adapter.RemoveHashField(ctx, key, cmd.field); err != nil {
			return fmt.Errorf("rm %q: %w", key, err)
		}
		p.Successf("Removed field %q from hash %q", cmd.field, key)

	case cmd.member != "":
		// Sets and sorted sets share the member vocabulary; dispatch on the
		// declared type.
		t, err := cmd.app.Store.Type(ctx, key)
		if err != nil {
			return fmt.Errorf("rm %q: %w", key, err)
		}
		switch t {
		case keyspace.TypeSet:
			err = cmd.app.Adapter.RemoveSetMember(ctx, key, cmd.member)
		case keyspace.TypeZSet:
			err = cmd.app.Adapter.RemoveZSetMember(ctx, key, cmd.member)
		default:
			return fmt.Errorf("rm %q: key holds a %s, --member needs a set or sorted set: %w", key, t, keyspace.ErrWrongType)
		}
		if err != nil {
			return fmt.Errorf("rm %q: %w", key, err)
		}
		p.Successf("Removed %q from %s %q", cmd.member, t, key)

	case cmd.value != "":
		if err := cmd.app.Adapter.RemoveListItem(ctx, key, cmd.value); err != nil {
			return fmt.Errorf("rm %q: %w", key, err)
		}
		p.Successf("Removed %q from list %q", cmd.value, key)
	}

	return nil
}
