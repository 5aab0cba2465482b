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

type SetCmd struct {
	flags *Flags
	app   *keyscope.App

	// flags
	field  string
	member string
	score  float64
	add    bool
	push   bool
	index  int64
	ttl    string
}

// NewSetCmd creates a new set command
func NewSetCmd(flags *Flags, app *keyscope.App) *SetCmd {
	return &SetCmd{flags: flags, app: app}
}

// Register adds the set command to the application
func (cmd *SetCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "set",
		Usage:     "Write a value into a key",
		UsageText: "keyscope set <key> [value] [--field f | --member m --score s | --add | --push | --index i] [--ttl d]",
		Description: `Without a mode flag, writes the value as a plain string, replacing
whatever the key held. The mode flags write a single element instead:

   --field f            set one hash field to the value
   --member m --score s  add or rescore one sorted-set member
   --add                add the value as a set member
   --push               append the value to a list
   --index i            overwrite the list element at index i

Element writes require the key, if it exists, to already hold the
matching type.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "field",
				Usage:       "hash field to set",
				Destination: &cmd.field,
			},
			&cli.StringFlag{
				Name:        "member",
				Usage:       "sorted-set member to add or rescore",
				Destination: &cmd.member,
			},
			&cli.Float64Flag{
				Name:        "score",
				Usage:       "score for --member",
				Destination: &cmd.score,
			},
			&cli.BoolFlag{
				Name:        "add",
				Usage:       "add the value as a set member",
				Destination: &cmd.add,
			},
			&cli.BoolFlag{
				Name:        "push",
				Usage:       "append the value to a list",
				Destination: &cmd.push,
			},
			&cli.Int64Flag{
				Name:        "index",
				Usage:       "list index to overwrite",
				Destination: &cmd.index,
			},
			&cli.StringFlag{
				Name:        "ttl",
				Usage:       "expiry to apply after the write (e.g. 90s, 5m, or none)",
				Destination: &cmd.ttl,
			},
		},
		ShellComplete: KeyNameCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *SetCmd) run(ctx context.Context, c *cli.Command) error {
	key := c.Args().First()
	if err := validate.KeyName(key); err != nil {
		return err
	}

	zset := cmd.member != "" || c.IsSet("score")
	modes := 0
	for _, on := range []bool{cmd.field != "", zset, cmd.add, cmd.push, c.IsSet("index")} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return fmt.Errorf("choose at most one of --field, --member/--score, --add, --push, --index")
	}

	switch {
	case zset && cmd.member == "":
		return fmt.Errorf("--member is required with --score")
	case zset && !c.IsSet("score"):
		return fmt.Errorf("--score is required with --member")
	case !zset && c.Args().Len() < 2:
		return fmt.Errorf("key and value arguments are required")
	}
	value := c.Args().Get(1)

	// Reject a bad TTL before touching the store.
	if cmd.ttl != "" {
		if err := validate.TTLString(cmd.ttl); err != nil {
			return err
		}
	}

	var (
		err  error
		what string
	)
	switch {
	case cmd.field != "":
		err = cmd.app.Adapter.SetHashField(ctx, key, cmd.field, value)
		what = fmt.Sprintf("Set field %q of hash %q", cmd.field, key)
	case zset:
		err = cmd.app.Adapter.AddZSetMember(ctx, key, cmd.member, cmd.score)
		what = fmt.Sprintf("Added %q to sorted set %q with score %g", cmd.member, key, cmd.score)
	case cmd.add:
		err = cmd.app.Adapter.AddSetMember(ctx, key, value)
		what = fmt.Sprintf("Added %q to set %q", value, key)
	case cmd.push:
		err = cmd.app.Adapter.PushListItem(ctx, key, value)
		what = fmt.Sprintf("Pushed %q onto list %q", value, key)
	case c.IsSet("index"):
		err = cmd.app.Adapter.SetListItem(ctx, key, cmd.index, value)
		what = fmt.Sprintf("Set index %d of list %q", cmd.index, key)
	default:
		err = cmd.app.Adapter.SetString(ctx, key, value)
		what = fmt.Sprintf("Set %q", key)
	}
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}

	if cmd.ttl != "" {
		if err := cmd.applyTTL(ctx, key); err != nil {
			return err
		}
	}

	printer.Ctx(ctx).Successf("%s", what)
	return nil
}

func (cmd *SetCmd) applyTTL(ctx context.Context, key string) error {
	if cmd.ttl == "none" {
		if _, err := cmd.app.Store.Persist(ctx, key); err != nil {
			return fmt.Errorf("clear ttl on %q: %w", key, err)
		}
		return nil
	}

	d, err := time.ParseDuration(cmd.ttl)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", cmd.ttl, err)
	}
	if _, err := cmd.app.Store.Expire(ctx, key, d); err != nil {
		return fmt.Errorf("set ttl on %q: %w", key, err)
	}
	return nil
}
