package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/keyscope/internal/commands"
	"github.com/colonyops/keyscope/internal/core/config"
	"github.com/colonyops/keyscope/internal/core/logging"
	"github.com/colonyops/keyscope/internal/data/db"
	"github.com/colonyops/keyscope/internal/data/litestore"
	"github.com/colonyops/keyscope/internal/keyscope"
	"github.com/colonyops/keyscope/internal/keyscope/sweep"
	"github.com/colonyops/keyscope/internal/printer"
	"github.com/colonyops/keyscope/pkg/logutils"
	"github.com/colonyops/keyscope/pkg/randid"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	p := printer.New(os.Stderr)
	ctx := printer.NewContext(context.Background(), p)

	// Ctrl-C cancels the context so long-running commands (import --watch,
	// large exports) can unwind instead of dying mid-write.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		logCloser   func()
		ksApp       = &keyscope.App{}
		database    *db.DB
		store       *litestore.Store
		sweepCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "keyscope",
		Usage:     "Inspect and edit a typed key-value store",
		UsageText: "keyscope [global options] command [command options]",
		Description: `Keyscope is a workbench for a typed key-value store: strings, lists,
sets, sorted sets, hashes and streams behind one uniform key surface.

List and search keys, read and write values of any type, manage expiry,
and move data in and out as JSON documents.

Run 'keyscope ls' to see what is in the store.`,
		Version:               build(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("KEYSCOPE_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Sources:     cli.EnvVars("KEYSCOPE_LOG_FILE"),
				Value:       commands.DefaultLogFile(),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("KEYSCOPE_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("KEYSCOPE_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// The config command group loads config itself so a broken file
			// still produces a validation report instead of failing here.
			if c.Args().First() == "config" {
				return ctx, nil
			}

			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			ctx = logging.WithOpID(ctx, randid.Generate(8))
			ctx = logging.WithStorePath(ctx, cfg.StoreDir())

			database, err = db.Open(cfg.StoreDir())
			if err != nil {
				return ctx, fmt.Errorf("open store: %w", err)
			}
			store = litestore.New(database)

			// Background expiry sweep; interval 0 disables it and leaves
			// expired keys to lazy filtering on read.
			if interval := cfg.SweepInterval(); interval > 0 {
				sweepCtx, cancel := context.WithCancel(context.Background())
				sweepCancel = cancel
				go sweep.Start(sweepCtx, store, interval)
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*ksApp = *keyscope.NewApp(cfg, database, store)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Stop background sweep
			if sweepCancel != nil {
				sweepCancel()
			}

			if store != nil {
				if err := store.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close store")
				}
			}

			// Close database connection
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewLsCmd(flags, ksApp).Register(app)
	app = commands.NewGrepCmd(flags, ksApp).Register(app)
	app = commands.NewGetCmd(flags, ksApp).Register(app)
	app = commands.NewSetCmd(flags, ksApp).Register(app)
	app = commands.NewRmCmd(flags, ksApp).Register(app)
	app = commands.NewTTLCmd(flags, ksApp).Register(app)
	app = commands.NewCpCmd(flags, ksApp).Register(app)
	app = commands.NewExportCmd(flags, ksApp).Register(app)
	app = commands.NewImportCmd(flags, ksApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'keyscope --help' for usage", c.Args().First())
		}
		return cli.ShowSubcommandHelp(c)
	}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		printer.Ctx(ctx).FatalError(err)
		exitCode = 1
	}

	stop()
	os.Exit(exitCode)
}
