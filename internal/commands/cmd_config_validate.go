package commands

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/keyscope/internal/core/config"
	"github.com/colonyops/keyscope/internal/printer"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// validationError is one entry of config validate --format json.
type validationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "keyscope config validate [options]",
				Description: "Validates the configuration file, checking values, durations, and file paths.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	// Startup skips the usual config load for this command so a broken file
	// still produces a report here instead of failing before it runs.
	cfg, err := config.Load(cmd.flags.ConfigPath, cmd.flags.DataDir)

	var warnings []config.ValidationWarning
	if err == nil {
		err = cfg.ValidateDeep(cmd.flags.ConfigPath)
		warnings = cfg.Warnings()
	}

	if cmd.format == "json" {
		return cmd.outputJSON(c, err, warnings)
	}

	return cmd.outputText(printer.Ctx(ctx), err, warnings)
}

func (cmd *ConfigValidateCmd) outputJSON(c *cli.Command, verr error, warnings []config.ValidationWarning) error {
	out := struct {
		Valid    bool                       `json:"valid"`
		Errors   []validationError          `json:"errors,omitempty"`
		Warnings []config.ValidationWarning `json:"warnings,omitempty"`
	}{
		Valid:    verr == nil,
		Errors:   toValidationErrors(verr),
		Warnings: warnings,
	}

	enc := json.NewEncoder(c.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (cmd *ConfigValidateCmd) outputText(p *printer.Printer, verr error, warnings []config.ValidationWarning) error {
	if len(warnings) > 0 {
		p.Section("Warnings")
		for _, warn := range warnings {
			label := warn.Category
			if warn.Item != "" {
				label += "." + warn.Item
			}
			p.WarnItem(label, warn.Message)
		}
		p.Printf("")
	}

	if verr != nil {
		p.FatalError(verr)
		return cli.Exit("", 1)
	}

	p.Successf("Configuration is valid")
	return nil
}

// toValidationErrors flattens a validation failure into report entries,
// one per field when field detail is available.
func toValidationErrors(err error) []validationError {
	if err == nil {
		return nil
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		out := make([]validationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, validationError{Field: fe.Field, Message: fe.Err.Error()})
		}
		return out
	}

	return []validationError{{Message: err.Error()}}
}
