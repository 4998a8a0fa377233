package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dynform/internal/config"
	"github.com/goliatone/go-dynform/internal/logging"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	schema     string
	schemaKind string
	operation  string
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "dynform",
		Short:         "Schema-driven forms with validation and a confirmation preview",
		Long:          "dynform renders forms described by a JSON or YAML schema (or an OpenAPI request body), validates input per field and asks for confirmation before submitting.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format (text or json)")
	pf.StringVarP(&flags.schema, "schema", "s", "", "schema document path or URL (empty uses the built-in form)")
	pf.StringVar(&flags.schemaKind, "schema-kind", "", "schema kind (document or openapi)")
	pf.StringVar(&flags.operation, "operation", "", "OpenAPI operation id (openapi kind only)")

	root.AddCommand(newServeCommand(flags))
	root.AddCommand(newFillCommand(flags))
	root.AddCommand(newRenderCommand(flags))
	root.AddCommand(newCheckCommand(flags))
	return root
}

// load reads configuration and applies flags the user set explicitly.
func (f *globalFlags) load(cmd *cobra.Command) (config.Config, logging.Logger, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	pf := cmd.Flags()
	if pf.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if pf.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if pf.Changed("schema") {
		cfg.Schema.Source = f.schema
	}
	if pf.Changed("schema-kind") {
		cfg.Schema.Kind = f.schemaKind
	}
	if pf.Changed("operation") {
		cfg.Schema.OperationID = f.operation
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	return cfg, logger, nil
}
