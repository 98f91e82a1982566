package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/cognicore/tildb/internal/logging"
	"github.com/cognicore/tildb/pkg/tildb"
	"github.com/cognicore/tildb/pkg/tildb/config"
)

type rootOptions struct {
	configPath string
	inputDir   string
	dbPath     string
	pattern    string
	separator  string
	logLevel   string
	logFormat  string
}

// newRootCmd builds the tildb command. Logs go to out.
func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "tildb",
		Short: "Rebuild a SQLite database of notes from markdown files",
		Long: `tildb reads every markdown note (YAML front matter plus body) from the
input directory and writes them into a freshly recreated SQLite database
with notes, tags and their associations.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}

			logger := logging.New(out, cfg.LogLevel, cfg.LogFormat)
			report, err := tildb.Run(cmd.Context(), cfg, logger)
			if err != nil {
				logger.Error("ingestion aborted", "run", report.RunID, "error", err)
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "tildb.yaml", "Optional YAML config file")
	flags.StringVarP(&opts.inputDir, "input", "i", defaults.InputDir, "Directory containing markdown notes")
	flags.StringVar(&opts.dbPath, "db", defaults.DBPath, "SQLite database file to recreate")
	flags.StringVar(&opts.pattern, "pattern", defaults.Pattern, "Glob selecting note files inside the input directory")
	flags.StringVar(&opts.separator, "separator", defaults.Separator, "Slug word separator")
	flags.StringVar(&opts.logLevel, "log-level", defaults.LogLevel, "Log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", defaults.LogFormat, "Log format: text or json")

	return cmd
}

// resolve loads the config file (if any) and applies explicitly set flags
// on top of it.
func (o *rootOptions) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.LoadOptional(o.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, val string) {
		if flags.Changed(name) {
			*dst = val
		}
	}
	override("input", &cfg.InputDir, o.inputDir)
	override("db", &cfg.DBPath, o.dbPath)
	override("pattern", &cfg.Pattern, o.pattern)
	override("separator", &cfg.Separator, o.separator)
	override("log-level", &cfg.LogLevel, o.logLevel)
	override("log-format", &cfg.LogFormat, o.logFormat)

	return cfg, cfg.Validate()
}
