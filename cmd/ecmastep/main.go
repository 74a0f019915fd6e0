package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/ecmastep/config"
	"github.com/timewinder-dev/ecmastep/logging"
)

var (
	logLevel   string
	configPath string
	cfg        = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "ecmastep",
	Short: "Run and step through ECMAScript 5 programs",
	Long: "ecmastep interprets ECMAScript 5 programs one statement at a time. " +
		"Programs can be run to completion, stepped through in an interactive debugger, " +
		"or traced state by state.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

		if configPath != "" {
			c, err := config.LoadFromFile(configPath)
			if err != nil {
				return fmt.Errorf("couldn't load config: %w", err)
			}
			cfg = c
		}
		lvl := cfg.Log.Level
		if cmd.Flags().Changed("log-level") {
			lvl = logLevel
		}
		level, err := zerolog.ParseLevel(lvl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid log level '%s', using 'info'\n", lvl)
			level = zerolog.InfoLevel
		}
		zerolog.SetGlobalLevel(level)
		logging.Set(log.Logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Set log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Load engine settings from a TOML or YAML file")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(traceCmd)
}

// scriptPath is the file named on the command line, or the script of the
// loaded config.
func scriptPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Script.File != "" {
		return cfg.Script.File, nil
	}
	return "", fmt.Errorf("no script given and no config with a script")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
