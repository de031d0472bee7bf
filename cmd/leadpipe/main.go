// Package main is the leadpipe CLI: the HTTP API, the research worker and
// schema migrations share one binary and one configuration.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/xavierca1/lead-pipeline/internal/config"
	"github.com/xavierca1/lead-pipeline/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// appConfig is populated before any subcommand runs.
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "leadpipe",
	Short: "Sales lead pipeline with background company research",
	Long: `leadpipe stores sales leads per user, researches each new lead's company
through an AI gateway and streams change signals to connected dashboards.

Run "serve" for the API, "worker" to consume research tasks from RabbitMQ
and "migrate" to create or update the database schema.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional
		_ = godotenv.Load()

		s, err := secrets.Load(secrets.DefaultDir)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}

		cfgFile, _ := cmd.Root().PersistentFlags().GetString("config")
		v, err := config.New(cfgFile)
		if err != nil {
			return err
		}
		if used := v.ConfigFileUsed(); used != "" {
			fmt.Fprintln(os.Stderr, "Using config file:", used)
		}

		cfg, err := config.Load(v, s)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		appConfig = cfg
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of leadpipe",
	// version needs no configuration
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("leadpipe %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./leadpipe.yaml)")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
