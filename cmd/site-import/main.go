// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the site-import CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultUserAgent = "site-import/0.1"

// logger is configured by the root command before any subcommand runs.
var logger = slog.Default()

// rootCmd is the base command for the site-import CLI.
var rootCmd = &cobra.Command{
	Use:   "site-import",
	Short: "Import WordPress exports and podcast episodes as Markdown",
	Long: `site-import converts WordPress XML exports into Markdown files with YAML
front matter, downloads the uploads they reference and writes redirects from
the old WordPress links. It also imports podcast episodes from an RSS feed
joined with the matching YouTube playlist.

Each run is recorded in a SQLite ledger next to the site resources.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if viper.GetBool("verbose") {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./site-import.yaml or ~/.config/site-import/site-import.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("ledger-dir", "", "ledger directory (default: <resources-dir>/.site-import)")
	rootCmd.PersistentFlags().Bool("no-ledger", false, "do not record the run in the ledger")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of secret files")

	mustBind("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	mustBind("ledger.dir", rootCmd.PersistentFlags().Lookup("ledger-dir"))
	mustBind("ledger.disabled", rootCmd.PersistentFlags().Lookup("no-ledger"))
	mustBind("secrets_dir", rootCmd.PersistentFlags().Lookup("secrets-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("site-import")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "site-import"))
		}
	}

	viper.SetEnvPrefix("SITE_IMPORT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// mustBind binds a flag to a viper key. Flags are declared in init, so a
// missing flag is a programming error.
func mustBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag for %s: %v", key, err))
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
