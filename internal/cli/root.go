// Package cli implements the dcmgroup CLI commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rcliao/dcmgroup/internal/config"
	"github.com/rcliao/dcmgroup/internal/store"
	"github.com/spf13/cobra"
)

var (
	dbPath     string
	formatFlag string
	configPath string
	logLevel   string

	cfg = config.Defaults()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "dcmgroup",
	Short: "Group DICOM files into series",
	Long: "Scan DICOM files or tar archives, group them into acquisition series, " +
		"write a per-series summary and hand labeled groups to a converter.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Catalog path (default: $DCMGROUP_DB, config db_path or ~/.dcmgroup/catalog.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $DCMGROUP_CONFIG or ~/.dcmgroup/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
}

func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = os.Getenv("DCMGROUP_CONFIG")
	}
	if path == "" {
		path = filepath.Join(config.Home(), "config.yaml")
	}
	c, err := config.ReadConfig(path)
	if err != nil {
		return err
	}
	cfg = *c

	level := logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("DCMGROUP_DB"); env != "" {
		return env
	}
	return cfg.DBPath
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
