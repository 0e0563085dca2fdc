package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	annocat "github.com/goliatone/go-annocat"
	catalogcmd "github.com/goliatone/go-annocat/internal/commands/catalog"
	"github.com/goliatone/go-annocat/internal/configfile"
)

const defaultConfigFile = "annocat.yml"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "annocat",
	Short: "Build a normalized annotation reference catalog from Markdown notes",
	Long: `annocat walks a directory of Markdown annotation notes, extracts
name/description/example entries, merges duplicates across files, and renders
a static reference site plus a machine-readable JSON catalog.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to annocat.yml (defaults to ./annocat.yml when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// loadConfig layers the config file over defaults. A missing default file is
// fine; a missing explicit --config path is an error.
func loadConfig() (annocat.Config, error) {
	path := configPath
	explicit := path != ""
	if !explicit {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	cfg, err := configfile.Load(path)
	if err != nil {
		if !explicit && errors.Is(err, configfile.ErrConfigNotFound) {
			err = nil
		} else {
			return cfg, err
		}
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

type cliModule struct {
	module *annocat.Module
	cfg    annocat.Config
}

func newModule(opts ...catalogcmd.Option) (*cliModule, *catalogcmd.HandlerSet, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	module, err := annocat.New(cfg)
	if err != nil {
		return nil, nil, err
	}

	set, err := module.RegisterCommands(nil, opts...)
	if err != nil {
		module.Close()
		return nil, nil, err
	}
	return &cliModule{module: module, cfg: cfg}, set, nil
}

func (m *cliModule) Close() {
	if m != nil && m.module != nil {
		m.module.Close()
	}
}

func noteDirectory(args []string, cfg annocat.Config) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return cfg.Notes.ContentDir
}
