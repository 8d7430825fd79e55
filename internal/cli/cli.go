// Package cli implements the framelens command-line interface.
//
// Commands cover the full workflow: compare two capture runs, inspect an
// existing results file interactively, aggregate timing for a single run,
// serve a generated report directory, and manage the score cache and run
// history. All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/framelens/framelens/pkg/buildinfo"
	"github.com/framelens/framelens/pkg/cache"
	"github.com/framelens/framelens/pkg/history"
)

const (
	// appName is the application name used for directories and display.
	appName = "framelens"

	// configFileName is looked up in the working directory, then the home
	// directory.
	configFileName = ".framelens.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger and the on-disk
// configuration, if any.
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{Logger: newLogger(w, level)}
	cfg, err := LoadConfig("")
	if err != nil {
		c.Logger.Warnf("ignoring config: %v", err)
	} else {
		c.Config = cfg
	}
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "framelens",
		Short:        "Framelens compares rendered frame captures across runs",
		Long:         `Framelens pairs up the frames of two capture runs, scores how much each pair diverges visually, and aggregates per-frame timing so a rendering change can be judged on both image fidelity and speed.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.compareCommand())
	root.AddCommand(c.matchCommand())
	root.AddCommand(c.timingCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newCache selects the score cache backend from the configuration.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	if c.Config.Cache.Backend == "redis" {
		return cache.NewRedisCache(ctx, c.Config.Cache.RedisAddr, c.Config.Cache.RedisDB)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newHistoryStore selects the run history backend from the configuration.
func (c *CLI) newHistoryStore(ctx context.Context) (history.Store, error) {
	if c.Config.History.Backend == "mongo" {
		return history.NewMongoStore(ctx, c.Config.History.MongoURI, c.Config.History.MongoDB)
	}
	dir, err := dataDir()
	if err != nil {
		return nil, err
	}
	return history.NewFileStore(filepath.Join(dir, "history.jsonl"))
}

// cacheDir returns the cache directory using XDG standard (~/.cache/framelens/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// dataDir returns the data directory using XDG standard (~/.local/share/framelens/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{"json"}
	}
	return strings.Split(s, ",")
}
