package cli

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"structuralign/pkg/cache"
	"structuralign/pkg/pipeline"
	"structuralign/pkg/runstore"
)

const appName = "structuralign"

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// cmd/structuralign does not call it, so the values stay empty unless
// another caller sets them.
func SetVersion(v, c, d string) {
	version, commit, date = v, c, d
}

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a CLI instance with a default logger.
func New(w *os.File, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand builds the root cobra command with every subcommand
// registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "structuralign",
		Short:        "structuralign aligns structural 3D models onto a discovered column grid",
		Long:         `structuralign discovers canonical X/Y axis lines from a building's vertex cloud, snaps element endpoints onto them, and applies deterministic object-level cleanup rules.`,
		Version:      version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(versionTemplate())

	root.AddCommand(c.alignCommand())
	root.AddCommand(c.gridCommand())
	root.AddCommand(c.reportCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())

	return root
}

func versionTemplate() string {
	return "structuralign " + version + "\ncommit: " + commit + "\nbuilt: " + date + "\n"
}

// newRunner builds a pipeline.Runner backed by the on-disk file cache,
// or a no-op cache when noCache is set.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	ca, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ca, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newRunStore opens the CLI's default run-history store: one JSON file
// per run under the app's XDG data directory.
func newRunStore() (runstore.Store, error) {
	dir, err := dataDir("runs")
	if err != nil {
		return nil, err
	}
	return runstore.NewFileStore(dir)
}

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/structuralign/).
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

// dataDir returns a subdirectory of the XDG data directory
// (~/.local/share/structuralign/<sub>).
func dataDir(sub string) (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName, sub), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName, sub), nil
}
