package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/escapetime/pkg/cache"
	"github.com/matzehuels/escapetime/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local chart cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := c.fileCache()
			if err != nil {
				return err
			}
			if err := fc.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cache cleared")
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := c.fileCache()
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, fc.Dir())
			return nil
		},
	}
}

// fileCache opens the configured file cache. The network backends are
// managed by their own tooling.
func (c *CLI) fileCache() (*cache.FileCache, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if b := cfg.Cache.Backend; b != "" && b != cache.BackendFile {
		return nil, errors.New(errors.ErrCodeUnsupported, "cache commands only manage the file backend, config uses %q", b)
	}
	opts, err := cfg.CacheOptions()
	if err != nil {
		return nil, err
	}
	return cache.NewFileCache(opts.Dir)
}
