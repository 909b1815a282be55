package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hybridnet/pkg/cache"
)

// cacheCommand groups the subcommands that inspect the local file cache.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local result cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "info",
			Short: "Show the cache location and size",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return c.cacheInfo() },
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove cached results and drawings",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return c.cacheClear() },
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				dir, err := cacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
				return nil
			},
		},
	)
	return cmd
}

// openFileCache opens the local cache, returning nil when it does not exist.
func (c *CLI) openFileCache() (*cache.FileCache, error) {
	if c.Config.Cache == cacheRedis {
		printWarning("Cache backend is redis at %s; entries expire on their own", c.Config.RedisAddr)
		return nil, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil, nil
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) cacheInfo() error {
	fc, err := c.openFileCache()
	if fc == nil || err != nil {
		return err
	}
	n, size, err := fc.Stats()
	if err != nil {
		return err
	}
	printInfo("%d entries, %s", n, formatBytes(size))
	printDetail("Directory: %s", fc.Dir())
	return nil
}

func (c *CLI) cacheClear() error {
	fc, err := c.openFileCache()
	if fc == nil || err != nil {
		return err
	}
	n, err := fc.Clear()
	if err != nil {
		return err
	}
	printSuccess("Cleared %d cached entries", n)
	printDetail("Directory: %s", fc.Dir())
	return nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
