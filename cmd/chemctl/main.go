// chemctl is the command-line consumer of the compound service: list and
// filter compounds, save records, export CSV, and inspect deployment status.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tntchem/devhub/client"
)

var (
	serverURL string
	token     string
	cachePath string
)

func main() {
	root := &cobra.Command{
		Use:           "chemctl",
		Short:         "Compound tracking CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&serverURL, "server", envOr("DEVHUB_SERVER", "http://localhost:8080"), "Server base URL")
	root.PersistentFlags().StringVar(&token, "token", os.Getenv("DEVHUB_TOKEN"), "Session token (Bearer)")
	root.PersistentFlags().StringVar(&cachePath, "cache", defaultCachePath(), "Path to the local result cache (empty disables)")

	root.AddCommand(
		newListCmd(),
		newSaveCmd(),
		newSeedCmd(),
		newExportCmd(),
		newChartCmd(),
		newStatusCmd(),
		newSignOutCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "chemctl", "cache.db")
}

func newClient() *client.Client {
	return client.New(serverURL, token)
}

// openCache returns the local cache, or nil when caching is disabled or the
// cache cannot be opened. Cache failures never block a command.
func openCache() *client.Cache {
	if cachePath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return nil
	}
	c, err := client.OpenCache(cachePath)
	if err != nil {
		return nil
	}
	return c
}
