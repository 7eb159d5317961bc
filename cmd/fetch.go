package main

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/greenbelt-labs/ejatlas/internal/fetcher"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>...",
	Short: "Download source datasets",
	Long:  "Downloads dataset files over HTTP or FTP into the data directory, optionally extracting zip archives in place.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if v, _ := cmd.Flags().GetString("dest"); v != "" {
			cfg.Fetch.DataDir = v
		}
		if err := cfg.Validate("fetch"); err != nil {
			return err
		}
		extract, _ := cmd.Flags().GetBool("extract")

		httpf := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Fetch.MaxRetries,
			RatePerSec: cfg.Fetch.RatePerSec,
		})
		ftpf := fetcher.NewFTPFetcher(fetcher.FTPOptions{
			Timeout: time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		})

		for _, rawURL := range args {
			dest, err := destPath(cfg.Fetch.DataDir, rawURL)
			if err != nil {
				return err
			}
			if err := fetcher.Download(ctx, rawURL, dest, httpf, ftpf); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Downloaded %s\n", dest)

			if extract && strings.EqualFold(filepath.Ext(dest), ".zip") {
				files, err := fetcher.ExtractZip(dest, strings.TrimSuffix(dest, filepath.Ext(dest)))
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "Extracted %d files from %s\n", len(files), filepath.Base(dest))
			}
		}
		return nil
	},
}

// destPath maps a source URL to a file path under dir, keyed by the last
// path segment of the URL.
func destPath(dir, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrapf(err, "fetch: parse url %s", rawURL)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", eris.Errorf("fetch: url %s has no file name", rawURL)
	}
	return filepath.Join(dir, name), nil
}

func init() {
	fetchCmd.Flags().String("dest", "", "directory to download into (overrides config)")
	fetchCmd.Flags().Bool("extract", false, "extract downloaded zip archives next to the archive")

	rootCmd.AddCommand(fetchCmd)
}
