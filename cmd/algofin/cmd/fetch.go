package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/eric-ycw/algofin/market/data"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download historical OHLC data files",
	Long: `Fetch downloads a historical OHLC CSV (or a zip archive of CSVs, which is
extracted) into the output directory.

Example:
  algofin fetch --url "https://stooq.com/q/d/l/?s=gm.us&i=d" --out ./data`,
	RunE: runFetch,
}

var (
	fetchURL     string
	fetchOut     string
	fetchTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchURL, "url", "", "download URL (required)")
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "./data", "output directory")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", data.DefaultTimeout, "HTTP timeout")

	fetchCmd.MarkFlagRequired("url")
}

func runFetch(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: fetchTimeout}

	path, err := data.Fetch(context.Background(), client, fetchURL, fetchOut)
	if err != nil {
		return err
	}

	fmt.Printf("Saved to %s\n", path)
	return nil
}
