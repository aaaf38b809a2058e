package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bd808/moar-elasticsearch/elastic"
)

var scanCmd = &cobra.Command{
	Use:   "scan [query]",
	Short: "Stream every document matching a query",
	Long: `Submit a query document as a scan request and stream every matched
document to stdout, one JSON line each, following the server-side
scroll until the result set is exhausted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newSearchClient()
		if err != nil {
			return err
		}
		q, err := readQuery(args)
		if err != nil {
			return err
		}
		size, _ := cmd.Flags().GetInt("size")
		keepAlive, _ := cmd.Flags().GetString("scroll")

		res := client.Scan(q, size, keepAlive, nil)
		count := 0
		for res.Next() {
			if err := printDoc(os.Stdout, res.Doc()); err != nil {
				return err
			}
			count++
		}
		slog.Info("scan completed",
			"error", res.IsError(),
			"total", res.TotalHits(),
			"streamed", count)
		if res.IsError() {
			return fmt.Errorf("service returned an error response after %d documents", count)
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().Int("size", elastic.DefaultFetchSize, "Documents fetched per scroll page")
	scanCmd.Flags().String("scroll", elastic.DefaultKeepAlive, "Scroll keep-alive duration")
	rootCmd.AddCommand(scanCmd)
}
