package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Submit a query document and print the response",
	Long: `Submit a query document as a search request. The query is read from
the argument, or from stdin when the argument is absent or "-". An
empty query matches everything.`,
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
		res := client.Search(q, nil)
		slog.Info("search completed",
			"error", res.IsError(),
			"total", res.TotalHits(),
			"took_ms", res.Elapsed())
		if err := printResponse(os.Stdout, res, cfg.GetString("format")); err != nil {
			return err
		}
		if res.IsError() {
			return fmt.Errorf("service returned an error response")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
