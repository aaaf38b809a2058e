package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bd808/moar-elasticsearch/internal/ingest"
)

var bulkCmd = &cobra.Command{
	Use:   "bulk <file.ndjson>",
	Short: "Bulk-load newline-delimited JSON documents",
	Long: `Read one JSON document per line from the file and index them in
batches. After every acknowledged batch the byte offset is recorded in
<file>.offset; with --resume a later run continues from there. A lock
file keeps concurrent runs on the same file from interleaving.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newSearchClient()
		if err != nil {
			return err
		}
		index := strings.Join(cfg.GetStringSlice("index"), ",")
		doctype := strings.Join(cfg.GetStringSlice("type"), ",")
		if index == "" {
			return fmt.Errorf("bulk loading requires an index; use --index or MOARES_INDEX")
		}
		batch, _ := cmd.Flags().GetInt("batch")
		resume, _ := cmd.Flags().GetBool("resume")

		loader := ingest.NewLoader(client, index, doctype,
			ingest.WithBatchSize(batch),
			ingest.WithResume(resume),
		)
		progress, err := loader.Run(cmd.Context(), args[0])
		slog.Info("bulk load finished",
			"file", args[0],
			"docs", progress.Docs,
			"batches", progress.Batches,
			"offset", progress.Offset,
			"error", err != nil)
		if err != nil {
			return fmt.Errorf("bulk load stopped after %d documents: %w", progress.Docs, err)
		}
		fmt.Printf("indexed %d documents in %d batches\n", progress.Docs, progress.Batches)
		return nil
	},
}

func init() {
	bulkCmd.Flags().Int("batch", 500, "Documents per bulk request")
	bulkCmd.Flags().Bool("resume", false, "Resume from the recorded offset")
	rootCmd.AddCommand(bulkCmd)
}
