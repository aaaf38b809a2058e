package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bd808/moar-elasticsearch/elastic"
)

// cfg layers configuration sources: command line flags over MOARES_*
// environment variables over a config file.
var cfg = viper.New()

var rootCmd = &cobra.Command{
	Use:   "moares",
	Short: "moares - query a document-search service from the command line",
	Long: `moares builds search requests, submits them to a document-search
HTTP service, and iterates the results, following server-side scrolls
for large result sets.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (MOARES_*)
3. Configuration file (custom path or default locations)

Configuration file discovery:
  MOARES_CONFIG=/path/to/config.yaml  # Custom config file path
  ./moares.yaml                       # Current directory
  ~/.moares/moares.yaml               # User directory

Examples:
  # Search an index with an inline query document
  moares --server http://localhost:9200 --index logs search '{"query":{"term":{"state":"open"}}}'

  # Stream every match of a large result set
  moares --server http://localhost:9200 --index logs scan '{"query":{"match_all":{}}}' --size 100

  # Bulk-load documents, resuming an interrupted run
  moares --server http://localhost:9200 --index logs --type event bulk events.ndjson --resume`,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.BindPFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("failed to bind flags: %w", err)
		}
		return initLogging(cfg.GetString("log-level"), cfg.GetBool("log-stderr"))
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("server", "s", "", "Search service base URL (required)")
	flags.StringSliceP("index", "i", nil, "Index name(s) to address")
	flags.StringSliceP("type", "t", nil, "Document type name(s) to address")
	flags.StringP("format", "f", "json", "Output format: json|yaml|ndjson")
	flags.String("username", "", "Basic auth username")
	flags.String("password", "", "Basic auth password")
	flags.String("log-level", "warn", "Log level: debug|info|warn|error")
	flags.Bool("log-stderr", false, "Also log to stderr")

	setupConfig()
}

// setupConfig configures viper with environment variables and config
// file discovery.
func setupConfig() {
	if configFile := os.Getenv("MOARES_CONFIG"); configFile != "" {
		cfg.SetConfigFile(configFile)
	} else {
		cfg.SetConfigName("moares")
		cfg.SetConfigType("yaml")
		cfg.AddConfigPath(".")
		cfg.AddConfigPath("$HOME/.moares")
	}

	cfg.AutomaticEnv()
	cfg.SetEnvPrefix("MOARES")
	// Replace dash with underscore in env vars (e.g. --log-level ->
	// MOARES_LOG_LEVEL).
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Read config file if it exists (ignore errors)
	_ = cfg.ReadInConfig()
}

// newSearchClient builds a client from the layered configuration.
func newSearchClient() (*elastic.Client, error) {
	server := cfg.GetString("server")
	if server == "" {
		return nil, fmt.Errorf("no server configured; use --server or MOARES_SERVER")
	}
	opts := []elastic.ClientOption{
		elastic.WithIndex(cfg.GetStringSlice("index")...),
		elastic.WithType(cfg.GetStringSlice("type")...),
	}
	if username := cfg.GetString("username"); username != "" {
		opts = append(opts, elastic.WithBasicAuth(username, cfg.GetString("password")))
	}
	return elastic.NewClient(server, opts...), nil
}

// readQuery loads the query document from the argument, or stdin when
// the argument is absent or "-".
func readQuery(args []string) (*elastic.Node, error) {
	var raw []byte
	if len(args) > 0 && args[0] != "-" {
		raw = []byte(args[0])
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read query from stdin: %w", err)
		}
		raw = data
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		// An empty query matches everything.
		return elastic.NewNode(), nil
	}
	q, err := elastic.ParseJSON(raw)
	if err != nil {
		return nil, err
	}
	return q, nil
}
