package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"pulse.news/pulse/internal/cli"
	"pulse.news/pulse/internal/collect"
	"pulse.news/pulse/internal/config"
	"pulse.news/pulse/internal/db"
	"pulse.news/pulse/internal/store"
)

const (
	outputFormatTable = "table"
	outputFormatJSON  = "json"
)

func parseOutputFormat(raw, defaultFormat string) (string, error) {
	format := strings.TrimSpace(strings.ToLower(raw))
	if format == "" {
		format = strings.TrimSpace(strings.ToLower(defaultFormat))
	}
	switch format {
	case outputFormatTable, outputFormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("--format must be table or json")
	}
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func writeTable(headers []string, rows [][]string) error {
	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintln(writer, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(writer, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// connectStore loads config, opens the pool, and wraps it in a store. The
// returned context carries the command timeout.
func connectStore(timeout time.Duration, envLoader *cli.EnvLoader) (context.Context, context.CancelFunc, *db.Pool, *store.Store, *config.Config, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		cancel()
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return ctx, cancel, pool, store.New(pool), cfg, nil
}

// buildCollectors assembles the collector set for the requested source, or
// all of them when source is empty or "all".
func buildCollectors(cfg *config.Config, st collect.Store, logger zerolog.Logger, source string) ([]collect.Collector, error) {
	client := &http.Client{Timeout: time.Duration(cfg.FetchTimeoutSeconds) * time.Second}

	all := []collect.Collector{
		collect.NewHackerNews(st, client, cfg.HackerNewsBaseURL, logger),
		collect.NewRSS(st, client, nil, logger),
		collect.NewGitHubWithToken(st, client, cfg.GitHubToken, logger),
	}

	source = strings.TrimSpace(strings.ToLower(source))
	if source == "" || source == "all" {
		return all, nil
	}
	for _, collector := range all {
		if collector.Name() == source {
			return []collect.Collector{collector}, nil
		}
	}
	return nil, fmt.Errorf("unknown source %q (want hackernews, rss, github, or all)", source)
}
