package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"pulse.news/pulse/internal/cli"
	"pulse.news/pulse/internal/collect"
	"pulse.news/pulse/internal/logging"
)

func runCollect(args []string) int {
	fs := flag.NewFlagSet("collect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	source := fs.String("source", "all", "Source to poll: hackernews, rss, github, or all")
	timeout := fs.Duration("timeout", 5*time.Minute, "Overall collection timeout")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ctx, cancel, pool, st, cfg, err := connectStore(*timeout, envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Collect failed: %v\n", err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	collectors, err := buildCollectors(cfg, st, logger, *source)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	var results []*collect.Result
	failed := false
	for _, collector := range collectors {
		result, err := collector.Collect(ctx)
		if err != nil {
			logger.Error().Err(err).Str("source", collector.Name()).Msg("collection run failed")
			failed = true
			continue
		}
		results = append(results, result)
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode results: %v\n", err)
			return 1
		}
	} else {
		rows := make([][]string, 0, len(results))
		for _, r := range results {
			rows = append(rows, []string{
				r.Source,
				strconv.Itoa(r.Fetched),
				strconv.Itoa(r.Inserted),
				strconv.Itoa(r.Updated),
				strconv.Itoa(r.Duplicates),
				strconv.Itoa(r.Skipped),
			})
		}
		if err := writeTable([]string{"SOURCE", "FETCHED", "INSERTED", "UPDATED", "DUPLICATES", "SKIPPED"}, rows); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write table: %v\n", err)
			return 1
		}
	}

	if failed {
		return 1
	}
	return 0
}
