package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"pulse.news/pulse/internal/cli"
)

func runStats(args []string) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	format := fs.String("format", outputFormatTable, "Output format: table or json")
	timeout := fs.Duration("timeout", 30*time.Second, "Query timeout")

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

	ctx, cancel, pool, st, _, err := connectStore(*timeout, envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	stats, err := st.GetStats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(stats); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode stats: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Printf("Total items: %d\n", stats.TotalItems)
	fmt.Printf("Collected in last 24h: %d\n\n", stats.ItemsLast24)

	rows := make([][]string, 0, len(stats.Sources))
	for _, src := range stats.Sources {
		rows = append(rows, []string{
			src.Name,
			src.Type,
			strconv.FormatInt(src.ItemCount, 10),
			strconv.FormatInt(src.RecentCount, 10),
		})
	}
	if err := writeTable([]string{"SOURCE", "TYPE", "ITEMS", "LAST 24H"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write table: %v\n", err)
		return 1
	}
	return 0
}
