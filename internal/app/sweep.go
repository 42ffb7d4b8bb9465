package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"pulse.news/pulse/internal/cli"
	"pulse.news/pulse/internal/globaltime"
	"pulse.news/pulse/internal/store"
)

func runSweep(args []string) int {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	days := fs.Int("days", 30, "Delete items published more than this many days ago")
	batch := fs.Int("batch", store.DefaultRetentionBatchSize, "Rows deleted per batch")
	timeout := fs.Duration("timeout", 2*time.Minute, "Sweep timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *days < 1 {
		fmt.Fprintln(os.Stderr, "--days must be >= 1")
		return 2
	}
	if *batch < 1 {
		fmt.Fprintln(os.Stderr, "--batch must be >= 1")
		return 2
	}

	ctx, cancel, pool, st, _, err := connectStore(*timeout, envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sweep failed: %v\n", err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	cutoff := globaltime.Now().AddDate(0, 0, -*days)
	deleted, err := st.DeleteItemsPublishedBefore(ctx, cutoff, *batch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sweep failed after deleting %d items: %v\n", deleted, err)
		return 1
	}

	fmt.Printf("Deleted %d items published before %s\n", deleted, cutoff.UTC().Format(time.RFC3339))
	return 0
}

// sweepRetention is the scheduled variant used by the daemon.
func sweepRetention(ctx context.Context, st *store.Store) (int64, error) {
	cutoff := globaltime.Now().Add(-store.RetentionAge)
	return st.DeleteItemsPublishedBefore(ctx, cutoff, store.DefaultRetentionBatchSize)
}
