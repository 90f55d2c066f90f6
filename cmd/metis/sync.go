package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/metis"
	"github.com/fwojciec/metis/fs"
	"github.com/fwojciec/metis/ingest"
)

// Run executes the sync command.
func (c *SyncCmd) Run(deps *Dependencies) error {
	_, err := runSync(deps)
	return err
}

// runSync ingests the URLs of the inbox file and refreshes the collection
// index.
func runSync(deps *Dependencies) (ingest.SyncStats, error) {
	inbox := deps.Config.InboxPath()
	urls, err := fs.ReadInbox(inbox)
	if err != nil {
		return ingest.SyncStats{}, printError(deps, err)
	}
	if len(urls) == 0 {
		fmt.Fprintf(deps.Stdout, "No URLs found in %s\n", inbox)
		return ingest.SyncStats{}, nil
	}

	fmt.Fprintf(deps.Stdout, "Found %d URLs to process\n", len(urls))

	stats, err := deps.Pipeline.Sync(deps.Ctx, urls, func(p ingest.SyncProgress) {
		switch {
		case p.Skipped:
			fmt.Fprintf(deps.Stdout, "[%d/%d] skipped (already processed): %s\n", p.Completed, p.Total, p.URL)
		case p.Error != nil:
			fmt.Fprintf(deps.Stdout, "[%d/%d] failed: %s: %s\n", p.Completed, p.Total, p.URL, metis.ErrorMessage(p.Error))
		default:
			fmt.Fprintf(deps.Stdout, "[%d/%d] saved: %s -> %s\n", p.Completed, p.Total, p.URL, p.Result.Path)
		}
	})
	if err != nil {
		return stats, printError(deps, err)
	}

	fmt.Fprintf(deps.Stdout, "Sync complete: %d processed, %d skipped, %d failed\n",
		stats.Processed, stats.Skipped, stats.Failed)

	if _, _, err := writeIndex(deps); err != nil {
		return stats, printError(deps, err)
	}
	return stats, nil
}

// Run executes the schedule command.
func (c *ScheduleCmd) Run(deps *Dependencies) error {
	fmt.Fprintf(deps.Stdout, "Syncing every %s\n", c.Interval)

	for count := 1; ; count++ {
		fmt.Fprintf(deps.Stdout, "Sync #%d at %s\n", count, deps.now().Format(time.DateTime))
		if _, err := runSync(deps); err != nil {
			if ctxErr := deps.Ctx.Err(); ctxErr != nil {
				return ctxErr
			}
		}

		if c.MaxCount > 0 && count >= c.MaxCount {
			fmt.Fprintf(deps.Stdout, "Completed %d syncs\n", count)
			return nil
		}

		timer := time.NewTimer(c.Interval)
		select {
		case <-deps.Ctx.Done():
			timer.Stop()
			return deps.Ctx.Err()
		case <-timer.C:
		}
	}
}
