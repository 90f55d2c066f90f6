package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fwojciec/metis"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := metis.RecordFilter{Limit: c.Limit}
	if c.Status != "" {
		status, err := metis.ParseStatus(c.Status)
		if err != nil {
			return printError(deps, err)
		}
		filter.Status = &status
	}

	records, err := deps.Store.List(deps.Ctx, filter)
	if err != nil {
		return printError(deps, err)
	}

	if len(records) == 0 {
		fmt.Fprintln(deps.Stdout, "No articles found. Use 'metis fetch' or 'metis sync' to add some.")
		return nil
	}

	tw := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tPLATFORM\tSTATUS\tCREATED")
	for _, r := range records {
		created := r.Created()
		if len(created) > 19 {
			created = created[:19]
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			orDash(metis.TruncateText(r.Title(), 50)),
			orDash(r.Platform()),
			orDash(string(r.Status())),
			orDash(created),
		)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
