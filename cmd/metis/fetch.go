package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/metis"
	"github.com/fwojciec/metis/ingest"
)

// Run executes the fetch command.
func (c *FetchCmd) Run(deps *Dependencies) error {
	if c.NoSave {
		pc, err := deps.Pipeline.Process(deps.Ctx, c.URL)
		if err != nil {
			return printError(deps, err)
		}
		fmt.Fprintln(deps.Stdout, pc.Markdown)
		return nil
	}

	result, err := deps.Pipeline.Ingest(deps.Ctx, c.URL)
	if err != nil {
		return printError(deps, err)
	}
	printResult(deps.Stdout, result)
	return nil
}

func printResult(w io.Writer, r *ingest.Result) {
	fmt.Fprintf(w, "Saved to: %s\n", r.Path)
	fmt.Fprintf(w, "  Title:    %s\n", r.Title)
	fmt.Fprintf(w, "  Platform: %s\n", r.Platform)
	fmt.Fprintf(w, "  Size:     %s", metis.FormatBytes(r.Bytes))
	if r.Tokens > 0 {
		fmt.Fprintf(w, " (%s)", metis.FormatTokens(r.Tokens))
	}
	fmt.Fprintln(w)
	if len(r.Images) > 0 {
		fmt.Fprintf(w, "  Images:   %d\n", len(r.Images))
	}
	if r.Summary != "" {
		fmt.Fprintf(w, "  Summary:  %s\n", metis.TruncateText(r.Summary, 80))
	}
	switch {
	case r.Translated:
		fmt.Fprintln(w, "  English content, translation appended")
	case r.English:
		fmt.Fprintln(w, "  English content, not translated")
	}
}
