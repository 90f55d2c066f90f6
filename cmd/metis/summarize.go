package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fwojciec/metis"
	"github.com/fwojciec/metis/fs"
)

// Run executes the summarize command.
func (c *SummarizeCmd) Run(deps *Dependencies) error {
	if deps.Summarizer == nil {
		return printError(deps, metis.Errorf(metis.EINVALID, "summarizer not configured"))
	}

	data, err := os.ReadFile(c.File)
	if err != nil {
		return printError(deps, err)
	}
	text := string(data)
	if _, rest, ok := fs.SplitDocument(text); ok {
		text = rest
	}
	text = strings.TrimSpace(text)

	summary, err := deps.Summarizer.Summarize(deps.Ctx, text)
	if err != nil {
		return printError(deps, err)
	}

	if c.Output != "" {
		if err := os.WriteFile(c.Output, []byte(summary), 0644); err != nil {
			return printError(deps, err)
		}
		fmt.Fprintf(deps.Stdout, "Summary saved to: %s\n", c.Output)
		return nil
	}

	fmt.Fprintln(deps.Stdout, summary)
	return nil
}
