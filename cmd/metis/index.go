package main

import (
	"fmt"

	"github.com/fwojciec/metis"
	"github.com/fwojciec/metis/fs"
)

// Run executes the index command.
func (c *IndexCmd) Run(deps *Dependencies) error {
	path, n, err := writeIndex(deps)
	if err != nil {
		return printError(deps, err)
	}
	fmt.Fprintf(deps.Stdout, "Wrote %d entries to %s\n", n, path)
	return nil
}

// writeIndex rewrites the Obsidian Bases file of the collection from the
// store's records.
func writeIndex(deps *Dependencies) (string, int, error) {
	records, err := deps.Store.List(deps.Ctx, metis.RecordFilter{})
	if err != nil {
		return "", 0, err
	}
	path := fs.BasePath(deps.Config.CollectionDir())
	if err := fs.WriteBaseFile(path, records); err != nil {
		return "", 0, fmt.Errorf("write index: %w", err)
	}
	return path, len(records), nil
}
