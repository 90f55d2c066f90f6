package main

import (
	"fmt"

	"github.com/fwojciec/metis"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	rec, err := findURL(deps, c.URL)
	if err != nil {
		return printError(deps, err)
	}

	f := rec.Fields
	fmt.Fprintf(deps.Stdout, "Title:      %s\n", orDash(rec.Title()))
	fmt.Fprintf(deps.Stdout, "Platform:   %s\n", orDash(rec.Platform()))
	fmt.Fprintf(deps.Stdout, "Status:     %s\n", orDash(string(rec.Status())))
	fmt.Fprintf(deps.Stdout, "File:       %s\n", rec.Path)
	fmt.Fprintf(deps.Stdout, "Created:    %s\n", orDash(rec.Created()))
	for _, s := range []metis.Status{metis.StatusRead, metis.StatusValuable, metis.StatusArchived} {
		if f.Has(s.TimestampField()) {
			fmt.Fprintf(deps.Stdout, "%-11s %s\n", s.TimestampField()+":", f.Text(s.TimestampField()))
		}
	}
	fmt.Fprintf(deps.Stdout, "English:    %t\n", f.Text(metis.FieldIsEnglish) == "true")
	fmt.Fprintf(deps.Stdout, "Translated: %t\n", f.Text(metis.FieldHasTranslation) == "true")
	if f.Has(metis.FieldFailedAt) {
		fmt.Fprintf(deps.Stdout, "Failed:     %s\n", f.Text(metis.FieldFailedAt))
	}
	if f.Has(metis.FieldNotes) {
		fmt.Fprintf(deps.Stdout, "Notes:      %s\n", f.Text(metis.FieldNotes))
	}
	if f.Has(metis.FieldFile) {
		fmt.Fprintf(deps.Stdout, "Working:    %s\n", f.Text(metis.FieldFile))
	}
	if next := rec.Status().Next(); len(next) > 0 {
		fmt.Fprintf(deps.Stdout, "Next:       %v\n", next)
	}
	return nil
}

func findURL(deps *Dependencies, url string) (*metis.Record, error) {
	path, err := deps.Store.Locate(deps.Ctx, url)
	if err != nil {
		return nil, err
	}
	return deps.Store.Find(deps.Ctx, path)
}

// Run executes the mark-read command.
func (c *MarkReadCmd) Run(deps *Dependencies) error {
	return transition(deps, c.URL, metis.StatusRead, "Marked as read")
}

// Run executes the mark-valuable command.
func (c *MarkValuableCmd) Run(deps *Dependencies) error {
	return transition(deps, c.URL, metis.StatusValuable, "Marked as valuable")
}

// Run executes the archive command.
func (c *ArchiveCmd) Run(deps *Dependencies) error {
	return transition(deps, c.URL, metis.StatusArchived, "Archived")
}

// Run executes the transition command.
func (c *TransitionCmd) Run(deps *Dependencies) error {
	to, err := metis.ParseStatus(c.Status)
	if err != nil {
		return printError(deps, err)
	}
	return transition(deps, c.URL, to, "Moved to "+string(to))
}

func transition(deps *Dependencies, url string, to metis.Status, done string) error {
	_, from, err := deps.Machine.TransitionURL(deps.Ctx, url, to)
	if err != nil {
		return printError(deps, err)
	}
	fmt.Fprintf(deps.Stdout, "%s: %s (was %s)\n", done, url, from)
	return nil
}

// Run executes the note command.
func (c *NoteCmd) Run(deps *Dependencies) error {
	path, err := deps.Store.Locate(deps.Ctx, c.URL)
	if err != nil {
		return printError(deps, err)
	}
	if err := deps.Machine.AddNote(deps.Ctx, path, c.Text); err != nil {
		return printError(deps, err)
	}
	fmt.Fprintf(deps.Stdout, "Added note to %s\n", path)
	return nil
}

// Run executes the set-file command.
func (c *SetFileCmd) Run(deps *Dependencies) error {
	path, err := deps.Store.Locate(deps.Ctx, c.URL)
	if err != nil {
		return printError(deps, err)
	}
	if err := deps.Machine.SetFile(deps.Ctx, path, c.File); err != nil {
		return printError(deps, err)
	}
	fmt.Fprintf(deps.Stdout, "Linked %s to %s\n", c.File, path)
	return nil
}
