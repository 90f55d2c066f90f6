package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/metis"
	"github.com/fwojciec/metis/ingest"
	"github.com/fwojciec/metis/rod"
	"github.com/fwojciec/metis/workflow"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config *Config

	Store      metis.DocumentStore
	Machine    *workflow.Machine
	Pipeline   *ingest.Pipeline
	Summarizer metis.Summarizer

	// Login opens the interactive browser login used by auth-login.
	Login rod.LoginFunc

	// Now is the clock used for reporting ages. Defaults to time.Now.
	Now func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"c" type:"path" env:"METIS_CONFIG" help:"YAML config file"`
	Verbose bool   `short:"v" help:"Log debug output"`

	Fetch        FetchCmd        `cmd:"" help:"Fetch an article and save it to the vault"`
	Sync         SyncCmd         `cmd:"" help:"Fetch every new URL listed in the inbox file"`
	Schedule     ScheduleCmd     `cmd:"" help:"Run sync repeatedly at a fixed interval"`
	List         ListCmd         `cmd:"" help:"List stored articles"`
	Status       StatusCmd       `cmd:"" help:"Show the stored state of a URL"`
	MarkRead     MarkReadCmd     `cmd:"" help:"Mark an article as read"`
	MarkValuable MarkValuableCmd `cmd:"" help:"Mark a read article as valuable"`
	Archive      ArchiveCmd      `cmd:"" help:"Archive a read article"`
	Transition   TransitionCmd   `cmd:"" help:"Move an article to another status"`
	Note         NoteCmd         `cmd:"" help:"Attach a note to an article"`
	SetFile      SetFileCmd      `cmd:"" help:"Record the working file of an article"`
	Summarize    SummarizeCmd    `cmd:"" help:"Summarize a markdown file"`
	Index        IndexCmd        `cmd:"" help:"Rewrite the Obsidian Bases index of the collection"`
	AuthLogin    AuthLoginCmd    `cmd:"" help:"Log in to WeChat in a browser window and save the login state"`
	AuthStatus   AuthStatusCmd   `cmd:"" help:"Check the saved browser login state"`
	ShowConfig   ShowConfigCmd   `cmd:"" name:"config" help:"Print the effective configuration"`
}

// FetchCmd is the "fetch" subcommand.
type FetchCmd struct {
	URL    string `arg:"" help:"Article URL"`
	NoSave bool   `help:"Print the markdown instead of saving it"`
}

// SyncCmd is the "sync" subcommand.
type SyncCmd struct{}

// ScheduleCmd is the "schedule" subcommand.
type ScheduleCmd struct {
	Interval time.Duration `default:"60m" help:"Time between syncs"`
	MaxCount int           `default:"0" help:"Stop after this many syncs (0 runs until interrupted)"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Status string `short:"s" help:"Only list articles with this status"`
	Limit  int    `short:"n" help:"Maximum number of articles"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct {
	URL string `arg:"" help:"Article URL"`
}

// MarkReadCmd is the "mark-read" subcommand.
type MarkReadCmd struct {
	URL string `arg:"" help:"Article URL"`
}

// MarkValuableCmd is the "mark-valuable" subcommand.
type MarkValuableCmd struct {
	URL string `arg:"" help:"Article URL"`
}

// ArchiveCmd is the "archive" subcommand.
type ArchiveCmd struct {
	URL string `arg:"" help:"Article URL"`
}

// TransitionCmd is the "transition" subcommand.
type TransitionCmd struct {
	URL    string `arg:"" help:"Article URL"`
	Status string `arg:"" help:"Target status"`
}

// NoteCmd is the "note" subcommand.
type NoteCmd struct {
	URL  string `arg:"" help:"Article URL"`
	Text string `arg:"" help:"Note text"`
}

// SetFileCmd is the "set-file" subcommand.
type SetFileCmd struct {
	URL  string `arg:"" help:"Article URL"`
	File string `arg:"" help:"Working file path"`
}

// SummarizeCmd is the "summarize" subcommand.
type SummarizeCmd struct {
	File   string `arg:"" type:"existingfile" help:"Markdown file"`
	Output string `short:"o" type:"path" help:"Write the summary to this file"`
}

// IndexCmd is the "index" subcommand.
type IndexCmd struct{}

// AuthLoginCmd is the "auth-login" subcommand.
type AuthLoginCmd struct {
	Wait time.Duration `default:"5m" help:"How long to wait for the login to complete"`
}

// AuthStatusCmd is the "auth-status" subcommand.
type AuthStatusCmd struct{}

// ShowConfigCmd is the "config" subcommand.
type ShowConfigCmd struct{}
