package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/qengine/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	History     string // SQLite history file
	Fingerprint string // only list compilations of this query
	Limit       int    // most recent entries to list
}

// HistoryEntry is one recorded compilation in command output.
type HistoryEntry struct {
	Seq         int64           `json:"seq"`
	RequestID   string          `json:"request_id"`
	CompiledAt  string          `json:"compiled_at"`
	Dialect     string          `json:"dialect"`
	Fingerprint string          `json:"fingerprint,omitempty"`
	SQL         string          `json:"sql,omitempty"`
	Args        json.RawMessage `json:"args,omitempty"`
	ErrorKind   string          `json:"error_kind,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded compilations",
		Long: `List compilations recorded by "qe compile --history".

Without --fingerprint, the most recent entries are listed newest first.
With --fingerprint, every compilation of that query is listed oldest
first.

Examples:
  qe history --history qe.db
  qe history --history qe.db --fingerprint 3f2a... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.History, "history", "", "SQLite history file (default from config)")
	cmd.Flags().StringVar(&opts.Fingerprint, "fingerprint", "", "only list compilations of this query")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "most recent entries to list (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	f := rootFormatter(opts.RootOptions, cmd)

	path := opts.History
	if path == "" {
		path = opts.config().History
	}
	if path == "" {
		return f.Fail(ErrCodeConfig, fmt.Errorf("no history file: pass --history or set history in the config"))
	}

	s, err := store.Open(path)
	if err != nil {
		return f.Fail(ErrCodeHistory, err)
	}
	defer s.Close()

	var entries []store.Entry
	if opts.Fingerprint != "" {
		entries, err = s.ByFingerprint(cmd.Context(), opts.Fingerprint)
	} else {
		entries, err = s.Recent(cmd.Context(), opts.Limit)
	}
	if err != nil {
		return f.Fail(ErrCodeHistory, err)
	}

	out := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntry{
			Seq:         e.Seq,
			RequestID:   e.RequestID,
			CompiledAt:  e.CompiledAt,
			Dialect:     e.Dialect,
			Fingerprint: e.Fingerprint,
			SQL:         e.SQL,
			Args:        json.RawMessage(e.Args),
			ErrorKind:   e.ErrorKind,
			Error:       e.Error,
		})
	}

	return f.Success(out, func(w io.Writer) {
		if len(out) == 0 {
			fmt.Fprintln(w, "No compilations recorded.")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SEQ\tCOMPILED\tDIALECT\tFINGERPRINT\tRESULT")
		for _, e := range out {
			result := e.SQL
			if e.ErrorKind != "" {
				result = "error: " + e.ErrorKind
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.Seq, e.CompiledAt, e.Dialect, shortFingerprint(e.Fingerprint), result)
		}
		tw.Flush()
	})
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	if fp == "" {
		return "-"
	}
	return fp
}
