package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/qengine/internal/engine"
	"github.com/roach88/qengine/internal/qerr"
	"github.com/roach88/qengine/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	QueryOptions
	Select  bool   // render a full SELECT statement
	History string // SQLite file to record the compilation in
}

// CompileOutput is the payload of a successful compilation.
type CompileOutput struct {
	RequestID   string `json:"request_id"`
	Dialect     string `json:"dialect"`
	Fingerprint string `json:"fingerprint"`
	SQL         string `json:"sql"`
	Args        []any  `json:"args"`
	Select      string `json:"select,omitempty"`
	Nodes       int    `json:"nodes"`
	Depth       int    `json:"depth"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{QueryOptions: QueryOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "compile [query.json|-]",
		Short: "Compile a JSON query to a SQL predicate",
		Long: `Compile a JSON query to a parameterized SQL WHERE fragment.

The query is read from the file argument, or stdin when it is omitted
or "-". Placeholders are substituted first, then the query is decoded
and compiled. Column kinds come from --schema or --db when given;
otherwise each leaf's query type is trusted.

The SQL is printed, never executed. With --history, the outcome is also
recorded in a SQLite file; see "qe history".

Examples:
  qe compile query.json
  qe compile --user u-42 --today 2024-01-10 < query.json
  qe compile --schema employees.yaml --table employees --select query.json
  qe compile --dialect postgres --format json query.json
  qe compile --history qe.db query.json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, cmd, args)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().BoolVar(&opts.Select, "select", false, "render SELECT * FROM <table> WHERE ... (requires --table)")
	cmd.Flags().StringVar(&opts.History, "history", "", "record the compilation in this SQLite file")

	return cmd
}

func runCompile(opts *CompileOptions, cmd *cobra.Command, args []string) error {
	f := opts.formatter(cmd)
	req, err := opts.prepare(cmd, args, f)
	if err != nil {
		return err
	}
	if opts.Select && req.qc.Table == "" {
		return f.Fail(ErrCodeConfig, fmt.Errorf("--select requires --table"))
	}

	res, err := req.engine.Compile(cmd.Context(), req.raw, req.qc)
	opts.record(cmd, req, res, err)
	if err != nil {
		return f.Fail(ErrCodeGeneric, err)
	}

	out := CompileOutput{
		RequestID:   req.qc.RequestID,
		Dialect:     req.engine.Dialect().Name(),
		Fingerprint: res.Fingerprint,
		SQL:         res.SQL,
		Args:        res.Args,
		Nodes:       res.Nodes,
		Depth:       res.Depth,
	}
	if out.Args == nil {
		out.Args = []any{}
	}
	if opts.Select {
		out.Select = res.Select.SQL
	}

	return f.Success(out, func(w io.Writer) {
		if out.Select != "" {
			fmt.Fprintln(w, out.Select)
		} else {
			fmt.Fprintln(w, out.SQL)
		}
		fmt.Fprintf(w, "-- args: %s\n", formatArgs(out.Args))
	})
}

// record writes the outcome to the history file, when one is configured.
// History failures are logged and never fail the compilation.
func (o *CompileOptions) record(cmd *cobra.Command, req *request, res *engine.Result, compileErr error) {
	path := o.History
	if path == "" {
		path = req.cfg.History
	}
	if path == "" {
		return
	}

	s, err := store.Open(path)
	if err != nil {
		slog.Warn("history unavailable", "path", path, "error", err)
		return
	}
	defer s.Close()

	entry := historyEntry(req, res, compileErr)
	if _, err := s.Record(cmd.Context(), entry); err != nil {
		slog.Warn("history not recorded", "path", path, "request_id", entry.RequestID, "error", err)
	}
}

func historyEntry(req *request, res *engine.Result, compileErr error) store.Entry {
	e := store.Entry{
		RequestID:  req.qc.RequestID,
		Dialect:    req.engine.Dialect().Name(),
		CompiledAt: store.Timestamp(req.qc.Now),
	}
	if compileErr != nil {
		e.ErrorKind = string(qerr.KindOf(compileErr))
		e.Error = compileErr.Error()
		return e
	}
	e.Fingerprint = res.Fingerprint
	e.SQL = res.SQL
	e.Args = formatArgs(res.Args)
	e.Nodes = res.Nodes
	e.Depth = res.Depth
	return e
}

// formatArgs renders bind arguments as a JSON array.
func formatArgs(args []any) string {
	if args == nil {
		args = []any{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprint(args)
	}
	return string(data)
}
