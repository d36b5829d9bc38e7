package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/qengine/internal/placeholder"
	"github.com/roach88/qengine/internal/query"
)

// ValidationOutput describes a structurally valid query.
type ValidationOutput struct {
	Valid       bool            `json:"valid"`
	Nodes       int             `json:"nodes"`
	Depth       int             `json:"depth"`
	Leaves      int             `json:"leaves"`
	Tokens      []string        `json:"tokens"`
	Fingerprint string          `json:"fingerprint"`
	Canonical   json.RawMessage `json:"canonical"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [query.json|-]",
		Short: "Check a JSON query's structure",
		Long: `Substitute placeholders and decode a JSON query without compiling it.

Reports the node count, depth, the placeholder tokens the query uses and
its canonical form. Operators and columns are not resolved; use compile
for that.

Examples:
  qe validate query.json
  qe validate --format json - < query.json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd, args)
		},
	}

	opts.addFlags(cmd)
	return cmd
}

func runValidate(opts *QueryOptions, cmd *cobra.Command, args []string) error {
	f := opts.formatter(cmd)
	req, err := opts.prepare(cmd, args, f)
	if err != nil {
		return err
	}

	tokens, err := placeholder.Tokens(req.raw)
	if err != nil {
		return f.Fail(ErrCodeGeneric, err)
	}
	node, err := req.engine.Validate(req.raw, req.qc)
	if err != nil {
		return f.Fail(ErrCodeGeneric, err)
	}
	canonical, err := query.Encode(node)
	if err != nil {
		return f.Fail(ErrCodeGeneric, err)
	}
	fingerprint, err := query.Fingerprint(node)
	if err != nil {
		return f.Fail(ErrCodeGeneric, err)
	}

	nodes, depth := query.Stats(node)
	out := ValidationOutput{
		Valid:       true,
		Nodes:       nodes,
		Depth:       depth,
		Leaves:      len(query.Leaves(node)),
		Tokens:      tokens,
		Fingerprint: fingerprint,
		Canonical:   canonical,
	}
	if out.Tokens == nil {
		out.Tokens = []string{}
	}

	return f.Success(out, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Valid query: %d node(s), %d leaf(s), depth %d\n", out.Nodes, out.Leaves, out.Depth)
		if len(out.Tokens) > 0 {
			fmt.Fprintf(w, "Placeholders: %v\n", out.Tokens)
		}
		fmt.Fprintf(w, "Fingerprint: %s\n", out.Fingerprint)
		fmt.Fprintln(w, string(out.Canonical))
	})
}
