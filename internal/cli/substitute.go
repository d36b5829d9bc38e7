package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewSubstituteCommand creates the substitute command.
func NewSubstituteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "substitute [query.json|-]",
		Short: "Replace placeholders in a JSON query",
		Long: `Replace placeholder tokens such as [me] and [today] in the string
values of a JSON query and print the result. Object keys are never
rewritten. Nothing is decoded or compiled.

Examples:
  qe substitute --user u-42 query.json
  qe substitute --today 2024-01-10 - < query.json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			req, err := opts.prepare(cmd, args, f)
			if err != nil {
				return err
			}
			out, err := req.engine.Substitute(req.raw, req.qc)
			if err != nil {
				return f.Fail(ErrCodeGeneric, err)
			}
			return f.Success(json.RawMessage(out), func(w io.Writer) {
				fmt.Fprintln(w, string(out))
			})
		},
	}

	opts.addFlags(cmd)
	return cmd
}
