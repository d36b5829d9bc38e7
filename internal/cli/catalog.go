package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/qengine/internal/engine"
	"github.com/roach88/qengine/internal/operator"
	"github.com/roach88/qengine/internal/placeholder"
)

// OperatorInfo describes one (operator, field kind) registration.
type OperatorInfo struct {
	Name        string   `json:"name"`
	FieldType   string   `json:"field_type"`
	ValueTypes  []string `json:"value_types"`
	Nullary     bool     `json:"nullary,omitempty"`
	Description string   `json:"description,omitempty"`
}

// PlaceholderInfo describes one placeholder token.
type PlaceholderInfo struct {
	Token       string `json:"token"`
	Description string `json:"description"`
}

// NewOperatorsCommand creates the operators command.
func NewOperatorsCommand(rootOpts *RootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "operators",
		Short: "List the built-in operators",
		Long: `List every built-in operator with the field type it applies to and
the value types it accepts.

Examples:
  qe operators
  qe operators --name greaterThan --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootFormatter(rootOpts, cmd)
			infos := operatorInfos(engine.New().Operators(), name)
			if len(infos) == 0 {
				return f.Fail(ErrCodeOperatorNotFound, fmt.Errorf("no operator named %q", name))
			}
			return f.Success(infos, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "OPERATOR\tFIELD\tVALUE\tDESCRIPTION")
				for _, info := range infos {
					values := strings.Join(info.ValueTypes, ",")
					if info.Nullary {
						values = "-"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Name, info.FieldType, values, info.Description)
				}
				tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "only list this operator")
	return cmd
}

func operatorInfos(r *operator.Registry, name string) []OperatorInfo {
	var out []OperatorInfo
	for _, e := range r.Entries() {
		if name != "" && e.Name != name {
			continue
		}
		values := make([]string, len(e.ValueKinds))
		for i, k := range e.ValueKinds {
			values[i] = k.String()
		}
		out = append(out, OperatorInfo{
			Name:        e.Name,
			FieldType:   e.FieldKind.String(),
			ValueTypes:  values,
			Nullary:     e.Nullary,
			Description: e.Description,
		})
	}
	return out
}

// NewPlaceholdersCommand creates the placeholders command.
func NewPlaceholdersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "placeholders",
		Short: "List the placeholder tokens",
		Long: `List the tokens substituted in query string values before decoding,
such as [me] and [today].`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootFormatter(rootOpts, cmd)
			infos := placeholderInfos(engine.New().Placeholders())
			return f.Success(infos, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TOKEN\tDESCRIPTION")
				for _, info := range infos {
					fmt.Fprintf(tw, "%s\t%s\n", info.Token, info.Description)
				}
				tw.Flush()
			})
		},
	}
}

func placeholderInfos(r *placeholder.Registry) []PlaceholderInfo {
	tokens := r.Tokens()
	out := make([]PlaceholderInfo, 0, len(tokens))
	for _, token := range tokens {
		out = append(out, PlaceholderInfo{Token: token, Description: r.Description(token)})
	}
	return out
}

func rootFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
