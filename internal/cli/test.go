package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/qengine/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Golden string // golden file directory
	Filter string // suite filter (glob pattern)
}

// SuiteResult holds the result of a single suite execution.
type SuiteResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Cases  int      `json:"cases"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Suites []SuiteResult `json:"suites"`
	Passed int           `json:"passed"`
	Failed int           `json:"failed"`
	Total  int           `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <suite.yaml|suites-dir>",
		Short: "Run query case suites",
		Long: `Run YAML suites of query cases through the compiler.

Each case's SQL, arguments, error kind and selected rows are checked
against its expectations. With --golden, each suite's snapshot is also
compared with <golden>/<suite>.golden; --update rewrites those files.

Exit codes:
  0 - All suites passed
  1 - One or more suites failed
  2 - Command error (invalid paths, etc.)

Examples:
  qe test ./suites
  qe test ./suites --filter "employees*"
  qe test ./suites --golden ./golden --update
  qe test ./suites/employees.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "directory of golden snapshots")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter suites by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, path string, cmd *cobra.Command) error {
	f := rootFormatter(opts.RootOptions, cmd)

	if opts.Update && opts.Golden == "" {
		return f.Fail(ErrCodeConfig, fmt.Errorf("--update requires --golden"))
	}
	files, err := findSuiteFiles(path, opts.Filter)
	if err != nil {
		return f.Fail(ErrCodeSuiteFailed, err)
	}

	result := TestResult{Suites: make([]SuiteResult, 0, len(files)), Total: len(files)}
	for _, file := range files {
		sr := runSuite(opts, file)
		f.VerboseLog("suite %s: %d case(s), pass=%t", sr.Name, sr.Cases, sr.Pass)
		result.Suites = append(result.Suites, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if err := f.Success(result, func(w io.Writer) { outputTestText(w, result) }); err != nil {
		return err
	}
	if result.Failed > 0 {
		e := NewExitError(ExitFailure, fmt.Sprintf("%d of %d suite(s) failed", result.Failed, result.Total))
		e.Reported = true
		return e
	}
	return nil
}

// findSuiteFiles returns path itself when it is a file, or every YAML
// file under it when it is a directory.
func findSuiteFiles(path, filter string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("suite path not found: %s", path)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		// Only process .yaml and .yml files
		ext := filepath.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		// Apply filter if specified
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(p), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, p)
		return nil
	})
	return files, err
}

// runSuite executes a single suite file and returns the result.
func runSuite(opts *TestOptions, file string) SuiteResult {
	suite, err := harness.LoadSuite(file)
	if err != nil {
		return SuiteResult{
			Name:   filepath.Base(file),
			Errors: []string{fmt.Sprintf("failed to load suite: %v", err)},
		}
	}

	result, err := harness.Run(suite)
	if err != nil {
		return SuiteResult{
			Name:   suite.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	sr := SuiteResult{Name: suite.Name, Pass: result.Pass, Cases: len(result.Cases)}
	for _, c := range result.Failed() {
		for _, failure := range c.Failures {
			sr.Errors = append(sr.Errors, fmt.Sprintf("%s: %s", c.Name, failure))
		}
	}

	if opts.Golden != "" {
		if err := compareGolden(opts, suite.Name, harness.Snapshot(result)); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, err.Error())
		}
	}
	return sr
}

func compareGolden(opts *TestOptions, name string, snapshot []byte) error {
	path := filepath.Join(opts.Golden, name+".golden")
	if opts.Update {
		if err := os.MkdirAll(opts.Golden, 0o755); err != nil {
			return fmt.Errorf("writing golden file: %w", err)
		}
		if err := os.WriteFile(path, snapshot, 0o644); err != nil {
			return fmt.Errorf("writing golden file: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading golden file: %w", err)
	}
	if !bytes.Equal(want, snapshot) {
		return fmt.Errorf("snapshot differs from %s (rerun with --update to accept)", path)
	}
	return nil
}

func outputTestText(w io.Writer, result TestResult) {
	if result.Total == 0 {
		fmt.Fprintln(w, "No suites found.")
		return
	}
	for _, s := range result.Suites {
		if s.Pass {
			fmt.Fprintf(w, "✓ %s (%d case(s))\n", s.Name, s.Cases)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}
