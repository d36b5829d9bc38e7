package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a result as stable text for golden comparison:
//
//	== case_name
//	sql: salary > ?
//	args: [70000]
//	rows: [1,5]
//
// Error cases show "error: KIND" instead of sql and args. Messages are
// left out so that rewording an error does not churn the golden files.
func Snapshot(r *Result) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", r.Suite)
	for _, c := range r.Cases {
		fmt.Fprintf(&buf, "\n== %s\n", c.Name)
		if c.Error != "" {
			fmt.Fprintf(&buf, "error: %s\n", c.Error)
			continue
		}
		fmt.Fprintf(&buf, "sql: %s\n", c.SQL)
		fmt.Fprintf(&buf, "args: %s\n", encodeArgs(c.Args))
		if c.Rows != nil {
			fmt.Fprintf(&buf, "rows: %s\n", encodeArgs(c.Rows))
		}
	}
	return buf.Bytes()
}

// RunWithGolden executes a suite, fails the test for every unmet
// expectation and compares the snapshot against a golden file.
// The golden file is stored in testdata/golden/{suite.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, suite *Suite) (*Result, error) {
	t.Helper()

	result, err := Run(suite)
	if err != nil {
		return nil, err
	}
	for _, c := range result.Failed() {
		for _, f := range c.Failures {
			t.Errorf("%s/%s: %s", suite.Name, c.Name, f)
		}
	}

	AssertGolden(t, suite.Name, result)
	return result, nil
}

// AssertGolden compares the snapshot of an existing result against the
// golden file for name.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(result))
}
