package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/roach88/qengine/internal/config"
	"github.com/roach88/qengine/internal/engine"
	"github.com/roach88/qengine/internal/ir"
	"github.com/roach88/qengine/internal/reqctx"
	"github.com/roach88/qengine/internal/schema"
)

// QueryOptions holds the flags shared by commands that process a query.
type QueryOptions struct {
	*RootOptions
	User    string // caller id for [me]
	Tenant  string // caller tenant for [tenant]
	Today   string // YYYY-MM-DD override of the current date
	Dialect string // overrides the configured dialect
	Schema  string // schema file (YAML or CUE)
	DB      string // DSN to introspect the table from
	Table   string // table the query targets
}

// request is a prepared invocation: the raw query, the engine and request
// context built for it, and the merged settings.
type request struct {
	raw    []byte
	engine *engine.Engine
	qc     *reqctx.Context
	cfg    *config.Config
}

func (o *QueryOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.User, "user", "", "caller id substituted for [me]")
	cmd.Flags().StringVar(&o.Tenant, "tenant", "", "caller tenant substituted for [tenant]")
	cmd.Flags().StringVar(&o.Today, "today", "", "compile as if today were this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&o.Dialect, "dialect", "", "SQL dialect (sqlite|postgres)")
	cmd.Flags().StringVar(&o.Schema, "schema", "", "schema file (.yaml, .yml or .cue)")
	cmd.Flags().StringVar(&o.DB, "db", "", "database DSN to read column types from")
	cmd.Flags().StringVar(&o.Table, "table", "", "table the query targets")
}

// settings merges the flags over the loaded configuration.
func (o *QueryOptions) settings() (*config.Config, error) {
	cfg := *o.config()
	if o.Dialect != "" {
		cfg.Dialect = o.Dialect
	}
	if o.Schema != "" {
		cfg.Schema = o.Schema
		cfg.DB = ""
	}
	if o.DB != "" {
		cfg.DB = o.DB
		if o.Schema == "" {
			cfg.Schema = ""
		}
	}
	if o.Table != "" {
		cfg.Table = o.Table
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// buildEngine creates the engine for the merged settings, loading the
// schema file or introspecting the database when one is configured.
func (o *QueryOptions) buildEngine(ctx context.Context, cfg *config.Config) (*engine.Engine, string, error) {
	dialect, err := cfg.SQLDialect()
	if err != nil {
		return nil, ErrCodeConfig, err
	}
	opts := []engine.Option{
		engine.WithDialect(dialect),
		engine.WithLimits(cfg.Limits()),
	}

	switch {
	case cfg.Schema != "":
		s, err := schema.LoadFile(cfg.Schema)
		if err != nil {
			return nil, ErrCodeSchema, err
		}
		opts = append(opts, engine.WithSchema(s))

	case cfg.DB != "":
		if cfg.Table == "" {
			return nil, ErrCodeConfig, fmt.Errorf("--db requires --table")
		}
		db, err := sqlx.Open(driverFor(cfg.DB), cfg.DB)
		if err != nil {
			return nil, ErrCodeSchema, err
		}
		defer db.Close()
		s, err := schema.Introspect(ctx, db, dialect, cfg.Table)
		if err != nil {
			return nil, ErrCodeSchema, err
		}
		opts = append(opts, engine.WithSchema(s))
	}

	return engine.New(opts...), "", nil
}

// driverFor picks the database/sql driver for a DSN.
func driverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	return "sqlite3"
}

// requestContext builds the request context for one invocation.
func (o *QueryOptions) requestContext(e *engine.Engine, cfg *config.Config) (*reqctx.Context, error) {
	opts := []reqctx.Option{
		reqctx.WithUser(o.User),
		reqctx.WithTenant(o.Tenant),
		reqctx.WithTable(cfg.Table),
	}
	if o.Today != "" {
		d, err := ir.ParseDate(o.Today)
		if err != nil {
			return nil, fmt.Errorf("--today: %w", err)
		}
		opts = append(opts, reqctx.WithToday(d))
	}
	return e.NewContext(opts...), nil
}

// readQuery reads the query from path, or from stdin when path is empty
// or "-".
func readQuery(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

func (o *QueryOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// prepare reads the query and builds the engine and request context.
// Failures are reported through f.
func (o *QueryOptions) prepare(cmd *cobra.Command, args []string, f *OutputFormatter) (*request, error) {
	raw, err := readQuery(cmd, args)
	if err != nil {
		return nil, f.Fail(ErrCodeReadFailed, err)
	}

	cfg, err := o.settings()
	if err != nil {
		return nil, f.Fail(ErrCodeConfig, err)
	}
	e, code, err := o.buildEngine(cmd.Context(), cfg)
	if err != nil {
		return nil, f.Fail(code, err)
	}
	qc, err := o.requestContext(e, cfg)
	if err != nil {
		return nil, f.Fail(ErrCodeConfig, err)
	}
	f.VerboseLog("request %s: dialect %s, today %s", qc.RequestID, e.Dialect().Name(), qc.Today())
	return &request{raw: raw, engine: e, qc: qc, cfg: cfg}, nil
}
