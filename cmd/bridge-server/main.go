package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/jessevdk/go-flags"

	"goBridge/internal/config"
	"goBridge/internal/engine"
	"goBridge/internal/host/memhost"
	"goBridge/internal/host/pgcatalog"
	"goBridge/internal/host/sqlcatalog"
	"goBridge/internal/logging"
	"goBridge/internal/sql"
)

type options struct {
	Config  string `short:"c" long:"config" env:"BRIDGE_CONFIG" description:"config file (.toml, .yml or .yaml)"`
	Backend string `short:"b" long:"backend" env:"BRIDGE_BACKEND" description:"catalog backend" choice:"memory" choice:"sql" choice:"postgres"`
	DSN     string `long:"dsn" env:"BRIDGE_DSN" description:"catalog connection string"`
	Script  string `short:"f" long:"file" description:"script file with ';' separated statements"`
	Dbg     bool   `long:"dbg" env:"BRIDGE_DEBUG" description:"debug mode"`

	PositionalArgs struct {
		Statements []string `positional-arg-name:"statement" description:"statements to run"`
	} `positional-args:"yes"`
}

// demoScript runs when no statements are given.
const demoScript = `
CREATE TYPE color AS ENUM ('red', 'green', 'blue');
SELECT ENUM color;
CAST 'green' AS color;
BEGIN;
ALTER TYPE color ADD VALUE 'purple';
SELECT ENUM color;
DO COPY color;
COMMIT;
VACUUM;
`

func main() {
	fmt.Println("bridge server starting…")

	var opts options
	p := flags.NewParser(&opts, flags.PrintErrors|flags.PassDoubleDash|flags.HelpFlag)
	if _, err := p.Parse(); err != nil {
		os.Exit(1)
	}

	if err := run(opts, os.Stdout); err != nil {
		fmt.Println(color.New(color.FgHiRed).Sprintf("ERROR: %v", err))
		os.Exit(1)
	}
}

func run(opts options, out io.Writer) (err error) {
	cfg := config.Default()
	if opts.Config != "" {
		if cfg, err = config.Load(opts.Config); err != nil {
			return err
		}
	}
	if opts.Backend != "" {
		cfg.Catalog.Backend = opts.Backend
	}
	if opts.DSN != "" {
		cfg.Catalog.DSN = opts.DSN
	}
	cfg.Debug = cfg.Debug || opts.Dbg
	if err := config.Validate(cfg); err != nil {
		return err
	}
	logging.Setup(cfg.Debug, out, os.Stderr)

	h, closeHost, err := makeHost(cfg)
	if err != nil {
		return fmt.Errorf("can't make catalog: %w", err)
	}
	defer func() {
		if cerr := closeHost(); cerr != nil {
			err = multierror.Append(err, cerr).ErrorOrNil()
		}
	}()

	sess, err := engine.New(h, engine.Options{
		CacheSize:       cfg.Session.TypeCacheSize,
		StandaloneKinds: cfg.Session.StandaloneKinds,
	})
	if err != nil {
		return err
	}
	if err := sess.Start(); err != nil {
		return err
	}
	log.Printf("[INFO] session %s started, catalog backend %s", sess.ID(), cfg.Catalog.Backend)

	stmts, err := statements(opts)
	if err != nil {
		return err
	}
	for _, q := range stmts {
		fmt.Fprintf(out, "\n> %s\n", q)
		cols, rows, err := sess.Run(q)
		if err != nil {
			// keep going so later statements can ROLLBACK
			fmt.Fprintln(out, color.New(color.FgRed).Sprintf("ERROR: %v", err))
			continue
		}
		printRows(out, cols, rows)
	}
	return nil
}

// makeHost wires the transaction host and the configured catalog backend.
func makeHost(cfg config.Config) (engine.Host, func() error, error) {
	mh := memhost.New()
	h := engine.Host{Catalog: mh, DDL: mh, Xact: mh, Invalidator: mh}

	switch cfg.Catalog.Backend {
	case config.BackendSQL:
		c, err := sqlcatalog.Open(cfg.Catalog.DSN)
		if err != nil {
			return engine.Host{}, nil, err
		}
		h.Catalog, h.DDL, h.Invalidator = c, c, c
		return h, c.Close, nil
	case config.BackendPostgres:
		c, err := pgcatalog.Open(context.Background(), cfg.Catalog.DSN, cfg.Catalog.LookupTimeout.Duration)
		if err != nil {
			return engine.Host{}, nil, err
		}
		h.Catalog, h.DDL, h.Invalidator = c, c, c
		return h, func() error { c.Close(); return nil }, nil
	default:
		return h, func() error { return nil }, nil
	}
}

// statements returns positional statements, else the script file, else the demo.
func statements(opts options) ([]string, error) {
	if len(opts.PositionalArgs.Statements) > 0 {
		return opts.PositionalArgs.Statements, nil
	}
	if opts.Script != "" {
		data, err := os.ReadFile(opts.Script) // nolint
		if err != nil {
			return nil, fmt.Errorf("can't read script %s: %w", opts.Script, err)
		}
		return sql.SplitScript(string(data)), nil
	}
	return sql.SplitScript(demoScript), nil
}

func printRows(out io.Writer, cols []string, rows []engine.Row) {
	if len(cols) == 0 {
		fmt.Fprintln(out, "OK")
		return
	}
	fmt.Fprintln(out, strings.Join(cols, " | "))
	for _, row := range rows {
		parts := make([]string, 0, len(row))
		for _, v := range row {
			parts = append(parts, v.String())
		}
		fmt.Fprintln(out, strings.Join(parts, " | "))
	}
}
