package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/usman-global/usman-books/internal/app"
	"github.com/usman-global/usman-books/internal/reporting"
	"github.com/usman-global/usman-books/internal/store"
)

// ErrImbalanced is returned by check when unbalanced vouchers were found.
var ErrImbalanced = errors.New("usmanctl: ledger has unbalanced vouchers")

// Opener loads the state the commands read from and returns a release func.
type Opener func(ctx context.Context) (*store.Store, func(), error)

// Options configures the command tree.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	// Open is used when --file is not given.
	Open Opener
	Now  func() time.Time
}

type env struct {
	opts    Options
	file    string
	jsonOut bool
	redis   string
	st      *store.Store
	release func()
	reports *reporting.Service
}

// NewRootCommand builds the usmanctl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Open == nil {
		opts.Open = openFromConfig
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	e := &env{opts: opts}

	root := &cobra.Command{
		Use:           "usmanctl",
		Short:         "Inspect and export the USMAN GLOBAL books",
		Long:          "Reads the committed books from PostgreSQL, or from a state file given with --file, and prints reports.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.release != nil {
				e.release()
			}
		},
	}
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)
	root.PersistentFlags().StringVar(&e.file, "file", "", "State file to read instead of the configured database")
	root.PersistentFlags().BoolVar(&e.jsonOut, "json", false, "Print JSON instead of a table")

	root.AddCommand(
		newReportCommand(e),
		newLedgerCommand(e),
		newCheckCommand(e),
		newDumpCommand(e),
		newJobsCommand(e),
	)
	return root
}

// load opens the state once per invocation.
func (e *env) load(ctx context.Context) (*store.Store, error) {
	if e.st != nil {
		return e.st, nil
	}
	if e.file != "" {
		st, err := store.LoadFile(e.file)
		if err != nil {
			return nil, err
		}
		e.st = store.New(store.WithState(st))
	} else {
		st, release, err := e.opts.Open(ctx)
		if err != nil {
			return nil, err
		}
		e.st, e.release = st, release
	}
	e.reports = reporting.NewService(e.st, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.reports.WithNow(e.opts.Now)
	return e.st, nil
}

func openFromConfig(ctx context.Context) (*store.Store, func(), error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Persistent() && cfg.SeedFile == "" {
		return nil, nil, errors.New("usmanctl: set PG_DSN, SQLITE_PATH or SEED_FILE, or pass --file")
	}
	// Reports only read; skip Redis so the CLI does not need it.
	cfg.RedisAddr = ""
	container, err := app.NewContainer(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return nil, nil, err
	}
	return container.Store, container.Close, nil
}
