package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idilsaglam/checklist/internal/catalog"
	"github.com/idilsaglam/checklist/internal/config"
	"github.com/idilsaglam/checklist/internal/logging"
	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/session"
	"github.com/idilsaglam/checklist/internal/store/kv"
	"github.com/idilsaglam/checklist/internal/ui"
)

// Exit codes: 0 ok, 1 error, 2 usage.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// usageError marks errors caused by how the command was invoked.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usage(format string, a ...any) error {
	return usageError{fmt.Errorf(format, a...)}
}

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// rootFlags override configuration values for one invocation.
type rootFlags struct {
	configPath string
	dataDir    string
	catalog    string
	backend    string
	view       string
}

// app is what every subcommand works against once PersistentPreRunE ran.
type app struct {
	flags   rootFlags
	cfg     *config.Config
	log     *zap.Logger
	store   *kv.Store
	catalog *model.Catalog
	session *session.Session
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	root, a := newRootCmd()
	defer a.close()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		ui.Fail(stderr, err.Error())
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(stderr)
			fmt.Fprint(stderr, root.UsageString())
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "checklist",
		Short: "checklist - track progress through a catalog of lists",
		Long: `checklist keeps a persistent, per-list record of which catalog entries
you have completed. Without a subcommand it opens the interactive view.`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI()
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "config file (default $HOME/.checklist/config.yaml)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "directory holding saved progress")
	pf.StringVar(&a.flags.catalog, "catalog", "", "catalog file (YAML or JSON); empty uses the bundled catalog")
	pf.StringVar(&a.flags.backend, "backend", "", "storage backend: file, sqlite or memory")
	pf.StringVar(&a.flags.view, "view", "", "view to open (default: first view of the catalog)")

	root.AddCommand(
		newTUICmd(a),
		newListCmd(a),
		newViewsCmd(a),
		newDoneCmd(a),
		newSetCmd(a),
		newAllCmd(a),
		newFilterCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root, a
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return err
	}
	if a.flags.dataDir != "" {
		cfg.DataDir = a.flags.dataDir
	}
	if a.flags.catalog != "" {
		cfg.Catalog.Path = a.flags.catalog
	}
	if a.flags.backend != "" {
		cfg.Storage.Backend = a.flags.backend
	}
	if err := cfg.Validate(); err != nil {
		return usageError{err}
	}
	a.cfg = cfg
	ui.SetTheme(cfg.UI.Theme)

	// The interactive view owns the terminal; keep logs out of it.
	logCfg := logging.Config{Level: cfg.Logger.Level, Encoding: cfg.Logger.Encoding, Output: cfg.Logger.Output}
	interactive := cmd.Name() == "tui" || !cmd.HasParent()
	if logCfg.Output == "" && interactive {
		logCfg.Output = cfg.LogPath()
	}
	log, err := logging.New(logCfg)
	if err != nil {
		if !interactive || cfg.Logger.Output != "" {
			return err
		}
		// unwritable data dir; storage falls back to memory below as well
		log = zap.NewNop()
	}
	a.log = log

	if cfg.Catalog.Path != "" {
		a.catalog, err = catalog.Load(cfg.Catalog.Path)
	} else {
		a.catalog, err = catalog.Default()
	}
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	backend := kv.OpenBackend(cfg.Storage.Backend, cfg.DataDir, log)
	a.store = kv.New(backend, cfg.Storage.CacheSize, log)

	a.session, err = session.New(a.catalog, a.store, log)
	if err != nil {
		return err
	}
	if a.flags.view != "" {
		if err := a.session.SetView(a.flags.view); err != nil {
			return usageError{err}
		}
	}
	log.Debug("session started",
		zap.String("session_id", a.session.ID()),
		zap.String("backend", cfg.Storage.Backend),
		zap.Bool("volatile", a.store.Volatile()))
	return nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil && a.log != nil {
			a.log.Warn("close storage", zap.Error(err))
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}
