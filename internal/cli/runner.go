package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/todoview/internal/config"
	"github.com/idilsaglam/todoview/internal/listview"
	"github.com/idilsaglam/todoview/internal/logging"
	"github.com/idilsaglam/todoview/internal/store/jsonstore"
	"github.com/idilsaglam/todoview/internal/store/remote"
	"github.com/idilsaglam/todoview/internal/ui"
)

// Exit codes: 0 ok, 1 runtime error, 2 usage.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// usageError marks errors caused by how the command was invoked.
type usageError struct {
	msg  string
	hint string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// app is the per-invocation wiring built once flags are parsed.
type app struct {
	cfg    *config.Config
	log    *log.Logger
	closer io.Closer
	store  listview.Store
	source string
	out    io.Writer
	errOut io.Writer

	// newStore is swapped in tests.
	newStore func(cfg *config.Config, logger *log.Logger) (listview.Store, string, error)
}

func (a *app) holder() *listview.Holder {
	return listview.New(a.store, listview.Options{
		Logger:            a.log,
		DeleteConcurrency: a.cfg.DeleteConcurrency,
		Params:            a.cfg.Params(),
	})
}

func (a *app) setup(flags config.Flags, cmd *cobra.Command, noColor bool) error {
	cfg, err := config.Load(flags, cmd.Flags())
	if err != nil {
		return &usageError{msg: "config: " + err.Error(), hint: "check your todo.toml, TODO_* variables and flags"}
	}
	a.cfg = cfg

	if noColor {
		ui.SetColorForcing(false, true)
	}
	if err := ui.SetTheme(cfg.Theme); err != nil {
		return usagef("config: %v", err)
	}

	logger, closer, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	a.log, a.closer = logger, closer
	logger.Debug("config loaded", "store", cfg.Store, "files", cfg.Files)

	store, source, err := a.newStore(cfg, logger)
	if err != nil {
		return usagef("%v", err)
	}
	a.store, a.source = store, source
	return nil
}

func (a *app) close() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

func defaultStore(cfg *config.Config, logger *log.Logger) (listview.Store, string, error) {
	if cfg.Store == config.StoreFile {
		s, err := jsonstore.New(cfg.File)
		if err != nil {
			return nil, "", err
		}
		return s, s.Path(), nil
	}
	c, err := remote.New(remote.Options{
		BaseURL:   cfg.APIURL,
		ItemsPath: cfg.ItemsPath,
		Timeout:   cfg.RequestTimeout(),
		Logger:    logger,
	})
	if err != nil {
		return nil, "", err
	}
	return c, c.Endpoint(), nil
}

// Run executes the command line and returns an exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{out: stdout, errOut: stderr, newStore: defaultStore}
	return run(ctx, a, args)
}

func run(ctx context.Context, a *app, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	defer a.close()

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	var ue *usageError
	if errors.As(err, &ue) {
		ui.Fail(a.errOut, ue.msg)
		if ue.hint != "" {
			ui.Hint(a.errOut, ue.hint)
		}
		return ExitUsage
	}
	ui.Fail(a.errOut, err.Error())
	if remote.IsNotFound(err) || errors.Is(err, jsonstore.ErrNotFound) {
		ui.Hint(a.errOut, "the item is no longer in the store; "+indexHint)
	}
	if a.log != nil {
		a.log.Error("command failed", "args", args, "err", err)
	}
	return ExitError
}
