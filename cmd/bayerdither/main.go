package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime/trace"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/rusq/bayerdither"
	"github.com/rusq/bayerdither/bitmap"
	"github.com/rusq/bayerdither/cmd/bayerdither/internal/base"
	"github.com/rusq/bayerdither/cmd/bayerdither/internal/cfg"
	"github.com/rusq/bayerdither/cmd/bayerdither/internal/cmddither"
	"github.com/rusq/bayerdither/cmd/bayerdither/internal/cmdmatrix"
	"github.com/rusq/bayerdither/cmd/bayerdither/internal/cmdpattern"
)

func init() {
	root := cmddither.CmdDither
	root.AddCommand(
		// Add commands here.
		cmdmatrix.CmdMatrix,
		cmdpattern.CmdPattern,
	)
	cfg.SetBaseFlags(root.PersistentFlags(), cfg.OmitImageFlags)
	cfg.SetBaseFlags(root.Flags(), cfg.OmitLogFlags)
	root.PersistentPreRunE = initCommand
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	trapSigInfo()

	cmd, err := cmddither.CmdDither.ExecuteContextC(ctx)
	stop()
	if err != nil {
		if cmddither.IsHelpRequest(err) {
			cmd.Help()
			base.SetExitStatus(base.SHelpRequested)
			base.Exit()
		}
		base.SetExitStatus(errStatus(err))
		var ue *bayerdither.UsageError
		if errors.As(err, &ue) {
			cmd.Usage()
		}
		msg := fmt.Sprintf("%03[1]d (%[1]s): %[2]s.", base.ExitStatus(), err)
		slog.Error(msg)
	}
	base.Exit()
}

// errStatus returns the exit status for the error.
func errStatus(err error) base.Status {
	var (
		ue *bayerdither.UsageError
		de *bayerdither.DecodeError
		ee *bayerdither.EncodeError
	)
	switch {
	case err == nil:
		return base.SNoError
	case errors.As(err, &ue), errors.Is(err, bitmap.ErrColors):
		return base.SInvalidParameters
	case errors.Is(err, context.Canceled):
		return base.SCancelled
	case errors.As(err, &de):
		return base.SDecodeError
	case errors.Is(err, bitmap.ErrNotSquare):
		return base.SShapeError
	case errors.Is(err, bitmap.ErrNotPowerOfTwo), errors.Is(err, bitmap.ErrTooLarge):
		return base.SSizeError
	case errors.As(err, &ee):
		return base.SEncodeError
	default:
		return base.SGenericError
	}
}

// initCommand starts tracing and logging once the flags are parsed.
func initCommand(cmd *cobra.Command, args []string) error {
	// maybe start trace
	if err := initTrace(cfg.TraceFile); err != nil {
		base.SetExitStatus(base.SGenericError)
		return fmt.Errorf("failed to start trace: %s", err)
	}

	ctx, task := trace.NewTask(cmd.Context(), "command")
	base.AtExit(task.End)
	cmd.SetContext(ctx)

	// initialise default logging.
	lg, err := initLog(cfg.LogFile, cfg.JSONHandler, cfg.Verbose)
	if err != nil {
		return err
	}
	cfg.Log = lg.With("command", cmd.Name())

	trace.Log(ctx, "command", fmt.Sprint("Running ", cmd.Name(), " command"))
	return nil
}

// initTrace initialises the tracing.  If the filename is not empty, the file
// will be opened, trace will write to that file.  The trace is stopped by
// base.Exit.
func initTrace(filename string) error {
	if filename == "" {
		return nil
	}

	slog.Debug("trace will be written to", "filename", filename)

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := trace.Start(f); err != nil {
		f.Close()
		slog.Warn("failed to start trace", "err", err)
		return nil
	}

	stop := func() {
		trace.Stop()
		if err := f.Close(); err != nil {
			slog.Warn("failed to close trace file", "filename", filename, "error", err)
		}
	}
	base.AtExit(stop)
	return nil
}

// initLog initialises the logging and returns the Logger.  Messages are
// printed to STDERR with colours, unless JSON output is requested.  If the
// filename is not empty, the file will be opened, and the logger output will
// be switched to that file.  The file is closed by base.Exit.
func initLog(filename string, jsonHandler bool, verbose bool) (*slog.Logger, error) {
	level := iftrue(verbose, slog.LevelDebug, slog.LevelInfo)
	var opts = &slog.HandlerOptions{
		Level: level,
	}
	if jsonHandler {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	} else {
		slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    cfg.NoColor,
		})))
	}
	if filename != "" {
		slog.Debug("log messages will be written to file", "filename", filename)
		lf, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
		if err != nil {
			return slog.Default(), fmt.Errorf("failed to create the log file: %w", err)
		}
		log.SetOutput(lf) // redirect the standard log to the file just in case, panics will be logged there.

		var h slog.Handler = slog.NewTextHandler(lf, opts)
		if jsonHandler {
			h = slog.NewJSONHandler(lf, opts)
		}

		sl := slog.New(h)
		slog.SetDefault(sl)
		base.AtExit(func() {
			if err := lf.Close(); err != nil {
				slog.Warn("failed to close the log file", "err", err)
			}
		})
	}

	return slog.Default(), nil
}

func iftrue[T any](cond bool, t T, f T) T {
	if cond {
		return t
	}
	return f
}
