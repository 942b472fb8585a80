// Package bayerdither reduces the colour depth of square, power-of-two sized
// images with ordered (Bayer) dithering and writes the result as a BMP file.
package bayerdither

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime/trace"

	"github.com/looplab/fsm"

	"github.com/rusq/bayerdither/bitmap"
)

// DefaultOutput is the default output filename.
const DefaultOutput = "output.bmp"

// JobState is the state of a dither job.
type JobState string

const (
	JobPending   JobState = "pending"
	JobDecoded   JobState = "decoded"
	JobValidated JobState = "validated"
	JobDithered  JobState = "dithered"
	JobWritten   JobState = "written"
	JobFailed    JobState = "failed"
)

func (s JobState) String() string {
	return string(s)
}

const (
	jobEvtDecode   = "decode"
	jobEvtValidate = "validate"
	jobEvtDither   = "dither"
	jobEvtWrite    = "write"
	jobEvtFail     = "fail" // event args: error
)

/*
	pending --> decoded --> validated --> dithered --> written
	   |           |            |             |
	   +-----------+------------+-------------+-----> failed
*/

var jobFsmEvts = []fsm.EventDesc{
	{
		Name: jobEvtDecode,
		Src:  []string{JobPending.String()},
		Dst:  JobDecoded.String(),
	},
	{
		Name: jobEvtValidate,
		Src:  []string{JobDecoded.String()},
		Dst:  JobValidated.String(),
	},
	{
		Name: jobEvtDither,
		Src:  []string{JobValidated.String()},
		Dst:  JobDithered.String(),
	},
	{
		Name: jobEvtWrite,
		Src:  []string{JobDithered.String()},
		Dst:  JobWritten.String(),
	},
	{
		Name: jobEvtFail,
		Src: []string{
			JobPending.String(),
			JobDecoded.String(),
			JobValidated.String(),
			JobDithered.String(),
		},
		Dst: JobFailed.String(),
	},
}

// Options are the parameters of a dither job.
type Options struct {
	// Colors is the number of output levels per channel.
	Colors int
	// Method is the name of the registered dither function, empty for the
	// default.
	Method string
	// Gamma is the gamma correction applied before dithering,
	// bitmap.DefaultGamma disables it.
	Gamma float64
	// Grayscale reduces colour images to a single channel.
	Grayscale bool
	// AutoOrient applies the EXIF orientation on decode.
	AutoOrient bool
	// Output is the output filename, DefaultOutput if empty.
	Output string
}

// Result describes the written output.
type Result struct {
	Width    int
	Height   int
	Channels int
	Order    uint32
	Output   string
	Size     int64
	Digest   uint64
}

func (r Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("output", r.Output),
		slog.Int("width", r.Width),
		slog.Int("height", r.Height),
		slog.Int("channels", r.Channels),
		slog.Any("order", r.Order),
		slog.Int64("size", r.Size),
		slog.String("digest", fmt.Sprintf("%016x", r.Digest)),
	)
}

// Job is a single dither run: decode the input, validate its shape, dither
// and write the output.
type Job struct {
	Input string
	opts  Options
	fn    bitmap.DitherFunc
	err   error // failure reason

	sm *fsm.FSM
	lg *slog.Logger
}

// NewJob creates a pending job for the input file.  It returns a UsageError
// if the dither method is unknown and bitmap.ErrColors if the number of
// colours is out of range.
func NewJob(input string, opts Options) (*Job, error) {
	fn, ok := bitmap.DitherFunction(opts.Method)
	if !ok {
		return nil, NewUsageError("unknown dither method %q, available: %v", opts.Method, bitmap.AllDitherFunctions())
	}
	if err := bitmap.CheckColors(opts.Colors); err != nil {
		return nil, err
	}
	if opts.Output == "" {
		opts.Output = DefaultOutput
	}
	j := &Job{
		Input: input,
		opts:  opts,
		fn:    fn,
	}
	j.sm = makeJobFSM(j)
	return j, nil
}

func makeJobFSM(j *Job) *fsm.FSM {
	lg := slog.With("input", j.Input, "output", j.opts.Output)
	j.lg = lg
	return fsm.NewFSM(
		JobPending.String(),
		jobFsmEvts,
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				lg.DebugContext(ctx, "job state changed", "from", e.Src, "to", e.Dst)
			},
			jobEvtFail: func(ctx context.Context, e *fsm.Event) {
				if len(e.Args) > 0 {
					if err, ok := e.Args[0].(error); ok {
						j.err = err
					}
				}
				lg.WarnContext(ctx, "job failed", "state", e.Src, "error", j.err)
			},
			jobEvtWrite: func(ctx context.Context, e *fsm.Event) {
				lg.InfoContext(ctx, "job completed")
			},
		},
	)
}

// State returns the current state of the job.
func (j *Job) State() JobState {
	return JobState(j.sm.Current())
}

// Err returns the reason of the failure, if the job has failed.
func (j *Job) Err() error {
	return j.err
}

// Run executes the job.  A job can be run once.
func (j *Job) Run(ctx context.Context) (Result, error) {
	if st := j.State(); st != JobPending {
		return Result{}, fmt.Errorf("job is %s, expected %s", st, JobPending)
	}
	ctx, task := trace.NewTask(ctx, "dither")
	defer task.End()

	var (
		img image.Image
		src *bitmap.Raster
		dst *bitmap.Raster
		res = Result{Output: j.opts.Output}
	)
	stages := []struct {
		evt string
		fn  func() error
	}{
		{jobEvtDecode, func() (err error) {
			img, err = Decode(j.Input, j.opts.AutoOrient)
			return err
		}},
		{jobEvtValidate, func() (err error) {
			src = bitmap.Prepare(img, j.opts.Gamma, j.opts.Grayscale)
			res.Width, res.Height, res.Channels = src.Width, src.Height, src.Channels
			res.Order, err = src.Order()
			return err
		}},
		{jobEvtDither, func() (err error) {
			dst, err = j.fn(src, j.opts.Colors)
			return err
		}},
		{jobEvtWrite, func() (err error) {
			res.Size, res.Digest, err = WriteBMP(j.opts.Output, dst.Image())
			return err
		}},
	}
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return Result{}, j.fail(ctx, err)
		}
		var err error
		trace.WithRegion(ctx, st.evt, func() {
			err = st.fn()
		})
		if err != nil {
			return Result{}, j.fail(ctx, err)
		}
		if err := j.event(ctx, st.evt); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

func (j *Job) fail(ctx context.Context, err error) error {
	if evtErr := j.event(ctx, jobEvtFail, err); evtErr != nil {
		return errors.Join(err, evtErr)
	}
	return err
}

// event sends the event to the state machine.  Transitions complete even if
// ctx is cancelled.
func (j *Job) event(ctx context.Context, evt string, args ...any) error {
	if err := j.sm.Event(context.WithoutCancel(ctx), evt, args...); err != nil {
		return fmt.Errorf("job state %s, event %s: %w", j.State(), evt, err)
	}
	return nil
}
