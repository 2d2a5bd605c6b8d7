package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/jessevdk/go-flags"

	"github.com/pkordes/eld-logbook/internal/hos"
	"github.com/pkordes/eld-logbook/internal/routing"
	"github.com/pkordes/eld-logbook/internal/service"
)

// Exit codes.
const (
	ExitOK     = 0
	ExitFailed = 1 // a trip could not be scheduled
	ExitUsage  = 2
)

// App runs hosplan commands, writing results to Stdout and diagnostics to
// Stderr.
type App struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run parses args (without the program name) and executes the selected
// command. It returns the process exit code.
func (a App) Run(ctx context.Context, args []string) int {
	opts := NewOptions()
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "hosplan"
	if _, err := parser.ParseArgs(args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			fmt.Fprintln(a.Stdout, err)
			return ExitOK
		}
		fmt.Fprintln(a.Stderr, err)
		return ExitUsage
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(a.Stderr, &slog.HandlerOptions{Level: level})))

	scheduler, err := hos.NewScheduler(hos.PropertyCarrying70)
	if err != nil {
		fmt.Fprintln(a.Stderr, err)
		return ExitFailed
	}

	if parser.Active == nil {
		parser.WriteHelp(a.Stderr)
		return ExitUsage
	}
	switch parser.Active.Name {
	case "schedule":
		err = a.schedule(ctx, opts, scheduler)
	case "batch":
		err = a.batch(ctx, opts, scheduler)
	}
	if err != nil {
		fmt.Fprintln(a.Stderr, "hosplan:", err)
		return ExitFailed
	}
	return ExitOK
}

func (a App) schedule(ctx context.Context, opts *Options, scheduler *hos.Scheduler) error {
	tf, err := ReadTripFile(opts.Schedule.File)
	if err != nil {
		return err
	}
	provider, err := providerFor(opts, tf)
	if err != nil {
		return err
	}
	log, err := service.NewPlanService(nil, nil, provider, scheduler).Preview(ctx, tf.Input(), nil)
	if err != nil {
		return err
	}
	return render(a.Stdout, opts.Schedule.Format, log)
}

// errBatchFailed reports that the summary contains failed trips.
var errBatchFailed = errors.New("one or more trips could not be scheduled")

func (a App) batch(ctx context.Context, opts *Options, scheduler *hos.Scheduler) error {
	files := opts.Batch.Args.Files
	reqs := make([]hos.Request, len(files))
	prepErr := make([]error, len(files))

	for i, path := range files {
		tf, err := ReadTripFile(path)
		if err != nil {
			prepErr[i] = err
			continue
		}
		provider, err := providerFor(opts, tf)
		if err != nil {
			prepErr[i] = err
			continue
		}
		in := tf.Input()
		route, err := service.NewPlanService(nil, nil, provider, scheduler).Route(ctx, in)
		if err != nil {
			prepErr[i] = err
			continue
		}
		reqs[i] = hos.Request{Input: in, Route: route}
	}

	results, err := scheduler.ScheduleBatch(ctx, reqs, opts.Batch.Workers)
	if err != nil {
		return err
	}

	failed := false
	tw := tabwriter.NewWriter(a.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tDAYS\tMILES\tCYCLE LEFT\tRESULT")
	for i, path := range files {
		res := results[i]
		if prepErr[i] != nil {
			res = hos.Result{Err: prepErr[i]}
		}
		if res.Err != nil {
			failed = true
			fmt.Fprintf(tw, "%s\t-\t-\t-\t%v\n", path, res.Err)
			continue
		}
		days := res.Log.Days
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\tok\n",
			path, len(days), res.Log.TotalMiles, days[len(days)-1].CycleHoursRemaining)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if failed {
		return errBatchFailed
	}
	return nil
}

// providerFor answers from the file's legs first and falls back to
// OpenRouteService when a key is configured.
func providerFor(opts *Options, tf TripFile) (routing.Provider, error) {
	static, err := routing.NewStatic(tf.Routes)
	if err != nil {
		return nil, err
	}
	if opts.ORSKey == "" {
		return static, nil
	}
	ors, err := routing.NewORS(routing.ORSConfig{
		APIKey:            opts.ORSKey,
		BaseURL:           opts.ORSBaseURL,
		RequestsPerSecond: 1,
		Burst:             2,
	})
	if err != nil {
		return nil, err
	}
	return routing.Fallback{Primary: static, Secondary: ors}, nil
}
