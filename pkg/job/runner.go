package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/fullshot/pkg/output"
	"github.com/entrhq/fullshot/pkg/screenshot"
	"github.com/entrhq/fullshot/pkg/sizes"
)

// Target is a browser page a job runs against. Both browser backends
// implement it.
type Target interface {
	screenshot.Browser
	Navigate(ctx context.Context, url string) error
	ResizeViewport(ctx context.Context, size sizes.Size) error
	SetCookie(ctx context.Context, cookie string) error
	InjectJavascript(ctx context.Context, script string) (interface{}, error)
}

// Logger is the logging surface of a Runner.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// Reporter is told about progress, typically to print it.
type Reporter interface {
	PageStarted(p Page)
	PageDone(r Result)
	PageFailed(p Page, err error)
}

// Result describes one captured page.
type Result struct {
	Page     Page
	Path     string
	Shot     *screenshot.Shot
	Duration time.Duration
}

// Runner captures the pages of a job one after another on one Target.
type Runner struct {
	target   Target
	capturer *screenshot.Capturer
	writer   *output.Writer
	config   *Config
	logger   Logger
	reporter Reporter
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger. It also receives the capturer's diagnostics.
func WithLogger(logger Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithReporter sets the progress reporter.
func WithReporter(reporter Reporter) RunnerOption {
	return func(r *Runner) {
		r.reporter = reporter
	}
}

// NewRunner validates config and prepares a runner. captureOpts are passed
// to screenshot.New.
func NewRunner(target Target, config *Config, captureOpts []screenshot.CapturerOption, opts ...RunnerOption) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		target:   target,
		config:   config,
		logger:   nopLogger{},
		reporter: nopReporter{},
	}
	for _, opt := range opts {
		opt(r)
	}

	capturer, err := screenshot.New(target, append(captureOpts, screenshot.WithLogger(r.logger))...)
	if err != nil {
		return nil, err
	}
	r.capturer = capturer

	format, err := output.ParseFormat(config.Format)
	if err != nil {
		return nil, err
	}
	r.writer = output.NewWriter(config.OutputDir, output.WithFormat(format), output.WithQuality(config.Quality))
	return r, nil
}

// Run captures pages in order. A failed page is reported and skipped; the
// returned error joins every page failure. Cancelling ctx stops the run
// before the next page.
func (r *Runner) Run(ctx context.Context, pages []Page) ([]Result, error) {
	var (
		results []Result
		errs    []error
	)

	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("run stopped before page %q: %w", p.Name, err))
			break
		}

		r.reporter.PageStarted(p)
		res, err := r.capturePage(ctx, p)
		if err != nil {
			r.logger.Errorf("page %q failed: %v", p.Name, err)
			r.reporter.PageFailed(p, err)
			errs = append(errs, fmt.Errorf("page %q: %w", p.Name, err))
			continue
		}

		r.logger.Infof("page %q saved to %s (%dx%d, %d tiles)", p.Name, res.Path, res.Shot.Width, res.Shot.Height, res.Shot.Tiles)
		r.reporter.PageDone(res)
		results = append(results, res)
	}

	return results, errors.Join(errs...)
}

func (r *Runner) capturePage(ctx context.Context, p Page) (Result, error) {
	start := time.Now()

	size, ok, err := r.config.ViewportFor(p)
	if err != nil {
		return Result{}, err
	}
	if ok {
		if err := r.target.ResizeViewport(ctx, size); err != nil {
			return Result{}, err
		}
	}

	if err := r.target.Navigate(ctx, p.URL); err != nil {
		return Result{}, err
	}

	if len(p.Cookies) > 0 {
		for _, cookie := range p.Cookies {
			if err := r.target.SetCookie(ctx, cookie); err != nil {
				return Result{}, fmt.Errorf("set cookie: %w", err)
			}
		}
		// Reload so the server sees the cookies.
		if p.URL != "-" {
			if err := r.target.Navigate(ctx, p.URL); err != nil {
				return Result{}, err
			}
		}
	}

	for i, script := range p.Scripts {
		if _, err := r.target.InjectJavascript(ctx, script); err != nil {
			return Result{}, fmt.Errorf("script %d: %w", i+1, err)
		}
	}

	shot, err := r.capturer.Capture(ctx)
	if err != nil {
		return Result{}, err
	}

	path, err := r.writer.Write(p.Name, shot)
	if err != nil {
		return Result{}, err
	}

	return Result{Page: p, Path: path, Shot: shot, Duration: time.Since(start)}, nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

type nopReporter struct{}

func (nopReporter) PageStarted(Page)       {}
func (nopReporter) PageDone(Result)        {}
func (nopReporter) PageFailed(Page, error) {}
