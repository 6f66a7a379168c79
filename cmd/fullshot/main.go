// Package main provides the fullshot command: full-page screenshots of one
// URL or of every page listed in a YAML job file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/entrhq/fullshot/pkg/browser"
	"github.com/entrhq/fullshot/pkg/browser/cdp"
	"github.com/entrhq/fullshot/pkg/config"
	"github.com/entrhq/fullshot/pkg/job"
	"github.com/entrhq/fullshot/pkg/logging"
	"github.com/entrhq/fullshot/pkg/screenshot"
	"github.com/entrhq/fullshot/pkg/sizes"
)

const (
	version     = "0.1.0"
	sessionName = "fullshot"
)

var (
	_ job.Target = waitingSession{}
	_ job.Target = (*cdp.Page)(nil)
)

// stringList collects a repeatable flag.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ", ")
}

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// CLIConfig holds command-line configuration
type CLIConfig struct {
	URL         string
	Name        string
	Size        string
	Scale       float64
	Backend     string
	Headless    bool
	Stealth     bool
	RemoteURL   string
	OutputDir   string
	Format      string
	Quality     int
	Tolerance   int
	Settle      time.Duration
	CallTimeout time.Duration
	Timeout     time.Duration
	WaitUntil   string
	Cookies     stringList
	Scripts     stringList
	JobFile     string
	Only        string
	ConfigFile  string
	SaveConfig  bool
	LogLevel    string
	ShowVersion bool

	// set holds the names of flags given on the command line.
	set map[string]bool
}

func main() {
	cliConfig, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if cliConfig.ShowVersion {
		fmt.Printf("fullshot v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nStopping after the current step...")
		cancel()
	}()

	if err := run(ctx, cliConfig, os.Stdout); err != nil {
		cancel()
		log.Printf("fullshot failed: %v", err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses args into a CLIConfig. Flag defaults match the config
// defaults; only flags present in args override the config file.
func parseFlags(fs *flag.FlagSet, args []string) (*CLIConfig, error) {
	cli := &CLIConfig{}

	fs.StringVar(&cli.URL, "url", "", "Page to capture")
	fs.StringVar(&cli.Name, "name", "", "Output file name (default: derived from the URL)")
	fs.StringVar(&cli.Size, "size", "", "Viewport as WxH (default: browser.window_size)")
	fs.Float64Var(&cli.Scale, "scale", 0, "Device scale factor to emulate (default: browser default)")
	fs.StringVar(&cli.Backend, "backend", config.BackendPlaywright, "Browser backend: playwright or rod")
	fs.BoolVar(&cli.Headless, "headless", true, "Run the browser without a window")
	fs.BoolVar(&cli.Stealth, "stealth", false, "Apply anti-detection patches (rod only)")
	fs.StringVar(&cli.RemoteURL, "remote", "", "DevTools URL of a running browser (rod only)")
	fs.StringVar(&cli.OutputDir, "out", "", "Output directory (default: system temp directory)")
	fs.StringVar(&cli.Format, "format", "png", "Output format: png, jpeg or pdf")
	fs.IntVar(&cli.Quality, "quality", 90, "JPEG quality (1-100)")
	fs.IntVar(&cli.Tolerance, "tolerance", screenshot.DefaultTolerance, "Height difference in px treated as already full page")
	fs.DurationVar(&cli.Settle, "settle", screenshot.DefaultSettleDelay, "Wait after each scroll before capturing")
	fs.DurationVar(&cli.CallTimeout, "call-timeout", screenshot.DefaultCallTimeout, "Timeout for each browser call while capturing")
	fs.DurationVar(&cli.Timeout, "timeout", 30*time.Second, "Navigation timeout")
	fs.StringVar(&cli.WaitUntil, "wait-until", "load", "Navigation wait: load, domcontentloaded or networkidle (playwright only)")
	fs.Var(&cli.Cookies, "cookie", "Cookie to set before capturing, repeatable (\"name=value; path=/\")")
	fs.Var(&cli.Scripts, "script", "JavaScript to run before capturing, repeatable")
	fs.StringVar(&cli.JobFile, "job", "", "YAML job file listing pages to capture")
	fs.StringVar(&cli.Only, "only", "", "Only capture job pages whose name matches this glob")
	fs.StringVar(&cli.ConfigFile, "config", "", "Path to configuration file (default: ~/.fullshot/config.json)")
	fs.BoolVar(&cli.SaveConfig, "save-config", false, "Write the effective capture and browser settings to the config file")
	fs.StringVar(&cli.LogLevel, "log-level", "info", "Log level: debug, info, warn or error")
	fs.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "fullshot - full-page screenshots\n\n")
		fmt.Fprintf(out, "Usage: fullshot [options]\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  # Capture one page\n")
		fmt.Fprintf(out, "  fullshot -url https://example.com -out shots\n\n")
		fmt.Fprintf(out, "  # Capture a mobile viewport at 3x as JPEG\n")
		fmt.Fprintf(out, "  fullshot -url https://example.com -size 390x844 -scale 3 -format jpeg\n\n")
		fmt.Fprintf(out, "  # Make rod with stealth the default for later runs\n")
		fmt.Fprintf(out, "  fullshot -backend rod -stealth -save-config\n\n")
		fmt.Fprintf(out, "  # Run the checkout pages of a job file through Chrome DevTools\n")
		fmt.Fprintf(out, "  fullshot -job pages.yaml -only 'Checkout*' -backend rod\n\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cli.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		cli.set[f.Name] = true
	})
	return cli, nil
}

// run captures the requested pages.
func run(ctx context.Context, cli *CLIConfig, stdout io.Writer) error {
	logger, err := logging.NewLogger("fullshot")
	if err != nil {
		// NewLogger already fell back to stderr.
		logger.Warnf("continuing without a log file")
	}
	defer logger.Close()

	level, err := logging.ParseLevel(cli.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: %w", sizes.ErrConfiguration, err)
	}
	logger.SetLevel(level)

	if err := config.Initialize(cli.ConfigFile); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	capture := config.GetCapture()
	browserConfig := config.GetBrowser()

	if err := applyOverrides(cli, capture, browserConfig); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cli.SaveConfig {
		if err := saveConfig(config.Global(), stdout); err != nil {
			return err
		}
		if cli.URL == "" && cli.JobFile == "" {
			return nil
		}
	}

	jobConfig, err := buildJob(cli, capture, browserConfig)
	if err != nil {
		return err
	}
	if err := jobConfig.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	pages, err := jobConfig.Filter(cli.Only)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("%w: no page matches %q", sizes.ErrConfiguration, cli.Only)
	}

	console := newConsole(stdout)
	console.header(version, browserConfig.Backend, len(pages))
	logger.Infof("capturing %d page(s) with %s (log session %s)", len(pages), browserConfig.Backend, logger.SessionID())

	target, closeTarget, err := openTarget(ctx, browserConfig, cli.Scale, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeTarget(); err != nil {
			logger.Warnf("closing browser: %v", err)
		}
	}()

	runner, err := job.NewRunner(target, jobConfig, capture.CapturerOptions(),
		job.WithLogger(logger.With("capture")),
		job.WithReporter(console),
	)
	if err != nil {
		return err
	}

	results, err := runner.Run(ctx, pages)
	console.summary(len(results), len(pages))
	return err
}

// applyOverrides copies the flags given on the command line over the
// loaded configuration and revalidates it.
func applyOverrides(cli *CLIConfig, capture *config.CaptureSection, browserConfig *config.BrowserSection) error {
	captureData := map[string]interface{}{}
	browserData := map[string]interface{}{}

	for name := range cli.set {
		switch name {
		case "tolerance":
			captureData["tolerance"] = cli.Tolerance
		case "settle":
			captureData["settle_delay"] = cli.Settle
		case "call-timeout":
			captureData["call_timeout"] = cli.CallTimeout
		case "format":
			captureData["format"] = normalizeFormat(cli.Format)
		case "quality":
			captureData["quality"] = cli.Quality
		case "backend":
			browserData["backend"] = cli.Backend
		case "headless":
			browserData["headless"] = cli.Headless
		case "stealth":
			browserData["stealth"] = cli.Stealth
		case "remote":
			browserData["remote_url"] = cli.RemoteURL
		case "size":
			browserData["window_size"] = cli.Size
		case "timeout":
			browserData["timeout"] = cli.Timeout
		case "wait-until":
			browserData["wait_until"] = cli.WaitUntil
		}
	}

	if err := capture.SetData(captureData); err != nil {
		return err
	}
	if err := browserConfig.SetData(browserData); err != nil {
		return err
	}
	return errors.Join(capture.Validate(), browserConfig.Validate())
}

// saveConfig persists every section of manager and reports where.
func saveConfig(manager *config.Manager, out io.Writer) error {
	if err := manager.SaveAll(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	if store, ok := manager.Store().(*config.FileStore); ok {
		fmt.Fprintln(out, tipsStyle.Render("configuration saved to "+store.Path()))
	}
	return nil
}

// normalizeFormat accepts "jpg" for the config's "jpeg".
func normalizeFormat(format string) string {
	if strings.EqualFold(format, "jpg") {
		return "jpeg"
	}
	return strings.ToLower(format)
}

// buildJob loads the job file, or describes the single -url page. Job file
// values win over the configuration; flags win over both.
func buildJob(cli *CLIConfig, capture *config.CaptureSection, browserConfig *config.BrowserSection) (*job.Config, error) {
	format, quality := capture.Output()

	var jobConfig *job.Config
	switch {
	case cli.JobFile != "":
		if cli.URL != "" {
			return nil, fmt.Errorf("%w: -url and -job are mutually exclusive", sizes.ErrConfiguration)
		}
		loaded, err := job.Load(cli.JobFile)
		if err != nil {
			return nil, err
		}
		jobConfig = loaded

		if cli.set["format"] {
			jobConfig.Format = format
		}
		if cli.set["quality"] {
			jobConfig.Quality = quality
		}
	case cli.URL != "":
		name := cli.Name
		if name == "" {
			name = pageName(cli.URL)
		}
		jobConfig = job.DefaultConfig()
		jobConfig.Format = format
		jobConfig.Quality = quality
		jobConfig.Pages = []job.Page{{
			Name:    name,
			URL:     cli.URL,
			Cookies: cli.Cookies,
			Scripts: cli.Scripts,
		}}
	default:
		return nil, fmt.Errorf("%w: either -url or -job is required", sizes.ErrConfiguration)
	}

	if cli.set["out"] || jobConfig.OutputDir == "" {
		jobConfig.OutputDir = cli.OutputDir
	}
	if cli.set["size"] || jobConfig.Size == "" {
		jobConfig.Size = browserConfig.WindowSize
	}
	return jobConfig, nil
}

// pageName names a page after its URL without the scheme.
func pageName(url string) string {
	if _, rest, ok := strings.Cut(url, "://"); ok {
		url = rest
	}
	url = strings.TrimSuffix(url, "/")
	if url == "" || url == "-" {
		return "page"
	}
	return url
}

// openTarget starts the configured browser backend with one page.
func openTarget(ctx context.Context, browserConfig *config.BrowserSection, scale float64, logger *logging.Logger) (job.Target, func() error, error) {
	window, err := browserConfig.Window()
	if err != nil {
		return nil, nil, err
	}

	switch browserConfig.Backend {
	case config.BackendRod:
		logger.Debugf("launching chrome (headless=%v stealth=%v remote=%q)",
			browserConfig.Headless, browserConfig.Stealth, browserConfig.RemoteURL)
		page, err := cdp.Launch(ctx, cdp.Options{
			Headless:          browserConfig.Headless,
			Stealth:           browserConfig.Stealth,
			RemoteURL:         browserConfig.RemoteURL,
			Viewport:          window,
			DeviceScaleFactor: scale,
			Timeout:           browserConfig.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return page, page.Close, nil

	default:
		logger.Debugf("starting playwright chromium (headless=%v)", browserConfig.Headless)
		manager := browser.NewSessionManager()
		if err := manager.Initialize(); err != nil {
			return nil, nil, err
		}
		session, err := manager.StartSession(sessionName, browser.SessionOptions{
			Headless:          browserConfig.Headless,
			Viewport:          window,
			DeviceScaleFactor: scale,
			Timeout:           browserConfig.Timeout,
		})
		if err != nil {
			return nil, nil, errors.Join(err, manager.Shutdown())
		}
		target := waitingSession{Session: session, opts: browser.NavigateOptions{WaitUntil: browserConfig.WaitUntil}}
		return target, func() error {
			return errors.Join(manager.CloseSession(sessionName), manager.Shutdown())
		}, nil
	}
}

// waitingSession navigates with the configured wait condition.
type waitingSession struct {
	*browser.Session
	opts browser.NavigateOptions
}

func (w waitingSession) Navigate(ctx context.Context, url string) error {
	return w.NavigateWith(ctx, url, w.opts)
}
