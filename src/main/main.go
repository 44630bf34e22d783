package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"screen-fixed-crop/src/config"
	"screen-fixed-crop/src/eventloop"
	"screen-fixed-crop/src/gui"
	"screen-fixed-crop/src/logutil"
	"screen-fixed-crop/src/notification"
	"screen-fixed-crop/src/output"
	"screen-fixed-crop/src/overlay"
	"screen-fixed-crop/src/ratio"
	"screen-fixed-crop/src/runtimeinit"
	"screen-fixed-crop/src/screenshot"
	"screen-fixed-crop/src/session"
	"screen-fixed-crop/src/tray"
)

const appID = "screen-fixed-crop"

type mainOptions struct {
	width     int
	height    int
	ratio     string
	outputDir string
	hotkey    string
	backend   string
	runOnce   bool
	verbose   bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{appID}
	}
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           appID,
		Short:         "Capture a fixed-size region of the screen",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(*opts, loadOptions(cmd, *opts))
		},
	}

	cmd.Flags().IntVar(&opts.width, "width", 0, "Initial selection width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", 0, "Initial selection height in pixels")
	cmd.Flags().StringVar(&opts.ratio, "ratio", "", "Initial ratio preset (Custom, 16:9, 16:10, 4:3, 1:1)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Directory for saved screenshots")
	cmd.Flags().StringVar(&opts.hotkey, "hotkey", "", "Global capture hotkey, empty to disable")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "Overlay backend (fyne or native)")
	cmd.Flags().BoolVar(&opts.runOnce, "run-once", false, "Capture once without showing the main window, then exit")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")

	return cmd
}

// loadOptions maps flags onto config overrides. --hotkey only overrides when
// given, so an explicit empty value can disable the hotkey.
func loadOptions(cmd *cobra.Command, opts mainOptions) config.LoadOptions {
	lo := config.LoadOptions{
		OutputDirOverride: opts.outputDir,
		RatioOverride:     opts.ratio,
		WidthOverride:     opts.width,
		HeightOverride:    opts.height,
		BackendOverride:   opts.backend,
	}
	if cmd.Flags().Changed("hotkey") {
		hk := opts.hotkey
		lo.HotkeyOverride = &hk
	}
	return lo
}

func runApp(opts mainOptions, lo config.LoadOptions) error {
	// Ensure DPI awareness before creating any windows or querying metrics
	enableDPIAwareness()

	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:  lo,
		SetupLogging: func(cfg *config.Config) { setupLogging(cfg, opts.verbose) },
	})
	if err != nil {
		return err
	}
	logMonitorConfiguration()

	log.Printf("Screen crop tool initialized")
	log.Printf("Output directory: %s", cfg.OutputDir)
	log.Printf("Hotkey: %q, overlay backend: %s", cfg.Hotkey, cfg.OverlayBackend)

	a := app.NewWithID(appID)
	a.SetIcon(tray.Icon)

	launcher, err := newLauncher(cfg, a)
	if err != nil {
		return err
	}

	var loop *eventloop.Loop
	mw := gui.NewMainWindow(a, func() { loop.Request(eventloop.SourceButton) })
	mw.Window().SetIcon(tray.Icon)
	preset, _ := ratio.Parse(cfg.DefaultRatio)
	mw.Preset(preset, ratio.Dimensions{Width: cfg.DefaultWidth, Height: cfg.DefaultHeight})

	sessionOpts := session.Options{
		Window:    mw,
		Capture:   screenshot.CapturePrimary,
		Launcher:  launcher,
		Sink:      output.New(cfg.OutputDir),
		HideDelay: cfg.HideDelay,
	}
	if opts.runOnce {
		// the main window never appears in run-once mode
		sessionOpts.Window = nil
		sessionOpts.HideDelay = 0
	}
	ctrl, err := session.New(sessionOpts)
	if err != nil {
		return err
	}

	notifier := notification.New(a, cfg.NotifyTimeout)

	var tr *tray.Tray
	if !opts.runOnce {
		tr = tray.Setup(a, tray.Actions{
			Capture: func() { loop.Request(eventloop.SourceTray) },
			Show:    mw.Show,
			Quit:    a.Quit,
		})
	}

	var exitErr error
	loop = eventloop.New(eventloop.Options{
		Controller: ctrl,
		Dimensions: mw,
		Notifier:   notifier,
		Status:     tr.SetBusy,
		OnDone: func(src eventloop.Source, out session.Outcome, err error) {
			if src != eventloop.SourceRunOnce {
				return
			}
			exitErr = err
			quitAfter(a, runOnceLinger(out, err, cfg.NotifyTimeout))
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !opts.runOnce {
		if err := loop.StartHotkey(cfg.Hotkey); err != nil {
			log.Printf("HOTKEY: disabled: %v", err)
		}
	}
	go func() {
		if err := loop.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("event loop stopped: %v", err)
		}
	}()

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		fyne.Do(a.Quit)
	}()

	if opts.runOnce {
		a.Lifecycle().SetOnStarted(func() { loop.Request(eventloop.SourceRunOnce) })
	} else {
		if tr != nil {
			// closing the window keeps the tray app running
			mw.Window().SetCloseIntercept(mw.Window().Hide)
		} else {
			mw.Window().SetMaster()
		}
		mw.Window().Show()
	}

	a.Run()
	return exitErr
}

func newLauncher(cfg *config.Config, a fyne.App) (overlay.Launcher, error) {
	surface, err := overlay.NewSurface(cfg.OverlayBackend, a)
	if err != nil {
		return overlay.Launcher{}, err
	}
	fill, err := screenshot.ParseFill(cfg.OutsideFill)
	if err != nil {
		return overlay.Launcher{}, err
	}
	style := overlay.DefaultStyle()
	style.ShowHints = cfg.ShowHints
	return overlay.Launcher{
		Surface: surface,
		Options: overlay.Options{Fill: fill, Style: style},
	}, nil
}

// runOnceLinger is how long a run-once process stays up so its completion
// notification can be read.
func runOnceLinger(out session.Outcome, err error, notify time.Duration) time.Duration {
	if err != nil || out.Cancelled {
		return 0
	}
	return notify
}

func quitAfter(a fyne.App, d time.Duration) {
	if d <= 0 {
		fyne.Do(a.Quit)
		return
	}
	time.AfterFunc(d, func() { fyne.Do(a.Quit) })
}

func setupLogging(cfg *config.Config, verbose bool) {
	opts := logutil.Options{FileLogging: cfg.EnableFileLogging}
	if verbose {
		opts.Console = os.Stderr
	}
	logutil.Setup(opts)
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	long := []string{"width", "height", "ratio", "output-dir", "hotkey", "backend", "run-once", "verbose"}
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range long {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}

	return normalized
}
