package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/five82/ferry/internal/api"
	"github.com/five82/ferry/internal/config"
	"github.com/five82/ferry/internal/prefs"
	"github.com/five82/ferry/internal/state"
	"github.com/five82/ferry/internal/ui"
)

// Options configure the ferry application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/ferry/prefs.toml
	APIURL     string // overrides config and FERRY_API_URL when set
	PollEvery  int    // seconds; zero uses default
}

// Run boots the ferry UI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if u := strings.TrimSpace(opts.APIURL); u != "" {
		cfg.APIURL = u
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	diagnostics, closeLog, err := openDiagnostics(cfg.DiagnosticsLogPath())
	if err != nil {
		return fmt.Errorf("open diagnostics log: %w", err)
	}
	defer closeLog()

	// The terminal belongs to the UI; route package-level logging to the
	// diagnostics file as well.
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(diagnostics.Writer())
	log.SetFlags(diagnostics.Flags())
	defer func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	}()

	client, err := newClient(cfg, diagnostics)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	store := &state.Store{}

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	// Populate the store before the UI draws its first frame.
	_ = refresh(ctx, store, client)
	StartPoller(ctx, store, client, interval)

	uiOpts := ui.Options{
		Context:         ctx,
		Client:          client,
		Store:           store,
		Config:          &cfg,
		Refresh:         func(ctx context.Context) error { return refresh(ctx, store, client) },
		PollTick:        interval,
		ThemeName:       userPrefs.Theme,
		ViewName:        userPrefs.View,
		PrefsPath:       opts.PrefsPath,
		DiagnosticsPath: cfg.DiagnosticsLogPath(),
	}
	return ui.Run(uiOpts)
}

func newClient(cfg config.Config, logger *log.Logger) (*api.Client, error) {
	return api.NewClient(cfg.APIURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.RequestTimeout),
	)
}

// openDiagnostics opens the append-only log that failed API calls are written
// to. The returned func closes it.
func openDiagnostics(path string) (*log.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return log.New(file, "", log.LstdFlags), func() { _ = file.Close() }, nil
}
