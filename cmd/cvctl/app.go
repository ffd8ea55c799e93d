package main

import (
	"context"
	"fmt"

	"github.com/jonathan/cv-editor/internal/config"
	"github.com/jonathan/cv-editor/internal/confirm"
	"github.com/jonathan/cv-editor/internal/logger"
	"github.com/jonathan/cv-editor/internal/session"
	"github.com/jonathan/cv-editor/internal/store"
	"github.com/spf13/cobra"
)

// app holds everything a command needs, built once per invocation.
type app struct {
	cfg      config.Config
	log      *logger.Logger
	client   *store.Client
	sessions *session.Manager
	closers  []func() error
}

// resolveConfig merges flags, environment, config file and built-in defaults, in
// that order of priority.
func resolveConfig() (config.Config, error) {
	merged := config.Config{
		APIURL:    flagAPIURL,
		LogMode:   flagLogMode,
		OutputDir: flagOutputDir,
	}
	merged = merged.MergeWithDefaults(config.FromEnv())

	if flagConfigPath != "" {
		fileCfg, err := config.LoadConfig(flagConfigPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		if err := fileCfg.Validate(); err != nil {
			return config.Config{}, err
		}
		merged = merged.MergeWithDefaults(*fileCfg)
	}

	merged = merged.MergeWithDefaults(config.Default())
	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := resolveConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	client, err := store.New(store.Options{
		BaseURL: cfg.APIURL,
		Timeout: cfg.Timeout(),
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, client: client}

	var backend session.Backend
	if cfg.RedisURL != "" {
		rb, err := session.NewRedisBackend(ctx, cfg.RedisURL, "")
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rb.Close)
		backend = rb
	} else {
		backend = session.NewFileBackend(cfg.SessionFile)
	}

	a.sessions = session.NewManager(backend, log)
	if _, err := a.sessions.Load(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn("failed to release resource", "error", err)
		}
	}
	a.log.Sync()
}

// confirmer returns the confirmation source for one-shot commands.
func (a *app) confirmer(cmd *cobra.Command) confirm.Confirmer {
	if flagYes {
		return confirm.Always(true)
	}
	return &confirm.Prompt{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), RequireTTY: true}
}

// withApp builds the app, runs fn and releases the app afterwards.
func withApp(fn func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(ctx, cmd, a, args)
	}
}
