package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"tickd/internal/action"
	"tickd/internal/config"
	"tickd/internal/history"
	"tickd/internal/runner"
	"tickd/internal/schedule"

	logx "tickd/pkg/logx"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config file (yaml or json)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfgPath); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string) error {
	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	logSvc, log := logx.New(loggingConfig(cfg))
	defer logSvc.Close()
	mgr.SetLogger(log.With(logx.String("comp", "config")))

	// Reject a reloaded file whose schedules are all broken before publish.
	mgr.SetValidator(func(_ context.Context, c *config.Config) error {
		return validateSchedules(c)
	})

	reg := schedule.NewRegistry(log.With(logx.String("comp", "registry")))
	loaded, skipped := reg.Rebuild(definitions(cfg))
	log.Info("schedules loaded", logx.Int("loaded", loaded), logx.Int("skipped", skipped))

	histCfg, err := historyConfig(cfg)
	if err != nil {
		return err
	}
	db, err := history.Open(histCfg, log.With(logx.String("comp", "history")))
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer db.Close()

	dsp := action.NewDispatcher(log.With(logx.String("comp", "action")), 50)

	runCfg, err := runnerConfig(cfg)
	if err != nil {
		return err
	}
	svc := runner.New(runCfg, log.With(logx.String("comp", "runner")), reg, dsp, db)
	if runCfg.Enabled {
		svc.Start(ctx)
	} else {
		log.Info("runner disabled by config")
	}

	// Follow the config file; Watch returns when ctx ends.
	updates := mgr.Subscribe(4)
	go func() { _ = mgr.Watch(ctx) }()
	go func() {
		prev := cfg
		for updated := range updates {
			log.Info("config reloaded", logx.String("change", config.SummarizeConfigChange(prev, updated)))
			applyReload(ctx, log, logSvc, reg, svc, updated)
			prev = updated
		}
	}()

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	log.Info("tickd ready", logx.String("config", cfgPath))

	<-ctx.Done()
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	svc.Stop(stopCtx)
	mgr.Unsubscribe(updates)
	return nil
}

func applyReload(ctx context.Context, log logx.Logger, logSvc *logx.Service, reg *schedule.Registry, svc *runner.Service, cfg *config.Config) {
	logSvc.Apply(loggingConfig(cfg))

	loaded, skipped := reg.Rebuild(definitions(cfg))
	log.Info("schedules reloaded", logx.Int("loaded", loaded), logx.Int("skipped", skipped))

	runCfg, err := runnerConfig(cfg)
	if err != nil {
		log.Warn("reload kept previous runner config", logx.Err(err))
		return
	}
	svc.Apply(runCfg)
	if runCfg.Enabled {
		// no-op when the pool is already running
		svc.Start(ctx)
	} else {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		svc.Stop(stopCtx)
		cancel()
	}
}

func validateSchedules(cfg *config.Config) error {
	if len(cfg.Schedules) == 0 {
		return nil
	}
	valid := 0
	var firstErr error
	for _, d := range cfg.Schedules {
		fam, ok := schedule.FamilyByName(d.Type)
		if !ok {
			if firstErr == nil {
				firstErr = fmt.Errorf("schedule %s: unknown type %q", d.ID, d.Type)
			}
			continue
		}
		opts := []schedule.Option{schedule.WithGrammar(fam.Grammar)}
		if fam.RebootSupported {
			opts = append(opts, schedule.WithRebootSupport())
		}
		if _, err := schedule.New(schedule.ID(d.ID), d.Time, opts...); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		valid++
	}
	if valid == 0 {
		return fmt.Errorf("no valid schedule in file: %w", firstErr)
	}
	return nil
}

func loggingConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console || !cfg.Logging.File.Enabled,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func definitions(cfg *config.Config) []schedule.Definition {
	defs := make([]schedule.Definition, 0, len(cfg.Schedules))
	for _, s := range cfg.Schedules {
		defs = append(defs, schedule.Definition{
			ID:     s.ID,
			Time:   s.Time,
			Type:   s.Type,
			Action: s.Action,
			Text:   s.Text,
		})
	}
	return defs
}

func runnerConfig(cfg *config.Config) (runner.Config, error) {
	r := cfg.Runner
	poll, err := config.ParseDurationOrDefault("runner.poll_interval", r.PollInterval, time.Second)
	if err != nil {
		return runner.Config{}, err
	}
	timeout, err := config.ParseDurationField("runner.default_timeout", r.DefaultTimeout)
	if err != nil {
		return runner.Config{}, err
	}
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return runner.Config{
		Enabled:        enabled,
		Workers:        r.Workers,
		QueueSize:      r.QueueSize,
		PollInterval:   poll,
		DefaultTimeout: timeout,
		HistorySize:    r.HistorySize,
		Timezone:       r.Timezone,
	}, nil
}

func historyConfig(cfg *config.Config) (history.Config, error) {
	if cfg.History == nil {
		return history.Config{}, nil
	}
	h := cfg.History
	busy, err := config.ParseDurationField("history.busy_timeout", h.BusyTimeout)
	if err != nil {
		return history.Config{}, err
	}
	retention, err := config.ParseDurationField("history.retention", h.Retention)
	if err != nil {
		return history.Config{}, err
	}
	return history.Config{
		Enabled:     h.Enabled,
		Path:        h.Path,
		BusyTimeout: busy,
		Retention:   retention,
	}, nil
}
