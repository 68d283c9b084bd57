package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/spinkeep/pkg/daemon"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/config"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/device"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/logging"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/report"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/sampler"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/scheduler"
)

// runKeep registers the given devices and visits them until interrupted.
func runKeep(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		vp.Set("devices", args)
	}

	cfg, err := config.Decode(vp)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.Get("cli")

	if cfg.PIDFile != "" {
		release, err := daemon.Acquire(cfg.PIDFile)
		if err != nil {
			return err
		}
		defer func() {
			if err := release(); err != nil {
				log.Warn("failed to remove pid file", "path", cfg.PIDFile, "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	if getQuiet() {
		out = io.Discard
	}

	return keep(ctx, cfg, report.NewText(out, cmd.ErrOrStderr()), watchConfig)
}

// watchFunc installs a hook that pushes configuration changes to sched.
type watchFunc func(sched *scheduler.Scheduler, current *config.Config)

// keep runs the scheduler over cfg.Devices until ctx is done. A done
// context is a normal shutdown.
func keep(ctx context.Context, cfg *config.Config, rep report.Reporter, watch watchFunc) error {
	log := logging.Get("cli")

	reg := device.NewRegistry()
	defer func() {
		if err := reg.Close(); err != nil {
			log.Warn("failed to close devices", "error", err)
		}
	}()

	registerDevices(reg, cfg.Devices, rep)
	if reg.Len() == 0 {
		log.Warn("no usable devices; idling until interrupted")
	}

	sched, err := scheduler.New(reg, scheduler.Options{
		Window:   cfg.Window(),
		Interval: cfg.PaceInterval(),
		Sampler:  sampler.New(cfg.Seed),
		Reporter: rep,
	})
	if err != nil {
		return err
	}

	if watch != nil {
		watch(sched, cfg)
	}

	if cfg.PIDFile != "" {
		go publishStatus(ctx, daemon.StatusPath(cfg.PIDFile), cfg, reg, sched)
	}

	err = sched.Run(ctx)
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}

// registerDevices registers each path in order. Failures are reported and
// skipped.
func registerDevices(reg *device.Registry, paths []string, rep report.Reporter) {
	for _, path := range paths {
		e, err := reg.Register(path)
		if err != nil {
			rep.RegisterFailed(path, err)
			continue
		}
		rep.Registered(e.Path(), e.Size())
	}
}

// watchConfig reloads the config file on change and applies the new window
// and interval. Other changes take effect on restart.
func watchConfig(sched *scheduler.Scheduler, current *config.Config) {
	if vp.ConfigFileUsed() == "" {
		return
	}

	log := logging.Get("cli")
	vp.OnConfigChange(func(e fsnotify.Event) {
		next, err := config.Decode(vp)
		if err == nil {
			err = next.Validate()
		}
		if err != nil {
			log.Warn("ignoring invalid config change", "file", e.Name, "error", err)
			return
		}

		if err := applyConfig(sched, current, next); err != nil {
			log.Warn("failed to apply config change", "file", e.Name, "error", err)
			return
		}
		log.Info("config reloaded", "file", e.Name, "op", e.Op.String())
	})
	vp.WatchConfig()
}

// applyConfig pushes the live-tunable settings of next to sched.
func applyConfig(sched *scheduler.Scheduler, current, next *config.Config) error {
	if err := sched.SetWindow(next.Window()); err != nil {
		return fmt.Errorf("window: %w", err)
	}
	sched.SetInterval(next.PaceInterval())

	if !slices.Equal(current.Devices, next.Devices) {
		logging.Get("cli").Warn("device list changed; restart to apply",
			"running", current.Devices, "configured", next.Devices)
	}
	return nil
}
