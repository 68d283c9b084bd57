package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/spinkeep/pkg/daemon"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/config"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/device"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/logging"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/scheduler"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/types"
)

// statusRefresh is how often a running scheduler rewrites its status file.
var statusRefresh = 30 * time.Second

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a scheduler is running",
	Long: `Report whether a spinkeep scheduler owns the configured PID file and,
if so, which devices it visits and how far it has got.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusFormat, "output", "o", "text", "output format (text, json, yaml)")
	rootCmd.AddCommand(statusCmd)
}

// publishStatus writes the status file now and every statusRefresh until
// ctx is done.
func publishStatus(ctx context.Context, path string, cfg *config.Config, reg *device.Registry, sched *scheduler.Scheduler) {
	log := logging.Get("daemon")

	entries := reg.Entries()
	devices := make([]string, len(entries))
	for i, e := range entries {
		devices[i] = e.Path()
	}

	st := &daemon.Status{
		PID:     os.Getpid(),
		RunID:   sched.RunID(),
		Started: time.Now(),
		Devices: devices,
	}

	write := func() {
		st.Updated = time.Now()
		st.Window = sched.Window()
		st.Interval = sched.Interval().String()
		st.Stats = sched.Stats()
		if err := daemon.WriteStatus(path, st); err != nil {
			log.Warn("failed to write status file", "path", path, "error", err)
		}
	}

	write()
	ticker := time.NewTicker(statusRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			write()
		}
	}
}

// runStatus reports on the scheduler that owns the PID file.
func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Decode(vp)
	if err != nil {
		return err
	}
	return writeStatus(cmd.OutOrStdout(), cfg.PIDFile, statusFormat)
}

func writeStatus(w io.Writer, pidPath, format string) error {
	if pidPath == "" {
		fmt.Fprintln(w, "Status: unknown (PID file disabled)")
		return nil
	}

	running := daemon.IsRunning(pidPath)
	st, err := daemon.ReadStatus(daemon.StatusPath(pidPath))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Get("cli").Warn("unreadable status file", "path", daemon.StatusPath(pidPath), "error", err)
	}
	if !running {
		st = nil
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(statusDocument{Running: running, Status: st})
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(statusDocument{Running: running, Status: st}); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
	default:
		return fmt.Errorf("unknown status format: %s", format)
	}

	if !running {
		fmt.Fprintln(w, "Status: not running")
		return nil
	}

	fmt.Fprintln(w, "Status: running")
	if st == nil {
		return nil
	}
	fmt.Fprintf(w, "  PID:      %d\n", st.PID)
	fmt.Fprintf(w, "  Uptime:   %s\n", formatDuration(time.Since(st.Started)))
	fmt.Fprintf(w, "  Window:   %s\n", types.FormatSize(st.Window))
	fmt.Fprintf(w, "  Interval: %s\n", st.Interval)
	fmt.Fprintf(w, "  Visits:   %d (%d read, %d skipped, %d failed)\n",
		st.Stats.Visits, st.Stats.Reads, st.Stats.Skips, st.Stats.Errors)
	fmt.Fprintf(w, "  Read:     %s\n", types.FormatSize(st.Stats.BytesRead))
	if len(st.Devices) > 0 {
		fmt.Fprintln(w, "  Devices:")
		for _, d := range st.Devices {
			fmt.Fprintf(w, "    - %s\n", d)
		}
	}
	return nil
}

type statusDocument struct {
	Running bool           `json:"running" yaml:"running"`
	Status  *daemon.Status `json:"status,omitempty" yaml:"status,omitempty"`
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}
