package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/spinkeep/pkg/spinkeep/config"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/logging"
)

var (
	cfgFile string

	// vp holds flags, environment, config file and defaults for every
	// subcommand.
	vp = viper.New()

	// configErr is set by initConfig and surfaced by initializeLogging,
	// since cobra initializers cannot fail.
	configErr error

	rootCmd = &cobra.Command{
		Use:   "spinkeep [flags] DEVICE...",
		Short: "Keep disks from parking their heads",
		Long: `spinkeep keeps hard disks busy so they do not park their heads or
spin down. It visits each device in turn, reads one 64 KiB block at a
random offset, and pauses between visits. An offset close to the
previous one on the same device is not read, so the disk's own cache
does not absorb the access.

Examples:
  spinkeep /dev/sda /dev/sdb        # keep two disks busy
  spinkeep -t 10 -r 65536 /dev/sda  # 10 s pause, 64 MiB guard window
  spinkeep probe /dev/sd?           # check which devices can be used
  spinkeep status                   # is a scheduler running?`,
		Args:              cobra.ArbitraryArgs,
		RunE:              runKeep,
		PersistentPreRunE: initializeLogging,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ~/.config/spinkeep/config.yaml)")
	pf.BoolP("verbose", "v", false, "mirror debug logs to stderr")
	pf.BoolP("quiet", "q", false, "only print errors")
	pf.String("log-level", "", "log file level (debug, info, warn, error)")
	pf.String("pid-file", config.DefaultPIDPath(), `PID file path ("" disables it)`)

	// Run flags
	f := rootCmd.Flags()
	f.Int64P("window", "r", config.DefaultWindowKiB, "guard-window half-width in KiB")
	f.Float64P("interval", "t", config.DefaultIntervalSeconds, "seconds between visits (0 selects the default)")
	f.Uint64("seed", 0, "seed for offset sampling (0 = random)")

	// Bind flags to viper
	_ = vp.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = vp.BindPFlag("quiet", pf.Lookup("quiet"))
	_ = vp.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = vp.BindPFlag("pid_file", pf.Lookup("pid-file"))
	_ = vp.BindPFlag("window", f.Lookup("window"))
	_ = vp.BindPFlag("interval", f.Lookup("interval"))
	_ = vp.BindPFlag("seed", f.Lookup("seed"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if err := config.Configure(vp, cfgFile); err != nil {
		configErr = err
		return
	}
	configErr = config.Read(vp)
}

// initializeLogging starts file logging for every subcommand.
func initializeLogging(_ *cobra.Command, _ []string) error {
	if configErr != nil {
		return configErr
	}

	cfg, err := config.Decode(vp)
	if err != nil {
		return err
	}

	lc, err := cfg.LoggingConfig()
	if err != nil {
		return err
	}
	if getVerbose() {
		lc.ConsoleLevel = logging.LevelDebug.String()
	}

	if err := logging.Init(lc); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return vp.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return vp.GetBool("quiet")
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
