package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/spinkeep/pkg/spinkeep/config"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/device"
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/output"
)

var probeFormat string

// errNoUsableDevices is returned by probe when every path failed.
var errNoUsableDevices = errors.New("no usable devices")

var probeCmd = &cobra.Command{
	Use:   "probe DEVICE...",
	Short: "Check devices without visiting them",
	Long: `Open each device the same way the scheduler does and report its size,
or why it cannot be used. Nothing is read.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().StringVarP(&probeFormat, "output", "o", "pretty",
		"output format ("+strings.Join(output.Available(), ", ")+")")
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Decode(vp)
	if err != nil {
		return err
	}

	formatter, err := output.Get(probeFormat)
	if err != nil {
		return err
	}

	result := &output.Result{
		Devices:  device.ProbeAll(args),
		Window:   cfg.Window(),
		Interval: cfg.PaceInterval(),
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
		return err
	}

	if result.Usable() == 0 {
		return errNoUsableDevices
	}
	return nil
}
