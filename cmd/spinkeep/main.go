// Package main provides the entry point for the spinkeep CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jamesainslie/spinkeep/pkg/spinkeep/config"
)

const noDevicesMessage = "You need to specify some devices to keep spinning."

func main() {
	if err := Execute(); err != nil {
		if errors.Is(err, config.ErrNoDevices) {
			fmt.Fprintln(os.Stderr, noDevicesMessage)
		} else {
			printError("%v", err)
		}
		os.Exit(1)
	}
}
