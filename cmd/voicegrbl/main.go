package main

import (
	"errors"
	"fmt"
	"os"

	"voice-grbl/internal/domain"
)

const (
	ExitSuccess    = 0
	ExitError      = 1
	ExitDeviceOpen = 2 // serial port or handshake failure
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, domain.ErrDeviceOpen):
		return ExitDeviceOpen
	default:
		return ExitError
	}
}
