package main

import (
	"os"
	"slices"
	"syscall"
	"testing"
)

func TestShutdownSignals(t *testing.T) {
	for _, want := range []os.Signal{os.Interrupt, syscall.SIGTERM} {
		if !slices.Contains(shutdownSignals, want) {
			t.Errorf("shutdownSignals = %v, missing %v", shutdownSignals, want)
		}
	}
	// SIGKILL cannot be caught.
	if slices.Contains(shutdownSignals, os.Kill) {
		t.Errorf("shutdownSignals = %v, must not include %v", shutdownSignals, os.Kill)
	}
}
