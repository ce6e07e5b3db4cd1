//go:build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// cancelSignals stop a running conversion. SIGHUP is included so a closed
// terminal does not leave pandoc or the browser running.
var cancelSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}

// notifyContext cancels the returned context on the first cancel signal.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, cancelSignals...)
}
