//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// Windows only delivers os.Interrupt.
var cancelSignals = []os.Signal{os.Interrupt}

// notifyContext cancels the returned context on the first cancel signal.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, cancelSignals...)
}
