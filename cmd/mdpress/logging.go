package main

import (
	"fmt"
	"io"

	mdpress "github.com/alnah/go-mdpress"
	glog "github.com/goliatone/go-logger/glog"
	"go.uber.org/automaxprocs/maxprocs"
)

// loggerName scopes the verbose log lines.
const loggerName = "mdpress"

// newLogger returns a console logger at debug level when verbose is set,
// nil otherwise (the converter then stays silent).
func newLogger(verbose bool) mdpress.Logger {
	if !verbose {
		return nil
	}
	root := glog.NewLogger(
		glog.WithLevel(glog.Debug),
		glog.WithLoggerTypeConsole(),
	)
	return root.GetLogger(loggerName)
}

// setupMaxProcs configures GOMAXPROCS, logging only in verbose mode.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func setupMaxProcs(verbose bool, w io.Writer) {
	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(w, format+"\n", args...)
		}))
		return
	}
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
}
