package main

import (
	"io"
	"os"
	"os/exec"
	"time"

	mdpress "github.com/alnah/go-mdpress"
	"github.com/go-rod/rod/lib/launcher"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, process execution, and tool discovery.
type Environment struct {
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
	Getenv      func(string) string
	Runner      mdpress.CommandRunner
	LookPath    func(string) (string, error)
	BrowserPath func() (string, bool)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Getenv:      os.Getenv,
		Runner:      &mdpress.ExecRunner{},
		LookPath:    exec.LookPath,
		BrowserPath: launcher.LookPath,
	}
}
