package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches subcommands and returns the process exit code.
// Anything that is not a known command is treated as convert arguments.
func runMain(args []string, env *Environment) int {
	var rest []string
	if len(args) > 1 {
		rest = args[1:]
	}

	if len(rest) > 0 && isCommand(rest[0]) {
		switch rest[0] {
		case "version":
			fmt.Fprintf(env.Stdout, "mdpress %s\n", Version)
			return ExitSuccess
		case "help":
			return runHelp(rest[1:], env)
		case "doctor":
			return runDoctorCmd(rest[1:], env)
		}
	}

	return runConvertCmd(rest, env)
}

// isCommand reports whether arg names a subcommand.
func isCommand(arg string) bool {
	switch arg {
	case "version", "help", "doctor":
		return true
	}
	return false
}

// runConvertCmd parses convert flags, runs the conversion and reports it.
func runConvertCmd(args []string, env *Environment) int {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printConvertUsage(env.Stdout)
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "%s %v\n", newMarkers(env.Stderr).Error(), fmt.Errorf("%w: %v", ErrInvalidFlag, err))
		printConvertUsage(env.Stderr)
		return ExitUsage
	}

	setupMaxProcs(flags.common.verbose, env.Stderr)

	ctx, stop := notifyContext(context.Background())
	defer stop()

	rep := newReporter(env, flags.common.quiet, flags.common.verbose)
	req, res, err := runConvert(ctx, positional, flags, env)
	if res != nil {
		rep.result(req, res)
	}
	if err != nil {
		rep.failure(err)
		return exitCodeFor(err)
	}
	return exitCodeForResult(res)
}
