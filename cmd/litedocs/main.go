package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	env := DefaultEnv()

	// Configure GOMAXPROCS with conditional logging.
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	var undo func()
	if hasVerbose(os.Args[1:]) {
		undo, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(env.Stderr, format+"\n", args...)
		}))
	} else {
		undo, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	code := runMain(os.Args, env)
	if undo != nil {
		undo()
	}
	os.Exit(code)
}

// runMain dispatches the command and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	warnUnknownEnvVars(env.Stderr)

	cmd, rest := args[1], args[2:]
	var err error
	switch cmd {
	case "build":
		err = runBuildCmd(ctx, rest, env)
	case "serve":
		err = runServeCmd(ctx, rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "litedocs %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		runHelp(rest, env)
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if err == nil || errors.Is(err, errHelp) {
		return ExitSuccess
	}
	fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	return exitCodeFor(err)
}

// hasVerbose reports whether -v or --verbose appears before a "--".
func hasVerbose(args []string) bool {
	for _, a := range args {
		switch a {
		case "--":
			return false
		case "-v", "--verbose":
			return true
		}
	}
	return false
}
