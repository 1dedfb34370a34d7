package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	flags, _, err := parseFlags(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitUsage)
	}

	if flags.version {
		fmt.Println("docforge", Version)
		return
	}

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues.
	if flags.verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	logger := zap.NewNop()
	if flags.verbose {
		if dev, lerr := zap.NewDevelopment(); lerr == nil {
			logger = dev
		}
	}
	defer func() { _ = logger.Sync() }()

	if err := run(flags, logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
