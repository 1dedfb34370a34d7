package main

import (
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"
)

// cliFlags holds all parsed command-line flags.
type cliFlags struct {
	input   string
	output  string
	config  string
	session string
	timeout time.Duration
	tocOnly bool
	verbose bool
	version bool
}

// parseFlags parses command-line arguments.
// Returns the flags, remaining positional args, and any parse error.
func parseFlags(args []string) (*cliFlags, []string, error) {
	flags := &cliFlags{}

	fs := flag.NewFlagSet("docforge", flag.ContinueOnError)
	fs.SortFlags = false
	fs.Usage = func() { printUsage(fs) }

	fs.StringVarP(&flags.input, "input", "i", "", "input markdown file (default: stdin)")
	fs.StringVarP(&flags.output, "output", "o", "", "output PDF file (default: input name with .pdf)")
	fs.StringVarP(&flags.config, "config", "c", "", "config name or YAML file path")
	fs.StringVar(&flags.session, "session", "", "session id used to namespace scratch files")
	fs.DurationVar(&flags.timeout, "timeout", 0, "diagram render timeout (default: 60s)")
	fs.BoolVar(&flags.tocOnly, "toc-only", false, "print the markdown table of contents and exit")
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "verbose logging to stderr")
	fs.BoolVar(&flags.version, "version", false, "print version and exit")

	if err := fs.Parse(args[1:]); err != nil {
		return nil, nil, err
	}
	return flags, fs.Args(), nil
}

// printUsage writes the help text.
func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `docforge - compile markdown technical documents to PDF

Usage:
  docforge -i design.md -o design.pdf
  cat design.md | docforge -o design.pdf
  docforge -i design.md --toc-only

Flags:
%s`, fs.FlagUsages())
}
