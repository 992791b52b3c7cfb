// derwalk prints the TLV structure of DER encoded data.
//
// The input is read from the file named by the first argument, or from
// standard input if no argument or "-" is given. Each value is printed with its
// offset, tag and length. Values of universal types are summarized, for
// example integers and object identifiers are printed in decimal notation.
// OCTET STRING and BIT STRING values that wrap a nested encoding are expanded.
//
// Usage:
//
//	derwalk [flags] [file]
//
// Flags:
//
//	--format string   output format: text, yaml or cbor (default "text")
//	--max-depth int   do not print values nested deeper than this (0 prints everything)
//	--index           index all values before printing
//	--fingerprint     print the BLAKE3 digest of each top-level value
//	-v, --verbose     log progress to stderr
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// options holds the parsed command line flags.
type options struct {
	format      string
	maxDepth    int
	index       bool
	fingerprint bool
	verbose     bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options
	flagSet := pflag.NewFlagSet("derwalk", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.format, "format", "text", "output format: text, yaml or cbor")
	flagSet.IntVar(&opts.maxDepth, "max-depth", 0, "do not print values nested deeper than this (0 prints everything)")
	flagSet.BoolVar(&opts.index, "index", false, "index all values before printing")
	flagSet.BoolVar(&opts.fingerprint, "fingerprint", false, "print the BLAKE3 digest of each top-level value")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage: derwalk [flags] [file]\n\nFlags:\n")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if opts.format != "text" && opts.format != "yaml" && opts.format != "cbor" {
		return fmt.Errorf("unknown format %q", opts.format)
	}
	if opts.maxDepth < 0 {
		return fmt.Errorf("--max-depth must not be negative")
	}
	if flagSet.NArg() > 1 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(1))
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	name := flagSet.Arg(0)
	input, err := openInput(name, stdin)
	if err != nil {
		return err
	}
	defer input.Close()
	logger.Debug("reading input", "name", name)

	w := &walker{logger: logger, maxDepth: opts.maxDepth, index: opts.index, fingerprint: opts.fingerprint}
	roots, err := w.walk(input)
	if err != nil {
		return err
	}
	logger.Debug("walk complete", "values", len(roots))

	switch opts.format {
	case "yaml":
		return writeYAML(stdout, roots)
	case "cbor":
		return writeCBOR(stdout, roots)
	default:
		return writeText(stdout, roots)
	}
}

// openInput opens the named file, or returns r if name is empty or "-".
func openInput(name string, r io.Reader) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(r), nil
	}
	return os.Open(name)
}
