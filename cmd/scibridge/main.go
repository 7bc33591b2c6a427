// Package main is a driver for the marshaling layer: it streams a file into
// an in-memory engine, fetches it back, and reports round-trip statistics.
// Useful for eyeballing encoding behavior and for profiling transfer sizes
// without a native engine.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/editkit/scibridge/internal/config"
	"github.com/editkit/scibridge/internal/engine"
	"github.com/editkit/scibridge/internal/engine/call/calltest"
	"github.com/editkit/scibridge/internal/engine/codepage"
	"github.com/editkit/scibridge/internal/engine/position"
	"github.com/editkit/scibridge/internal/engine/stream"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  = flag.String("config", "", "limits config file (.toml/.yaml)")
		page        = flag.Int("codepage", codepage.PageUTF8, "engine code page")
		verbose     = flag.Bool("v", false, "debug logging")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("scibridge %s (%s)\n", version, commit)
		return 0
	}
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: scibridge [flags] <file>")
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	limits := config.Default()
	if *configPath != "" {
		var err error
		if limits, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
			return 1
		}
	} else {
		limits = config.FromEnv(limits)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer f.Close()

	fake := calltest.New(calltest.WithCodePage(*page))
	ed := engine.New(fake, engine.WithLimits(limits), engine.WithLogger(log))

	written, err := stream.Insert(fake, f, limits.BlockSize, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: streaming insert: %v\n", err)
		return 1
	}

	text, err := ed.FetchAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: fetching document: %v\n", err)
		return 1
	}

	enc, err := ed.Encoding()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("encoding:   %s\n", enc)
	fmt.Printf("bytes:      %d\n", written)
	fmt.Printf("characters: %d\n", utf8.RuneCountInString(text))
	fmt.Printf("graphemes:  %d\n", position.Graphemes(text))
	return 0
}
