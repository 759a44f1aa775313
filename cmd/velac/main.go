// Command velac runs the Vela static analyzer over one or more source
// files: lex, parse, preload built-ins, analyze, and render a warning
// stream plus a top-level scope dump.
package main

import (
	"fmt"
	"github.com/mattn/go-isatty"
	"github.com/vela-lang/vela/internal/analyzer"
	"github.com/vela-lang/vela/internal/builtins"
	"github.com/vela-lang/vela/internal/config"
	"github.com/vela-lang/vela/internal/parser"
	"github.com/vela-lang/vela/internal/typesystem"
	"os"
	"strings"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-builtins path] [-annotate] [-debug] file%s [file%s...]\n",
		os.Args[0], config.SourceFileExt, config.SourceFileExt)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	builtinsPath := config.DefaultBuiltinsPath
	annotate := false
	debug := false
	var files []string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-builtins":
			if i+1 >= len(args) {
				usage()
				os.Exit(1)
			}
			i++
			builtinsPath = args[i]
		case "-annotate":
			annotate = true
		case "-debug":
			debug = true
		default:
			files = append(files, args[i])
		}
	}

	if len(files) == 0 {
		usage()
		os.Exit(1)
	}

	scope0, err := builtins.LoadAndPopulate(builtinsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	exitCode := 0
	for _, file := range files {
		if !runFile(file, scope0, annotate, debug, color) {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

// runFile analyzes one source file, printing its warning stream and
// top-level scope dump. It returns false on an I/O, parse, or fatal
// analysis failure.
func runFile(file string, scope0 *typesystem.Scope, annotate, debug, color bool) bool {
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}

	program, err := parser.ParseProgram(file, string(src))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", file, err)
		return false
	}

	result, err := analyzer.Analyze(program, scope0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", file, err)
		return false
	}

	for _, w := range result.Warnings {
		line := analyzer.FormatWarning(file, w)
		if color {
			line = colorize(string(w.Category), line)
		}
		fmt.Println(line)
	}

	fmt.Print(analyzer.DumpScope(result.TopLevel))

	if annotate {
		for _, a := range result.Annotations {
			fmt.Println(analyzer.FormatAnnotation(file, a))
		}
	}
	if debug {
		fmt.Fprintf(os.Stderr, "# run %s\n", result.RunID)
	}
	return true
}

func colorize(category, line string) string {
	const (
		red    = "\033[31m"
		yellow = "\033[33m"
		reset  = "\033[0m"
	)
	if strings.HasPrefix(category, "type") || strings.Contains(category, "error") {
		return red + line + reset
	}
	return yellow + line + reset
}
