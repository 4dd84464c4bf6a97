/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 * CLI entry point, grounded on jacobin's cli.go (HandleCli, getEnvArgs,
 * showCopyright) but reshaped onto the standard flag package rather than
 * a hand-rolled options table.
 */

// Command dalvik loads one pre-parsed container, resolves its main class
// and drives it to completion through package vm.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"dalvik/globals"
	"dalvik/trace"
	"dalvik/vm"
)

const mainSignature = "main([Ljava/lang/String;)V"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fs := flag.NewFlagSet("dalvik", flag.ContinueOnError)
	var (
		mainClass  = fs.String("mainclass", "", "fully-qualified main class, slash form (required)")
		classpath  = fs.String("cp", "", "comma-separated class search directories")
		runtimeLib = fs.String("runtimelib", "", "path to the runtime-library container, if not built in")
		logLevel   = fs.String("loglevel", "WARNING", "TRACE, FINE, INFO, WARNING, or SEVERE")
	)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dalvik -mainclass <class> [options] <container> [args...]\n")
		fmt.Fprintf(os.Stderr, "where options include:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	trace.SetLevel(levelFromName(*logLevel))

	rest := fs.Args()
	if len(rest) == 0 || *mainClass == "" {
		fs.Usage()
		return 2
	}
	containerPath, progArgs := rest[0], rest[1:]

	var searchPaths []string
	if *classpath != "" {
		searchPaths = strings.Split(*classpath, ",")
	}
	g := globals.New(*runtimeLib, searchPaths, progArgs)
	machine := vm.New(g)

	if err := machine.LoadContainer(containerPath); err != nil {
		trace.Error(fmt.Sprintf("dalvik: %v", err))
		return 1
	}
	if err := machine.RunMain(*mainClass, mainSignature, progArgs); err != nil {
		trace.Error(fmt.Sprintf("dalvik: %v", err))
		return 1
	}
	return 0
}

func levelFromName(name string) trace.Level {
	switch strings.ToUpper(name) {
	case "TRACE":
		return trace.TRACE
	case "FINE":
		return trace.FINE
	case "INFO":
		return trace.INFO
	case "SEVERE":
		return trace.SEVERE
	case "SILENT":
		return trace.SILENT
	default:
		return trace.WARNING
	}
}
