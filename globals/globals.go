/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 * Process-wide configuration, modeled on jacobin's jacobin/globals package,
 * but held as an explicit value rather than an ambient singleton (see
 * design note in"Global state").
 */

// Package globals carries the handful of settings that would otherwise be
// ambient process state: class and native-library search paths, the GC
// threshold, and the program's arguments. A *Globals is constructed once
// at VM start and threaded through the registry/interpreter/GC rather than
// read from package-level variables.
package globals

import (
	"os"
	"strings"
)

// Globals holds VM-wide configuration constructed at startup.
type Globals struct {
	// RuntimeLibPath is the directory (or archive) holding the synthetic
	// java.* runtime-library classes, supplied on the command line.
	RuntimeLibPath string

	// MainClassOverride, if non-empty, overrides the manifest-derived
	// main-activity class name for an APK entry point.
	MainClassOverride string

	// ClassSearchPaths is scanned, in order, by the registry when a
	// class cannot be found in any already-loaded container.
	ClassSearchPaths []string

	// NativeLibSearchPaths comes from LD_LIBRARY_PATH.
	NativeLibSearchPaths []string

	// GCThreshold is the tracked-object count that triggers an
	// allocation-time collection.
	GCThreshold int

	// Args are the positional arguments forwarded to the program's main.
	Args []string
}

// New builds a Globals from the process environment and CLI-provided
// values. It does not mutate any package-level state.
func New(runtimeLibPath string, searchPaths []string, args []string) *Globals {
	g := &Globals{
		RuntimeLibPath:   runtimeLibPath,
		ClassSearchPaths: searchPaths,
		GCThreshold:      10000,
		Args:             args,
	}
	if ld := os.Getenv("LD_LIBRARY_PATH"); ld != "" {
		g.NativeLibSearchPaths = strings.Split(ld, string(os.PathListSeparator))
	}
	return g
}
