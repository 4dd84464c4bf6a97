/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 * Synthetic java.* runtime library, grounded on jacobin's gfunction
 * package (one Load_Xxx() per class, registering Go-backed method
 * bodies under their Java signatures) but reshaped onto this module's
 * synth.Builder instead of a package-level MethodSignatures table.
 */

// Package runtimelib registers the handful of java.* classes a program
// needs before it can do anything useful -- Object, String,
// StringBuilder, Math, Thread, System and the atomic integer/long
// wrappers -- as synthetic classes whose methods run as Go callbacks.
package runtimelib

import (
	"dalvik/native"
	"dalvik/registry"
)

// Register installs every runtime-library class this package provides
// into r. bridge is threaded through only for System.loadLibrary, the
// one entry point that needs to reach the native bridge.
func Register(r *registry.Registry, bridge *native.Bridge) {
	registerObject(r)
	registerMath(r)
	registerString(r)
	registerStringBuilder(r)
	registerThread(r)
	registerSystem(r, bridge)
	registerAtomicInteger(r)
	registerAtomicLong(r)
}
