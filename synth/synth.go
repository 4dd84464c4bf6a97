/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 * Synthetic class builder: accumulates a class under construction whose
 * methods are host callbacks rather than bytecode, then hands the
 * finished record to the registry. Grounded on jacobin's gfunction
 * package (Load_Lang_Thread and siblings, each populating a signature-
 * keyed table of Go-backed methods for one java.* class), reshaped into
 * a per-class fluent builder so runtimelib's class constructors read as
 * one chained expression ending in Finish.
 */

// Package synth builds classes whose method bodies run as Go callbacks
// instead of interpreted bytecode — the mechanism the runtime library
// uses to supply java.* classes without a DEX of their own.
package synth

import (
	"dalvik/dex"
	"dalvik/registry"
)

// Builder accumulates fields and callback-backed methods for one class
// under construction.
type Builder struct {
	cls *registry.Class
}

// NewClass starts building a synthetic class named fqname (slash form,
// e.g. "java/lang/Math") descending from superclass.
func NewClass(fqname, superclass string) *Builder {
	return &Builder{cls: registry.NewSynthClass(fqname, superclass)}
}

// Implements records an interface the class satisfies, consulted by
// instance-of/check-cast.
func (b *Builder) Implements(iface string) *Builder {
	b.cls.Interfaces = append(b.cls.Interfaces, iface)
	return b
}

// AddField declares an instance or static field. Static fields are
// seeded with their type's zero value immediately since a synthetic
// class need not have a <clinit> to rely on.
func (b *Builder) AddField(name, descriptor string, static bool) *Builder {
	b.cls.AddSynthField(name, descriptor, static)
	return b
}

// AddMethod installs callback as name+descriptor's body. isVirtual is
// accepted for parity with the registry's add_method(is_virtual, ...)
// shape; a synthetic method resolves purely by signature regardless of
// how it was declared, so the flag is otherwise unused.
func (b *Builder) AddMethod(isVirtual bool, name, descriptor string, flags dex.AccessFlags, callback registry.SyntheticCallback) *Builder {
	b.cls.AddSynthMethod(isVirtual, name, descriptor, flags, callback)
	return b
}

// AddStaticMethod is AddMethod with AccStatic|AccPublic folded in, the
// common case for the runtime library's utility classes (Math, System).
func (b *Builder) AddStaticMethod(name, descriptor string, callback registry.SyntheticCallback) *Builder {
	return b.AddMethod(false, name, descriptor, dex.AccStatic|dex.AccPublic, callback)
}

// AddInstanceMethod is AddMethod with AccPublic set, the common case for
// the runtime library's object methods.
func (b *Builder) AddInstanceMethod(name, descriptor string, callback registry.SyntheticCallback) *Builder {
	return b.AddMethod(true, name, descriptor, dex.AccPublic, callback)
}

// AddClinit installs a <clinit> callback, letting a synthetic class
// participate in the ordinary rewind-and-retry path (§4.E) the same way
// a bytecode class with a static initializer does.
func (b *Builder) AddClinit(callback registry.SyntheticCallback) *Builder {
	return b.AddMethod(false, "<clinit>", "()V", dex.AccStatic, callback)
}

// Finish registers the completed class with r and returns it.
func (b *Builder) Finish(r *registry.Registry) *registry.Class {
	return b.cls.Finish(r)
}
