/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 * Garbage collector, grounded on original_source/src/gc.cpp's
 * GC::collect() (stop-the-world suspend, mark roots, sweep the tracked
 * set, resume, bump the cycle counter) and heap.cpp's
 * Heap::allocateObject (push each new allocation onto a tracked list as
 * it's made).
 */

// Package gc implements a stop-the-world mark-and-sweep collector that
// coexists with the interpreter's application threads. It does not
// itself free memory — Go's own collector does that once nothing
// references an object — but it tracks allocation counts, triggers
// collection at a configurable threshold, and drives the suspend/mark/
// sweep/resume cycle the native bridge's handle table and the VM's
// diagnostics depend on.
package gc

import (
	"fmt"
	"sync"

	"dalvik/frame"
	"dalvik/object"
	"dalvik/registry"
	"dalvik/trace"
)

// RootProvider is implemented by a collaborator that holds GC roots this
// package has no direct visibility into — the native bridge's handle
// table is the only current example; package vm wires it in with
// AddRootProvider once both exist.
type RootProvider interface {
	Roots() []*object.Object
}

// GC tracks every heap allocation registered with it and, on collection,
// suspends every managed thread, marks everything reachable from the
// root set, drops the objects this cycle left unmarked from its own
// bookkeeping, and resumes the world.
type GC struct {
	mu        sync.Mutex
	objects   map[*object.Object]struct{}
	threads   []*frame.Thread
	classes   *registry.Registry
	providers []RootProvider
	limit     int
	cycles    uint64
}

// New constructs a collector that scans classes's loaded-class table for
// static-field roots. limit is the tracked-object count that triggers an
// automatic collection at allocation time; zero or negative disables the
// automatic trigger (collection then only happens via RequestCollect).
func New(classes *registry.Registry, limit int) *GC {
	return &GC{
		objects: make(map[*object.Object]struct{}),
		classes: classes,
		limit:   limit,
	}
}

// Manage adds th to the set of threads suspended during a collection.
func (g *GC) Manage(th *frame.Thread) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.threads = append(g.threads, th)
}

// Unmanage removes th from the managed set, e.g. once it has stopped.
func (g *GC) Unmanage(th *frame.Thread) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, t := range g.threads {
		if t == th {
			g.threads = append(g.threads[:i], g.threads[i+1:]...)
			return
		}
	}
}

// AddRootProvider registers an additional source of GC roots.
func (g *GC) AddRootProvider(p RootProvider) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.providers = append(g.providers, p)
}

// Track registers a freshly allocated object, requesting a collection if
// the tracked count now exceeds the configured limit. Called by the
// interpreter's alloc opcodes (new-instance, new-array, etc.) right
// after constructing the object, mirroring Heap::allocateObject pushing
// onto its tracked list at the allocation site.
func (g *GC) Track(o *object.Object) {
	g.mu.Lock()
	g.objects[o] = struct{}{}
	over := g.limit > 0 && len(g.objects) > g.limit
	g.mu.Unlock()
	if over {
		g.RequestCollect()
	}
}

// Count reports how many objects are currently tracked.
func (g *GC) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.objects)
}

// Cycles reports how many collections have completed.
func (g *GC) Cycles() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cycles
}

// RequestCollect runs one collection cycle. A production deployment
// would instead flip a flag and let a dedicated background goroutine's
// loop wake a condition variable, as original_source's GC thread does;
// this collector runs synchronously on the calling goroutine since
// nothing here depends on collection happening off the allocating
// thread, and synchronous collection is far easier to reason about
// without ever running it.
func (g *GC) RequestCollect() {
	g.Collect()
}

// Collect runs one full stop-the-world mark-and-sweep cycle:
// suspend every managed thread, mark the root set and everything
// transitively reachable from it, drop unmarked objects from the
// tracked set, resume the world, and bump the cycle counter.
func (g *GC) Collect() {
	g.mu.Lock()
	threads := append([]*frame.Thread(nil), g.threads...)
	providers := append([]RootProvider(nil), g.providers...)
	g.mu.Unlock()

	for _, th := range threads {
		th.Suspend()
	}
	trace.Fine("gc: collection cycle starting")

	marked := make(map[*object.Object]struct{})
	mark(marked, object.TheNull)
	for _, th := range threads {
		for _, fr := range th.Snapshot() {
			for _, v := range fr.Registers {
				mark(marked, v.AsRef())
			}
			mark(marked, fr.Return.AsRef())
			if fr.Exception != nil {
				mark(marked, fr.Exception)
			}
		}
	}
	for _, cls := range g.classes.AllClasses() {
		for _, f := range cls.Fields {
			if f.Static {
				mark(marked, f.Get().AsRef())
			}
		}
		if cls.Mirror != nil {
			mark(marked, cls.Mirror)
		}
	}
	for _, p := range providers {
		for _, o := range p.Roots() {
			mark(marked, o)
		}
	}

	g.mu.Lock()
	before := len(g.objects)
	for o := range g.objects {
		if _, live := marked[o]; !live {
			delete(g.objects, o)
		}
	}
	after := len(g.objects)
	g.cycles++
	g.mu.Unlock()

	trace.Fine(fmt.Sprintf("gc: collection finished, %d -> %d tracked objects", before, after))
	for _, th := range threads {
		th.Resume()
	}
}

// mark transitively marks o and every object it references, guarding
// against both self-reference and cross-reference cycles via visited.
func mark(visited map[*object.Object]struct{}, o *object.Object) {
	if o == nil {
		return
	}
	if _, seen := visited[o]; seen {
		return
	}
	visited[o] = struct{}{}

	switch o.Kind {
	case object.KindInstance, object.KindString, object.KindClassMirror:
		if o.Fields == nil {
			return
		}
		for _, name := range o.Fields.Names() {
			if v, ok := o.Fields.Get(name); ok {
				mark(visited, v.AsRef())
			}
		}
	case object.KindArray:
		if o.Array == nil || !isRefElement(o.Array.ElementDescriptor) {
			return
		}
		for _, v := range o.Array.Store {
			mark(visited, v.AsRef())
		}
	}
}

// isRefElement reports whether an array's element descriptor denotes a
// reference type (object or nested array) rather than a primitive, i.e.
// whether its backing store holds object references that must be
// traced.
func isRefElement(descriptor string) bool {
	return len(descriptor) > 0 && (descriptor[0] == 'L' || descriptor[0] == '[')
}
