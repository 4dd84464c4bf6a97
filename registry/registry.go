/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 * Class registry & loader, grounded on jacobin's
 * jacobin/classloader package (Classloader, ParseAndPostClass,
 * LoadClassFromNameOnly's superclass-chasing loop, the "external class"
 * skip rule) and on the original sandvik/classloader.cpp's resolve_*
 * helpers.
 */

// Package registry holds every loaded DEX container and resolves
// (dex_idx, pool_idx) references against them, lazily loading classes on
// first touch.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"dalvik/dex"
	"dalvik/object"
	"dalvik/trace"
)

// Registry is the process-wide, but explicitly-constructed and passed
// rather than a package-level singleton, holder of every parsed
// container and loaded class.
type Registry struct {
	mu         sync.RWMutex // reader/writer discipline: many readers, serialized writers
	containers []*dex.Container
	classes    map[string]*Class
	searchDirs []string
}

// New constructs an empty registry that will additionally search
// searchDirs for <fqname>.dex files on a cache miss.
func New(searchDirs []string) *Registry {
	r := &Registry{
		classes:    make(map[string]*Class),
		searchDirs: searchDirs,
	}
	registerBuiltinExceptions(r)
	return r
}

// AddContainer registers a parsed DEX container and returns its index,
// used thereafter as the dex_idx half of (dex_idx, pool_idx) pairs.
func (r *Registry) AddContainer(c *dex.Container) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.containers = append(r.containers, c)
	return len(r.containers) - 1
}

// AddClass registers a fully-built class record directly — the path used
// by the synthetic class builder and by this package's own
// built-in exception classes.
func (r *Registry) AddClass(c *Class) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[c.FQName] = c
}

// AllClasses returns every class loaded so far, for the garbage
// collector's static-field root scan.
func (r *Registry) AllClasses() []*Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Class, 0, len(r.classes))
	for _, c := range r.classes {
		out = append(out, c)
	}
	return out
}

func (r *Registry) lookupLoaded(fqname string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[fqname]
	return c, ok
}

// GetOrLoad returns the named class, loading it on first touch: first from an already-registered container, then by scanning the
// filesystem search path for "<fqname-slash-form>.dex".
func (r *Registry) GetOrLoad(fqname string) (*Class, error) {
	if fqname == "" {
		return nil, fmt.Errorf("registry: empty class name")
	}
	if c, ok := r.lookupLoaded(fqname); ok {
		return c, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Re-check under the write lock: another goroutine may have loaded
	// it while we waited.
	if c, ok := r.classes[fqname]; ok {
		return c, nil
	}

	for idx, container := range r.containers {
		for ci := range container.Classes {
			cd := &container.Classes[ci]
			if cd.Name != fqname {
				continue
			}
			if isExternalStub(cd) {
				trace.Fine("registry: skipping external stub for " + fqname + ", later container may win")
				continue
			}
			cls := buildClass(cd, idx)
			r.classes[fqname] = cls
			return cls, nil
		}
	}

	for _, dir := range r.searchDirs {
		path := filepath.Join(dir, filepath.FromSlash(fqname)+".dex")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		container, err := dex.Load(path)
		if err != nil {
			return nil, fmt.Errorf("registry: loading %s: %w", path, err)
		}
		idx := len(r.containers)
		r.containers = append(r.containers, container)
		for ci := range container.Classes {
			cd := &container.Classes[ci]
			if cd.Name == fqname && !isExternalStub(cd) {
				cls := buildClass(cd, idx)
				r.classes[fqname] = cls
				return cls, nil
			}
		}
	}

	return nil, fmt.Errorf("NoClassDefFoundError: %s", fqname)
}

// isExternalStub implements: "A container-provided class
// whose methods all lack bytecode and which is neither abstract nor
// interface is considered external and is skipped, allowing a later
// container (e.g., the synthetic runtime library) to win."
func isExternalStub(cd *dex.ClassDef) bool {
	if cd.IsAbstract() || cd.IsInterface() {
		return false
	}
	for _, m := range cd.Methods {
		if len(m.Code) > 0 {
			return false
		}
	}
	return len(cd.Methods) > 0
}

func buildClass(cd *dex.ClassDef, dexIdx int) *Class {
	cls := newClass(cd.Name, dexIdx)
	cls.Superclass = cd.Superclass
	cls.Interfaces = append([]string(nil), cd.Interfaces...)
	cls.Abstract = cd.IsAbstract()
	cls.Interface = cd.IsInterface()

	for i := range cd.Fields {
		f := &cd.Fields[i]
		cls.Fields[f.Name] = &Field{
			Name: f.Name, Descriptor: f.Descriptor,
			DeclaringClass: cd.Name, Static: f.IsStatic(),
		}
		cls.fieldOrder = append(cls.fieldOrder, f.Name)
		if f.IsStatic() {
			cls.Fields[f.Name].staticValue = zeroStatic(f.Descriptor)
		}
	}

	hasClinit := false
	for i := range cd.Methods {
		m := &cd.Methods[i]
		cls.Methods[m.Signature()] = &Method{
			Name: m.Name, Descriptor: m.Descriptor, DeclaringClass: cd.Name,
			AccessFlags: m.AccessFlags, RegisterSize: m.RegisterSize,
			InsSize: m.InsSize, Code: m.Code, Tries: m.Tries,
		}
		if m.Name == "<clinit>" {
			hasClinit = true
		}
	}
	if hasClinit {
		cls.ClInit = ClInitPending
	} else {
		cls.ClInit = ClInitNone
		cls.StaticInitialized = true // nothing to run, so it's vacuously initialized
	}
	return cls
}

func zeroStatic(descriptor string) object.Value {
	if len(descriptor) == 0 {
		return object.NullValue()
	}
	switch descriptor[0] {
	case 'L', '[':
		return object.Ref32(object.TheNull)
	default:
		return object.Int32(0)
	}
}

// --- (dex_idx, pool_idx) resolution ---

func (r *Registry) container(dexIdx int) (*dex.Container, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if dexIdx < 0 || dexIdx >= len(r.containers) {
		return nil, fmt.Errorf("registry: dex index %d out of range", dexIdx)
	}
	return r.containers[dexIdx], nil
}

func (r *Registry) ResolveString(dexIdx, poolIdx int) (string, error) {
	c, err := r.container(dexIdx)
	if err != nil {
		return "", err
	}
	if poolIdx < 0 || poolIdx >= len(c.Strings) {
		return "", fmt.Errorf("registry: string pool index %d out of range", poolIdx)
	}
	return c.Strings[poolIdx], nil
}

func (r *Registry) ResolveClass(dexIdx, poolIdx int) (*Class, error) {
	c, err := r.container(dexIdx)
	if err != nil {
		return nil, err
	}
	if poolIdx < 0 || poolIdx >= len(c.Types) {
		return nil, fmt.Errorf("registry: type pool index %d out of range", poolIdx)
	}
	name := stripArrayAndObject(c.Types[poolIdx])
	return r.GetOrLoad(name)
}

func stripArrayAndObject(descriptor string) string {
	d := descriptor
	for strings.HasPrefix(d, "[") {
		d = d[1:]
	}
	if strings.HasPrefix(d, "L") && strings.HasSuffix(d, ";") {
		return d[1 : len(d)-1]
	}
	return d
}

func (r *Registry) ResolveArray(dexIdx, poolIdx int) (dex.ArrayRef, error) {
	c, err := r.container(dexIdx)
	if err != nil {
		return dex.ArrayRef{}, err
	}
	if poolIdx < 0 || poolIdx >= len(c.Types) {
		return dex.ArrayRef{}, fmt.Errorf("registry: type pool index %d out of range", poolIdx)
	}
	return dex.ResolveArray(c.Types[poolIdx]), nil
}

// ResolveMethod resolves a method reference and triggers loading (but
// not <clinit> — that's the interpreter's job) of the declaring class.
func (r *Registry) ResolveMethod(dexIdx, poolIdx int) (*Method, *Class, error) {
	c, err := r.container(dexIdx)
	if err != nil {
		return nil, nil, err
	}
	if poolIdx < 0 || poolIdx >= len(c.Methods) {
		return nil, nil, fmt.Errorf("registry: method pool index %d out of range", poolIdx)
	}
	ref := c.Methods[poolIdx]
	cls, err := r.GetOrLoad(ref.ClassName)
	if err != nil {
		return nil, nil, fmt.Errorf("NoSuchMethodError: %s.%s%s (%w)", ref.ClassName, ref.Name, ref.Descriptor, err)
	}
	sig := ref.Name + ref.Descriptor
	m, ok := cls.Methods[sig]
	if !ok {
		return nil, nil, fmt.Errorf("NoSuchMethodError: %s.%s", ref.ClassName, sig)
	}
	return m, cls, nil
}

func (r *Registry) ResolveField(dexIdx, poolIdx int) (*Field, *Class, error) {
	c, err := r.container(dexIdx)
	if err != nil {
		return nil, nil, err
	}
	if poolIdx < 0 || poolIdx >= len(c.Fields) {
		return nil, nil, fmt.Errorf("registry: field pool index %d out of range", poolIdx)
	}
	ref := c.Fields[poolIdx]
	cls, err := r.GetOrLoad(ref.ClassName)
	if err != nil {
		return nil, nil, fmt.Errorf("NoSuchFieldException: %s.%s (%w)", ref.ClassName, ref.Name, err)
	}
	f, ok := cls.Fields[ref.Name]
	if !ok {
		cur := cls
		for cur.Superclass != "" {
			cur, err = r.GetOrLoad(cur.Superclass)
			if err != nil {
				break
			}
			if f, ok = cur.Fields[ref.Name]; ok {
				cls = cur
				break
			}
		}
		if !ok {
			return nil, nil, fmt.Errorf("NoSuchFieldException: %s.%s", ref.ClassName, ref.Name)
		}
	}
	return f, cls, nil
}

// --- hierarchy walks ---

// FindVirtualMethod starts from receiverClass's concrete class and walks
// the superclass chain until it finds signature, mirroring how virtual
// and interface invocations resolve from the receiver's concrete class
// rather than the statically-declared one.
func (r *Registry) FindVirtualMethod(receiverClass *Class, signature string) (*Method, *Class, error) {
	cur := receiverClass
	for cur != nil {
		if m, ok := cur.Methods[signature]; ok {
			return m, cur, nil
		}
		if cur.Superclass == "" {
			break
		}
		next, err := r.GetOrLoad(cur.Superclass)
		if err != nil {
			return nil, nil, err
		}
		cur = next
	}
	return nil, nil, fmt.Errorf("NoSuchMethodError: %s.%s", receiverClass.FQName, signature)
}

// IsSubclassOrSelf reports whether sub *is* base or a transitive subclass
// or implementor of base (used by instance-of, check-cast, catch-type
// matching).
func (r *Registry) IsSubclassOrSelf(sub *Class, baseName string) bool {
	cur := sub
	for cur != nil {
		if cur.FQName == baseName {
			return true
		}
		for _, iface := range cur.Interfaces {
			if iface == baseName || r.interfaceExtends(iface, baseName) {
				return true
			}
		}
		if cur.Superclass == "" {
			return false
		}
		next, err := r.GetOrLoad(cur.Superclass)
		if err != nil {
			return false
		}
		cur = next
	}
	return false
}

func (r *Registry) interfaceExtends(iface, baseName string) bool {
	cls, err := r.GetOrLoad(iface)
	if err != nil {
		return false
	}
	for _, super := range cls.Interfaces {
		if super == baseName || r.interfaceExtends(super, baseName) {
			return true
		}
	}
	return false
}

// IsInstanceOf implements instance-of/check-cast semantics for a value
// that may be any heap object kind, including arrays and the null
// singleton (which is never an instance of anything).
func (r *Registry) IsInstanceOf(o *object.Object, className string) bool {
	if o == nil || o.Kind == object.KindNull {
		return false
	}
	if o.Kind == object.KindArray {
		return strings.HasPrefix(className, "[") && o.ClassName == className
	}
	cls, err := r.GetOrLoad(o.ClassName)
	if err != nil {
		return false
	}
	return r.IsSubclassOrSelf(cls, className)
}
