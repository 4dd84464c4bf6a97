/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 * Class/method/field records. Grounded on jacobin's
 * classloader.ParsedClass/ClData/method/field/Method/Field split, folded
 * here into a single immutable-after-load Class record plus a
 * StaticInitialized flag the interpreter flips.
 */

package registry

import (
	"strings"

	"dalvik/dex"
	"dalvik/object"
)

// SyntheticCallback is a host-language method body for a synthetic class.
// It receives a flat argument vector (receiver prepended for an instance
// method, wide arguments occupying two consecutive entries exactly as
// Dalvik's own register convention does) and communicates its result as
// a (lo, hi) pair -- hi only meaningful for a wide (J/D) return, ignored
// otherwise -- leaving the caller (package interp) to write both into
// the frame's return slots the same way a bytecode return-wide would.
type SyntheticCallback func(args []object.Value) (lo, hi object.Value, err error)

// Method is one resolved method record.
type Method struct {
	Name            string
	Descriptor      string
	DeclaringClass  string
	AccessFlags     dex.AccessFlags
	RegisterSize    uint16
	InsSize         uint16
	Code            []byte
	Tries           []dex.TryItem
	Callback        SyntheticCallback // non-nil for synthetic/host methods
}

func (m *Method) Signature() string { return m.Name + m.Descriptor }
func (m *Method) IsStatic() bool    { return m.AccessFlags.Has(dex.AccStatic) }
func (m *Method) IsNative() bool    { return m.AccessFlags.Has(dex.AccNative) && m.Callback == nil }
func (m *Method) IsAbstract() bool  { return m.AccessFlags.Has(dex.AccAbstract) }
func (m *Method) IsSynthetic() bool { return m.Callback != nil }
func (m *Method) HasBytecode() bool { return m.Code != nil }

// ParamDescriptors splits "(II)I" into {"I", "I"}.
func ParamDescriptors(descriptor string) []string {
	open := strings.IndexByte(descriptor, '(')
	closeIdx := strings.IndexByte(descriptor, ')')
	if open < 0 || closeIdx < 0 || closeIdx < open {
		return nil
	}
	body := descriptor[open+1 : closeIdx]
	var out []string
	for i := 0; i < len(body); {
		start := i
		for body[i] == '[' {
			i++
		}
		if body[i] == 'L' {
			for body[i] != ';' {
				i++
			}
		}
		i++
		out = append(out, body[start:i])
	}
	return out
}

// ReturnDescriptor returns the return-type portion of "(II)I" -> "I".
func ReturnDescriptor(descriptor string) string {
	closeIdx := strings.IndexByte(descriptor, ')')
	if closeIdx < 0 || closeIdx+1 >= len(descriptor) {
		return "V"
	}
	return descriptor[closeIdx+1:]
}

// Field is one resolved field record. Static
// storage lives directly on this record; instance storage lives on each
// Instance's FieldMap instead.
type Field struct {
	Name           string
	Descriptor     string
	DeclaringClass string
	Static         bool

	staticValue object.Value // valid iff Static; unsynchronized
	staticHigh  object.Value // high word, valid iff Static and wide (long/double)
}

func (f *Field) Get() object.Value  { return f.staticValue }
func (f *Field) Set(v object.Value) { f.staticValue = v }

// GetWide/SetWide access the (low, high) pair of a wide static field.
func (f *Field) GetWide() (lo, hi object.Value) { return f.staticValue, f.staticHigh }
func (f *Field) SetWide(lo, hi object.Value) {
	f.staticValue = lo
	f.staticHigh = hi
}

// ClInitState tracks whether a class's <clinit> has run: a monotonic
// progression that never transitions back to ClInitNone.
type ClInitState int32

const (
	ClInitNone ClInitState = iota // no <clinit> method exists
	ClInitPending
	ClInitDone
)

// Class is the immutable-after-load metadata record, plus the two
// pieces of mutable state the interpreter drives: StaticInitialized and
// the backing storage of static Fields.
type Class struct {
	Package      string
	SimpleName   string
	FQName       string
	DexIdx       int // -1 for synthetic classes
	Abstract     bool
	Interface    bool
	External     bool // loaded from a container but has no bytecode anywhere
	Superclass   string
	Interfaces   []string
	Methods      map[string]*Method // signature -> Method
	Fields       map[string]*Field  // name -> Field
	fieldOrder   []string           // declaration order, for deterministic seeding

	// StaticInitialized is set true by the interpreter *before* running
	// <clinit>, so recursive touches during <clinit> don't re-enter it.
	StaticInitialized bool
	ClInit            ClInitState

	// Mirror is the java.lang.Class instance used by const-class,
	// reflection, instanceof-on-Class, and as the lock target for
	// monitor-enter on a class object.
	Mirror *object.Object
}

func newClass(fqname string, dexIdx int) *Class {
	pkg, simple := splitFQName(fqname)
	c := &Class{
		Package:    pkg,
		SimpleName: simple,
		FQName:     fqname,
		DexIdx:     dexIdx,
		Methods:    make(map[string]*Method),
		Fields:     make(map[string]*Field),
	}
	c.Mirror = object.NewClassMirror(fqname)
	return c
}

func splitFQName(fqname string) (pkg, simple string) {
	i := strings.LastIndexByte(fqname, '/')
	if i < 0 {
		return "", fqname
	}
	return fqname[:i], fqname[i+1:]
}

// DeclaredFields implements object.ClassProvider: the instance fields of
// className and every superclass, root-first.
func (r *Registry) DeclaredFields(className string) []object.FieldSpec {
	var chain []*Class
	cur, err := r.GetOrLoad(className)
	for err == nil && cur != nil {
		chain = append(chain, cur)
		if cur.Superclass == "" {
			break
		}
		cur, err = r.GetOrLoad(cur.Superclass)
	}
	var specs []object.FieldSpec
	for i := len(chain) - 1; i >= 0; i-- {
		for _, name := range sortedFieldNames(chain[i]) {
			f := chain[i].Fields[name]
			if f.Static {
				continue
			}
			specs = append(specs, object.FieldSpec{Name: f.Name, Descriptor: f.Descriptor})
		}
	}
	return specs
}

// sortedFieldNames preserves declaration order by relying on the order
// Fields were inserted at load time, tracked via fieldOrder.
func sortedFieldNames(c *Class) []string { return c.fieldOrder }

// NewSynthClass starts a class record for the synthetic class builder
// (package synth): DexIdx -1 marks it as container-less, so
// ResolveClass/ResolveMethod/ResolveField (which all index into a
// container's tables) never reach it — only GetOrLoad's by-name lookup
// and direct Method/Field map access do.
func NewSynthClass(fqname, superclass string) *Class {
	c := newClass(fqname, -1)
	c.Superclass = superclass
	return c
}

// AddSynthField declares a field on a class still under construction,
// preserving declaration order for DeclaredFields.
func (c *Class) AddSynthField(name, descriptor string, static bool) {
	f := &Field{Name: name, Descriptor: descriptor, DeclaringClass: c.FQName, Static: static}
	if static {
		f.staticValue = zeroStatic(descriptor)
	}
	c.Fields[name] = f
	c.fieldOrder = append(c.fieldOrder, name)
}

// AddSynthMethod installs a host-callback method on a class still under
// construction. isVirtual is accepted for parity with the synthetic
// class builder's constructor shape; resolution is purely signature-
// keyed regardless of dispatch kind, so it isn't otherwise consulted.
func (c *Class) AddSynthMethod(isVirtual bool, name, descriptor string, flags dex.AccessFlags, callback SyntheticCallback) {
	_ = isVirtual
	c.Methods[name+descriptor] = &Method{
		Name: name, Descriptor: descriptor, DeclaringClass: c.FQName,
		AccessFlags: flags, Callback: callback,
	}
	if name == "<clinit>" {
		c.ClInit = ClInitPending
	}
}

// Finish marks a synthetic class ready for use — vacuously initialized
// if it never declared a <clinit>, matching buildClass's rule for a
// loaded class with no static initializer — and registers it with r.
func (c *Class) Finish(r *Registry) *Class {
	if c.ClInit == ClInitNone {
		c.StaticInitialized = true
	}
	r.AddClass(c)
	return c
}
