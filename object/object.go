package object

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// ObjKind discriminates the heap-object variants.
type ObjKind uint8

const (
	KindNull ObjKind = iota
	KindNumber
	KindInstance
	KindString
	KindClassMirror
	KindArray
)

// ClassProvider is the subset of the class registry that a field map needs
// to seed itself: the list of declared field names/descriptors for a class
// and all its superclasses. Defined here, implemented by package registry, to
// avoid an object<->registry import cycle.
type ClassProvider interface {
	// DeclaredFields returns (name, descriptor) pairs for every
	// non-static instance field declared by className and its ancestors,
	// ordered from the root superclass down (so a subclass field with
	// the same name shadows, matching insertion order on re-set).
	DeclaredFields(className string) []FieldSpec
}

// FieldSpec names one declared field and its type descriptor.
type FieldSpec struct {
	Name       string
	Descriptor string
}

// Field is one entry in an Instance/String's field map.
type Field struct {
	Descriptor string
	Value      Value
}

// FieldMap is the insertion-ordered name->Value mapping carried by every
// Instance and String. Order is preserved via a parallel name slice so
// iteration (e.g. toString diagnostics) is deterministic.
type FieldMap struct {
	mu     sync.RWMutex
	order  []string
	values map[string]*Field
}

func newFieldMap() *FieldMap {
	return &FieldMap{values: make(map[string]*Field)}
}

// Get returns the named field's value. Reading a missing field is a
// programming error, since instances are created field-complete;
// callers that need to distinguish missing fields should call Has
// first.
func (fm *FieldMap) Get(name string) (Value, bool) {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	f, ok := fm.values[name]
	if !ok {
		return NullValue(), false
	}
	return f.Value, true
}

func (fm *FieldMap) Has(name string) bool {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	_, ok := fm.values[name]
	return ok
}

func (fm *FieldMap) Descriptor(name string) string {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	if f, ok := fm.values[name]; ok {
		return f.Descriptor
	}
	return ""
}

// Set writes to a field, adding it to the map (after the declared ones)
// when the name is not yet present; synthetic classes rely on this for
// names they never declared.
func (fm *FieldMap) Set(name string, v Value) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	if f, ok := fm.values[name]; ok {
		f.Value = v
		return
	}
	fm.values[name] = &Field{Value: v}
	fm.order = append(fm.order, name)
}

// SetTyped declares-and-sets a field with an explicit descriptor, used
// when seeding an Instance from its class's declared field list.
func (fm *FieldMap) SetTyped(name, descriptor string, v Value) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	if _, ok := fm.values[name]; !ok {
		fm.order = append(fm.order, name)
	}
	fm.values[name] = &Field{Descriptor: descriptor, Value: v}
}

// Names returns field names in insertion order.
func (fm *FieldMap) Names() []string {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	out := make([]string, len(fm.order))
	copy(out, fm.order)
	return out
}

// ArrayData is the backing of an Array object.
// Sub-arrays are views sharing the store: a Go slice re-slice of Store
// already gives that sharing for free.
type ArrayData struct {
	ElementDescriptor string
	Dims              []int // remaining dimension vector for this view
	Store             []Value
}

func (a *ArrayData) Len() int { return a.Dims[0] }

// stride is the number of scalar elements spanned by one index at this
// view's outermost dimension.
func (a *ArrayData) stride() int {
	s := 1
	for _, d := range a.Dims[1:] {
		s *= d
	}
	return s
}

// Monitor is the raw per-object synchronization state operated on by
// package monitor; kept here as plain data so monitor can
// stay a thin behavioral layer without object depending on it.
type Monitor struct {
	Mu       sync.Mutex
	Cond     sync.Cond
	OwnerSet bool
	Owner    uint64 // thread id of current owner, valid iff OwnerSet
	Waiters  []chan struct{}
}

// Object is the polymorphic heap record; only one of the variant-
// specific field groups below is meaningful for a given Kind.
type Object struct {
	Kind ObjKind

	// Instance / String / ClassMirror: the class this object is an
	// instance of, referenced by fully-qualified name rather than a
	// direct *Class pointer to avoid an object<->registry import cycle.
	ClassName string

	// Instance / String
	Fields *FieldMap

	// String: decoded text is authoritative; Fields["value"] mirrors it
	// as a byte array for code that walks fields generically.
	Text string

	// ClassMirror: the class this mirror names (const-class, reflection).
	MirrorOf string

	// Number: a single atomic 64-bit word, read/written at 32- or 64-bit
	// width depending on the accessor called.
	word int64

	// Array
	Array *ArrayData

	mon      Monitor
	mark     uint32 // GC mark bit, non-zero means "reachable this cycle"
	hashSet  bool
	hash     uint32
	identity uintptr
}

// TheNull is the singleton Null heap object: equality
// with any other null reference is true.
var TheNull = &Object{Kind: KindNull, ClassName: "java/lang/Object"}

func newHeader() Monitor {
	m := Monitor{}
	m.Cond.L = &m.Mu
	return m
}

// NewNumber allocates a Number object carrying the given 64-bit word.
func NewNumber(bits int64) *Object {
	o := &Object{Kind: KindNumber, ClassName: "java/lang/Number", word: bits}
	o.mon = newHeader()
	o.mon.Cond.L = &o.mon.Mu
	stampIdentity(o)
	return o
}

// NewString allocates a String instance seeded with text.
func NewString(text string) *Object {
	o := &Object{Kind: KindString, ClassName: "java/lang/String", Text: text, Fields: newFieldMap()}
	o.mon = newHeader()
	o.mon.Cond.L = &o.mon.Mu
	o.Fields.SetTyped("value", "[B", Ref32(NewByteArray([]byte(text))))
	stampIdentity(o)
	return o
}

// NewInstance allocates an Instance, seeding its field map from the
// declared fields of className and every superclass.
func NewInstance(className string, provider ClassProvider) *Object {
	o := &Object{Kind: KindInstance, ClassName: className, Fields: newFieldMap()}
	o.mon = newHeader()
	o.mon.Cond.L = &o.mon.Mu
	for _, fs := range provider.DeclaredFields(className) {
		o.Fields.SetTyped(fs.Name, fs.Descriptor, zeroFor(fs.Descriptor))
	}
	stampIdentity(o)
	return o
}

// NewClassMirror allocates the java.lang.Class instance that names target.
func NewClassMirror(target string) *Object {
	o := &Object{Kind: KindClassMirror, ClassName: "java/lang/Class", MirrorOf: target, Fields: newFieldMap()}
	o.mon = newHeader()
	o.mon.Cond.L = &o.mon.Mu
	stampIdentity(o)
	return o
}

// elemWidth is the number of Value slots one leaf element of descriptor
// occupies: 2 for the wide primitives (long/double), 1 otherwise
// (including references and sub-array views).
func elemWidth(descriptor string) int {
	if descriptor == "J" || descriptor == "D" {
		return 2
	}
	return 1
}

// NewArray allocates an array whose element descriptor and dimension
// vector are given; every element starts at its type's zero value. A
// leaf of a wide-primitive array occupies two consecutive Store slots
// (low word, high word), mirroring the register-pair convention.
func NewArray(elemDescriptor string, dims []int) *Object {
	total := 1
	for _, d := range dims {
		total *= d
	}
	total *= elemWidth(elemDescriptor)
	store := make([]Value, total)
	z := zeroFor(elemDescriptor)
	for i := range store {
		store[i] = z
	}
	ddims := make([]int, len(dims))
	copy(ddims, dims)
	o := &Object{Kind: KindArray, ClassName: arrayClassName(elemDescriptor, len(dims)), Array: &ArrayData{
		ElementDescriptor: elemDescriptor,
		Dims:              ddims,
		Store:             store,
	}}
	o.mon = newHeader()
	o.mon.Cond.L = &o.mon.Mu
	stampIdentity(o)
	return o
}

// NewByteArray is a convenience constructor for a 1-D byte array, used to
// back String's "value" field.
func NewByteArray(b []byte) *Object {
	o := NewArray("B", []int{len(b)})
	for i, c := range b {
		o.Array.Store[i] = Int32(int32(int8(c)))
	}
	return o
}

func arrayClassName(elemDescriptor string, dims int) string {
	prefix := ""
	for i := 0; i < dims; i++ {
		prefix += "["
	}
	return prefix + elemDescriptor
}

// zeroFor returns the default Value for a type descriptor: numeric fields
// start at 0, reference fields at null.
func zeroFor(descriptor string) Value {
	if len(descriptor) == 0 {
		return NullValue()
	}
	switch descriptor[0] {
	case 'L', '[':
		return Ref32(TheNull)
	default:
		return Int32(0)
	}
}

func stampIdentity(o *Object) {
	o.identity = uintptr(unsafe.Pointer(o))
}

// IdentityHash returns this object's stable identity hash, derived from
// its address at first request and cached thereafter.
func (o *Object) IdentityHash() uint32 {
	if o.hashSet {
		return o.hash
	}
	// FNV-1a over the address bytes: cheap, stable for the object's
	// lifetime, and avoids exposing the raw pointer value directly.
	h := uint32(2166136261)
	addr := uint64(o.identity)
	for i := 0; i < 8; i++ {
		h ^= uint32(addr & 0xff)
		h *= 16777619
		addr >>= 8
	}
	o.hash = h
	o.hashSet = true
	return h
}

// MonitorCheck blocks while a different thread owns this object's
// monitor, but never acquires ownership itself.
func (o *Object) MonitorCheck(threadID uint64) {
	o.mon.Mu.Lock()
	for o.mon.OwnerSet && o.mon.Owner != threadID {
		o.mon.Cond.Wait()
	}
	o.mon.Mu.Unlock()
}

// Mon exposes the raw monitor state for package monitor.
func (o *Object) Mon() *Monitor { return &o.mon }

// GetField reads a named field after the monitor_check() access gate.
func (o *Object) GetField(name string, threadID uint64) (Value, bool) {
	o.MonitorCheck(threadID)
	return o.Fields.Get(name)
}

// SetField writes a named field after the monitor_check() access gate.
func (o *Object) SetField(name string, v Value, threadID uint64) {
	o.MonitorCheck(threadID)
	o.Fields.Set(name, v)
}

// wideHighSuffix marks the FieldMap entry holding a wide instance
// field's high word; the declared field itself carries the low word.
const wideHighSuffix = "\x00hi"

// GetFieldWide reads the (low, high) pair of a wide instance field.
func (o *Object) GetFieldWide(name string, threadID uint64) (lo, hi Value) {
	o.MonitorCheck(threadID)
	lo, _ = o.Fields.Get(name)
	hi, _ = o.Fields.Get(name + wideHighSuffix)
	return lo, hi
}

// SetFieldWide writes the (low, high) pair of a wide instance field.
func (o *Object) SetFieldWide(name string, lo, hi Value, threadID uint64) {
	o.MonitorCheck(threadID)
	o.Fields.Set(name, lo)
	o.Fields.Set(name+wideHighSuffix, hi)
}

// --- Number atomics ---

func (o *Object) LoadWord() int64 { return atomic.LoadInt64(&o.word) }
func (o *Object) StoreWord(v int64) { atomic.StoreInt64(&o.word, v) }
func (o *Object) Load32() int32   { return int32(atomic.LoadInt64(&o.word)) }
func (o *Object) Store32(v int32) { atomic.StoreInt64(&o.word, int64(v)) }

func (o *Object) GetAndSet64(v int64) int64 { return atomic.SwapInt64(&o.word, v) }
func (o *Object) GetAndAdd64(delta int64) int64 {
	return atomic.AddInt64(&o.word, delta) - delta
}
func (o *Object) AddAndGet64(delta int64) int64 { return atomic.AddInt64(&o.word, delta) }
func (o *Object) CompareAndSet64(expect, update int64) bool {
	return atomic.CompareAndSwapInt64(&o.word, expect, update)
}

// WeakCompareAndSet64 has relaxed semantics in the JMM sense; Go's atomic CAS gives us that directly, with no spurious-failure
// behavior to emulate since we don't need LL/SC semantics here.
func (o *Object) WeakCompareAndSet64(expect, update int64) bool {
	return atomic.CompareAndSwapInt64(&o.word, expect, update)
}

func (o *Object) GetAndSet32(v int32) int32 {
	for {
		old := o.Load32()
		if o.CompareAndSet64(int64(old), int64(v)) {
			return old
		}
	}
}

func (o *Object) GetAndAdd32(delta int32) int32 {
	for {
		old := o.Load32()
		if o.CompareAndSet64(int64(old), int64(old+delta)) {
			return old
		}
	}
}

func (o *Object) AddAndGet32(delta int32) int32 { return o.GetAndAdd32(delta) + delta }

func (o *Object) CompareAndSet32(expect, update int32) bool {
	return o.CompareAndSet64(int64(expect), int64(update))
}
