/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 * Pre-parsed container shape. The binary DEX/APK/JAR reader itself is an
 * external collaborator; this file defines the indexed tables the core
 * consumes, modeled on the parsed-class shape in
 * jacobin/classloader/classloader.go (ParsedClass, field, method, attr,
 * exception, bootstrapMethod) but reduced to what the interpreter actually
 * needs at (dex_idx, pool_idx) resolution time.
 */

// Package dex defines the pre-parsed view a container reader hands to the
// class registry: indexed string/type/field/method/class tables plus, per
// method, its raw bytecode, register count and try/catch ranges.
package dex

// TryItem is one try/catch range within a method's bytecode: a
// {start_pc, insn_count, [(type_idx, handler_pc)...], catch_all_pc}
// record.
type TryItem struct {
	StartPC   uint32
	InsnCount uint32
	Handlers  []CatchHandler
	CatchAll  int32 // -1 if absent
}

// CatchHandler is one (type_idx, handler_pc) pair within a TryItem.
type CatchHandler struct {
	TypeIdx   uint32 // index into the container's type table
	HandlerPC uint32
}

// AccessFlags mirrors the subset of Dalvik access_flags this VM inspects.
type AccessFlags uint32

const (
	AccPublic AccessFlags = 1 << iota
	AccPrivate
	AccProtected
	AccStatic
	AccFinal
	AccSynchronized
	AccBridge
	AccVarargs
	AccNative
	AccInterface
	AccAbstract
	AccStrict
	AccSynthetic
	AccAnnotation
	AccEnum
	AccConstructor
)

func (f AccessFlags) Has(bit AccessFlags) bool { return f&bit != 0 }

// Method is one encoded method within a ClassDef.
type Method struct {
	Name        string
	Descriptor  string // e.g. "(II)I"
	AccessFlags AccessFlags
	RegisterSize uint16 // declared register count for this method's frame
	InsSize      uint16 // number of registers occupied by incoming arguments
	OutsSize     uint16
	Code         []byte // raw bytecode, byte-addressed
	Tries        []TryItem
}

func (m *Method) IsStatic() bool  { return m.AccessFlags.Has(AccStatic) }
func (m *Method) IsNative() bool  { return m.AccessFlags.Has(AccNative) }
func (m *Method) IsAbstract() bool { return m.AccessFlags.Has(AccAbstract) }

// Signature is name + "(" + param-descriptors + ")" + return-descriptor,
// the lookup key used throughout the registry.
func (m *Method) Signature() string { return m.Name + m.Descriptor }

// Field is one declared field within a ClassDef.
type Field struct {
	Name        string
	Descriptor  string // "I", "Ljava/lang/String;", "[I", ...
	AccessFlags AccessFlags
}

func (f *Field) IsStatic() bool { return f.AccessFlags.Has(AccStatic) }

// ClassDef is one class definition within a Container.
type ClassDef struct {
	Name        string // fully-qualified, slash form: "java/lang/Foo"
	Superclass  string // "" for java/lang/Object
	Interfaces  []string
	AccessFlags AccessFlags
	Fields      []Field
	Methods     []Method
	SourceFile  string
}

func (c *ClassDef) IsInterface() bool { return c.AccessFlags.Has(AccInterface) }
func (c *ClassDef) IsAbstract() bool  { return c.AccessFlags.Has(AccAbstract) }

// Container is one parsed DEX file: a self-contained set of classes that
// share string/type/method/field pools. The registry resolves
// (dex_idx, pool_idx) pairs against a specific Container's tables.
type Container struct {
	// Strings/Types/Fields/Methods are the constant pools addressed by
	// pool_idx from bytecode operands (const-string, iget, invoke-*, ...).
	Strings []string
	Types   []string // type descriptors, e.g. "Ljava/lang/String;" or "[I"
	Fields  []FieldRef
	Methods []MethodRef
	Classes []ClassDef
}

// FieldRef is a (class, name, descriptor) reference resolvable to a Field.
type FieldRef struct {
	ClassName  string
	Name       string
	Descriptor string
}

// MethodRef is a (class, name, descriptor) reference resolvable to a Method.
type MethodRef struct {
	ClassName  string
	Name       string
	Descriptor string
}

// ArrayRef describes an array-type pool entry: element descriptor plus
// dimension count, e.g. "[[I" -> element "I", dims 2.
type ArrayRef struct {
	ElementDescriptor string
	Dims              int
}

// ResolveArray decodes a type descriptor like "[[Ljava/lang/String;" into
// its element descriptor and dimension count.
func ResolveArray(descriptor string) ArrayRef {
	dims := 0
	for dims < len(descriptor) && descriptor[dims] == '[' {
		dims++
	}
	return ArrayRef{ElementDescriptor: descriptor[dims:], Dims: dims}
}
