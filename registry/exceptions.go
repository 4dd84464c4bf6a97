/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 * Built-in java.lang.* exception classes, registered as
 * trivial synthetic classes so the interpreter can always raise an NPE,
 * ArithmeticException, etc. even when no runtime-library container has
 * been loaded yet.
 */

package registry

import "dalvik/object"

// ExceptionKinds lists the simple class names requires the
// interpreter to be able to raise.
var ExceptionKinds = []string{
	"RuntimeException",
	"NullPointerException",
	"ArithmeticException",
	"ArrayIndexOutOfBoundsException",
	"NegativeArraySizeException",
	"ClassCastException",
	"NoClassDefFoundError",
	"NoSuchMethodError",
	"NoSuchFieldException",
	"IllegalArgumentException",
	"OutOfMemoryError",
	"NumberFormatException",
	"VerifyError",
	"ExceptionInInitializerError",
}

func registerBuiltinExceptions(r *Registry) {
	object_ := &Class{
		Package: "java/lang", SimpleName: "Object", FQName: "java/lang/Object",
		DexIdx: -1, Methods: map[string]*Method{}, Fields: map[string]*Field{},
		StaticInitialized: true, ClInit: ClInitNone,
	}
	object_.Mirror = object.NewClassMirror(object_.FQName)
	r.AddClass(object_)

	throwable := newExceptionClass("java/lang/Throwable", "java/lang/Object")
	r.AddClass(throwable)

	for _, kind := range ExceptionKinds {
		fq := "java/lang/" + kind
		r.AddClass(newExceptionClass(fq, "java/lang/Throwable"))
	}
}

func newExceptionClass(fqname, superclass string) *Class {
	c := newClass(fqname, -1)
	c.Superclass = superclass
	c.StaticInitialized = true
	c.ClInit = ClInitNone
	c.Fields["message"] = &Field{Name: "message", Descriptor: "Ljava/lang/String;", DeclaringClass: fqname}
	c.fieldOrder = []string{"message"}
	return c
}

// Throw builds a heap Instance of java/lang/<kind> with its "message"
// field set to msg — the uniform way opcode helpers raise the program-
// visible exceptions named in
func (r *Registry) Throw(kind, msg string) *object.Object {
	fq := kind
	if fq == "" {
		fq = "RuntimeException"
	}
	if !hasSlash(fq) {
		fq = "java/lang/" + fq
	}
	cls, err := r.GetOrLoad(fq)
	if err != nil {
		cls, _ = r.GetOrLoad("java/lang/RuntimeException")
	}
	inst := object.NewInstance(cls.FQName, r)
	if !inst.Fields.Has("message") {
		inst.Fields.SetTyped("message", "Ljava/lang/String;", object.NullValue())
	}
	inst.Fields.Set("message", object.Ref32(object.NewString(msg)))
	return inst
}

func hasSlash(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			return true
		}
	}
	return false
}
