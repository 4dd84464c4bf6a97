package runtimelib

import (
	"fmt"

	"dalvik/object"
	"dalvik/registry"
	"dalvik/synth"
)

// registerObject replaces the registry's built-in, method-less
// java/lang/Object stub (registered so the interpreter always has a root
// class to chase) with one that answers the handful of Object methods
// every other class inherits.
func registerObject(r *registry.Registry) {
	synth.NewClass("java/lang/Object", "").
		AddInstanceMethod("registerNatives", "()V", func(args []object.Value) (object.Value, object.Value, error) {
			return object.NullValue(), object.NullValue(), nil
		}).
		AddInstanceMethod("<init>", "()V", func(args []object.Value) (object.Value, object.Value, error) {
			return object.NullValue(), object.NullValue(), nil
		}).
		AddInstanceMethod("hashCode", "()I", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Int32(int32(args[0].AsRef().IdentityHash())), object.NullValue(), nil
		}).
		AddInstanceMethod("equals", "(Ljava/lang/Object;)Z", func(args []object.Value) (object.Value, object.Value, error) {
			eq := object.ObjectsEqual(args[0].AsRef(), args[1].AsRef())
			return object.Int32(boolInt(eq)), object.NullValue(), nil
		}).
		AddInstanceMethod("toString", "()Ljava/lang/String;", func(args []object.Value) (object.Value, object.Value, error) {
			o := args[0].AsRef()
			text := fmt.Sprintf("%s@%x", o.ClassName, o.IdentityHash())
			return object.Ref32(object.NewString(text)), object.NullValue(), nil
		}).
		AddInstanceMethod("getClass", "()Ljava/lang/Class;", func(args []object.Value) (object.Value, object.Value, error) {
			cls, err := r.GetOrLoad(args[0].AsRef().ClassName)
			if err != nil {
				return object.NullValue(), object.NullValue(), err
			}
			return object.Ref32(cls.Mirror), object.NullValue(), nil
		}).
		Finish(r)
}

// boolInt is the canonical Z-typed encoding of a Go bool: 1 for true, 0
// for false, matching how the interpreter's own if-eq/if-ne handlers
// read a boolean register.
func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
