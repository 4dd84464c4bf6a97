package runtimelib

import (
	"fmt"
	"os"
	"time"

	"dalvik/native"
	"dalvik/object"
	"dalvik/registry"
	"dalvik/synth"
)

func registerSystem(r *registry.Registry, bridge *native.Bridge) {
	synth.NewClass("java/lang/System", "java/lang/Object").
		AddStaticMethod("registerNatives", "()V", func(args []object.Value) (object.Value, object.Value, error) {
			return object.NullValue(), object.NullValue(), nil
		}).
		AddStaticMethod("currentTimeMillis", "()J", func(args []object.Value) (object.Value, object.Value, error) {
			lo, hi := object.FromInt64(time.Now().UnixMilli())
			return lo, hi, nil
		}).
		AddStaticMethod("nanoTime", "()J", func(args []object.Value) (object.Value, object.Value, error) {
			lo, hi := object.FromInt64(time.Now().UnixNano())
			return lo, hi, nil
		}).
		AddStaticMethod("identityHashCode", "(Ljava/lang/Object;)I", func(args []object.Value) (object.Value, object.Value, error) {
			ref := args[0].AsRef()
			if ref == nil {
				return object.Int32(0), object.NullValue(), nil
			}
			return object.Int32(int32(ref.IdentityHash())), object.NullValue(), nil
		}).
		AddStaticMethod("loadLibrary", "(Ljava/lang/String;)V", func(args []object.Value) (object.Value, object.Value, error) {
			_, err := bridge.LoadLibrary(args[0].AsRef().Text)
			return object.NullValue(), object.NullValue(), err
		}).
		AddStaticMethod("exit", "(I)V", func(args []object.Value) (object.Value, object.Value, error) {
			os.Exit(int(args[0].AsInt()))
			return object.NullValue(), object.NullValue(), nil
		}).
		AddStaticMethod("arraycopy", "(Ljava/lang/Object;ILjava/lang/Object;II)V", func(args []object.Value) (object.Value, object.Value, error) {
			src, srcPos := args[0].AsRef(), int(args[1].AsInt())
			dst, dstPos := args[2].AsRef(), int(args[3].AsInt())
			length := int(args[4].AsInt())
			if srcPos < 0 || dstPos < 0 || length < 0 ||
				srcPos+length > src.Length() || dstPos+length > dst.Length() {
				return object.NullValue(), object.NullValue(), fmt.Errorf("arraycopy: index out of bounds")
			}
			for i := 0; i < length; i++ {
				dst.SetAt(dstPos+i, src.At(srcPos+i))
			}
			return object.NullValue(), object.NullValue(), nil
		}).
		Finish(r)
}
