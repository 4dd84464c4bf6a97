package runtimelib

import (
	"time"

	"dalvik/object"
	"dalvik/registry"
	"dalvik/synth"
)

func registerThread(r *registry.Registry) {
	synth.NewClass("java/lang/Thread", "java/lang/Object").
		AddInstanceMethod("registerNatives", "()V", func(args []object.Value) (object.Value, object.Value, error) {
			return object.NullValue(), object.NullValue(), nil
		}).
		AddInstanceMethod("start", "()V", func(args []object.Value) (object.Value, object.Value, error) {
			return object.NullValue(), object.NullValue(), nil
		}).
		AddInstanceMethod("getName", "()Ljava/lang/String;", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Ref32(object.NewString("main")), object.NullValue(), nil
		}).
		AddStaticMethod("sleep", "(J)V", func(args []object.Value) (object.Value, object.Value, error) {
			ms := object.ToInt64(args[0], args[1])
			if ms > 0 {
				time.Sleep(time.Duration(ms) * time.Millisecond)
			}
			return object.NullValue(), object.NullValue(), nil
		}).
		AddStaticMethod("currentThread", "()Ljava/lang/Thread;", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Ref32(object.NewInstance("java/lang/Thread", r)), object.NullValue(), nil
		}).
		Finish(r)
}
