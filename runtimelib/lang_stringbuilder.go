package runtimelib

import (
	"strconv"

	"dalvik/object"
	"dalvik/registry"
	"dalvik/synth"
)

// bufOf reads the accumulated text held in a StringBuilder's "buf" field.
func bufOf(o *object.Object) string {
	v, ok := o.Fields.Get("buf")
	if !ok {
		return ""
	}
	return v.AsRef().Text
}

func registerStringBuilder(r *registry.Registry) {
	synth.NewClass("java/lang/StringBuilder", "java/lang/Object").
		AddField("buf", "Ljava/lang/String;", false).
		AddInstanceMethod("<init>", "()V", func(args []object.Value) (object.Value, object.Value, error) {
			args[0].AsRef().Fields.Set("buf", object.Ref32(object.NewString("")))
			return object.NullValue(), object.NullValue(), nil
		}).
		AddInstanceMethod("<init>", "(Ljava/lang/String;)V", func(args []object.Value) (object.Value, object.Value, error) {
			args[0].AsRef().Fields.Set("buf", object.Ref32(object.NewString(args[1].AsRef().Text)))
			return object.NullValue(), object.NullValue(), nil
		}).
		AddInstanceMethod("append", "(Ljava/lang/String;)Ljava/lang/StringBuilder;", func(args []object.Value) (object.Value, object.Value, error) {
			recv := args[0].AsRef()
			recv.Fields.Set("buf", object.Ref32(object.NewString(bufOf(recv)+args[1].AsRef().Text)))
			return args[0], object.NullValue(), nil
		}).
		AddInstanceMethod("append", "(I)Ljava/lang/StringBuilder;", func(args []object.Value) (object.Value, object.Value, error) {
			recv := args[0].AsRef()
			recv.Fields.Set("buf", object.Ref32(object.NewString(bufOf(recv)+strconv.Itoa(int(args[1].AsInt())))))
			return args[0], object.NullValue(), nil
		}).
		AddInstanceMethod("length", "()I", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Int32(int32(len([]rune(bufOf(args[0].AsRef()))))), object.NullValue(), nil
		}).
		AddInstanceMethod("toString", "()Ljava/lang/String;", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Ref32(object.NewString(bufOf(args[0].AsRef()))), object.NullValue(), nil
		}).
		Finish(r)
}
