package runtimelib

import (
	"fmt"
	"strconv"

	"dalvik/object"
	"dalvik/registry"
	"dalvik/synth"
)

// javaStringHash implements String.hashCode()'s defined algorithm:
// s[0]*31^(n-1) + s[1]*31^(n-2) + ... + s[n-1], computed over UTF-16
// code units in the real JVM; this engine stores text as Go strings, so
// it is computed over runes instead -- identical for the ASCII-range
// test strings this engine actually exercises.
func javaStringHash(s string) int32 {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	return h
}

func registerString(r *registry.Registry) {
	synth.NewClass("java/lang/String", "java/lang/Object").
		AddInstanceMethod("length", "()I", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Int32(int32(len([]rune(args[0].AsRef().Text)))), object.NullValue(), nil
		}).
		AddInstanceMethod("isEmpty", "()Z", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Int32(boolInt(args[0].AsRef().Text == "")), object.NullValue(), nil
		}).
		AddInstanceMethod("charAt", "(I)C", func(args []object.Value) (object.Value, object.Value, error) {
			runes := []rune(args[0].AsRef().Text)
			idx := int(args[1].AsInt())
			if idx < 0 || idx >= len(runes) {
				return object.NullValue(), object.NullValue(), fmt.Errorf("String index out of range: %d", idx)
			}
			return object.Int32(runes[idx]), object.NullValue(), nil
		}).
		AddInstanceMethod("concat", "(Ljava/lang/String;)Ljava/lang/String;", func(args []object.Value) (object.Value, object.Value, error) {
			joined := args[0].AsRef().Text + args[1].AsRef().Text
			return object.Ref32(object.NewString(joined)), object.NullValue(), nil
		}).
		AddInstanceMethod("equals", "(Ljava/lang/Object;)Z", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Int32(boolInt(object.ObjectsEqual(args[0].AsRef(), args[1].AsRef()))), object.NullValue(), nil
		}).
		AddInstanceMethod("hashCode", "()I", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Int32(javaStringHash(args[0].AsRef().Text)), object.NullValue(), nil
		}).
		AddInstanceMethod("toString", "()Ljava/lang/String;", func(args []object.Value) (object.Value, object.Value, error) {
			return args[0], object.NullValue(), nil
		}).
		AddStaticMethod("valueOf", "(I)Ljava/lang/String;", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Ref32(object.NewString(strconv.Itoa(int(args[0].AsInt())))), object.NullValue(), nil
		}).
		Finish(r)
}
