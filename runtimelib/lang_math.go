package runtimelib

import (
	"math"
	"math/rand"

	"dalvik/object"
	"dalvik/registry"
	"dalvik/synth"
)

func registerMath(r *registry.Registry) {
	synth.NewClass("java/lang/Math", "java/lang/Object").
		AddStaticMethod("abs", "(I)I", func(args []object.Value) (object.Value, object.Value, error) {
			n := args[0].AsInt()
			if n < 0 {
				n = -n
			}
			return object.Int32(n), object.NullValue(), nil
		}).
		AddStaticMethod("max", "(II)I", func(args []object.Value) (object.Value, object.Value, error) {
			a, b := args[0].AsInt(), args[1].AsInt()
			if a > b {
				return object.Int32(a), object.NullValue(), nil
			}
			return object.Int32(b), object.NullValue(), nil
		}).
		AddStaticMethod("min", "(II)I", func(args []object.Value) (object.Value, object.Value, error) {
			a, b := args[0].AsInt(), args[1].AsInt()
			if a < b {
				return object.Int32(a), object.NullValue(), nil
			}
			return object.Int32(b), object.NullValue(), nil
		}).
		AddStaticMethod("sqrt", "(D)D", func(args []object.Value) (object.Value, object.Value, error) {
			d := object.ToFloat64(args[0], args[1])
			lo, hi := object.FromFloat64(math.Sqrt(d))
			return lo, hi, nil
		}).
		AddStaticMethod("pow", "(DD)D", func(args []object.Value) (object.Value, object.Value, error) {
			base := object.ToFloat64(args[0], args[1])
			exp := object.ToFloat64(args[2], args[3])
			lo, hi := object.FromFloat64(math.Pow(base, exp))
			return lo, hi, nil
		}).
		AddStaticMethod("random", "()D", func(args []object.Value) (object.Value, object.Value, error) {
			lo, hi := object.FromFloat64(rand.Float64())
			return lo, hi, nil
		}).
		Finish(r)
}
