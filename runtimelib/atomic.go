package runtimelib

import (
	"strconv"

	"dalvik/object"
	"dalvik/registry"
	"dalvik/synth"
)

// atomicValue reads the Number object backing an Atomic{Integer,Long}'s
// "value" field, seeded by one of the constructors below.
func atomicValue(recv *object.Object) *object.Object {
	v, _ := recv.Fields.Get("value")
	return v.AsRef()
}

func registerAtomicInteger(r *registry.Registry) {
	synth.NewClass("java/util/concurrent/atomic/AtomicInteger", "java/lang/Object").
		AddField("value", "I", false).
		AddInstanceMethod("<init>", "()V", func(args []object.Value) (object.Value, object.Value, error) {
			args[0].AsRef().Fields.Set("value", object.Ref32(object.NewNumber(0)))
			return object.NullValue(), object.NullValue(), nil
		}).
		AddInstanceMethod("<init>", "(I)V", func(args []object.Value) (object.Value, object.Value, error) {
			n := object.NewNumber(int64(args[1].AsInt()))
			args[0].AsRef().Fields.Set("value", object.Ref32(n))
			return object.NullValue(), object.NullValue(), nil
		}).
		AddInstanceMethod("get", "()I", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Int32(atomicValue(args[0].AsRef()).Load32()), object.NullValue(), nil
		}).
		AddInstanceMethod("set", "(I)V", func(args []object.Value) (object.Value, object.Value, error) {
			atomicValue(args[0].AsRef()).Store32(args[1].AsInt())
			return object.NullValue(), object.NullValue(), nil
		}).
		AddInstanceMethod("getAndSet", "(I)I", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Int32(atomicValue(args[0].AsRef()).GetAndSet32(args[1].AsInt())), object.NullValue(), nil
		}).
		AddInstanceMethod("incrementAndGet", "()I", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Int32(atomicValue(args[0].AsRef()).AddAndGet32(1)), object.NullValue(), nil
		}).
		AddInstanceMethod("getAndIncrement", "()I", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Int32(atomicValue(args[0].AsRef()).GetAndAdd32(1)), object.NullValue(), nil
		}).
		AddInstanceMethod("decrementAndGet", "()I", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Int32(atomicValue(args[0].AsRef()).AddAndGet32(-1)), object.NullValue(), nil
		}).
		AddInstanceMethod("getAndDecrement", "()I", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Int32(atomicValue(args[0].AsRef()).GetAndAdd32(-1)), object.NullValue(), nil
		}).
		AddInstanceMethod("addAndGet", "(I)I", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Int32(atomicValue(args[0].AsRef()).AddAndGet32(args[1].AsInt())), object.NullValue(), nil
		}).
		AddInstanceMethod("getAndAdd", "(I)I", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Int32(atomicValue(args[0].AsRef()).GetAndAdd32(args[1].AsInt())), object.NullValue(), nil
		}).
		AddInstanceMethod("compareAndSet", "(II)Z", func(args []object.Value) (object.Value, object.Value, error) {
			ok := atomicValue(args[0].AsRef()).CompareAndSet32(args[1].AsInt(), args[2].AsInt())
			return object.Int32(boolInt(ok)), object.NullValue(), nil
		}).
		AddInstanceMethod("toString", "()Ljava/lang/String;", func(args []object.Value) (object.Value, object.Value, error) {
			n := atomicValue(args[0].AsRef()).Load32()
			return object.Ref32(object.NewString(strconv.Itoa(int(n)))), object.NullValue(), nil
		}).
		Finish(r)
}

func registerAtomicLong(r *registry.Registry) {
	synth.NewClass("java/util/concurrent/atomic/AtomicLong", "java/lang/Object").
		AddField("value", "J", false).
		AddInstanceMethod("<init>", "()V", func(args []object.Value) (object.Value, object.Value, error) {
			args[0].AsRef().Fields.Set("value", object.Ref32(object.NewNumber(0)))
			return object.NullValue(), object.NullValue(), nil
		}).
		AddInstanceMethod("<init>", "(J)V", func(args []object.Value) (object.Value, object.Value, error) {
			n := object.NewNumber(object.ToInt64(args[1], args[2]))
			args[0].AsRef().Fields.Set("value", object.Ref32(n))
			return object.NullValue(), object.NullValue(), nil
		}).
		AddInstanceMethod("get", "()J", func(args []object.Value) (object.Value, object.Value, error) {
			lo, hi := object.FromInt64(atomicValue(args[0].AsRef()).LoadWord())
			return lo, hi, nil
		}).
		AddInstanceMethod("set", "(J)V", func(args []object.Value) (object.Value, object.Value, error) {
			atomicValue(args[0].AsRef()).StoreWord(object.ToInt64(args[1], args[2]))
			return object.NullValue(), object.NullValue(), nil
		}).
		AddInstanceMethod("getAndSet", "(J)J", func(args []object.Value) (object.Value, object.Value, error) {
			lo, hi := object.FromInt64(atomicValue(args[0].AsRef()).GetAndSet64(object.ToInt64(args[1], args[2])))
			return lo, hi, nil
		}).
		AddInstanceMethod("incrementAndGet", "()J", func(args []object.Value) (object.Value, object.Value, error) {
			lo, hi := object.FromInt64(atomicValue(args[0].AsRef()).AddAndGet64(1))
			return lo, hi, nil
		}).
		AddInstanceMethod("getAndIncrement", "()J", func(args []object.Value) (object.Value, object.Value, error) {
			lo, hi := object.FromInt64(atomicValue(args[0].AsRef()).GetAndAdd64(1))
			return lo, hi, nil
		}).
		AddInstanceMethod("decrementAndGet", "()J", func(args []object.Value) (object.Value, object.Value, error) {
			lo, hi := object.FromInt64(atomicValue(args[0].AsRef()).AddAndGet64(-1))
			return lo, hi, nil
		}).
		AddInstanceMethod("getAndDecrement", "()J", func(args []object.Value) (object.Value, object.Value, error) {
			lo, hi := object.FromInt64(atomicValue(args[0].AsRef()).GetAndAdd64(-1))
			return lo, hi, nil
		}).
		AddInstanceMethod("addAndGet", "(J)J", func(args []object.Value) (object.Value, object.Value, error) {
			lo, hi := object.FromInt64(atomicValue(args[0].AsRef()).AddAndGet64(object.ToInt64(args[1], args[2])))
			return lo, hi, nil
		}).
		AddInstanceMethod("getAndAdd", "(J)J", func(args []object.Value) (object.Value, object.Value, error) {
			lo, hi := object.FromInt64(atomicValue(args[0].AsRef()).GetAndAdd64(object.ToInt64(args[1], args[2])))
			return lo, hi, nil
		}).
		AddInstanceMethod("compareAndSet", "(JJ)Z", func(args []object.Value) (object.Value, object.Value, error) {
			expect := object.ToInt64(args[1], args[2])
			update := object.ToInt64(args[3], args[4])
			ok := atomicValue(args[0].AsRef()).CompareAndSet64(expect, update)
			return object.Int32(boolInt(ok)), object.NullValue(), nil
		}).
		Finish(r)
}
