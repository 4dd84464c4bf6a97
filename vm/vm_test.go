package vm

import (
	"testing"

	"dalvik/dex"
	"dalvik/globals"
	"dalvik/object"
	"dalvik/synth"
)

func u16(v uint16) (byte, byte) { return byte(v), byte(v >> 8) }

func enc11n(op byte, a int, lit int8) []byte {
	return []byte{op, byte(a&0x0F) | byte(lit&0x0F)<<4}
}

func enc11x(op byte, a int) []byte { return []byte{op, byte(a)} }

func enc35c(op byte, poolIdx uint16, regs []int) []byte {
	count := len(regs)
	padded := [5]int{}
	copy(padded[:], regs)
	g := padded[4]
	b1 := byte(count<<4) | byte(g&0x0F)
	poolLo, poolHi := u16(poolIdx)
	cu2 := uint16(padded[0]&0x0F) | uint16(padded[1]&0x0F)<<4 | uint16(padded[2]&0x0F)<<8 | uint16(padded[3]&0x0F)<<12
	cuLo, cuHi := u16(cu2)
	return []byte{op, b1, poolLo, poolHi, cuLo, cuHi}
}

func concatIns(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// programContainer builds a one-class container whose main method calls
// a zero-argument static method resolved against test/Util (registered
// separately as a synthetic class) and returns its result.
func programContainer() *dex.Container {
	mainCode := concatIns(
		enc35c(0x71, 0, nil), // invoke-static {}, test/Util.answer()I
		enc11x(0x0a, 0),      // move-result v0
		enc11x(0x0f, 0),      // return v0
	)
	return &dex.Container{
		Methods: []dex.MethodRef{
			{ClassName: "test/Util", Name: "answer", Descriptor: "()I"},
		},
		Classes: []dex.ClassDef{
			{
				Name:       "test/Program",
				Superclass: "java/lang/Object",
				Methods: []dex.Method{
					{
						Name: "main", Descriptor: "([Ljava/lang/String;)I",
						AccessFlags:  dex.AccStatic | dex.AccPublic,
						RegisterSize: 2, InsSize: 1, Code: mainCode,
					},
				},
			},
		},
	}
}

func newTestVM(t *testing.T) *VM {
	t.Helper()
	g := globals.New("", nil, nil)
	v := New(g)
	v.Classes.AddContainer(programContainer())
	synth.NewClass("test/Util", "java/lang/Object").
		AddStaticMethod("answer", "()I", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Int32(42), object.NullValue(), nil
		}).
		Finish(v.Classes)
	return v
}

func TestRunMainDrivesInvokeStaticThroughToReturn(t *testing.T) {
	v := newTestVM(t)
	if err := v.RunMain("test/Program", "main([Ljava/lang/String;)I", []string{"a", "b"}); err != nil {
		t.Fatalf("RunMain: %v", err)
	}
}

func TestRunMainUnknownMainClassFails(t *testing.T) {
	v := newTestVM(t)
	if err := v.RunMain("nope/Missing", "main([Ljava/lang/String;)I", nil); err == nil {
		t.Fatalf("expected an error for an unresolvable main class")
	}
}

func TestRunMainUnknownMainMethodFails(t *testing.T) {
	v := newTestVM(t)
	if err := v.RunMain("test/Program", "noSuchMethod()V", nil); err == nil {
		t.Fatalf("expected an error for a missing main method signature")
	}
}

func TestNewThreadIsManagedByTheCollectorUntilRetired(t *testing.T) {
	v := newTestVM(t)
	th := v.NewThread("worker")
	if v.GC.Count() != 0 {
		t.Fatalf("expected no tracked objects yet")
	}
	// Registering/unregistering shouldn't itself allocate or panic; the
	// collector's thread set is exercised indirectly by Collect during
	// RunMain above. Here we just confirm retirement doesn't error out.
	v.RetireThread(th)
}
