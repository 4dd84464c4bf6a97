package synth

import (
	"testing"

	"dalvik/dex"
	"dalvik/object"
	"dalvik/registry"
)

func TestBuilderRegistersCallableStaticMethod(t *testing.T) {
	r := registry.New(nil)
	NewClass("test/Util", "java/lang/Object").
		AddStaticMethod("triple", "(I)I", func(args []object.Value) (object.Value, object.Value, error) {
			return object.Int32(args[0].AsInt() * 3), object.NullValue(), nil
		}).
		Finish(r)

	cls, err := r.GetOrLoad("test/Util")
	if err != nil {
		t.Fatal(err)
	}
	if !cls.StaticInitialized {
		t.Fatal("a synthetic class with no <clinit> should be vacuously initialized")
	}
	m, ok := cls.Methods["triple(I)I"]
	if !ok {
		t.Fatal("expected triple(I)I to be registered")
	}
	if !m.IsStatic() || !m.IsSynthetic() || m.HasBytecode() {
		t.Fatalf("expected a static synthetic method with no bytecode, got %+v", m)
	}
	result, _, err := m.Callback([]object.Value{object.Int32(7)})
	if err != nil {
		t.Fatal(err)
	}
	if got := result.AsInt(); got != 21 {
		t.Fatalf("expected callback to return 21, got %d", got)
	}
}

func TestBuilderFieldAndInterfaceBookkeeping(t *testing.T) {
	r := registry.New(nil)
	NewClass("test/Box", "java/lang/Object").
		Implements("java/io/Serializable").
		AddField("count", "I", true).
		AddField("label", "Ljava/lang/String;", false).
		Finish(r)

	cls, err := r.GetOrLoad("test/Box")
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsSubclassOrSelf(cls, "java/io/Serializable") {
		t.Fatal("expected Box to satisfy its declared interface")
	}
	countField, ok := cls.Fields["count"]
	if !ok || !countField.Static {
		t.Fatal("expected a static field named count")
	}
	if got := countField.Get().AsInt(); got != 0 {
		t.Fatalf("expected a zero-seeded static field, got %d", got)
	}
	labelField, ok := cls.Fields["label"]
	if !ok || labelField.Static {
		t.Fatal("expected a non-static field named label")
	}

	specs := r.DeclaredFields("test/Box")
	if len(specs) != 1 || specs[0].Name != "label" {
		t.Fatalf("expected only the instance field in DeclaredFields, got %+v", specs)
	}
}

func TestBuilderClinitLeavesClassPendingUntilRun(t *testing.T) {
	r := registry.New(nil)
	ran := false
	NewClass("test/Seeded", "java/lang/Object").
		AddField("value", "I", true).
		AddClinit(func(args []object.Value) (object.Value, object.Value, error) {
			ran = true
			return object.NullValue(), object.NullValue(), nil
		}).
		Finish(r)

	cls, err := r.GetOrLoad("test/Seeded")
	if err != nil {
		t.Fatal(err)
	}
	if cls.StaticInitialized {
		t.Fatal("a class with a <clinit> must not be marked initialized until the interpreter runs it")
	}
	if cls.ClInit != registry.ClInitPending {
		t.Fatalf("expected ClInitPending, got %v", cls.ClInit)
	}
	clinit, ok := cls.Methods["<clinit>()V"]
	if !ok {
		t.Fatal("expected <clinit>()V to be registered")
	}
	if _, _, err := clinit.Callback(nil); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Fatal("expected the clinit callback to have run")
	}
}

func TestAddMethodAcceptsArbitraryAccessFlags(t *testing.T) {
	r := registry.New(nil)
	NewClass("test/Native", "java/lang/Object").
		AddMethod(true, "greet", "()Ljava/lang/String;", dex.AccPublic|dex.AccFinal,
			func(args []object.Value) (object.Value, object.Value, error) {
				return object.NullValue(), object.NullValue(), nil
			}).
		Finish(r)

	cls, err := r.GetOrLoad("test/Native")
	if err != nil {
		t.Fatal(err)
	}
	m := cls.Methods["greet()Ljava/lang/String;"]
	if m == nil {
		t.Fatal("expected greet()Ljava/lang/String; to be registered")
	}
	if m.IsStatic() {
		t.Fatal("expected an instance method")
	}
	if m.AccessFlags&dex.AccFinal == 0 {
		t.Fatal("expected the supplied access flags to be preserved")
	}
}
