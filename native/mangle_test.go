package native

import "testing"

func TestSymbolSimple(t *testing.T) {
	got := Symbol("com.example.Native", "test", "(Ljava/lang/String;II)I", false)
	want := "Java_com_example_Native_test"
	if got != want {
		t.Fatalf("Symbol: got %q, want %q", got, want)
	}
}

func TestSymbolOverloadedAppendsMangledSignature(t *testing.T) {
	got := Symbol("com.example.Native", "test", "(Ljava/lang/String;II)I", true)
	want := "Java_com_example_Native_test__Ljava_lang_String_2II"
	if got != want {
		t.Fatalf("Symbol: got %q, want %q", got, want)
	}
}

func TestMangleSignatureEscapesEachSpecialCharacter(t *testing.T) {
	got := MangleSignature("(I[Ljava/pkg_name/Foo;J)V")
	want := "I_3Ljava_pkg_1name_Foo_2J"
	if got != want {
		t.Fatalf("MangleSignature: got %q, want %q", got, want)
	}
}

func TestMangleSignatureIgnoresReturnType(t *testing.T) {
	got := MangleSignature("()Ljava/lang/String;")
	if got != "" {
		t.Fatalf("MangleSignature: expected empty params, got %q", got)
	}
}
