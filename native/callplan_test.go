package native

import "testing"

func TestPrepareCallTagsPrimitivesAndObjects(t *testing.T) {
	plan, err := PrepareCall("(Ljava/lang/String;IJFD[I)I")
	if err != nil {
		t.Fatalf("PrepareCall: %v", err)
	}
	want := []Tag{TagPointer, TagInt32, TagInt64, TagFloat, TagDouble, TagPointer}
	if len(plan.Params) != len(want) {
		t.Fatalf("expected %d params, got %d (%v)", len(want), len(plan.Params), plan.Params)
	}
	for i, tag := range want {
		if plan.Params[i] != tag {
			t.Fatalf("param %d: got %v, want %v", i, plan.Params[i], tag)
		}
	}
	if plan.Return != TagInt32 {
		t.Fatalf("return: got %v, want TagInt32", plan.Return)
	}
}

func TestPrepareCallVoidReturn(t *testing.T) {
	plan, err := PrepareCall("()V")
	if err != nil {
		t.Fatalf("PrepareCall: %v", err)
	}
	if len(plan.Params) != 0 {
		t.Fatalf("expected no params, got %v", plan.Params)
	}
	if plan.Return != TagVoid {
		t.Fatalf("return: got %v, want TagVoid", plan.Return)
	}
}

func TestPrepareCallRejectsUnsupportedChar(t *testing.T) {
	if _, err := PrepareCall("(Q)V"); err == nil {
		t.Fatalf("expected an error for an unsupported descriptor character")
	}
}

func TestPrepareCallMultiDimensionalArray(t *testing.T) {
	plan, err := PrepareCall("([[I)V")
	if err != nil {
		t.Fatalf("PrepareCall: %v", err)
	}
	if len(plan.Params) != 1 || plan.Params[0] != TagPointer {
		t.Fatalf("expected one pointer param for a multi-dim array, got %v", plan.Params)
	}
}
