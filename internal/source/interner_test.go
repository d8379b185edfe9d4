package source

import "testing"

func TestInterner(t *testing.T) {
	in := NewInterner()
	a := in.Intern("buf")
	b := in.Intern("view")
	if a == b || a == NoStringID {
		t.Fatalf("ids: a=%d b=%d", a, b)
	}
	if again := in.Intern("buf"); again != a {
		t.Errorf("re-intern = %d, want %d", again, a)
	}
	if s, ok := in.Lookup(b); !ok || s != "view" {
		t.Errorf("Lookup = %q,%v", s, ok)
	}
	if _, ok := in.Lookup(StringID(100)); ok {
		t.Error("expected miss for unknown id")
	}
	if in.Intern("") != NoStringID {
		t.Error("empty string must map to NoStringID")
	}
	if in.Len() != 3 {
		t.Errorf("Len = %d", in.Len())
	}
}

func TestInternerMustLookupPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewInterner().MustLookup(7)
}
