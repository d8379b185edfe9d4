package source

import "testing"

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected Span
	}{
		{"disjoint", Span{File: 1, Start: 2, End: 4}, Span{File: 1, Start: 10, End: 12}, Span{File: 1, Start: 2, End: 12}},
		{"nested", Span{File: 1, Start: 2, End: 20}, Span{File: 1, Start: 5, End: 6}, Span{File: 1, Start: 2, End: 20}},
		{"reversed", Span{File: 1, Start: 10, End: 12}, Span{File: 1, Start: 0, End: 1}, Span{File: 1, Start: 0, End: 12}},
		{"other file ignored", Span{File: 1, Start: 2, End: 4}, Span{File: 2, Start: 0, End: 99}, Span{File: 1, Start: 2, End: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.expected {
				t.Errorf("Cover = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSpanContainsAndBefore(t *testing.T) {
	outer := Span{File: 0, Start: 0, End: 10}
	inner := Span{File: 0, Start: 3, End: 5}
	if !outer.Contains(inner) || inner.Contains(outer) {
		t.Error("Contains mismatch")
	}
	if !outer.Before(inner) || inner.Before(outer) {
		t.Error("Before mismatch")
	}
	if (Span{File: 0, Start: 4, End: 4}).Len() != 0 || !(Span{Start: 4, End: 4}).Empty() {
		t.Error("empty span")
	}
}
