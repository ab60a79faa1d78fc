package secret

import (
	"reflect"
	"testing"
)

func TestRecord_SetPreservesOrder(t *testing.T) {
	r := NewRecord()
	r.Set("FOO", "1")
	r.Set("BAR", "2")
	r.Set("BAZ", "3")
	r.Set("FOO", "updated")

	want := []string{"FOO", "BAR", "BAZ"}
	if got := r.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	if v, _ := r.Get("FOO"); v != "updated" {
		t.Errorf("FOO = %q, want updated", v)
	}
}

func TestRecord_Delete(t *testing.T) {
	r := NewRecord()
	r.Set("A", "1")
	r.Set("B", "2")
	r.Set("C", "3")

	r.Delete("B")
	r.Delete("missing")

	want := []string{"A", "C"}
	if got := r.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() after delete = %v, want %v", got, want)
	}
	if _, ok := r.Get("B"); ok {
		t.Error("B should be gone")
	}
}

func TestRecord_CloneIsIndependent(t *testing.T) {
	r := NewRecord()
	r.Set("A", "1")

	c := r.Clone()
	c.Set("A", "changed")
	c.Set("B", "new")

	if v, _ := r.Get("A"); v != "1" {
		t.Errorf("original mutated: A = %q", v)
	}
	if r.Len() != 1 {
		t.Errorf("original grew: len = %d", r.Len())
	}
}

func TestRecord_Subset(t *testing.T) {
	r := NewRecord()
	r.Set("A", "1")
	r.Set("B", "2")
	r.Set("C", "3")

	s := r.Subset([]string{"C", "A", "missing"})

	// Subset keeps the receiver's order, not the argument order.
	want := []string{"A", "C"}
	if got := s.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Subset keys = %v, want %v", got, want)
	}
}

func TestRecord_Merge(t *testing.T) {
	r := NewRecord()
	r.Set("A", "1")
	r.Set("B", "2")
	r.Set("C", "3")

	edited := NewRecord()
	edited.Set("B", "20")
	edited.Set("D", "4")

	r.Merge(edited)

	want := []string{"A", "B", "C", "D"}
	if got := r.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("merged keys = %v, want %v", got, want)
	}
	if v, _ := r.Get("B"); v != "20" {
		t.Errorf("B = %q, want 20", v)
	}
}

func TestRecord_Equal(t *testing.T) {
	a := NewRecord()
	a.Set("X", "1")
	a.Set("Y", "2")

	b := NewRecord()
	b.Set("X", "1")
	b.Set("Y", "2")

	if !a.Equal(b) {
		t.Error("identical records should be equal")
	}

	// Same pairs, different order.
	c := NewRecord()
	c.Set("Y", "2")
	c.Set("X", "1")
	if a.Equal(c) {
		t.Error("order matters for equality")
	}

	b.Set("Y", "changed")
	if a.Equal(b) {
		t.Error("records with different values should not be equal")
	}
}
