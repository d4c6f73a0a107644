package search

import "testing"

func TestBagPushGetRemove(t *testing.T) {
	var b bag[int]

	i0 := b.push(10)
	i1 := b.push(20)

	if got := b.get(i0); got == nil || *got != 10 {
		t.Fatalf("get(%d) = %v, want 10", i0, got)
	}
	if got := b.get(i1); got == nil || *got != 20 {
		t.Fatalf("get(%d) = %v, want 20", i1, got)
	}

	b.remove(i0)
	if got := b.get(i0); got != nil {
		t.Fatalf("get(%d) after remove = %v, want nil", i0, got)
	}
	if got := b.len(); got != 2 {
		t.Fatalf("len() = %d, want 2 (a hole isn't a shrink)", got)
	}
}

func TestBagPushReusesHoles(t *testing.T) {
	var b bag[int]

	i0 := b.push(1)
	b.push(2)
	b.remove(i0)

	i2 := b.push(3)
	if i2 != i0 {
		t.Fatalf("push after remove reused index %d, want %d", i2, i0)
	}
	if got := b.len(); got != 2 {
		t.Fatalf("len() = %d, want 2", got)
	}
}

func TestBagGetOutOfRange(t *testing.T) {
	var b bag[int]
	b.push(1)

	if got := b.get(-1); got != nil {
		t.Fatalf("get(-1) = %v, want nil", got)
	}
	if got := b.get(5); got != nil {
		t.Fatalf("get(5) = %v, want nil", got)
	}
}

func TestBagFindIndex(t *testing.T) {
	var b bag[int]
	b.push(1)
	i1 := b.push(2)
	b.push(3)
	b.remove(i1)

	if got := b.findIndex(func(v *int) bool { return *v == 2 }); got != -1 {
		t.Fatalf("findIndex found removed value at %d", got)
	}
	if got := b.findIndex(func(v *int) bool { return *v == 3 }); got != 2 {
		t.Fatalf("findIndex(==3) = %d, want 2", got)
	}
	if got := b.findIndex(func(v *int) bool { return *v == 99 }); got != -1 {
		t.Fatalf("findIndex(==99) = %d, want -1", got)
	}
}
