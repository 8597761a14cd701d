package buffer

import "testing"

func TestAllocAndView(t *testing.T) {
	b := AllocFilled[int]("nums", 8, func(i int) int { return i * i })
	defer b.Release()

	var got []int
	b.View(func(s []int) { got = append(got, s...) })
	for i, v := range got {
		if v != i*i {
			t.Fatalf("index %d: got %d want %d", i, v, i*i)
		}
	}
}

// TestSliceViewMatchesParent checks invariant 5 from spec.md §8: for any
// buffer b of size n and (off, len) with off+len<=n, b.Slice(off,
// len).View() == b.View()[off:off+len].
func TestSliceViewMatchesParent(t *testing.T) {
	b := AllocFilled[int]("nums", 20, func(i int) int { return i + 100 })
	defer b.Release()

	cases := []struct{ off, length int }{
		{0, 0}, {0, 20}, {5, 0}, {5, 10}, {19, 1},
	}
	for _, c := range cases {
		sub, err := b.Slice(c.off, c.length)
		if err != nil {
			t.Fatalf("Slice(%d, %d): %v", c.off, c.length, err)
		}
		var parent []int
		b.View(func(s []int) { parent = append(parent, s[c.off:c.off+c.length]...) })
		var child []int
		sub.View(func(s []int) { child = append(child, s...) })
		if len(parent) != len(child) {
			t.Fatalf("length mismatch: %d vs %d", len(parent), len(child))
		}
		for i := range parent {
			if parent[i] != child[i] {
				t.Fatalf("value mismatch at %d: %d vs %d", i, parent[i], child[i])
			}
		}
		sub.Release()
	}
}

func TestSliceOutOfRange(t *testing.T) {
	b := Alloc[int]("nums", 10)
	defer b.Release()

	if _, err := b.Slice(5, 6); err == nil {
		t.Fatal("expected error for out-of-range slice")
	}
	if _, err := b.Slice(-1, 2); err == nil {
		t.Fatal("expected error for negative offset")
	}
}

func TestViewMutWritesThrough(t *testing.T) {
	b := Alloc[int]("nums", 4)
	defer b.Release()

	b.ViewMut(func(s []int) {
		for i := range s {
			s[i] = i + 1
		}
	})

	for i := 0; i < 4; i++ {
		if got := b.GetAt(i); got != i+1 {
			t.Fatalf("GetAt(%d) = %d, want %d", i, got, i+1)
		}
	}
}

func TestSliceSharesMutations(t *testing.T) {
	b := Alloc[int]("nums", 10)
	defer b.Release()

	sub, err := b.Slice(2, 3)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Release()

	sub.SetAt(0, 42)
	if got := b.GetAt(2); got != 42 {
		t.Fatalf("mutation via slice not visible in parent: got %d", got)
	}
}

func TestAllocationTrackerBalances(t *testing.T) {
	before := BytesInUse()
	b := Alloc[int]("nums", 100)
	if BytesInUse() <= before {
		t.Fatalf("expected allocation tracker to increase")
	}
	sub, _ := b.Slice(0, 50)
	sub.Release()
	b.Release()
	if BytesInUse() != before {
		t.Fatalf("allocation tracker did not return to baseline: got %d want %d", BytesInUse(), before)
	}
}
