package field

import (
	"math/rand"
	"testing"
)

func TestAddSubInverse(t *testing.T) {
	cases := []struct {
		a, b uint32
	}{
		{0, 0},
		{1, 1},
		{P - 1, 1},
		{123456789, 987654321},
	}
	for _, c := range cases {
		a, b := New(c.a), New(c.b)
		if !a.Add(b).Sub(b).Equals(a) {
			t.Errorf("Add/Sub not inverse for (%d, %d)", c.a, c.b)
		}
	}
}

func TestMulInv(t *testing.T) {
	for _, v := range []uint32{1, 2, 3, 12345, P - 1} {
		e := New(v)
		inv, err := e.Inv()
		if err != nil {
			t.Fatalf("Inv(%d) failed: %v", v, err)
		}
		if !e.Mul(inv).Equals(One) {
			t.Errorf("%d * inv(%d) != 1", v, v)
		}
	}
}

func TestInvZero(t *testing.T) {
	if _, err := Zero.Inv(); err == nil {
		t.Fatal("expected error inverting zero")
	}
}

func TestValidOrZero(t *testing.T) {
	v := New(42)
	if !v.ValidOrZero().Equals(v) {
		t.Errorf("ValidOrZero(valid) changed the value")
	}
	if !Invalid.ValidOrZero().Equals(Zero) {
		t.Errorf("ValidOrZero(INVALID) != ZERO")
	}
	// Idempotent.
	twice := v.ValidOrZero().ValidOrZero()
	if !twice.Equals(v) {
		t.Errorf("ValidOrZero not idempotent")
	}
}

func TestIsValidContract(t *testing.T) {
	if !New(7).IsValid() {
		t.Fatal("canonical element reported invalid")
	}
	if Invalid.IsValid() {
		t.Fatal("INVALID reported valid")
	}
}

func TestRandomInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		e := Random(rng)
		if !e.IsValid() {
			t.Fatalf("random element is INVALID")
		}
		if e.val >= P {
			t.Fatalf("random element %d out of range", e.val)
		}
	}
}

func TestRootOfUnityOrder(t *testing.T) {
	for po2 := 0; po2 <= 10; po2++ {
		g, err := RootOfUnity(po2)
		if err != nil {
			t.Fatalf("RootOfUnity(%d): %v", po2, err)
		}
		n := uint64(1) << uint(po2)
		if !g.Pow(n).Equals(One) {
			t.Errorf("root of unity for po2=%d does not have order dividing 2^%d", po2, po2)
		}
		if po2 > 0 && g.Pow(n/2).Equals(One) {
			t.Errorf("root of unity for po2=%d has too-small order", po2)
		}
	}
}

func TestRootOfUnityOutOfRange(t *testing.T) {
	if _, err := RootOfUnity(MaxROUPo2 + 1); err == nil {
		t.Fatal("expected error for po2 beyond MaxROUPo2")
	}
}
