package field

import "testing"

func TestExtAddSub(t *testing.T) {
	a := NewExt(New(1), New(2), New(3), New(4))
	b := NewExt(New(5), New(6), New(7), New(8))
	if !a.Add(b).Sub(b).Equals(a) {
		t.Fatal("extension Add/Sub not inverse")
	}
}

func TestExtMulInv(t *testing.T) {
	a := NewExt(New(1), New(2), New(3), New(4))
	inv, err := a.Inv()
	if err != nil {
		t.Fatalf("Inv failed: %v", err)
	}
	if !a.Mul(inv).Equals(ExtOne) {
		t.Fatalf("a * inv(a) != 1, got %s", a.Mul(inv))
	}
}

func TestExtInvZero(t *testing.T) {
	if _, err := ExtZero.Inv(); err == nil {
		t.Fatal("expected error inverting zero extension element")
	}
}

func TestExtFromBaseMultiplication(t *testing.T) {
	base := New(5)
	a := NewExt(New(1), New(2), New(3), New(4))
	lifted := FromBase(base)
	if !a.Mul(lifted).Equals(a.MulBase(base)) {
		t.Fatal("multiplying by a lifted base element should equal MulBase")
	}
}

func TestExtPow(t *testing.T) {
	a := NewExt(New(2), New(0), New(0), New(0))
	if !a.Pow(3).Equals(FromBase(New(8))) {
		t.Fatalf("pow mismatch: %s", a.Pow(3))
	}
}
