package field

import "fmt"

// extDegree is the degree of the extension: FpExt = Fp[x] / (x^4 - nonResidue).
const extDegree = 4

// nonResidue is a quadratic and quartic non-residue in Fp chosen so that
// x^4 - nonResidue is irreducible over Fp.
var nonResidue = New(11)

// FpExt is an element of the degree-4 extension of Fp, represented as
// coefficients [c0, c1, c2, c3] of 1, x, x^2, x^3.
type FpExt struct {
	Coeffs [extDegree]Fp
}

// ExtZero is the additive identity of FpExt.
var ExtZero = FpExt{}

// ExtOne is the multiplicative identity of FpExt.
var ExtOne = FpExt{Coeffs: [4]Fp{One, Zero, Zero, Zero}}

// NewExt builds an extension element from base-field coefficients.
func NewExt(c0, c1, c2, c3 Fp) FpExt {
	return FpExt{Coeffs: [4]Fp{c0, c1, c2, c3}}
}

// FromBase lifts a base-field element into the extension.
func FromBase(e Fp) FpExt {
	return FpExt{Coeffs: [4]Fp{e, Zero, Zero, Zero}}
}

// IsZero reports whether every coefficient is zero.
func (e FpExt) IsZero() bool {
	for _, c := range e.Coeffs {
		if !c.IsZero() {
			return false
		}
	}
	return true
}

// Add returns e + o coefficient-wise.
func (e FpExt) Add(o FpExt) FpExt {
	var r FpExt
	for i := range e.Coeffs {
		r.Coeffs[i] = e.Coeffs[i].Add(o.Coeffs[i])
	}
	return r
}

// Sub returns e - o coefficient-wise.
func (e FpExt) Sub(o FpExt) FpExt {
	var r FpExt
	for i := range e.Coeffs {
		r.Coeffs[i] = e.Coeffs[i].Sub(o.Coeffs[i])
	}
	return r
}

// Neg returns -e.
func (e FpExt) Neg() FpExt {
	var r FpExt
	for i := range e.Coeffs {
		r.Coeffs[i] = e.Coeffs[i].Neg()
	}
	return r
}

// MulBase multiplies every coefficient by a base-field scalar.
func (e FpExt) MulBase(s Fp) FpExt {
	var r FpExt
	for i := range e.Coeffs {
		r.Coeffs[i] = e.Coeffs[i].Mul(s)
	}
	return r
}

// Mul returns e * o reduced by x^4 = nonResidue.
func (e FpExt) Mul(o FpExt) FpExt {
	// Schoolbook polynomial multiplication, degree up to 6, then reduce.
	var raw [2*extDegree - 1]Fp
	for i := 0; i < extDegree; i++ {
		if e.Coeffs[i].IsZero() {
			continue
		}
		for j := 0; j < extDegree; j++ {
			raw[i+j] = raw[i+j].Add(e.Coeffs[i].Mul(o.Coeffs[j]))
		}
	}
	// Reduce degrees 4..6 using x^4 = nonResidue.
	for d := 2*extDegree - 2; d >= extDegree; d-- {
		coeff := raw[d]
		raw[d] = Zero
		raw[d-extDegree] = raw[d-extDegree].Add(coeff.Mul(nonResidue))
	}
	var r FpExt
	copy(r.Coeffs[:], raw[:extDegree])
	return r
}

// Equals reports coefficient-wise equality.
func (e FpExt) Equals(o FpExt) bool {
	for i := range e.Coeffs {
		if !e.Coeffs[i].Equals(o.Coeffs[i]) {
			return false
		}
	}
	return true
}

// Inv returns the multiplicative inverse of e, computed by solving the
// 4x4 linear system M*y = e1 where M is the matrix of "multiply by e"
// in the power basis, via Gaussian elimination over Fp.
func (e FpExt) Inv() (FpExt, error) {
	if e.IsZero() {
		return FpExt{}, fmt.Errorf("field: cannot invert zero extension element")
	}

	// Build augmented matrix [M | identity-column-0], solving M*y = e_0.
	var m [extDegree][extDegree]Fp
	basis := [extDegree]FpExt{ExtOne, {Coeffs: [4]Fp{Zero, One, Zero, Zero}}, {Coeffs: [4]Fp{Zero, Zero, One, Zero}}, {Coeffs: [4]Fp{Zero, Zero, Zero, One}}}
	for col := 0; col < extDegree; col++ {
		prod := e.Mul(basis[col])
		for row := 0; row < extDegree; row++ {
			m[row][col] = prod.Coeffs[row]
		}
	}
	rhs := [extDegree]Fp{One, Zero, Zero, Zero}

	// Gaussian elimination with partial pivoting.
	for col := 0; col < extDegree; col++ {
		pivot := -1
		for row := col; row < extDegree; row++ {
			if !m[row][col].IsZero() {
				pivot = row
				break
			}
		}
		if pivot == -1 {
			return FpExt{}, fmt.Errorf("field: singular multiplication matrix while inverting extension element")
		}
		m[col], m[pivot] = m[pivot], m[col]
		rhs[col], rhs[pivot] = rhs[pivot], rhs[col]

		inv, err := m[col][col].Inv()
		if err != nil {
			return FpExt{}, err
		}
		for k := col; k < extDegree; k++ {
			m[col][k] = m[col][k].Mul(inv)
		}
		rhs[col] = rhs[col].Mul(inv)

		for row := 0; row < extDegree; row++ {
			if row == col || m[row][col].IsZero() {
				continue
			}
			factor := m[row][col]
			for k := col; k < extDegree; k++ {
				m[row][k] = m[row][k].Sub(factor.Mul(m[col][k]))
			}
			rhs[row] = rhs[row].Sub(factor.Mul(rhs[col]))
		}
	}

	return FpExt{Coeffs: rhs}, nil
}

// Pow returns e^n by square-and-multiply.
func (e FpExt) Pow(n uint64) FpExt {
	result := ExtOne
	base := e
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return result
}

// String renders the coefficient vector.
func (e FpExt) String() string {
	return fmt.Sprintf("[%s, %s, %s, %s]", e.Coeffs[0], e.Coeffs[1], e.Coeffs[2], e.Coeffs[3])
}
