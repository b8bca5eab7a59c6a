package bch

// gf2PolyMul multiplies two GF(64)-coefficient polynomials (ascending
// degree order), returning a polynomial of length len(a)+len(b)-1.
func gf2PolyMul(a, b []int) []int {
	out := make([]int, len(a)+len(b)-1)
	for i, av := range a {
		if av == 0 {
			continue
		}
		for j, bv := range b {
			if bv == 0 {
				continue
			}
			out[i+j] = gfAdd(out[i+j], gfMul(av, bv))
		}
	}
	return out
}

// minimalPolynomial computes the minimal polynomial over GF(2) of the field
// element alpha^exp, as the product of (x + alpha^c) over the Frobenius
// conjugates c of exp (exp, 2*exp, 4*exp, ... mod n, until the cycle
// closes). Every coefficient of the result is guaranteed to be 0 or 1: the
// product of an element's full conjugate set always has coefficients fixed
// by the Frobenius automorphism, i.e. lies in the GF(2) subfield.
func minimalPolynomial(exp int) []int {
	seen := map[int]bool{}
	e := exp % n
	poly := []int{1} // multiplicative identity, degree 0

	for !seen[e] {
		seen[e] = true
		root := expTable[e]
		factor := []int{root, 1} // (x + root), ascending: [root, 1]
		poly = gf2PolyMul(poly, factor)
		e = (e * 2) % n
	}

	for i, c := range poly {
		if c != 0 && c != 1 {
			panic("bch: minimal polynomial produced a coefficient outside GF(2)")
		}
		poly[i] = c
	}
	return poly
}

// gf2PolyMulBinary multiplies two GF(2) (0/1 coefficient) polynomials via
// carry-less (XOR) convolution.
func gf2PolyMulBinary(a, b []int) []int {
	out := make([]int, len(a)+len(b)-1)
	for i, av := range a {
		if av == 0 {
			continue
		}
		for j, bv := range b {
			if bv == 0 {
				continue
			}
			out[i+j] ^= 1
		}
	}
	return out
}

// generatorPoly is g(x), ascending degree, g[0]..g[n-k]; built once at
// package init from the minimal polynomials of alpha^1, alpha^3, alpha^5,
// alpha^7, alpha^9, alpha^11, alpha^13, alpha^15, and alpha^21 — one
// representative per cyclotomic coset (mod 63, base 2) covering every
// exponent 1..22, which is exactly the root set a BCH code with designed
// distance 23 needs. The nine minimal polynomials have degrees 6, 6, 6, 6,
// 3, 6, 6, 6, 2, summing to 47 = n-k.
var generatorPoly []int

func init() {
	cosetReps := []int{1, 3, 5, 7, 9, 11, 13, 15, 21}

	g := []int{1}
	for _, rep := range cosetReps {
		g = gf2PolyMulBinary(g, minimalPolynomial(rep))
	}

	if len(g)-1 != n-k {
		panic("bch: generator polynomial degree mismatch")
	}
	generatorPoly = g
}
