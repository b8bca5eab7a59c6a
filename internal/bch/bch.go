package bch

// Codeword is a 63-bit BCH(63,16) word. Index i holds the coefficient of
// x^i: indices 0..46 are parity, 47..62 are the 16 information bits (NAC in
// 51..62, DUID in 47..50, per the NID layout), matching the systematic
// convention message(x) = info(x)*x^47 + parity(x).
type Codeword [n]int

// Encode builds a systematic BCH(63,16) codeword from 16 information bits,
// msb-first in info (bit 15 of info is codeword position 62). Parity fills
// positions 0..46 via standard systematic division: parity(x) = (info(x) *
// x^(n-k)) mod g(x).
func Encode(info uint16) Codeword {
	var message [n]int
	for i := 0; i < k; i++ {
		if info&(1<<uint(k-1-i)) != 0 {
			message[n-k+i] = 1
		}
	}

	remainder := gf2PolyDivRemainder(message[:], generatorPoly)

	var cw Codeword
	copy(cw[:], message[:])
	copy(cw[:n-k], remainder)
	return cw
}

// gf2PolyDivRemainder computes message(x) mod gen(x) over GF(2), returning
// the remainder (degree < len(gen)-1, ascending order, zero-padded to
// len(gen)-1).
func gf2PolyDivRemainder(message []int, gen []int) []int {
	m := make([]int, len(message))
	copy(m, message)

	degGen := len(gen) - 1
	for i := len(m) - 1; i >= degGen; i-- {
		if m[i] == 0 {
			continue
		}
		for j := 0; j <= degGen; j++ {
			m[i-degGen+j] ^= gen[j]
		}
	}
	return m[:degGen]
}

// Decode attempts to correct up to t=11 bit errors in received, a 63-bit
// codeword in the same index convention as Encode/Codeword. It returns the
// corrected codeword and the number of bits that were flipped. irrecoverable
// is true when the error-locator polynomial's degree exceeds t, or when
// Chien search does not find exactly that many roots — per the design note,
// a failure here means report uncorrectable rather than guess.
func Decode(received Codeword) (corrected Codeword, bitErrors int, irrecoverable bool) {
	syn := syndromes(received[:])

	allZero := true
	for _, s := range syn {
		if s != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return received, 0, false
	}

	sigma, degree := berlekampMassey(syn)
	if degree > t || degree == 0 {
		return received, 0, true
	}

	positions := chienSearch(sigma, degree)
	if len(positions) != degree {
		return received, 0, true
	}

	corrected = received
	for _, p := range positions {
		corrected[p] ^= 1
	}
	return corrected, len(positions), false
}

// syndromes evaluates the received word at alpha^1..alpha^(2t), i.e. at the
// 22 roots the generator polynomial is built from.
func syndromes(received []int) [twoT]int {
	var syn [twoT]int
	for i := 1; i <= twoT; i++ {
		syn[i-1] = gfEval(received, expTable[i%n])
	}
	return syn
}

// berlekampMassey finds the error-locator polynomial sigma(x) of minimal
// degree L such that the syndromes satisfy the recurrence it defines.
// Standard formulation (Massey 1969), adapted from GF(2) BCH decoders to
// operate over GF(64) field arithmetic directly rather than the teacher's
// fixed GF(256)/degree-6 RS_12_9 arrays, since this code needs a locator of
// degree up to t=11 against twoT=22 syndromes.
func berlekampMassey(syn [twoT]int) (sigma []int, degree int) {
	c := make([]int, twoT+1)
	b := make([]int, twoT+1)
	c[0] = 1
	b[0] = 1

	l := 0
	m := 1
	bCoef := 1

	for nIdx := 0; nIdx < twoT; nIdx++ {
		d := syn[nIdx]
		for i := 1; i <= l; i++ {
			d = gfAdd(d, gfMul(c[i], syn[nIdx-i]))
		}

		if d == 0 {
			m++
			continue
		}

		coef := gfMul(d, gfInv(bCoef))

		if 2*l <= nIdx {
			prevC := make([]int, len(c))
			copy(prevC, c)

			for i := 0; i+m < len(c); i++ {
				c[i+m] = gfAdd(c[i+m], gfMul(coef, b[i]))
			}

			l = nIdx + 1 - l
			b = prevC
			bCoef = d
			m = 1
		} else {
			for i := 0; i+m < len(c); i++ {
				c[i+m] = gfAdd(c[i+m], gfMul(coef, b[i]))
			}
			m++
		}
	}

	return c[:l+1], l
}

// chienSearch evaluates sigma at alpha^(-i) for every codeword position
// i=0..62 and returns the positions where it vanishes: each such position is
// an error location. degree is not used to stop early: every position is
// checked, and the caller compares the number of roots found with degree.
func chienSearch(sigma []int, degree int) []int {
	var positions []int
	for i := 0; i < n; i++ {
		xInv := expTable[((n-i)%n+n)%n]
		if gfEval(sigma, xInv) == 0 {
			positions = append(positions, i)
		}
	}
	return positions
}
