package optimize

import "math/bits"

// i128 is a signed 128-bit integer built on the math/bits carry primitives.
// The loop strength-reduction transforms do all intermediate arithmetic in
// it and abandon the rewrite when a result does not fit back into i64.
type i128 struct {
	hi int64
	lo uint64
}

func i128From(v int64) i128 {
	hi := int64(0)
	if v < 0 {
		hi = -1
	}
	return i128{hi: hi, lo: uint64(v)}
}

func (a i128) add(b i128) i128 {
	lo, carry := bits.Add64(a.lo, b.lo, 0)
	return i128{hi: a.hi + b.hi + int64(carry), lo: lo}
}

func (a i128) neg() i128 {
	lo, borrow := bits.Sub64(0, a.lo, 0)
	return i128{hi: -a.hi - int64(borrow), lo: lo}
}

func (a i128) sub(b i128) i128 {
	return a.add(b.neg())
}

func (a i128) isNeg() bool {
	return a.hi < 0
}

func (a i128) abs() i128 {
	if a.isNeg() {
		return a.neg()
	}
	return a
}

// mul multiplies two i128 values, reporting overflow past 128 bits. All
// series sums stay far below 2^127 when the inputs fit i64, so overflow
// here means the transform must be abandoned anyway.
func (a i128) mul(b i128) (i128, bool) {
	neg := false
	if a.isNeg() {
		a = a.neg()
		neg = !neg
	}
	if b.isNeg() {
		b = b.neg()
		neg = !neg
	}
	// Unsigned 128x128 with overflow checks on the high parts.
	if a.hi != 0 && b.hi != 0 {
		return i128{}, false
	}
	hi1, lo := bits.Mul64(a.lo, b.lo)
	over1, carry1 := bits.Mul64(uint64(a.hi), b.lo)
	over2, carry2 := bits.Mul64(a.lo, uint64(b.hi))
	if over1 != 0 || over2 != 0 {
		return i128{}, false
	}
	hi, c := bits.Add64(hi1, carry1, 0)
	if c != 0 {
		return i128{}, false
	}
	hi, c = bits.Add64(hi, carry2, 0)
	if c != 0 || hi >= uint64(1)<<63 {
		return i128{}, false
	}
	out := i128{hi: int64(hi), lo: lo}
	if neg {
		out = out.neg()
	}
	if out.isNeg() != neg && !(out.hi == 0 && out.lo == 0) {
		return i128{}, false
	}
	return out, true
}

// div divides by a positive u64, truncating toward zero; used for the exact
// /2 and /6 factors in the series formulas and for tripCount's ceiling
// division.
func (a i128) div(d uint64) i128 {
	neg := a.isNeg()
	u := a.abs()
	hi := uint64(u.hi) / d
	rem := uint64(u.hi) % d
	lo, _ := bits.Div64(rem, u.lo, d)
	out := i128{hi: int64(hi), lo: lo}
	if neg {
		out = out.neg()
	}
	return out
}

// toI64 converts back to i64, reporting whether the value fits.
func (a i128) toI64() (int64, bool) {
	if a.hi == 0 && a.lo <= uint64(1)<<63-1 {
		return int64(a.lo), true
	}
	if a.hi == -1 && a.lo >= uint64(1)<<63 {
		return int64(a.lo), true
	}
	return 0, false
}

// mul64 is checked multiplication of two i64 values through i128.
func mul64(a, b int64) (int64, bool) {
	p, ok := i128From(a).mul(i128From(b))
	if !ok {
		return 0, false
	}
	return p.toI64()
}

// add64 is checked addition of two i64 values through i128.
func add64(a, b int64) (int64, bool) {
	return i128From(a).add(i128From(b)).toI64()
}

// seriesCtx bundles the induction sums a closed form needs: over the index
// values x_k = start + k*step for k in [0, n):
//
//	sumX  = Σ x_k
//	sumK  = Σ k
//	sumK2 = Σ k²
//	sumX2 = Σ x_k²
type seriesCtx struct {
	n, start, step i128
	sumX, sumK     i128
	sumK2, sumX2   i128
	ok             bool
}

func newSeries(n, start, step int64) seriesCtx {
	s := seriesCtx{
		n:     i128From(n),
		start: i128From(start),
		step:  i128From(step),
	}
	// sumK = n(n-1)/2, sumK2 = (n-1)n(2n-1)/6
	nm1 := s.n.sub(i128From(1))
	t, ok := s.n.mul(nm1)
	if !ok {
		return s
	}
	s.sumK = t.div(2)

	twoN := s.n.add(s.n)
	t2, ok := t.mul(twoN.sub(i128From(1)))
	if !ok {
		return s
	}
	s.sumK2 = t2.div(6)

	// sumX = n*start + step*sumK
	na, ok := s.n.mul(s.start)
	if !ok {
		return s
	}
	sk, ok := s.step.mul(s.sumK)
	if !ok {
		return s
	}
	s.sumX = na.add(sk)

	// sumX2 = n*start² + 2*start*step*sumK + step²*sumK2
	a2, ok := s.start.mul(s.start)
	if !ok {
		return s
	}
	na2, ok := s.n.mul(a2)
	if !ok {
		return s
	}
	as, ok := s.start.mul(s.step)
	if !ok {
		return s
	}
	asK, ok := as.add(as).mul(s.sumK)
	if !ok {
		return s
	}
	s2, ok := s.step.mul(s.step)
	if !ok {
		return s
	}
	s2K2, ok := s2.mul(s.sumK2)
	if !ok {
		return s
	}
	s.sumX2 = na2.add(asK).add(s2K2)
	s.ok = true
	return s
}

// tripCount computes N = ceil((stop-start)/step) sign-aware, in 128-bit so
// extreme bounds cannot overflow. A non-positive span yields zero.
func tripCount(start, stop, step int64) (int64, bool) {
	if step == 0 {
		return 0, false
	}
	span := i128From(stop).sub(i128From(start))
	st := i128From(step)
	if step < 0 {
		span = span.neg()
		st = st.neg()
	}
	if span.isNeg() || (span.hi == 0 && span.lo == 0) {
		return 0, true
	}
	// ceil(span/st) = (span + st - 1) / st; st fits in u64 after abs.
	d := st.lo
	num := span.add(st).sub(i128From(1))
	q := num.div(d)
	return q.toI64()
}

// floorSum computes Σ_{k=0}^{n-1} floor((a*k + b) / m) in O(log) time by
// the Euclid-like reduction. Inputs must satisfy n ≥ 0, m > 0; a and b are
// normalized into [0, m) with correction terms.
func floorSum(n, m, a, b int64) int64 {
	var ans int64
	if a < 0 {
		a2 := a%m + m
		ans -= n * (n - 1) / 2 * ((a2 - a) / m)
		a = a2
	}
	if b < 0 {
		b2 := b%m + m
		ans -= n * ((b2 - b) / m)
		b = b2
	}
	for {
		if a >= m {
			ans += n * (n - 1) / 2 * (a / m)
			a %= m
		}
		if b >= m {
			ans += n * (b / m)
			b %= m
		}
		yMax := a*n + b
		if yMax < m {
			break
		}
		n = yMax / m
		b = yMax % m
		m, a = a, m
	}
	return ans
}
