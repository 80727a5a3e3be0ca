package optimize

import (
	"github.com/linescript-lang/linescript/internal/ast"
	"github.com/linescript-lang/linescript/internal/lexer"
)

// reduceLoops walks a block replacing constant-bounded for loops whose
// bodies match a recognized reduction shape with closed-form updates. All
// intermediate arithmetic is 128-bit checked; any overflow abandons the
// rewrite and keeps the original loop.
func (o *Optimizer) reduceLoops(stmts []ast.Stmt) ([]ast.Stmt, bool) {
	changed := false

	// The forward scan admits preceding declares as constants but refuses
	// any name that is reassigned anywhere in the block subtree.
	poisoned := make(map[string]bool)
	var scanAssigns func(ss []ast.Stmt)
	scanAssigns = func(ss []ast.Stmt) {
		for _, s := range ss {
			switch x := s.(type) {
			case *ast.Assign:
				poisoned[x.Name] = true
			case *ast.If:
				scanAssigns(x.Then)
				scanAssigns(x.Else)
			case *ast.While:
				scanAssigns(x.Body)
			case *ast.For:
				scanAssigns(x.Body)
			case *ast.FormatBlock:
				scanAssigns(x.Body)
			}
		}
	}
	scanAssigns(stmts)

	known := make(map[string]int64)
	out := make([]ast.Stmt, 0, len(stmts))

	for _, s := range stmts {
		switch x := s.(type) {
		case *ast.Declare:
			if v, ok := evalKnownI64(x.Init, known); ok && !poisoned[x.Name] && x.Resolved == ast.TypeI64 {
				known[x.Name] = v
			} else {
				delete(known, x.Name)
			}

		case *ast.If:
			thenBody, c1 := o.reduceLoops(x.Then)
			elseBody, c2 := o.reduceLoops(x.Else)
			x.Then, x.Else = thenBody, elseBody
			if c1 || c2 {
				changed = true
			}

		case *ast.While:
			body, c := o.reduceLoops(x.Body)
			x.Body = body
			if c {
				changed = true
			}

		case *ast.FormatBlock:
			body, c := o.reduceLoops(x.Body)
			x.Body = body
			if c {
				changed = true
			}

		case *ast.For:
			// Reduction runs before descending so the bilinear pattern can
			// see its inner loop intact; the body is only walked when the
			// whole loop did not reduce.
			if repl, ok := o.tryReduceFor(x, known); ok {
				out = append(out, repl...)
				changed = true
				continue
			}
			body, c := o.reduceLoops(x.Body)
			x.Body = body
			if c {
				changed = true
			}
		}
		out = append(out, s)
	}
	return out, changed
}

// tryReduceFor attempts every closed-form pattern on one loop. An empty,
// true result deletes the loop (zero trips).
func (o *Optimizer) tryReduceFor(loop *ast.For, known map[string]int64) ([]ast.Stmt, bool) {
	if loop.Parallel {
		return nil, false
	}
	start, ok := evalKnownI64(loop.Start, known)
	if !ok {
		return nil, false
	}
	stop, ok := evalKnownI64(loop.Stop, known)
	if !ok {
		return nil, false
	}
	step, ok := evalKnownI64(loop.Step, known)
	if !ok || step == 0 {
		return nil, false
	}
	n, ok := tripCount(start, stop, step)
	if !ok {
		return nil, false
	}
	if n == 0 {
		return []ast.Stmt{}, true
	}

	if repl, ok := o.reducePolynomial(loop, n, start, step); ok {
		return repl, true
	}
	if repl, ok := o.reducePairCoupled(loop, n, start, step); ok {
		return repl, true
	}
	if repl, ok := o.reduceAlternating(loop, n, start, step); ok {
		return repl, true
	}
	if repl, ok := o.reduceModular(loop, n, start, step); ok {
		return repl, true
	}
	if repl, ok := o.reduceBilinear(loop, n, start, step, known); ok {
		return repl, true
	}
	if repl, ok := o.unrollShortTrip(loop, n, start, step); ok {
		return repl, true
	}
	return nil, false
}

// reduction is a matched 'acc = acc ± rhs' statement.
type reduction struct {
	target string
	sign   int64
	rhs    ast.Expr
	span   ast.Stmt
}

func matchReduction(s ast.Stmt) (reduction, bool) {
	as, ok := s.(*ast.Assign)
	if !ok {
		return reduction{}, false
	}
	bin, ok := as.Value.(*ast.Binary)
	if !ok || bin.OverrideFn != "" {
		return reduction{}, false
	}
	switch bin.Op {
	case lexer.PLUS:
		if id, ok := bin.Left.(*ast.Ident); ok && id.Name == as.Name {
			return reduction{target: as.Name, sign: 1, rhs: bin.Right, span: s}, true
		}
		if id, ok := bin.Right.(*ast.Ident); ok && id.Name == as.Name {
			return reduction{target: as.Name, sign: 1, rhs: bin.Left, span: s}, true
		}
	case lexer.MINUS:
		if id, ok := bin.Left.(*ast.Ident); ok && id.Name == as.Name {
			return reduction{target: as.Name, sign: -1, rhs: bin.Right, span: s}, true
		}
	}
	return reduction{}, false
}

// accUpdate builds 'acc = acc + <delta>'.
func accUpdate(target string, delta int64, at ast.Stmt) ast.Stmt {
	span := at.Span()
	acc := ast.NewIdent(target, span)
	acc.SetInf(ast.TypeI64)
	lit := ast.NewIntLit(delta, span)
	lit.SetInf(ast.TypeI64)
	sum := ast.NewBinary(lexer.PLUS, acc, lit, span)
	sum.SetInf(ast.TypeI64)
	return ast.NewAssign(target, sum, span)
}

// reducePolynomial handles the affine and degree-≤2 polynomial reduction
// patterns, including up to four independent reductions in one body. Each
// body statement must be a reduction on a distinct accumulator whose RHS is
// a call-free polynomial in the induction variable.
func (o *Optimizer) reducePolynomial(loop *ast.For, n, start, step int64) ([]ast.Stmt, bool) {
	if len(loop.Body) == 0 || len(loop.Body) > 4 {
		return nil, false
	}
	series := newSeries(n, start, step)
	if !series.ok {
		return nil, false
	}

	seen := make(map[string]bool)
	out := make([]ast.Stmt, 0, len(loop.Body))
	for _, s := range loop.Body {
		red, ok := matchReduction(s)
		if !ok || red.target == loop.Var || seen[red.target] {
			return nil, false
		}
		seen[red.target] = true

		coeffs, ok := o.polyOf(red.rhs, loop.Var)
		if !ok {
			return nil, false
		}
		delta, ok := polyDelta(coeffs, series, red.sign)
		if !ok {
			return nil, false
		}
		out = append(out, accUpdate(red.target, delta, s))
	}
	return out, true
}

// polyDelta computes sign * (c2·Σx² + c1·Σx + c0·N) back to i64.
func polyDelta(c [3]i128, series seriesCtx, sign int64) (int64, bool) {
	t2, ok := c[2].mul(series.sumX2)
	if !ok {
		return 0, false
	}
	t1, ok := c[1].mul(series.sumX)
	if !ok {
		return 0, false
	}
	t0, ok := c[0].mul(series.n)
	if !ok {
		return 0, false
	}
	total := t2.add(t1).add(t0)
	if sign < 0 {
		total = total.neg()
	}
	return total.toI64()
}

// polyOf extracts polynomial coefficients (c0, c1, c2) of an expression in
// the induction variable. Only literals, the induction variable, +, -, *,
// and ** with a small literal exponent participate, which also guarantees
// the RHS is call-free.
func (o *Optimizer) polyOf(e ast.Expr, iVar string) ([3]i128, bool) {
	zero := [3]i128{}
	switch x := e.(type) {
	case *ast.IntLit:
		return [3]i128{i128From(x.Value), {}, {}}, true
	case *ast.Ident:
		if x.Name == iVar {
			return [3]i128{{}, i128From(1), {}}, true
		}
		return zero, false
	case *ast.Unary:
		if x.Op != lexer.MINUS || x.OverrideFn != "" || o.negOverride {
			return zero, false
		}
		c, ok := o.polyOf(x.Operand, iVar)
		if !ok {
			return zero, false
		}
		return [3]i128{c[0].neg(), c[1].neg(), c[2].neg()}, true
	case *ast.Binary:
		if x.OverrideFn != "" {
			return zero, false
		}
		switch x.Op {
		case lexer.PLUS, lexer.MINUS:
			a, ok := o.polyOf(x.Left, iVar)
			if !ok {
				return zero, false
			}
			b, ok := o.polyOf(x.Right, iVar)
			if !ok {
				return zero, false
			}
			if x.Op == lexer.MINUS {
				b = [3]i128{b[0].neg(), b[1].neg(), b[2].neg()}
			}
			return [3]i128{a[0].add(b[0]), a[1].add(b[1]), a[2].add(b[2])}, true
		case lexer.ASTERISK:
			a, ok := o.polyOf(x.Left, iVar)
			if !ok {
				return zero, false
			}
			b, ok := o.polyOf(x.Right, iVar)
			if !ok {
				return zero, false
			}
			return polyMul(a, b)
		case lexer.POW:
			exp, ok := x.Right.(*ast.IntLit)
			if !ok || exp.Value < 0 || exp.Value > 2 {
				return zero, false
			}
			base, ok := o.polyOf(x.Left, iVar)
			if !ok {
				return zero, false
			}
			result := [3]i128{i128From(1), {}, {}}
			for k := int64(0); k < exp.Value; k++ {
				result, ok = polyMul(result, base)
				if !ok {
					return zero, false
				}
			}
			return result, true
		}
	}
	return zero, false
}

func polyMul(a, b [3]i128) ([3]i128, bool) {
	var out [3]i128
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			zi := isZero(a[i]) || isZero(b[j])
			if i+j > 2 {
				if !zi {
					return out, false // degree above 2
				}
				continue
			}
			p, ok := a[i].mul(b[j])
			if !ok {
				return out, false
			}
			out[i+j] = out[i+j].add(p)
		}
	}
	return out, true
}

func isZero(v i128) bool {
	return v.hi == 0 && v.lo == 0
}

// reducePairCoupled handles 'acc = acc + state; state = state + affine(i)'.
// The accumulator gains N·state plus the weighted triangular sum of the
// affine updates; the state gains the plain sum.
func (o *Optimizer) reducePairCoupled(loop *ast.For, n, start, step int64) ([]ast.Stmt, bool) {
	if len(loop.Body) != 2 {
		return nil, false
	}
	first, ok := matchReduction(loop.Body[0])
	if !ok || first.sign != 1 {
		return nil, false
	}
	second, ok := matchReduction(loop.Body[1])
	if !ok || second.sign != 1 {
		return nil, false
	}

	stateRef, ok := first.rhs.(*ast.Ident)
	if !ok || stateRef.Name != second.target || first.target == second.target {
		return nil, false
	}
	acc, state := first.target, second.target
	if acc == loop.Var || state == loop.Var {
		return nil, false
	}

	coeffs, ok := o.polyOf(second.rhs, loop.Var)
	if !ok || !isZero(coeffs[2]) {
		return nil, false
	}
	a, b := coeffs[1], coeffs[0]

	series := newSeries(n, start, step)
	if !series.ok {
		return nil, false
	}

	// F = Σ f(x_k) = a·Σx + b·N
	aSum, ok := a.mul(series.sumX)
	if !ok {
		return nil, false
	}
	bN, ok := b.mul(series.n)
	if !ok {
		return nil, false
	}
	stateDelta, ok := aSum.add(bN).toI64()
	if !ok {
		return nil, false
	}

	// W = Σ_{m=0}^{N-2} (N-1-m)·f(x_m)
	//   = a·((N-1)·Σx - (start·Σk + step·Σk²)) + b·N(N-1)/2
	nm1 := series.n.sub(i128From(1))
	t1, ok := nm1.mul(series.sumX)
	if !ok {
		return nil, false
	}
	sk, ok := series.start.mul(series.sumK)
	if !ok {
		return nil, false
	}
	sk2, ok := series.step.mul(series.sumK2)
	if !ok {
		return nil, false
	}
	wa, ok := a.mul(t1.sub(sk.add(sk2)))
	if !ok {
		return nil, false
	}
	half, ok := series.n.mul(nm1)
	if !ok {
		return nil, false
	}
	wb, ok := b.mul(half.div(2))
	if !ok {
		return nil, false
	}
	w, ok := wa.add(wb).toI64()
	if !ok {
		return nil, false
	}

	// acc = acc + (N*state + W); state = state + F
	span := loop.Span()
	accId := ast.NewIdent(acc, span)
	accId.SetInf(ast.TypeI64)
	stateId := ast.NewIdent(state, span)
	stateId.SetInf(ast.TypeI64)
	nLit := ast.NewIntLit(n, span)
	nLit.SetInf(ast.TypeI64)
	wLit := ast.NewIntLit(w, span)
	wLit.SetInf(ast.TypeI64)

	prod := ast.NewBinary(lexer.ASTERISK, nLit, stateId, span)
	prod.SetInf(ast.TypeI64)
	inner := ast.NewBinary(lexer.PLUS, prod, wLit, span)
	inner.SetInf(ast.TypeI64)
	accSum := ast.NewBinary(lexer.PLUS, accId, inner, span)
	accSum.SetInf(ast.TypeI64)

	return []ast.Stmt{
		ast.NewAssign(acc, accSum, span),
		accUpdate(state, stateDelta, loop.Body[1]),
	}, true
}

// reduceAlternating handles the alternating-sign reduction:
//
//	if i % 2 == 0 { x = x + i } else { x = x - i }
//
// and its mirror.
func (o *Optimizer) reduceAlternating(loop *ast.For, n, start, step int64) ([]ast.Stmt, bool) {
	if len(loop.Body) != 1 {
		return nil, false
	}
	ifs, ok := loop.Body[0].(*ast.If)
	if !ok || len(ifs.Then) != 1 || len(ifs.Else) != 1 {
		return nil, false
	}

	cond, ok := ifs.Cond.(*ast.Binary)
	if !ok || cond.OverrideFn != "" {
		return nil, false
	}
	mod, ok := cond.Left.(*ast.Binary)
	if !ok || mod.Op != lexer.PERCENT {
		return nil, false
	}
	iv, ok := mod.Left.(*ast.Ident)
	if !ok || iv.Name != loop.Var {
		return nil, false
	}
	two, ok := mod.Right.(*ast.IntLit)
	if !ok || two.Value != 2 {
		return nil, false
	}
	zero, ok := cond.Right.(*ast.IntLit)
	if !ok || zero.Value != 0 {
		return nil, false
	}

	evenArm, oddArm := ifs.Then[0], ifs.Else[0]
	switch cond.Op {
	case lexer.EQ:
	case lexer.NOT_EQ:
		evenArm, oddArm = oddArm, evenArm
	default:
		return nil, false
	}

	evenRed, ok := matchReduction(evenArm)
	if !ok {
		return nil, false
	}
	oddRed, ok := matchReduction(oddArm)
	if !ok {
		return nil, false
	}
	if evenRed.target != oddRed.target || evenRed.sign == oddRed.sign {
		return nil, false
	}
	if !isLoopVarRef(evenRed.rhs, loop.Var) || !isLoopVarRef(oddRed.rhs, loop.Var) {
		return nil, false
	}

	// Split the index values by parity. Even step keeps one parity for the
	// whole walk; odd step alternates by iteration.
	var evenSum, oddSum i128
	if step%2 == 0 {
		series := newSeries(n, start, step)
		if !series.ok {
			return nil, false
		}
		if start%2 == 0 {
			evenSum = series.sumX
		} else {
			oddSum = series.sumX
		}
	} else {
		ne := (n + 1) / 2
		no := n / 2
		atEven := newSeries(ne, start, 2*step)
		atOdd := newSeries(no, start+step, 2*step)
		if (ne > 0 && !atEven.ok) || (no > 0 && !atOdd.ok) {
			return nil, false
		}
		first, second := atEven.sumX, atOdd.sumX
		if start%2 != 0 {
			first, second = second, first
		}
		evenSum, oddSum = first, second
	}

	total := evenSum.sub(oddSum)
	if evenRed.sign < 0 {
		total = total.neg()
	}
	delta, ok := total.toI64()
	if !ok {
		return nil, false
	}
	return []ast.Stmt{accUpdate(evenRed.target, delta, loop.Body[0])}, true
}

func isLoopVarRef(e ast.Expr, iVar string) bool {
	id, ok := e.(*ast.Ident)
	return ok && id.Name == iVar
}

// reduceModular handles 'acc += (a*i + b) % m' with constant a, b, m > 0
// via the Euclid-like floor-sum identity, in O(log m) instead of O(N).
func (o *Optimizer) reduceModular(loop *ast.For, n, start, step int64) ([]ast.Stmt, bool) {
	if len(loop.Body) != 1 {
		return nil, false
	}
	red, ok := matchReduction(loop.Body[0])
	if !ok || red.target == loop.Var {
		return nil, false
	}
	mod, ok := red.rhs.(*ast.Binary)
	if !ok || mod.Op != lexer.PERCENT || mod.OverrideFn != "" {
		return nil, false
	}
	mLit, ok := mod.Right.(*ast.IntLit)
	if !ok || mLit.Value <= 0 {
		return nil, false
	}
	coeffs, ok := o.polyOf(mod.Left, loop.Var)
	if !ok || !isZero(coeffs[2]) {
		return nil, false
	}
	a, aOK := coeffs[1].toI64()
	b, bOK := coeffs[0].toI64()
	if !aOK || !bOK {
		return nil, false
	}

	// Over iterations k: a*(start + k*step) + b = A*k + B.
	A, ok := mul64(a, step)
	if !ok {
		return nil, false
	}
	aStart, ok := mul64(a, start)
	if !ok {
		return nil, false
	}
	B, ok := add64(aStart, b)
	if !ok {
		return nil, false
	}
	m := mLit.Value

	// Truncated C semantics match floor semantics only for non-negative
	// operands; bail out otherwise, and keep all floor-sum inputs small.
	const limit = int64(1) << 31
	if A < 0 || B < 0 || A >= limit || B >= limit || m >= limit || n >= limit {
		return nil, false
	}

	// Σ (A*k + B) % m = Σ (A*k + B) - m * Σ floor((A*k + B)/m)
	series := newSeries(n, 0, 1)
	if !series.ok {
		return nil, false
	}
	linA, ok := i128From(A).mul(series.sumK)
	if !ok {
		return nil, false
	}
	linB, ok := i128From(B).mul(series.n)
	if !ok {
		return nil, false
	}
	fs := floorSum(n, m, A, B)
	mFs, ok := i128From(m).mul(i128From(fs))
	if !ok {
		return nil, false
	}
	total := linA.add(linB).sub(mFs)
	if red.sign < 0 {
		total = total.neg()
	}
	delta, ok := total.toI64()
	if !ok {
		return nil, false
	}
	return []ast.Stmt{accUpdate(red.target, delta, loop.Body[0])}, true
}

// reduceBilinear handles two constant-bounded nested loops whose inner body
// is a single reduction bilinear in both induction variables.
func (o *Optimizer) reduceBilinear(loop *ast.For, n, start, step int64, known map[string]int64) ([]ast.Stmt, bool) {
	if len(loop.Body) != 1 {
		return nil, false
	}
	inner, ok := loop.Body[0].(*ast.For)
	if !ok || inner.Parallel || len(inner.Body) != 1 || inner.Var == loop.Var {
		return nil, false
	}
	jStart, ok := evalKnownI64(inner.Start, known)
	if !ok {
		return nil, false
	}
	jStop, ok := evalKnownI64(inner.Stop, known)
	if !ok {
		return nil, false
	}
	jStep, ok := evalKnownI64(inner.Step, known)
	if !ok || jStep == 0 {
		return nil, false
	}
	m, ok := tripCount(jStart, jStop, jStep)
	if !ok {
		return nil, false
	}

	red, ok := matchReduction(inner.Body[0])
	if !ok || red.target == loop.Var || red.target == inner.Var {
		return nil, false
	}
	p, q, r, t, ok := o.bilinearOf(red.rhs, loop.Var, inner.Var)
	if !ok {
		return nil, false
	}

	si := newSeries(n, start, step)
	sj := newSeries(m, jStart, jStep)
	if !si.ok || !sj.ok {
		return nil, false
	}

	// ΣiΣj p·i·j + q·i + r·j + t
	//   = p·Σi·Σj + q·Σi·Mj + r·Σj·Ni + t·Ni·Mj
	term1, ok := p.mul(si.sumX)
	if !ok {
		return nil, false
	}
	term1, ok = term1.mul(sj.sumX)
	if !ok {
		return nil, false
	}
	term2, ok := q.mul(si.sumX)
	if !ok {
		return nil, false
	}
	term2, ok = term2.mul(sj.n)
	if !ok {
		return nil, false
	}
	term3, ok := r.mul(sj.sumX)
	if !ok {
		return nil, false
	}
	term3, ok = term3.mul(si.n)
	if !ok {
		return nil, false
	}
	term4, ok := t.mul(si.n)
	if !ok {
		return nil, false
	}
	term4, ok = term4.mul(sj.n)
	if !ok {
		return nil, false
	}
	total := term1.add(term2).add(term3).add(term4)
	if red.sign < 0 {
		total = total.neg()
	}
	delta, ok := total.toI64()
	if !ok {
		return nil, false
	}
	return []ast.Stmt{accUpdate(red.target, delta, loop.Body[0])}, true
}

// bilinearOf decomposes an expression as p·i·j + q·i + r·j + t with
// constant coefficients.
func (o *Optimizer) bilinearOf(e ast.Expr, iVar, jVar string) (p, q, r, t i128, ok bool) {
	switch x := e.(type) {
	case *ast.IntLit:
		return i128{}, i128{}, i128{}, i128From(x.Value), true
	case *ast.Ident:
		switch x.Name {
		case iVar:
			return i128{}, i128From(1), i128{}, i128{}, true
		case jVar:
			return i128{}, i128{}, i128From(1), i128{}, true
		}
		return p, q, r, t, false
	case *ast.Unary:
		if x.Op != lexer.MINUS || x.OverrideFn != "" || o.negOverride {
			return p, q, r, t, false
		}
		p1, q1, r1, t1, ok := o.bilinearOf(x.Operand, iVar, jVar)
		if !ok {
			return p, q, r, t, false
		}
		return p1.neg(), q1.neg(), r1.neg(), t1.neg(), true
	case *ast.Binary:
		if x.OverrideFn != "" {
			return p, q, r, t, false
		}
		switch x.Op {
		case lexer.PLUS, lexer.MINUS:
			p1, q1, r1, t1, ok := o.bilinearOf(x.Left, iVar, jVar)
			if !ok {
				return p, q, r, t, false
			}
			p2, q2, r2, t2, ok := o.bilinearOf(x.Right, iVar, jVar)
			if !ok {
				return p, q, r, t, false
			}
			if x.Op == lexer.MINUS {
				p2, q2, r2, t2 = p2.neg(), q2.neg(), r2.neg(), t2.neg()
			}
			return p1.add(p2), q1.add(q2), r1.add(r2), t1.add(t2), true
		case lexer.ASTERISK:
			p1, q1, r1, t1, ok := o.bilinearOf(x.Left, iVar, jVar)
			if !ok {
				return p, q, r, t, false
			}
			p2, q2, r2, t2, ok := o.bilinearOf(x.Right, iVar, jVar)
			if !ok {
				return p, q, r, t, false
			}
			return bilinearMul(p1, q1, r1, t1, p2, q2, r2, t2)
		}
	}
	return p, q, r, t, false
}

// bilinearMul multiplies two bilinear forms, failing when the product
// leaves the p·ij + q·i + r·j + t shape (any squared term).
func bilinearMul(p1, q1, r1, t1, p2, q2, r2, t2 i128) (p, q, r, t i128, ok bool) {
	// Disallowed products: anything involving p on either side times a
	// non-constant, q·q, r·r, q·r pairs producing i², j², or i·j² terms —
	// except q1·r2 and r1·q2, which produce the ij term.
	nonConst1 := !isZero(p1) || !isZero(q1) || !isZero(r1)
	nonConst2 := !isZero(p2) || !isZero(q2) || !isZero(r2)
	if !isZero(p1) && nonConst2 || !isZero(p2) && nonConst1 {
		return p, q, r, t, false
	}
	if !isZero(q1) && !isZero(q2) || !isZero(r1) && !isZero(r2) {
		return p, q, r, t, false
	}

	mulAdd := func(dst i128, a, b i128) (i128, bool) {
		v, ok := a.mul(b)
		if !ok {
			return dst, false
		}
		return dst.add(v), true
	}

	if p, ok = mulAdd(p, p1, t2); !ok {
		return p, q, r, t, false
	}
	if p, ok = mulAdd(p, t1, p2); !ok {
		return p, q, r, t, false
	}
	if p, ok = mulAdd(p, q1, r2); !ok {
		return p, q, r, t, false
	}
	if p, ok = mulAdd(p, r1, q2); !ok {
		return p, q, r, t, false
	}
	if q, ok = mulAdd(q, q1, t2); !ok {
		return p, q, r, t, false
	}
	if q, ok = mulAdd(q, t1, q2); !ok {
		return p, q, r, t, false
	}
	if r, ok = mulAdd(r, r1, t2); !ok {
		return p, q, r, t, false
	}
	if r, ok = mulAdd(r, t1, r2); !ok {
		return p, q, r, t, false
	}
	if t, ok = mulAdd(t, t1, t2); !ok {
		return p, q, r, t, false
	}
	return p, q, r, t, true
}

// unrollShortTrip fully unrolls loops of at most 8 trips whose bodies have
// no loop-control flow, no declarations (splicing would collide), and do
// not redeclare the induction variable.
func (o *Optimizer) unrollShortTrip(loop *ast.For, n, start, step int64) ([]ast.Stmt, bool) {
	if n > 8 {
		return nil, false
	}
	if bodyBlocksUnroll(loop.Body) {
		return nil, false
	}
	var out []ast.Stmt
	for k := int64(0); k < n; k++ {
		ks, ok := mul64(k, step)
		if !ok {
			return nil, false
		}
		iv, ok := add64(start, ks)
		if !ok {
			return nil, false
		}
		lit := ast.NewIntLit(iv, loop.Span())
		lit.SetInf(ast.TypeI64)
		bindings := map[string]ast.Expr{loop.Var: lit}
		for _, s := range loop.Body {
			cl := ast.CloneStmt(s)
			ast.SubstituteInStmt(cl, bindings)
			out = append(out, cl)
		}
	}
	return out, true
}

func bodyBlocksUnroll(stmts []ast.Stmt) bool {
	for _, s := range stmts {
		switch x := s.(type) {
		case *ast.Break, *ast.Continue, *ast.Declare, *ast.Return:
			return true
		case *ast.If:
			if bodyBlocksUnroll(x.Then) || bodyBlocksUnroll(x.Else) {
				return true
			}
		case *ast.While, *ast.For, *ast.FormatBlock:
			return true
		}
	}
	return false
}
