package optimize

import (
	"github.com/linescript-lang/linescript/internal/ast"
)

// eliminateDeadStores removes declare, assign, and expression statements
// whose value is trivially pure and whose result is never read later in the
// block. Assignments are only removed at the function's top-level block,
// where "not read later" is decisive; in nested bodies the target may be
// read after the block ends.
func (o *Optimizer) eliminateDeadStores(stmts []ast.Stmt, topLevel bool) ([]ast.Stmt, bool) {
	changed := false
	out := make([]ast.Stmt, 0, len(stmts))

	for i, s := range stmts {
		rest := stmts[i+1:]
		switch x := s.(type) {
		case *ast.Declare:
			if x.Init != nil && triviallyPure(x.Init) && !x.Owned && !anyReads(rest, x.Name) {
				changed = true
				continue
			}
		case *ast.Assign:
			if topLevel && triviallyPure(x.Value) && !anyReads(rest, x.Name) {
				changed = true
				continue
			}
		case *ast.ExprStmt:
			if triviallyPure(x.X) {
				changed = true
				continue
			}
		case *ast.If:
			thenBody, c1 := o.eliminateDeadStores(x.Then, false)
			elseBody, c2 := o.eliminateDeadStores(x.Else, false)
			x.Then, x.Else = thenBody, elseBody
			if c1 || c2 {
				changed = true
			}
		case *ast.While:
			body, c := o.eliminateDeadStores(x.Body, false)
			x.Body = body
			if c {
				changed = true
			}
		case *ast.For:
			body, c := o.eliminateDeadStores(x.Body, false)
			x.Body = body
			if c {
				changed = true
			}
		case *ast.FormatBlock:
			body, c := o.eliminateDeadStores(x.Body, false)
			x.Body = body
			if c {
				changed = true
			}
		}
		out = append(out, s)
	}
	return out, changed
}

// pruneTailDead drops any statements following a return, break, or
// continue in a block, recursing into nested bodies.
func pruneTailDead(stmts []ast.Stmt) ([]ast.Stmt, bool) {
	changed := false
	out := make([]ast.Stmt, 0, len(stmts))

	for _, s := range stmts {
		switch x := s.(type) {
		case *ast.If:
			thenBody, c1 := pruneTailDead(x.Then)
			elseBody, c2 := pruneTailDead(x.Else)
			x.Then, x.Else = thenBody, elseBody
			if c1 || c2 {
				changed = true
			}
		case *ast.While:
			body, c := pruneTailDead(x.Body)
			x.Body = body
			if c {
				changed = true
			}
		case *ast.For:
			body, c := pruneTailDead(x.Body)
			x.Body = body
			if c {
				changed = true
			}
		case *ast.FormatBlock:
			body, c := pruneTailDead(x.Body)
			x.Body = body
			if c {
				changed = true
			}
		}
		out = append(out, s)

		switch s.(type) {
		case *ast.Return, *ast.Break, *ast.Continue:
			if len(out) < len(stmts) {
				changed = true
			}
			return out, changed
		}
	}
	return out, changed
}
