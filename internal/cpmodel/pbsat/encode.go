package pbsat

import (
	"sort"

	"github.com/crillab/gophersat/solver"

	"github.com/preston-bernstein/mister-service/internal/cpmodel"
)

// linear is a sum of signed coefficients over SAT variables plus a constant.
type linear struct {
	coefs    map[int]int
	constant int
}

func (l linear) clone() linear {
	out := linear{coefs: make(map[int]int, len(l.coefs)), constant: l.constant}
	for v, c := range l.coefs {
		out.coefs[v] = c
	}
	return out
}

func (l linear) negate() linear {
	out := linear{coefs: make(map[int]int, len(l.coefs)), constant: -l.constant}
	for v, c := range l.coefs {
		out.coefs[v] = -c
	}
	return out
}

// span returns the smallest and largest value l can take.
func (l linear) span() (lo, hi int) {
	lo, hi = l.constant, l.constant
	for _, c := range l.coefs {
		if c < 0 {
			lo += c
		} else {
			hi += c
		}
	}
	return lo, hi
}

// positive rewrites l with positive weights only: c*x with c < 0 becomes
// c + |c|*(not x).
func (l linear) positive() (lits, weights []int, constant int) {
	vars := make([]int, 0, len(l.coefs))
	for v, c := range l.coefs {
		if c != 0 {
			vars = append(vars, v)
		}
	}
	sort.Ints(vars)

	constant = l.constant
	for _, v := range vars {
		c := l.coefs[v]
		if c > 0 {
			lits = append(lits, v)
			weights = append(weights, c)
			continue
		}
		constant += c
		lits = append(lits, -v)
		weights = append(weights, -c)
	}
	return lits, weights, constant
}

// encoding maps a cpmodel.Model onto pseudo-boolean constraints. Booleans use
// one SAT variable; an integer in [lo, hi] uses hi-lo ordered bits whose count
// of true bits is the offset from lo.
type encoding struct {
	model      *cpmodel.Model
	base       []int
	nbVars     int
	constrs    []solver.PBConstr
	referenced map[int]bool
	infeasible bool
}

func encode(m *cpmodel.Model) *encoding {
	e := &encoding{
		model:      m,
		base:       make([]int, m.NumVars()),
		referenced: make(map[int]bool),
	}
	for i := 0; i < m.NumVars(); i++ {
		v := cpmodel.Var(i)
		e.base[i] = e.nbVars + 1
		if m.IsBool(v) {
			e.nbVars++
			continue
		}
		lo, hi := m.Bounds(v)
		bits := hi - lo
		e.nbVars += bits
		for k := 1; k < bits; k++ {
			// bit k+1 implies bit k
			e.add(solver.PropClause(-(e.base[i] + k), e.base[i]+k-1))
		}
	}

	for _, c := range m.Constraints() {
		e.addConstraint(c)
	}
	for _, clause := range m.Clauses() {
		lits := make([]int, 0, len(clause))
		for _, v := range clause {
			lits = append(lits, e.base[v])
		}
		e.add(solver.PropClause(lits...))
	}
	return e
}

func (e *encoding) newVar() int {
	e.nbVars++
	return e.nbVars
}

func (e *encoding) add(c solver.PBConstr) {
	for _, lit := range c.Lits {
		if lit < 0 {
			lit = -lit
		}
		e.referenced[lit] = true
	}
	e.constrs = append(e.constrs, c)
}

func (e *encoding) linearize(expr cpmodel.LinearExpr) linear {
	l := linear{coefs: make(map[int]int), constant: expr.Constant}
	for _, t := range expr.Terms {
		if e.model.IsBool(t.Var) {
			l.coefs[e.base[t.Var]] += t.Coef
			continue
		}
		lo, hi := e.model.Bounds(t.Var)
		l.constant += t.Coef * lo
		for k := 0; k < hi-lo; k++ {
			l.coefs[e.base[t.Var]+k] += t.Coef
		}
	}
	return l
}

func (e *encoding) addConstraint(c *cpmodel.Constraint) {
	l := e.linearize(c.Expr)
	gate := e.gate(c.Enforce)
	minVal, maxVal := l.span()

	if c.Lo != cpmodel.NoLower {
		switch {
		case gate == 0:
			e.atLeast(l, c.Lo)
		case c.Lo > minVal:
			// l + M*(1-gate) >= Lo
			big := c.Lo - minVal
			r := l.clone()
			r.coefs[gate] -= big
			r.constant += big
			e.atLeast(r, c.Lo)
		}
	}
	if c.Hi != cpmodel.NoUpper {
		switch {
		case gate == 0:
			e.atMost(l, c.Hi)
		case maxVal > c.Hi:
			// l - M*(1-gate) <= Hi
			big := maxVal - c.Hi
			r := l.clone()
			r.coefs[gate] += big
			r.constant -= big
			e.atMost(r, c.Hi)
		}
	}
}

// gate returns a SAT variable that is true whenever every enforcement literal
// is true, or 0 when the constraint is unconditional.
func (e *encoding) gate(enforce []cpmodel.Var) int {
	switch len(enforce) {
	case 0:
		return 0
	case 1:
		return e.base[enforce[0]]
	}
	g := e.newVar()
	lits := []int{g}
	for _, v := range enforce {
		lits = append(lits, -e.base[v])
	}
	e.add(solver.PropClause(lits...))
	return g
}

func (e *encoding) atLeast(l linear, k int) {
	lits, weights, constant := l.positive()
	need := k - constant
	if need <= 0 {
		return
	}
	total := 0
	for _, w := range weights {
		total += w
	}
	if need > total {
		e.infeasible = true
		return
	}
	e.add(solver.GtEq(lits, weights, need))
}

func (e *encoding) atMost(l linear, k int) {
	e.atLeast(l.negate(), -k)
}

// anchorUnreferenced mentions every SAT variable at least once so the parsed
// problem sizes its model to cover all of them.
func (e *encoding) anchorUnreferenced(extra []int) {
	for _, lit := range extra {
		if lit < 0 {
			lit = -lit
		}
		e.referenced[lit] = true
	}
	for v := 1; v <= e.nbVars; v++ {
		if !e.referenced[v] {
			e.add(solver.PropClause(v, -v))
		}
	}
}

// decode reads the cpmodel assignment out of a SAT model.
func (e *encoding) decode(model []bool) []int {
	values := make([]int, e.model.NumVars())
	isTrue := func(satVar int) bool {
		idx := satVar - 1
		return idx >= 0 && idx < len(model) && model[idx]
	}
	for i := range values {
		v := cpmodel.Var(i)
		if e.model.IsBool(v) {
			if isTrue(e.base[i]) {
				values[i] = 1
			}
			continue
		}
		lo, hi := e.model.Bounds(v)
		val := lo
		for k := 0; k < hi-lo; k++ {
			if isTrue(e.base[i] + k) {
				val++
			}
		}
		values[i] = val
	}
	return values
}
