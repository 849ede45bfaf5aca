package cpmodel

import (
	"errors"
	"fmt"
	"math"
)

// Open bounds for one-sided constraints.
const (
	NoLower = math.MinInt32
	NoUpper = math.MaxInt32
)

// Var identifies a variable within the Model that created it.
type Var int

type variable struct {
	name    string
	lo, hi  int
	boolean bool
}

// Term is a coefficient applied to a variable.
type Term struct {
	Var  Var
	Coef int
}

// LinearExpr is a weighted sum of variables plus a constant.
type LinearExpr struct {
	Terms    []Term
	Constant int
}

// Sum adds the given variables with coefficient 1.
func Sum(vars ...Var) LinearExpr {
	expr := LinearExpr{Terms: make([]Term, 0, len(vars))}
	for _, v := range vars {
		expr.Terms = append(expr.Terms, Term{Var: v, Coef: 1})
	}
	return expr
}

// WeightedSum pairs vars with coefs. Extra entries on either side are ignored.
func WeightedSum(vars []Var, coefs []int) LinearExpr {
	n := min(len(vars), len(coefs))
	expr := LinearExpr{Terms: make([]Term, 0, n)}
	for i := 0; i < n; i++ {
		expr.Terms = append(expr.Terms, Term{Var: vars[i], Coef: coefs[i]})
	}
	return expr
}

// AddTerm returns e + coef*v.
func (e LinearExpr) AddTerm(v Var, coef int) LinearExpr {
	out := e.clone()
	out.Terms = append(out.Terms, Term{Var: v, Coef: coef})
	return out
}

// AddConstant returns e + c.
func (e LinearExpr) AddConstant(c int) LinearExpr {
	out := e.clone()
	out.Constant += c
	return out
}

// Plus returns e + o.
func (e LinearExpr) Plus(o LinearExpr) LinearExpr {
	out := e.clone()
	out.Terms = append(out.Terms, o.Terms...)
	out.Constant += o.Constant
	return out
}

// Minus returns e - o.
func (e LinearExpr) Minus(o LinearExpr) LinearExpr {
	out := e.clone()
	for _, t := range o.Terms {
		out.Terms = append(out.Terms, Term{Var: t.Var, Coef: -t.Coef})
	}
	out.Constant -= o.Constant
	return out
}

// Eval computes the expression under the given assignment.
func (e LinearExpr) Eval(values []int) int {
	total := e.Constant
	for _, t := range e.Terms {
		total += t.Coef * values[t.Var]
	}
	return total
}

func (e LinearExpr) clone() LinearExpr {
	return LinearExpr{
		Terms:    append([]Term(nil), e.Terms...),
		Constant: e.Constant,
	}
}

// Constraint bounds a linear expression: Lo <= Expr <= Hi. When Enforce is
// non-empty the bound only applies if every listed boolean is true.
type Constraint struct {
	Name    string
	Expr    LinearExpr
	Lo, Hi  int
	Enforce []Var
}

// OnlyEnforceIf conditions the constraint on all of lits being true.
func (c *Constraint) OnlyEnforceIf(lits ...Var) *Constraint {
	c.Enforce = append(c.Enforce, lits...)
	return c
}

// WithName labels the constraint for diagnostics.
func (c *Constraint) WithName(name string) *Constraint {
	c.Name = name
	return c
}

// Satisfied reports whether values meet the constraint, honouring enforcement.
func (c *Constraint) Satisfied(values []int) bool {
	for _, lit := range c.Enforce {
		if values[lit] == 0 {
			return true
		}
	}
	v := c.Expr.Eval(values)
	return v >= c.Lo && v <= c.Hi
}

// Model is a constraint optimisation problem under construction.
type Model struct {
	vars        []variable
	constraints []*Constraint
	clauses     [][]Var
	objective   *LinearExpr
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

// NewBoolVar adds a 0/1 variable.
func (m *Model) NewBoolVar(name string) Var {
	m.vars = append(m.vars, variable{name: name, lo: 0, hi: 1, boolean: true})
	return Var(len(m.vars) - 1)
}

// NewIntVar adds an integer variable with domain [lo, hi].
func (m *Model) NewIntVar(lo, hi int, name string) Var {
	m.vars = append(m.vars, variable{name: name, lo: lo, hi: hi})
	return Var(len(m.vars) - 1)
}

// AddLinear posts lo <= expr <= hi.
func (m *Model) AddLinear(expr LinearExpr, lo, hi int) *Constraint {
	c := &Constraint{Expr: expr, Lo: lo, Hi: hi}
	m.constraints = append(m.constraints, c)
	return c
}

// AddEquality posts expr == value.
func (m *Model) AddEquality(expr LinearExpr, value int) *Constraint {
	return m.AddLinear(expr, value, value)
}

// AddLessOrEqual posts expr <= hi.
func (m *Model) AddLessOrEqual(expr LinearExpr, hi int) *Constraint {
	return m.AddLinear(expr, NoLower, hi)
}

// AddGreaterOrEqual posts expr >= lo.
func (m *Model) AddGreaterOrEqual(expr LinearExpr, lo int) *Constraint {
	return m.AddLinear(expr, lo, NoUpper)
}

// AddBoolOr requires at least one of lits to be true.
func (m *Model) AddBoolOr(lits ...Var) {
	m.clauses = append(m.clauses, append([]Var(nil), lits...))
}

// Minimize sets the objective.
func (m *Model) Minimize(expr LinearExpr) {
	obj := expr.clone()
	m.objective = &obj
}

// NumVars returns the number of variables created so far.
func (m *Model) NumVars() int { return len(m.vars) }

// Name returns the label given to v.
func (m *Model) Name(v Var) string { return m.vars[v].name }

// Bounds returns the domain of v.
func (m *Model) Bounds(v Var) (lo, hi int) { return m.vars[v].lo, m.vars[v].hi }

// IsBool reports whether v is a boolean variable.
func (m *Model) IsBool(v Var) bool { return m.vars[v].boolean }

// Constraints returns the posted linear constraints.
func (m *Model) Constraints() []*Constraint { return m.constraints }

// Clauses returns the posted disjunctions.
func (m *Model) Clauses() [][]Var { return m.clauses }

// Objective returns the expression to minimise, if any.
func (m *Model) Objective() (LinearExpr, bool) {
	if m.objective == nil {
		return LinearExpr{}, false
	}
	return *m.objective, true
}

// ErrInvalidModel is wrapped by every Validate failure.
var ErrInvalidModel = errors.New("invalid model")

// Validate checks that every reference and bound in the model is well formed.
func (m *Model) Validate() error {
	for _, v := range m.vars {
		if v.lo > v.hi {
			return fmt.Errorf("%w: variable %q has empty domain [%d, %d]", ErrInvalidModel, v.name, v.lo, v.hi)
		}
	}
	for _, c := range m.constraints {
		if c.Lo > c.Hi {
			return fmt.Errorf("%w: constraint %q has empty range [%d, %d]", ErrInvalidModel, c.Name, c.Lo, c.Hi)
		}
		if err := m.checkExpr(c.Expr); err != nil {
			return fmt.Errorf("constraint %q: %w", c.Name, err)
		}
		for _, lit := range c.Enforce {
			if err := m.checkBool(lit); err != nil {
				return fmt.Errorf("constraint %q enforcement: %w", c.Name, err)
			}
		}
	}
	for _, clause := range m.clauses {
		if len(clause) == 0 {
			return fmt.Errorf("%w: empty disjunction", ErrInvalidModel)
		}
		for _, lit := range clause {
			if err := m.checkBool(lit); err != nil {
				return fmt.Errorf("disjunction: %w", err)
			}
		}
	}
	if m.objective != nil {
		if err := m.checkExpr(*m.objective); err != nil {
			return fmt.Errorf("objective: %w", err)
		}
	}
	return nil
}

// Check verifies that values satisfy every domain, constraint and disjunction.
func (m *Model) Check(values []int) error {
	if len(values) != len(m.vars) {
		return fmt.Errorf("expected %d values, got %d", len(m.vars), len(values))
	}
	for i, v := range m.vars {
		if values[i] < v.lo || values[i] > v.hi {
			return fmt.Errorf("variable %q = %d outside [%d, %d]", v.name, values[i], v.lo, v.hi)
		}
	}
	for _, c := range m.constraints {
		if !c.Satisfied(values) {
			return fmt.Errorf("constraint %q violated", c.Name)
		}
	}
	for _, clause := range m.clauses {
		ok := false
		for _, lit := range clause {
			if values[lit] != 0 {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("disjunction %v violated", clause)
		}
	}
	return nil
}

func (m *Model) checkExpr(e LinearExpr) error {
	for _, t := range e.Terms {
		if t.Var < 0 || int(t.Var) >= len(m.vars) {
			return fmt.Errorf("%w: unknown variable %d", ErrInvalidModel, t.Var)
		}
	}
	return nil
}

func (m *Model) checkBool(v Var) error {
	if v < 0 || int(v) >= len(m.vars) {
		return fmt.Errorf("%w: unknown variable %d", ErrInvalidModel, v)
	}
	if !m.vars[v].boolean {
		return fmt.Errorf("%w: %q is not boolean", ErrInvalidModel, m.vars[v].name)
	}
	return nil
}
