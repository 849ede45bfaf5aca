// Package cpmodel describes constraint optimisation problems independently of
// the search backend that solves them.
//
// A Model holds boolean and bounded integer variables, linear constraints over
// weighted sums of those variables (optionally conditioned on boolean
// literals), disjunctions of boolean variables, and a linear objective to
// minimise. An Engine runs the search, reporting every improving feasible
// assignment to a Callback and returning the best assignment with a terminal
// Status and search statistics.
//
// Models are built and solved within a single request and are not safe for
// concurrent mutation.
package cpmodel
