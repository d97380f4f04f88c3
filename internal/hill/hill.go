// Package hill implements the normalized Hill transfer functions and the
// logic gates used to combine regulatory inputs in logic-based ODE models.
//
// The curves follow the normalized form used by Netflux: for half-maximal
// input EC50 and coefficient n,
//
//	beta = (EC50^n - 1) / (2*EC50^n - 1)
//	K    = (beta - 1)^(1/n)
//	f(x) = w * beta*x^n / (K^n + x^n)
//
// so that f(0) = 0, f(EC50) = w/2 and f(1) = w. Values are capped at w.
//
//   - [Act], [Inhib]: single-input activation and inhibition
//   - [And]: multiplicative gate normalized to the reaction weight
//   - [Or]: probabilistic OR across reactions
//   - [Combine]: separates activating and inhibiting terms before gating
package hill

import (
	"math"
	"strings"
)

// Rule selects how a target combines its regulators.
type Rule int

const (
	RuleOr Rule = iota
	RuleAnd
)

func (r Rule) String() string {
	if r == RuleAnd {
		return "and"
	}
	return "or"
}

// ParseRule maps "and"/"or" (any case, "&" and "|" accepted) to a Rule.
func ParseRule(s string) (Rule, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "and", "&":
		return RuleAnd, true
	case "or", "|", "":
		return RuleOr, true
	}
	return RuleOr, false
}

// Valid reports whether n and ec50 define a well-formed normalized curve.
// EC50^n must stay below one half or beta leaves (1, inf).
func Valid(n, ec50 float64) bool {
	if !(n > 0) || !(ec50 > 0) || !(ec50 < 1) {
		return false
	}
	return math.Pow(ec50, n) < 0.5
}

func coefficients(n, ec50 float64) (beta, kn float64) {
	en := math.Pow(ec50, n)
	beta = (en - 1) / (2*en - 1)
	// K^n = beta - 1
	kn = beta - 1
	return beta, kn
}

// Act returns the normalized Hill activation of x scaled by weight w.
func Act(x, w, n, ec50 float64) float64 {
	return w * Activate(x, ec50, n)
}

// Inhib is the complement of Act within the reaction weight.
func Inhib(x, w, n, ec50 float64) float64 {
	return w - Act(x, w, n, ec50)
}

// Activate is the unit-weight activation curve, capped at 1.
func Activate(x, ec50, n float64) float64 {
	if x <= 0 {
		return 0
	}
	beta, kn := coefficients(n, ec50)
	xn := math.Pow(x, n)
	f := beta * xn / (kn + xn)
	if f > 1 {
		return 1
	}
	return f
}

// And multiplies the gated terms and renormalizes so the gate saturates at w.
func And(w float64, terms ...float64) float64 {
	if len(terms) == 0 {
		return w
	}
	p := 1.0
	for _, f := range terms {
		p *= f
	}
	if len(terms) > 1 {
		p /= math.Pow(w, float64(len(terms)-1))
	}
	return p
}

// Or folds terms with x + y - x*y.
func Or(terms ...float64) float64 {
	acc := 0.0
	for _, f := range terms {
		acc = acc + f - acc*f
	}
	return acc
}

// Term is one regulator activity feeding a gate.
type Term struct {
	Value   float64
	Inhibit bool
}

// Combine evaluates every term through Act or Inhib and merges them with
// the given rule. Under RuleOr each term is a separate reaction of weight w.
// A single term is returned as is under either rule.
func Combine(rule Rule, w, n, ec50 float64, terms []Term) float64 {
	if len(terms) == 0 {
		return w
	}
	fs := make([]float64, len(terms))
	for i, t := range terms {
		if t.Inhibit {
			fs[i] = Inhib(t.Value, w, n, ec50)
		} else {
			fs[i] = Act(t.Value, w, n, ec50)
		}
	}
	if rule == RuleAnd {
		return And(w, fs...)
	}
	return Or(fs...)
}
