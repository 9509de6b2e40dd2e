package grammar

import (
	"github.com/dekarrin/grok/internal/util"
)

// EliminateLeftRecursion returns a grammar with no left recursion, using
// algorithm 4.19 from the purple dragon book. Nonterminals are put in the
// order they appear in the grammar, A1 through An. For each Ai, every rule
// Ai -> Aj γ with j < i is replaced by Ai -> δ γ for each rule Aj -> δ, and
// then immediate left recursion on Ai is removed.
//
// Rules produced by the substitution are not themselves checked for another
// round of substitution against the earlier nonterminals.
func (g *Grammar) EliminateLeftRecursion() *Grammar {
	g = g.Copy()
	g.log.Debugf("eliminating left recursion")

	A := g.prods.Nonterminals()
	for i := range A {
		if !g.prods.Has(A[i]) {
			continue
		}

		var removals []RuleRef
		var adds []ruleAdd
		for j := 0; j < i; j++ {
			if !g.prods.Has(A[j]) {
				continue
			}
			AjRules := g.prods.RulesOf(A[j])

			for idx, r := range g.prods.RulesOf(A[i]) {
				if r.Derivation[0] != NT(A[j]) {
					continue
				}

				// replace each production of the form Ai -> Aj γ by the
				// productions Ai -> δ1 γ | δ2 γ | ... | δk γ, where
				// Aj -> δ1 | δ2 | ... | δk are all current Aj-productions.
				// -purple dragon book
				removals = append(removals, RuleRef{Nonterminal: A[i], Index: idx, Rule: r})
				gamma := r.Derivation[1:]
				for _, delta := range AjRules {
					adds = append(adds, ruleAdd{A[i], joinDerivations(delta.Derivation, gamma)})
				}
			}
		}
		g.applyEdits(removals, adds)

		g.eliminateImmediateLeftRecursion(A[i])
	}

	return g
}

// eliminateImmediateLeftRecursion rewrites A -> A α1 | ... | A αm | β1 | ... |
// βn as A -> β1 A' | ... | βn A' and A' -> α1 A' | ... | αm A' | ε. When there
// are no β rules, A is left with no rules.
func (g *Grammar) eliminateImmediateLeftRecursion(A string) {
	var alphas, betas [][]Symbol
	for _, r := range g.prods.RulesOf(A) {
		if r.Derivation[0] == NT(A) {
			if len(r.Derivation) > 1 {
				alphas = append(alphas, r.Derivation[1:])
			}
		} else {
			betas = append(betas, r.Derivation)
		}
	}
	if alphas == nil {
		// only self-loops, if anything; those are left recursive with nothing
		// after them and can go.
		if len(betas) != len(g.prods.RulesOf(A)) && len(betas) > 0 {
			g.prods.setRules(A, betas)
			g.first, g.follow = nil, nil
		}
		return
	}

	APrime := g.MustNewSymbol(A)
	g.log.Debugf("removing immediate left recursion on %s with %s", A, APrime)

	// insert A' immediately after A (convention)
	for _, alpha := range alphas {
		g.prods.addAfter(A, APrime, util.Concat(alpha, []Symbol{NT(APrime)}))
	}
	g.prods.Add(APrime, []Symbol{Epsilon})

	if len(betas) == 0 {
		// nothing for A' to follow, so A derives nothing at all and loses its
		// production.
		for idx := len(g.prods.RulesOf(A)) - 1; idx >= 0; idx-- {
			g.prods.Remove(A, idx)
		}
		g.log.Debugf("%s has no non-recursive rules and no longer derives anything", A)
	} else {
		var newARules [][]Symbol
		for _, beta := range betas {
			newARules = append(newARules, joinDerivations(beta, []Symbol{NT(APrime)}))
		}
		g.prods.setRules(A, newARules)
	}

	g.first, g.follow = nil, nil
}

// joinDerivations concatenates two derivations, dropping epsilon unless the
// result would otherwise be empty.
func joinDerivations(d1, d2 []Symbol) []Symbol {
	var joined []Symbol
	for _, sym := range util.Concat(d1, d2) {
		if !sym.IsEpsilon() {
			joined = append(joined, sym)
		}
	}
	if len(joined) == 0 {
		return []Symbol{Epsilon}
	}
	return joined
}

// LeftFactor returns a grammar where no two rules of the same nonterminal
// start with the same symbol. For each nonterminal A, the first rule that
// shares a prefix with any later rule is grouped with every later rule that
// shares a prefix with it, using the shortest prefix they all have in common.
// The group is replaced with A -> prefix A', where A' derives what is left of
// each rule. A is then checked again, and A' is checked after the current
// round of nonterminals.
func (g *Grammar) LeftFactor() *Grammar {
	g = g.Copy()
	g.log.Debugf("left factoring")

	tracking := g.prods.Nonterminals()
	for len(tracking) > 0 {
		current := tracking
		tracking = nil

		for _, A := range current {
			for {
				newNT, factored := g.factorOnce(A)
				if !factored {
					break
				}
				tracking = append(tracking, newNT)
			}
		}
	}

	return g
}

// factorOnce performs a single factoring on the rules of A. It returns the new
// nonterminal and true if one was done.
func (g *Grammar) factorOnce(A string) (string, bool) {
	if !g.prods.Has(A) {
		return "", false
	}
	rules := g.prods.RulesOf(A)

	for r := range rules {
		ard := rules[r].Derivation

		sharing := 0
		prefixLen := len(ard)
		for s := r + 1; s < len(rules); s++ {
			n := util.CommonPrefixLen(ard, rules[s].Derivation)
			if n > 0 {
				sharing++
				prefixLen = min(prefixLen, n)
			}
		}
		if sharing == 0 {
			continue
		}

		newNT := g.MustNewSymbol(A)
		prefix := ard[:prefixLen]
		g.log.Debugf("factoring %s out of %s into %s", derivationString(prefix), A, newNT)

		removals := []RuleRef{{Nonterminal: A, Index: r, Rule: rules[r]}}
		adds := []ruleAdd{
			{A, util.Concat(prefix, []Symbol{NT(newNT)})},
			{newNT, suffixOrEpsilon(ard, prefixLen)},
		}
		for s := r + 1; s < len(rules); s++ {
			asd := rules[s].Derivation
			if util.HasPrefix(asd, prefix) {
				removals = append(removals, RuleRef{Nonterminal: A, Index: s, Rule: rules[s]})
				adds = append(adds, ruleAdd{newNT, suffixOrEpsilon(asd, prefixLen)})
			}
		}

		g.applyEdits(removals, adds)
		return newNT, true
	}

	return "", false
}

func suffixOrEpsilon(d []Symbol, from int) []Symbol {
	if from >= len(d) {
		return []Symbol{Epsilon}
	}
	return util.Concat(d[from:])
}
