package grammar

import (
	"sort"

	"github.com/dekarrin/grok/internal/util"
)

// ruleAdd is a rule waiting to be added by applyEdits.
type ruleAdd struct {
	nonterminal string
	derivation  []Symbol
}

// applyEdits removes the rules at removals and then adds the rules in adds.
// Removals are applied from the highest rule index down so that earlier
// removals do not shift the targets of later ones; duplicate removals are
// ignored.
func (g *Grammar) applyEdits(removals []RuleRef, adds []ruleAdd) {
	sorted := make([]RuleRef, len(removals))
	copy(sorted, removals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Index > sorted[j].Index
	})

	type loc struct {
		nt  string
		idx int
	}
	done := map[loc]bool{}
	for _, ref := range sorted {
		l := loc{ref.Nonterminal, ref.Index}
		if done[l] {
			continue
		}
		done[l] = true
		g.prods.Remove(ref.Nonterminal, ref.Index)
	}

	for _, a := range adds {
		g.prods.Add(a.nonterminal, a.derivation)
	}

	if g.start != "" && g.prods.Has(g.start) {
		g.prods.MoveToFront(g.start)
	}
	g.first = nil
	g.follow = nil
}

// EliminateNullProductions returns a grammar with no epsilon rules except
// possibly one for the start symbol. Each epsilon rule of a nonterminal N is
// removed, and for every rule that references N, a variant is added for each
// way of dropping some of the occurrences of N. Dropping every symbol of a
// rule gives a new epsilon rule, which is eliminated in turn.
func (g *Grammar) EliminateNullProductions() *Grammar {
	g = g.Copy()
	g.log.Debugf("eliminating null productions")

	// nonterminals whose epsilon rule has already been pushed up into the
	// rules that reference them. Receiving a new epsilon rule does not make
	// them need another round.
	propagated := util.NewKeySet[string]()

	for {
		var nullRef RuleRef
		found := false
		for _, ref := range g.prods.NullRules() {
			if ref.Nonterminal != g.start {
				nullRef = ref
				found = true
				break
			}
		}
		if !found {
			return g
		}

		nullable := nullRef.Nonterminal
		g.prods.Remove(nullable, nullRef.Index)
		propagated.Add(nullable)

		var adds []ruleAdd
		for _, ref := range g.prods.Referencing(NT(nullable)) {
			d := ref.Rule.Derivation
			occurrences := util.IndexesOf(d, NT(nullable))
			k := len(occurrences)

			// mask bit n set means occurrence n is kept. The mask with every
			// occurrence kept is the rule itself, so it is skipped.
			for mask := 0; mask < (1<<k)-1; mask++ {
				dropped := util.NewKeySet[int]()
				for n, pos := range occurrences {
					if mask&(1<<n) == 0 {
						dropped.Add(pos)
					}
				}

				var variant []Symbol
				for pos, sym := range d {
					if !dropped.Has(pos) {
						variant = append(variant, sym)
					}
				}
				if len(variant) == 0 {
					if propagated.Has(ref.Nonterminal) {
						continue
					}
					variant = []Symbol{Epsilon}
				}
				adds = append(adds, ruleAdd{ref.Nonterminal, variant})
			}
		}

		g.applyEdits(nil, adds)
	}
}

// EliminateUnitProductions returns a grammar with no rules of the form A -> B
// where B is a nonterminal. Each such rule is replaced with copies of the
// rules of B, repeating until no unit rules are left.
func (g *Grammar) EliminateUnitProductions() *Grammar {
	g = g.Copy()
	g.log.Debugf("eliminating unit productions")

	// resolved[A] holds every B whose rules have been copied onto A. A unit
	// rule A -> B that shows up again after that adds nothing new, as A got
	// every rule B had at the time including any unit rules of B.
	resolved := map[string]util.KeySet[string]{}

	units := g.prods.UnitRules()
	for len(units) > 0 {
		var adds []ruleAdd
		for _, ref := range units {
			a, b := ref.Nonterminal, ref.Rule.Derivation[0].Name
			if a == b {
				continue
			}
			if resolved[a] == nil {
				resolved[a] = util.NewKeySet[string]()
			}
			resolved[a].Add(b)

			if !g.prods.Has(b) {
				continue
			}
			for _, r := range g.prods.RulesOf(b) {
				if r.IsUnit() {
					target := r.Derivation[0].Name
					if target == a || resolved[a].Has(target) {
						continue
					}
				}
				adds = append(adds, ruleAdd{a, r.Derivation})
			}
		}

		// adds go on the end, so the indexes of units are still good when the
		// removals are applied after them.
		for _, a := range adds {
			g.prods.Add(a.nonterminal, a.derivation)
		}
		g.applyEdits(units, nil)

		units = g.prods.UnitRules()
	}

	return g
}

// EliminateCycles returns a grammar with no derivation cycles of the form
// A =>+ A. Because every such cycle is made only of unit rules, this is the
// same as EliminateUnitProductions.
func (g *Grammar) EliminateCycles() *Grammar {
	return g.EliminateUnitProductions()
}

// ReduceBottomUp returns a grammar without the rules that reference a symbol
// that cannot be connected to any terminal. Starting from the terminals, a
// nonterminal is considered connected if any of its rules references an
// already-connected symbol; the closure of that is kept.
func (g *Grammar) ReduceBottomUp() *Grammar {
	g = g.Copy()

	closure := util.NewKeySet[Symbol]()
	closure.Add(Epsilon)
	for _, t := range g.terminals {
		closure.Add(T(t))
	}

	search := closure.Copy()
	for !search.Empty() {
		referencing := util.NewKeySet[Symbol]()
		for _, ref := range g.prods.ReferencingAny(search) {
			referencing.Add(NT(ref.Nonterminal))
		}
		found := referencing.Difference(closure)
		closure = closure.Union(found)
		search = found
	}

	var removals []RuleRef
	for _, ref := range g.prods.All() {
		for _, sym := range ref.Rule.Derivation {
			if !closure.Has(sym) {
				removals = append(removals, ref)
				break
			}
		}
	}

	g.applyEdits(removals, nil)
	return g
}

// ReduceTopDown returns a grammar with only the productions of nonterminals
// that can be reached from the start symbol. Productions keep their relative
// order.
func (g *Grammar) ReduceTopDown() *Grammar {
	reduced := g.derive()
	reduced.start = g.start
	if g.start == "" || !g.prods.Has(g.start) {
		return reduced
	}

	reachable := util.NewKeySet[string]()
	reachable.Add(g.start)
	queue := []string{g.start}
	for len(queue) > 0 {
		nt := queue[0]
		queue = queue[1:]
		if !g.prods.Has(nt) {
			continue
		}
		for _, r := range g.prods.RulesOf(nt) {
			for _, sym := range r.Derivation {
				if sym.IsNonterminal() && !reachable.Has(sym.Name) {
					reachable.Add(sym.Name)
					queue = append(queue, sym.Name)
				}
			}
		}
	}

	for _, ref := range g.prods.All() {
		if reachable.Has(ref.Nonterminal) {
			reduced.prods.Add(ref.Nonterminal, ref.Rule.Derivation)
		}
	}
	reduced.prods.MoveToFront(reduced.start)
	return reduced
}

// EliminateUselessProductions returns a grammar with neither symbols that
// cannot be connected to terminals nor symbols that cannot be reached from the
// start symbol.
func (g *Grammar) EliminateUselessProductions() *Grammar {
	g.log.Debugf("eliminating useless productions")
	return g.ReduceBottomUp().ReduceTopDown()
}

// AbstractifyStartSymbol returns a grammar whose start symbol is not
// referenced by any rule. If the start symbol S is referenced, a new start
// symbol S' is added with the single rule S' -> S.
func (g *Grammar) AbstractifyStartSymbol() *Grammar {
	g = g.Copy()
	if g.start == "" || len(g.prods.Referencing(NT(g.start))) == 0 {
		return g
	}

	newStart := g.MustNewSymbol(g.start)
	g.log.Debugf("abstracting start symbol %s to %s", g.start, newStart)
	g.prod(newStart, []Symbol{NT(g.start)}, true)
	return g
}

// IsolateTerminals returns a grammar in which terminals only appear in rules
// that consist of exactly one terminal. Every other occurrence of a terminal t
// is replaced with a nonterminal whose only rule is t; an existing nonterminal
// is reused for this if it has one rule and that rule is t, otherwise a new one
// is created.
func (g *Grammar) IsolateTerminals() *Grammar {
	g = g.Copy()
	g.log.Debugf("isolating terminals")

	owners := map[string]string{}
	for _, nt := range g.prods.Nonterminals() {
		rules := g.prods.RulesOf(nt)
		if len(rules) != 1 {
			continue
		}
		d := rules[0].Derivation
		if len(d) == 1 && d[0].IsTerminal() {
			if _, ok := owners[d[0].Name]; !ok {
				owners[d[0].Name] = nt
			}
		}
	}

	var removals []RuleRef
	var adds []ruleAdd
	for _, ref := range g.prods.All() {
		terms, nonterms := CountDerivationSymbols(ref.Rule.Derivation)
		if terms == 0 || (terms == 1 && nonterms == 0) {
			continue
		}

		newDerivation := make([]Symbol, len(ref.Rule.Derivation))
		for i, sym := range ref.Rule.Derivation {
			if !sym.IsTerminal() {
				newDerivation[i] = sym
				continue
			}
			owner, ok := owners[sym.Name]
			if !ok {
				owner = g.MustNewSymbol(sym.Name)
				owners[sym.Name] = owner
				adds = append(adds, ruleAdd{owner, []Symbol{sym}})
			}
			newDerivation[i] = NT(owner)
		}

		removals = append(removals, ref)
		adds = append(adds, ruleAdd{ref.Nonterminal, newDerivation})
	}

	g.applyEdits(removals, adds)
	return g
}

// ReduceRulesToPairs returns a grammar where no rule has more than two
// symbols. Longer rules are split by repeatedly replacing their last two
// symbols with a new nonterminal that derives them.
func (g *Grammar) ReduceRulesToPairs() *Grammar {
	g = g.Copy()
	g.log.Debugf("reducing rules to pairs")

	var removals []RuleRef
	var adds []ruleAdd
	for _, ref := range g.prods.All() {
		d := ref.Rule.Derivation
		if len(d) <= 2 {
			continue
		}

		removals = append(removals, ref)
		d = util.Concat(d)
		for len(d) > 2 {
			pairNT := g.MustNewSymbol(ref.Nonterminal)
			adds = append(adds, ruleAdd{pairNT, util.Concat(d[len(d)-2:])})
			d = append(d[:len(d)-2], NT(pairNT))
		}
		adds = append(adds, ruleAdd{ref.Nonterminal, d})
	}

	g.applyEdits(removals, adds)
	return g
}

// ToChomskyNormalForm returns the grammar in Chomsky Normal Form: every rule
// is two nonterminals or one terminal, and only the start symbol may have an
// epsilon rule.
func (g *Grammar) ToChomskyNormalForm() *Grammar {
	return g.AbstractifyStartSymbol().
		EliminateNullProductions().
		EliminateUnitProductions().
		EliminateUselessProductions().
		IsolateTerminals().
		ReduceRulesToPairs()
}

// IsCNF returns whether the grammar is in Chomsky Normal Form.
func (g *Grammar) IsCNF() bool {
	for _, ref := range g.prods.All() {
		d := ref.Rule.Derivation
		switch {
		case ref.Rule.IsEpsilon():
			if ref.Nonterminal != g.start {
				return false
			}
		case len(d) == 1:
			if !d[0].IsTerminal() {
				return false
			}
		case len(d) == 2:
			if !d[0].IsNonterminal() || !d[1].IsNonterminal() {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// CountDerivationSymbols returns the number of terminals and the number of
// non-terminal symbols in derivation. Epsilon counts as a non-terminal symbol.
func CountDerivationSymbols(derivation []Symbol) (terminals, nonterminals int) {
	for _, sym := range derivation {
		if sym.IsTerminal() {
			terminals++
		} else {
			nonterminals++
		}
	}
	return terminals, nonterminals
}
