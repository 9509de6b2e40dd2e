package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cnf/structhash"
	"github.com/tliron/commonlog"

	"github.com/dekarrin/grok/internal/grokerrors"
)

// ProdRule is a single alternative of a production. Hash identifies the
// derivation structurally; two rules with the same hash are the same rule.
type ProdRule struct {
	Derivation []Symbol
	Hash       string
}

func newProdRule(derivation []Symbol) ProdRule {
	d := make([]Symbol, len(derivation))
	copy(d, derivation)
	return ProdRule{Derivation: d, Hash: hashDerivation(d)}
}

func hashDerivation(derivation []Symbol) string {
	h, err := structhash.Hash(derivation, 1)
	if err != nil {
		// structhash only fails on values it cannot walk, which Symbol is not;
		// fall back to something that is still unique per derivation.
		parts := make([]string, len(derivation))
		for i := range derivation {
			parts[i] = fmt.Sprintf("%d:%q", derivation[i].Kind, derivation[i].Name)
		}
		return strings.Join(parts, ",")
	}
	return h
}

// IsEpsilon returns whether the rule is the epsilon rule.
func (r ProdRule) IsEpsilon() bool {
	return isEpsilonDerivation(r.Derivation)
}

// IsUnit returns whether the rule's derivation is exactly one nonterminal.
func (r ProdRule) IsUnit() bool {
	return len(r.Derivation) == 1 && r.Derivation[0].IsNonterminal()
}

// References returns whether sym appears anywhere in the derivation.
func (r ProdRule) References(sym Symbol) bool {
	for i := range r.Derivation {
		if r.Derivation[i] == sym {
			return true
		}
	}
	return false
}

func (r ProdRule) String() string {
	return derivationString(r.Derivation)
}

func (r ProdRule) Copy() ProdRule {
	d := make([]Symbol, len(r.Derivation))
	copy(d, r.Derivation)
	return ProdRule{Derivation: d, Hash: r.Hash}
}

// Production is every rule of one nonterminal, in insertion order.
type Production struct {
	Nonterminal string
	Rules       []ProdRule
}

func (p Production) Copy() Production {
	cp := Production{Nonterminal: p.Nonterminal, Rules: make([]ProdRule, len(p.Rules))}
	for i := range p.Rules {
		cp.Rules[i] = p.Rules[i].Copy()
	}
	return cp
}

func (p Production) indexOf(hash string) int {
	for i := range p.Rules {
		if p.Rules[i].Hash == hash {
			return i
		}
	}
	return -1
}

func (p Production) String() string {
	alts := make([]string, len(p.Rules))
	for i := range p.Rules {
		alts[i] = p.Rules[i].String()
	}
	return fmt.Sprintf("%s -> %s", p.Nonterminal, strings.Join(alts, " | "))
}

// RuleRef locates one rule in a ProductionSet.
type RuleRef struct {
	Nonterminal string
	Index       int
	Rule        ProdRule
}

func (ref RuleRef) String() string {
	return fmt.Sprintf("%s -> %s", ref.Nonterminal, ref.Rule.String())
}

// ProductionSet is an ordered collection of productions with an index from
// nonterminal name to position. The zero value is not ready for use; call
// NewProductionSet.
type ProductionSet struct {
	prods []Production
	index map[string]int
	log   commonlog.Logger
}

// NewProductionSet returns an empty ProductionSet. log may be nil, in which
// case mutations are not logged.
func NewProductionSet(log commonlog.Logger) *ProductionSet {
	return &ProductionSet{index: map[string]int{}, log: log}
}

func (ps *ProductionSet) debugf(format string, a ...any) {
	if ps.log != nil {
		ps.log.Debugf(format, a...)
	}
}

func (ps *ProductionSet) mustIndex(nt string) int {
	idx, ok := ps.index[nt]
	if !ok {
		panic(fmt.Sprintf("no production for nonterminal %q", nt))
	}
	return idx
}

func (ps *ProductionSet) reindex(from int) {
	for i := from; i < len(ps.prods); i++ {
		ps.index[ps.prods[i].Nonterminal] = i
	}
}

// Add appends derivation as a rule of nt, creating the production if it does
// not yet exist. Adding a rule that nt already has does nothing. The returned
// bool is whether the rule was added.
func (ps *ProductionSet) Add(nt string, derivation []Symbol) bool {
	rule := newProdRule(derivation)

	idx, ok := ps.index[nt]
	if !ok {
		ps.prods = append(ps.prods, Production{Nonterminal: nt})
		idx = len(ps.prods) - 1
		ps.index[nt] = idx
	} else if ps.prods[idx].indexOf(rule.Hash) >= 0 {
		return false
	}

	ps.prods[idx].Rules = append(ps.prods[idx].Rules, rule)
	ps.debugf("added rule %s -> %s", nt, rule.String())
	return true
}

// addAfter is Add, except that when nt has no production yet, its new
// production is placed directly after the one for after instead of at the end.
func (ps *ProductionSet) addAfter(after, nt string, derivation []Symbol) bool {
	if ps.Has(nt) {
		return ps.Add(nt, derivation)
	}
	afterIdx := ps.mustIndex(after)

	rule := newProdRule(derivation)
	newProds := make([]Production, 0, len(ps.prods)+1)
	newProds = append(newProds, ps.prods[:afterIdx+1]...)
	newProds = append(newProds, Production{Nonterminal: nt, Rules: []ProdRule{rule}})
	newProds = append(newProds, ps.prods[afterIdx+1:]...)
	ps.prods = newProds
	ps.reindex(afterIdx + 1)
	ps.debugf("added rule %s -> %s", nt, rule.String())
	return true
}

// Remove deletes rule ruleIdx of nt. If that leaves nt with no rules, its
// production is removed too and every later production moves down one place;
// callers removing several rules should do so in descending index order.
func (ps *ProductionSet) Remove(nt string, ruleIdx int) {
	idx := ps.mustIndex(nt)
	p := ps.prods[idx]
	if ruleIdx < 0 || ruleIdx >= len(p.Rules) {
		panic(fmt.Sprintf("%s has no rule %d", nt, ruleIdx))
	}

	ps.debugf("removed rule %s -> %s", nt, p.Rules[ruleIdx].String())
	p.Rules = append(p.Rules[:ruleIdx:ruleIdx], p.Rules[ruleIdx+1:]...)
	ps.prods[idx] = p

	if len(p.Rules) == 0 {
		ps.prods = append(ps.prods[:idx:idx], ps.prods[idx+1:]...)
		delete(ps.index, nt)
		ps.reindex(idx)
		ps.debugf("removed production %s", nt)
	}
}

// setRules replaces every rule of nt with the given derivations, keeping the
// production's position. Duplicates among derivations are dropped.
func (ps *ProductionSet) setRules(nt string, derivations [][]Symbol) {
	idx := ps.mustIndex(nt)
	p := Production{Nonterminal: nt}
	for _, d := range derivations {
		r := newProdRule(d)
		if p.indexOf(r.Hash) < 0 {
			p.Rules = append(p.Rules, r)
		}
	}
	ps.prods[idx] = p
	ps.debugf("replaced rules of %s", p.String())
}

// MoveToFront makes nt's production the first one.
func (ps *ProductionSet) MoveToFront(nt string) {
	idx := ps.mustIndex(nt)
	if idx == 0 {
		return
	}
	p := ps.prods[idx]
	copy(ps.prods[1:idx+1], ps.prods[:idx])
	ps.prods[0] = p
	ps.reindex(0)
}

// All returns every rule in store order.
func (ps *ProductionSet) All() []RuleRef {
	var refs []RuleRef
	for _, p := range ps.prods {
		for i := range p.Rules {
			refs = append(refs, RuleRef{Nonterminal: p.Nonterminal, Index: i, Rule: p.Rules[i]})
		}
	}
	return refs
}

func (ps *ProductionSet) filter(pred func(r ProdRule) bool) []RuleRef {
	var refs []RuleRef
	for _, p := range ps.prods {
		for i := range p.Rules {
			if pred(p.Rules[i]) {
				refs = append(refs, RuleRef{Nonterminal: p.Nonterminal, Index: i, Rule: p.Rules[i]})
			}
		}
	}
	return refs
}

// RulesOf returns the rules of nt. It panics if nt has no production.
func (ps *ProductionSet) RulesOf(nt string) []ProdRule {
	return ps.prods[ps.mustIndex(nt)].Rules
}

// ProductionOf returns a copy of nt's production. It panics if nt has no
// production.
func (ps *ProductionSet) ProductionOf(nt string) Production {
	return ps.prods[ps.mustIndex(nt)].Copy()
}

// Lookup is ProductionOf that returns an error instead of panicking.
func (ps *ProductionSet) Lookup(nt string) (Production, error) {
	idx, ok := ps.index[nt]
	if !ok {
		return Production{}, grokerrors.Undeclared(nt)
	}
	return ps.prods[idx].Copy(), nil
}

// DerivationOf returns the derivation of rule i of nt.
func (ps *ProductionSet) DerivationOf(nt string, i int) []Symbol {
	return ps.prods[ps.mustIndex(nt)].Rules[i].Derivation
}

// UnitRules returns every rule whose derivation is a single nonterminal. Self
// loops such as A -> A are included.
func (ps *ProductionSet) UnitRules() []RuleRef {
	return ps.filter(ProdRule.IsUnit)
}

// NullRules returns every epsilon rule.
func (ps *ProductionSet) NullRules() []RuleRef {
	return ps.filter(ProdRule.IsEpsilon)
}

// FirstNullRule returns the first epsilon rule in store order.
func (ps *ProductionSet) FirstNullRule() (RuleRef, bool) {
	refs := ps.NullRules()
	if len(refs) == 0 {
		return RuleRef{}, false
	}
	return refs[0], true
}

// FirstUnitRule returns the first unit rule in store order.
func (ps *ProductionSet) FirstUnitRule() (RuleRef, bool) {
	refs := ps.UnitRules()
	if len(refs) == 0 {
		return RuleRef{}, false
	}
	return refs[0], true
}

// Referencing returns every rule whose derivation contains sym. A rule that
// contains it more than once is still only returned once.
func (ps *ProductionSet) Referencing(sym Symbol) []RuleRef {
	return ps.filter(func(r ProdRule) bool { return r.References(sym) })
}

// ReferencingAny returns every rule whose derivation contains at least one of
// syms.
func (ps *ProductionSet) ReferencingAny(syms map[Symbol]bool) []RuleRef {
	return ps.filter(func(r ProdRule) bool {
		for _, s := range r.Derivation {
			if syms[s] {
				return true
			}
		}
		return false
	})
}

// Nonterminals returns the name of every nonterminal with a production, in
// store order.
func (ps *ProductionSet) Nonterminals() []string {
	names := make([]string, len(ps.prods))
	for i := range ps.prods {
		names[i] = ps.prods[i].Nonterminal
	}
	return names
}

func (ps *ProductionSet) Has(nt string) bool {
	_, ok := ps.index[nt]
	return ok
}

// Len returns the number of productions.
func (ps *ProductionSet) Len() int {
	return len(ps.prods)
}

// Clone returns a deep copy of ps that logs to the same logger.
func (ps *ProductionSet) Clone() *ProductionSet {
	cp := &ProductionSet{
		prods: make([]Production, len(ps.prods)),
		index: make(map[string]int, len(ps.index)),
		log:   ps.log,
	}
	for i := range ps.prods {
		cp.prods[i] = ps.prods[i].Copy()
	}
	for k, v := range ps.index {
		cp.index[k] = v
	}
	return cp
}

// Equal returns whether o is a ProductionSet with the same productions and
// rules in the same order.
func (ps *ProductionSet) Equal(o any) bool {
	other, ok := o.(*ProductionSet)
	if !ok {
		otherVal, ok := o.(ProductionSet)
		if !ok {
			return false
		}
		other = &otherVal
	}
	if other == nil {
		return ps == nil
	}

	if len(ps.prods) != len(other.prods) {
		return false
	}
	for i := range ps.prods {
		p1, p2 := ps.prods[i], other.prods[i]
		if p1.Nonterminal != p2.Nonterminal || len(p1.Rules) != len(p2.Rules) {
			return false
		}
		for j := range p1.Rules {
			if p1.Rules[j].Hash != p2.Rules[j].Hash {
				return false
			}
		}
	}
	return true
}

// EquivalentTo returns whether other has exactly the same set of rules for
// exactly the same nonterminals, regardless of the order either is in.
func (ps *ProductionSet) EquivalentTo(other *ProductionSet) bool {
	if len(ps.prods) != len(other.prods) {
		return false
	}
	for _, p1 := range ps.prods {
		idx, ok := other.index[p1.Nonterminal]
		if !ok {
			return false
		}
		p2 := other.prods[idx]
		if len(p1.Rules) != len(p2.Rules) {
			return false
		}
		for _, r := range p1.Rules {
			if p2.indexOf(r.Hash) < 0 {
				return false
			}
		}
	}
	return true
}

// String lists each production on its own line with alternatives sorted, so
// that two equivalent sets give the same string.
func (ps *ProductionSet) String() string {
	var sb strings.Builder
	for i, p := range ps.prods {
		alts := make([]string, len(p.Rules))
		for j := range p.Rules {
			alts[j] = p.Rules[j].String()
		}
		sort.Strings(alts)
		if i > 0 {
			sb.WriteRune('\n')
		}
		sb.WriteString(p.Nonterminal)
		sb.WriteString(" -> ")
		sb.WriteString(strings.Join(alts, " | "))
	}
	return sb.String()
}
