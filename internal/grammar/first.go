package grammar

import (
	"github.com/dekarrin/grok/internal/grokerrors"
	"github.com/dekarrin/grok/internal/util"
)

// symbolFor gives the symbol that name refers to in g.
func (g *Grammar) symbolFor(name string) Symbol {
	switch {
	case name == "":
		return Epsilon
	case name == g.eof:
		return g.EOF()
	case g.termSet.Has(name):
		return T(name)
	default:
		return NT(name)
	}
}

// First returns FIRST(name): the terminals that can begin a string derived
// from name, plus epsilon if name can derive the empty string. The FIRST of a
// terminal is the terminal itself.
//
// If computing it requires the FIRST set of a nonterminal whose FIRST set is
// already being computed, the grammar is left-recursive and an error wrapping
// grokerrors.ErrLeftRecursive is returned. Asking for a nonterminal with no
// production gives an error wrapping grokerrors.ErrUndeclared.
func (g *Grammar) First(name string) (util.KeySet[Symbol], error) {
	return g.FirstOfSymbol(g.symbolFor(name))
}

// FirstOfSymbol is First for an already-classified symbol.
func (g *Grammar) FirstOfSymbol(sym Symbol) (util.KeySet[Symbol], error) {
	f, err := g.first1(sym, util.NewKeySet[string]())
	if err != nil {
		return nil, err
	}
	return f.Copy(), nil
}

// FirstOf returns FIRST of a sequence of symbols: the union of FIRST of each
// symbol, up to and including the first one that cannot derive epsilon.
// Epsilon is only in the result if every symbol can derive it, which includes
// the empty sequence.
func (g *Grammar) FirstOf(seq []Symbol) (util.KeySet[Symbol], error) {
	f, err := g.firstSeq(seq, util.NewKeySet[string]())
	if err != nil {
		return nil, err
	}
	return f, nil
}

// first1 returns the memoized FIRST set of sym; callers must not modify it.
func (g *Grammar) first1(sym Symbol, inProgress util.KeySet[string]) (util.KeySet[Symbol], error) {
	switch sym.Kind {
	case KindTerminal, KindEpsilon, KindEOF:
		return util.KeySetOf([]Symbol{sym}), nil
	}

	if f, ok := g.first[sym]; ok {
		return f, nil
	}
	if inProgress.Has(sym.Name) {
		return nil, grokerrors.LeftRecursive(sym.Name)
	}
	if !g.prods.Has(sym.Name) {
		return nil, grokerrors.Undeclared(sym.Name)
	}

	inProgress.Add(sym.Name)
	defer inProgress.Remove(sym.Name)

	f := util.NewKeySet[Symbol]()
	for _, r := range g.prods.RulesOf(sym.Name) {
		if r.IsEpsilon() {
			f.Add(Epsilon)
			continue
		}
		rf, err := g.firstSeq(r.Derivation, inProgress)
		if err != nil {
			return nil, err
		}
		f.AddAll(rf)
	}

	if g.first == nil {
		g.first = map[Symbol]util.KeySet[Symbol]{}
	}
	g.first[sym] = f
	return f, nil
}

func (g *Grammar) firstSeq(seq []Symbol, inProgress util.KeySet[string]) (util.KeySet[Symbol], error) {
	f := util.NewKeySet[Symbol]()
	for _, sym := range seq {
		symFirst, err := g.first1(sym, inProgress)
		if err != nil {
			return nil, err
		}
		for s := range symFirst {
			if !s.IsEpsilon() {
				f.Add(s)
			}
		}
		if !symFirst.Has(Epsilon) {
			return f, nil
		}
	}
	f.Add(Epsilon)
	return f, nil
}

// ComputeFirstsAndFollows computes the FIRST set of every nonterminal and the
// FOLLOW set of every nonterminal so that later calls to First and Follow are
// served from memory. It returns the first error encountered.
func (g *Grammar) ComputeFirstsAndFollows() error {
	for _, nt := range g.prods.Nonterminals() {
		if _, err := g.first1(NT(nt), util.NewKeySet[string]()); err != nil {
			return err
		}
	}
	_, err := g.follows()
	return err
}
