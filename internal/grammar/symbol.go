package grammar

import (
	"strings"
)

// SymbolKind is the kind of a Symbol. Terminals and nonterminals are disjoint
// universes; epsilon and end-of-input are markers that are neither.
type SymbolKind int

const (
	KindTerminal SymbolKind = iota
	KindNonterminal
	KindEpsilon
	KindEOF
)

func (k SymbolKind) String() string {
	switch k {
	case KindTerminal:
		return "terminal"
	case KindNonterminal:
		return "nonterminal"
	case KindEpsilon:
		return "epsilon"
	case KindEOF:
		return "end-of-input"
	default:
		return "unknown"
	}
}

// Symbol is a single grammar symbol. Symbols are comparable and can be used as
// map keys; two symbols are the same only if both their kind and name match.
type Symbol struct {
	Kind SymbolKind
	Name string
}

// Epsilon is the marker for a derivation that produces nothing. It only ever
// appears as the sole symbol of a rule.
var Epsilon = Symbol{Kind: KindEpsilon}

// T returns the terminal symbol with the given name.
func T(name string) Symbol {
	return Symbol{Kind: KindTerminal, Name: name}
}

// NT returns the nonterminal symbol with the given name.
func NT(name string) Symbol {
	return Symbol{Kind: KindNonterminal, Name: name}
}

// EOF returns the end-of-input sentinel with the given name. Each Grammar
// generates its own; see Grammar.EOF.
func EOF(name string) Symbol {
	return Symbol{Kind: KindEOF, Name: name}
}

func (s Symbol) IsTerminal() bool {
	return s.Kind == KindTerminal
}

func (s Symbol) IsNonterminal() bool {
	return s.Kind == KindNonterminal
}

func (s Symbol) IsEpsilon() bool {
	return s.Kind == KindEpsilon
}

func (s Symbol) IsEOF() bool {
	return s.Kind == KindEOF
}

func (s Symbol) String() string {
	if s.Kind == KindEpsilon {
		return "ε"
	}
	return s.Name
}

// symbolLess orders symbols by name, with markers sorted after everything
// else. It is used wherever a stable order over a set of symbols is needed.
func symbolLess(a, b Symbol) bool {
	aMarker := a.Kind == KindEpsilon || a.Kind == KindEOF
	bMarker := b.Kind == KindEpsilon || b.Kind == KindEOF
	if aMarker != bMarker {
		return bMarker
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.Kind < b.Kind
}

// isEpsilonDerivation returns whether derivation is the single-symbol epsilon
// derivation.
func isEpsilonDerivation(derivation []Symbol) bool {
	return len(derivation) == 1 && derivation[0].IsEpsilon()
}

func derivationString(derivation []Symbol) string {
	names := make([]string, len(derivation))
	for i := range derivation {
		names[i] = derivation[i].String()
	}
	return strings.Join(names, " ")
}

// Names returns the String of every symbol in syms.
func Names(syms []Symbol) []string {
	names := make([]string, len(syms))
	for i := range syms {
		names[i] = syms[i].String()
	}
	return names
}

// AuthoredNames returns the names of syms in the form Prod takes them, with
// epsilon given as the empty string.
func AuthoredNames(syms []Symbol) []string {
	names := make([]string, len(syms))
	for i := range syms {
		if !syms[i].IsEpsilon() {
			names[i] = syms[i].Name
		}
	}
	return names
}
