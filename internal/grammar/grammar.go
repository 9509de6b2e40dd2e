// Package grammar models context-free grammars and holds the algorithms that
// prepare them for parsing: useless, null and unit production elimination,
// Chomsky Normal Form, left recursion elimination, left factoring, FIRST and
// FOLLOW sets, and LL(1) parse table construction.
//
// A Grammar is built in place with Prod and is not modified by any of its
// transformations; each of those returns a new Grammar.
package grammar

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dekarrin/grok/internal/grokerrors"
	"github.com/dekarrin/grok/internal/util"
)

// Option configures a Grammar at creation.
type Option func(g *Grammar)

// WithLogger sets the logger that the grammar and its production store log
// rewrites to. By default the "grok.grammar" logger is used.
func WithLogger(log commonlog.Logger) Option {
	return func(g *Grammar) {
		g.log = log
	}
}

// WithFollowFixedPoint sets whether FOLLOW sets are computed by repeating
// their propagation passes until no set changes. When off (the default), the
// propagation runs once, which gives incomplete sets for grammars where a
// FOLLOW set depends on one computed later in the same pass.
func WithFollowFixedPoint(on bool) Option {
	return func(g *Grammar) {
		g.followFixed = on
	}
}

// Grammar is a context-free grammar. The zero value is not usable; create one
// with New, NewFrom, or by parsing rules with ParseRules.
type Grammar struct {
	terminals []string
	termSet   util.KeySet[string]

	prods *ProductionSet
	start string

	// every name that NewSymbol must not hand out again.
	used util.KeySet[string]
	eof  string

	log         commonlog.Logger
	followFixed bool

	first  map[Symbol]util.KeySet[Symbol]
	follow map[string]util.KeySet[Symbol]
}

// New creates an empty Grammar over the given terminals.
func New(terminals []string, opts ...Option) *Grammar {
	g := &Grammar{
		terminals: make([]string, 0, len(terminals)),
		termSet:   util.NewKeySet[string](),
		used:      util.NewKeySet[string](),
		log:       commonlog.GetLogger("grok.grammar"),
	}
	for _, opt := range opts {
		opt(g)
	}

	for _, t := range terminals {
		if t == "" || g.termSet.Has(t) {
			continue
		}
		g.terminals = append(g.terminals, t)
		g.termSet.Add(t)
		g.used.Add(t)
	}

	g.prods = NewProductionSet(g.log)
	g.eof = g.MustNewSymbol("EOF")
	return g
}

// NewFrom creates a Grammar over the given terminals whose productions and
// start symbol are copied from template. Derivation symbols are reclassified
// against the new terminal set. Options of template are kept unless
// overridden by opts.
func NewFrom(terminals []string, template *Grammar, opts ...Option) *Grammar {
	allOpts := append([]Option{WithLogger(template.log), WithFollowFixedPoint(template.followFixed)}, opts...)
	g := New(terminals, allOpts...)

	for _, name := range template.used.Elements() {
		g.used.Add(name)
	}
	for _, ref := range template.prods.All() {
		g.prods.Add(ref.Nonterminal, g.reclassify(ref.Rule.Derivation))
	}
	g.start = template.start
	if g.termSet.Has(g.eof) || g.prods.Has(g.eof) {
		g.eof = g.MustNewSymbol("EOF")
	}
	return g
}

// Copy returns a deep copy of g. The terminal list is shared, as it is never
// modified after creation.
func (g *Grammar) Copy() *Grammar {
	return &Grammar{
		terminals:   g.terminals,
		termSet:     g.termSet,
		prods:       g.prods.Clone(),
		start:       g.start,
		used:        g.used.Copy(),
		eof:         g.eof,
		log:         g.log,
		followFixed: g.followFixed,
	}
}

// derive returns an empty grammar with the same terminals, options and used
// names as g.
func (g *Grammar) derive() *Grammar {
	return &Grammar{
		terminals:   g.terminals,
		termSet:     g.termSet,
		prods:       NewProductionSet(g.log),
		used:        g.used.Copy(),
		eof:         g.eof,
		log:         g.log,
		followFixed: g.followFixed,
	}
}

// NewSymbol returns base followed by the smallest non-negative integer that
// gives a name not yet used in the grammar, and marks that name as used.
func (g *Grammar) NewSymbol(base string) (string, error) {
	for i := 0; i < math.MaxInt; i++ {
		name := base + strconv.Itoa(i)
		if !g.used.Has(name) {
			g.used.Add(name)
			return name, nil
		}
	}
	return "", grokerrors.NameExhausted(base)
}

// NewNonterminal is NewSymbol with a generic base name.
func (g *Grammar) NewNonterminal() (string, error) {
	return g.NewSymbol("N")
}

// MustNewSymbol is NewSymbol but panics if no name can be generated.
func (g *Grammar) MustNewSymbol(base string) string {
	name, err := g.NewSymbol(base)
	if err != nil {
		panic(err.Error())
	}
	return name
}

// classify converts authored names into symbols: terminal names become
// terminals, the empty string becomes epsilon and anything else is a
// nonterminal.
func (g *Grammar) classify(names []string) []Symbol {
	syms := make([]Symbol, len(names))
	for i, n := range names {
		switch {
		case n == "":
			syms[i] = Epsilon
		case g.termSet.Has(n):
			syms[i] = T(n)
		default:
			syms[i] = NT(n)
		}
	}
	return syms
}

// reclassify gives derivation with each named symbol classified against the
// terminals of g. Epsilon and EOF are kept as they are.
func (g *Grammar) reclassify(derivation []Symbol) []Symbol {
	syms := make([]Symbol, len(derivation))
	for i, sym := range derivation {
		switch {
		case sym.IsEpsilon(), sym.IsEOF():
			syms[i] = sym
		case g.termSet.Has(sym.Name):
			syms[i] = T(sym.Name)
		default:
			syms[i] = NT(sym.Name)
		}
	}
	return syms
}

// Prod adds the rule nonterminal -> derivation to the grammar. Each name in
// derivation is a terminal if the grammar was created with it as one, epsilon
// if it is the empty string, and a nonterminal otherwise. An empty derivation
// is the same as the epsilon derivation. If isStart is set, nonterminal
// becomes the start symbol.
//
// Prod panics if nonterminal is empty or is a terminal, or if epsilon is
// given along with other symbols.
func (g *Grammar) Prod(nonterminal string, derivation []string, isStart bool) {
	if nonterminal == "" {
		panic("empty nonterminal name not allowed for production rule")
	}
	if g.termSet.Has(nonterminal) {
		panic(fmt.Sprintf("%q is a terminal and cannot have productions", nonterminal))
	}
	if len(derivation) == 0 {
		derivation = []string{""}
	}
	if len(derivation) > 1 {
		for _, sym := range derivation {
			if sym == "" {
				panic("epsilon only allowed as the sole symbol of a derivation")
			}
		}
	}

	g.prod(nonterminal, g.classify(derivation), isStart)
}

// prod is Prod for derivations that are already classified.
func (g *Grammar) prod(nonterminal string, derivation []Symbol, isStart bool) {
	if len(derivation) == 0 {
		derivation = []Symbol{Epsilon}
	}

	clashesWithEOF := nonterminal == g.eof
	g.used.Add(nonterminal)
	for _, sym := range derivation {
		if sym.IsNonterminal() {
			g.used.Add(sym.Name)
			clashesWithEOF = clashesWithEOF || sym.Name == g.eof
		}
	}
	if clashesWithEOF {
		g.eof = g.MustNewSymbol("EOF")
	}

	if g.prods.Add(nonterminal, derivation) {
		g.first = nil
		g.follow = nil
	}

	if isStart {
		g.start = nonterminal
	}
	if g.start != "" && g.prods.Has(g.start) {
		g.prods.MoveToFront(g.start)
	}
}

// SetStart designates nonterminal as the start symbol.
func (g *Grammar) SetStart(nonterminal string) {
	g.start = nonterminal
	if g.prods.Has(nonterminal) {
		g.prods.MoveToFront(nonterminal)
	}
	g.follow = nil
}

// StartSymbol returns the start symbol's name, or "" if none is designated.
func (g *Grammar) StartSymbol() string {
	return g.start
}

// EOF returns the end-of-input sentinel of the grammar. Its name is unique
// within the grammar.
func (g *Grammar) EOF() Symbol {
	return EOF(g.eof)
}

// Terminals returns the terminal names in the order they were given.
func (g *Grammar) Terminals() []string {
	ts := make([]string, len(g.terminals))
	copy(ts, g.terminals)
	return ts
}

// Nonterminals returns the name of every nonterminal that has a production,
// in production order.
func (g *Grammar) Nonterminals() []string {
	return g.prods.Nonterminals()
}

func (g *Grammar) IsTerminal(name string) bool {
	return g.termSet.Has(name)
}

func (g *Grammar) IsNonterminal(name string) bool {
	return g.prods.Has(name)
}

// Rules returns every rule of the grammar in production order.
func (g *Grammar) Rules() []RuleRef {
	return g.prods.All()
}

// RulesOf returns the rules of nonterminal. It panics if nonterminal has no
// production.
func (g *Grammar) RulesOf(nonterminal string) []ProdRule {
	rules := g.prods.RulesOf(nonterminal)
	cp := make([]ProdRule, len(rules))
	for i := range rules {
		cp[i] = rules[i].Copy()
	}
	return cp
}

// DerivationOf returns the derivation of rule i of nonterminal.
func (g *Grammar) DerivationOf(nonterminal string, i int) []Symbol {
	d := g.prods.DerivationOf(nonterminal, i)
	cp := make([]Symbol, len(d))
	copy(cp, d)
	return cp
}

// Productions returns a copy of the grammar's production store.
func (g *Grammar) Productions() *ProductionSet {
	return g.prods.Clone()
}

// Validate checks that the grammar can be used for analysis: it must have at
// least one rule and a start symbol with a production, and every nonterminal
// used in a derivation must have a production. All problems found are
// reported together.
func (g *Grammar) Validate() error {
	if g.prods.Len() < 1 {
		return grokerrors.Structuref("no rules defined in grammar")
	}

	var problems []string
	if g.start == "" {
		problems = append(problems, "no start symbol designated")
	} else if !g.prods.Has(g.start) {
		problems = append(problems, fmt.Sprintf("no production defined for start symbol %q", g.start))
	}

	reported := util.NewKeySet[string]()
	for _, ref := range g.prods.All() {
		for _, sym := range ref.Rule.Derivation {
			if sym.IsNonterminal() && !g.prods.Has(sym.Name) && !reported.Has(sym.Name) {
				problems = append(problems, fmt.Sprintf("no production defined for nonterminal %q produced by %q", sym.Name, ref.Nonterminal))
				reported.Add(sym.Name)
			}
		}
	}

	if len(problems) > 0 {
		return grokerrors.Structuref("%s", strings.Join(problems, "\n"))
	}
	return nil
}

// BNF renders every production of the grammar. Nonterminal names are padded to
// the width of the longest one, the first alternative follows a ':' and the
// rest a '|', and each production ends with a ';' and a blank line.
func (g *Grammar) BNF() string {
	width := 0
	for _, nt := range g.prods.Nonterminals() {
		if n := len([]rune(nt)); n > width {
			width = n
		}
	}

	var sb strings.Builder
	for _, p := range g.prods.prods {
		pad := strings.Repeat(" ", width-len([]rune(p.Nonterminal)))
		for i, r := range p.Rules {
			if i == 0 {
				sb.WriteString(p.Nonterminal + pad + " : ")
			} else {
				sb.WriteString(strings.Repeat(" ", width) + " | ")
			}
			sb.WriteString(r.String())
			sb.WriteRune('\n')
		}
		sb.WriteString(strings.Repeat(" ", width) + " ;\n\n")
	}
	return sb.String()
}

func (g *Grammar) String() string {
	return fmt.Sprintf("Start: %s\n%s", g.start, g.BNF())
}

// Equal returns whether o is a *Grammar with the same terminals, start symbol
// and productions in the same order.
func (g *Grammar) Equal(o any) bool {
	other, ok := o.(*Grammar)
	if !ok || other == nil {
		return false
	}
	if g.start != other.start || len(g.terminals) != len(other.terminals) {
		return false
	}
	for i := range g.terminals {
		if g.terminals[i] != other.terminals[i] {
			return false
		}
	}
	return g.prods.Equal(other.prods)
}
