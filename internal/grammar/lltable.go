package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
)

// LL1Table is a predictive parse table. Each cell, keyed by a nonterminal and
// a lookahead (a terminal name or the grammar's end-of-input name), holds the
// indexes of the rules of that nonterminal to expand by, in the order they
// were recorded. A cell with more than one entry is a conflict; Get resolves
// it by taking the first.
type LL1Table struct {
	g     *Grammar
	cells map[string]map[string][]int
}

// Conflict is a table cell that more than one rule was recorded in.
type Conflict struct {
	Nonterminal string
	Lookahead   string
	Rules       []int
}

func (c Conflict) String() string {
	return fmt.Sprintf("M[%s, %s] = rules %v", c.Nonterminal, c.Lookahead, c.Rules)
}

func newLL1Table(g *Grammar) *LL1Table {
	return &LL1Table{g: g, cells: map[string]map[string][]int{}}
}

func (M *LL1Table) add(A, a string, ruleIdx int) {
	row, ok := M.cells[A]
	if !ok {
		row = map[string][]int{}
		M.cells[A] = row
	}
	for _, existing := range row[a] {
		if existing == ruleIdx {
			return
		}
	}
	row[a] = append(row[a], ruleIdx)
}

// Get returns the index of the rule of A to expand by when the lookahead is
// a. If several rules were recorded for the cell the first one is returned.
func (M *LL1Table) Get(A, a string) (int, bool) {
	c := M.cells[A][a]
	if len(c) == 0 {
		return 0, false
	}
	return c[0], true
}

// Candidates returns every rule index recorded for the cell, in order.
func (M *LL1Table) Candidates(A, a string) []int {
	c := M.cells[A][a]
	cp := make([]int, len(c))
	copy(cp, c)
	return cp
}

// Derivation returns the derivation that Get selects for the cell.
func (M *LL1Table) Derivation(A, a string) ([]Symbol, bool) {
	idx, ok := M.Get(A, a)
	if !ok {
		return nil, false
	}
	return M.g.DerivationOf(A, idx), true
}

// Grammar returns the grammar the table was built from.
func (M *LL1Table) Grammar() *Grammar {
	return M.g
}

// NonTerminals returns the nonterminals of the table in grammar order.
func (M *LL1Table) NonTerminals() []string {
	return M.g.Nonterminals()
}

// Terminals returns the lookaheads of the table: the grammar's terminals in
// order followed by the end-of-input name.
func (M *LL1Table) Terminals() []string {
	return append(M.g.Terminals(), M.g.eof)
}

// Conflicts returns every cell with more than one rule, ordered by
// nonterminal and then lookahead.
func (M *LL1Table) Conflicts() []Conflict {
	var conflicts []Conflict
	for _, A := range M.NonTerminals() {
		for _, a := range M.Terminals() {
			if c := M.cells[A][a]; len(c) > 1 {
				conflicts = append(conflicts, Conflict{Nonterminal: A, Lookahead: a, Rules: M.Candidates(A, a)})
			}
		}
	}
	return conflicts
}

// String lists the filled cells of the table grouped by nonterminal and then
// lookahead, along with the derivation of each rule recorded there.
func (M *LL1Table) String() string {
	var sb strings.Builder

	terms := M.Terminals()
	width := 0
	for _, a := range terms {
		width = max(width, len([]rune(a)))
	}

	for _, A := range M.NonTerminals() {
		sb.WriteString(A + ":\n")
		for _, a := range terms {
			cell := M.cells[A][a]
			if len(cell) == 0 {
				continue
			}
			alts := make([]string, len(cell))
			for i, idx := range cell {
				alts[i] = derivationString(M.g.prods.DerivationOf(A, idx))
			}
			pad := strings.Repeat(" ", width-len([]rune(a)))
			sb.WriteString(fmt.Sprintf("  %s%s -> %s\n", a, pad, strings.Join(alts, " | ")))
		}
	}
	return sb.String()
}

// Table renders the table as a grid with a row for each nonterminal and a
// column for each lookahead.
func (M *LL1Table) Table() string {
	terms := M.Terminals()
	nts := M.NonTerminals()

	data := [][]string{}
	topRow := []string{""}
	topRow = append(topRow, terms...)
	data = append(data, topRow)

	for i := range nts {
		dataRow := []string{nts[i]}
		for j := range terms {
			var alts []string
			for _, idx := range M.cells[nts[i]][terms[j]] {
				alts = append(alts, derivationString(M.g.prods.DerivationOf(nts[i], idx)))
			}
			dataRow = append(dataRow, strings.Join(alts, " / "))
		}
		data = append(data, dataRow)
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, 80, rosed.Options{
			TableBorders: true,
			TableHeaders: true,
		}).
		String()
}

// LLParseTable builds the predictive parse table of the grammar, following
// algorithm 4.31 of the purple dragon book. Cells with more than one rule are
// kept; see LL1Table.Conflicts. It fails if FIRST or FOLLOW cannot be
// computed.
func (g *Grammar) LLParseTable() (*LL1Table, error) {
	snapshot := g.Copy()
	M := newLL1Table(snapshot)

	// For each production A -> α of the grammar, do the following:
	// -purple dragon book
	for _, ref := range snapshot.prods.All() {
		A := ref.Nonterminal
		FIRSTalpha, err := snapshot.FirstOf(ref.Rule.Derivation)
		if err != nil {
			return nil, err
		}

		// 1. For each terminal a in FIRST(A), add A -> α to M[A, a].
		// -purple dragon book
		for _, a := range FIRSTalpha.Sorted(snapshot.lookaheadLess) {
			if a.IsTerminal() {
				M.add(A, a.Name, ref.Index)
			}
		}

		// 2. If ε is in FIRST(α), then for each terminal b in FOLLOW(A),
		// add A -> α to M[A, b]. If ε is in FIRST(α) and $ is in FOLLOW(A),
		// add A -> α to M[A, $] as well.
		if FIRSTalpha.Has(Epsilon) {
			FOLLOWA, err := snapshot.Follow(A)
			if err != nil {
				return nil, err
			}
			for _, b := range FOLLOWA.Sorted(snapshot.lookaheadLess) {
				M.add(A, b.Name, ref.Index)
			}
		}
	}

	if conflicts := M.Conflicts(); len(conflicts) > 0 {
		g.log.Infof("parse table has %d conflicting cell(s); first recorded rule wins", len(conflicts))
	}
	return M, nil
}

// lookaheadLess orders terminals as the grammar declares them, with the end of
// input last.
func (g *Grammar) lookaheadLess(a, b Symbol) bool {
	pos := func(s Symbol) int {
		for i, t := range g.terminals {
			if s.IsTerminal() && s.Name == t {
				return i
			}
		}
		return len(g.terminals)
	}
	return pos(a) < pos(b)
}

// IsLL1 returns whether the grammar is LL(1). A grammar that FIRST or FOLLOW
// sets cannot be computed for, such as a left-recursive one, is not.
func (g *Grammar) IsLL1() bool {
	for _, A := range g.prods.Nonterminals() {
		rules := g.prods.RulesOf(A)

		followA, err := g.Follow(A)
		if err != nil {
			return false
		}

		// Whenever A -> α | β are two distinct productions of G:
		// -purple dragon book
		for i := range rules {
			alphaFIRST, err := g.FirstOf(rules[i].Derivation)
			if err != nil {
				return false
			}
			for j := i + 1; j < len(rules); j++ {
				betaFIRST, err := g.FirstOf(rules[j].Derivation)
				if err != nil {
					return false
				}

				// 1. For no terminal a do both α and β derive strings beginning
				// with a.
				//
				// 2. At most one of α and β derive the empty string.
				if !alphaFIRST.DisjointWith(betaFIRST) {
					return false
				}

				// 3. If β =*> ε, then α does not derive any string beginning
				// with a terminal in FOLLOW(A). Likewise, if α =*> ε, then β
				// does not derive any string beginning with a terminal in
				// FOLLOW(A).
				// -purple dragon book
				if betaFIRST.Has(Epsilon) && !alphaFIRST.DisjointWith(followA) {
					return false
				}
				if alphaFIRST.Has(Epsilon) && !betaFIRST.DisjointWith(followA) {
					return false
				}
			}
		}
	}

	return true
}
