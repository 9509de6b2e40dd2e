package grammar

import (
	"strings"

	"github.com/dekarrin/rosed"

	"github.com/dekarrin/grok/internal/grokerrors"
	"github.com/dekarrin/grok/internal/util"
)

// Follow returns FOLLOW(nonterminal): the terminals, and the end-of-input
// symbol returned by EOF, that can come directly after nonterminal in a
// sentential form. It fails for the same reasons First does.
func (g *Grammar) Follow(nonterminal string) (util.KeySet[Symbol], error) {
	if !g.prods.Has(nonterminal) {
		return nil, grokerrors.Undeclared(nonterminal)
	}
	follow, err := g.follows()
	if err != nil {
		return nil, err
	}
	return follow[nonterminal].Copy(), nil
}

func (g *Grammar) follows() (map[string]util.KeySet[Symbol], error) {
	if g.follow != nil {
		return g.follow, nil
	}

	follow := map[string]util.KeySet[Symbol]{}
	followOf := func(nt string) util.KeySet[Symbol] {
		s, ok := follow[nt]
		if !ok {
			s = util.NewKeySet[Symbol]()
			follow[nt] = s
		}
		return s
	}

	for _, nt := range g.prods.Nonterminals() {
		followOf(nt)
	}
	if g.start != "" {
		followOf(g.start).Add(g.EOF())
	}

	rules := g.prods.All()
	for pass := 1; ; pass++ {
		changed := false

		// If there is a production A -> αBβ, then everything in FIRST(β) except
		// ε is in FOLLOW(B).
		for _, ref := range rules {
			d := ref.Rule.Derivation
			for i := 0; i < len(d)-1; i++ {
				if !d[i].IsNonterminal() {
					continue
				}
				rest, err := g.firstSeq(d[i+1:], util.NewKeySet[string]())
				if err != nil {
					return nil, err
				}
				rest.Remove(Epsilon)
				if followOf(d[i].Name).AddAll(rest) {
					changed = true
				}
			}
		}

		// If there is a production A -> αB, or a production A -> αBβ where
		// FIRST(β) contains ε, then everything in FOLLOW(A) is in FOLLOW(B).
		for _, ref := range rules {
			d := ref.Rule.Derivation
			for i := len(d) - 1; i >= 0; i-- {
				if !d[i].IsNonterminal() {
					break
				}
				if followOf(d[i].Name).AddAll(followOf(ref.Nonterminal)) {
					changed = true
				}

				fromHere, err := g.firstSeq(d[i:], util.NewKeySet[string]())
				if err != nil {
					return nil, err
				}
				if !fromHere.Has(Epsilon) {
					break
				}
			}
		}

		if !g.followFixed || !changed {
			g.log.Debugf("FOLLOW sets computed in %d pass(es)", pass)
			break
		}
	}

	g.follow = follow
	return follow, nil
}

// FirstFollowTable renders the FIRST and FOLLOW set of every nonterminal as a
// table.
func (g *Grammar) FirstFollowTable() (string, error) {
	if err := g.ComputeFirstsAndFollows(); err != nil {
		return "", err
	}

	data := [][]string{{"", "FIRST", "FOLLOW"}}
	for _, nt := range g.prods.Nonterminals() {
		first := g.first[NT(nt)]
		data = append(data, []string{nt, symbolSetString(first), symbolSetString(g.follow[nt])})
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, 80, rosed.Options{
			TableBorders: true,
			TableHeaders: true,
		}).
		String(), nil
}

func symbolSetString(s util.KeySet[Symbol]) string {
	return "{" + strings.Join(Names(s.Sorted(symbolLess)), ", ") + "}"
}
