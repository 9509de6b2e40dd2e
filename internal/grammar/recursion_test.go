package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/grok/internal/grokerrors"
)

func Test_Grammar_EliminateLeftRecursion(t *testing.T) {
	testCases := []struct {
		name   string
		rules  []string
		expect []string
	}{
		{
			name: "grammar with no left recursion",
			rules: []string{
				"S -> b A | b",
				"A -> a",
			},
			expect: []string{
				"S -> b A | b",
				"A -> a",
			},
		},
		{
			name: "rule with immediate recursion only",
			rules: []string{
				"S -> b A | b",
				"A -> A a",
			},
			expect: []string{
				"S  -> b A | b",
				"A0 -> a A0 | ε",
			},
		},
		{
			name: "start symbol with only left recursive rules",
			rules: []string{
				"S -> S a | S b",
			},
			expect: []string{
				"S0 -> a S0 | b S0 | ε",
			},
		},
		{
			name: "rule with immediate left recursion and other prods",
			rules: []string{
				"S -> b A | b",
				"A -> A a | a",
			},
			expect: []string{
				"S  -> b A | b",
				"A  -> a A0",
				"A0 -> a A0 | ε",
			},
		},
		{
			name: "expression grammar",
			rules: []string{
				"E -> E + T | T",
				"T -> T * F | F",
				"F -> ( E ) | id",
			},
			expect: []string{
				"E  -> T E0",
				"E0 -> + T E0 | ε",
				"T  -> F T0",
				"T0 -> * F T0 | ε",
				"F  -> ( E ) | id",
			},
		},
		{
			name: "indirect left recursion",
			rules: []string{
				"S -> b A | b",
				"A -> B a | a B a b",
				"B -> A b | b b b",
			},
			expect: []string{
				"S  -> b A | b",
				"A  -> B a | a B a b",
				"B  -> b b b B0 | a B a b b B0",
				"B0 -> a b B0 | ε",
			},
		},
		{
			name: "epsilon alternative",
			rules: []string{
				"S -> S a | ε",
			},
			expect: []string{
				"S  -> S0",
				"S0 -> a S0 | ε",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g := mustParseRulesForTest(t, tc.rules)

			actual := g.EliminateLeftRecursion()

			assert.Equal(normalizeRules(tc.expect), actual.Productions().String())
			for _, ref := range actual.Rules() {
				assert.NotEqual(NT(ref.Nonterminal), ref.Rule.Derivation[0], "%s is immediately left-recursive", ref)
			}
		})
	}
}

func Test_Grammar_EliminateLeftRecursion_ThreeLevelIndirect(t *testing.T) {
	assert := assert.New(t)

	// C -> A z is substituted against A, giving C -> B x z, but that new rule
	// is not substituted against B in the same pass. The cycle C => B x z =>
	// C y x z therefore survives.
	g := MustParse(`
		A -> B x | a ;
		B -> C y | b ;
		C -> A z | c ;
	`)

	actual := g.EliminateLeftRecursion()

	assert.Equal(normalizeRules([]string{
		"A -> B x | a",
		"B -> C y | b",
		"C -> c | B x z | a z",
	}), actual.Productions().String())

	_, err := actual.First("C")
	assert.ErrorIs(err, grokerrors.ErrLeftRecursive)
}

func Test_Grammar_LeftFactor(t *testing.T) {
	testCases := []struct {
		name   string
		rules  []string
		expect []string
	}{
		{
			name: "no common prefixes",
			rules: []string{
				"S -> a | b S",
			},
			expect: []string{
				"S -> a | b S",
			},
		},
		{
			name: "shorter prefix covering more alternatives wins",
			rules: []string{
				"A -> a A B | a B c | a A c",
			},
			expect: []string{
				"A   -> a A0",
				"A0  -> B c | A A00",
				"A00 -> B | c",
			},
		},
		{
			name: "dangling else (purple dragon book 4.22)",
			rules: []string{
				"S -> i E t S | i E t S e S | a",
				"E -> b",
			},
			expect: []string{
				"S  -> i E t S S0 | a",
				"E  -> b",
				"S0 -> e S | ε",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g := mustParseRulesForTest(t, tc.rules)

			actual := g.LeftFactor()

			assert.Equal(normalizeRules(tc.expect), actual.Productions().String())

			// no two alternatives of any nonterminal may start the same way
			for _, nt := range actual.Nonterminals() {
				seen := map[Symbol]bool{}
				for _, r := range actual.RulesOf(nt) {
					assert.False(seen[r.Derivation[0]], "%s has two alternatives starting with %s", nt, r.Derivation[0])
					seen[r.Derivation[0]] = true
				}
			}
		})
	}
}

func Test_Grammar_LeftFactor_SingleNewNonterminalForPrefix(t *testing.T) {
	assert := assert.New(t)

	g := MustParse("A -> a A B | a B c | a A c ;")
	actual := g.LeftFactor()

	rules := actual.RulesOf("A")
	if assert.Len(rules, 1) {
		assert.Equal([]Symbol{T("a"), NT("A0")}, rules[0].Derivation)
	}

	// expanding A0 and A00 back into A gives the original alternatives
	var expanded [][]Symbol
	for _, r0 := range actual.RulesOf("A0") {
		last := r0.Derivation[len(r0.Derivation)-1]
		if last != NT("A00") {
			expanded = append(expanded, append([]Symbol{T("a")}, r0.Derivation...))
			continue
		}
		for _, r00 := range actual.RulesOf("A00") {
			d := []Symbol{T("a")}
			d = append(d, r0.Derivation[:len(r0.Derivation)-1]...)
			d = append(d, r00.Derivation...)
			expanded = append(expanded, d)
		}
	}

	assert.ElementsMatch([][]Symbol{
		{T("a"), NT("A"), T("B")},
		{T("a"), T("B"), T("c")},
		{T("a"), NT("A"), T("c")},
	}, expanded)
}
