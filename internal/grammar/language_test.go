package grammar

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

// boundedLanguage gives every string of at most maxLen terminals that the
// start symbol of g derives, sorted, with terminals separated by spaces. A
// nonterminal with no production derives nothing.
func boundedLanguage(g *Grammar, maxLen int) []string {
	lang := map[string]map[string]int{}

	for changed := true; changed; {
		changed = false
		for _, ref := range g.Rules() {
			cur := map[string]int{"": 0}
			for _, sym := range ref.Rule.Derivation {
				var options map[string]int
				switch {
				case sym.IsEpsilon():
					options = map[string]int{"": 0}
				case sym.IsTerminal():
					options = map[string]int{sym.Name: 1}
				default:
					options = lang[sym.Name]
				}

				next := map[string]int{}
				for s, n := range cur {
					for o, m := range options {
						if n+m > maxLen {
							continue
						}
						joined := s + " " + o
						if s == "" {
							joined = o
						} else if o == "" {
							joined = s
						}
						next[joined] = n + m
					}
				}
				cur = next
			}

			if lang[ref.Nonterminal] == nil {
				lang[ref.Nonterminal] = map[string]int{}
			}
			for s, n := range cur {
				if _, ok := lang[ref.Nonterminal][s]; !ok {
					lang[ref.Nonterminal][s] = n
					changed = true
				}
			}
		}
	}

	strs := []string{}
	for s := range lang[g.StartSymbol()] {
		strs = append(strs, s)
	}
	sort.Strings(strs)
	return strs
}

func Test_boundedLanguage(t *testing.T) {
	assert := assert.New(t)

	g := MustParse("S -> a S b | ε ;")
	assert.Equal([]string{"", "a a b b", "a b"}, boundedLanguage(g, 4))

	empty := MustParse("S -> S a | S b ;")
	assert.Equal([]string{}, boundedLanguage(empty, 6))
}

func Test_Grammar_Transforms_PreserveLanguage(t *testing.T) {
	eliminateLeftRecursion := func(g *Grammar) *Grammar { return g.EliminateLeftRecursion() }
	leftFactor := func(g *Grammar) *Grammar { return g.LeftFactor() }
	toCNF := func(g *Grammar) *Grammar { return g.ToChomskyNormalForm() }

	testCases := []struct {
		name      string
		rules     string
		maxLen    int
		transform func(*Grammar) *Grammar
	}{
		{
			name:      "left recursion: expression grammar",
			rules:     "E -> E + T | T ; T -> T * F | F ; F -> ( E ) | id ;",
			maxLen:    7,
			transform: eliminateLeftRecursion,
		},
		{
			name:      "left recursion: recursive rules only",
			rules:     "S -> S a | S b ;",
			maxLen:    6,
			transform: eliminateLeftRecursion,
		},
		{
			name:      "left recursion: unreachable recursive rules only",
			rules:     "S -> b A | b ; A -> A a ;",
			maxLen:    6,
			transform: eliminateLeftRecursion,
		},
		{
			name:      "left recursion: epsilon alternative",
			rules:     "S -> S a | ε ;",
			maxLen:    5,
			transform: eliminateLeftRecursion,
		},
		{
			name:      "left recursion: indirect",
			rules:     "S -> b A | b ; A -> B a | a B a b ; B -> A b | b b b ;",
			maxLen:    9,
			transform: eliminateLeftRecursion,
		},
		{
			name:      "left recursion: three level indirect",
			rules:     "A -> B x | a ; B -> C y | b ; C -> A z | c ;",
			maxLen:    7,
			transform: eliminateLeftRecursion,
		},
		{
			name:      "left factoring: shared prefixes",
			rules:     "A -> a A B | a B c | a A c | d ;",
			maxLen:    7,
			transform: leftFactor,
		},
		{
			name:      "left factoring: dangling else",
			rules:     "S -> i E t S | i E t S e S | a ; E -> b ;",
			maxLen:    9,
			transform: leftFactor,
		},
		{
			name:      "chomsky normal form: expression grammar",
			rules:     "E -> E + T | T ; T -> T * F | F ; F -> ( E ) | id ;",
			maxLen:    5,
			transform: toCNF,
		},
		{
			name:      "chomsky normal form: balanced with empty string",
			rules:     "S -> a S b S | b S a S | ε ;",
			maxLen:    6,
			transform: toCNF,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g := MustParse(tc.rules)
			expect := boundedLanguage(g, tc.maxLen)

			actual := tc.transform(g)

			assert.Equal(expect, boundedLanguage(actual, tc.maxLen), "after transform:\n%s", actual.BNF())
		})
	}
}
