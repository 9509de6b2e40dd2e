package parse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/grok/internal/grammar"
	"github.com/dekarrin/grok/internal/grokerrors"
	"github.com/dekarrin/grok/internal/lex"
)

const exprGrammar = `
	E  -> T E' ;
	E' -> + T E' | ε ;
	T  -> F T' ;
	T' -> * F T' | ε ;
	F  -> ( E ) | id ;
`

func exprLexer(t *testing.T, lx lex.Tokenizer) lex.Tokenizer {
	defs := [][2]string{
		{"id", "[a-z]+"},
		{"+", `\+`},
		{"*", `\*`},
		{"(", `\(`},
		{")", `\)`},
	}
	for _, d := range defs {
		require.NoError(t, lx.Lex(d[0], d[1], true))
	}
	require.NoError(t, lx.Lex("ws", "( |\t|\n)+", false))
	return lx
}

func Test_LL1Parser_Parse(t *testing.T) {
	testCases := []struct {
		name   string
		lexer  lex.Tokenizer
		input  string
		expect []string
	}{
		{
			name:   "regex lexer",
			lexer:  lex.New(),
			input:  "id + id * ( id + id )",
			expect: []string{"id", "+", "id", "*", "(", "id", "+", "id", ")"},
		},
		{
			name:   "DFA lexer",
			lexer:  lex.NewDFALexer(),
			input:  "a + b * ( c + d )",
			expect: []string{"a", "+", "b", "*", "(", "c", "+", "d", ")"},
		},
		{
			name:   "spread over lines",
			lexer:  lex.New(),
			input:  "a\n*\nb",
			expect: []string{"a", "*", "b"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			g := grammar.MustParse(exprGrammar)
			p, err := GenerateLL1Parser(g)
			require.NoError(t, err)
			lx := exprLexer(t, tc.lexer)

			pt, err := p.Parse(lx.Tokenize(tc.input))

			if !assert.NoError(err) {
				return
			}
			assert.Equal("E", pt.Value)
			assert.False(pt.Terminal)

			var values []string
			for _, tok := range pt.Leaves() {
				values = append(values, tok.Value)
			}
			assert.Equal(tc.expect, values)
		})
	}
}

func Test_LL1Parser_Parse_TreeShape(t *testing.T) {
	assert := assert.New(t)
	g := grammar.MustParse(exprGrammar)
	p, err := GenerateLL1Parser(g)
	require.NoError(t, err)
	lx := exprLexer(t, lex.New())

	pt, err := p.Parse(lx.Tokenize("x"))

	expect := `( E )
  |---: ( T )
  |       |---: ( F )
  |       |       \---: (TERM "id")
  |       \---: ( T' )
  \---: ( E' )`
	assert.NoError(err)
	assert.Equal(expect, pt.String())
}

func Test_LL1Parser_Parse_EpsilonStart(t *testing.T) {
	assert := assert.New(t)
	g := grammar.MustParse(`S -> a S | ε ;`)
	p, err := GenerateLL1Parser(g)
	require.NoError(t, err)
	lx := lex.New()
	require.NoError(t, lx.Lex("a", "a", true))

	pt, err := p.Parse(lx.Tokenize(""))
	assert.NoError(err)
	assert.Equal(&Tree{Value: "S"}, pt)

	pt, err = p.Parse(lx.Tokenize("aa"))
	assert.NoError(err)
	assert.Len(pt.Leaves(), 2)
	assert.Len(pt.Children, 2)
}

func Test_LL1Parser_Parse_Errors(t *testing.T) {
	testCases := []struct {
		name         string
		input        string
		expectExpect string
		expectActual string
		expectPos    int
	}{
		{
			name:         "input ends early",
			input:        "a +",
			expectExpect: "",
			expectActual: "EOF0",
			expectPos:    4,
		},
		{
			name:         "trailing input",
			input:        "a )",
			expectExpect: "EOF0",
			expectActual: ")",
			expectPos:    3,
		},
		{
			name:         "unmatched paren",
			input:        "( a",
			expectExpect: ")",
			expectActual: "EOF0",
			expectPos:    4,
		},
		{
			name:         "unexpected operator",
			input:        "a + * b",
			expectExpect: "",
			expectActual: "*",
			expectPos:    5,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			g := grammar.MustParse(exprGrammar)
			p, err := GenerateLL1Parser(g)
			require.NoError(t, err)
			lx := exprLexer(t, lex.New())

			pt, err := p.Parse(lx.Tokenize(tc.input))

			assert.Nil(pt)
			assert.ErrorIs(err, grokerrors.ErrParse)
			var synErr *grokerrors.SyntaxError
			if assert.True(errors.As(err, &synErr)) {
				assert.Equal(tc.expectExpect, synErr.Expected())
				assert.Equal(tc.expectActual, synErr.Actual())
				assert.Equal(1, synErr.Line())
				assert.Equal(tc.expectPos, synErr.Position())
			}
		})
	}
}

func Test_LL1Parser_Parse_LexErrorPassesThrough(t *testing.T) {
	assert := assert.New(t)
	g := grammar.MustParse(exprGrammar)
	p, err := GenerateLL1Parser(g)
	require.NoError(t, err)
	lx := exprLexer(t, lex.New())

	pt, err := p.Parse(lx.Tokenize("a + $"))

	assert.Nil(pt)
	assert.ErrorIs(err, grokerrors.ErrLex)
	assert.NotErrorIs(err, grokerrors.ErrParse)
}

func Test_GenerateLL1Parser_LeftRecursive(t *testing.T) {
	assert := assert.New(t)
	g := grammar.MustParse(`E -> E + T | T ; T -> id ;`)

	_, err := GenerateLL1Parser(g)

	assert.ErrorIs(err, grokerrors.ErrLeftRecursive)
}

func Test_Tree_Walk(t *testing.T) {
	assert := assert.New(t)
	pt := &Tree{Value: "S", Children: []*Tree{
		{Value: "A", Children: []*Tree{{Value: "a", Terminal: true}}},
		{Value: "b", Terminal: true},
	}}

	var order []string
	for node := range pt.Walk() {
		order = append(order, node.Value)
	}
	assert.Equal([]string{"S", "A", "a", "b"}, order)

	// stopping early
	order = nil
	for node := range pt.Walk() {
		order = append(order, node.Value)
		if node.Value == "A" {
			break
		}
	}
	assert.Equal([]string{"S", "A"}, order)
}

func Test_Tree_CopyAndEqual(t *testing.T) {
	assert := assert.New(t)
	pt := &Tree{Value: "S", Children: []*Tree{
		{Value: "a", Terminal: true},
		{Value: "B"},
	}}

	cp := pt.Copy()
	assert.True(pt.Equal(cp))

	cp.Children[1].Value = "C"
	assert.False(pt.Equal(cp))
	assert.Equal("B", pt.Children[1].Value)
	assert.False(pt.Equal("S"))
	assert.False(pt.Equal((*Tree)(nil)))
}

func Test_Tree_Equal(t *testing.T) {
	leaf := func(v string) *Tree { return &Tree{Value: v, Terminal: true} }
	node := func(v string, children ...*Tree) *Tree { return &Tree{Value: v, Children: children} }

	testCases := []struct {
		name   string
		a      *Tree
		b      any
		expect bool
	}{
		{name: "identical", a: node("S", node("A", leaf("a")), leaf("b")), b: node("S", node("A", leaf("a")), leaf("b")), expect: true},
		{name: "value form", a: node("S", leaf("a")), b: *node("S", leaf("a")), expect: true},
		{name: "source tokens ignored", a: node("S", leaf("a")), b: node("S", &Tree{Value: "a", Terminal: true, Source: lex.Token{Value: "x"}}), expect: true},
		{name: "same order different shape", a: node("S", node("A", leaf("a")), leaf("b")), b: node("S", node("A", leaf("a"), leaf("b"))), expect: false},
		{name: "extra child", a: node("S", leaf("a")), b: node("S", leaf("a"), leaf("b")), expect: false},
		{name: "terminal versus nonterminal", a: node("S", leaf("a")), b: node("S", node("a")), expect: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.a.Equal(tc.b))
		})
	}
}
