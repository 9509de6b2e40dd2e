package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/grok/internal/lex"
)

const exprDefinition = `
format = "GROK"
type = "GRAMMAR"
transforms = ["eliminate-left-recursion"]

[[token]]
name = "id"
pattern = '[a-z]+'

[[token]]
name = "+"
pattern = '\+'

[[token]]
name = "ws"
pattern = '\s+'
discard = true

[rules]
text = '''
E -> E + T | T ;
T -> id ;
'''
`

func Test_Parse(t *testing.T) {
	assert := assert.New(t)

	def, err := Parse([]byte(exprDefinition))

	assert.NoError(err)
	assert.Equal(Definition{
		LexerKind:  LexerRegex,
		Transforms: []string{"eliminate-left-recursion"},
		Tokens: []TokenDef{
			{Name: "id", Pattern: "[a-z]+"},
			{Name: "+", Pattern: `\+`},
			{Name: "ws", Pattern: `\s+`, Discard: true},
		},
		Rules: "E -> E + T | T ;\nT -> id ;\n",
	}, def)
	assert.Equal([]string{"id", "+"}, def.Terminals())
}

func Test_Parse_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{
			name: "wrong format",
			input: `
				format = "TUNA"
				type = "GRAMMAR"
			`,
		},
		{
			name: "wrong type",
			input: `
				format = "GROK"
				type = "DATA"
			`,
		},
		{
			name: "no tokens",
			input: `
				format = "GROK"
				type = "GRAMMAR"
				[rules]
				text = "S -> a ;"
			`,
		},
		{
			name: "unknown key",
			input: `
				format = "GROK"
				type = "GRAMMAR"
				colour = "blue"
				[[token]]
				name = "a"
				pattern = "a"
				[rules]
				text = "S -> a ;"
			`,
		},
		{
			name: "unknown transform",
			input: `
				format = "GROK"
				type = "GRAMMAR"
				transforms = ["make-it-lr"]
				[[token]]
				name = "a"
				pattern = "a"
				[rules]
				text = "S -> a ;"
			`,
		},
		{
			name: "unknown lexer",
			input: `
				format = "GROK"
				type = "GRAMMAR"
				lexer = "nfa"
				[[token]]
				name = "a"
				pattern = "a"
				[rules]
				text = "S -> a ;"
			`,
		},
		{
			name: "token without pattern",
			input: `
				format = "GROK"
				type = "GRAMMAR"
				[[token]]
				name = "a"
				[rules]
				text = "S -> a ;"
			`,
		},
		{
			name: "no rules",
			input: `
				format = "GROK"
				type = "GRAMMAR"
				[[token]]
				name = "a"
				pattern = "a"
			`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.input))
			assert.Error(t, err)
		})
	}
}

func Test_Parse_UnknownKeyIsReported(t *testing.T) {
	assert := assert.New(t)

	_, err := Parse([]byte(`
		format = "GROK"
		type = "GRAMMAR"
		[[token]]
		name = "a"
		pattern = "a"
		priority = 2
		[rules]
		text = "S -> a ;"
	`))

	assert.ErrorIs(err, ErrUnknownKey)
	assert.ErrorContains(err, "token.priority")
}

func Test_ScanFileInfo(t *testing.T) {
	assert := assert.New(t)

	info, err := ScanFileInfo([]byte("format = \"grok\"\ntype = \"grammar\"\n[rules]\ntext = 'S -> a ;'\n"))

	assert.NoError(err)
	assert.Equal(FileInfo{Format: "grok", Type: "grammar"}, info)
}

func Test_Definition_Grammar(t *testing.T) {
	assert := assert.New(t)
	def, err := Parse([]byte(exprDefinition))
	require.NoError(t, err)

	g, err := def.Grammar()

	assert.NoError(err)
	assert.Equal("E", g.StartSymbol())
	assert.Equal([]string{"E", "E0", "T"}, g.Nonterminals())
	assert.Equal([]string{"id", "+"}, g.Terminals())
	assert.True(g.IsLL1())
}

func Test_Definition_Grammar_Start(t *testing.T) {
	testCases := []struct {
		name      string
		start     string
		expectErr bool
	}{
		{name: "existing nonterminal", start: "T"},
		{name: "missing nonterminal", start: "Q", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			def := Definition{
				Start:  tc.start,
				Tokens: []TokenDef{{Name: "id", Pattern: "[a-z]+"}, {Name: "+", Pattern: `\+`}},
				Rules:  "E -> T + E | T ; T -> id ;",
			}

			g, err := def.Grammar()

			if tc.expectErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.start, g.StartSymbol())
			assert.Equal(tc.start, g.Nonterminals()[0])
		})
	}
}

func Test_Definition_Grammar_UndeclaredNonterminal(t *testing.T) {
	assert := assert.New(t)
	def := Definition{
		Tokens: []TokenDef{{Name: "a", Pattern: "a"}},
		Rules:  "S -> a B ;",
	}

	_, err := def.Grammar()

	assert.Error(err)
}

func Test_Definition_Lexer(t *testing.T) {
	for _, kind := range []string{LexerRegex, LexerDFA} {
		t.Run(kind, func(t *testing.T) {
			assert := assert.New(t)
			def := Definition{
				LexerKind: kind,
				Tokens: []TokenDef{
					{Name: "id", Pattern: "[a-z]+"},
					{Name: "+", Pattern: `\+`},
					{Name: "ws", Pattern: "( |\t)+", Discard: true},
				},
			}

			lx, err := def.Lexer()
			require.NoError(t, err)
			toks, err := lex.Collect(lx.Tokenize("a + bc"))

			assert.NoError(err)
			var terms []string
			for _, tok := range toks {
				terms = append(terms, tok.Terminal)
			}
			assert.Equal([]string{"id", "+", "id"}, terms)
			assert.Equal([]string{"id", "+", "ws"}, lx.Terminals())
		})
	}
}

func Test_Load(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "expr.toml")
	require.NoError(t, os.WriteFile(path, []byte(exprDefinition), 0644))

	def, err := Load(path)

	assert.NoError(err)
	assert.Len(def.Tokens, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(err, os.ErrNotExist)
}

func Test_TransformNames(t *testing.T) {
	assert := assert.New(t)

	names := TransformNames()

	assert.Contains(names, "left-factor")
	assert.Contains(names, "chomsky-normal-form")
	assert.Len(names, len(transforms))
}
