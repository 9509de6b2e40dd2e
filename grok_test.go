package grok

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dekarrin/rezi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/grok/internal/grammar"
	"github.com/dekarrin/grok/internal/grokerrors"
	"github.com/dekarrin/grok/internal/lex"
	"github.com/dekarrin/grok/internal/version"
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

const singleIDTree = `( E )
  |---: ( T )
  |       \---: (TERM "id")
  \---: ( E0 )`

func writeDefinition(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "expr.toml")
	require.NoError(t, os.WriteFile(path, []byte(exprDefinition), 0644))
	return path
}

func Test_Load(t *testing.T) {
	assert := assert.New(t)
	fe, err := Load(writeDefinition(t))
	require.NoError(t, err)

	tree, err := fe.Parse("x")
	assert.NoError(err)
	assert.Equal(singleIDTree, tree.String())

	tree, err = fe.Parse("a + b + c")
	assert.NoError(err)
	assert.Len(tree.Leaves(), 5)

	_, err = fe.Parse("a +")
	assert.ErrorIs(err, grokerrors.ErrParse)
}

func Test_CompileAndLoadCompiled(t *testing.T) {
	assert := assert.New(t)
	defPath := writeDefinition(t)
	outPath := filepath.Join(t.TempDir(), "expr.grokc")

	err := Compile(defPath, outPath)
	require.NoError(t, err)

	fe, err := LoadCompiled(defPath, outPath)
	require.NoError(t, err)

	orig, err := Load(defPath)
	require.NoError(t, err)
	assert.True(orig.Grammar().Equal(fe.Grammar()))

	tree, err := fe.Parse("x")
	assert.NoError(err)
	assert.Equal(singleIDTree, tree.String())
}

func Test_New_UnlexedTerminal(t *testing.T) {
	assert := assert.New(t)
	lx := lex.New()
	require.NoError(t, lx.Lex("id", "[a-z]+", true))
	g := grammar.MustParse(`S -> id ; S -> num ;`)

	_, err := New(lx, g)

	assert.ErrorContains(err, "num")
}

func Test_New_CopiesGrammar(t *testing.T) {
	assert := assert.New(t)
	lx := lex.New()
	require.NoError(t, lx.Lex("a", "a", true))
	require.NoError(t, lx.Lex("b", "b", true))
	g := grammar.MustParse(`S -> a ;`)

	fe, err := New(lx, g)
	require.NoError(t, err)
	g.Prod("S", []string{"b"}, false)

	_, err = fe.Parse("b")
	assert.ErrorIs(err, grokerrors.ErrParse)
}

func Test_Engine_Eval(t *testing.T) {
	fe, err := Load(writeDefinition(t))
	require.NoError(t, err)

	testCases := []struct {
		name       string
		line       string
		expect     string
		expectQuit bool
	}{
		{name: "parse", line: "x", expect: singleIDTree},
		{name: "quit", line: ":quit", expectQuit: true},
		{name: "tokens", line: ":tokens a +", expect: "<id \"a\" @1:1>\n<+ \"+\" @1:3>"},
		{name: "bnf", line: ":bnf", expect: strings.TrimRight(fe.Grammar().BNF(), "\n")},
		{name: "syntax error", line: "a +", expect: "a +\n   ^\nsyntax error: around line 1, char 4: unexpected end of input while parsing T"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			eng, err := NewEngine(strings.NewReader(""), &bytes.Buffer{}, fe, true, "")
			require.NoError(t, err)

			output, quit := eng.Eval(tc.line)

			assert.Equal(tc.expectQuit, quit)
			if !tc.expectQuit {
				assert.Equal(tc.expect, output)
			}
		})
	}
}

func Test_Engine_RunUntilQuit(t *testing.T) {
	assert := assert.New(t)
	fe, err := Load(writeDefinition(t))
	require.NoError(t, err)
	var out bytes.Buffer
	eng, err := NewEngine(strings.NewReader("x\n\n:quit\nnever read\n"), &out, fe, true, "")
	require.NoError(t, err)

	err = eng.RunUntilQuit()

	assert.NoError(err)
	assert.NoError(eng.Close())
	assert.Contains(out.String(), "(direct input mode)")
	assert.Contains(out.String(), singleIDTree+"\n")
	assert.True(strings.HasSuffix(out.String(), "Goodbye\n"))
	assert.NotContains(out.String(), "never")
}

func Test_decodeCompiled_Rejects(t *testing.T) {
	g := grammar.MustParse(`S -> a ;`)
	good, err := encodeCompiled(g)
	require.NoError(t, err)

	testCases := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "wrong magic", data: append(rezi.EncString("TUNA"), good[len(rezi.EncString(compiledMagic)):]...)},
		{name: "wrong version", data: append(append(rezi.EncString(compiledMagic), rezi.EncInt(version.BinaryFormat+1)...), good[len(rezi.EncString(compiledMagic))+len(rezi.EncInt(version.BinaryFormat)):]...)},
		{name: "truncated", data: good[:len(good)-2]},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeCompiled(tc.data)
			assert.Error(t, err)
		})
	}

	decoded, err := decodeCompiled(good)
	assert.NoError(t, err)
	assert.True(t, g.Equal(decoded))
}
