package grokerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_SyntaxError(t *testing.T) {
	testCases := []struct {
		name          string
		err           error
		expectKind    error
		expectMessage string
		expectFull    string
	}{
		{
			name:          "lex error",
			err:           Lex(`no pattern matches '$'`, "a + $", 1, 5, 4),
			expectKind:    ErrLex,
			expectMessage: `lexing error: around line 1, char 5: no pattern matches '$'`,
			expectFull:    "a + $\n    ^\nlexing error: around line 1, char 5: no pattern matches '$'",
		},
		{
			name:          "parse error without position",
			err:           Parse("input ended", "", "EOF0", "", "", 0, 0, 0),
			expectKind:    ErrParse,
			expectMessage: "syntax error: input ended",
			expectFull:    "syntax error: input ended",
		},
		{
			name:          "parse error at first char",
			err:           Parse("unexpected", ")", "+", "+", "+ a", 1, 1, 0),
			expectKind:    ErrParse,
			expectMessage: "syntax error: around line 1, char 1: unexpected",
			expectFull:    "+ a\n^\nsyntax error: around line 1, char 1: unexpected",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.ErrorIs(tc.err, tc.expectKind)
			assert.Equal(tc.expectMessage, tc.err.Error())

			var synErr *SyntaxError
			if assert.True(errors.As(tc.err, &synErr)) {
				assert.Equal(tc.expectFull, synErr.FullMessage())
			}
		})
	}
}

func Test_GrammarError(t *testing.T) {
	testCases := []struct {
		name          string
		err           error
		expectKind    error
		expectSymbol  string
		expectMessage string
	}{
		{
			name:          "left recursive",
			err:           LeftRecursive("E"),
			expectKind:    ErrLeftRecursive,
			expectSymbol:  "E",
			expectMessage: "grammar is left-recursive: FIRST(E) cannot be computed until left recursion is eliminated",
		},
		{
			name:          "undeclared",
			err:           Undeclared("Q"),
			expectKind:    ErrUndeclared,
			expectSymbol:  "Q",
			expectMessage: `undeclared nonterminal: no production defined for "Q"`,
		},
		{
			name:          "structure",
			err:           Structuref("no rules defined in %s", "grammar"),
			expectKind:    ErrGrammarStructure,
			expectMessage: "no rules defined in grammar",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			wrapped := fmt.Errorf("building table: %w", tc.err)

			assert.ErrorIs(wrapped, ErrGrammarStructure)
			assert.ErrorIs(wrapped, tc.expectKind)
			assert.NotErrorIs(wrapped, ErrParse)
			assert.Equal(tc.expectMessage, tc.err.Error())

			var gErr *GrammarError
			if assert.True(errors.As(wrapped, &gErr)) {
				assert.Equal(tc.expectSymbol, gErr.Symbol())
			}
		})
	}
}

func Test_NameExhausted(t *testing.T) {
	err := NameExhausted("S")

	assert.ErrorIs(t, err, ErrNameExhausted)
	assert.Equal(t, `could not find a non-conflicting symbol name from base "S"`, err.Error())
}
