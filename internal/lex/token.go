// Package lex turns source text into a lazy stream of tokens for the parser.
// Two backends are available: Lexer, which tries each registered pattern with
// the regexp package, and DFALexer, which compiles every pattern into a single
// DFA with lexmachine. Both pick the longest match at the cursor and break
// ties in favor of the pattern registered first.
package lex

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Token is one lexeme read from source text.
type Token struct {
	// Terminal is the name of the pattern that matched. It is empty for the
	// end-of-input token.
	Terminal string

	// RuleIndex is which of the patterns registered under Terminal matched,
	// counting from 0 in registration order.
	RuleIndex int

	// Line is the 1-indexed line the token starts on.
	Line int

	// Column is the 1-indexed character position within Line that the token
	// starts at.
	Column int

	// Offset is the 0-indexed character offset of the token from the start of
	// the input.
	Offset int

	// Value is the exact text that was matched.
	Value string

	// FullLine is the complete line of source that the token starts on, for
	// use in error reporting.
	FullLine string

	// EndOfInput is set only on the token returned once all input has been
	// consumed.
	EndOfInput bool
}

func (t Token) String() string {
	if t.EndOfInput {
		return fmt.Sprintf("<end of input @%d:%d>", t.Line, t.Column)
	}
	return fmt.Sprintf("<%s %q @%d:%d>", t.Terminal, t.Value, t.Line, t.Column)
}

// cursor tracks a position in source text. pos is a byte index into src;
// everything reported outward counts characters.
type cursor struct {
	src    string
	pos    int
	line   int
	col    int
	offset int

	// lineStart is the byte index where the current line begins. curLine holds
	// the text of that line once fullLine has found it, and is only valid while
	// curLineStart == lineStart.
	lineStart    int
	curLine      string
	curLineStart int
}

func newCursor(src string) *cursor {
	return &cursor{src: src, line: 1, col: 1, curLineStart: -1}
}

// advanceTo moves the cursor forward to byte index to, updating line and
// column for every character passed over.
func (c *cursor) advanceTo(to int) {
	for c.pos < to {
		r, size := utf8.DecodeRuneInString(c.src[c.pos:])
		c.pos += size
		c.offset++
		if r == '\n' {
			c.line++
			c.col = 1
			c.lineStart = c.pos
		} else {
			c.col++
		}
	}
}

func (c *cursor) atEnd() bool {
	return c.pos >= len(c.src)
}

// fullLine returns the line of source containing the cursor, without its
// line terminator. Each line is only searched for once.
func (c *cursor) fullLine() string {
	if c.curLineStart == c.lineStart {
		return c.curLine
	}

	end := strings.IndexByte(c.src[c.lineStart:], '\n')
	if end < 0 {
		end = len(c.src)
	} else {
		end += c.lineStart
	}
	c.curLine = strings.TrimSuffix(c.src[c.lineStart:end], "\r")
	c.curLineStart = c.lineStart
	return c.curLine
}

// token returns a token starting at the cursor's current position.
func (c *cursor) token(terminal string, ruleIndex int, value string) Token {
	return Token{
		Terminal:  terminal,
		RuleIndex: ruleIndex,
		Line:      c.line,
		Column:    c.col,
		Offset:    c.offset,
		Value:     value,
		FullLine:  c.fullLine(),
	}
}

func (c *cursor) endToken() Token {
	return Token{
		Line:       c.line,
		Column:     c.col,
		Offset:     c.offset,
		FullLine:   c.fullLine(),
		EndOfInput: true,
	}
}

// unmatched returns a description of the text at the cursor for use in error
// messages.
func (c *cursor) unmatched() string {
	r, _ := utf8.DecodeRuneInString(c.src[c.pos:])
	return fmt.Sprintf("%q", r)
}
