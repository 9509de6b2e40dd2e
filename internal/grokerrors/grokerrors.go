// Package grokerrors holds the errors returned by grok's lexer, grammar and
// parser packages. Each error wraps one of the sentinel kinds declared here so
// callers can tell them apart with errors.Is.
package grokerrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLex is the kind of every error caused by input that no lexer pattern
	// matches.
	ErrLex = errors.New("lexing error")

	// ErrParse is the kind of every error caused by a token sequence that the
	// grammar does not accept.
	ErrParse = errors.New("syntax error")

	// ErrGrammarStructure is the kind of every error caused by a grammar that
	// cannot support the requested operation.
	ErrGrammarStructure = errors.New("grammar structure error")

	// ErrLeftRecursive is returned (along with ErrGrammarStructure) when FIRST
	// sets are requested for a left-recursive grammar.
	ErrLeftRecursive = errors.New("grammar is left-recursive")

	// ErrUndeclared is returned (along with ErrGrammarStructure) when a
	// nonterminal is looked up that the grammar has no production for.
	ErrUndeclared = errors.New("undeclared nonterminal")

	// ErrNameExhausted is returned when no unused symbol name can be generated.
	ErrNameExhausted = errors.New("could not find a non-conflicting symbol name")
)

// SyntaxError is an error located in source text. Both lexing and parsing
// errors are SyntaxErrors; Unwrap gives either ErrLex or ErrParse.
type SyntaxError struct {
	kind error

	sourceLine string
	source     string

	// line that error occured on, 1-indexed.
	line int

	// position in line of error, 1-indexed.
	pos int

	// offset of the error from the start of input, 0-indexed.
	offset int

	expected string
	actual   string
	message  string
}

func (se *SyntaxError) Error() string {
	if se.line == 0 {
		return fmt.Sprintf("%s: %s", se.kind.Error(), se.message)
	}

	return fmt.Sprintf("%s: around line %d, char %d: %s", se.kind.Error(), se.line, se.pos, se.message)
}

func (se *SyntaxError) Unwrap() error {
	return se.kind
}

// Source returns the exact text of the specific source code that caused the
// issue. If no particular source was the cause (such as for unexpected EOF
// errors), this will return an empty string.
func (se *SyntaxError) Source() string {
	return se.source
}

// Line returns the line the error occured on. Lines are 1-indexed. This will
// return 0 if the line is not set.
func (se *SyntaxError) Line() int {
	return se.line
}

// Position returns the character position that the error occured on. Character
// positions are 1-indexed. This will return 0 if the character position is not
// set.
func (se *SyntaxError) Position() int {
	return se.pos
}

// Offset returns the 0-indexed character offset of the error from the start of
// the input.
func (se *SyntaxError) Offset() int {
	return se.offset
}

// Expected returns the terminal the parser wanted to see, if there was exactly
// one. It is empty for lexing errors and for errors where any of several
// terminals would have been accepted.
func (se *SyntaxError) Expected() string {
	return se.expected
}

// Actual returns the terminal that was found where the error occured.
func (se *SyntaxError) Actual() string {
	return se.actual
}

// FullMessage shows the complete message of the error string along with the
// offending line and a cursor to the problem position in a formatted way.
func (se *SyntaxError) FullMessage() string {
	errMsg := se.Error()

	if se.line != 0 && se.sourceLine != "" {
		errMsg = se.SourceLineWithCursor() + "\n" + errMsg
	}

	return errMsg
}

// SourceLineWithCursor returns the source offending code on one line and
// directly under it a cursor showing where the error occured.
//
// Returns a blank string if no source line was provided for the error (such as
// for unexpected EOF errors).
func (se *SyntaxError) SourceLineWithCursor() string {
	if se.sourceLine == "" {
		return ""
	}

	cursorLine := ""
	if se.pos > 1 {
		cursorLine = strings.Repeat(" ", se.pos-1)
	}

	return se.sourceLine + "\n" + cursorLine + "^"
}

// Lex returns a new lexing error at the given position.
func Lex(msg string, sourceLine string, line, pos, offset int) error {
	return &SyntaxError{
		kind:       ErrLex,
		message:    msg,
		sourceLine: sourceLine,
		line:       line,
		pos:        pos,
		offset:     offset,
	}
}

// Parse returns a new parsing error. expected may be empty if there is no
// single terminal that would have been valid.
func Parse(msg, expected, actual, source, sourceLine string, line, pos, offset int) error {
	return &SyntaxError{
		kind:       ErrParse,
		message:    msg,
		expected:   expected,
		actual:     actual,
		source:     source,
		sourceLine: sourceLine,
		line:       line,
		pos:        pos,
		offset:     offset,
	}
}

// GrammarError is an error in the structure of a grammar, found while running
// an operation on it.
type GrammarError struct {
	kind   error
	symbol string
	msg    string
}

func (ge *GrammarError) Error() string {
	if ge.kind == ErrGrammarStructure {
		return ge.msg
	}
	return ge.kind.Error() + ": " + ge.msg
}

// Unwrap gives both ErrGrammarStructure and the specific kind of the error.
func (ge *GrammarError) Unwrap() []error {
	if ge.kind == ErrGrammarStructure {
		return []error{ErrGrammarStructure}
	}
	return []error{ErrGrammarStructure, ge.kind}
}

// Symbol returns the symbol the error is about, if any.
func (ge *GrammarError) Symbol() string {
	return ge.symbol
}

// LeftRecursive returns an error for FIRST being computed on a nonterminal
// that is reached again while its own FIRST set is still being built.
func LeftRecursive(nonterminal string) error {
	return &GrammarError{
		kind:   ErrLeftRecursive,
		symbol: nonterminal,
		msg:    fmt.Sprintf("FIRST(%s) cannot be computed until left recursion is eliminated", nonterminal),
	}
}

// Undeclared returns an error for a lookup of a nonterminal with no production.
func Undeclared(nonterminal string) error {
	return &GrammarError{
		kind:   ErrUndeclared,
		symbol: nonterminal,
		msg:    fmt.Sprintf("no production defined for %q", nonterminal),
	}
}

// Structuref returns a general grammar structure error built from a format
// string.
func Structuref(format string, a ...any) error {
	return &GrammarError{
		kind: ErrGrammarStructure,
		msg:  fmt.Sprintf(format, a...),
	}
}

// NameExhausted returns an error for a symbol name that could not be generated
// from the given base name.
func NameExhausted(base string) error {
	return fmt.Errorf("%w from base %q", ErrNameExhausted, base)
}
