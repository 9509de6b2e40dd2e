package lex

import (
	"errors"
	"fmt"

	"github.com/dekarrin/grok/internal/grokerrors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// DFALexer is a Tokenizer that compiles all of its patterns into a single DFA
// with lexmachine. Patterns use lexmachine's regular expression syntax, which
// is smaller than that of the regexp package. The DFA is built the first time
// it is needed and reused until another pattern is added.
type DFALexer struct {
	patterns []pattern
	variants map[string]int
	names    []string

	compiled *lexmachine.Lexer
}

var _ Tokenizer = (*DFALexer)(nil)

// NewDFALexer returns a DFALexer with no patterns.
func NewDFALexer() *DFALexer {
	return &DFALexer{variants: map[string]int{}}
}

func (dl *DFALexer) Lex(name, pat string, producesTokens bool) error {
	if name == "" {
		return fmt.Errorf("pattern %q has an empty terminal name", pat)
	}

	variant, seen := dl.variants[name]
	if !seen {
		dl.names = append(dl.names, name)
	}
	dl.variants[name] = variant + 1

	dl.patterns = append(dl.patterns, pattern{
		name:     name,
		src:      pat,
		variant:  variant,
		produces: producesTokens,
	})
	dl.compiled = nil
	log.Debugf("registered DFA pattern %d for %q: %s", variant, name, pat)
	return nil
}

func (dl *DFALexer) Terminals() []string {
	names := make([]string, len(dl.names))
	copy(names, dl.names)
	return names
}

// Compile builds the DFA for the current patterns. It is called by Tokenize
// when needed, but calling it directly gives pattern errors up front.
func (dl *DFALexer) Compile() error {
	if dl.compiled != nil {
		return nil
	}

	lexer := lexmachine.NewLexer()
	for i := range dl.patterns {
		lexer.Add([]byte(dl.patterns[i].src), dfaAction(i, dl.patterns[i].produces))
	}
	if err := lexer.Compile(); err != nil {
		log.Errorf("compiling DFA: %v", err)
		return fmt.Errorf("compiling DFA: %w", err)
	}
	dl.compiled = lexer
	return nil
}

// dfaAction returns the lexmachine action for the pattern at index idx.
// Returning a nil token makes lexmachine skip the match.
func dfaAction(idx int, produces bool) lexmachine.Action {
	if !produces {
		return func(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
			return nil, nil
		}
	}
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(idx, string(m.Bytes), m), nil
	}
}

// Tokenize returns a stream that lexes src lazily. If the DFA cannot be
// compiled, the stream gives that error on the first read.
func (dl *DFALexer) Tokenize(src string) TokenStream {
	ds := &dfaStream{
		patterns: make([]pattern, len(dl.patterns)),
		cur:      newCursor(src),
	}
	copy(ds.patterns, dl.patterns)

	if err := dl.Compile(); err != nil {
		ds.err = err
	} else if sc, err := dl.compiled.Scanner([]byte(src)); err != nil {
		ds.err = fmt.Errorf("starting DFA scanner: %w", err)
	} else {
		ds.scanner = sc
	}

	return &bufferedStream{next: ds.next}
}

type dfaStream struct {
	patterns []pattern
	scanner  *lexmachine.Scanner
	cur      *cursor
	err      error
}

func (ds *dfaStream) next() (Token, error) {
	if ds.err != nil {
		return Token{}, ds.err
	}

	tok, err, eos := ds.scanner.Next()
	if err != nil {
		var ui *machines.UnconsumedInput
		if errors.As(err, &ui) {
			ds.cur.advanceTo(ui.StartTC)
			ds.err = grokerrors.Lex(
				fmt.Sprintf("no pattern matches %s", ds.cur.unmatched()),
				ds.cur.fullLine(), ds.cur.line, ds.cur.col, ds.cur.offset,
			)
		} else {
			ds.err = fmt.Errorf("%w: %v", grokerrors.ErrLex, err)
		}
		log.Debugf("%s", ds.err)
		return Token{}, ds.err
	}
	if eos {
		ds.cur.advanceTo(len(ds.cur.src))
		return ds.cur.endToken(), nil
	}

	lmTok := tok.(*lexmachine.Token)
	p := ds.patterns[lmTok.Type]

	// skipped text between the previous token and this one still moves the
	// line and column along.
	ds.cur.advanceTo(lmTok.TC)
	out := ds.cur.token(p.name, p.variant, string(lmTok.Lexeme))
	ds.cur.advanceTo(lmTok.TC + len(lmTok.Lexeme))
	return out, nil
}
