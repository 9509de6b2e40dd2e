package lex

import (
	"fmt"
	"regexp"

	"github.com/dekarrin/grok/internal/grokerrors"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("grok.lex")

type pattern struct {
	name     string
	src      string
	variant  int
	produces bool
	re       *regexp.Regexp
}

// Lexer is a Tokenizer that tries every pattern in turn at the cursor using
// Go regular expressions. The zero value is not ready for use; call New.
type Lexer struct {
	patterns []pattern
	variants map[string]int
	names    []string
}

var _ Tokenizer = (*Lexer)(nil)

// New returns a Lexer with no patterns.
func New() *Lexer {
	return &Lexer{variants: map[string]int{}}
}

// Lex adds a pattern for the terminal called name. Patterns use the syntax of
// the regexp package and are always anchored at the cursor. Several patterns
// may share a name; the token's RuleIndex says which of them matched.
func (lx *Lexer) Lex(name, pat string, producesTokens bool) error {
	if name == "" {
		return fmt.Errorf("pattern %q has an empty terminal name", pat)
	}
	re, err := regexp.Compile("^(?:" + pat + ")")
	if err != nil {
		return fmt.Errorf("pattern for %q: %w", name, err)
	}

	variant, seen := lx.variants[name]
	if !seen {
		lx.names = append(lx.names, name)
	}
	lx.variants[name] = variant + 1

	lx.patterns = append(lx.patterns, pattern{
		name:     name,
		src:      pat,
		variant:  variant,
		produces: producesTokens,
		re:       re,
	})
	log.Debugf("registered pattern %d for %q: %s", variant, name, pat)
	return nil
}

func (lx *Lexer) Terminals() []string {
	names := make([]string, len(lx.names))
	copy(names, lx.names)
	return names
}

// Tokenize returns a stream that lexes src lazily. The patterns registered at
// the time of the call are the ones used.
func (lx *Lexer) Tokenize(src string) TokenStream {
	rs := &regexStream{
		patterns: make([]pattern, len(lx.patterns)),
		cur:      newCursor(src),
	}
	copy(rs.patterns, lx.patterns)
	return &bufferedStream{next: rs.next}
}

type regexStream struct {
	patterns []pattern
	cur      *cursor
	err      error
}

func (rs *regexStream) next() (Token, error) {
	for {
		if rs.err != nil {
			return Token{}, rs.err
		}
		if rs.cur.atEnd() {
			return rs.cur.endToken(), nil
		}

		rest := rs.cur.src[rs.cur.pos:]
		best := -1
		bestLen := 0
		for i := range rs.patterns {
			loc := rs.patterns[i].re.FindStringIndex(rest)
			if loc != nil && loc[1] > bestLen {
				best = i
				bestLen = loc[1]
			}
		}

		if best < 0 {
			rs.err = grokerrors.Lex(
				fmt.Sprintf("no pattern matches %s", rs.cur.unmatched()),
				rs.cur.fullLine(), rs.cur.line, rs.cur.col, rs.cur.offset,
			)
			log.Debugf("%s", rs.err)
			return Token{}, rs.err
		}

		p := rs.patterns[best]
		tok := rs.cur.token(p.name, p.variant, rest[:bestLen])
		rs.cur.advanceTo(rs.cur.pos + bestLen)
		if p.produces {
			return tok, nil
		}
	}
}
