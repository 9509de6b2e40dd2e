package config

import (
	"fmt"

	"github.com/dekarrin/grok/internal/grammar"
	"github.com/dekarrin/grok/internal/lex"
	"github.com/dekarrin/grok/internal/util"
)

// transforms maps the names usable in the 'transforms' key to the grammar
// operation each one runs.
var transforms = map[string]func(*grammar.Grammar) *grammar.Grammar{
	"eliminate-null-productions":    (*grammar.Grammar).EliminateNullProductions,
	"eliminate-unit-productions":    (*grammar.Grammar).EliminateUnitProductions,
	"eliminate-cycles":              (*grammar.Grammar).EliminateCycles,
	"reduce-bottom-up":              (*grammar.Grammar).ReduceBottomUp,
	"reduce-top-down":               (*grammar.Grammar).ReduceTopDown,
	"eliminate-useless-productions": (*grammar.Grammar).EliminateUselessProductions,
	"abstractify-start-symbol":      (*grammar.Grammar).AbstractifyStartSymbol,
	"isolate-terminals":             (*grammar.Grammar).IsolateTerminals,
	"reduce-rules-to-pairs":         (*grammar.Grammar).ReduceRulesToPairs,
	"chomsky-normal-form":           (*grammar.Grammar).ToChomskyNormalForm,
	"eliminate-left-recursion":      (*grammar.Grammar).EliminateLeftRecursion,
	"left-factor":                   (*grammar.Grammar).LeftFactor,
}

// TransformNames returns the name of every transform that a definition file
// may list.
func TransformNames() []string {
	return util.OrderedKeys(transforms)
}

// Lexer builds the lexer the definition describes.
func (d Definition) Lexer() (lex.Tokenizer, error) {
	var lx lex.Tokenizer
	if d.LexerKind == LexerDFA {
		lx = lex.NewDFALexer()
	} else {
		lx = lex.New()
	}

	for i, tok := range d.Tokens {
		if err := lx.Lex(tok.Name, tok.Pattern, !tok.Discard); err != nil {
			return nil, fmt.Errorf("token %d: %w", i+1, err)
		}
	}

	if dfa, ok := lx.(*lex.DFALexer); ok {
		if err := dfa.Compile(); err != nil {
			return nil, err
		}
	}
	return lx, nil
}

// Grammar builds the grammar the definition describes and applies its
// transforms in order. The terminals of the grammar are the names of the
// tokens that are not discarded. Any opts are applied after the ones the
// definition itself sets.
func (d Definition) Grammar(opts ...grammar.Option) (*grammar.Grammar, error) {
	allOpts := append([]grammar.Option{grammar.WithFollowFixedPoint(d.FollowFixedPoint)}, opts...)

	g, err := grammar.ParseRulesWithTerminals(d.Terminals(), d.Rules, allOpts...)
	if err != nil {
		return nil, fmt.Errorf("in [rules]: %w", err)
	}

	if d.Start != "" && d.Start != g.StartSymbol() {
		g.SetStart(d.Start)
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("'start': %w", err)
		}
	}

	for _, name := range d.Transforms {
		xform, ok := transforms[name]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownTransform, name)
		}
		g = xform(g)
		log.Debugf("applied transform %s", name)
	}

	return g, nil
}
