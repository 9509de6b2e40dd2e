// Package parse runs a predictive LL(1) parse over a token stream, building a
// parse tree.
package parse

import (
	"fmt"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/tliron/commonlog"

	"github.com/dekarrin/grok/internal/grammar"
	"github.com/dekarrin/grok/internal/grokerrors"
	"github.com/dekarrin/grok/internal/lex"
)

var log = commonlog.GetLogger("grok.parse")

// LL1Parser is a table-driven top-down parser for a single grammar.
type LL1Parser struct {
	table *grammar.LL1Table
	g     *grammar.Grammar
}

// GenerateLL1Parser generates a parser for LL1 grammar g.
//
// The returned parser parses the input using LL(k) parsing rules on the
// context-free Grammar g (k=1). The grammar must already be LL(1); it will not
// be forced to it. If it is not, the first rule recorded in each conflicting
// table cell is the one the parser uses.
func GenerateLL1Parser(g *grammar.Grammar) (*LL1Parser, error) {
	M, err := g.LLParseTable()
	if err != nil {
		return nil, fmt.Errorf("building parse table: %w", err)
	}
	for _, c := range M.Conflicts() {
		log.Debugf("conflict in parse table: %s", c)
	}
	return &LL1Parser{table: M, g: M.Grammar()}, nil
}

// Grammar returns the grammar the parser was generated from.
func (ll1 *LL1Parser) Grammar() *grammar.Grammar {
	return ll1.g
}

// Table returns the parse table the parser drives from.
func (ll1 *LL1Parser) Table() *grammar.LL1Table {
	return ll1.table
}

// Parse reads tokens from stream and returns the parse tree whose root is the
// start symbol of the grammar. Lexing errors from the stream are returned as
// they are; every other failure is a syntax error naming the terminal that was
// found. Input left over once the start symbol is fully expanded is an error.
func (ll1 *LL1Parser) Parse(stream lex.TokenStream) (*Tree, error) {
	start := ll1.g.StartSymbol()
	if start == "" {
		return nil, grokerrors.Structuref("grammar has no start symbol")
	}

	pt := &Tree{Value: start}

	stack := arraystack.New()
	stack.Push(grammar.NT(start))
	ptStack := arraystack.New()
	ptStack.Push(pt)

	next, err := stream.Peek()
	if err != nil {
		return nil, err
	}

	for !stack.Empty() { /* stack is not empty */
		top, _ := stack.Peek()
		X := top.(grammar.Symbol)
		top, _ = ptStack.Peek()
		node := top.(*Tree)
		a := ll1.lookahead(next)

		if X.IsTerminal() {
			if a != X.Name {
				return nil, ll1.syntaxError(fmt.Sprintf("expected %s but found %s", X.Name, describe(next)), X.Name, next)
			}

			node.Terminal = true
			node.Source = next
			stack.Pop()
			ptStack.Pop()

			if _, err := stream.Next(); err != nil {
				return nil, err
			}
			next, err = stream.Peek()
			if err != nil {
				return nil, err
			}
			continue
		}

		alpha, ok := ll1.table.Derivation(X.Name, a)
		if !ok {
			return nil, ll1.syntaxError(fmt.Sprintf("unexpected %s while parsing %s", describe(next), X.Name), "", next)
		}
		log.Debugf("expanding %s -> %s on %s", X.Name, strings.Join(grammar.Names(alpha), " "), a)

		stack.Pop()
		ptStack.Pop()

		if len(alpha) == 1 && alpha[0].IsEpsilon() {
			continue
		}

		node.Children = make([]*Tree, len(alpha))
		for i := range alpha {
			node.Children[i] = &Tree{Value: alpha[i].Name}
		}
		for i := len(alpha) - 1; i >= 0; i-- {
			stack.Push(alpha[i])
			ptStack.Push(node.Children[i])
		}
	}

	if !next.EndOfInput {
		eof := ll1.g.EOF().Name
		return nil, ll1.syntaxError(fmt.Sprintf("expected end of input but found %s", describe(next)), eof, next)
	}

	return pt, nil
}

// lookahead gives the terminal name that tok is looked up in the table by.
func (ll1 *LL1Parser) lookahead(tok lex.Token) string {
	if tok.EndOfInput {
		return ll1.g.EOF().Name
	}
	return tok.Terminal
}

func (ll1 *LL1Parser) syntaxError(msg, expected string, tok lex.Token) error {
	err := grokerrors.Parse(msg, expected, ll1.lookahead(tok), tok.Value, tok.FullLine, tok.Line, tok.Column, tok.Offset)
	log.Debugf("%s", err)
	return err
}

func describe(tok lex.Token) string {
	if tok.EndOfInput {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", tok.Terminal, tok.Value)
}
