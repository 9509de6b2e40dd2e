// Package grok builds language front ends from context-free grammars. A
// Frontend pairs a lexer with an LL(1) grammar and the predictive parser
// generated from it, turning source text into parse trees.
//
// Grammars are usually written as grammar definition files (see package
// internal/config for the format), which give the tokens, the rules and the
// transforms needed to make the rules LL(1):
//
//	fe, err := grok.Load("expr.toml")
//	if err != nil {
//		return err
//	}
//	tree, err := fe.Parse("a + b * c")
package grok

import (
	"fmt"
	"os"
	"strings"

	"github.com/dekarrin/rezi"
	"github.com/tliron/commonlog"

	"github.com/dekarrin/grok/internal/config"
	"github.com/dekarrin/grok/internal/grammar"
	"github.com/dekarrin/grok/internal/lex"
	"github.com/dekarrin/grok/internal/parse"
	"github.com/dekarrin/grok/internal/util"
	"github.com/dekarrin/grok/internal/version"
)

// compiledMagic starts every compiled grammar file.
const compiledMagic = "GROKC"

var log = commonlog.GetLogger("grok")

// Frontend lexes and parses source text for a single language.
type Frontend struct {
	lexer  lex.Tokenizer
	g      *grammar.Grammar
	parser *parse.LL1Parser
}

// New creates a Frontend from a lexer and a grammar. Every terminal of g must
// be produced by some pattern of lx. The grammar is copied, so later changes
// to g do not affect the Frontend.
func New(lx lex.Tokenizer, g *grammar.Grammar) (*Frontend, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	lexed := util.KeySetOf(lx.Terminals())
	var missing []string
	for _, t := range g.Terminals() {
		if !lexed.Has(t) {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("no lexer pattern produces terminal(s) %s", strings.Join(missing, ", "))
	}

	p, err := parse.GenerateLL1Parser(g.Copy())
	if err != nil {
		return nil, err
	}
	if conflicts := p.Table().Conflicts(); len(conflicts) > 0 {
		log.Warningf("grammar is not LL(1); %d table cell(s) have more than one rule", len(conflicts))
	}

	return &Frontend{lexer: lx, g: p.Grammar(), parser: p}, nil
}

// FromDefinition creates a Frontend from a loaded grammar definition.
func FromDefinition(def config.Definition) (*Frontend, error) {
	lx, err := def.Lexer()
	if err != nil {
		return nil, err
	}
	g, err := def.Grammar()
	if err != nil {
		return nil, err
	}
	return New(lx, g)
}

// Load creates a Frontend from the grammar definition file at path.
func Load(path string) (*Frontend, error) {
	def, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return FromDefinition(def)
}

// LoadCompiled creates a Frontend that takes its lexer from the grammar
// definition file at defPath and its grammar from the compiled grammar file at
// compiledPath, as written by Compile. The rules and transforms in the
// definition file are not used.
func LoadCompiled(defPath, compiledPath string) (*Frontend, error) {
	def, err := config.Load(defPath)
	if err != nil {
		return nil, err
	}
	lx, err := def.Lexer()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(compiledPath)
	if err != nil {
		return nil, err
	}
	g, err := decodeCompiled(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", compiledPath, err)
	}

	return New(lx, g)
}

// Compile builds the grammar of the definition file at defPath, applying its
// transforms, and writes it to outPath in binary form for LoadCompiled.
func Compile(defPath, outPath string) error {
	def, err := config.Load(defPath)
	if err != nil {
		return err
	}
	g, err := def.Grammar()
	if err != nil {
		return err
	}

	data, err := encodeCompiled(g)
	if err != nil {
		return fmt.Errorf("encoding grammar: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return err
	}
	log.Infof("compiled %s to %s (%d bytes)", defPath, outPath, len(data))
	return nil
}

// encodeCompiled gives the contents of a compiled grammar file for g: a header
// naming the file format version followed by the grammar itself.
func encodeCompiled(g *grammar.Grammar) ([]byte, error) {
	gData, err := g.MarshalBinary()
	if err != nil {
		return nil, err
	}

	var data []byte
	data = append(data, rezi.EncString(compiledMagic)...)
	data = append(data, rezi.EncInt(version.BinaryFormat)...)
	data = append(data, gData...)
	return data, nil
}

func decodeCompiled(data []byte) (*grammar.Grammar, error) {
	magic, n, err := rezi.DecString(data)
	if err != nil || magic != compiledMagic {
		return nil, fmt.Errorf("not a compiled grammar file")
	}
	data = data[n:]

	formatVersion, n, err := rezi.DecInt(data)
	if err != nil {
		return nil, fmt.Errorf("format version: %w", err)
	}
	if formatVersion != version.BinaryFormat {
		return nil, fmt.Errorf("compiled grammar has format version %d; only version %d is supported", formatVersion, version.BinaryFormat)
	}
	data = data[n:]

	g := &grammar.Grammar{}
	if err := g.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return g, nil
}

// Grammar returns the grammar the Frontend parses with.
func (fe *Frontend) Grammar() *grammar.Grammar {
	return fe.g
}

// Lexer returns the lexer the Frontend tokenizes with.
func (fe *Frontend) Lexer() lex.Tokenizer {
	return fe.lexer
}

// Table returns the LL(1) parse table of the Frontend's grammar.
func (fe *Frontend) Table() *grammar.LL1Table {
	return fe.parser.Table()
}

// Tokenize returns a stream of the tokens of src.
func (fe *Frontend) Tokenize(src string) lex.TokenStream {
	return fe.lexer.Tokenize(src)
}

// Parse lexes and parses src, returning its parse tree.
func (fe *Frontend) Parse(src string) (*parse.Tree, error) {
	return fe.parser.Parse(fe.lexer.Tokenize(src))
}
