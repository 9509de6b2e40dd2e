// Package config has functions for loading grammar definition files, a
// TOML-based format that gives the tokens of a language and the rules of its
// grammar together so a complete front end can be built from one file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"
)

const (
	// FormatName is the value the 'format' key of every grammar definition
	// file must have.
	FormatName = "GROK"

	// TypeGrammar is the value the 'type' key of a grammar definition file
	// must have.
	TypeGrammar = "GRAMMAR"
)

const (
	LexerRegex = "regex"
	LexerDFA   = "dfa"
)

var (
	// ErrUnknownKey is the error returned when a definition file has a key
	// that is not part of the format.
	ErrUnknownKey = errors.New("unknown key")

	// ErrUnknownTransform is the error returned when a definition file names a
	// grammar transform that does not exist.
	ErrUnknownTransform = errors.New("unknown transform")

	// ErrNoTokens is the error returned when a definition file is read
	// successfully but defines no tokens.
	ErrNoTokens = errors.New("does not define any tokens")
)

var log = commonlog.GetLogger("grok.config")

// FileInfo contains the essential information all grammar definition files
// must contain. It can be obtained from a file by reading it into memory and
// calling ScanFileInfo on the bytes.
type FileInfo struct {
	Format string `toml:"format"`
	Type   string `toml:"type"`
}

// TokenDef is a single lexer pattern.
type TokenDef struct {
	// Name is the terminal the pattern produces. Several TokenDefs may share
	// a Name.
	Name string

	// Pattern is the regular expression that matches the token.
	Pattern string

	// Discard is whether text matching the pattern is skipped instead of
	// producing a token, as is done for whitespace and comments.
	Discard bool
}

// Definition is the contents of a grammar definition file.
type Definition struct {
	// Start is the start symbol. If empty, the nonterminal of the first rule
	// is used.
	Start string

	// FollowFixedPoint is whether FOLLOW sets are computed by repeating until
	// nothing changes rather than in a single pass.
	FollowFixedPoint bool

	// LexerKind is which lexer backend to use, LexerRegex or LexerDFA.
	LexerKind string

	// Transforms are the names of the grammar transforms to apply after the
	// rules are read, in order.
	Transforms []string

	// Tokens are the lexer patterns in priority order.
	Tokens []TokenDef

	// Rules is the text of the grammar rules.
	Rules string
}

// Load loads a grammar definition from the file at path.
func Load(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, err
	}

	def, err := Parse(data)
	if err != nil {
		return def, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("loaded grammar definition from %s", path)
	return def, nil
}

// Parse reads a grammar definition from the given bytes and checks it.
func Parse(data []byte) (Definition, error) {
	info, err := ScanFileInfo(data)
	if err != nil {
		return Definition{}, err
	}
	if strings.ToUpper(info.Format) != FormatName {
		return Definition{}, fmt.Errorf("in header: 'format' key must exist and be set to '%s'", FormatName)
	}
	if strings.ToUpper(info.Type) != TypeGrammar {
		return Definition{}, fmt.Errorf("in header: 'type' must exist and be set to '%s'", TypeGrammar)
	}

	var top topLevelDefinition
	md, err := toml.Decode(string(data), &top)
	if err != nil {
		return Definition{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i := range undecoded {
			keys[i] = undecoded[i].String()
		}
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}

	return top.toDefinition()
}

// ScanFileInfo takes the given data bytes and attempts to read the common
// header info from it. The bytes are read up to the first instance of a table
// definition header and those bytes are parsed for the info. If there is an
// error reading the info, returns a non-nil error.
func ScanFileInfo(data []byte) (FileInfo, error) {
	// only run the toml parser up to the end of the top-lev table
	var topLevelEnd int = -1
	onNewLine := true
	for b := range data {
		if onNewLine {
			if data[b] == '[' {
				topLevelEnd = b
				break
			}
		}

		if data[b] == '\n' {
			onNewLine = true
		} else if !unicode.IsSpace(rune(data[b])) {
			onNewLine = false
		}
	}

	scanData := data
	if topLevelEnd != -1 {
		scanData = data[:topLevelEnd]
	}

	var info FileInfo
	_, err := toml.Decode(string(scanData), &info)
	return info, err
}

// Terminals returns the names of every token that is not discarded, in the
// order they are first defined.
func (d Definition) Terminals() []string {
	var names []string
	seen := map[string]bool{}
	for _, tok := range d.Tokens {
		if tok.Discard || seen[tok.Name] {
			continue
		}
		names = append(names, tok.Name)
		seen[tok.Name] = true
	}
	return names
}
