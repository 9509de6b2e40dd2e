package config

import (
	"fmt"
	"strings"
)

// topLevelDefinition is the top-level structure containing all keys in a
// complete grammar definition file.
type topLevelDefinition struct {
	Format           string   `toml:"format"`
	Type             string   `toml:"type"`
	Start            string   `toml:"start"`
	FollowFixedPoint bool     `toml:"follow_fixed_point"`
	Lexer            string   `toml:"lexer"`
	Transforms       []string `toml:"transforms"`
	Tokens           []token  `toml:"token"`
	Rules            rules    `toml:"rules"`
}

type token struct {
	Name    string `toml:"name"`
	Pattern string `toml:"pattern"`
	Discard bool   `toml:"discard"`
}

func (tt token) toTokenDef() TokenDef {
	return TokenDef{
		Name:    tt.Name,
		Pattern: tt.Pattern,
		Discard: tt.Discard,
	}
}

type rules struct {
	Text string `toml:"text"`
}

func (top topLevelDefinition) toDefinition() (Definition, error) {
	def := Definition{
		Start:            top.Start,
		FollowFixedPoint: top.FollowFixedPoint,
		LexerKind:        strings.ToLower(top.Lexer),
		Transforms:       make([]string, len(top.Transforms)),
		Tokens:           make([]TokenDef, len(top.Tokens)),
		Rules:            top.Rules.Text,
	}

	switch def.LexerKind {
	case "":
		def.LexerKind = LexerRegex
	case LexerRegex, LexerDFA:
	default:
		return def, fmt.Errorf("'lexer' must be either %q or %q, not %q", LexerRegex, LexerDFA, top.Lexer)
	}

	if len(top.Tokens) == 0 {
		return def, ErrNoTokens
	}
	for i := range top.Tokens {
		if top.Tokens[i].Name == "" {
			return def, fmt.Errorf("token %d: 'name' must be set", i+1)
		}
		if top.Tokens[i].Pattern == "" {
			return def, fmt.Errorf("token %d (%s): 'pattern' must be set", i+1, top.Tokens[i].Name)
		}
		def.Tokens[i] = top.Tokens[i].toTokenDef()
	}

	for i := range top.Transforms {
		name := strings.ToLower(top.Transforms[i])
		if _, ok := transforms[name]; !ok {
			return def, fmt.Errorf("transform %d: %w %q", i+1, ErrUnknownTransform, top.Transforms[i])
		}
		def.Transforms[i] = name
	}

	if strings.TrimSpace(def.Rules) == "" {
		return def, fmt.Errorf("in [rules]: 'text' must contain at least one rule")
	}

	return def, nil
}
