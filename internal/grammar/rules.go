package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/grok/internal/grokerrors"
)

type parsedRule struct {
	nonterminal  string
	alternatives [][]string
}

// ParseRules creates a Grammar from rules written one per nonterminal in the
// form:
//
//	S -> A b | c ;
//	A -> a A | ε ;
//
// Symbols are separated by whitespace and "ε" stands for the epsilon
// derivation. A symbol is a nonterminal if it appears on the left side of some
// rule and a terminal otherwise; terminals are ordered by first appearance.
// The nonterminal of the first rule is the start symbol.
func ParseRules(text string, opts ...Option) (*Grammar, error) {
	rules, err := parseRuleText(text)
	if err != nil {
		return nil, err
	}

	lhs := map[string]bool{}
	for _, r := range rules {
		lhs[r.nonterminal] = true
	}

	var terminals []string
	seen := map[string]bool{}
	for _, r := range rules {
		for _, alt := range r.alternatives {
			for _, sym := range alt {
				if sym != "" && !lhs[sym] && !seen[sym] {
					terminals = append(terminals, sym)
					seen[sym] = true
				}
			}
		}
	}

	return buildParsed(New(terminals, opts...), rules)
}

// ParseRulesWithTerminals is ParseRules but with the terminal set given
// explicitly. Any symbol in the rules that is not one of terminals is a
// nonterminal; the returned grammar is validated so that each of those has a
// rule.
func ParseRulesWithTerminals(terminals []string, text string, opts ...Option) (*Grammar, error) {
	rules, err := parseRuleText(text)
	if err != nil {
		return nil, err
	}

	g, err := buildParsed(New(terminals, opts...), rules)
	if err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// MustParse is ParseRules but panics on error. It is intended for grammars
// written in code.
func MustParse(text string, opts ...Option) *Grammar {
	g, err := ParseRules(text, opts...)
	if err != nil {
		panic(err.Error())
	}
	return g
}

func buildParsed(g *Grammar, rules []parsedRule) (*Grammar, error) {
	for i, r := range rules {
		if g.IsTerminal(r.nonterminal) {
			return nil, grokerrors.Structuref("rule %d: %q is a terminal and cannot have productions", i+1, r.nonterminal)
		}
		for _, alt := range r.alternatives {
			g.Prod(r.nonterminal, alt, i == 0)
		}
	}
	return g, nil
}

func parseRuleText(text string) ([]parsedRule, error) {
	var rules []parsedRule
	for _, chunk := range strings.Split(text, ";") {
		if strings.TrimSpace(chunk) == "" {
			continue
		}

		r, err := parseRule(chunk)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}

	if len(rules) == 0 {
		return nil, grokerrors.Structuref("no rules given")
	}
	return rules, nil
}

// parseRule parses a rule from a string like "S -> X | Y".
func parseRule(r string) (parsedRule, error) {
	sides := strings.Split(r, "->")
	if len(sides) != 2 {
		return parsedRule{}, fmt.Errorf("not a rule of form 'NONTERM -> SYMBOL SYMBOL | SYMBOL ...': %q", strings.TrimSpace(r))
	}

	nonterminal := strings.TrimSpace(sides[0])
	if nonterminal == "" {
		return parsedRule{}, fmt.Errorf("empty nonterminal name not allowed for production rule")
	}
	if len(strings.Fields(nonterminal)) != 1 {
		return parsedRule{}, fmt.Errorf("invalid nonterminal name %q; must not contain whitespace", nonterminal)
	}

	parsed := parsedRule{nonterminal: nonterminal}
	for _, alt := range strings.Split(sides[1], "|") {
		symbols := strings.Fields(alt)
		if len(symbols) == 0 {
			return parsedRule{}, fmt.Errorf("%s: empty alternative; use ε for an epsilon derivation", nonterminal)
		}

		var derivation []string
		for _, sym := range symbols {
			if sym == "ε" {
				if len(symbols) != 1 {
					return parsedRule{}, fmt.Errorf("%s: ε must be the only symbol in its alternative", nonterminal)
				}
				derivation = []string{""}
				break
			}
			derivation = append(derivation, sym)
		}
		parsed.alternatives = append(parsed.alternatives, derivation)
	}

	return parsed, nil
}
