package grammar

import (
	"fmt"

	"github.com/dekarrin/rezi"
	"github.com/tliron/commonlog"

	"github.com/dekarrin/grok/internal/util"
)

// This file contains the binary encoding of grammars, used for caching a
// grammar once all transformations have been applied to it.

func (s Symbol) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, rezi.EncInt(int(s.Kind))...)
	data = append(data, rezi.EncString(s.Name)...)

	return data, nil
}

func (s *Symbol) UnmarshalBinary(data []byte) error {
	kind, bytesRead, err := rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("kind: %w", err)
	}
	data = data[bytesRead:]

	if kind < int(KindTerminal) || kind > int(KindEOF) {
		return fmt.Errorf("kind: unknown symbol kind %d", kind)
	}
	s.Kind = SymbolKind(kind)

	s.Name, _, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("name: %w", err)
	}

	return nil
}

func encStrings(sl []string) []byte {
	data := rezi.EncInt(len(sl))
	for _, s := range sl {
		data = append(data, rezi.EncString(s)...)
	}
	return data
}

// checkCount rejects a decoded element count that is negative or larger than
// the number of bytes left, as every element takes at least one byte.
func checkCount(count int, data []byte) error {
	if count < 0 {
		return fmt.Errorf("count < 0")
	}
	if count > len(data) {
		return fmt.Errorf("count of %d is more than the %d bytes left", count, len(data))
	}
	return nil
}

func decStrings(data []byte) ([]string, int, error) {
	count, n, err := rezi.DecInt(data)
	if err != nil {
		return nil, 0, err
	}
	data = data[n:]
	if err := checkCount(count, data); err != nil {
		return nil, 0, err
	}
	total := n

	sl := make([]string, 0, count)
	for i := 0; i < count; i++ {
		s, n, err := rezi.DecString(data)
		if err != nil {
			return nil, 0, fmt.Errorf("string %d: %w", i, err)
		}
		sl = append(sl, s)
		data = data[n:]
		total += n
	}
	return sl, total, nil
}

// MarshalBinary encodes the grammar's terminals, productions, start symbol,
// generated names and options. The logger is not encoded.
func (g *Grammar) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, encStrings(g.terminals)...)
	data = append(data, rezi.EncString(g.start)...)
	data = append(data, rezi.EncString(g.eof)...)
	data = append(data, rezi.EncBool(g.followFixed)...)
	data = append(data, encStrings(g.used.Sorted(func(a, b string) bool { return a < b }))...)

	data = append(data, rezi.EncInt(len(g.prods.prods))...)
	for _, p := range g.prods.prods {
		data = append(data, rezi.EncString(p.Nonterminal)...)
		data = append(data, rezi.EncInt(len(p.Rules))...)
		for _, r := range p.Rules {
			data = append(data, rezi.EncInt(len(r.Derivation))...)
			for _, sym := range r.Derivation {
				data = append(data, rezi.EncBinary(sym)...)
			}
		}
	}

	return data, nil
}

// UnmarshalBinary replaces g with the grammar encoded in data. g logs to the
// "grok.grammar" logger afterwards unless it already had a logger.
func (g *Grammar) UnmarshalBinary(data []byte) error {
	var err error
	var n int

	decoded := &Grammar{log: g.log}
	if decoded.log == nil {
		decoded.log = commonlog.GetLogger("grok.grammar")
	}

	decoded.terminals, n, err = decStrings(data)
	if err != nil {
		return fmt.Errorf("terminals: %w", err)
	}
	data = data[n:]
	decoded.termSet = util.KeySetOf(decoded.terminals)

	decoded.start, n, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("start symbol: %w", err)
	}
	data = data[n:]

	decoded.eof, n, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("end-of-input symbol: %w", err)
	}
	data = data[n:]

	decoded.followFixed, n, err = rezi.DecBool(data)
	if err != nil {
		return fmt.Errorf("options: %w", err)
	}
	data = data[n:]

	used, n, err := decStrings(data)
	if err != nil {
		return fmt.Errorf("used names: %w", err)
	}
	data = data[n:]
	decoded.used = util.KeySetOf(used)

	prodCount, n, err := rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("production count: %w", err)
	}
	data = data[n:]
	if err := checkCount(prodCount, data); err != nil {
		return fmt.Errorf("production count: %w", err)
	}

	decoded.prods = NewProductionSet(decoded.log)
	for i := 0; i < prodCount; i++ {
		nt, n, err := rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("production %d: %w", i, err)
		}
		data = data[n:]

		ruleCount, n, err := rezi.DecInt(data)
		if err != nil {
			return fmt.Errorf("production %s: rule count: %w", nt, err)
		}
		data = data[n:]
		if err := checkCount(ruleCount, data); err != nil {
			return fmt.Errorf("production %s: rule count: %w", nt, err)
		}

		for j := 0; j < ruleCount; j++ {
			symCount, n, err := rezi.DecInt(data)
			if err != nil {
				return fmt.Errorf("production %s: rule %d: %w", nt, j, err)
			}
			data = data[n:]
			if symCount < 1 {
				return fmt.Errorf("production %s: rule %d: empty derivation", nt, j)
			}
			if err := checkCount(symCount, data); err != nil {
				return fmt.Errorf("production %s: rule %d: %w", nt, j, err)
			}

			derivation := make([]Symbol, symCount)
			for k := range derivation {
				n, err := rezi.DecBinary(data, &derivation[k])
				if err != nil {
					return fmt.Errorf("production %s: rule %d: symbol %d: %w", nt, j, k, err)
				}
				data = data[n:]
			}
			decoded.prods.Add(nt, derivation)
		}
	}

	*g = *decoded
	return nil
}
