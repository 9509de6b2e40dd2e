package lex

import "iter"

// TokenStream is a stream of tokens read from source text. Tokens are lexed
// one at a time as they are asked for, so a stream can only be read once.
//
// Once the input is used up, Next and Peek return a token with EndOfInput set
// on every call. Once a lexing error occurs, every later call returns that
// same error.
type TokenStream interface {
	// Next returns the next token in the stream and advances the stream by one
	// token.
	Next() (Token, error)

	// Peek returns the next token in the stream without advancing the stream.
	Peek() (Token, error)

	// HasNext returns whether the stream has a token other than the
	// end-of-input token to give. It is false once an error has occured.
	HasNext() bool
}

// Tokenizer is a set of named patterns that can be applied to source text.
type Tokenizer interface {
	// Lex registers a pattern for the terminal called name. If producesTokens
	// is false, text matching the pattern is skipped over without producing a
	// token.
	Lex(name, pattern string, producesTokens bool) error

	// Terminals returns the name of every registered pattern in the order they
	// were first registered, without duplicates.
	Terminals() []string

	// Tokenize returns a stream that lexes src.
	Tokenize(src string) TokenStream
}

// All returns an iterator over the tokens of stream, not including the
// end-of-input token. If an error occurs, it is given with a zero Token as the
// final pair.
func All(stream TokenStream) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		for {
			tok, err := stream.Next()
			if err != nil {
				yield(Token{}, err)
				return
			}
			if tok.EndOfInput {
				return
			}
			if !yield(tok, nil) {
				return
			}
		}
	}
}

// Collect reads every token from stream, not including the end-of-input
// token.
func Collect(stream TokenStream) ([]Token, error) {
	var toks []Token
	for tok, err := range All(stream) {
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
	}
	return toks, nil
}

// bufferedStream implements Peek and HasNext on top of a next function that
// lexes a single token.
type bufferedStream struct {
	next func() (Token, error)

	peeked  bool
	peekTok Token
	peekErr error
}

func (bs *bufferedStream) Next() (Token, error) {
	if bs.peeked {
		bs.peeked = false
		return bs.peekTok, bs.peekErr
	}
	return bs.next()
}

func (bs *bufferedStream) Peek() (Token, error) {
	if !bs.peeked {
		bs.peekTok, bs.peekErr = bs.next()
		bs.peeked = true
	}
	return bs.peekTok, bs.peekErr
}

func (bs *bufferedStream) HasNext() bool {
	tok, err := bs.Peek()
	return err == nil && !tok.EndOfInput
}
