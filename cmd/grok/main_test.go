package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/grok/internal/grokerrors"
)

func Test_exitCodeFor(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		expect int
	}{
		{name: "lex error", err: grokerrors.Lex("no pattern matches", "a $", 1, 3, 2), expect: ExitInputError},
		{name: "parse error", err: grokerrors.Parse("unexpected", "", "+", "+", "+", 1, 1, 0), expect: ExitInputError},
		{name: "wrapped usage error", err: fmt.Errorf("repl: %w", usageError{"bad"}), expect: ExitUsageError},
		{name: "grammar error", err: grokerrors.LeftRecursive("E"), expect: ExitInitError},
		{name: "other", err: errors.New("disk on fire"), expect: ExitInitError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, exitCodeFor(tc.err))
		})
	}
}

func Test_RootCmd_ArgumentCount(t *testing.T) {
	assert := assert.New(t)
	cmd := newRootCmd()
	cmd.SetArgs([]string{"bnf"})

	err := cmd.Execute()

	var usageErr usageError
	assert.True(errors.As(err, &usageErr))
}

func Test_sourceFlags_source(t *testing.T) {
	assert := assert.New(t)
	var sf sourceFlags

	src, err := sf.source([]string{"a", "+", "b"})
	assert.NoError(err)
	assert.Equal("a + b", src)

	_, err = sf.source(nil)
	assert.Error(err)

	sf.file = "some-file"
	_, err = sf.source([]string{"a"})
	assert.Error(err)
}
