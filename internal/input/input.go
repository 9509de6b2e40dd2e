// Package input reads lines of source text for the interactive parser, either
// straight from a stream or from a terminal through readline.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// DefaultPrompt is the prompt shown by an InteractiveReader unless another is
// set.
const DefaultPrompt = "grok> "

// LineReader gives one line of input at a time.
type LineReader interface {
	// ReadLine blocks until a line is read. Leading and trailing whitespace is
	// removed. At end of input it returns "" and io.EOF.
	ReadLine() (string, error)

	// AllowBlank sets whether ReadLine may return a blank line. By default it
	// skips them.
	AllowBlank(allow bool)

	// Close releases the reader's resources.
	Close() error
}

// DirectReader implements LineReader and reads lines from any generic input
// stream directly. It can be used generically with any io.Reader but does not
// sanitize the input of control and escape sequences.
//
// DirectReader should not be used directly; instead, create one with
// [NewDirectReader].
type DirectReader struct {
	r             *bufio.Reader
	blanksAllowed bool
}

// InteractiveReader implements LineReader and reads lines from stdin using a
// go implementation of the GNU Readline library. This keeps input clear of all
// typing and editing escape sequences and enables the use of line history.
// This should in general only be used when directly connected to a TTY.
//
// InteractiveReader should not be used directly; instead, create one with
// [NewInteractiveReader].
type InteractiveReader struct {
	rl            *readline.Instance
	blanksAllowed bool
	prompt        string
}

// NewDirectReader creates a new DirectReader that buffers reads from r.
func NewDirectReader(r io.Reader) *DirectReader {
	return &DirectReader{
		r: bufio.NewReader(r),
	}
}

// NewInteractiveReader creates a new InteractiveReader and initializes
// readline. If historyFile is not empty, entered lines are saved to it and
// loaded from it on the next run. The returned InteractiveReader must have
// Close() called on it before disposal to properly teardown readline
// resources.
func NewInteractiveReader(historyFile string) (*InteractiveReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            DefaultPrompt,
		HistoryFile:       historyFile,
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	return &InteractiveReader{
		rl:     rl,
		prompt: DefaultPrompt,
	}, nil
}

// Close does nothing; DirectReader does not own the stream it reads.
func (dr *DirectReader) Close() error {
	return nil
}

// Close cleans up readline resources.
func (ir *InteractiveReader) Close() error {
	return ir.rl.Close()
}

func (dr *DirectReader) ReadLine() (string, error) {
	return readNonBlank(func() (string, error) {
		return dr.r.ReadString('\n')
	}, dr.blanksAllowed)
}

// ReadLine reads the next line from the terminal. Interrupting a line with
// Ctrl-C discards it and starts a new one.
func (ir *InteractiveReader) ReadLine() (string, error) {
	return readNonBlank(func() (string, error) {
		line, err := ir.rl.Readline()
		if err == readline.ErrInterrupt {
			return "\n", nil
		}
		return line, err
	}, ir.blanksAllowed)
}

// readNonBlank calls next until it gives a line with non-space characters, or
// any line if blanks is set.
func readNonBlank(next func() (string, error), blanks bool) (string, error) {
	for {
		line, err := next()
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)
		if line != "" || blanks {
			return line, nil
		}
	}
}

// AllowBlank sets whether blank lines are returned. By default they are not.
func (dr *DirectReader) AllowBlank(allow bool) {
	dr.blanksAllowed = allow
}

// AllowBlank sets whether blank lines are returned. By default they are not.
func (ir *InteractiveReader) AllowBlank(allow bool) {
	ir.blanksAllowed = allow
}

// SetPrompt updates the prompt to the given text.
func (ir *InteractiveReader) SetPrompt(p string) {
	ir.prompt = p
	ir.rl.SetPrompt(p)
}

// Prompt gets the current prompt.
func (ir *InteractiveReader) Prompt() string {
	return ir.prompt
}
