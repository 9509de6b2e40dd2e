package grok

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dekarrin/rosed"

	"github.com/dekarrin/grok/internal/grokerrors"
	"github.com/dekarrin/grok/internal/input"
	"github.com/dekarrin/grok/internal/lex"
)

const consoleOutputWidth = 80

const replHelp = `Each line entered is parsed and its parse tree is shown. Lines starting with
':' are commands instead:

  :tokens TEXT  show the tokens of TEXT without parsing it
  :bnf          show the rules of the grammar
  :table        show the LL(1) parse table
  :sets         show the FIRST and FOLLOW sets of the grammar
  :help         show this help
  :quit         leave`

// Engine contains the things needed to run a Frontend from an interactive
// shell attached to an input stream and an output stream.
type Engine struct {
	fe          *Frontend
	in          input.LineReader
	out         *bufio.Writer
	forceDirect bool
	running     bool
}

// NewEngine creates a new engine ready to parse lines read from the given
// input stream with fe and write the results to the given output stream.
//
// If nil is given for the input stream, stdin is used. If nil is given for the
// output stream, stdout is used. When both are the console and
// forceDirectInput is not set, input is read through readline, with line
// history kept in historyFile if it is not empty.
func NewEngine(inputStream io.Reader, outputStream io.Writer, fe *Frontend, forceDirectInput bool, historyFile string) (*Engine, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}

	eng := &Engine{
		fe:          fe,
		out:         bufio.NewWriter(outputStream),
		forceDirect: forceDirectInput,
	}

	useReadline := !forceDirectInput && inputStream == os.Stdin && outputStream == os.Stdout

	if useReadline {
		var err error
		eng.in, err = input.NewInteractiveReader(historyFile)
		if err != nil {
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
	} else {
		eng.in = input.NewDirectReader(inputStream)
	}

	return eng, nil
}

// Close closes all resources associated with the Engine, including any
// readline-related resources created for interactive mode.
func (eng *Engine) Close() error {
	if eng.running {
		return fmt.Errorf("cannot close a running engine")
	}

	err := eng.in.Close()
	if err != nil {
		return fmt.Errorf("close line reader: %w", err)
	}

	return nil
}

// RunUntilQuit reads lines from the input stream and parses each one until
// the :quit command is given or input ends.
func (eng *Engine) RunUntilQuit() error {
	introMsg := "grok interactive parser\n"
	if eng.forceDirect {
		introMsg += "(direct input mode)\n"
	}
	introMsg += "=======================\n"
	introMsg += "Start symbol is " + eng.fe.Grammar().StartSymbol() + "; enter :help for commands\n"

	if err := eng.write(introMsg); err != nil {
		return err
	}

	eng.running = true
	// so we dont have to remember to do this on every returned error condition
	defer func() {
		eng.running = false
	}()

	for eng.running {
		line, err := eng.in.ReadLine()
		if err == io.EOF {
			break
		} else if err != nil {
			return fmt.Errorf("get input line: %w", err)
		}

		output, quit := eng.Eval(line)
		if quit {
			eng.running = false
			break
		}
		if err := eng.write(output + "\n"); err != nil {
			return err
		}
	}

	return eng.write("Goodbye\n")
}

// Eval runs one line of input and returns what should be shown for it, along
// with whether the line asked to quit.
func (eng *Engine) Eval(line string) (output string, quit bool) {
	if !strings.HasPrefix(line, ":") {
		tree, err := eng.fe.Parse(line)
		if err != nil {
			return errorMessage(err), false
		}
		return tree.String(), false
	}

	cmd, arg, _ := strings.Cut(line[1:], " ")
	switch strings.ToLower(cmd) {
	case "q", "quit", "exit":
		return "", true
	case "h", "help":
		return replHelp, false
	case "bnf":
		return strings.TrimRight(eng.fe.Grammar().BNF(), "\n"), false
	case "table":
		return eng.fe.Table().Table(), false
	case "sets":
		tab, err := eng.fe.Grammar().FirstFollowTable()
		if err != nil {
			return errorMessage(err), false
		}
		return tab, false
	case "tokens":
		return eng.tokensOf(arg), false
	default:
		return rosed.Edit(fmt.Sprintf("unknown command %q; enter :help for the list of commands", ":"+cmd)).Wrap(consoleOutputWidth).String(), false
	}
}

func (eng *Engine) tokensOf(src string) string {
	var sb strings.Builder
	for tok, err := range lex.All(eng.fe.Tokenize(src)) {
		if err != nil {
			sb.WriteString(errorMessage(err))
			break
		}
		sb.WriteString(tok.String())
		sb.WriteRune('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

// errorMessage gives the text shown to the user for err. Syntax errors point
// at the offending spot in the source line.
func errorMessage(err error) string {
	var synErr *grokerrors.SyntaxError
	if errors.As(err, &synErr) {
		return synErr.FullMessage()
	}
	return rosed.Edit(err.Error()).Wrap(consoleOutputWidth).String()
}

func (eng *Engine) write(s string) error {
	if _, err := eng.out.WriteString(s); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	if err := eng.out.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}
	return nil
}
