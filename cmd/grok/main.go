/*
Grok builds a parser from a grammar definition file and uses it on input, or
shows what went into building it.

Usage:

	grok [flags] COMMAND DEFINITION_FILE [args]

The commands are:

	bnf DEFINITION_FILE
		Show the rules of the grammar after its transforms are applied.

	table DEFINITION_FILE
		Show the LL(1) parse table of the grammar and any conflicts in it.

	firsts DEFINITION_FILE
		Show the FIRST and FOLLOW sets of every nonterminal of the grammar.

	lex DEFINITION_FILE [TEXT]
		Show the tokens of TEXT, or of the file given with -f.

	parse DEFINITION_FILE [TEXT]
		Parse TEXT, or the file given with -f, and show its parse tree.

	repl DEFINITION_FILE
		Start an interactive session that parses each line entered.

	compile DEFINITION_FILE -o OUTPUT_FILE
		Build the grammar and save it so that parse and repl can skip
		building it again with --compiled.

The global flags are:

	-v, --verbose
		Log more; give more than once to log even more.

	--log FILE
		Write log output to FILE instead of stderr.

The history of the repl command is kept in the file named by the GROK_HISTORY
environment variable unless --history is given.
*/
package main

import (
	"errors"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/dekarrin/grok/internal/grokerrors"
	"github.com/dekarrin/grok/internal/version"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitInputError indicates an unsuccessful program execution due to input
	// that could not be lexed or parsed.
	ExitInputError

	// ExitInitError indicates an unsuccessful program execution due to an issue
	// loading or building the grammar.
	ExitInitError

	// ExitUsageError indicates that the program was called incorrectly.
	ExitUsageError
)

const EnvHistory = "GROK_HISTORY"

var (
	returnCode = ExitSuccess
	verbosity  int
	logFile    string
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic(panicErr)
		} else {
			os.Exit(returnCode)
		}
	}()

	initDisplay()

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err.Error())
		if returnCode == ExitSuccess {
			returnCode = exitCodeFor(err)
		}
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "grok",
		Short:         "Build LL(1) parsers from grammar definition files",
		Version:       version.Current,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var path *string
			if logFile != "" {
				path = &logFile
			}
			commonlog.Configure(verbosity, path)
		},
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "log more; repeat to log even more")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "write log output to `FILE` instead of stderr")

	rootCmd.AddCommand(newBNFCmd())
	rootCmd.AddCommand(newTableCmd())
	rootCmd.AddCommand(newFirstsCmd())
	rootCmd.AddCommand(newLexCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newREPLCmd())
	rootCmd.AddCommand(newCompileCmd())

	return rootCmd
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func exitCodeFor(err error) int {
	if errors.Is(err, grokerrors.ErrLex) || errors.Is(err, grokerrors.ErrParse) {
		return ExitInputError
	}
	var usageErr usageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}
	return ExitInitError
}

// usageError is an error in how the program was called.
type usageError struct {
	msg string
}

func (ue usageError) Error() string {
	return ue.msg
}
