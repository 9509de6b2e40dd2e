package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dekarrin/grok"
	"github.com/dekarrin/grok/internal/config"
	"github.com/dekarrin/grok/internal/grammar"
	"github.com/dekarrin/grok/internal/lex"
)

// argsBetween is cobra.RangeArgs but gives a usageError.
func argsBetween(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < lo || len(args) > hi {
			if lo == hi {
				return usageError{fmt.Sprintf("%s takes %d argument(s) but got %d", cmd.Name(), lo, len(args))}
			}
			return usageError{fmt.Sprintf("%s takes %d to %d arguments but got %d", cmd.Name(), lo, hi, len(args))}
		}
		return nil
	}
}

// sourceFlags are the flags of commands that read source text.
type sourceFlags struct {
	file     string
	compiled string
}

func (sf *sourceFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&sf.file, "file", "f", "", "read the source text from `FILE` instead of the command line")
	fs.StringVar(&sf.compiled, "compiled", "", "use the compiled grammar in `FILE` instead of building it from the definition")
}

// source gives the text to work on: the file given with -f, or the remaining
// arguments joined by spaces.
func (sf *sourceFlags) source(args []string) (string, error) {
	if sf.file != "" {
		if len(args) > 0 {
			return "", usageError{"give source text either with -f or as arguments, not both"}
		}
		data, err := os.ReadFile(sf.file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if len(args) == 0 {
		return "", usageError{"no source text given"}
	}
	return strings.Join(args, " "), nil
}

func (sf *sourceFlags) frontend(defPath string) (*grok.Frontend, error) {
	if sf.compiled != "" {
		return grok.LoadCompiled(defPath, sf.compiled)
	}
	return grok.Load(defPath)
}

func loadGrammar(defPath string) (*grammar.Grammar, error) {
	def, err := config.Load(defPath)
	if err != nil {
		return nil, err
	}
	return def.Grammar()
}

func newBNFCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bnf DEFINITION_FILE",
		Short: "Show the rules of the grammar after its transforms are applied",
		Args:  argsBetween(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGrammar(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Start: %s\n\n%s", g.StartSymbol(), g.BNF())
			return nil
		},
	}
}

func newTableCmd() *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "table DEFINITION_FILE",
		Short: "Show the LL(1) parse table of the grammar",
		Args:  argsBetween(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGrammar(args[0])
			if err != nil {
				return err
			}
			M, err := g.LLParseTable()
			if err != nil {
				return err
			}

			if dump {
				fmt.Print(M.String())
			} else {
				fmt.Println(M.Table())
			}

			conflicts := M.Conflicts()
			if len(conflicts) == 0 {
				pterm.Success.Println("grammar is LL(1)")
				return nil
			}
			pterm.Warning.Printf("grammar is not LL(1); the first rule of each of these cells is used:\n")
			for _, c := range conflicts {
				fmt.Printf("  %s\n", c)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "list the filled cells instead of drawing a grid")
	return cmd
}

func newFirstsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "firsts DEFINITION_FILE",
		Short: "Show the FIRST and FOLLOW sets of the grammar",
		Args:  argsBetween(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGrammar(args[0])
			if err != nil {
				return err
			}
			tab, err := g.FirstFollowTable()
			if err != nil {
				return err
			}
			fmt.Println(tab)
			return nil
		},
	}
}

func newLexCmd() *cobra.Command {
	var flags sourceFlags

	cmd := &cobra.Command{
		Use:   "lex DEFINITION_FILE [TEXT...]",
		Short: "Show the tokens of source text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := config.Load(args[0])
			if err != nil {
				return err
			}
			src, err := flags.source(args[1:])
			if err != nil {
				return err
			}
			lx, err := def.Lexer()
			if err != nil {
				return err
			}

			for tok, err := range lex.All(lx.Tokenize(src)) {
				if err != nil {
					return err
				}
				fmt.Printf("%-10s %4d:%-4d %q\n", tok.Terminal, tok.Line, tok.Column, tok.Value)
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func newParseCmd() *cobra.Command {
	var flags sourceFlags

	cmd := &cobra.Command{
		Use:   "parse DEFINITION_FILE [TEXT...]",
		Short: "Parse source text and show its parse tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fe, err := flags.frontend(args[0])
			if err != nil {
				return err
			}
			src, err := flags.source(args[1:])
			if err != nil {
				return err
			}

			tree, err := fe.Parse(src)
			if err != nil {
				return err
			}
			fmt.Println(tree.String())
			return nil
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func newREPLCmd() *cobra.Command {
	var flags sourceFlags
	var forceDirect bool
	var historyFile string

	cmd := &cobra.Command{
		Use:   "repl DEFINITION_FILE",
		Short: "Parse each line entered in an interactive session",
		Args:  argsBetween(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fe, err := flags.frontend(args[0])
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("history") {
				historyFile = os.Getenv(EnvHistory)
			}

			eng, err := grok.NewEngine(os.Stdin, os.Stdout, fe, forceDirect, historyFile)
			if err != nil {
				return err
			}
			defer eng.Close()

			pterm.Info.Println("Quit with :quit or <ctrl>D")
			return eng.RunUntilQuit()
		},
	}

	cmd.Flags().StringVar(&flags.compiled, "compiled", "", "use the compiled grammar in `FILE` instead of building it from the definition")
	cmd.Flags().BoolVarP(&forceDirect, "direct", "d", false, "force reading directly from stdin instead of going through GNU readline where possible")
	cmd.Flags().StringVar(&historyFile, "history", "", "keep line history in `FILE`")
	return cmd
}

func newCompileCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "compile DEFINITION_FILE -o OUTPUT_FILE",
		Short: "Build the grammar and save it for use with --compiled",
		Args:  argsBetween(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return usageError{"an output file must be given with -o"}
			}
			if err := grok.Compile(args[0], output); err != nil {
				return err
			}
			pterm.Success.Printf("compiled grammar written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the compiled grammar to `FILE`")
	return cmd
}
