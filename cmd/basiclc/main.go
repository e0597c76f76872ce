// cmd/basiclc/main.go
package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"basiclower/internal/berrors"
	"basiclower/internal/diag"
	"basiclower/internal/lower"
	"basiclower/internal/parsetree"
)

// VERSION is bumped by hand; there is no build pipeline here to stamp
// it automatically.
const VERSION = "0.1.0"

func main() {
	args := os.Args[1:]
	if len(args) > 0 && (args[0] == "--help" || args[0] == "-h") {
		showUsage()
		return
	}
	if len(args) > 0 && (args[0] == "--version" || args[0] == "-v") {
		fmt.Println("basiclc " + VERSION)
		return
	}

	// Grammar/parse-tree production is out of scope (see SPEC_FULL.md's
	// Non-goals); this front door lowers a small fixed demonstration
	// program so the binary is runnable end to end without a parser.
	prog := demoProgram()

	bus := diag.New()
	defer bus.Close()

	l := lower.New("demo.bas", bus)
	if err := l.Program(prog); err != nil {
		reportError(err)
		os.Exit(1)
	}

	printSummary(l)
}

func reportError(err error) {
	switch e := err.(type) {
	case *berrors.SemanticError:
		fmt.Fprint(os.Stderr, e.Error())
	default:
		fmt.Fprintf(os.Stderr, "%v\n", e)
	}
}

func printSummary(l *lower.Lowering) {
	count := l.Prog.Len()
	symbols := l.ST.Len()
	line := fmt.Sprintf("compiled %s instructions over %s symbols",
		humanize.Comma(int64(count)), humanize.Comma(int64(symbols)))
	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Printf("\x1b[32mOK\x1b[0m %s\n", line)
	} else {
		fmt.Printf("OK %s\n", line)
	}
}

func showUsage() {
	fmt.Println(`basiclc - lowers a BASIC parse tree into typed three-address IR

Usage:
  basiclc            compile the built-in demonstration program
  basiclc --version   print the version
  basiclc --help      show this message

Grammar parsing and IR interpretation are out of scope for this tool;
it exists to exercise internal/lower end to end.`)
}

// demoProgram builds a tiny parse tree by hand:
//
//	10 LET N% = 5
//	20 PRINT N%
func demoProgram() *parsetree.Program {
	return &parsetree.Program{
		Lines: []parsetree.Line{
			{
				Number: 10, HasNumber: true,
				Stmt: &parsetree.LetStmt{
					At:     parsetree.Pos{Line: 10, Text: "LET N% = 5"},
					Name:   "N",
					Suffix: '%',
					Value:  &parsetree.NumberLiteral{At: parsetree.Pos{Line: 10, Text: "5"}, Text: "5", Base: 10},
				},
			},
			{
				Number: 20, HasNumber: true,
				Stmt: &parsetree.PrintStmt{
					At: parsetree.Pos{Line: 20, Text: "PRINT N%"},
					Items: []parsetree.PrintItem{
						{Value: &parsetree.VariableRef{At: parsetree.Pos{Line: 20, Text: "N%"}, Name: "N", Suffix: '%'}},
					},
				},
			},
		},
	}
}
