// internal/repl/repl.go
package repl

import (
	"bufio"
	"fmt"
	"os"

	"tern/internal/compiler"
	"tern/internal/lexer"
	"tern/internal/parser"
	"tern/internal/vm"
)

// Start runs an interactive loop. Each line is compiled and executed
// in a fresh compilation scope; when the line is a single expression
// its result value is echoed.
func Start() {
	fmt.Println("Tern REPL | type 'exit' to quit")
	input := bufio.NewScanner(os.Stdin)

	machine := vm.New()

	for {
		fmt.Print(">>> ")
		if !input.Scan() {
			break
		}
		line := input.Text()
		if line == "exit" {
			break
		}
		if line == "" {
			continue
		}

		tokens, err := lexer.NewScanner(line).ScanTokens()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		tree, err := parser.NewParser(tokens).Parse()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if tree == nil {
			continue
		}

		prog, err := compiler.New().Compile(tree)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		result, err := machine.Run(prog)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if parser.IsExpression(tree) {
			fmt.Println(vm.FormatValue(result))
		}
	}
}
