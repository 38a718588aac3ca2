// cmd/tern/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"tern/internal/bundle"
	"tern/internal/bytecode"
	"tern/internal/compiler"
	"tern/internal/lexer"
	"tern/internal/parser"
	"tern/internal/repl"
	"tern/internal/vm"
)

const VERSION = "0.1.0"

func main() {
	var args []string
	debug := false
	for _, arg := range os.Args[1:] {
		if arg == "--debug" || arg == "-d" {
			debug = true
			continue
		}
		args = append(args, arg)
	}
	if debug {
		commonlog.Configure(2, nil)
	} else {
		commonlog.Configure(0, nil)
	}

	if len(args) == 0 {
		showUsage()
		return
	}

	switch args[0] {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		fmt.Printf("Tern v%s\n", VERSION)
	case "repl":
		repl.Start()
	case "build":
		if len(args) < 2 {
			fatal("build requires a source file")
		}
		buildFile(args[1], args[2:])
	case "exec":
		if len(args) < 2 {
			fatal("exec requires a bundle file")
		}
		execBundle(args[1])
	case "disasm":
		if len(args) < 2 {
			fatal("disasm requires a source or bundle file")
		}
		disasmFile(args[1])
	case "run":
		if len(args) < 2 {
			fatal("run requires a source file")
		}
		runFile(args[1])
	default:
		runFile(args[0])
	}
}

// compileFile takes a source file through the whole front half of the
// pipeline and returns a runnable program.
func compileFile(path string) (*bytecode.Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	tokens, err := lexer.NewScanner(string(source)).ScanTokens()
	if err != nil {
		return nil, err
	}
	tree, err := parser.NewParser(tokens).Parse()
	if err != nil {
		return nil, err
	}
	return compiler.New().Compile(tree)
}

func runFile(path string) {
	prog, err := compileFile(path)
	if err != nil {
		fatal("%v", err)
	}
	if _, err := vm.New().Run(prog); err != nil {
		fatal("%v", err)
	}
}

func buildFile(path string, rest []string) {
	out := strings.TrimSuffix(path, ".tn") + bundle.Ext
	for i := 0; i < len(rest); i++ {
		if rest[i] == "-o" && i+1 < len(rest) {
			out = rest[i+1]
			i++
		}
	}
	prog, err := compileFile(path)
	if err != nil {
		fatal("%v", err)
	}
	if err := bundle.WriteFile(out, prog); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("wrote %s (%d instructions, %d strings)\n", out, len(prog.Code), len(prog.Strings))
}

func execBundle(path string) {
	prog, err := bundle.ReadFile(path)
	if err != nil {
		fatal("%v", err)
	}
	if _, err := vm.New().Run(prog); err != nil {
		fatal("%v", err)
	}
}

func disasmFile(path string) {
	var prog *bytecode.Program
	var err error
	if strings.HasSuffix(path, bundle.Ext) {
		prog, err = bundle.ReadFile(path)
	} else {
		prog, err = compileFile(path)
	}
	if err != nil {
		fatal("%v", err)
	}
	prog.Disassemble(os.Stdout)
}

func fatal(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

func showUsage() {
	fmt.Println("Tern - a small compiled expression language")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  tern <file.tn>             Compile and run a script")
	fmt.Println("  tern run <file.tn>         Same as above")
	fmt.Println("  tern build <file.tn>       Compile to a bundle (-o to name it)")
	fmt.Println("  tern exec <file.tnb>       Run a compiled bundle")
	fmt.Println("  tern disasm <file>         Print the instruction listing")
	fmt.Println("  tern repl                  Start interactive REPL")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --debug, -d                Verbose diagnostic logging")
}
