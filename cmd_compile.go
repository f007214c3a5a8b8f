package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"

	"bytec/compiler"
	"bytec/lexer"
)

type compileCmd struct{}

func (*compileCmd) Name() string { return "compile" }

func (*compileCmd) Synopsis() string { return "Compile a source program into linked bytecode." }

func (*compileCmd) Usage() string {
	return `compile <input> [<input> ...]:
Compile each given source file into a linked bytecode file next to it.
`
}

func (*compileCmd) SetFlags(f *flag.FlagSet) {}

func (*compileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	for _, file := range f.Args() {
		if err := compileFile(file); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", file, err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

// compileFile lexes, parses, emits, and links file, writing the result
// next to it with a .bc extension. No partial output is written: the
// output file is created only once compilation has fully succeeded.
func compileFile(file string) error {
	input, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	l := lexer.New(string(input))
	c, err := compiler.New(l)
	if err != nil {
		return err
	}
	root, err := c.Compile()
	if err != nil {
		return err
	}
	out, err := root.Link()
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(file, filepath.Ext(file))
	if err := os.WriteFile(name+".bc", out, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
