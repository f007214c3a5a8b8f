package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"bytec/lexer"
	"bytec/token"
)

type dumpCmd struct{}

func (*dumpCmd) Name() string { return "dump" }

func (*dumpCmd) Synopsis() string { return "Show the lexed output of the given program." }

func (*dumpCmd) Usage() string {
	return `dump <input>:
Show how the lexer tokenizes the given input file, one token per line.
`
}

func (*dumpCmd) SetFlags(f *flag.FlagSet) {}

func (*dumpCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	for _, file := range f.Args() {
		input, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: reading input: %s\n", file, err)
			return subcommands.ExitFailure
		}

		l := lexer.New(string(input))
		for {
			tok, err := l.Next()
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %s\n", file, err)
				return subcommands.ExitFailure
			}
			fmt.Printf("%-4d %-12s %q\n", tok.Line, tok.Kind, tok.Literal)
			if tok.Kind == token.EOF {
				break
			}
		}
	}
	return subcommands.ExitSuccess
}
