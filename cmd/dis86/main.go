// Package main provides the entry point for dis86.
// dis86 is a streaming disassembler for raw 8086 machine code.
package main

import (
	"bufio"
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/javiercbk/8086/disasm"
)

func main() {
	app := cli.NewApp()
	app.Name = "dis86"
	app.Usage = "disassemble raw 8086 machine code to assembly text"
	app.ArgsUsage = "<machine-code-file>"
	app.HideHelp = true
	app.HideVersion = true
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "dis86: %v\n", err)
		os.Exit(1)
	}
}

// run opens the machine code file and streams its disassembly to stdout.
func run(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("usage: dis86 <machine-code-file>", 1)
	}
	path := ctx.Args().First()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open machine code file: %w", err)
	}
	defer func() { _ = f.Close() }()

	out := bufio.NewWriter(os.Stdout)
	_, runErr := disasm.New().Run(bufio.NewReader(f), out)

	// Flush first so every line decoded ahead of a failure still
	// reaches stdout.
	if err := out.Flush(); err != nil {
		return fmt.Errorf("failed to flush listing: %w", err)
	}
	if runErr != nil {
		return fmt.Errorf("%s: %w", path, runErr)
	}
	return nil
}
