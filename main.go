package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/cli"
)

// main - is the entry point of the application. It hands the arguments to the command tree.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := cli.Execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
