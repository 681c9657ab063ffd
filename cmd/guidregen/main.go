package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// exitCanceled follows the shell convention for a process stopped by SIGINT.
const exitCanceled = 130

func main() {
	os.Exit(execute(newRootCommand(), os.Args[1:], os.Stderr))
}

// execute runs cmd and maps its outcome to a process exit code. Cancellation
// has already been reported by the command and prints nothing further.
func execute(cmd *cobra.Command, args []string, stderr io.Writer) int {
	cmd.SetArgs(args)
	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return exitCanceled
	}
	fmt.Fprintf(stderr, "guidregen: %v\n", err)
	return 1
}
