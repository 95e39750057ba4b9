package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/ikvmbuild/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		os.Exit(cli.ExitSuccess)
	}

	// Commands report their own failures; anything else is a usage error
	// from cobra (unknown flag, wrong argument count).
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(cli.ExitCommandError)
}
