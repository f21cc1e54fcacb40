package main

import (
	"fmt"
	"os"

	"github.com/andreapavoni/distillery/cmd/distillery/commands"
	"github.com/andreapavoni/distillery/pkg/release"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(release.ExitCode(err))
	}
}
