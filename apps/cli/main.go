package main

import (
	"fmt"
	"os"

	"github.com/code-merge/accompany/apps/cli/root"
)

func main() {
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
