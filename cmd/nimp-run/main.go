package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nimp-run/nimp-run/cmd/nimp-run/cmds"
)

func main() {
	if err := cmds.New().Execute(); err != nil {
		var exitErr *cmds.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Status)
		}
		fmt.Printf("nimp-run: %v\n", err)
		os.Exit(1)
	}
}
