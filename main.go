package main

import (
	"context"
	"os"

	"github.com/AnyUserName/printcurate-cli/cmd"
)

func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
