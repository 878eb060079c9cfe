package main

import (
	"os"

	"github.com/vsinha/shopfloor/pkg/interfaces/cli/commands"
)

func main() {
	os.Exit(commands.Execute())
}
