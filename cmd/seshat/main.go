package main

import (
	"os"

	"github.com/seshat-cli/seshat/internal/cli/commands"
)

var Version = "dev"

func main() {
	os.Exit(commands.Execute(Version))
}
