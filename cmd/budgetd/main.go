package main

import (
	"os"

	"github.com/MacroMan5/budgetmanager/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
