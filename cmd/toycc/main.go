package main

import (
	"fmt"
	"os"

	"github.com/Maoyao233/ToyCC/internal/command"
)

func main() {
	app := command.NewApp()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
