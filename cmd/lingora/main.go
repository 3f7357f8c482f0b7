// Package main is the entry point for the lingora voice assistant
// service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/lingora-ai/lingora/cmd/lingora/app"
)

func main() {
	// Local development keys live in .env; absence is fine.
	_ = godotenv.Load()

	if err := app.NewCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
