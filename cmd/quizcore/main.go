package main

import (
	"os"

	"github.com/edupress/quizcore/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
