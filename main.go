package main

import (
	"os"

	"github.com/studyquest/studyquest/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
