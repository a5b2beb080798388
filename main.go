package main

import (
	"os"

	"github.com/robalobadob/funquiz/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
