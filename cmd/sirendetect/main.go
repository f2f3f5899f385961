package main

import (
	"os"

	"github.com/WuZhou5/Emergency-Vehicle-Detection/cmd/sirendetect/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
