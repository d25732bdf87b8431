package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Version is set at build time.
var Version = "dev"

func main() {
	// A .env file is optional and only fills variables not already set.
	_ = godotenv.Load()

	root, g := newRootCommand()
	err := root.Execute()
	g.shutdown()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
