package main

import (
	"os"

	genaicmder "github.com/papercomputeco/genai/cmd/genai"
)

func main() {
	cmd := genaicmder.NewGenaiCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
