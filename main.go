package main

import "github.com/agentic-research/treescan/cmd"

func main() {
	cmd.Execute()
}
