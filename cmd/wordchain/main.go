package main

import "github.com/hmngo/wordchain/internal/cli"

func main() {
	cli.Execute()
}
