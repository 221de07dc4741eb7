package main

import "github.com/mcoot/boardgametracker/internal/cli"

func main() {
	cli.Execute()
}
