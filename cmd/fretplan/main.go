package main

import "github.com/mbendaoud/fretplan-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
