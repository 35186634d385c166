package main

import (
	"github.com/MeKo-Tech/tally/cmd/tally/cmd"
)

func main() {
	cmd.Execute()
}
