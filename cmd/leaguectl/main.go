package main

import (
	"os"
	_ "time/tzdata"

	"github.com/riskibarqy/league-vault/internal/interfaces/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
