package main

import (
	"os"

	"github.com/msto63/termcore/cmd/termcore/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
