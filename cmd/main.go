package main

import (
	"os"

	"githubglimpse/cli"
)

func main() {
	os.Exit(cli.Execute())
}
