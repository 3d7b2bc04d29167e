package main

import "github.com/passlocker/core/cmd/passctl/cli"

func main() {
	cli.Execute()
}
