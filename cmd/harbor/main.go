package main

import "github.com/mattnappo/harbor/internal/cli"

func main() {
	cli.Execute()
}
