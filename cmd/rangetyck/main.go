package main

import "github.com/funvibe/rangetyck/pkg/cli"

func main() {
	cli.Run()
}
