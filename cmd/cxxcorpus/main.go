package main

import "github.com/dshills/cxxcorpus/internal/cli"

func main() {
	cli.Execute()
}
