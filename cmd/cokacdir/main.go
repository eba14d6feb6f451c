package main

import "cokacdir/internal/cli"

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
